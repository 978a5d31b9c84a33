package eol

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/martinsuchenak/merakilife/internal/log"
	"github.com/martinsuchenak/merakilife/internal/model"
)

// Scraper reads the catalog from the Meraki documentation site
type Scraper struct {
	URL        string
	UserAgent  string
	HTTPClient *http.Client
}

// NewScraper creates a scraper for pageURL, or DefaultURL when empty
func NewScraper(pageURL string) *Scraper {
	if pageURL == "" {
		pageURL = DefaultURL
	}
	return &Scraper{
		URL:        pageURL,
		UserAgent:  "merakilife/dev",
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Announcements fetches and parses the EoL page. Any failure is a
// *model.FetchError with Source "catalog".
func (s *Scraper) Announcements(ctx context.Context) ([]model.Announcement, error) {
	records, err := s.fetch(ctx)
	if err != nil {
		return nil, &model.FetchError{Source: "catalog", Err: err}
	}
	log.Debug("Loaded EoL catalog", "url", s.URL, "records", len(records))
	return records, nil
}

func (s *Scraper) fetch(ctx context.Context) ([]model.Announcement, error) {
	base, err := url.Parse(s.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting EoL page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("EoL page returned status %d: %s", resp.StatusCode, string(body))
	}

	return ParseTable(resp.Body, base)
}
