// Package meraki is a minimal client for the Meraki Dashboard API v1. It only
// covers what lifecycle reporting needs: organizations and their device
// inventory.
package meraki

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/martinsuchenak/merakilife/internal/log"
	"github.com/martinsuchenak/merakilife/internal/model"
)

const (
	DefaultBaseURL    = "https://api.meraki.com/api/v1"
	DefaultPerPage    = 1000
	MaxPerPage        = 1000
	DefaultMaxRetries = 3
	DefaultTimeout    = 30 * time.Second

	// used when a 429 carries no usable Retry-After
	defaultRetryAfter = time.Second
	maxErrorBody      = 512
)

// Config configures a Client
type Config struct {
	BaseURL    string
	APIKey     string
	PerPage    int
	MaxRetries int
	Timeout    time.Duration
	UserAgent  string
}

// Client talks to the Dashboard API
type Client struct {
	cfg        Config
	httpClient *http.Client
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewClient creates a client, filling unset config fields with defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.PerPage <= 0 || cfg.PerPage > MaxPerPage {
		cfg.PerPage = DefaultPerPage
	}
	// Negative disables retries
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	} else if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "merakilife/dev"
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		sleep:      sleepContext,
	}
}

// get fetches url, retrying rate-limited responses. It returns the body and
// the rel=next link, if any.
func (c *Client) get(ctx context.Context, url string) ([]byte, string, error) {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, "", fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.cfg.UserAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("requesting %s: %w", req.URL.Path, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.cfg.MaxRetries {
			wait := retryAfter(resp.Header.Get("Retry-After"))
			drain(resp)
			log.Warn("Rate limited by Meraki API, retrying", "path", req.URL.Path, "attempt", attempt+1, "wait", wait)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, "", err
			}
			continue
		}

		body, err := readResponse(resp)
		if err != nil {
			return nil, "", err
		}
		return body, nextLink(resp.Header.Values("Link"), resp.Request.URL), nil
	}
}

func readResponse(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("%w: status %d", model.ErrUnauthorized, resp.StatusCode)
		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: status %d", model.ErrNotFound, resp.StatusCode)
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}

// retryAfter parses a Retry-After header given in seconds
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
