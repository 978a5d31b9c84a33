// Package eol loads the Meraki end-of-life catalog, either by scraping the
// public documentation page or from a local JSON file.
package eol

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/martinsuchenak/merakilife/internal/model"
)

// DefaultURL is the Meraki EoL products and dates page
const DefaultURL = "https://documentation.meraki.com/General_Administration/Other_Topics/Meraki_End-of-Life_(EOL)_Products_and_Dates"

var (
	ErrNoTable         = errors.New("no table found on EoL page")
	ErrNoProductColumn = errors.New("EoL table has no Product column")
	ErrNoRecords       = errors.New("all EoL rows collapsed after normalization")
)

// Source supplies end-of-life announcements
type Source interface {
	Announcements(ctx context.Context) ([]model.Announcement, error)
}

var dateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02",
	"Jan. 2, 2006",
}

// ParseDate parses a catalog date. Unparseable or blank values yield the
// zero time.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), "*"))
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// NormalizeProductKey maps a catalog product string to the model name the
// inventory uses: first SKU before a comma, first word, anything from "-HW"
// on removed, upper-cased.
func NormalizeProductKey(s string) string {
	s = strings.TrimSpace(s)
	s, _, _ = strings.Cut(s, ",")
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	s, _, _ = strings.Cut(fields[0], "-HW")
	return strings.ToUpper(s)
}
