package model

import (
	"strings"
	"time"
)

// UpgradePathSeparator joins multiple upgrade-path URLs in UpgradePathURL.
const UpgradePathSeparator = "; "

// Announcement is one end-of-life announcement for a product model.
// Zero dates mean the catalog did not publish (or we could not parse) that milestone.
type Announcement struct {
	Model            string    `json:"model"`
	Product          string    `json:"product,omitempty"` // SKU as printed in the catalog
	AnnouncementDate time.Time `json:"announcement_date"`
	EndOfSale        time.Time `json:"end_of_sale"`
	EndOfSupport     time.Time `json:"end_of_support"`
	UpgradePathURL   string    `json:"upgrade_path_url,omitempty"`
}

// UpgradePathLinks splits UpgradePathURL into individual URLs
func (a Announcement) UpgradePathLinks() []string {
	return SplitLinks(a.UpgradePathURL)
}

// SplitLinks splits a joined upgrade-path string, dropping blanks.
func SplitLinks(joined string) []string {
	var links []string
	for _, part := range strings.Split(joined, ";") {
		if part = strings.TrimSpace(part); part != "" {
			links = append(links, part)
		}
	}
	return links
}

// JoinLinks is the inverse of SplitLinks.
func JoinLinks(links []string) string {
	return strings.Join(links, UpgradePathSeparator)
}
