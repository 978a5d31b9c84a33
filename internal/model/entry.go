package model

import (
	"fmt"
	"time"
)

// Urgency classifies how close a model is to end-of-support.
type Urgency int

const (
	UrgencyNormal Urgency = iota
	UrgencyWarning
	UrgencyCritical
)

// String returns the upper-case tag used in CSV output and logs
func (u Urgency) String() string {
	switch u {
	case UrgencyWarning:
		return "WARNING"
	case UrgencyCritical:
		return "CRITICAL"
	default:
		return "NORMAL"
	}
}

// MarshalText implements encoding.TextMarshaler
func (u Urgency) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (u *Urgency) UnmarshalText(text []byte) error {
	switch string(text) {
	case "NORMAL", "":
		*u = UrgencyNormal
	case "WARNING":
		*u = UrgencyWarning
	case "CRITICAL":
		*u = UrgencyCritical
	default:
		return fmt.Errorf("unknown urgency %q", string(text))
	}
	return nil
}

// Highlight is the rendering hint for renderers that support emphasis.
type Highlight string

const (
	HighlightNone   Highlight = ""
	HighlightYellow Highlight = "yellow"
	HighlightRed    Highlight = "red"
)

// Highlight maps the urgency to its row emphasis
func (u Urgency) Highlight() Highlight {
	switch u {
	case UrgencyCritical:
		return HighlightRed
	case UrgencyWarning:
		return HighlightYellow
	default:
		return HighlightNone
	}
}

// PendingEntry is a correlated model that has not been classified yet.
type PendingEntry struct {
	Model            string    `json:"model"`
	AnnouncementDate time.Time `json:"announcement_date"`
	EndOfSale        time.Time `json:"end_of_sale"`
	EndOfSupport     time.Time `json:"end_of_support"`
	UpgradePathURL   string    `json:"upgrade_path_url,omitempty"`
	ActiveUnits      int       `json:"active_units"`
}

// Entry is one row of an organization report.
type Entry struct {
	PendingEntry
	Urgency Urgency `json:"urgency"`
}

// UpgradePathLinks splits UpgradePathURL into individual URLs
func (e Entry) UpgradePathLinks() []string {
	return SplitLinks(e.UpgradePathURL)
}
