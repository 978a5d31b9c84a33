// Package render turns a run summary into report artifacts. Every renderer
// emits one section per organization, in the order the organizations were
// requested, with the columns Product, Announcement, End-of-Sale,
// End-of-Support, Upgrade Path and Units.
package render

import (
	"io"
	"strconv"
	"time"

	"github.com/martinsuchenak/merakilife/internal/model"
)

// DateLayout is how lifecycle dates appear in every artifact
const DateLayout = "2006-01-02"

// Renderer writes one artifact for a run
type Renderer interface {
	Render(w io.Writer, summary *model.RunSummary) error
	// Extension is the file extension, without the dot
	Extension() string
}

// Options configures renderer construction
type Options struct {
	// LogoPath is an image placed at the top of paginated documents
	LogoPath string
}

// Columns is the per-row column set shared by all renderers
var Columns = []string{"Product", "Announcement", "End-of-Sale", "End-of-Support", "Upgrade Path", "Units"}

// Row is one entry flattened for output
type Row struct {
	Product      string
	Announcement string
	EndOfSale    string
	EndOfSupport string
	UpgradePath  []string
	Units        int
	Urgency      model.Urgency
	Highlight    model.Highlight
}

// Cells returns the row in Columns order, upgrade links joined
func (r Row) Cells() []string {
	return []string{
		r.Product,
		r.Announcement,
		r.EndOfSale,
		r.EndOfSupport,
		model.JoinLinks(r.UpgradePath),
		strconv.Itoa(r.Units),
	}
}

// Rows flattens a report's entries, keeping their order
func Rows(rep model.OrganizationReport) []Row {
	rows := make([]Row, 0, len(rep.Entries))
	for _, e := range rep.Entries {
		rows = append(rows, Row{
			Product:      e.Model,
			Announcement: FormatDate(e.AnnouncementDate),
			EndOfSale:    FormatDate(e.EndOfSale),
			EndOfSupport: FormatDate(e.EndOfSupport),
			UpgradePath:  e.UpgradePathLinks(),
			Units:        e.ActiveUnits,
			Urgency:      e.Urgency,
			Highlight:    e.Urgency.Highlight(),
		})
	}
	return rows
}

// FormatDate renders a lifecycle date, blank when unknown
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
