package render

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/martinsuchenak/merakilife/internal/model"
)

const (
	NoteEmpty   = "No EoL devices found"
	NoteSkipped = "Skipped: "
)

// CSVHeader is the column order of the CSV artifact
var CSVHeader = append(append([]string{"Organization"}, Columns...), "Urgency", "Note")

// CSVRenderer writes all organizations into one delimited file. Organizations
// without rows still get a placeholder row so none silently disappears.
type CSVRenderer struct{}

// Extension returns "csv"
func (r *CSVRenderer) Extension() string { return "csv" }

// Render writes the header, then every organization's rows in request order
func (r *CSVRenderer) Render(w io.Writer, summary *model.RunSummary) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, rep := range summary.Reports {
		label := rep.Organization.Label()

		switch {
		case rep.Status == model.StatusFailed:
			if err := cw.Write(placeholder(label, NoteSkipped+rep.Error)); err != nil {
				return err
			}
			continue
		case len(rep.Entries) == 0:
			if err := cw.Write(placeholder(label, NoteEmpty)); err != nil {
				return err
			}
			continue
		}

		for _, row := range Rows(rep) {
			record := append([]string{label}, row.Cells()...)
			record = append(record, row.Urgency.String(), "")
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func placeholder(org, note string) []string {
	record := make([]string, len(CSVHeader))
	record[0] = org
	record[len(Columns)] = "0" // Units
	record[len(record)-1] = note
	return record
}
