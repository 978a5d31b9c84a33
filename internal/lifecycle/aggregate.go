package lifecycle

import (
	"cmp"
	"slices"
	"time"

	"github.com/martinsuchenak/merakilife/internal/model"
)

// Aggregate classifies every pending entry against now and orders the result
// by active units descending, then model ascending. A model appearing twice,
// or an entry without active units, is a *DataIntegrityError.
func Aggregate(pending []model.PendingEntry, now time.Time) ([]model.Entry, error) {
	seen := make(map[string]struct{}, len(pending))
	entries := make([]model.Entry, 0, len(pending))

	for _, p := range pending {
		key := NormalizeModel(p.Model)
		if _, dup := seen[key]; dup {
			return nil, &DataIntegrityError{Model: p.Model, Reason: "model appears more than once"}
		}
		seen[key] = struct{}{}

		if p.ActiveUnits < 1 {
			return nil, &DataIntegrityError{Model: p.Model, Reason: "entry has no active units"}
		}

		entries = append(entries, model.Entry{
			PendingEntry: p,
			Urgency:      Classify(p.EndOfSupport, now),
		})
	}

	slices.SortFunc(entries, compareEntries)
	return entries, nil
}

func compareEntries(a, b model.Entry) int {
	if c := cmp.Compare(b.ActiveUnits, a.ActiveUnits); c != 0 {
		return c
	}
	return cmp.Compare(a.Model, b.Model)
}

// BuildReport correlates one organization's tally against the catalog and
// aggregates the result. An organization with nothing to report gets an
// empty, valid report.
func BuildReport(org model.Organization, t Tally, c Catalog, now time.Time) (model.OrganizationReport, error) {
	entries, err := Aggregate(CorrelateTally(t, c), now)
	if err != nil {
		return model.OrganizationReport{}, err
	}

	report := model.OrganizationReport{
		Organization: org,
		Entries:      entries,
		Status:       model.StatusOK,
	}
	if len(entries) == 0 {
		report.Status = model.StatusEmpty
	}
	return report, nil
}
