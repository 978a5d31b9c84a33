package lifecycle

import (
	"iter"
	"slices"

	"github.com/martinsuchenak/merakilife/internal/model"
)

// Tally counts active units per normalized model.
type Tally map[string]int

// Add folds one device into the tally. Unbound units are ignored.
func (t Tally) Add(d model.Device) {
	if !d.Active() {
		return
	}
	key := NormalizeModel(d.Model)
	if key == "" {
		return
	}
	t[key]++
}

// Total returns the number of active units counted
func (t Tally) Total() int {
	n := 0
	for _, c := range t {
		n += c
	}
	return n
}

// CountActive folds a device sequence into a Tally.
func CountActive(devices iter.Seq[model.Device]) Tally {
	t := make(Tally)
	for d := range devices {
		t.Add(d)
	}
	return t
}

// Correlate joins devices against announcements. It emits one entry per model
// that has an announcement and at least one active unit, ordered by model.
func Correlate(devices []model.Device, announcements []model.Announcement) []model.PendingEntry {
	return CorrelateTally(CountActive(slices.Values(devices)), NewCatalog(announcements))
}

// CorrelateTally is Correlate over pre-folded inputs.
func CorrelateTally(t Tally, c Catalog) []model.PendingEntry {
	models := make([]string, 0, len(t))
	for m, n := range t {
		if n > 0 {
			models = append(models, m)
		}
	}
	slices.Sort(models)

	entries := make([]model.PendingEntry, 0, len(models))
	for _, m := range models {
		a, ok := c.Lookup(m)
		if !ok {
			continue
		}
		entries = append(entries, model.PendingEntry{
			Model:            a.Model,
			AnnouncementDate: a.AnnouncementDate,
			EndOfSale:        a.EndOfSale,
			EndOfSupport:     a.EndOfSupport,
			UpgradePathURL:   a.UpgradePathURL,
			ActiveUnits:      t[m],
		})
	}
	return entries
}
