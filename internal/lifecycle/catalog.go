// Package lifecycle correlates device inventory with end-of-life announcements
// and turns the result into ordered, urgency-tagged report entries.
//
// Everything here is pure: no I/O and no clock reads. Callers pass "now".
package lifecycle

import (
	"slices"
	"strings"

	"github.com/martinsuchenak/merakilife/internal/model"
)

// NormalizeModel canonicalizes a model identifier for joining inventory
// against the catalog.
func NormalizeModel(m string) string {
	return strings.ToUpper(strings.TrimSpace(m))
}

// Catalog holds at most one authoritative announcement per model.
type Catalog struct {
	byModel map[string]model.Announcement
}

// NewCatalog builds a catalog, resolving duplicate models with Supersedes.
func NewCatalog(records []model.Announcement) Catalog {
	c := Catalog{byModel: make(map[string]model.Announcement, len(records))}
	for _, rec := range records {
		key := NormalizeModel(rec.Model)
		if key == "" {
			continue
		}
		rec.Model = key

		if cur, ok := c.byModel[key]; ok && !Supersedes(rec, cur) {
			continue
		}
		c.byModel[key] = rec
	}
	return c
}

// Supersedes reports whether candidate should replace current for the same
// model: latest announcement date, then latest end-of-support, then latest
// end-of-sale, then the lexically smaller upgrade path. The order is total so
// the winner never depends on the order records arrive in.
func Supersedes(candidate, current model.Announcement) bool {
	if !candidate.AnnouncementDate.Equal(current.AnnouncementDate) {
		return candidate.AnnouncementDate.After(current.AnnouncementDate)
	}
	if !candidate.EndOfSupport.Equal(current.EndOfSupport) {
		return candidate.EndOfSupport.After(current.EndOfSupport)
	}
	if !candidate.EndOfSale.Equal(current.EndOfSale) {
		return candidate.EndOfSale.After(current.EndOfSale)
	}
	return candidate.UpgradePathURL < current.UpgradePathURL
}

// Lookup returns the announcement for a model, if any
func (c Catalog) Lookup(m string) (model.Announcement, bool) {
	a, ok := c.byModel[NormalizeModel(m)]
	return a, ok
}

// Len returns the number of models in the catalog
func (c Catalog) Len() int {
	return len(c.byModel)
}

// Models returns the catalog's model keys in ascending order
func (c Catalog) Models() []string {
	models := make([]string, 0, len(c.byModel))
	for m := range c.byModel {
		models = append(models, m)
	}
	slices.Sort(models)
	return models
}

// Announcements returns every authoritative announcement ordered by model
func (c Catalog) Announcements() []model.Announcement {
	out := make([]model.Announcement, 0, len(c.byModel))
	for _, m := range c.Models() {
		out = append(out, c.byModel[m])
	}
	return out
}
