package eol

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/martinsuchenak/merakilife/internal/model"
)

// FileSource reads announcements from a JSON file, for offline runs
type FileSource struct {
	Path string
}

// fileRecord accepts dates in any layout ParseDate understands
type fileRecord struct {
	Model            string   `json:"model"`
	Product          string   `json:"product"`
	AnnouncementDate string   `json:"announcement_date"`
	EndOfSale        string   `json:"end_of_sale"`
	EndOfSupport     string   `json:"end_of_support"`
	UpgradePath      []string `json:"upgrade_path"`
}

// Announcements loads the file on every call. Any failure is a
// *model.FetchError with Source "catalog".
func (s *FileSource) Announcements(ctx context.Context) ([]model.Announcement, error) {
	records, err := s.load()
	if err != nil {
		return nil, &model.FetchError{Source: "catalog", Err: err}
	}
	return records, nil
}

func (s *FileSource) load() ([]model.Announcement, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var raw []fileRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding catalog file %s: %w", s.Path, err)
	}

	records := make([]model.Announcement, 0, len(raw))
	for _, r := range raw {
		product := r.Product
		if product == "" {
			product = r.Model
		}
		key := NormalizeProductKey(r.Model)
		if key == "" {
			key = NormalizeProductKey(product)
		}
		if key == "" {
			continue
		}

		records = append(records, model.Announcement{
			Model:            key,
			Product:          product,
			AnnouncementDate: ParseDate(r.AnnouncementDate),
			EndOfSale:        ParseDate(r.EndOfSale),
			EndOfSupport:     ParseDate(r.EndOfSupport),
			UpgradePathURL:   model.JoinLinks(r.UpgradePath),
		})
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}
