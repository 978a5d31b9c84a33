package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/martinsuchenak/merakilife/internal/model"
	"github.com/martinsuchenak/merakilife/internal/storage"
)

// SQLiteRenderer emits the run as a standalone SQLite database
type SQLiteRenderer struct{}

func (r *SQLiteRenderer) Extension() string { return "db" }

// Render builds the database in a scratch directory, then streams the file to w.
func (r *SQLiteRenderer) Render(w io.Writer, summary *model.RunSummary) error {
	dir, err := os.MkdirTemp("", "merakilife-*")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "report.db")
	if err := WriteSQLite(context.Background(), path, summary); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copying database: %w", err)
	}
	return nil
}

// WriteSQLite writes summary straight to a database file at path
func WriteSQLite(ctx context.Context, path string, summary *model.RunSummary) error {
	exporter, err := storage.NewSQLiteExporter(path)
	if err != nil {
		return err
	}

	if err := exporter.WriteSummary(ctx, summary); err != nil {
		exporter.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return exporter.Close()
}
