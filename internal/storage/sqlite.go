// Package storage writes report runs to a single-file SQLite snapshot that
// downstream tools can query.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/martinsuchenak/merakilife/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

const dateLayout = "2006-01-02"

var ErrNoRun = errors.New("no report run in snapshot")

// SQLiteExporter owns one snapshot database file
type SQLiteExporter struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// NewSQLiteExporter creates a fresh database at path, replacing any previous
// snapshot there.
func NewSQLiteExporter(path string) (*SQLiteExporter, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("removing previous snapshot: %w", err)
		}
	}

	return openSQLite(path)
}

// OpenSQLiteExporter opens an existing snapshot without truncating it
func OpenSQLiteExporter(path string) (*SQLiteExporter, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return openSQLite(path)
}

func openSQLite(path string) (*SQLiteExporter, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	e := &SQLiteExporter{db: db, path: path}
	if err := e.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return e, nil
}

func (e *SQLiteExporter) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}

	_, err = e.db.Exec(string(schema))
	return err
}

// Path returns the database file path
func (e *SQLiteExporter) Path() string {
	return e.path
}

// Close closes the database. The WAL is checkpointed into the main file.
func (e *SQLiteExporter) Close() error {
	return e.db.Close()
}

// WriteSummary replaces the snapshot contents with summary, in one transaction.
func (e *SQLiteExporter) WriteSummary(ctx context.Context, summary *model.RunSummary) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM report_runs`); err != nil {
		return fmt.Errorf("clearing previous run: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO report_runs (id, generated_at, ok_count, empty_count, failed_count)
		VALUES (?, ?, ?, ?, ?)
	`, summary.RunID, summary.GeneratedAt.UTC().Format(time.RFC3339), summary.Counts.OK, summary.Counts.Empty, summary.Counts.Failed)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	orgStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO organizations (run_id, id, name, position, status, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing organization insert: %w", err)
	}
	defer orgStmt.Close()

	entryStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO lifecycle_entries (run_id, organization_id, model, position,
			announcement_date, end_of_sale, end_of_support, upgrade_path, active_units, urgency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing entry insert: %w", err)
	}
	defer entryStmt.Close()

	for i, rep := range summary.Reports {
		org := rep.Organization
		if _, err := orgStmt.ExecContext(ctx, summary.RunID, org.ID, org.Name, i, string(rep.Status), rep.Error); err != nil {
			return fmt.Errorf("inserting organization %s: %w", org.ID, err)
		}

		for j, entry := range rep.Entries {
			_, err := entryStmt.ExecContext(ctx, summary.RunID, org.ID, entry.Model, j,
				nullDate(entry.AnnouncementDate), nullDate(entry.EndOfSale), nullDate(entry.EndOfSupport),
				entry.UpgradePathURL, entry.ActiveUnits, entry.Urgency.String())
			if err != nil {
				return fmt.Errorf("inserting entry %s for organization %s: %w", entry.Model, org.ID, err)
			}
		}
	}

	return tx.Commit()
}

// ReadEntries returns one organization's entries in report order
func (e *SQLiteExporter) ReadEntries(ctx context.Context, orgID string) ([]model.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.readEntries(ctx, orgID)
}

func (e *SQLiteExporter) readEntries(ctx context.Context, orgID string) ([]model.Entry, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT model, announcement_date, end_of_sale, end_of_support, upgrade_path, active_units, urgency
		FROM lifecycle_entries
		WHERE organization_id = ?
		ORDER BY position
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	entries := []model.Entry{}
	for rows.Next() {
		var (
			entry                           model.Entry
			announced, endOfSale, endOfSupp sql.NullString
			urgency                         string
		)
		if err := rows.Scan(&entry.Model, &announced, &endOfSale, &endOfSupp, &entry.UpgradePathURL, &entry.ActiveUnits, &urgency); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entry.AnnouncementDate = parseDate(announced)
		entry.EndOfSale = parseDate(endOfSale)
		entry.EndOfSupport = parseDate(endOfSupp)
		if err := entry.Urgency.UnmarshalText([]byte(urgency)); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ReadSummary loads the snapshot back into a RunSummary
func (e *SQLiteExporter) ReadSummary(ctx context.Context) (*model.RunSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var (
		summary   model.RunSummary
		generated string
	)
	err := e.db.QueryRowContext(ctx, `
		SELECT id, generated_at, ok_count, empty_count, failed_count FROM report_runs LIMIT 1
	`).Scan(&summary.RunID, &generated, &summary.Counts.OK, &summary.Counts.Empty, &summary.Counts.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRun
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}
	if summary.GeneratedAt, err = time.Parse(time.RFC3339, generated); err != nil {
		return nil, fmt.Errorf("parsing run timestamp: %w", err)
	}

	rows, err := e.db.QueryContext(ctx, `
		SELECT id, name, status, error FROM organizations WHERE run_id = ? ORDER BY position
	`, summary.RunID)
	if err != nil {
		return nil, fmt.Errorf("querying organizations: %w", err)
	}

	for rows.Next() {
		var (
			rep    model.OrganizationReport
			status string
		)
		if err := rows.Scan(&rep.Organization.ID, &rep.Organization.Name, &status, &rep.Error); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning organization: %w", err)
		}
		rep.Status = model.ReportStatus(status)
		summary.Reports = append(summary.Reports, rep)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating organizations: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	for i := range summary.Reports {
		entries, err := e.readEntries(ctx, summary.Reports[i].Organization.ID)
		if err != nil {
			return nil, err
		}
		summary.Reports[i].Entries = entries
	}
	return &summary, nil
}

func nullDate(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}

func parseDate(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
