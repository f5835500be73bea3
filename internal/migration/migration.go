// Package migration applies the embedded, numbered SQL files that define the
// medweek schema and records the applied version in schema_version.
package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrSchemaAhead means the database was migrated by a newer medweek.
	ErrSchemaAhead = errors.New("database schema is newer than this build supports")
	// ErrSchemaBehind means migrations are pending.
	ErrSchemaBehind = errors.New("database schema is out of date")
)

// Migration is one NNN_name.sql file.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Status compares the applied version with the newest embedded file.
type Status struct {
	Current int
	Latest  int
}

func (s Status) Pending() int {
	if s.Latest <= s.Current {
		return 0
	}
	return s.Latest - s.Current
}

// Check reports ErrSchemaAhead or ErrSchemaBehind, wrapped with both versions.
func (s Status) Check() error {
	switch {
	case s.Current > s.Latest:
		return fmt.Errorf("%w: version %d, supported %d; upgrade medweek", ErrSchemaAhead, s.Current, s.Latest)
	case s.Current < s.Latest:
		return fmt.Errorf("%w: version %d, expected %d; run 'medweek init' to migrate", ErrSchemaBehind, s.Current, s.Latest)
	}
	return nil
}

// Runner works for any sqlx driver; the version insert is rebound to the
// driver's placeholder style.
type Runner struct {
	db *sqlx.DB
	fs fs.FS
}

func NewRunner(db *sqlx.DB, migrationFS fs.FS) *Runner {
	return &Runner{db: db, fs: migrationFS}
}

// EnsureSchemaVersionTable creates schema_version if it is missing.
func (r *Runner) EnsureSchemaVersionTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`)
	return err
}

// GetCurrentVersion is 0 for a database that has never been migrated.
func (r *Runner) GetCurrentVersion(ctx context.Context) (int, error) {
	if err := r.EnsureSchemaVersionTable(ctx); err != nil {
		return 0, fmt.Errorf("failed to ensure schema_version table: %w", err)
	}
	var version int
	switch err := r.db.GetContext(ctx, &version, "SELECT version FROM schema_version"); {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// parseFileName splits "007_add_index.sql" into 7 and "add_index".
func parseFileName(name string) (int, string, error) {
	stem := strings.TrimSuffix(name, path.Ext(name))
	num, label, ok := strings.Cut(stem, "_")
	if !ok {
		return 0, "", fmt.Errorf("invalid migration filename format: %s (expected NNN_name.sql)", name)
	}
	version, err := strconv.Atoi(num)
	if err != nil {
		return 0, "", fmt.Errorf("invalid version number in filename %s: %w", name, err)
	}
	if version < 1 {
		return 0, "", fmt.Errorf("invalid version number in filename %s: version must be at least 1", name)
	}
	return version, label, nil
}

// ReadMigrationFiles returns every .sql file in version order.
func (r *Runner) ReadMigrationFiles() ([]Migration, error) {
	entries, err := fs.ReadDir(r.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	seen := make(map[int]string)
	var out []Migration
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}
		version, label, err := parseFileName(e.Name())
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("duplicate migration version %d (%s, %s)", version, prev, e.Name())
		}
		seen[version] = e.Name()

		body, err := fs.ReadFile(r.fs, e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", e.Name(), err)
		}
		out = append(out, Migration{Version: version, Name: label, SQL: string(body)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Status reads the applied version and the newest embedded one.
func (r *Runner) Status(ctx context.Context) (Status, error) {
	files, err := r.ReadMigrationFiles()
	if err != nil {
		return Status{}, err
	}
	current, err := r.GetCurrentVersion(ctx)
	if err != nil {
		return Status{}, err
	}
	st := Status{Current: current}
	if len(files) > 0 {
		st.Latest = files[len(files)-1].Version
	}
	return st, nil
}

// ApplyMigrations runs every pending file, each in its own transaction with
// the version bump, and returns how many were applied. logFn receives
// progress lines and may be nil.
func (r *Runner) ApplyMigrations(ctx context.Context, logFn func(string)) (int, error) {
	if logFn == nil {
		logFn = func(string) {}
	}

	files, err := r.ReadMigrationFiles()
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		logFn("No migration files found")
		return 0, nil
	}
	current, err := r.GetCurrentVersion(ctx)
	if err != nil {
		return 0, err
	}
	st := Status{Current: current, Latest: files[len(files)-1].Version}
	if err := st.Check(); errors.Is(err, ErrSchemaAhead) {
		return 0, err
	}
	if st.Pending() == 0 {
		logFn(fmt.Sprintf("Database schema is up to date (version %d)", current))
		return 0, nil
	}

	logFn(fmt.Sprintf("Applying migrations from version %d to %d", st.Current, st.Latest))
	start := time.Now()
	applied := 0
	for _, m := range files {
		if m.Version <= current {
			continue
		}
		if err := r.apply(ctx, m); err != nil {
			return applied, err
		}
		applied++
		logFn(fmt.Sprintf("Migration %d (%s) applied", m.Version, m.Name))
	}
	logFn(fmt.Sprintf("Applied %d migration(s) in %v", applied, time.Since(start).Round(time.Millisecond)))
	return applied, nil
}

func (r *Runner) apply(ctx context.Context, m Migration) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM schema_version"); err != nil {
		return fmt.Errorf("failed to clear schema version: %w", err)
	}
	if _, err = tx.ExecContext(ctx, r.db.Rebind("INSERT INTO schema_version (version) VALUES (?)"), m.Version); err != nil {
		return fmt.Errorf("failed to record schema version %d: %w", m.Version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}

// ValidateVersion fails unless the database is exactly at the newest version.
func (r *Runner) ValidateVersion(ctx context.Context) error {
	st, err := r.Status(ctx)
	if err != nil {
		return err
	}
	return st.Check()
}
