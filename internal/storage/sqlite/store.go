package sqlite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	apperrors "github.com/julianstephens/medweek/internal/errors"
	"github.com/julianstephens/medweek/internal/logger"
	"github.com/julianstephens/medweek/internal/migration"
	"github.com/julianstephens/medweek/internal/storage"
	"github.com/julianstephens/medweek/migrations"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var errNotLoaded = errors.New("database not loaded")

var _ storage.Provider = (*Store)(nil)

type Store struct {
	path string
	db   *sqlx.DB
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

// Init creates the database file if needed and applies pending migrations.
func (s *Store) Init(ctx context.Context) error {
	if s.path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if s.db == nil {
		if err := s.open(ctx); err != nil {
			return err
		}
	}

	if err := s.runMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Load opens an existing, initialized database.
func (s *Store) Load(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	if s.path != MemoryPath {
		if _, err := os.Stat(s.path); os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'medweek init' first")
		}
	}

	if err := s.open(ctx); err != nil {
		return err
	}
	return s.validateSchemaVersion(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying connection, or nil before Init/Load.
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

func (s *Store) open(ctx context.Context) error {
	db, err := sqlx.Open("sqlite", s.path)
	if err != nil {
		return apperrors.Unavailable("open database", err)
	}

	// One connection: the database belongs to a single user on a single
	// device, and an in-memory database exists only on its own connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return apperrors.Unavailable("enable foreign keys", err)
	}
	if s.path != MemoryPath {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return apperrors.Unavailable("enable WAL mode", err)
		}
	}

	s.db = db
	return nil
}

func (s *Store) ready() error {
	if s.db == nil {
		return apperrors.Unavailable("sqlite", errNotLoaded)
	}
	return nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS), nil
}

func (s *Store) runMigrations(ctx context.Context) error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	_, err = runner.ApplyMigrations(ctx, func(msg string) {
		logger.Info(msg, "backend", "sqlite")
	})
	return err
}

func (s *Store) validateSchemaVersion(ctx context.Context) error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion(ctx)
}

// SchemaStatus reports the applied and newest schema versions.
func (s *Store) SchemaStatus(ctx context.Context) (migration.Status, error) {
	if err := s.ready(); err != nil {
		return migration.Status{}, err
	}
	runner, err := s.runner()
	if err != nil {
		return migration.Status{}, err
	}
	return runner.Status(ctx)
}
