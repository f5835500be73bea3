// Package backup keeps rotating snapshots of the SQLite medication database.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/medweek/internal/logger"
)

const (
	// Keep is how many snapshots survive rotation.
	Keep      = 14
	DirName   = "backups"
	prefix    = "medweek-"
	suffix    = ".db"
	stampFmt  = "20060102-150405"
	maxSuffix = 100
)

// Snapshot describes one backup file on disk.
type Snapshot struct {
	Path  string
	Taken time.Time
	Size  int64
}

// Name is the snapshot's file name.
func (s Snapshot) Name() string {
	return filepath.Base(s.Path)
}

// Manager snapshots and restores a single SQLite file.
type Manager struct {
	dbPath string
	dir    string
	keep   int
	clock  func() time.Time
}

// NewManager stores snapshots in a backups directory next to dbPath.
func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), DirName),
		keep:   Keep,
		clock:  time.Now,
	}
}

// WithClock replaces the time source used to name snapshots.
func (m *Manager) WithClock(clock func() time.Time) *Manager {
	m.clock = clock
	return m
}

// WithKeep changes the rotation limit. Values below one disable rotation.
func (m *Manager) WithKeep(n int) *Manager {
	m.keep = n
	return m
}

func (m *Manager) Dir() string {
	return m.dir
}

// Create writes a new snapshot and prunes the oldest beyond the limit.
func (m *Manager) Create() (Snapshot, error) {
	snap, err := m.create()
	if err != nil {
		return Snapshot{}, err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate backups", "dir", m.dir, "error", err)
	}
	return snap, nil
}

func (m *Manager) create() (Snapshot, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, fmt.Errorf("database does not exist: %s", m.dbPath)
		}
		return Snapshot{}, fmt.Errorf("failed to access database: %w", err)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return Snapshot{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	taken := m.clock().UTC()
	path, err := m.freePath(taken)
	if err != nil {
		return Snapshot{}, err
	}
	if err := vacuumInto(m.dbPath, path); err != nil {
		return Snapshot{}, fmt.Errorf("failed to back up database: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return Snapshot{}, err
	}
	logger.Info("Created backup", "path", path, "size", info.Size())
	return Snapshot{Path: path, Taken: taken.Truncate(time.Second), Size: info.Size()}, nil
}

func (m *Manager) freePath(taken time.Time) (string, error) {
	base := prefix + taken.Format(stampFmt)
	path := filepath.Join(m.dir, base+suffix)
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		if n > maxSuffix {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s-%d%s", base, n, suffix))
	}
}

// vacuumInto copies src to dst through SQLite so a live database yields a
// consistent file.
func vacuumInto(src, dst string) error {
	db, err := sqlx.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()

	if err := probe(db); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := db.Exec("VACUUM INTO ?", dst); err != nil {
		return err
	}
	return nil
}

func probe(db *sqlx.DB) error {
	var n int
	return db.Get(&n, "SELECT COUNT(*) FROM sqlite_master")
}

// List returns snapshots newest first. Files that do not follow the naming
// scheme are ignored.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Snapshot{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	snaps := make([]Snapshot, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		taken, ok := parseName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		snaps = append(snaps, Snapshot{
			Path:  filepath.Join(m.dir, e.Name()),
			Taken: taken,
			Size:  info.Size(),
		})
	}
	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].Taken.Equal(snaps[j].Taken) {
			return snaps[i].Name() > snaps[j].Name()
		}
		return snaps[i].Taken.After(snaps[j].Taken)
	})
	return snaps, nil
}

// parseName reads the timestamp out of medweek-YYYYMMDD-HHMMSS[-N].db.
func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
	if len(stamp) > len(stampFmt) {
		stamp = stamp[:len(stampFmt)]
	}
	t, err := time.Parse(stampFmt, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (m *Manager) rotate() error {
	if m.keep < 1 {
		return nil
	}
	snaps, err := m.List()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(snaps); i++ {
		if err := os.Remove(snaps[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", snaps[i].Path, err)
		}
		logger.Debug("Removed old backup", "path", snaps[i].Path)
	}
	return nil
}

// Resolve finds a snapshot by path or by file name inside the backup
// directory. An empty ref picks the newest.
func (m *Manager) Resolve(ref string) (Snapshot, error) {
	snaps, err := m.List()
	if err != nil {
		return Snapshot{}, err
	}
	if strings.TrimSpace(ref) == "" {
		if len(snaps) == 0 {
			return Snapshot{}, fmt.Errorf("no backups found in %s", m.dir)
		}
		return snaps[0], nil
	}
	for _, s := range snaps {
		if s.Path == ref || s.Name() == ref {
			return s, nil
		}
	}
	info, err := os.Stat(ref)
	if err != nil {
		return Snapshot{}, fmt.Errorf("backup file does not exist: %s", ref)
	}
	return Snapshot{Path: ref, Taken: info.ModTime(), Size: info.Size()}, nil
}

// Restore replaces the database with snap. The current database is
// snapshotted first, without rotation, so a restore can be undone. The
// returned snapshot is that safety copy, zero when there was no database.
func (m *Manager) Restore(snap Snapshot) (Snapshot, error) {
	if err := verify(snap.Path); err != nil {
		return Snapshot{}, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var safety Snapshot
	if _, err := os.Stat(m.dbPath); err == nil {
		s, err := m.create()
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to back up current database before restore: %w", err)
		}
		safety = s
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(snap.Path, tmp); err != nil {
		return Snapshot{}, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tmp, "error", rmErr)
		}
		return Snapshot{}, fmt.Errorf("failed to restore database: %w", err)
	}
	// Stale WAL files would be replayed over the restored copy.
	for _, ext := range []string{"-wal", "-shm"} {
		if err := os.Remove(m.dbPath + ext); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove journal file", "path", m.dbPath+ext, "error", err)
		}
	}
	logger.Info("Restored database", "from", snap.Path, "to", m.dbPath)
	return safety, nil
}

func verify(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	db, err := sqlx.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	return probe(db)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := out.ReadFrom(in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
