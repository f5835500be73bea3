package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/medweek/internal/config"
	apperrors "github.com/julianstephens/medweek/internal/errors"
	"github.com/julianstephens/medweek/internal/identity"
	"github.com/julianstephens/medweek/internal/keyring"
	"github.com/julianstephens/medweek/internal/ledger"
	"github.com/julianstephens/medweek/internal/logger"
	"github.com/julianstephens/medweek/internal/models"
	"github.com/julianstephens/medweek/internal/reminder"
	"github.com/julianstephens/medweek/internal/schedules"
	"github.com/julianstephens/medweek/internal/storage"
	"github.com/julianstephens/medweek/internal/storage/postgres"
	"github.com/julianstephens/medweek/internal/storage/sqlite"
)

// Context is handed to every command's Run method.
type Context struct {
	Config     *config.Config
	ConfigPath string
	Store      storage.Provider
	Schedules  *schedules.Service
	Ledger     *ledger.Ledger
	Identity   identity.Provider
	Location   *time.Location
	Clock      func() time.Time
	Out        io.Writer
}

// NewContext wires the core services around store. Commands that run one
// shot use the Nop reminder port; the remind daemon swaps in a scheduler.
func NewContext(cfg *config.Config, store storage.Provider, id identity.Provider, loc *time.Location) *Context {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if loc == nil {
		loc = time.Local
	}
	l := ledger.New(store)
	return &Context{
		Config:    cfg,
		Store:     store,
		Schedules: schedules.New(store, l, reminder.Nop{}),
		Ledger:    l,
		Identity:  id,
		Location:  loc,
		Clock:     time.Now,
		Out:       os.Stdout,
	}
}

// WithReminders rebuilds the schedule service on top of port.
func (c *Context) WithReminders(port reminder.Port) {
	c.Schedules = schedules.New(c.Store, c.Ledger, port)
}

// Now is the current instant in the configured timezone.
func (c *Context) Now() time.Time {
	clock := c.Clock
	if clock == nil {
		clock = time.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return clock().In(loc)
}

// Context returns the base context for storage calls.
func (c *Context) Context() context.Context {
	return context.Background()
}

// User resolves the signed-in user.
func (c *Context) User(ctx context.Context) (string, error) {
	if c.Identity == nil {
		return "", apperrors.ErrNoCurrentUser
	}
	return c.Identity.CurrentUser(ctx)
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.writer(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.writer(), args...)
}

func (c *Context) writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// ResolveDatabase picks the database to open: an explicit value first, then
// a connection string stored in the OS keyring, then the default SQLite file.
// The second return reports whether the value came from the keyring.
func ResolveDatabase(explicit string) (string, bool) {
	if strings.TrimSpace(explicit) != "" {
		return config.ExpandPath(explicit), false
	}
	if connStr, err := keyring.GetConnectionString(); err == nil {
		return connStr, true
	} else if !errors.Is(err, keyring.ErrNotFound) {
		logger.Debug("Keyring lookup failed", "error", err)
	}
	return config.DefaultConfig().DatabasePath(), false
}

// OpenStore returns the backend for database without loading it.
// PostgreSQL connection strings given on the command line or in the config
// file must not carry a password; a keyring-held string may.
func OpenStore(database string, fromKeyring bool) (storage.Provider, error) {
	if !storage.IsPostgres(database) {
		return sqlite.NewStore(database), nil
	}
	if _, err := postgres.ValidateConnString(database); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) || !fromKeyring {
			return nil, err
		}
	}
	return postgres.New(database), nil
}

// ParseDays parses a comma-separated weekday list. "" and "none" yield an
// empty set.
func ParseDays(s string) ([]models.Weekday, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return []models.Weekday{}, nil
	}
	return models.ParseWeekdays(s)
}

// ParseDay parses a single weekday, defaulting to today's when s is empty.
func ParseDay(s string, now time.Time) (models.Weekday, error) {
	if strings.TrimSpace(s) == "" || strings.EqualFold(strings.TrimSpace(s), "today") {
		return models.FromTime(now.Weekday()), nil
	}
	return models.ParseWeekday(s)
}

// ShortID trims a uuid for table output.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FindSchedule resolves a schedule by full id, id prefix or drug name.
func (c *Context) FindSchedule(ctx context.Context, userID, ref string) (models.Schedule, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Schedule{}, apperrors.NotFound("schedule", ref)
	}
	all, err := c.Schedules.List(ctx, userID)
	if err != nil {
		return models.Schedule{}, err
	}

	var matches []models.Schedule
	name := models.NormalizeDrugName(ref)
	for _, s := range all {
		if s.ID == ref {
			return s, nil
		}
		if strings.HasPrefix(s.ID, ref) || models.NormalizeDrugName(s.DrugName) == name {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return models.Schedule{}, apperrors.NotFound("schedule", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Schedule{}, fmt.Errorf("%q matches %d schedules, use the id", ref, len(matches))
	}
}
