package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/julianstephens/medweek/internal/models"
	"github.com/julianstephens/medweek/internal/storage"
	"github.com/julianstephens/medweek/internal/storage/sqlite"
)

// NewTestStore creates an in-memory sqlite store with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s := sqlite.NewStore(sqlite.MemoryPath)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// ErrBackendDown is returned by every FailingStore call.
var ErrBackendDown = errors.New("backend down")

// FailingStore wraps a provider and fails the calls selected by its flags.
type FailingStore struct {
	storage.Provider

	FailReads  bool
	FailWrites bool
}

func (f *FailingStore) readErr() error {
	if f.FailReads {
		return ErrBackendDown
	}
	return nil
}

func (f *FailingStore) writeErr() error {
	if f.FailWrites {
		return ErrBackendDown
	}
	return nil
}

func (f *FailingStore) AddSchedule(ctx context.Context, s models.Schedule) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	return f.Provider.AddSchedule(ctx, s)
}

func (f *FailingStore) GetSchedule(ctx context.Context, userID, id string) (models.Schedule, error) {
	if err := f.readErr(); err != nil {
		return models.Schedule{}, err
	}
	return f.Provider.GetSchedule(ctx, userID, id)
}

func (f *FailingStore) ListSchedules(ctx context.Context, userID string) ([]models.Schedule, error) {
	if err := f.readErr(); err != nil {
		return nil, err
	}
	return f.Provider.ListSchedules(ctx, userID)
}

func (f *FailingStore) UpdateSchedule(ctx context.Context, s models.Schedule) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	return f.Provider.UpdateSchedule(ctx, s)
}

func (f *FailingStore) DeleteSchedule(ctx context.Context, userID, id string) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	return f.Provider.DeleteSchedule(ctx, userID, id)
}

func (f *FailingStore) AddAdherenceEntry(ctx context.Context, e models.AdherenceEntry) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	return f.Provider.AddAdherenceEntry(ctx, e)
}

func (f *FailingStore) GetAdherenceEntry(ctx context.Context, userID, scheduleID, date string) (models.AdherenceEntry, error) {
	if err := f.readErr(); err != nil {
		return models.AdherenceEntry{}, err
	}
	return f.Provider.GetAdherenceEntry(ctx, userID, scheduleID, date)
}

func (f *FailingStore) DeleteAdherenceEntry(ctx context.Context, userID, scheduleID, date string) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	return f.Provider.DeleteAdherenceEntry(ctx, userID, scheduleID, date)
}

func (f *FailingStore) ListAdherenceEntries(ctx context.Context, userID, startDate, endDate string) ([]models.AdherenceEntry, error) {
	if err := f.readErr(); err != nil {
		return nil, err
	}
	return f.Provider.ListAdherenceEntries(ctx, userID, startDate, endDate)
}

func (f *FailingStore) CountAdherenceEntries(ctx context.Context, userID, scheduleID string) (int, error) {
	if err := f.readErr(); err != nil {
		return 0, err
	}
	return f.Provider.CountAdherenceEntries(ctx, userID, scheduleID)
}
