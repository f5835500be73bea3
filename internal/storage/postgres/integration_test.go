package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/medweek/internal/errors"
	"github.com/julianstephens/medweek/internal/models"
)

// TestStore_Integration exercises the store against a real database.
// Set POSTGRES_TEST_URL to run it, e.g.
// POSTGRES_TEST_URL="postgres://medweek_user@localhost:5432/medweek_test?sslmode=disable"
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	ctx := context.Background()
	store := New(connStr)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	userID := "it-" + uuid.NewString()
	now := time.Now().UTC().Truncate(time.Second)

	schedule := models.Schedule{
		ID:        uuid.NewString(),
		UserID:    userID,
		DrugName:  "metformin",
		Time:      models.MustTimeOfDay("08:00"),
		Days:      []models.Weekday{models.Mon, models.Thu},
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.Run("Schedules", func(t *testing.T) {
		if err := store.AddSchedule(ctx, schedule); err != nil {
			t.Fatalf("Failed to add schedule: %v", err)
		}

		got, err := store.GetSchedule(ctx, userID, schedule.ID)
		if err != nil {
			t.Fatalf("Failed to get schedule: %v", err)
		}
		if models.FormatWeekdays(got.Days) != "Mon,Thu" {
			t.Errorf("Expected days Mon,Thu, got %v", got.Days)
		}

		list, err := store.ListSchedules(ctx, userID)
		if err != nil {
			t.Fatalf("Failed to list schedules: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("Expected 1 schedule, got %d", len(list))
		}
	})

	t.Run("Adherence", func(t *testing.T) {
		entry := models.AdherenceEntry{
			ID:         uuid.NewString(),
			UserID:     userID,
			ScheduleID: schedule.ID,
			Date:       "2026-01-05",
			CreatedAt:  now,
		}
		if err := store.AddAdherenceEntry(ctx, entry); err != nil {
			t.Fatalf("Failed to add entry: %v", err)
		}

		got, err := store.GetAdherenceEntry(ctx, userID, schedule.ID, "2026-01-05")
		if err != nil {
			t.Fatalf("Failed to get entry: %v", err)
		}
		if got.Date != "2026-01-05" {
			t.Errorf("Expected date 2026-01-05, got %s", got.Date)
		}

		entries, err := store.ListAdherenceEntries(ctx, userID, "2026-01-05", "2026-01-12")
		if err != nil {
			t.Fatalf("Failed to list entries: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("Expected 1 entry, got %d", len(entries))
		}
	})

	t.Run("DeleteCascades", func(t *testing.T) {
		if err := store.DeleteSchedule(ctx, userID, schedule.ID); err != nil {
			t.Fatalf("Failed to delete schedule: %v", err)
		}
		count, err := store.CountAdherenceEntries(ctx, userID, schedule.ID)
		if err != nil {
			t.Fatalf("Failed to count entries: %v", err)
		}
		if count != 0 {
			t.Errorf("Expected 0 entries after delete, got %d", count)
		}
		if _, err := store.GetSchedule(ctx, userID, schedule.ID); !apperrors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}
