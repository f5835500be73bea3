package errors

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "typed error",
			err:      Invalid("drug name is empty"),
			expected: "Error: invalid schedule: drug name is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("failed to load %s", "schedules")
	if got != "Error: failed to load schedules" {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestUnavailable(t *testing.T) {
	if Unavailable("noop", nil) != nil {
		t.Error("Unavailable(nil) should be nil")
	}

	cause := sql.ErrConnDone
	err := Unavailable("list schedules", cause)
	if !Is(err, ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable in chain, got %v", err)
	}
	if !Is(err, cause) {
		t.Errorf("expected driver error to stay in chain, got %v", err)
	}
	if !strings.Contains(err.Error(), "list schedules") {
		t.Errorf("expected operation in message, got %q", err.Error())
	}

	// Wrapping twice does not stack prefixes.
	again := Unavailable("outer", err)
	if again != err {
		t.Errorf("expected already-wrapped error to pass through, got %v", again)
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("schedule", "abc")
	if !Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if Is(err, ErrStorageUnavailable) {
		t.Error("NotFound must not match ErrStorageUnavailable")
	}
}

func TestHint(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		empty bool
	}{
		{name: "storage", err: Unavailable("x", errors.New("down"))},
		{name: "no user", err: ErrNoCurrentUser},
		{name: "invalid", err: Invalid("no days")},
		{name: "other", err: errors.New("boom"), empty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Hint(tt.err); (got == "") != tt.empty {
				t.Errorf("Hint(%v) = %q", tt.err, got)
			}
		})
	}
}
