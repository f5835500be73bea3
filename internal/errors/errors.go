package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/medweek/internal/logger"
)

var (
	// ErrInvalidSchedule is returned when a schedule is rejected before any write
	// (empty drug name, empty day set, inactive weekday).
	ErrInvalidSchedule = stderrors.New("invalid schedule")
	// ErrStorageUnavailable is returned when the persistence backend cannot be reached
	// or fails. Adherence state is unknown when this is returned.
	ErrStorageUnavailable = stderrors.New("storage unavailable")
	// ErrNotFound is returned when a schedule or entry does not exist for the user.
	ErrNotFound = stderrors.New("not found")
	// ErrNoCurrentUser is returned when no user identity is configured.
	ErrNoCurrentUser = stderrors.New("no current user")
)

// Invalid wraps ErrInvalidSchedule with a reason.
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidSchedule, fmt.Sprintf(format, args...))
}

// Unavailable wraps a backend failure so callers can match ErrStorageUnavailable
// while the driver error stays in the chain.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}

// NotFound wraps ErrNotFound with the kind and id of the missing record.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint returns a short follow-up line for errors the user can act on.
func Hint(err error) string {
	switch {
	case Is(err, ErrStorageUnavailable):
		return "The database could not be reached. Retry the command once it is available."
	case Is(err, ErrNoCurrentUser):
		return "No user is signed in. Run 'medweek login <user-id>' first."
	case Is(err, ErrInvalidSchedule):
		return "A schedule needs a drug name and at least one weekday."
	default:
		return ""
	}
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		if hint := Hint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "%s\n", hint)
		}
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
