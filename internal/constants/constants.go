package constants

import "time"

const (
	AppName            = "medweek"
	Version            = "v0.1.0"
	DefaultConfigPath  = "~/.config/medweek/config.yaml"
	DefaultDBPath      = "~/.config/medweek/medweek.db"
	DefaultKeyringUser = "database-connection"
	CurrentUserKey     = "current-user"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// TimestampFormat is a fixed-width RFC3339 layout so stored timestamps sort lexically.
	TimestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

	// DaysInWeek is the length of a WeekWindow.
	DaysInWeek = 7

	// NextOccurrenceHorizonDays bounds the forward search: today through +7.
	NextOccurrenceHorizonDays = 7

	// CountdownRefreshInterval is how often views recompute countdowns.
	CountdownRefreshInterval = 30 * time.Second

	// Reminder constants
	DefaultReminderResync     = 5 * time.Minute
	NotificationDurationMs    = 5000
	NotifyMaxRetries          = 3
	NotifyRetryDelay          = 100 * time.Millisecond
	NotifierLockfileName      = "medweek-notifier.lock"
	TrayAppIdentifier         = "com.julianstephens.medweek"
	TrayExecutablePrefix      = "medweek-tray"
	DefaultReminderDurationMs = NotificationDurationMs

	// Config defaults
	DefaultTimezone = "Local"
)
