package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/medweek/internal/constants"
)

var (
	// Logger is the global logger instance
	Logger *log.Logger

	file string
)

// Config controls where the medweek log goes.
type Config struct {
	Debug     bool
	ConfigDir string
	// LogDir overrides the default <ConfigDir>/logs location when set.
	LogDir string
}

// Init sends logs to a rotating medweek.log. Only warnings and errors are
// kept unless Debug is set, in which case everything is also echoed to stderr.
func Init(cfg Config) error {
	logDir := cfg.LogDir
	if logDir == "" {
		logDir = filepath.Join(cfg.ConfigDir, "logs")
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	path := filepath.Join(logDir, constants.AppName+".log")
	rotating := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	var w io.Writer = rotating
	if cfg.Debug {
		w = io.MultiWriter(os.Stderr, rotating)
	}
	Logger = newLogger(w, levelFor(cfg.Debug, log.WarnLevel), cfg.Debug)
	file = path
	return nil
}

// InitWriter points the global logger at w instead of a file. Used by
// tests and as the fallback when the log directory is not writable.
func InitWriter(w io.Writer, debug bool) {
	Logger = newLogger(w, levelFor(debug, log.InfoLevel), debug)
	file = ""
}

// File is the active log file, empty when logging to a plain writer.
func File() string {
	return file
}

func levelFor(debug bool, quiet log.Level) log.Level {
	if debug {
		return log.DebugLevel
	}
	return quiet
}

func newLogger(w io.Writer, level log.Level, reportCaller bool) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportCaller:    reportCaller,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// Fatal logs a fatal error and exits
func Fatal(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Fatal(msg, keyvals...)
	}
	os.Exit(1)
}
