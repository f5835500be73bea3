package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/medweek/internal/constants"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Timezone != constants.DefaultTimezone {
		t.Errorf("Timezone = %q, want %q", cfg.Timezone, constants.DefaultTimezone)
	}
	if !cfg.Reminders.Enabled {
		t.Error("reminders should be enabled by default")
	}
	if cfg.ResyncInterval() != constants.DefaultReminderResync {
		t.Errorf("ResyncInterval() = %v", cfg.ResyncInterval())
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Database = "/tmp/medweek.db"
	cfg.Timezone = "Europe/Tirane"
	cfg.User = "alice"
	cfg.Reminders.Resync = "90s"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config permissions = %o, want 600", perm)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Database != "/tmp/medweek.db" || loaded.Timezone != "Europe/Tirane" || loaded.User != "alice" {
		t.Errorf("Load() = %+v", loaded)
	}
	if loaded.ResyncInterval() != 90*time.Second {
		t.Errorf("ResyncInterval() = %v, want 90s", loaded.ResyncInterval())
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("timezone: UTC\nuser: from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MEDWEEK_USER", "from-env")
	t.Setenv("MEDWEEK_REMINDERS_ENABLED", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.User != "from-env" {
		t.Errorf("User = %q, want from-env", cfg.User)
	}
	if cfg.Reminders.Enabled {
		t.Error("MEDWEEK_REMINDERS_ENABLED=false was ignored")
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC", cfg.Timezone)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("timezone: [unclosed\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on malformed YAML")
	}
}

func TestLocation(t *testing.T) {
	tests := []struct {
		tz      string
		want    string
		wantErr bool
	}{
		{"Local", time.Local.String(), false},
		{"", time.Local.String(), false},
		{"UTC", "UTC", false},
		{"America/New_York", "America/New_York", false},
		{"Not/AZone", "", true},
	}

	for _, tt := range tests {
		cfg := &Config{Timezone: tt.tz}
		loc, err := cfg.Location()
		if (err != nil) != tt.wantErr {
			t.Errorf("Location(%q) error = %v, wantErr %v", tt.tz, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && loc.String() != tt.want {
			t.Errorf("Location(%q) = %s, want %s", tt.tz, loc, tt.want)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandPath("~/x/y.db"); got != filepath.Join(home, "x", "y.db") {
		t.Errorf("ExpandPath(~/x/y.db) = %s", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandPath(/abs/path) = %s", got)
	}
	if got := ExpandPath("postgres://u@h/db"); got != "postgres://u@h/db" {
		t.Errorf("ExpandPath(postgres url) = %s", got)
	}
}
