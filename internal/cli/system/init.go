package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/medweek/internal/backup"
	"github.com/julianstephens/medweek/internal/cli"
	"github.com/julianstephens/medweek/internal/config"
	"github.com/julianstephens/medweek/internal/storage/sqlite"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting the existing SQLite database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	bg := ctx.Context()
	dbPath := ctx.Store.GetConfigPath()

	if c.Force {
		if _, ok := ctx.Store.(*sqlite.Store); !ok {
			return fmt.Errorf("--force only applies to SQLite databases")
		}
		if _, err := os.Stat(dbPath); err == nil {
			// Close first so the file is not held open while it is removed
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			snap, err := backup.NewManager(dbPath).WithClock(ctx.Now).Create()
			if err != nil {
				return fmt.Errorf("failed to back up existing database: %w", err)
			}
			ctx.Printf("Backed up existing database to: %s\n", snap.Path)
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(bg); err != nil {
		return err
	}
	ctx.Printf("Initialized medweek storage at: %s\n", ctx.Store.GetConfigPath())

	if ctx.ConfigPath != "" {
		path := config.ExpandPath(ctx.ConfigPath)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := ctx.Config.Save(path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			ctx.Printf("Wrote default config to: %s\n", path)
		}
	}
	return nil
}
