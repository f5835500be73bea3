package system

import (
	"fmt"
	"path/filepath"

	"github.com/julianstephens/medweek/internal/backup"
	"github.com/julianstephens/medweek/internal/cli"
	"github.com/julianstephens/medweek/internal/storage/sqlite"
)

type BackupCreateCmd struct{}

type BackupListCmd struct{}

type BackupRestoreCmd struct {
	Backup string `arg:"" optional:"" help:"Backup file name or path. Defaults to the newest backup."`
}

func backupManager(ctx *cli.Context) (*backup.Manager, error) {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil, fmt.Errorf("backups are only supported for SQLite databases")
	}
	return backup.NewManager(ctx.Store.GetConfigPath()).WithClock(ctx.Now), nil
}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	snap, err := mgr.Create()
	if err != nil {
		return err
	}
	ctx.Printf("Created backup: %s\n", snap.Path)
	return nil
}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	snaps, err := mgr.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		ctx.Printf("No backups found in %s\n", mgr.Dir())
		return nil
	}
	ctx.Printf("Backups in %s:\n", mgr.Dir())
	for _, s := range snaps {
		ctx.Printf("  %s  %s  %d KB\n", s.Name(), s.Taken.In(ctx.Location).Format("2006-01-02 15:04:05"), (s.Size+1023)/1024)
	}
	return nil
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	snap, err := mgr.Resolve(c.Backup)
	if err != nil {
		return err
	}
	// Release the file before it is replaced
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	safety, err := mgr.Restore(snap)
	if err != nil {
		return err
	}
	if safety.Path != "" {
		ctx.Printf("Saved current database as: %s\n", filepath.Base(safety.Path))
	}
	ctx.Printf("Restored database from: %s\n", snap.Name())
	return nil
}
