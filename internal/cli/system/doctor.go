package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/medweek/internal/cli"
	"github.com/julianstephens/medweek/internal/keyring"
	"github.com/julianstephens/medweek/internal/logger"
	"github.com/julianstephens/medweek/internal/migration"
	"github.com/julianstephens/medweek/internal/models"
	"github.com/julianstephens/medweek/internal/reminder"
)

type DoctorCmd struct{}

type check struct {
	name string
	// warnOnly checks never fail the run
	warnOnly bool
	// needsDB checks are skipped when the database is not reachable
	needsDB bool
	run     func(ctx *cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{name: "Database reachable", run: checkDBReachable},
		{name: "Schema version", needsDB: true, run: checkSchema},
		{name: "Timezone", run: checkTimezone},
		{name: "Signed-in user", run: checkUser},
		{name: "Schedules valid", needsDB: true, run: checkSchedules},
		{name: "OS keyring", warnOnly: true, run: checkKeyring},
		{name: "Tray notifier", warnOnly: true, run: checkTray},
		{name: "Log file", warnOnly: true, run: checkLogFile},
	}

	hasError := false
	dbReachable := false
	for i, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
			if i == 0 {
				dbReachable = true
			}
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Context()); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	return nil
}

type schemaReporter interface {
	SchemaStatus(ctx context.Context) (migration.Status, error)
}

func checkSchema(ctx *cli.Context) error {
	r, ok := ctx.Store.(schemaReporter)
	if !ok {
		return nil
	}
	st, err := r.SchemaStatus(ctx.Context())
	if err != nil {
		return err
	}
	return st.Check()
}

func checkTimezone(ctx *cli.Context) error {
	if _, err := ctx.Config.Location(); err != nil {
		return err
	}
	return nil
}

func checkUser(ctx *cli.Context) error {
	_, err := ctx.User(ctx.Context())
	return err
}

func checkSchedules(ctx *cli.Context) error {
	bg := ctx.Context()
	userID, err := ctx.User(bg)
	if err != nil {
		return errors.New("no user to check schedules for")
	}
	schedules, err := ctx.Schedules.List(bg, userID)
	if err != nil {
		return err
	}
	var errs []error
	for _, s := range schedules {
		if !s.Time.Valid() {
			errs = append(errs, fmt.Errorf("%s: time %s out of range", s.ID, s.Time))
		}
		if models.NormalizeDrugName(s.DrugName) == "" {
			errs = append(errs, fmt.Errorf("%s: blank drug name", s.ID))
		}
	}
	return errors.Join(errs...)
}

func checkKeyring(*cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkTray(*cli.Context) error {
	dir, err := reminder.GetTrayAppConfigDir()
	if err != nil {
		return err
	}
	if err := reminder.TrayRunning(dir); err != nil {
		return fmt.Errorf("reminders will only be logged: %w", err)
	}
	return nil
}

func checkLogFile(*cli.Context) error {
	if logger.File() == "" {
		return errors.New("logs are going to stderr only")
	}
	return nil
}
