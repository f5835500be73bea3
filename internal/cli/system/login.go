package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/medweek/internal/cli"
	"github.com/julianstephens/medweek/internal/config"
	apperrors "github.com/julianstephens/medweek/internal/errors"
	"github.com/julianstephens/medweek/internal/keyring"
)

// LoginCmd sets the user every command is scoped to.
type LoginCmd struct {
	User   string `arg:"" help:"User ID to sign in as."`
	Config bool   `help:"Store the user in the config file instead of the OS keyring."`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	userID := strings.TrimSpace(c.User)
	if userID == "" {
		return errors.New("user ID cannot be empty")
	}

	if c.Config {
		if ctx.ConfigPath == "" {
			return errors.New("no config file path configured")
		}
		ctx.Config.User = userID
		if err := ctx.Config.Save(config.ExpandPath(ctx.ConfigPath)); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		ctx.Printf("✓ Signed in as %s (config file)\n", userID)
		return nil
	}

	if err := keyring.SetCurrentUser(userID); err != nil {
		return fmt.Errorf("failed to store user in keyring: %w", err)
	}
	ctx.Printf("✓ Signed in as %s\n", userID)
	return nil
}

// LogoutCmd removes the user stored by LoginCmd.
type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	err := keyring.DeleteCurrentUser()
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to remove user from keyring: %w", err)
	}
	if ctx.Config.User != "" && ctx.ConfigPath != "" {
		ctx.Config.User = ""
		if err := ctx.Config.Save(config.ExpandPath(ctx.ConfigPath)); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
	}
	ctx.Println("✓ Signed out")
	return nil
}

// WhoamiCmd prints the current user.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.User(ctx.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrNoCurrentUser) {
			ctx.Println("Not signed in")
		}
		return err
	}
	ctx.Println(userID)
	return nil
}
