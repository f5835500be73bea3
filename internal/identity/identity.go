// Package identity resolves the user every core operation is scoped to.
package identity

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/julianstephens/medweek/internal/errors"
	"github.com/julianstephens/medweek/internal/keyring"
	"github.com/julianstephens/medweek/internal/logger"
)

// Provider returns the current user id or an error matching
// apperrors.ErrNoCurrentUser.
type Provider interface {
	CurrentUser(ctx context.Context) (string, error)
}

// Static always returns the same user; an empty id means nobody is signed in.
type Static string

func (s Static) CurrentUser(context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", apperrors.ErrNoCurrentUser
	}
	return strings.TrimSpace(string(s)), nil
}

// Keyring reads the user stored by `medweek login`.
type Keyring struct{}

func (Keyring) CurrentUser(context.Context) (string, error) {
	userID, err := keyring.GetCurrentUser()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", apperrors.ErrNoCurrentUser
		}
		return "", err
	}
	return userID, nil
}

// Chain asks each provider in order and returns the first user found. A
// provider failing for any reason other than a missing user is logged and
// skipped.
type Chain []Provider

func (c Chain) CurrentUser(ctx context.Context) (string, error) {
	for _, p := range c {
		userID, err := p.CurrentUser(ctx)
		if err == nil {
			return userID, nil
		}
		if !errors.Is(err, apperrors.ErrNoCurrentUser) {
			logger.Debug("Identity source failed", "error", err)
		}
	}
	return "", apperrors.ErrNoCurrentUser
}
