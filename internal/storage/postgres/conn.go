package postgres

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	pq "github.com/lib/pq"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

func isURL(connStr string) bool {
	return strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://")
}

// param looks up key, case-insensitively, in either a URL query or a
// key=value DSN.
func param(connStr, key string) (string, bool) {
	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return "", false
		}
		for k, v := range u.Query() {
			if strings.EqualFold(k, key) && len(v) > 0 {
				return v[0], true
			}
		}
		return "", false
	}
	for _, field := range strings.Fields(connStr) {
		k, v, ok := strings.Cut(field, "=")
		if ok && strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

func hasParam(connStr, key string) bool {
	_, ok := param(connStr, key)
	return ok
}

// withSearchPath pins the schema unless the caller already chose one.
func withSearchPath(connStr, schema string) string {
	if hasParam(connStr, "search_path") {
		return connStr
	}
	if !isURL(connStr) {
		return strings.TrimSpace(connStr) + " search_path=" + schema
	}
	u, err := url.Parse(connStr)
	if err != nil {
		return connStr
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String()
}

// ValidateConnString accepts a URL or DSN that lib/pq can parse and that
// carries no password. Passwords belong in the OS keyring or in .pgpass.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	if !isURL(connStr) {
		if hasParam(connStr, "password") {
			return false, ErrEmbeddedCredentials
		}
		return true, nil
	}

	u, err := url.Parse(connStr)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	if _, set := u.User.Password(); set {
		return false, ErrEmbeddedCredentials
	}
	if u.Host == "" && u.User == nil && strings.Trim(u.Path, "/") == "" {
		return false, fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
	}
	if hasParam(connStr, "password") {
		return false, ErrEmbeddedCredentials
	}
	return true, nil
}
