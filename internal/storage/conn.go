package storage

import "strings"

// IsPostgres reports whether a configured database string names a
// PostgreSQL server rather than a SQLite file.
func IsPostgres(database string) bool {
	return strings.HasPrefix(database, "postgres://") || strings.HasPrefix(database, "postgresql://")
}
