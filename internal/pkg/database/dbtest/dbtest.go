// Package dbtest opens migrated in-memory catalogs for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/bjorheimar/catalog-sync/internal/pkg/database"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func New(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

// Count returns the number of rows in table matching where (may be empty).
func Count(t *testing.T, db *sqlx.DB, table, where string, args ...interface{}) int {
	t.Helper()
	q := "SELECT count(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	require.NoError(t, db.Get(&n, db.Rebind(q), args...))
	return n
}
