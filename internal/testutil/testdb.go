package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/wbsctl/internal/db"
	"github.com/stretchr/testify/require"
)

// NewTestDB opens an in-memory document store with the current schema. It
// is closed when the test completes.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err, "opening test database")
	t.Cleanup(func() { _ = database.Close() })
	return database
}
