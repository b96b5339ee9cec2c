package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// pragmas run on every new handle, in order.
var pragmas = []struct {
	stmt string
	what string
}{
	{"PRAGMA journal_mode = WAL", "setting WAL mode"},
	// Writers queue behind the document lock instead of failing with SQLITE_BUSY.
	{"PRAGMA busy_timeout = 5000", "setting busy timeout"},
	{"PRAGMA foreign_keys = ON", "enabling foreign keys"},
}

// OpenDB opens the project document store at path and migrates it to the
// latest schema. Parent directories are created for file paths. MemoryPath
// is pinned to one connection so every query sees the same data.
func OpenDB(path string) (*sql.DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if path == MemoryPath {
		database.SetMaxOpenConns(1)
	}

	if err := prepare(database); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func prepare(database *sql.DB) error {
	for _, p := range pragmas {
		if _, err := database.Exec(p.stmt); err != nil {
			return fmt.Errorf("%s: %w", p.what, err)
		}
	}
	if err := Migrate(database); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
