package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillNames(db); err != nil {
		return fmt.Errorf("backfilling project names: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS project_documents (
		path       TEXT PRIMARY KEY,
		owner      TEXT NOT NULL,
		project_id TEXT NOT NULL,
		revision   INTEGER NOT NULL DEFAULT 0 CHECK(revision >= 0),
		body       TEXT NOT NULL CHECK(json_valid(body)),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_project_documents_owner ON project_documents(owner)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_project_documents_owner_project
		ON project_documents(owner, project_id)`,

	// Denormalized project name for listing without decoding bodies
	`ALTER TABLE project_documents ADD COLUMN name TEXT NOT NULL DEFAULT ''`,
}

// migrateBackfillNames copies the project name out of the JSON body for
// rows written before the name column existed. Idempotent.
func migrateBackfillNames(db *sql.DB) error {
	_, err := db.Exec(`UPDATE project_documents
		SET name = COALESCE(json_extract(body, '$.name'), '')
		WHERE name = ''`)
	return err
}
