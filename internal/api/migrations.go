package api

import (
	"database/sql"
	"fmt"
)

// columnExists checks if a column exists on a given table (SQLite PRAGMA table_info)
func columnExists(db *sql.DB, table string, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	var cid int
	var name string
	var ctype string
	var notnull int
	var dflt sql.NullString
	var pk int

	for rows.Next() {
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// MigrateAddLastReminded ensures the deadlines table has the
// last_reminded_at column used by the reminder sweep (idempotent; covers
// databases created before email reminders existed).
func MigrateAddLastReminded(db *sql.DB) error {
	exists, err := columnExists(db, "deadlines", "last_reminded_at")
	if err != nil {
		return err
	}
	if !exists {
		if _, err := db.Exec("ALTER TABLE deadlines ADD COLUMN last_reminded_at DATETIME"); err != nil {
			return err
		}
	}
	return nil
}

// MigrateAddSettingsTheme ensures user_settings carries the theme column
// (idempotent).
func MigrateAddSettingsTheme(db *sql.DB) error {
	exists, err := columnExists(db, "user_settings", "theme")
	if err != nil {
		return err
	}
	if !exists {
		if _, err := db.Exec("ALTER TABLE user_settings ADD COLUMN theme TEXT NOT NULL DEFAULT 'system'"); err != nil {
			return err
		}
	}
	return nil
}
