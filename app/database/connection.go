// Package database persists crawl snapshots so repeated crawls can detect
// new and changed feeds and items through their checksums.
package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// NewConnection opens the SQLite database at path, creating the file when it
// does not exist.
func NewConnection(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// modernc sqlite serializes writes; a single connection avoids lock
	// contention errors under concurrent API calls.
	db.SetMaxOpenConns(1)

	return &DB{DB: db}, nil
}
