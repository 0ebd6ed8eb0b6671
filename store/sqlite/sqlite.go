// Package sqlite implements a store.Storage backend on SQLite. The whole
// collection is replaced in one transaction on every save, matching the
// full-replace contract of the file backend.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"listbot/store"
)

// Storage implements store.Storage using SQLite.
type Storage struct {
	db *sql.DB
}

// New creates a new SQLite backend and initializes the database schema.
func New(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// initSchema creates the database tables if they don't exist.
func (s *Storage) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS lists (
			name TEXT PRIMARY KEY,
			position INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS items (
			list_name TEXT NOT NULL,
			position INTEGER NOT NULL,
			item TEXT NOT NULL,
			PRIMARY KEY (list_name, position),
			FOREIGN KEY (list_name) REFERENCES lists(name) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_items_list_name ON items(list_name);
	`

	if _, err := s.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}

	_, err := s.db.Exec(schema)
	return err
}

// Load reads the full collection, lists and items ordered by position.
func (s *Storage) Load() (*store.Collection, error) {
	col := store.NewCollection()

	rows, err := s.db.Query("SELECT name FROM lists ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to load lists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		col.CreateList(name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := s.db.Query("SELECT list_name, item FROM items ORDER BY list_name, position")
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var listName, item string
		if err := itemRows.Scan(&listName, &item); err != nil {
			return nil, err
		}
		col.Append(listName, item)
	}
	return col, itemRows.Err()
}

// Save replaces the stored collection with c in a single transaction.
func (s *Storage) Save(c *store.Collection) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM items"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM lists"); err != nil {
		return err
	}

	for pos, name := range c.Names() {
		if _, err := tx.Exec("INSERT INTO lists (name, position) VALUES (?, ?)", name, pos); err != nil {
			return err
		}
		for i, item := range c.Items(name) {
			if _, err := tx.Exec(
				"INSERT INTO items (list_name, position, item) VALUES (?, ?, ?)",
				name, i, item,
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Close closes the database connection.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Verify interface compliance at compile time
var _ store.Storage = (*Storage)(nil)
