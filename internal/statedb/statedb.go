// Package statedb persists panel facets and a journal of panel
// notifications in SQLite.
package statedb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SchemaVersion tracks the current database schema version.
// Bump this when adding migrations.
const SchemaVersion = 1

// FileName is the database file inside the sheetdeck home.
const FileName = "state.db"

// StateDB wraps a SQLite database.
// Safe for concurrent use from multiple goroutines within one process.
// Multiple OS processes can read/write via WAL mode + busy timeout.
type StateDB struct {
	db *sql.DB
}

// EventRow is one journaled panel notification.
type EventRow struct {
	ID      int64
	PanelID string
	Type    string
	Source  string
	At      time.Time
}

// Open creates or opens a SQLite database at dbPath with WAL mode and busy timeout.
func Open(dbPath string) (*StateDB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("statedb: mkdir: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection, not just the first
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("statedb: open: %w", err)
	}

	// Force a connection so a bad path or pragma fails here
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("statedb: ping: %w", err)
	}

	return &StateDB{db: db}, nil
}

// Close checkpoints WAL and closes the database.
func (s *StateDB) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// DB returns the underlying sql.DB.
func (s *StateDB) DB() *sql.DB {
	return s.db
}

// Migrate creates tables if they don't exist.
func (s *StateDB) Migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("statedb: begin migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("statedb: create metadata: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS panel_facets (
			panel_id TEXT NOT NULL,
			name     TEXT NOT NULL,
			value    TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (panel_id, name)
		)
	`); err != nil {
		return fmt.Errorf("statedb: create panel_facets: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS panel_events (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			panel_id TEXT NOT NULL,
			type     TEXT NOT NULL,
			source   TEXT NOT NULL DEFAULT '',
			at       INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("statedb: create panel_events: %w", err)
	}

	if _, err := tx.Exec(
		"CREATE INDEX IF NOT EXISTS idx_panel_events_panel ON panel_events (panel_id, id)",
	); err != nil {
		return fmt.Errorf("statedb: index panel_events: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)
	`, fmt.Sprintf("%d", SchemaVersion)); err != nil {
		return fmt.Errorf("statedb: set schema version: %w", err)
	}

	return tx.Commit()
}

// --- Facets ---

// SaveFacets replaces the stored facets of a panel in one transaction.
// Facets missing from the map are deleted, so a removed presence flag does
// not come back on reload.
func (s *StateDB) SaveFacets(panelID string, facets map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("statedb: begin save facets: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM panel_facets WHERE panel_id = ?", panelID); err != nil {
		return fmt.Errorf("statedb: clear facets: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO panel_facets (panel_id, name, value) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("statedb: prepare facets: %w", err)
	}
	defer stmt.Close()

	for name, value := range facets {
		if _, err := stmt.Exec(panelID, name, value); err != nil {
			return fmt.Errorf("statedb: save facet %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// LoadFacets returns the stored facets of a panel. A panel never saved
// yields an empty map.
func (s *StateDB) LoadFacets(panelID string) (map[string]string, error) {
	rows, err := s.db.Query("SELECT name, value FROM panel_facets WHERE panel_id = ?", panelID)
	if err != nil {
		return nil, fmt.Errorf("statedb: load facets: %w", err)
	}
	defer rows.Close()

	facets := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		facets[name] = value
	}
	return facets, rows.Err()
}

// --- Event journal ---

// AppendEvent adds one notification to the journal.
func (s *StateDB) AppendEvent(ev EventRow) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	_, err := s.db.Exec(
		"INSERT INTO panel_events (panel_id, type, source, at) VALUES (?, ?, ?, ?)",
		ev.PanelID, ev.Type, ev.Source, ev.At.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("statedb: append event: %w", err)
	}
	return nil
}

// RecentEvents returns up to limit journal entries, oldest first. An empty
// panelID returns entries of every panel.
func (s *StateDB) RecentEvents(panelID string, limit int) ([]EventRow, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, panel_id, type, source, at FROM (
			SELECT id, panel_id, type, source, at FROM panel_events
			WHERE (? = '' OR panel_id = ?)
			ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`
	rows, err := s.db.Query(query, panelID, panelID, limit)
	if err != nil {
		return nil, fmt.Errorf("statedb: recent events: %w", err)
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var ev EventRow
		var at int64
		if err := rows.Scan(&ev.ID, &ev.PanelID, &ev.Type, &ev.Source, &at); err != nil {
			return nil, err
		}
		ev.At = time.Unix(0, at)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// PruneEvents keeps only the newest keep journal entries.
func (s *StateDB) PruneEvents(keep int) (int64, error) {
	res, err := s.db.Exec(`
		DELETE FROM panel_events WHERE id NOT IN (
			SELECT id FROM panel_events ORDER BY id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("statedb: prune events: %w", err)
	}
	return res.RowsAffected()
}

// --- Metadata ---

// SetMeta sets a key-value pair in the metadata table.
func (s *StateDB) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta gets a value from the metadata table. Returns "" if not found.
func (s *StateDB) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// Touch records the time of the last write.
func (s *StateDB) Touch() error {
	return s.SetMeta("last_modified", fmt.Sprintf("%d", time.Now().UnixNano()))
}

// LastModified returns the last_modified timestamp from metadata.
func (s *StateDB) LastModified() (int64, error) {
	val, err := s.GetMeta("last_modified")
	if err != nil || val == "" {
		return 0, err
	}
	var ts int64
	_, err = fmt.Sscanf(val, "%d", &ts)
	return ts, err
}
