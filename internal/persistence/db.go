// Package persistence provides SQLite-based galaxy state storage.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/galaxy-sim/internal/engine"
)

// DB wraps a SQLite connection for galaxy state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; the simulation saves between turns.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ship_state (
		ship_id INTEGER NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (ship_id, key)
	);

	CREATE TABLE IF NOT EXISTS factions (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		color TEXT NOT NULL,
		leader_id INTEGER,
		last_election INTEGER NOT NULL,
		economy INTEGER NOT NULL,
		avg_reputation INTEGER NOT NULL,
		min_reputation INTEGER NOT NULL,
		max_reputation INTEGER NOT NULL,
		news_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS relationships (
		faction_a INTEGER NOT NULL,
		faction_b INTEGER NOT NULL,
		relation TEXT NOT NULL,
		PRIMARY KEY (faction_a, faction_b)
	);

	CREATE TABLE IF NOT EXISTS claims (
		sector_x INTEGER NOT NULL,
		sector_y INTEGER NOT NULL,
		kind TEXT NOT NULL,
		orbit INTEGER NOT NULL,
		idx INTEGER NOT NULL,
		faction_id INTEGER NOT NULL,
		PRIMARY KEY (sector_x, sector_y, kind, orbit, idx)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		turn INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		meta_json TEXT
	);

	CREATE TABLE IF NOT EXISTS checkpoints (
		turn INTEGER PRIMARY KEY,
		run_id TEXT NOT NULL,
		state_blob BLOB NOT NULL,
		fingerprint TEXT NOT NULL,
		chain_hash TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_turn ON events(turn);
	CREATE INDEX IF NOT EXISTS idx_ship_state_ship ON ship_state(ship_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveEvents replaces the stored event log with the simulation's bounded one.
func (db *DB) SaveEvents(events []engine.Event) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM events"); err != nil {
		return err
	}
	for _, e := range events {
		var meta []byte
		if len(e.Meta) > 0 {
			if meta, err = json.Marshal(e.Meta); err != nil {
				return fmt.Errorf("encode event meta: %w", err)
			}
		}
		_, err := tx.Exec(
			"INSERT INTO events (turn, description, category, meta_json) VALUES (?, ?, ?, ?)",
			e.Turn, e.Description, e.Category, string(meta),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

type eventRow struct {
	Turn        uint64 `db:"turn"`
	Description string `db:"description"`
	Category    string `db:"category"`
	Meta        string `db:"meta_json"`
}

func (r eventRow) event() engine.Event {
	e := engine.Event{Turn: r.Turn, Description: r.Description, Category: r.Category}
	if r.Meta != "" {
		if err := json.Unmarshal([]byte(r.Meta), &e.Meta); err != nil {
			slog.Warn("event meta unreadable", "turn", r.Turn, "error", err)
		}
	}
	return e
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var rows []eventRow
	err := db.conn.Select(&rows,
		"SELECT turn, description, category, COALESCE(meta_json, '') AS meta_json FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	events := make([]engine.Event, len(rows))
	for i, r := range rows {
		events[i] = r.event()
	}
	return events, nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}
