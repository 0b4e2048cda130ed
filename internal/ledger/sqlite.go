package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"sift/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS durations (
	test_id     TEXT PRIMARY KEY,
	seconds     REAL NOT NULL,
	recorded_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	started_at    TEXT NOT NULL,
	finished_at   TEXT NOT NULL,
	total_items   INTEGER NOT NULL,
	removed_items INTEGER NOT NULL,
	skip_enabled  INTEGER NOT NULL
);
`

// SQLiteStore persists the ledger in <root>/.sift/sift.db.
type SQLiteStore struct {
	conn   *sql.DB
	logger *logging.Logger
}

// Open opens or creates the ledger database under dataDir. Any failure
// degrades to the no-op store: a missing or broken cache must never
// surface to the user.
func Open(dataDir string, logger *logging.Logger) Store {
	store, err := open(dataDir, logger)
	if err != nil {
		logger.Debug("duration ledger unavailable", logging.Fields{"error": err.Error()})
		return NewNoop()
	}
	return store
}

func open(dataDir string, logger *logging.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	conn, err := sql.Open("sqlite", filepath.Join(dataDir, "sift.db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLiteStore{conn: conn, logger: logger}, nil
}

// Available implements Store.
func (s *SQLiteStore) Available() bool {
	return true
}

// Durations implements Store. Read failures are logged and normalized to
// an empty map.
func (s *SQLiteStore) Durations() map[string]float64 {
	durations := make(map[string]float64)

	rows, err := s.conn.Query("SELECT test_id, seconds FROM durations")
	if err != nil {
		s.logger.Debug("duration read failed", logging.Fields{"error": err.Error()})
		return durations
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var secs float64
		if err := rows.Scan(&id, &secs); err != nil {
			continue
		}
		durations[id] = secs
	}
	return durations
}

// Entries implements Store, ordered slowest first.
func (s *SQLiteStore) Entries() []Entry {
	rows, err := s.conn.Query(
		"SELECT test_id, seconds, recorded_at FROM durations ORDER BY seconds DESC, test_id")
	if err != nil {
		s.logger.Debug("duration read failed", logging.Fields{"error": err.Error()})
		return nil
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var recorded string
		if err := rows.Scan(&e.TestID, &e.Seconds, &recorded); err != nil {
			continue
		}
		e.Recorded, _ = time.Parse(time.RFC3339, recorded)
		entries = append(entries, e)
	}
	return entries
}

// Record implements Store. Each duration is upserted individually inside a
// transaction, so entries for tests not executed this run survive.
func (s *SQLiteStore) Record(durations map[string]float64) error {
	if len(durations) == 0 {
		return nil
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO durations (test_id, seconds, recorded_at)
		VALUES (?, ?, ?)
		ON CONFLICT(test_id) DO UPDATE SET seconds = excluded.seconds, recorded_at = excluded.recorded_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for id, secs := range durations {
		if _, err := stmt.Exec(id, secs, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecordRun implements Store.
func (s *SQLiteStore) RecordRun(run RunRecord) error {
	_, err := s.conn.Exec(`
		INSERT OR REPLACE INTO runs (id, started_at, finished_at, total_items, removed_items, skip_enabled)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.TotalItems,
		run.RemovedItems,
		boolToInt(run.SkipEnabled),
	)
	return err
}

// Runs implements Store.
func (s *SQLiteStore) Runs(limit int) []RunRecord {
	rows, err := s.conn.Query(`
		SELECT id, started_at, finished_at, total_items, removed_items, skip_enabled
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		s.logger.Debug("run read failed", logging.Fields{"error": err.Error()})
		return nil
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var started, finished string
		var skip int
		if err := rows.Scan(&r.ID, &started, &finished, &r.TotalItems, &r.RemovedItems, &skip); err != nil {
			continue
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		r.SkipEnabled = skip != 0
		runs = append(runs, r)
	}
	return runs
}

// Clear implements Store.
func (s *SQLiteStore) Clear() error {
	_, err := s.conn.Exec("DELETE FROM durations")
	return err
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
