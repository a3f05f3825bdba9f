package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"picorg/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  source TEXT NOT NULL,
  inputRef TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS row_outcomes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  lineNo INTEGER NOT NULL,
  sourceName TEXT NOT NULL,
  destPath TEXT,
  status TEXT NOT NULL,
  detail TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_row_outcomes_runId ON row_outcomes(runId);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertRun(traceID, source, inputRef string, counts map[string]int) (int64, error) {
	countsJSON, _ := json.Marshal(counts)
	result, err := d.conn.Exec(`
INSERT INTO runs (traceId, source, inputRef, countsJson) VALUES (?, ?, ?, ?)
`, traceID, source, inputRef, string(countsJSON))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) InsertOutcome(runID int64, outcome internal.RowOutcome) error {
	_, err := d.conn.Exec(`
INSERT INTO row_outcomes (runId, lineNo, sourceName, destPath, status, detail)
VALUES (?, ?, ?, ?, ?, ?)
`, runID, outcome.LineNo, outcome.SourceName, outcome.DestPath, string(outcome.Status), outcome.Detail)
	return err
}

func (d *DB) ListRuns(limit int) ([]internal.RunRecord, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, source, inputRef, countsJson, createdAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRecord
	for rows.Next() {
		var r internal.RunRecord
		if err := rows.Scan(&r.ID, &r.TraceID, &r.Source, &r.InputRef, &r.CountsJSON, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) GetRunOutcomes(runID int) ([]internal.RowOutcome, error) {
	rows, err := d.conn.Query(`
SELECT lineNo, sourceName, destPath, status, detail
FROM row_outcomes WHERE runId = ? ORDER BY id ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RowOutcome
	for rows.Next() {
		var o internal.RowOutcome
		var destPath, detail sql.NullString
		var status string
		if err := rows.Scan(&o.LineNo, &o.SourceName, &destPath, &status, &detail); err != nil {
			return nil, err
		}
		o.DestPath = destPath.String
		o.Detail = detail.String
		o.Status = internal.RowStatus(status)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
