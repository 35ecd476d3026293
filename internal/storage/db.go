package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"rechazos/internal"
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
  runId TEXT NOT NULL UNIQUE,
  variant TEXT NOT NULL,
  defaultCode TEXT NOT NULL,
  sourcesJson TEXT NOT NULL,
  recordCount INTEGER NOT NULL,
  amountSum TEXT NOT NULL,
  warningsJson TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL,
  position INTEGER NOT NULL,
  identifier TEXT NOT NULL,
  name TEXT NOT NULL,
  amount TEXT NOT NULL,
  reference TEXT NOT NULL,
  status TEXT NOT NULL,
  rejectionCode TEXT NOT NULL,
  rejectionDescription TEXT NOT NULL,
  provenance TEXT NOT NULL,
  sourceLine INTEGER NOT NULL,
  UNIQUE(runId, position),
  FOREIGN KEY(runId) REFERENCES runs(runId)
);
CREATE INDEX IF NOT EXISTS idx_records_identifier ON records(identifier);

CREATE TABLE IF NOT EXISTS submissions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL,
  statusCode INTEGER NOT NULL,
  body TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// SaveRun stores a run and its records in one transaction.
func (d *DB) SaveRun(run internal.RunRow, records []internal.TransactionRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	sourcesJSON, _ := json.Marshal(run.Sources)
	warningsJSON, _ := json.Marshal(run.Warnings)
	timingsJSON, _ := json.Marshal(run.Timings)
	if _, err := tx.Exec(`
INSERT INTO runs (runId, variant, defaultCode, sourcesJson, recordCount, amountSum, warningsJson, timingsJson)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, run.RunID, run.Variant, run.DefaultCode, string(sourcesJSON), run.Count, run.AmountSum.String(), string(warningsJSON), string(timingsJSON)); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO records (
  runId, position, identifier, name, amount, reference,
  status, rejectionCode, rejectionDescription, provenance, sourceLine
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.Exec(
			run.RunID, i+1, r.Identifier, r.Name, r.Amount.String(), r.Reference,
			string(r.Status), r.RejectionCode, r.RejectionDescription, string(r.Provenance), r.SourceLine,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) GetRun(runID string) (*internal.RunRow, error) {
	row := d.conn.QueryRow(`
SELECT id, runId, variant, defaultCode, sourcesJson, recordCount, amountSum, warningsJson, timingsJson, createdAt
FROM runs WHERE runId = ?
`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (d *DB) MustRun(runID string) (internal.RunRow, error) {
	run, err := d.GetRun(runID)
	if err != nil {
		return internal.RunRow{}, err
	}
	if run == nil {
		return internal.RunRow{}, fmt.Errorf("run not found: %s", runID)
	}
	return *run, nil
}

func (d *DB) ListRuns(limit int) ([]internal.RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, runId, variant, defaultCode, sourcesJson, recordCount, amountSum, warningsJson, timingsJson, createdAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (internal.RunRow, error) {
	var run internal.RunRow
	var sourcesJSON, amountSum, warningsJSON, timingsJSON string
	if err := s.Scan(
		&run.ID, &run.RunID, &run.Variant, &run.DefaultCode, &sourcesJSON,
		&run.Count, &amountSum, &warningsJSON, &timingsJSON, &run.CreatedAt,
	); err != nil {
		return internal.RunRow{}, err
	}
	_ = json.Unmarshal([]byte(sourcesJSON), &run.Sources)
	_ = json.Unmarshal([]byte(warningsJSON), &run.Warnings)
	_ = json.Unmarshal([]byte(timingsJSON), &run.Timings)
	run.AmountSum, _ = decimal.NewFromString(amountSum)
	return run, nil
}

// GetRunRecords returns the records of a run in output order.
func (d *DB) GetRunRecords(runID string) ([]internal.TransactionRecord, error) {
	rows, err := d.conn.Query(`
SELECT identifier, name, amount, reference, status, rejectionCode, rejectionDescription, provenance, sourceLine
FROM records WHERE runId = ? ORDER BY position ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.TransactionRecord
	for rows.Next() {
		var r internal.TransactionRecord
		var amount, status, provenance string
		if err := rows.Scan(
			&r.Identifier, &r.Name, &amount, &r.Reference, &status,
			&r.RejectionCode, &r.RejectionDescription, &provenance, &r.SourceLine,
		); err != nil {
			return nil, err
		}
		r.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("run %s: stored amount %q: %w", runID, amount, err)
		}
		r.Status = internal.Status(status)
		r.Provenance = internal.Provenance(provenance)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) InsertSubmission(runID string, statusCode int, body string) error {
	_, err := d.conn.Exec(`INSERT INTO submissions (runId, statusCode, body) VALUES (?, ?, ?)`, runID, statusCode, body)
	return err
}

func (d *DB) ListSubmissions(runID string) ([]internal.SubmissionRow, error) {
	rows, err := d.conn.Query(`
SELECT id, runId, statusCode, body, createdAt
FROM submissions WHERE runId = ? ORDER BY id ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.SubmissionRow
	for rows.Next() {
		var row internal.SubmissionRow
		if err := rows.Scan(&row.ID, &row.RunID, &row.StatusCode, &row.Body, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
