// Package store persists finished run results to SQLite, the way the
// teacher persists scan cycles: pure-Go driver, single-writer
// connection pool, schema applied as one script at open time.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    strategy    TEXT     NOT NULL,
    params      TEXT     NOT NULL DEFAULT '{}',
    started_at  DATETIME NOT NULL,
    start_cash  REAL     NOT NULL,
    end_cash    REAL     NOT NULL,
    end_value   REAL     NOT NULL,
    analysis    TEXT     NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS trades (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id     INTEGER  NOT NULL REFERENCES runs(id),
    data       TEXT     NOT NULL,
    opened_at  DATETIME NOT NULL,
    closed_at  DATETIME,
    pnl        REAL     NOT NULL,
    commission REAL     NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
`

// Trade is the subset of broker.Trade store persists; kept as plain
// fields here so this package has no dependency on the broker package.
type Trade struct {
	Data       string
	Opened     time.Time
	Closed     time.Time
	PnL        float64
	Commission float64
}

// RunResult is one finished strategy run, ready to persist.
type RunResult struct {
	Strategy  string
	Params    map[string]any
	StartedAt time.Time
	StartCash float64
	EndCash   float64
	EndValue  float64
	Analysis  map[string]any
	Trades    []Trade
}

// SQLiteStore implements run persistence over a single-writer sqlite
// connection, guarded by a mutex the way the teacher guards its
// in-memory cache (sqlite itself tolerates one writer at a time; the
// mutex keeps Go-level transactions from interleaving on top of that).
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// Open applies the schema and returns a ready store.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store.Open: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store.Open: apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// SaveRun inserts the run summary and its closed trades in one
// transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, r RunResult) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	params, err := json.Marshal(r.Params)
	if err != nil {
		return 0, fmt.Errorf("store.SaveRun: marshal params: %w", err)
	}
	analysis, err := json.Marshal(r.Analysis)
	if err != nil {
		return 0, fmt.Errorf("store.SaveRun: marshal analysis: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (strategy, params, started_at, start_cash, end_cash, end_value, analysis)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Strategy, string(params), r.StartedAt, r.StartCash, r.EndCash, r.EndValue, string(analysis),
	)
	if err != nil {
		return 0, fmt.Errorf("store.SaveRun: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store.SaveRun: last insert id: %w", err)
	}

	if len(r.Trades) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO trades (run_id, data, opened_at, closed_at, pnl, commission)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("store.SaveRun: prepare trade insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range r.Trades {
			if _, err := stmt.ExecContext(ctx, runID, t.Data, t.Opened, t.Closed, t.PnL, t.Commission); err != nil {
				return 0, fmt.Errorf("store.SaveRun: insert trade: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store.SaveRun: commit: %w", err)
	}
	return runID, nil
}

// RecentRuns returns the n most recently started runs, newest first.
func (s *SQLiteStore) RecentRuns(ctx context.Context, n int) ([]RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT strategy, params, started_at, start_cash, end_cash, end_value, analysis
		 FROM runs ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("store.RecentRuns: query: %w", err)
	}
	defer rows.Close()

	var out []RunResult
	for rows.Next() {
		var r RunResult
		var params, analysis string
		if err := rows.Scan(&r.Strategy, &params, &r.StartedAt, &r.StartCash, &r.EndCash, &r.EndValue, &analysis); err != nil {
			return nil, fmt.Errorf("store.RecentRuns: scan: %w", err)
		}
		if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
			return nil, fmt.Errorf("store.RecentRuns: unmarshal params: %w", err)
		}
		if err := json.Unmarshal([]byte(analysis), &r.Analysis); err != nil {
			return nil, fmt.Errorf("store.RecentRuns: unmarshal analysis: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
