package recorder

import (
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"TrendScope/internal/model"
)

// SQLiteRecorder persists runs and their signals to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			tickers     INTEGER,
			failures    INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS signals (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL REFERENCES runs(id),
			ticker     TEXT NOT NULL,
			name       TEXT,
			window_len INTEGER,
			label      TEXT,
			latest     REAL,
			min_slope  REAL,
			max_slope  REAL,
			as_of      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ticker ON signals(ticker, id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores run and all its signals in one transaction.
func (r *SQLiteRecorder) RecordRun(run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs (id, started_at, finished_at, tickers, failures)
		VALUES (?,?,?,?,?)`,
		run.ID.String(), run.StartedAt.Unix(), run.FinishedAt.Unix(), run.Tickers, run.Failures,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, s := range run.Signals {
		asOf := ""
		if !s.AsOf.IsZero() {
			asOf = s.AsOf.Format(model.DateFormat)
		}
		if _, err := tx.Exec(`INSERT INTO signals
			(run_id, ticker, name, window_len, label, latest, min_slope, max_slope, as_of)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			run.ID.String(), s.Ticker, s.Name, s.Window, string(s.Label),
			nullable(s.Latest), nullable(s.Min), nullable(s.Max), asOf,
		); err != nil {
			return fmt.Errorf("insert signal %s: %w", s.Ticker, err)
		}
	}
	return tx.Commit()
}

// History returns up to limit recorded signals of ticker, newest first.
// A non-positive limit returns all of them.
func (r *SQLiteRecorder) History(ticker string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(`SELECT s.run_id, r.finished_at, s.ticker, s.name, s.window_len, s.label,
			s.latest, s.min_slope, s.max_slope, s.as_of
		FROM signals s JOIN runs r ON r.id = s.run_id
		WHERE s.ticker = ?
		ORDER BY s.id DESC
		LIMIT ?`, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                  Entry
			runID, label, asOf string
			finished           int64
			latest, lo, hi     sql.NullFloat64
		)
		if err := rows.Scan(&runID, &finished, &e.Signal.Ticker, &e.Signal.Name, &e.Signal.Window,
			&label, &latest, &lo, &hi, &asOf); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if e.RunID, err = uuid.Parse(runID); err != nil {
			return nil, fmt.Errorf("parse run id: %w", err)
		}
		e.RecordedAt = time.Unix(finished, 0)
		e.Signal.Label = model.Label(label)
		e.Signal.Latest, e.Signal.Min, e.Signal.Max = fromNull(latest), fromNull(lo), fromNull(hi)
		if asOf != "" {
			if e.Signal.AsOf, err = model.ParseDate(asOf); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
