package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

const dayFormat = "2006-01-02"

// SQLiteRecorder persists engine state to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs
// migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{
		db:     db,
		logger: log.With().Str("component", "recorder").Logger(),
	}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_points (
			symbol TEXT NOT NULL,
			date   TEXT NOT NULL,
			price  REAL NOT NULL,
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE TABLE IF NOT EXISTS rs_states (
			symbol       TEXT PRIMARY KEY,
			prev_ratio   REAL,
			prev_ema     REAL,
			initialized  INTEGER,
			ratio_window TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS sector_snapshots (
			fetch_date TEXT PRIMARY KEY,
			payload    TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id             TEXT PRIMARY KEY,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT,
			reason         TEXT,
			price          REAL,
			target         REAL,
			change_percent REAL,
			bucket         INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alerts(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// SavePriceWindow replaces the stored window for the symbol in one
// transaction.
func (r *SQLiteRecorder) SavePriceWindow(symbol string, window []model.PricePoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM price_points WHERE symbol = ?`, symbol); err != nil {
		return fmt.Errorf("clear window: %w", err)
	}
	for _, p := range window {
		if _, err := tx.Exec(`INSERT INTO price_points (symbol, date, price) VALUES (?,?,?)`,
			symbol, p.Date.Format(dayFormat), p.Price); err != nil {
			return fmt.Errorf("insert point: %w", err)
		}
	}
	return tx.Commit()
}

// PriceWindows loads every stored window, sorted ascending by date.
func (r *SQLiteRecorder) PriceWindows() (map[string][]model.PricePoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT symbol, date, price FROM price_points ORDER BY symbol, date`)
	if err != nil {
		return nil, fmt.Errorf("query windows: %w", err)
	}
	defer rows.Close()

	windows := make(map[string][]model.PricePoint)
	for rows.Next() {
		var symbol, day string
		var price float64
		if err := rows.Scan(&symbol, &day, &price); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		date, err := time.Parse(dayFormat, day)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", day, err)
		}
		windows[symbol] = append(windows[symbol], model.PricePoint{Date: date, Price: price})
	}
	return windows, rows.Err()
}

func (r *SQLiteRecorder) SaveRelativeStrengthState(symbol string, state model.RelativeStrengthState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	window, err := json.Marshal(state.RatioWindow)
	if err != nil {
		return fmt.Errorf("marshal ratio window: %w", err)
	}
	initialized := 0
	if state.Initialized {
		initialized = 1
	}
	_, err = r.db.Exec(`INSERT INTO rs_states (symbol, prev_ratio, prev_ema, initialized, ratio_window)
		VALUES (?,?,?,?,?)
		ON CONFLICT(symbol) DO UPDATE SET
			prev_ratio = excluded.prev_ratio,
			prev_ema = excluded.prev_ema,
			initialized = excluded.initialized,
			ratio_window = excluded.ratio_window`,
		symbol, state.PrevRatio, state.PrevEma, initialized, string(window))
	return err
}

func (r *SQLiteRecorder) RelativeStrengthStates() (map[string]model.RelativeStrengthState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT symbol, prev_ratio, prev_ema, initialized, ratio_window FROM rs_states`)
	if err != nil {
		return nil, fmt.Errorf("query rs states: %w", err)
	}
	defer rows.Close()

	states := make(map[string]model.RelativeStrengthState)
	for rows.Next() {
		var symbol, window string
		var initialized int
		var state model.RelativeStrengthState
		if err := rows.Scan(&symbol, &state.PrevRatio, &state.PrevEma, &initialized, &window); err != nil {
			return nil, fmt.Errorf("scan rs state: %w", err)
		}
		state.Initialized = initialized != 0
		if window != "" {
			if err := json.Unmarshal([]byte(window), &state.RatioWindow); err != nil {
				return nil, fmt.Errorf("unmarshal ratio window for %s: %w", symbol, err)
			}
		}
		states[symbol] = state
	}
	return states, rows.Err()
}

// SaveSectorSnapshots replaces the stored snapshot history in one
// transaction.
func (r *SQLiteRecorder) SaveSectorSnapshots(snapshots []model.SectorSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sector_snapshots`); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	for _, snap := range snapshots {
		payload, err := json.Marshal(snap.Performances)
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
		if _, err := tx.Exec(`INSERT INTO sector_snapshots (fetch_date, payload) VALUES (?,?)`,
			snap.FetchDate.Format(dayFormat), string(payload)); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) SectorSnapshots() ([]model.SectorSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT fetch_date, payload FROM sector_snapshots ORDER BY fetch_date`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []model.SectorSnapshot
	for rows.Next() {
		var day, payload string
		if err := rows.Scan(&day, &payload); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		date, err := time.Parse(dayFormat, day)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", day, err)
		}
		snap := model.SectorSnapshot{FetchDate: date}
		if err := json.Unmarshal([]byte(payload), &snap.Performances); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot %s: %w", day, err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

func (r *SQLiteRecorder) RecordAlert(alert model.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO alerts
		(id, timestamp, symbol, reason, price, target, change_percent, bucket)
		VALUES (?,?,?,?,?,?,?,?)`,
		alert.ID, alert.CreatedAt.Unix(), alert.Symbol, string(alert.Reason),
		alert.Price, alert.Target, alert.ChangePercent, alert.Bucket,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
