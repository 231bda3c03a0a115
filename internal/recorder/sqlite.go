package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"ThemeSentinel/internal/model"
	"ThemeSentinel/internal/trend"
)

// SQLiteRecorder persists historical data to a SQLite database.
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

	// WAL lets the API read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS theme_snapshots (
			snapshot_date   TEXT NOT NULL,
			theme           TEXT NOT NULL,
			composite_score REAL,
			momentum        REAL,
			cohesion        REAL,
			bull_ratio      REAL,
			num_symbols     INTEGER,
			tier            INTEGER,
			action          TEXT,
			recorded_at     INTEGER NOT NULL,
			PRIMARY KEY (snapshot_date, theme)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_theme_snapshots_theme ON theme_snapshots(theme)`,

		`CREATE TABLE IF NOT EXISTS cohesion_trends (
			id                  INTEGER PRIMARY KEY AUTOINCREMENT,
			latest_date         TEXT NOT NULL,
			compare_date        TEXT NOT NULL,
			theme               TEXT NOT NULL,
			cohesion            REAL,
			prev_cohesion       REAL,
			cohesion_pct_change REAL,
			momentum_change     REAL,
			score_change        REAL,
			level               TEXT,
			status              TEXT,
			recorded_at         INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cohesion_trends_date ON cohesion_trends(latest_date)`,

		`CREATE TABLE IF NOT EXISTS scan_runs (
			id          TEXT PRIMARY KEY,
			source      TEXT,
			started_at  INTEGER NOT NULL,
			duration_ms INTEGER,
			scanned     INTEGER,
			failed      INTEGER,
			breakouts   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_runs_ts ON scan_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS breakout_signals (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL REFERENCES scan_runs(id),
			position      INTEGER,
			symbol        TEXT NOT NULL,
			last_date     TEXT,
			close         REAL,
			upper_band    REAL,
			deviation_pct REAL,
			change_pct    REAL,
			crossed_above INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_breakout_signals_run ON breakout_signals(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

const dateLayout = "2006-01-02"

// RecordSnapshot upserts the theme-level records of snap.
func (r *SQLiteRecorder) RecordSnapshot(snap model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	day := snap.Date.Format(dateLayout)
	for _, rec := range snap.ThemeRecords() {
		_, err := tx.Exec(`INSERT OR REPLACE INTO theme_snapshots
			(snapshot_date, theme, composite_score, momentum, cohesion, bull_ratio,
			 num_symbols, tier, action, recorded_at)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			day, rec.Theme, rec.CompositeScore, rec.Momentum, rec.Cohesion, rec.BullRatio,
			rec.NumSymbols, int(rec.Tier), rec.Action, now,
		)
		if err != nil {
			return fmt.Errorf("insert theme %s: %w", rec.Theme, err)
		}
	}
	return tx.Commit()
}

// RecordTrend stores one row per theme of the comparison.
func (r *SQLiteRecorder) RecordTrend(cmp trend.Comparison) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	latest, prev := cmp.LatestDate.Format(dateLayout), cmp.CompareDate.Format(dateLayout)
	for _, rec := range cmp.Records {
		_, err := tx.Exec(`INSERT INTO cohesion_trends
			(latest_date, compare_date, theme, cohesion, prev_cohesion, cohesion_pct_change,
			 momentum_change, score_change, level, status, recorded_at)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			latest, prev, rec.Theme, rec.Cohesion, rec.PrevCohesion, rec.CohesionPctChange,
			rec.MomentumChange, rec.ScoreChange, string(rec.Level), string(rec.Status), now,
		)
		if err != nil {
			return fmt.Errorf("insert trend %s: %w", rec.Theme, err)
		}
	}
	return tx.Commit()
}

// RecordScan stores a scan run and its ranked breakouts. An empty ID is
// filled with a new run id.
func (r *SQLiteRecorder) RecordScan(run *ScanRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = NewRunID()
	}
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO scan_runs
		(id, source, started_at, duration_ms, scanned, failed, breakouts)
		VALUES (?,?,?,?,?,?,?)`,
		run.ID, run.Source, run.StartedAt.Unix(), run.Duration.Milliseconds(),
		run.Scanned, run.Failed, len(run.Breakouts),
	)
	if err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}
	for i, s := range run.Breakouts {
		_, err := tx.Exec(`INSERT INTO breakout_signals
			(run_id, position, symbol, last_date, close, upper_band, deviation_pct, change_pct, crossed_above)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			run.ID, i+1, s.Symbol, s.LastDate.Format(dateLayout), s.Close, s.UpperBand,
			s.DeviationPct, s.ChangePct, s.CrossedAbove,
		)
		if err != nil {
			return fmt.Errorf("insert breakout %s: %w", s.Symbol, err)
		}
	}
	return tx.Commit()
}

// CohesionHistory returns the recorded snapshots of theme, newest first.
func (r *SQLiteRecorder) CohesionHistory(theme string, limit int) ([]model.MetricRecord, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.Query(`SELECT snapshot_date, composite_score, momentum, cohesion,
			bull_ratio, num_symbols, tier, action
		FROM theme_snapshots WHERE theme = ? ORDER BY snapshot_date DESC LIMIT ?`, theme, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []model.MetricRecord
	for rows.Next() {
		var (
			day  string
			tier int
			rec  = model.MetricRecord{Theme: theme}
		)
		if err := rows.Scan(&day, &rec.CompositeScore, &rec.Momentum, &rec.Cohesion,
			&rec.BullRatio, &rec.NumSymbols, &tier, &rec.Action); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec.Date, _ = time.Parse(dateLayout, day)
		rec.Tier = model.Tier(tier)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RecentScans returns the latest runs with their breakouts, newest first.
func (r *SQLiteRecorder) RecentScans(limit int) ([]ScanRun, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT id, source, started_at, duration_ms, scanned, failed
		FROM scan_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	var runs []ScanRun
	for rows.Next() {
		var (
			run     ScanRun
			started int64
			ms      int64
		)
		if err := rows.Scan(&run.ID, &run.Source, &started, &ms, &run.Scanned, &run.Failed); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		run.StartedAt = time.Unix(started, 0)
		run.Duration = time.Duration(ms) * time.Millisecond
		runs = append(runs, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		b, err := r.breakouts(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Breakouts = b
	}
	return runs, nil
}

func (r *SQLiteRecorder) breakouts(runID string) ([]model.BandSignal, error) {
	rows, err := r.db.Query(`SELECT symbol, last_date, close, upper_band, deviation_pct,
			change_pct, crossed_above
		FROM breakout_signals WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query breakouts: %w", err)
	}
	defer rows.Close()

	var out []model.BandSignal
	for rows.Next() {
		var (
			s   model.BandSignal
			day string
		)
		if err := rows.Scan(&s.Symbol, &day, &s.Close, &s.UpperBand, &s.DeviationPct,
			&s.ChangePct, &s.CrossedAbove); err != nil {
			return nil, fmt.Errorf("scan breakout: %w", err)
		}
		s.LastDate, _ = time.Parse(dateLayout, day)
		s.AboveUpper = true
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
