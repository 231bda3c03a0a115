package recorder

import (
	"time"

	"github.com/google/uuid"

	"ThemeSentinel/internal/model"
	"ThemeSentinel/internal/trend"
)

// ScanRun is one batch band scan and the breakouts it found.
type ScanRun struct {
	ID        string
	Source    string
	StartedAt time.Time
	Duration  time.Duration
	Scanned   int
	Failed    int
	Breakouts []model.BandSignal
}

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordSnapshot(snap model.Snapshot) error
	RecordTrend(cmp trend.Comparison) error
	RecordScan(run *ScanRun) error
	CohesionHistory(theme string, limit int) ([]model.MetricRecord, error)
	RecentScans(limit int) ([]ScanRun, error)
	Close() error
}
