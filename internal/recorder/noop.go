package recorder

import (
	"ThemeSentinel/internal/model"
	"ThemeSentinel/internal/trend"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSnapshot(_ model.Snapshot) error { return nil }
func (n *NoopRecorder) RecordTrend(_ trend.Comparison) error  { return nil }
func (n *NoopRecorder) RecordScan(_ *ScanRun) error           { return nil }
func (n *NoopRecorder) RecentScans(_ int) ([]ScanRun, error)  { return nil, nil }
func (n *NoopRecorder) Close() error                          { return nil }
func (n *NoopRecorder) CohesionHistory(_ string, _ int) ([]model.MetricRecord, error) {
	return nil, nil
}
