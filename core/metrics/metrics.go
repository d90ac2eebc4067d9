// Package metrics defines the observability boundary of the optimizer.
// Sinks record per-run results; PromSink and InfluxSink in infra/metrics
// implement the interface and can be combined with NewMultiSink.
package metrics

import "time"

// RunResult captures one optimization run.
type RunResult struct {
	Start        time.Time
	Drivers      int
	Passengers   int
	Assigned     int
	FinalEnergy  float64
	BuildTime    time.Duration
	SearchTime   time.Duration
	CollapseTime time.Duration
	RefineTime   time.Duration
}

// Unassigned returns the number of passengers left without a driver.
func (r RunResult) Unassigned() int { return r.Passengers - r.Assigned }

// TotalTime sums the stage durations of the run.
func (r RunResult) TotalTime() time.Duration {
	return r.BuildTime + r.SearchTime + r.CollapseTime + r.RefineTime
}

// Sink records optimization runs for observability purposes.
type Sink interface {
	RecordRun(RunResult) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordRun(RunResult) error { return nil }

// MultiSink fans records out to several sinks, returning the first error.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordRun(r RunResult) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.RecordRun(r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
