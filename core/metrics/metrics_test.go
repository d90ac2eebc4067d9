package metrics

import (
	"fmt"
	"testing"
	"time"
)

type recordingSink struct {
	runs []RunResult
	err  error
}

func (s *recordingSink) RecordRun(r RunResult) error {
	s.runs = append(s.runs, r)
	return s.err
}

func TestMultiSink_FansOut(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	m := NewMultiSink(a, b)

	if err := m.RecordRun(RunResult{Drivers: 3}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(a.runs) != 1 || len(b.runs) != 1 {
		t.Fatalf("expected both sinks to record")
	}
}

func TestMultiSink_FirstErrorWins(t *testing.T) {
	a := &recordingSink{err: fmt.Errorf("a failed")}
	b := &recordingSink{err: fmt.Errorf("b failed")}
	m := NewMultiSink(a, b)

	err := m.RecordRun(RunResult{})
	if err == nil || err.Error() != "a failed" {
		t.Fatalf("expected first error, got %v", err)
	}
	if len(b.runs) != 1 {
		t.Fatalf("later sinks must still record after an error")
	}
}

func TestRunResult_Helpers(t *testing.T) {
	r := RunResult{
		Passengers:   5,
		Assigned:     3,
		BuildTime:    time.Millisecond,
		SearchTime:   2 * time.Millisecond,
		CollapseTime: 3 * time.Millisecond,
		RefineTime:   4 * time.Millisecond,
	}
	if r.Unassigned() != 2 {
		t.Fatalf("unassigned: got %d", r.Unassigned())
	}
	if r.TotalTime() != 10*time.Millisecond {
		t.Fatalf("total time: got %v", r.TotalTime())
	}
}

func TestNopSink(t *testing.T) {
	if err := (NopSink{}).RecordRun(RunResult{}); err != nil {
		t.Fatalf("nop sink must never fail: %v", err)
	}
}
