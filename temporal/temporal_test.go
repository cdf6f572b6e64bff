package temporal

import (
	"testing"
	"time"
)

func TestIntervalsSingleHump(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(100 * time.Second)
	on := t0.Add(30 * time.Second)
	off := t0.Add(70 * time.Second)
	predicate := func(t time.Time) (bool, error) {
		return !t.Before(on) && t.Before(off), nil
	}
	s := Solver{Step: time.Second, Tolerance: time.Millisecond, MaxIterations: 60}
	intervals, err := s.Intervals(t0, t1, predicate)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if len(intervals) != 1 {
		t.Fatalf("expected 1 interval, got %d: %+v", len(intervals), intervals)
	}
	iv := intervals[0]
	if d := iv.Start.Sub(on); d < -time.Second || d > time.Second {
		t.Fatalf("start off by %s", d)
	}
	if d := iv.End.Sub(off); d < -time.Second || d > time.Second {
		t.Fatalf("end off by %s", d)
	}
}

func TestIntervalsHeldAtBothEndpoints(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(10 * time.Second)
	s := Solver{Step: time.Second, Tolerance: time.Millisecond, MaxIterations: 60}
	intervals, err := s.Intervals(t0, t1, func(time.Time) (bool, error) { return true, nil })
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if len(intervals) != 1 || !intervals[0].Start.Equal(t0) || !intervals[0].End.Equal(t1) {
		t.Fatalf("expected single interval spanning [t0,t1], got %+v", intervals)
	}
}

func TestIntervalsNeverHeld(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(10 * time.Second)
	s := Solver{Step: time.Second, Tolerance: time.Millisecond, MaxIterations: 60}
	intervals, err := s.Intervals(t0, t1, func(time.Time) (bool, error) { return false, nil })
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if len(intervals) != 0 {
		t.Fatalf("expected no intervals, got %+v", intervals)
	}
}

func TestIntervalsRejectsBadStep(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Solver{Step: 0}
	if _, err := s.Intervals(t0, t0.Add(time.Second), func(time.Time) (bool, error) { return true, nil }); err == nil {
		t.Fatal("expected error for zero step")
	}
}
