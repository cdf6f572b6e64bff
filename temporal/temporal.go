// Package temporal implements the temporal-condition solver
// access generation and eclipse generation build on top of: given a
// boolean predicate of time, find the maximal sub-intervals of [t0, t1] on
// which it holds. No smd file implements this directly (smd tests
// Station elevation masks inline, one sample at a time, inside its
// propagation loop); grounded on that same sample-then-bracket idea,
// generalized into a standalone solver so access.Generator and
// eclipse.Generator can share it instead of duplicating the stepping logic.
package temporal

import (
	"time"

	"github.com/sabiduria-space/astrocore/errkind"
)

// Predicate reports whether some condition holds at the given instant.
type Predicate func(t time.Time) (bool, error)

// Interval is a closed sub-interval of [t0, t1] on which a Predicate held.
type Interval struct {
	Start, End time.Time
}

// Duration returns End minus Start.
func (iv Interval) Duration() time.Duration { return iv.End.Sub(iv.Start) }

// Solver finds the maximal sub-intervals on which a Predicate holds by
// sampling on a uniform grid of Step and bracketing sign changes with
// bisection to Tolerance.
type Solver struct {
	Step          time.Duration
	Tolerance     time.Duration
	MaxIterations int
}

// Intervals samples predicate on [t0, t1] and returns the maximal
// sub-intervals on which it holds. Endpoints: if predicate is true at t0,
// the first interval starts at t0; if true at t1, the last interval ends at
// t1. A bracket that fails to converge within MaxIterations is a
// *non-convergent* error, matching the condition/root-solver error kind
// used elsewhere for the same failure mode.
func (s Solver) Intervals(t0, t1 time.Time, predicate Predicate) ([]Interval, error) {
	if !t1.After(t0) {
		return nil, errkind.New(errkind.OutOfRange, "temporal: t1 must be after t0")
	}
	if s.Step <= 0 {
		return nil, errkind.New(errkind.InvalidConfiguration, "temporal: step must be positive")
	}

	type sample struct {
		t    time.Time
		held bool
	}
	var samples []sample
	for t := t0; t.Before(t1); t = t.Add(s.Step) {
		held, err := predicate(t)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample{t, held})
	}
	lastHeld, err := predicate(t1)
	if err != nil {
		return nil, err
	}
	samples = append(samples, sample{t1, lastHeld})

	var intervals []Interval
	var open *time.Time
	if samples[0].held {
		start := samples[0].t
		open = &start
	}
	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i]
		if prev.held == cur.held {
			continue
		}
		switching, err := s.bracket(prev.t, cur.t, prev.held, predicate)
		if err != nil {
			return nil, err
		}
		if cur.held {
			// predicate turned on between prev and cur: open a new interval
			start := switching
			open = &start
		} else {
			// predicate turned off: close the interval that was open
			if open == nil {
				open = &prev.t
			}
			intervals = append(intervals, Interval{Start: *open, End: switching})
			open = nil
		}
	}
	if open != nil {
		intervals = append(intervals, Interval{Start: *open, End: t1})
	}
	return intervals, nil
}

// bracket finds the switching instant between lo (where predicate is
// loHeld) and hi (where it is !loHeld), via bisection on elapsed seconds
// since lo, to within Tolerance.
func (s Solver) bracket(lo, hi time.Time, loHeld bool, predicate Predicate) (time.Time, error) {
	maxIter := s.MaxIterations
	if maxIter <= 0 {
		maxIter = 100
	}
	tol := s.Tolerance
	if tol <= 0 {
		tol = time.Second
	}
	span := hi.Sub(lo)
	a, b := 0.0, span.Seconds()
	for i := 0; i < maxIter; i++ {
		if time.Duration((b-a)*float64(time.Second)) <= tol {
			mid := a + (b-a)/2
			return lo.Add(time.Duration(mid * float64(time.Second))), nil
		}
		mid := a + (b-a)/2
		held, err := predicate(lo.Add(time.Duration(mid * float64(time.Second))))
		if err != nil {
			return time.Time{}, err
		}
		if held == loHeld {
			a = mid
		} else {
			b = mid
		}
	}
	return time.Time{}, errkind.New(errkind.NonConvergent, "temporal: bracket exceeded maximum iterations")
}
