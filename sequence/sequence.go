// Package sequence implements ordered coast/maneuver segments threaded
// through state continuity, ported from smd's Waypoint
// model (mission.go/waypoints.go: a chain of Waypoint values, each Cleared
// when its termination criterion is met, driving a WaypointAction).
// Generalized from smd's waypoint-cleared boolean polled every
// step into an explicit event.Condition solved by propagator.Propagator,
// and from a single running Orbit into an explicit per-segment
// SegmentSolution threading continuity.
package sequence

import (
	"github.com/sabiduria-space/astrocore/errkind"
	"github.com/sabiduria-space/astrocore/event"
	"github.com/sabiduria-space/astrocore/guidance"
	"github.com/sabiduria-space/astrocore/integrator"
	"github.com/sabiduria-space/astrocore/logging"
	"github.com/sabiduria-space/astrocore/propagator"
	"github.com/sabiduria-space/astrocore/state"
	"github.com/sabiduria-space/astrocore/state/coords"
)

// TerminationReason reports why a Segment's propagation stopped.
type TerminationReason uint8

const (
	// Triggered means the segment's Condition fired before MaxDuration.
	Triggered TerminationReason = iota
	// MaxDurationReached means MaxDuration elapsed before Condition fired.
	MaxDurationReached
	// Failed means propagation errored before either bound was reached.
	Failed
)

// Segment is one leg of a sequence: a coast or maneuver (the maneuver
// guidance law, if any, is wired into the Propagator's Thruster dynamics
// ahead of time by the caller) terminated by an event.Condition or a
// maximum duration, whichever comes first. Ported from smd's Waypoint
// interface (Cleared/Action), generalized to carry the Condition and
// propagation parameters explicitly rather than polling a hidden Cleared
// method.
type Segment struct {
	Name        string
	Propagator  *propagator.Propagator
	Solver      *integrator.Solver
	Condition   event.Condition
	MaxDuration float64 // seconds; upper bound if Condition never fires
	StepHint    float64
	Tolerance   float64
	Law         guidance.Law // informational only; Dynamics wiring is the caller's responsibility
	// ExhaustVelocity is the maneuver's effective exhaust velocity (Isp
	// times standard gravity, m/s), used to derive ImpulseDelivered from
	// the mass actually consumed. Ignored for coast segments (Law == nil).
	ExhaustVelocity float64
}

// SegmentSolution is the outcome of solving one Segment.
type SegmentSolution struct {
	Name           string
	InitialState   state.State
	FinalState     state.State
	Reason         TerminationReason
	ElapsedSeconds float64
	MassConsumedKg float64
	// ImpulseDelivered is the total impulse (N*s) a maneuver segment
	// delivered, derived from MassConsumedKg and the segment's
	// ExhaustVelocity via the rocket equation's differential form
	// (impulse = mass consumed * exhaust velocity). Zero for coast
	// segments.
	ImpulseDelivered float64
}

// Solve propagates from s0 until the Segment's Condition triggers or
// MaxDuration elapses.
func (seg Segment) Solve(s0 state.State) (SegmentSolution, error) {
	if seg.Condition != nil {
		if err := seg.Condition.UpdateTarget(s0); err != nil {
			return SegmentSolution{Name: seg.Name, InitialState: s0, Reason: Failed}, err
		}
	}
	finalState, triggered, err := seg.Propagator.PropagateUntilCondition(seg.Solver, s0, seg.Condition, seg.MaxDuration, seg.StepHint, seg.Tolerance)
	reason := MaxDurationReached
	if err != nil {
		return SegmentSolution{Name: seg.Name, InitialState: s0, Reason: Failed}, err
	}
	if triggered {
		reason = Triggered
	}
	elapsed := finalState.Instant.Sub(s0.Instant).Seconds()
	massConsumed, err := massDelta(s0, finalState)
	if err != nil {
		return SegmentSolution{}, err
	}
	impulse := 0.0
	if seg.Law != nil {
		impulse = massConsumed * seg.ExhaustVelocity
	}
	return SegmentSolution{
		Name:             seg.Name,
		InitialState:     s0,
		FinalState:       finalState,
		Reason:           reason,
		ElapsedSeconds:   elapsed,
		MassConsumedKg:   massConsumed,
		ImpulseDelivered: impulse,
	}, nil
}

// Sequence is an ordered chain of Segments, each starting from the
// previous one's final state.
type Sequence struct {
	Segments []Segment
	// Logger narrates segment completion/failure, in smd's kitlog
	// style (smd/mission.go's per-step "status"/"finished" logging). Left
	// nil it is treated as logging.Discard.
	Logger logging.Logger
}

// NewSequence returns a Sequence over the given Segments, in order, logging
// through logging.New("sequence", name) the way smd.SCLogInit tags a
// Spacecraft's logger with its own name.
func NewSequence(name string, segments ...Segment) *Sequence {
	return &Sequence{Segments: segments, Logger: logging.New("sequence", name)}
}

func (seq *Sequence) logger() logging.Logger {
	if seq.Logger == nil {
		return logging.Discard
	}
	return seq.Logger
}

// Solve runs every Segment in order, threading state continuity: each
// segment's FinalState becomes the next segment's starting state. If a
// segment fails, the already-completed solutions are returned alongside
// the error so a caller can inspect partial progress.
func (seq *Sequence) Solve(s0 state.State) ([]SegmentSolution, error) {
	solutions := make([]SegmentSolution, 0, len(seq.Segments))
	current := s0
	for _, seg := range seq.Segments {
		sol, err := seg.Solve(current)
		if err != nil {
			seq.logger().Log("level", "critical", "segment", seg.Name, "status", "failed", "error", err)
			return solutions, errkind.Wrap(errkind.Diverged, "sequence: segment "+seg.Name+" failed", err)
		}
		kind := "coast"
		if seg.Law != nil {
			kind = "maneuver"
		}
		seq.logger().Log("level", "notice", "segment", seg.Name, "kind", kind, "status", "completed",
			"elapsed(s)", sol.ElapsedSeconds, "mass-consumed(kg)", sol.MassConsumedKg, "impulse(N*s)", sol.ImpulseDelivered)
		solutions = append(solutions, sol)
		current = sol.FinalState
	}
	return solutions, nil
}

func massDelta(s0, s1 state.State) (float64, error) {
	mass := coords.Mass()
	if !s0.Broker.Contains(mass) {
		return 0, nil
	}
	m0, err := s0.Extract(mass)
	if err != nil {
		return 0, err
	}
	m1, err := s1.Extract(mass)
	if err != nil {
		return 0, err
	}
	return m0[0] - m1[0], nil
}
