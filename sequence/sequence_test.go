package sequence

import (
	"math"
	"testing"
	"time"

	"github.com/sabiduria-space/astrocore/celestial"
	"github.com/sabiduria-space/astrocore/dynamics"
	"github.com/sabiduria-space/astrocore/event"
	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/guidance"
	"github.com/sabiduria-space/astrocore/integrator"
	"github.com/sabiduria-space/astrocore/propagator"
	"github.com/sabiduria-space/astrocore/state"
	"github.com/sabiduria-space/astrocore/state/coords"
)

func circularOrbitSetup(t *testing.T) (*propagator.Propagator, state.State, float64) {
	t.Helper()
	broker := coords.NewBroker()
	broker.Add(coords.CartesianPosition())
	broker.Add(coords.CartesianVelocity())
	broker.Add(coords.Mass())
	fr := frame.Inertial{FrameName: "ECI"}
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	gravity := dynamics.NewCentralBodyGravity(celestial.Earth, epoch)
	p, err := propagator.New(broker, fr, dynamics.NewPositionDerivative(), gravity)
	if err != nil {
		t.Fatalf("err %s", err)
	}

	r := []float64{7000e3, 0, 0}
	vCirc := math.Sqrt(celestial.Earth.Mu / 7000e3)
	v := []float64{0, vCirc, 0}
	s0, err := state.NewBuilder(broker).
		Set(coords.CartesianPosition(), r).
		Set(coords.CartesianVelocity(), v).
		Set(coords.Mass(), []float64{500}).
		Build(epoch, fr)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	period := 2 * math.Pi * math.Sqrt(math.Pow(7000e3, 3)/celestial.Earth.Mu)
	return p, s0, period
}

func xCrossingCondition() event.Condition {
	xExtractor := func(s state.State) (float64, error) {
		pos, err := s.Extract(coords.CartesianPosition())
		if err != nil {
			return 0, err
		}
		return pos[0], nil
	}
	return event.NewRealCondition("x-crossing", xExtractor, 0, event.AnyCrossing)
}

func TestSegmentSolveTriggersOnCondition(t *testing.T) {
	p, s0, period := circularOrbitSetup(t)
	solver := integrator.NewSolver(integrator.DormandPrince54(), 1e-10, 1e-12)

	seg := Segment{
		Name:        "quarter-rev",
		Propagator:  p,
		Solver:      solver,
		Condition:   xCrossingCondition(),
		MaxDuration: period,
		StepHint:    10,
		Tolerance:   1e-6,
	}
	sol, err := seg.Solve(s0)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if sol.Reason != Triggered {
		t.Fatalf("expected the segment to terminate via the condition, got %v", sol.Reason)
	}
	if sol.MassConsumedKg != 0 {
		t.Fatalf("expected no mass consumption for a coast segment, got %f", sol.MassConsumedKg)
	}
}

func TestSegmentSolveReachesMaxDurationWhenConditionNeverFires(t *testing.T) {
	p, s0, _ := circularOrbitSetup(t)
	solver := integrator.NewSolver(integrator.DormandPrince54(), 1e-10, 1e-12)

	neverExtractor := func(s state.State) (float64, error) { return -1, nil }
	neverCond := event.NewRealCondition("never", neverExtractor, 0, event.AnyCrossing)

	seg := Segment{
		Name:        "coast",
		Propagator:  p,
		Solver:      solver,
		Condition:   neverCond,
		MaxDuration: 120,
		StepHint:    10,
		Tolerance:   1e-6,
	}
	sol, err := seg.Solve(s0)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if sol.Reason != MaxDurationReached {
		t.Fatalf("expected MaxDurationReached, got %v", sol.Reason)
	}
	if math.Abs(sol.ElapsedSeconds-120) > 1e-6 {
		t.Fatalf("expected elapsed seconds to equal MaxDuration, got %f", sol.ElapsedSeconds)
	}
}

func TestSegmentSolveRebindsRelativeConditionFromIncomingState(t *testing.T) {
	p, s0, _ := circularOrbitSetup(t)
	solver := integrator.NewSolver(integrator.DormandPrince54(), 1e-10, 1e-12)

	epochSeconds := func(s state.State) (float64, error) { return float64(s.Instant.Unix()), nil }
	// "fire for +90s from whatever state this segment starts at".
	plus90 := event.NewRelativeRealCondition("duration-90s", epochSeconds, 90, event.AnyCrossing)

	seg := Segment{
		Name:        "burn",
		Propagator:  p,
		Solver:      solver,
		Condition:   plus90,
		MaxDuration: 1000,
		StepHint:    10,
		Tolerance:   1e-6,
	}
	sol, err := seg.Solve(s0)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if sol.Reason != Triggered {
		t.Fatalf("expected the segment to terminate via the rebound condition, got %v", sol.Reason)
	}
	if math.Abs(sol.ElapsedSeconds-90) > 1 {
		t.Fatalf("expected ~90s elapsed, got %f", sol.ElapsedSeconds)
	}

	// A second segment starting later should rebind the same Condition's
	// offset to its own incoming state rather than reusing the first
	// segment's target.
	seg2 := seg
	seg2.Name = "burn-again"
	sol2, err := seg2.Solve(sol.FinalState)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if sol2.Reason != Triggered {
		t.Fatalf("expected the second segment to also terminate via the rebound condition, got %v", sol2.Reason)
	}
	if math.Abs(sol2.ElapsedSeconds-90) > 1 {
		t.Fatalf("expected ~90s elapsed on the rebound segment, got %f", sol2.ElapsedSeconds)
	}
}

func TestSequenceThreadsContinuityAcrossSegments(t *testing.T) {
	p, s0, _ := circularOrbitSetup(t)
	solver := integrator.NewSolver(integrator.DormandPrince54(), 1e-10, 1e-12)

	neverExtractor := func(s state.State) (float64, error) { return -1, nil }
	neverCond := event.NewRealCondition("never", neverExtractor, 0, event.AnyCrossing)

	segA := Segment{Name: "a", Propagator: p, Solver: solver, Condition: neverCond, MaxDuration: 100, StepHint: 10, Tolerance: 1e-6}
	segB := Segment{Name: "b", Propagator: p, Solver: solver, Condition: neverCond, MaxDuration: 50, StepHint: 10, Tolerance: 1e-6}

	seq := NewSequence("ab", segA, segB)
	solutions, err := seq.Solve(s0)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if len(solutions) != 2 {
		t.Fatalf("expected 2 solutions, got %d", len(solutions))
	}
	if !solutions[1].InitialState.Instant.Equal(solutions[0].FinalState.Instant) {
		t.Fatal("expected the second segment to start where the first segment ended")
	}
	wantTotal := s0.Instant.Add(150 * time.Second)
	if !solutions[1].FinalState.Instant.Equal(wantTotal) {
		t.Fatalf("expected the sequence to cover 150s total, ended at %v", solutions[1].FinalState.Instant)
	}
}

func TestSegmentSolveComputesImpulseForManeuver(t *testing.T) {
	p, s0, _ := circularOrbitSetup(t)
	epoch := s0.Instant

	const thrustN, ispS = 1.0, 300.0
	const standardGravity = 9.80665
	engine := dynamics.NewGenericEngine(thrustN, ispS)
	law := guidance.NewConstantThrust([]float64{0, 1, 0}, 1)
	thruster := dynamics.NewThruster(engine, law, 0, epoch)

	maneuverProp, err := propagator.New(p.Broker, p.Frame,
		dynamics.NewPositionDerivative(), dynamics.NewCentralBodyGravity(celestial.Earth, epoch), thruster)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	solver := integrator.NewSolver(integrator.DormandPrince54(), 1e-10, 1e-12)

	neverExtractor := func(s state.State) (float64, error) { return -1, nil }
	neverCond := event.NewRealCondition("never", neverExtractor, 0, event.AnyCrossing)

	seg := Segment{
		Name:            "burn",
		Propagator:      maneuverProp,
		Solver:          solver,
		Condition:       neverCond,
		MaxDuration:     100,
		StepHint:        1,
		Tolerance:       1e-6,
		Law:             law,
		ExhaustVelocity: ispS * standardGravity,
	}
	sol, err := seg.Solve(s0)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if sol.MassConsumedKg <= 0 {
		t.Fatalf("expected positive mass consumption for a maneuver segment, got %f", sol.MassConsumedKg)
	}
	wantImpulse := thrustN * sol.ElapsedSeconds
	if math.Abs(sol.ImpulseDelivered-wantImpulse) > 0.01*wantImpulse {
		t.Fatalf("expected impulse delivered ~= thrust*elapsed (%f), got %f", wantImpulse, sol.ImpulseDelivered)
	}
}
