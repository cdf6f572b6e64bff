// Package propagator assembles a set of dynamics.Dynamics contributors
// into a global right-hand side over a broker-described coordinate vector
// and drives it forward with an integrator.Solver.
// Ported from smd.Mission's GetState/SetState/Func trio (mission.go),
// generalized from smd's hardcoded 7-slot Cartesian/GaussianVOP
// switch into a broker-driven gather/scatter plan computed once at
// construction.
package propagator

import (
	"time"

	"github.com/sabiduria-space/astrocore/dynamics"
	"github.com/sabiduria-space/astrocore/errkind"
	"github.com/sabiduria-space/astrocore/event"
	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/integrator"
	"github.com/sabiduria-space/astrocore/logging"
	"github.com/sabiduria-space/astrocore/state"
	"github.com/sabiduria-space/astrocore/state/coords"
)

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// plan is the precomputed gather/scatter wiring for one Dynamics
// contributor: which broker offsets to read into its input buffer, and
// which broker offsets to scatter its output derivative into.
type plan struct {
	d           dynamics.Dynamics
	readSpans   []span
	writeSpans  []span
	readTotal   int
}

type span struct {
	offset, size int
}

// Propagator composes Dynamics contributors against a single broker,
// building the gather/scatter plan once at construction rather than
// re-resolving subset offsets on every derivative evaluation.
type Propagator struct {
	Broker *coords.Broker
	Frame  frame.Frame
	// Logger narrates notable propagation events (condition triggers,
	// timeouts), in smd's kitlog style. Left nil it is treated as
	// logging.Discard, so a Propagator built by a struct literal (the
	// common case in tests) remains usable without explicit wiring.
	Logger logging.Logger
	plans  []plan
}

func (p *Propagator) logger() logging.Logger {
	if p.Logger == nil {
		return logging.Discard
	}
	return p.Logger
}

// New builds a Propagator from the given broker, working frame and
// Dynamics contributors. Every subset a contributor reads or writes must
// already be registered on broker.
func New(broker *coords.Broker, fr frame.Frame, contributors ...dynamics.Dynamics) (*Propagator, error) {
	p := &Propagator{Broker: broker, Frame: fr}
	for _, d := range contributors {
		pl := plan{d: d}
		for _, r := range d.Reads() {
			offset, size, err := broker.Index(r)
			if err != nil {
				return nil, errkind.Wrap(errkind.SubsetNotRegistered, "propagator: dynamics "+d.Name()+" reads unregistered subset "+r.Name(), err)
			}
			pl.readSpans = append(pl.readSpans, span{offset, size})
			pl.readTotal += size
		}
		for _, w := range d.Writes() {
			offset, size, err := broker.Index(w)
			if err != nil {
				return nil, errkind.Wrap(errkind.SubsetNotRegistered, "propagator: dynamics "+d.Name()+" writes unregistered subset "+w.Name(), err)
			}
			pl.writeSpans = append(pl.writeSpans, span{offset, size})
		}
		p.plans = append(p.plans, pl)
	}
	return p, nil
}

// Derivative evaluates the global right-hand side at time t (seconds since
// the propagation epoch) for the flat coordinate vector y, gathering each
// contributor's inputs and scattering its outputs, summing contributions
// that write overlapping subsets (e.g. multiple gravity sources writing
// their accelerations into the velocity subset's derivative).
func (p *Propagator) Derivative(t float64, y []float64) ([]float64, error) {
	out := make([]float64, len(y))
	for _, pl := range p.plans {
		reads := make([]float64, 0, pl.readTotal)
		for _, sp := range pl.readSpans {
			reads = append(reads, y[sp.offset:sp.offset+sp.size]...)
		}
		writes, err := pl.d.Compute(t, reads, p.Frame)
		if err != nil {
			return nil, errkind.Wrap(errkind.Diverged, "propagator: dynamics "+pl.d.Name()+" compute failed", err)
		}
		cursor := 0
		for _, sp := range pl.writeSpans {
			for i := 0; i < sp.size; i++ {
				out[sp.offset+i] += writes[cursor+i]
			}
			cursor += sp.size
		}
	}
	return out, nil
}

// CalculateStateAt integrates from s0 to the given instant, expressed in
// seconds after s0.Instant, returning the resulting State.
func (p *Propagator) CalculateStateAt(solver *integrator.Solver, s0 state.State, instant float64, stepHint float64) (state.State, error) {
	y1, err := solver.Integrate(p.Derivative, 0, instant, stepHint, s0.Coordinates)
	if err != nil {
		return state.State{}, err
	}
	t1 := s0.Instant.Add(secondsToDuration(instant))
	return state.New(t1, y1, p.Frame, p.Broker)
}

// CalculateStatesAt integrates from s0 through each instant in instants (in
// non-decreasing order), returning one State per instant. Reuses the
// running integration rather than re-propagating from s0 each time.
func (p *Propagator) CalculateStatesAt(solver *integrator.Solver, s0 state.State, instants []float64, stepHint float64) ([]state.State, error) {
	out := make([]state.State, len(instants))
	y := s0.Coordinates
	tPrev := 0.0
	for i, instant := range instants {
		y1, err := solver.Integrate(p.Derivative, tPrev, instant, stepHint, y)
		if err != nil {
			return nil, err
		}
		t1 := s0.Instant.Add(secondsToDuration(instant))
		s1, err := state.New(t1, y1, p.Frame, p.Broker)
		if err != nil {
			return nil, err
		}
		out[i] = s1
		y, tPrev = y1, instant
	}
	return out, nil
}

// PropagateUntilCondition integrates from s0 forward (or backward) toward
// maxInstant, stopping at the first instant cond is satisfied across a
// sign change.
func (p *Propagator) PropagateUntilCondition(solver *integrator.Solver, s0 state.State, cond event.Condition, maxInstant, stepHint, tol float64) (state.State, bool, error) {
	evalAt := func(t float64) (float64, error) {
		y, err := solver.Integrate(p.Derivative, 0, t, stepHint, s0.Coordinates)
		if err != nil {
			return 0, err
		}
		instantT := s0.Instant.Add(secondsToDuration(t))
		st, err := state.New(instantT, y, p.Frame, p.Broker)
		if err != nil {
			return 0, err
		}
		return cond.Evaluate(t, st)
	}
	result, err := solver.IntegrateUntilCondition(p.Derivative, 0, maxInstant, stepHint, s0.Coordinates, nil, evalAt, tol)
	if err != nil {
		p.logger().Log("level", "critical", "condition", cond.Name(), "error", err)
		return state.State{}, false, err
	}
	finalInstant := maxInstant
	if result.Triggered {
		finalInstant = result.TriggerTime
		p.logger().Log("level", "info", "condition", cond.Name(), "status", "triggered", "t", finalInstant)
	} else {
		p.logger().Log("level", "notice", "condition", cond.Name(), "status", "max-duration", "t", finalInstant)
	}
	t1 := s0.Instant.Add(secondsToDuration(finalInstant))
	s1, err := state.New(t1, result.FinalState, p.Frame, p.Broker)
	if err != nil {
		return state.State{}, false, err
	}
	return s1, result.Triggered, nil
}
