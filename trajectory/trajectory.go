// Package trajectory implements the orbit-model collaborator: pluggable
// state-at-time models (analytic Kepler, tabulated ephemeris, static,
// nadir-pointing, and an SGP4/TLE adapter) plus ascending-node pass
// segmentation over any Model. None of these read or write a Propagator
// directly; they answer "what is the state at time t" independent of the
// dynamics-integration engine, the way smd.Orbit answers it analytically
// today and smd's waypoint/mission loop answers it numerically.
// original_source's TrajectoryModel hierarchy (Kepler/SGP4/Tabulated/Static
// models, each answering getStateAt) is restored here in full; TLE/OPM
// parsing itself stays out of scope (SGP4Adapter below takes an
// already-parsed propagate callable).
package trajectory

import (
	"time"

	"github.com/sabiduria-space/astrocore/state"
)

// Model answers the state of some object at an arbitrary instant, the
// shared contract for every concrete trajectory/orbit model in this
// package.
type Model interface {
	StateAt(instant time.Time) (state.State, error)
}

// Static is a Model that never moves: StateAt always returns the same
// coordinates, re-timestamped to the requested instant. Grounded on
// original_source's StaticTrajectory (a fixed ground facility or a frozen
// "last known" state used as a propagation seed).
type Static struct {
	S state.State
}

// NewStatic returns a Static model pinned at s's coordinates.
func NewStatic(s state.State) *Static {
	return &Static{S: s}
}

// StateAt implements Model: returns S re-timestamped to instant.
func (m *Static) StateAt(instant time.Time) (state.State, error) {
	return state.New(instant, m.S.Coordinates, m.S.Frame, m.S.Broker)
}

// SGP4Adapter wraps a caller-supplied SGP4/TLE propagation callable as a
// Model. SGP4 and TLE parsing are treated as external collaborators; this
// adapter is the seam a caller wires a real SGP4 implementation (or a TLE
// library) into without the core depending on one.
type SGP4Adapter struct {
	Propagate func(instant time.Time) (r, v []float64, err error)
	Frame     interface {
		Name() string
	}
	toState func(instant time.Time, r, v []float64) (state.State, error)
}

// NewSGP4Adapter returns an SGP4Adapter that builds States via toState
// (typically a state.Builder.Set(CartesianPosition, r).Set(CartesianVelocity, v).Build
// closure supplied by the caller, since only the caller knows the broker
// the rest of its pipeline expects).
func NewSGP4Adapter(propagate func(time.Time) ([]float64, []float64, error), toState func(time.Time, []float64, []float64) (state.State, error)) *SGP4Adapter {
	return &SGP4Adapter{Propagate: propagate, toState: toState}
}

// StateAt implements Model.
func (a *SGP4Adapter) StateAt(instant time.Time) (state.State, error) {
	r, v, err := a.Propagate(instant)
	if err != nil {
		return state.State{}, err
	}
	return a.toState(instant, r, v)
}
