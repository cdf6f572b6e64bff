package estimation

import (
	"time"

	"github.com/sabiduria-space/astrocore/estimation/station"
	"github.com/sabiduria-space/astrocore/integrator"
	"github.com/sabiduria-space/astrocore/propagator"
	"github.com/sabiduria-space/astrocore/state"
)

// ObservationSchedule pairs the stations and instants an
// ODLeastSquaresSolver must generate predicted range/range-rate
// observations for, mirroring what a real tracking pass would supply.
type ObservationSchedule struct {
	Station  station.Station
	Instants []time.Time
}

// ODLeastSquaresSolver wraps a propagator.Propagator as the
// observation-generating Model for orbit determination: the estimated
// parameters are the initial coordinate vector, and the predicted
// observations are the range/range-rate each scheduled station would see
// along the resulting trajectory. Ported from smd/estimate.go's
// OrbitEstimate, which instead drove a sequential extended Kalman filter off
// the same Propagate/Func/SetState machinery as smd.Mission; this batch
// least-squares formulation reuses that propagate-and-compare idea without
// the sequential-filter state.
type ODLeastSquaresSolver struct {
	Propagator *propagator.Propagator
	Solver     *integrator.Solver
	Epoch      time.Time
	StepHint   float64
	Schedules  []ObservationSchedule
	ls         *LeastSquaresSolver
}

// NewODLeastSquaresSolver returns an ODLeastSquaresSolver. Observations
// passed to Solve must be laid out range-then-range-rate, one pair per
// (schedule, instant) in the order Schedules/Instants are given.
func NewODLeastSquaresSolver(prop *propagator.Propagator, solver *integrator.Solver, epoch time.Time, stepHint float64, schedules []ObservationSchedule) *ODLeastSquaresSolver {
	od := &ODLeastSquaresSolver{Propagator: prop, Solver: solver, Epoch: epoch, StepHint: stepHint, Schedules: schedules}
	od.ls = NewLeastSquaresSolver(od.predict)
	return od
}

// Solve estimates the initial coordinate vector that best explains
// observations (laid out as described on ODLeastSquaresSolver), starting
// the search from initialGuess.
func (od *ODLeastSquaresSolver) Solve(initialGuess, observations []float64) (Solution, error) {
	return od.ls.Solve(initialGuess, observations)
}

func (od *ODLeastSquaresSolver) predict(params []float64) ([]float64, error) {
	s0, err := state.New(od.Epoch, params, od.Propagator.Frame, od.Propagator.Broker)
	if err != nil {
		return nil, err
	}
	var out []float64
	for _, sched := range od.Schedules {
		for _, instant := range sched.Instants {
			dt := instant.Sub(od.Epoch).Seconds()
			si, err := od.Propagator.CalculateStateAt(od.Solver, s0, dt, od.StepHint)
			if err != nil {
				return nil, err
			}
			r, v, err := positionVelocity(si)
			if err != nil {
				return nil, err
			}
			meas, err := sched.Station.Observe(instant, si.Frame, r, v)
			if err != nil {
				return nil, err
			}
			out = append(out, meas.TrueRange, meas.TrueRangeRate)
		}
	}
	return out, nil
}
