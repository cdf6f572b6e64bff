// Package guidance implements thrust-direction control laws,
// ported from smd/prop.go's ControlLaw/Law interface (smd's
// Ruggiero/Naasz/OptimalThrust laws), generalized to operate on State
// instead of a hardcoded Orbit.
package guidance

import (
	"math"

	"github.com/sabiduria-space/astrocore/state"
)

// Law computes a thrust direction (unit vector, spacecraft-fixed or
// inertial depending on the implementation) and a throttle fraction in
// [0,1] given the current state and time.
type Law interface {
	Name() string
	// Direction returns the unit thrust-direction vector and throttle
	// fraction at the given state and seconds-since-epoch t.
	Direction(t float64, s state.State) (direction []float64, throttle float64, err error)
}

// ConstantThrust is a Law that always thrusts along a fixed direction
// (expressed in the state's frame) at a fixed throttle. Grounded on
// smd/prop.go's "AntiTangential"/fixed-direction laws, generalized to an
// arbitrary caller-supplied direction vector instead of a derived one.
type ConstantThrust struct {
	DirectionVector []float64
	Throttle        float64
}

// NewConstantThrust returns a ConstantThrust law.
func NewConstantThrust(direction []float64, throttle float64) *ConstantThrust {
	n := norm(direction)
	unit := make([]float64, len(direction))
	if n != 0 {
		for i, d := range direction {
			unit[i] = d / n
		}
	}
	return &ConstantThrust{DirectionVector: unit, Throttle: throttle}
}

// Name implements Law.
func (c *ConstantThrust) Name() string { return "constant-thrust" }

// Direction implements Law.
func (c *ConstantThrust) Direction(t float64, s state.State) ([]float64, float64, error) {
	return c.DirectionVector, c.Throttle, nil
}

// Sequential chains laws across disjoint time windows: a sequence of
// coast/maneuver segments normally uses one Law per segment, but a single
// composite law is occasionally convenient for a continuous simulation.
// Ported from smd/mission.go's ControlLaw-switching WaypointAction
// chain, generalized to explicit time windows rather than waypoint triggers.
type Sequential struct {
	Windows []SequentialWindow
}

// SequentialWindow pairs a Law with the half-open [Start,End) time window
// (seconds since epoch) during which it applies.
type SequentialWindow struct {
	Start, End float64
	Law        Law
}

// NewSequential returns a Sequential law over the given windows, which must
// be given in non-decreasing Start order.
func NewSequential(windows ...SequentialWindow) *Sequential {
	return &Sequential{Windows: windows}
}

// Name implements Law.
func (s *Sequential) Name() string { return "sequential" }

// Direction implements Law: delegates to whichever window's Law covers t,
// or returns zero thrust if t falls in a gap.
func (s *Sequential) Direction(t float64, st state.State) ([]float64, float64, error) {
	for _, w := range s.Windows {
		if t >= w.Start && t < w.End {
			return w.Law.Direction(t, st)
		}
	}
	return []float64{0, 0, 0}, 0, nil
}

func norm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}
