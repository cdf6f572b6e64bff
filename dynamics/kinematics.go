package dynamics

import (
	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/state/coords"
)

// PositionDerivative is the trivial dx/dt = v contribution every
// Cartesian-state propagation needs. Grounded on smd/prop.go's Cartesian
// derivative branch (`f[0] = V[0]` etc.), generalized to the subset model.
type PositionDerivative struct {
	readWriteBase
}

// NewPositionDerivative returns a PositionDerivative reading
// CARTESIAN_VELOCITY and writing CARTESIAN_POSITION's derivative.
func NewPositionDerivative() *PositionDerivative {
	return &PositionDerivative{readWriteBase{
		reads:  []coords.Subset{coords.CartesianVelocity()},
		writes: []coords.Subset{coords.CartesianPosition()},
	}}
}

// Name implements Dynamics.
func (d *PositionDerivative) Name() string { return "position-derivative" }

// Compute implements Dynamics: the position derivative is simply velocity.
func (d *PositionDerivative) Compute(t float64, reads []float64, fr frame.Frame) ([]float64, error) {
	out := make([]float64, 3)
	copy(out, reads)
	return out, nil
}
