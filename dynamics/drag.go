package dynamics

import (
	"time"

	"github.com/sabiduria-space/astrocore/celestial"
	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/state/coords"
)

// AtmosphericDrag contributes the drag deceleration on a spacecraft given
// the central body's atmospheric density model, ported from
// smd/perturbations.go's Arbitrary-perturbation hook pattern (smd
// leaves drag to caller-supplied closures; here it is promoted to a
// first-class Dynamics so it composes uniformly with gravity).
type AtmosphericDrag struct {
	readWriteBase
	Body     celestial.Body
	Epoch    time.Time
	Velocity func(t float64) ([]float64, error) // atmosphere co-rotation velocity at body-fixed frame, e.g. omega x r
}

// NewAtmosphericDrag returns an AtmosphericDrag contributor reading
// position, velocity, mass, surface area and drag coefficient, and writing
// the deceleration that integrates into velocity. epoch is the wall-clock
// instant Compute's seconds-since-epoch argument is relative to.
func NewAtmosphericDrag(body celestial.Body, epoch time.Time) *AtmosphericDrag {
	return &AtmosphericDrag{
		readWriteBase: readWriteBase{
			reads: []coords.Subset{
				coords.CartesianPosition(),
				coords.CartesianVelocity(),
				coords.Mass(),
				coords.SurfaceArea(),
				coords.DragCoefficient(),
			},
			writes: []coords.Subset{coords.CartesianVelocity()},
		},
		Body:  body,
		Epoch: epoch,
	}
}

// Name implements Dynamics.
func (d *AtmosphericDrag) Name() string { return "atmospheric-drag:" + d.Body.Name() }

// Compute implements Dynamics.
func (d *AtmosphericDrag) Compute(t float64, reads []float64, fr frame.Frame) ([]float64, error) {
	r := reads[0:3]
	v := reads[3:6]
	mass := reads[6]
	area := reads[7]
	cd := reads[8]

	rho, err := d.Body.AtmosphericDensity(r, d.Epoch.Add(secondsToDuration(t)))
	if err != nil {
		return nil, err
	}
	relV := make([]float64, 3)
	copy(relV, v)
	if d.Velocity != nil {
		atmV, err := d.Velocity(t)
		if err != nil {
			return nil, err
		}
		for i := range relV {
			relV[i] -= atmV[i]
		}
	}
	speed := norm(relV)
	if speed == 0 || mass == 0 {
		return []float64{0, 0, 0}, nil
	}
	coeff := -0.5 * rho * cd * area / mass * speed
	out := make([]float64, 3)
	for i := range out {
		out[i] = coeff * relV[i]
	}
	return out, nil
}
