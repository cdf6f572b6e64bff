package dynamics

import (
	"math"
	"time"

	"github.com/sabiduria-space/astrocore/celestial"
	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/state/coords"
)

// CentralBodyGravity contributes the two-body plus zonal-harmonic
// gravitational acceleration of a central body. Ported from
// smd/perturbations.go's Cartesian J2 branch, generalized to use
// celestial.Body.GravitationalField directly rather than a hardcoded J2
// formula inline, and extended to any Body implementation (including
// third-body use via NewThirdBodyGravity below).
type CentralBodyGravity struct {
	readWriteBase
	Body  celestial.Body
	Epoch time.Time // wall-clock instant that Compute's t=0 refers to
}

// NewCentralBodyGravity returns a CentralBodyGravity contributor for the
// given central body, reading position and writing the acceleration that
// integrates into velocity. epoch is the wall-clock instant Compute's
// seconds-since-epoch argument is relative to, needed to query time-varying
// Body implementations (e.g. celestial.Ephemeris).
func NewCentralBodyGravity(body celestial.Body, epoch time.Time) *CentralBodyGravity {
	return &CentralBodyGravity{
		readWriteBase: readWriteBase{
			reads:  []coords.Subset{coords.CartesianPosition()},
			writes: []coords.Subset{coords.CartesianVelocity()},
		},
		Body:  body,
		Epoch: epoch,
	}
}

// Name implements Dynamics.
func (d *CentralBodyGravity) Name() string { return "central-body-gravity:" + d.Body.Name() }

// Compute implements Dynamics.
func (d *CentralBodyGravity) Compute(t float64, reads []float64, fr frame.Frame) ([]float64, error) {
	r := reads[:3]
	return d.Body.GravitationalField(r, d.Epoch.Add(secondsToDuration(t)))
}

// ThirdBodyGravity contributes the differential (third-body minus
// acceleration-on-origin) gravitational perturbation of a body other than
// the one the propagated state orbits. Grounded on
// smd.Perturbations.PerturbingBody, generalized from smd's
// single-body special case to an explicit differential-acceleration
// contributor reusable for arbitrary third bodies.
type ThirdBodyGravity struct {
	readWriteBase
	Body         celestial.Body
	Epoch        time.Time
	BodyPosition func(t float64) ([]float64, error) // position of Body relative to the propagation origin
}

// NewThirdBodyGravity returns a ThirdBodyGravity contributor. bodyPosition
// returns Body's position relative to the same origin as the propagated
// state, at seconds-since-epoch t.
func NewThirdBodyGravity(body celestial.Body, epoch time.Time, bodyPosition func(t float64) ([]float64, error)) *ThirdBodyGravity {
	return &ThirdBodyGravity{
		readWriteBase: readWriteBase{
			reads:  []coords.Subset{coords.CartesianPosition()},
			writes: []coords.Subset{coords.CartesianVelocity()},
		},
		Body:         body,
		Epoch:        epoch,
		BodyPosition: bodyPosition,
	}
}

// Name implements Dynamics.
func (d *ThirdBodyGravity) Name() string { return "third-body-gravity:" + d.Body.Name() }

// Compute implements Dynamics: returns the perturbing acceleration
// (acceleration of the spacecraft due to Body, minus the acceleration Body
// imparts on the origin, to avoid double-counting the origin's own motion
// when both are propagated in an origin-centered frame). Regularizes the
// case where the spacecraft lies within 1 m of Body by returning zero
// acceleration rather than dividing by a near-zero separation (see
// DESIGN.md Open Questions).
func (d *ThirdBodyGravity) Compute(t float64, reads []float64, fr frame.Frame) ([]float64, error) {
	rSC := reads[:3]
	rBody, err := d.BodyPosition(t)
	if err != nil {
		return nil, err
	}
	sep := make([]float64, 3)
	for i := range sep {
		sep[i] = rSC[i] - rBody[i]
	}
	if norm(sep) < 1.0 {
		return []float64{0, 0, 0}, nil
	}
	instant := d.Epoch.Add(secondsToDuration(t))
	accOnSC, err := d.Body.GravitationalField(sep, instant)
	if err != nil {
		return nil, err
	}
	negRBody := make([]float64, 3)
	for i := range negRBody {
		negRBody[i] = -rBody[i]
	}
	accOnOrigin, err := d.Body.GravitationalField(negRBody, instant)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 3)
	for i := range out {
		out[i] = accOnSC[i] - accOnOrigin[i]
	}
	return out, nil
}

func norm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
