// Package access generates object-to-object visibility intervals (azimuth/
// elevation/range masks, line-of-sight) by wrapping the temporal-condition
// solver with ground-station-specific predicates: access generation reduces
// to temporal-condition solving with domain-specific predicates. Grounded
// on smd/station.go's RangeElAz (the
// SEZ-frame elevation/azimuth computation), generalized from smd's
// hardcoded ECI/ECEF pair to the frame.Frame interface and from its
// inline per-step elevation check (buried in Station.PerformMeasurement) to
// a standalone predicate reusable by temporal.Solver.
package access

import (
	"math"
	"time"

	"github.com/gonum/matrix/mat64"

	"github.com/sabiduria-space/astrocore/estimation/station"
	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/state/coords"
	"github.com/sabiduria-space/astrocore/temporal"
	"github.com/sabiduria-space/astrocore/trajectory"
)

// AER is an azimuth/elevation/range observation of a target from a
// station, both angles in radians and range in meters.
type AER struct {
	Azimuth, Elevation, Range float64
}

// Observe computes the AER of a target position (expressed in the
// station's body-fixed frame) from the station, per smd/station.go's
// RangeElAz: the line of sight is rotated into the station's local
// south-east-zenith (SEZ) frame via a longitude rotation about the body's
// polar axis followed by a co-latitude rotation about the resulting east
// axis.
func Observe(st station.Station, targetBodyFixed []float64) AER {
	los := make([]float64, 3)
	for i := range los {
		los[i] = targetBodyFixed[i] - st.Position[i]
	}
	rng := norm(los)
	sez := frame.MxV33(frame.R3(st.LongitudeRad), los)
	sez = rotY(math.Pi/2-st.LatitudeRad, sez)
	elevation := math.Asin(sez[2] / rng)
	azimuth := math.Mod(2*math.Pi+math.Atan2(sez[1], -sez[0]), 2*math.Pi)
	return AER{Azimuth: azimuth, Elevation: elevation, Range: rng}
}

// rotY rotates v by angle x about the local Y (east) axis, the one
// rotation frame.R1/frame.R3 does not already provide.
func rotY(x float64, v []float64) []float64 {
	s, c := math.Sincos(x)
	m := mat64.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
	return frame.MxV33(m, v)
}

func norm(v []float64) float64 { return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2]) }

// Generator produces visibility intervals of a trajectory.Model as seen
// from a ground station.
type Generator struct {
	Station station.Station
	Target  trajectory.Model
	Solver  temporal.Solver
}

// NewGenerator returns a Generator computing AER against target from st,
// using solver to find the resulting visibility intervals.
func NewGenerator(st station.Station, target trajectory.Model, solver temporal.Solver) *Generator {
	return &Generator{Station: st, Target: target, Solver: solver}
}

// aer returns the AER of the target at instant, reframed into the
// station's body-fixed frame.
func (g *Generator) aer(instant time.Time) (AER, error) {
	s, err := g.Target.StateAt(instant)
	if err != nil {
		return AER{}, err
	}
	sBF, err := s.InFrame(g.Station.BodyFixedFrame)
	if err != nil {
		return AER{}, err
	}
	pos, err := sBF.Extract(coords.CartesianPosition())
	if err != nil {
		return AER{}, err
	}
	return Observe(g.Station, pos), nil
}

// ElevationIntervals returns the intervals on [t0, t1] during which the
// target's elevation is at or above the station's elevation mask.
func (g *Generator) ElevationIntervals(t0, t1 time.Time) ([]temporal.Interval, error) {
	return g.Solver.Intervals(t0, t1, func(t time.Time) (bool, error) {
		aer, err := g.aer(t)
		if err != nil {
			return false, err
		}
		return aer.Elevation >= g.Station.ElevationMaskRad, nil
	})
}

// AERIntervals returns the intervals on which within reports true for the
// target's instantaneous AER (an arbitrary box constraint on
// azimuth/elevation/range, as opposed to ElevationIntervals' fixed mask).
func (g *Generator) AERIntervals(t0, t1 time.Time, within func(AER) bool) ([]temporal.Interval, error) {
	return g.Solver.Intervals(t0, t1, func(t time.Time) (bool, error) {
		aer, err := g.aer(t)
		if err != nil {
			return false, err
		}
		return within(aer), nil
	})
}

// LineOfSight reports whether two position vectors, expressed in the same
// frame and centered on a spherical obstructing body of the given radius,
// have an unobstructed line of sight between them: the segment between
// them passes no closer to the origin than radius. This is a closest-
// approach-of-segment-to-sphere test (eclipse.Generator instead compares
// apparent angular radii), offered as the generic "is body A visible from
// body B" primitive original_source's VisibilityCriteria.hpp exposes as
// LineOfSight.
func LineOfSight(a, b []float64, radius float64) bool {
	d := make([]float64, 3)
	for i := range d {
		d[i] = b[i] - a[i]
	}
	segLen := norm(d)
	if segLen == 0 {
		return true
	}
	u := []float64{d[0] / segLen, d[1] / segLen, d[2] / segLen}
	// closest approach of the line a+t*u to the origin, clamped to the segment
	t := -(a[0]*u[0] + a[1]*u[1] + a[2]*u[2])
	if t < 0 {
		t = 0
	} else if t > segLen {
		t = segLen
	}
	closest := []float64{a[0] + t*u[0], a[1] + t*u[1], a[2] + t*u[2]}
	return norm(closest) >= radius
}
