// Package eclipse generates umbra/penumbra occultation intervals for a
// trajectory with respect to an occulting and occulted celestial body,
// grounded on original_source's Eclipse/Generator.hpp (a thin
// wrapper pairing a TemporalConditionSolver with an occultation predicate
// over a Trajectory and an Environment). astrocore has no Environment
// collaborator; the occulting/occulted bodies and the common working frame
// are supplied directly instead.
package eclipse

import (
	"math"
	"time"

	"github.com/sabiduria-space/astrocore/celestial"
	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/state/coords"
	"github.com/sabiduria-space/astrocore/temporal"
	"github.com/sabiduria-space/astrocore/trajectory"
)

// Kind distinguishes a total (umbra) occultation from a partial
// (penumbra) one, per original_source's Eclipse::Type.
type Kind int

const (
	// None means the occulted body is fully visible.
	None Kind = iota
	// Penumbra means the occulted body is partially occluded.
	Penumbra
	// Umbra means the occulted body is fully occluded.
	Umbra
)

// Generator produces eclipse intervals for a trajectory.Model against an
// occulting body (e.g. Earth) and occulted body (e.g. the Sun).
type Generator struct {
	Target    trajectory.Model
	Occulting celestial.Body
	Occulted  celestial.Body
	// OccultedRadius and OccultingRadius are used as given; NewGenerator
	// sets them from each Body's EquatorialRadius. The Sun, having no Flattening/radius
	// relevant to occultation geometry itself, is still modeled as a sphere
	// of OccultedRadius for the penumbra cone.
	OccultedRadius, OccultingRadius float64
	Frame                           frame.Frame
	Solver                          temporal.Solver
}

// NewGenerator returns a Generator with OccultedRadius/OccultingRadius
// defaulted from the bodies' EquatorialRadius.
func NewGenerator(target trajectory.Model, occulting, occulted celestial.Body, workingFrame frame.Frame, solver temporal.Solver) *Generator {
	return &Generator{
		Target:         target,
		Occulting:      occulting,
		Occulted:       occulted,
		OccultedRadius: occulted.EquatorialRadius(),
		OccultingRadius: occulting.EquatorialRadius(),
		Frame:          workingFrame,
		Solver:         solver,
	}
}

// kindAt classifies the occultation kind at instant using a conical
// (not merely cylindrical) shadow model: the occulting body's umbra/
// penumbra half-angles are derived from the apparent radii of the two
// bodies as seen from the target, ported in spirit from
// original_source's conical shadow geometry rather than smd (which has no
// eclipse model at all).
func (g *Generator) kindAt(instant time.Time) (Kind, error) {
	s, err := g.Target.StateAt(instant)
	if err != nil {
		return None, err
	}
	sf, err := s.InFrame(g.Frame)
	if err != nil {
		return None, err
	}
	rTarget, err := sf.Extract(coords.CartesianPosition())
	if err != nil {
		return None, err
	}
	rOccluding, err := g.Occulting.Position(instant)
	if err != nil {
		return None, err
	}
	rOcculted, err := g.Occulted.Position(instant)
	if err != nil {
		return None, err
	}

	// Position of the target and the occulted body relative to the
	// occulting body.
	toTarget := sub(rTarget, rOccluding)
	toOccultedFromOccluding := sub(rOcculted, rOccluding)
	toOccultedFromTarget := sub(rOcculted, rTarget)

	distTargetOccluding := norm(toTarget)
	distOccludingOcculted := norm(toOccultedFromOccluding)
	if distOccludingOcculted == 0 {
		return None, nil
	}

	// The target must be on the far side of the occulting body from the
	// occulted body for any shadow to apply.
	if dot(toTarget, toOccultedFromOccluding) > 0 {
		return None, nil
	}

	// Angular radius of the occulting body as seen from the target, and
	// the angular separation between the occulting and occulted bodies as
	// seen from the target: full occultation (umbra) when the occulting
	// body's angular radius covers the occulted body's; partial
	// (penumbra) when the discs overlap at all.
	angOccluding := math.Asin(clamp(g.OccultingRadius/distTargetOccluding, -1, 1))
	distTargetOcculted := norm(toOccultedFromTarget)
	if distTargetOcculted == 0 {
		return Umbra, nil
	}
	angOcculted := math.Asin(clamp(g.OccultedRadius/distTargetOcculted, -1, 1))
	sep := angleBetween(neg(toTarget), toOccultedFromTarget)

	switch {
	case sep >= angOccluding+angOcculted:
		return None, nil
	case sep <= math.Abs(angOccluding-angOcculted):
		return Umbra, nil
	default:
		return Penumbra, nil
	}
}

// UmbraIntervals returns the intervals on [t0, t1] during which the target
// is fully occluded (total eclipse).
func (g *Generator) UmbraIntervals(t0, t1 time.Time) ([]temporal.Interval, error) {
	return g.Solver.Intervals(t0, t1, func(t time.Time) (bool, error) {
		k, err := g.kindAt(t)
		return k == Umbra, err
	})
}

// Intervals returns the intervals on [t0, t1] during which the target is
// at least partially eclipsed (penumbra or umbra).
func (g *Generator) Intervals(t0, t1 time.Time) ([]temporal.Interval, error) {
	return g.Solver.Intervals(t0, t1, func(t time.Time) (bool, error) {
		k, err := g.kindAt(t)
		return k != None, err
	})
}

func sub(a, b []float64) []float64 { return []float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func neg(a []float64) []float64    { return []float64{-a[0], -a[1], -a[2]} }
func dot(a, b []float64) float64   { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func norm(v []float64) float64     { return math.Sqrt(dot(v, v)) }

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func angleBetween(a, b []float64) float64 {
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return math.Acos(clamp(dot(a, b)/(na*nb), -1, 1))
}
