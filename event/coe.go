package event

import (
	"math"

	"github.com/sabiduria-space/astrocore/state"
	"github.com/sabiduria-space/astrocore/state/coords"
)

// Element selects which classical orbital element a COECondition observes.
type Element uint8

const (
	SemiMajorAxis Element = iota
	Eccentricity
	Inclination
	RAAN
	ArgumentOfPeriapsis
	TrueAnomaly
)

// NewCOECondition builds a Condition over a classical orbital element
// derived from a state's Cartesian position/velocity, reducing to a
// RealCondition for scalar elements (SMA, eccentricity) and an
// AngularCondition for angular elements (inclination, RAAN, argument of
// periapsis, true anomaly). Grounded on smd/orbit.go's Orbit.Elements
// (Vallado RV2COE), reimplemented locally (see guidance.elementsFromRV for
// the sibling port) since this package must not depend on guidance.
func NewCOECondition(name string, element Element, mu float64, lo, hi float64) Condition {
	extractor := func(s state.State) (float64, error) {
		r, err := s.Extract(coords.CartesianPosition())
		if err != nil {
			return 0, err
		}
		v, err := s.Extract(coords.CartesianVelocity())
		if err != nil {
			return 0, err
		}
		return elementValue(r, v, mu, element), nil
	}
	switch element {
	case SemiMajorAxis, Eccentricity:
		return NewRealCondition(name, extractor, lo, AnyCrossing)
	default:
		return NewAngularCondition(name, extractor, lo, hi)
	}
}

func elementValue(r, v []float64, mu float64, element Element) float64 {
	h := cross(r, v)
	n := cross([]float64{0, 0, 1}, h)
	rNorm := norm(r)
	vNorm := norm(v)
	switch element {
	case SemiMajorAxis:
		xi := (vNorm*vNorm)/2 - mu/rNorm
		return -mu / (2 * xi)
	case Eccentricity:
		eVec := eccentricityVector(r, v, mu)
		return norm(eVec)
	case Inclination:
		return math.Acos(clamp(h[2]/norm(h), -1, 1))
	case RAAN:
		nNorm := norm(n)
		if nNorm < 1e-12 {
			return 0
		}
		raan := math.Acos(clamp(n[0]/nNorm, -1, 1))
		if n[1] < 0 {
			raan = 2*math.Pi - raan
		}
		return raan
	case ArgumentOfPeriapsis:
		eVec := eccentricityVector(r, v, mu)
		nNorm := norm(n)
		e := norm(eVec)
		if nNorm < 1e-12 || e < 1e-12 {
			return 0
		}
		aop := math.Acos(clamp(dot(n, eVec)/(nNorm*e), -1, 1))
		if eVec[2] < 0 {
			aop = 2*math.Pi - aop
		}
		return aop
	case TrueAnomaly:
		eVec := eccentricityVector(r, v, mu)
		e := norm(eVec)
		if e < 1e-12 {
			return 0
		}
		nu := math.Acos(clamp(dot(eVec, r)/(e*rNorm), -1, 1))
		if dot(r, v) < 0 {
			nu = 2*math.Pi - nu
		}
		return nu
	}
	return 0
}

func eccentricityVector(r, v []float64, mu float64) []float64 {
	rNorm := norm(r)
	vNorm := norm(v)
	rv := dot(r, v)
	out := make([]float64, 3)
	for i := 0; i < 3; i++ {
		out[i] = ((vNorm*vNorm-mu/rNorm)*r[i] - rv*v[i]) / mu
	}
	return out
}

func cross(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot(a, b []float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func norm(v []float64) float64 { return math.Sqrt(dot(v, v)) }

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
