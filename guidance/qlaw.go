package guidance

import (
	"math"

	"github.com/sabiduria-space/astrocore/guidance/lof"
	"github.com/sabiduria-space/astrocore/state"
	"github.com/sabiduria-space/astrocore/state/coords"
)

// QLaw is a Lyapunov/Q-law style feedback guidance law driving osculating
// semi-major axis, eccentricity and inclination toward targets, weighting
// each element's optimal thrust direction by how far it remains from its
// target. Ported from smd/prop.go's OptimalΔOrbit Ruggiero-method weighted
// sum (the `factor` closure and the per-element unitΔvFromAngles
// directions), generalized from smd's fixed seven-element switch to
// three independently toggleable element targets and operating on Cartesian
// state rather than a cached Orbit.
type QLaw struct {
	Mu float64

	TargetSMA, TargetEcc, TargetInc float64
	UseSMA, UseEcc, UseInc          bool
	Tolerance                       float64

	initSMA, initEcc, initInc float64
	initialized               bool
}

// NewQLaw returns a QLaw with no element enabled; callers set the
// Target{SMA,Ecc,Inc} fields and enable them through Use{SMA,Ecc,Inc}, whose
// zero value disables that element's contribution.
func NewQLaw(mu float64, tol float64) *QLaw {
	return &QLaw{Mu: mu, Tolerance: tol}
}

// Name implements Law.
func (q *QLaw) Name() string { return "q-law" }

// Direction implements Law. Converged returns throttle 0 once every enabled
// element is within tolerance of its target.
func (q *QLaw) Direction(t float64, s state.State) ([]float64, float64, error) {
	r, err := s.Extract(coords.CartesianPosition())
	if err != nil {
		return nil, 0, err
	}
	v, err := s.Extract(coords.CartesianVelocity())
	if err != nil {
		return nil, 0, err
	}
	el := elementsFromRV(r, v, q.Mu)
	if !q.initialized {
		q.initSMA, q.initEcc, q.initInc = el.sma, el.ecc, el.inc
		q.initialized = true
	}

	thrust := []float64{0, 0, 0}
	active := false

	if q.UseSMA {
		if f := rugierroFactor(el.sma, q.initSMA, q.TargetSMA, q.Tolerance); f != 0 {
			active = true
			dir := optimalSMADirection(el)
			accumulate(thrust, dir, f)
		}
	}
	if q.UseEcc {
		if f := rugierroFactor(el.ecc, q.initEcc, q.TargetEcc, q.Tolerance); f != 0 {
			active = true
			dir := optimalEccDirection(el)
			accumulate(thrust, dir, f)
		}
	}
	if q.UseInc {
		if f := rugierroFactor(el.inc, q.initInc, q.TargetInc, q.Tolerance); f != 0 {
			active = true
			dir := optimalIncDirection(el)
			accumulate(thrust, dir, f)
		}
	}
	if !active {
		return []float64{0, 0, 0}, 0, nil
	}
	qsw := lof.QSW(r, v)
	return unitVec(qsw.Unrotate(thrust)), 1, nil
}

// rugierroFactor implements the Ruggiero weighting factor: zero once
// converged, signed proportionally to remaining distance otherwise.
func rugierroFactor(oscul, init, target, tol float64) float64 {
	if math.Abs(oscul-target) < tol {
		return 0
	}
	if math.Abs(init-target) < tol {
		init += tol
	}
	return (target - oscul) / math.Abs(target-init)
}

func accumulate(thrust, dir []float64, factor float64) {
	for i := range thrust {
		thrust[i] += factor * dir[i]
	}
}

type coe struct {
	sma, ecc, inc, raan, aop, nu float64
}

// elementsFromRV computes the classical orbital elements from a Cartesian
// state, following Vallado's RV2COE algorithm (ported from smd/orbit.go's
// Orbit.Elements, stripped of its hash-caching and singularity epsilons
// since QLaw only needs instantaneous values).
func elementsFromRV(r, v []float64, mu float64) coe {
	h := cross3(r, v)
	n := cross3([]float64{0, 0, 1}, h)
	rNorm := norm3(r)
	vNorm := norm3(v)
	xi := (vNorm*vNorm)/2 - mu/rNorm
	sma := -mu / (2 * xi)
	eVec := make([]float64, 3)
	rv := dot3(r, v)
	for i := 0; i < 3; i++ {
		eVec[i] = ((vNorm*vNorm-mu/rNorm)*r[i] - rv*v[i]) / mu
	}
	ecc := norm3(eVec)
	inc := math.Acos(clamp(h[2]/norm3(h), -1, 1))
	nNorm := norm3(n)
	var raan, aop float64
	if nNorm > 1e-12 {
		raan = math.Acos(clamp(n[0]/nNorm, -1, 1))
		if n[1] < 0 {
			raan = 2*math.Pi - raan
		}
	}
	if nNorm > 1e-12 && ecc > 1e-12 {
		aop = math.Acos(clamp(dot3(n, eVec)/(nNorm*ecc), -1, 1))
		if eVec[2] < 0 {
			aop = 2*math.Pi - aop
		}
	}
	var nu float64
	if ecc > 1e-12 {
		nu = math.Acos(clamp(dot3(eVec, r)/(ecc*rNorm), -1, 1))
		if rv < 0 {
			nu = 2*math.Pi - nu
		}
	}
	return coe{sma: sma, ecc: ecc, inc: inc, raan: raan, aop: aop, nu: nu}
}

// optimalSMADirection returns the thrust direction (radial/along-track/normal
// QSW-frame components) that
// most efficiently raises semi-major axis, per Ruggiero et al.'s optimal
// in-plane thrust formula.
func optimalSMADirection(el coe) []float64 {
	sinNu, cosNu := math.Sincos(el.nu)
	alpha := math.Atan2(el.ecc*sinNu, 1+el.ecc*cosNu)
	return unitFromAngles(alpha, 0)
}

// optimalEccDirection returns the optimal in-plane thrust direction for
// eccentricity control.
func optimalEccDirection(el coe) []float64 {
	sinNu, cosNu := math.Sincos(el.nu)
	cosE := (el.ecc + cosNu) / (1 + el.ecc*cosNu)
	alpha := math.Atan2(sinNu, cosNu+cosE)
	return unitFromAngles(alpha, 0)
}

// optimalIncDirection returns the optimal out-of-plane thrust direction for
// inclination control.
func optimalIncDirection(el coe) []float64 {
	sign := 1.0
	if math.Cos(el.aop+el.nu) < 0 {
		sign = -1.0
	}
	return unitFromAngles(0, sign*math.Pi/2)
}

func unitFromAngles(alpha, beta float64) []float64 {
	sinA, cosA := math.Sincos(alpha)
	sinB, cosB := math.Sincos(beta)
	return []float64{sinA * cosB, cosA * cosB, sinB}
}

func cross3(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot3(a, b []float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func norm3(v []float64) float64 { return math.Sqrt(dot3(v, v)) }

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func unitVec(v []float64) []float64 {
	n := norm3(v)
	if n == 0 {
		return v
	}
	return []float64{v[0] / n, v[1] / n, v[2] / n}
}
