package trajectory

import (
	"math"
	"time"

	"github.com/sabiduria-space/astrocore/errkind"
	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/state"
	"github.com/sabiduria-space/astrocore/state/coords"
)

// COE is a classical-orbital-element tuple, angles in radians.
// Grounded on smd.Orbit's a/e/i/Ω/ω/ν fields (orbit.go), generalized into a
// standalone value usable independent of smd.Orbit's cached Cartesian pair.
type COE struct {
	SMA, Ecc, Inc, RAAN, AOP, TrueAnomaly float64
}

// Kepler is an analytic two-body Model: StateAt propagates the mean anomaly
// linearly from Epoch and converts back to Cartesian position/velocity.
// Ported from smd.NewOrbitFromOE/Orbit.Elements (orbit.go)'s RV<->COE pair,
// generalized from an eagerly-cached Orbit into an on-demand Model.
type Kepler struct {
	Epoch   time.Time
	Mu      float64 // m^3/s^2
	Initial COE
	Frame   frame.Frame
	Broker  *coords.Broker
}

// NewKepler returns a Kepler model seeded at the given epoch/elements. The
// broker must register at least CartesianPosition and CartesianVelocity;
// any other subset present is filled with zeros.
func NewKepler(epoch time.Time, mu float64, elements COE, fr frame.Frame, broker *coords.Broker) (*Kepler, error) {
	if mu <= 0 {
		return nil, errkind.New(errkind.InvalidConfiguration, "kepler: mu must be positive")
	}
	if elements.Ecc < 0 || elements.Ecc >= 1 {
		return nil, errkind.New(errkind.InvalidConfiguration, "kepler: only elliptical orbits (0 <= e < 1) are supported")
	}
	return &Kepler{Epoch: epoch, Mu: mu, Initial: elements, Frame: fr, Broker: broker}, nil
}

// StateAt implements Model: propagates Kepler's equation from Epoch to
// instant by mean-motion and converts the resulting elements to Cartesian.
func (k *Kepler) StateAt(instant time.Time) (state.State, error) {
	dt := instant.Sub(k.Epoch).Seconds()
	n := math.Sqrt(k.Mu / (k.Initial.SMA * k.Initial.SMA * k.Initial.SMA))
	e0 := eccentricAnomalyFromTrue(k.Initial.TrueAnomaly, k.Initial.Ecc)
	m0 := e0 - k.Initial.Ecc*math.Sin(e0)
	m := m0 + n*dt
	ecc, err := solveKepler(m, k.Initial.Ecc)
	if err != nil {
		return state.State{}, err
	}
	nu := trueAnomalyFromEccentric(ecc, k.Initial.Ecc)
	elements := k.Initial
	elements.TrueAnomaly = nu
	r, v := coe2rv(elements, k.Mu)

	out := make([]float64, k.Broker.Size())
	for _, subset := range k.Broker.Subsets() {
		offset, size, ierr := k.Broker.Index(subset)
		if ierr != nil {
			return state.State{}, ierr
		}
		switch subset.Name() {
		case "CARTESIAN_POSITION":
			copy(out[offset:offset+size], r)
		case "CARTESIAN_VELOCITY":
			copy(out[offset:offset+size], v)
		}
	}
	return state.New(instant, out, k.Frame, k.Broker)
}

// Elements returns the instantaneous classical orbital elements at instant.
func (k *Kepler) Elements(instant time.Time) (COE, error) {
	s, err := k.StateAt(instant)
	if err != nil {
		return COE{}, err
	}
	r, err := s.Extract(coords.CartesianPosition())
	if err != nil {
		return COE{}, err
	}
	v, err := s.Extract(coords.CartesianVelocity())
	if err != nil {
		return COE{}, err
	}
	return rv2coe(r, v, k.Mu), nil
}

// solveKepler solves Kepler's equation M = E - e*sin(E) for E by
// Newton-Raphson, seeded at M (or at pi when e > 0.8), per the standard
// Vallado iteration.
func solveKepler(m, ecc float64) (float64, error) {
	m = math.Mod(m, 2*math.Pi)
	if m < 0 {
		m += 2 * math.Pi
	}
	e := m
	if ecc > 0.8 {
		e = math.Pi
	}
	for i := 0; i < 50; i++ {
		f := e - ecc*math.Sin(e) - m
		fp := 1 - ecc*math.Cos(e)
		de := f / fp
		e -= de
		if math.Abs(de) < 1e-12 {
			return e, nil
		}
	}
	return 0, errkind.New(errkind.NonConvergent, "kepler: Kepler's equation did not converge")
}

func eccentricAnomalyFromTrue(nu, ecc float64) float64 {
	return 2 * math.Atan2(math.Sqrt(1-ecc)*math.Sin(nu/2), math.Sqrt(1+ecc)*math.Cos(nu/2))
}

func trueAnomalyFromEccentric(e, ecc float64) float64 {
	nu := 2 * math.Atan2(math.Sqrt(1+ecc)*math.Sin(e/2), math.Sqrt(1-ecc)*math.Cos(e/2))
	if nu < 0 {
		nu += 2 * math.Pi
	}
	return nu
}

// coe2rv converts classical orbital elements to Cartesian position/velocity
// in the perifocal-then-rotated frame, the standard Vallado COE2RV
// algorithm (same construction smd.NewOrbitFromOE uses in orbit.go).
func coe2rv(c COE, mu float64) (r, v []float64) {
	p := c.SMA * (1 - c.Ecc*c.Ecc)
	cosNu, sinNu := math.Cos(c.TrueAnomaly), math.Sin(c.TrueAnomaly)
	rNorm := p / (1 + c.Ecc*cosNu)
	rPF := []float64{rNorm * cosNu, rNorm * sinNu, 0}
	h := math.Sqrt(mu * p)
	vPF := []float64{-mu / h * sinNu, mu / h * (c.Ecc + cosNu), 0}

	cO, sO := math.Cos(c.RAAN), math.Sin(c.RAAN)
	ci, si := math.Cos(c.Inc), math.Sin(c.Inc)
	cw, sw := math.Cos(c.AOP), math.Sin(c.AOP)

	// Perifocal-to-inertial rotation matrix (3-1-3 Euler sequence), row-major.
	r11 := cO*cw - sO*sw*ci
	r12 := -cO*sw - sO*cw*ci
	r21 := sO*cw + cO*sw*ci
	r22 := -sO*sw + cO*cw*ci
	r31 := sw * si
	r32 := cw * si

	r = []float64{
		r11*rPF[0] + r12*rPF[1],
		r21*rPF[0] + r22*rPF[1],
		r31*rPF[0] + r32*rPF[1],
	}
	v = []float64{
		r11*vPF[0] + r12*vPF[1],
		r21*vPF[0] + r22*vPF[1],
		r31*vPF[0] + r32*vPF[1],
	}
	return r, v
}

// rv2coe converts Cartesian position/velocity to classical orbital
// elements, the standard Vallado RV2COE algorithm. Grounded on
// smd.Orbit.Elements (orbit.go); duplicated locally the same way
// event.NewCOECondition duplicates it, rather than importing either
// sibling package, since trajectory must not pull in event or guidance.
func rv2coe(r, v []float64, mu float64) COE {
	rNorm, vNorm := norm(r), norm(v)
	h := cross(r, v)
	hNorm := norm(h)
	n := cross([]float64{0, 0, 1}, h)
	nNorm := norm(n)
	rv := dotv(r, v)

	eVec := make([]float64, 3)
	for i := 0; i < 3; i++ {
		eVec[i] = ((vNorm*vNorm-mu/rNorm)*r[i] - rv*v[i]) / mu
	}
	ecc := norm(eVec)

	xi := (vNorm*vNorm)/2 - mu/rNorm
	var sma float64
	if math.Abs(1-ecc) > 1e-10 {
		sma = -mu / (2 * xi)
	} else {
		sma = hNorm * hNorm / mu
	}

	inc := math.Acos(clampUnit(h[2] / hNorm))

	var raan float64
	if nNorm > 1e-12 {
		raan = math.Acos(clampUnit(n[0] / nNorm))
		if n[1] < 0 {
			raan = 2*math.Pi - raan
		}
	}

	var aop float64
	if nNorm > 1e-12 && ecc > 1e-12 {
		aop = math.Acos(clampUnit(dotv(n, eVec) / (nNorm * ecc)))
		if eVec[2] < 0 {
			aop = 2*math.Pi - aop
		}
	}

	var nu float64
	if ecc > 1e-12 {
		nu = math.Acos(clampUnit(dotv(eVec, r) / (ecc * rNorm)))
		if rv < 0 {
			nu = 2*math.Pi - nu
		}
	} else {
		nu = math.Acos(clampUnit(dotv(n, r) / (nNorm * rNorm)))
		if r[2] < 0 {
			nu = 2*math.Pi - nu
		}
	}

	return COE{SMA: sma, Ecc: ecc, Inc: inc, RAAN: raan, AOP: aop, TrueAnomaly: nu}
}

func cross(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dotv(a, b []float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func norm(v []float64) float64 { return math.Sqrt(dotv(v, v)) }

func clampUnit(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}
