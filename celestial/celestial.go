// Package celestial defines the celestial-body collaborator consumed by the
// dynamics layer (gravity, drag). Ephemerides and gravity-field evaluation
// are explicitly out of the core's scope; this package only
// ships the interface plus light concrete implementations adequate for
// testing and simple missions, ported from smd/celestial.go's CelestialObject.
package celestial

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/julian"
	"github.com/soniakeys/meeus/planetposition"

	"github.com/sabiduria-space/astrocore/frame"
)

// Body is the celestial-body collaborator interface.
type Body interface {
	Name() string
	// Position returns this body's position, in meters, in some ambient
	// inertial frame at the given instant (e.g. heliocentric for planets).
	Position(instant time.Time) ([]float64, error)
	// GravitationalField returns the gravitational acceleration, in m/s^2,
	// at position r (meters, body-centered) and instant t.
	GravitationalField(r []float64, t time.Time) ([]float64, error)
	// AtmosphericDensity returns the atmospheric density, in kg/m^3, at
	// position r (meters, body-centered) and instant t.
	AtmosphericDensity(r []float64, t time.Time) (float64, error)
	GravitationalParameter() float64 // μ, m^3/s^2
	EquatorialRadius() float64       // meters
	Flattening() float64
}

// TwoBody is a point-mass (plus optional J2/J3) celestial body with a
// fixed exponential atmosphere and no ephemeris: its Position is always the
// origin of whatever frame it anchors. Ported from smd.CelestialObject's μ/Radius/J2/J3 fields
// and the Cartesian-frame branch of smd/perturbations.go's Perturb.
type TwoBody struct {
	BodyName string
	Mu       float64 // m^3/s^2
	Radius   float64 // meters
	J2, J3   float64
}

// Name implements Body.
func (b TwoBody) Name() string { return b.BodyName }

// Position implements Body: a TwoBody is always the frame origin.
func (b TwoBody) Position(time.Time) ([]float64, error) {
	return []float64{0, 0, 0}, nil
}

// GravitationalField implements Body, including J2/J3 zonal harmonics when set.
func (b TwoBody) GravitationalField(r []float64, t time.Time) ([]float64, error) {
	x, y, z := r[0], r[1], r[2]
	r2 := x*x + y*y + z*z
	rn := math.Sqrt(r2)
	if rn == 0 {
		return nil, errZeroRadius
	}
	r3 := rn * r2
	a := make([]float64, 3)
	k := -b.Mu / r3
	a[0], a[1], a[2] = k*x, k*y, k*z
	if b.J2 != 0 {
		z2 := z * z
		fact := -1.5 * b.Mu * b.J2 * b.Radius * b.Radius / (r2 * r2 * rn)
		a[0] += fact * x * (1 - 5*z2/r2)
		a[1] += fact * y * (1 - 5*z2/r2)
		a[2] += fact * z * (3 - 5*z2/r2)
	}
	if b.J3 != 0 {
		z2 := z * z
		fact := -2.5 * b.Mu * b.J3 * b.Radius * b.Radius * b.Radius / (r2 * r2 * r3)
		a[0] += fact * x * (3*z - 7*z*z2/r2)
		a[1] += fact * y * (3*z - 7*z*z2/r2)
		a[2] += fact * (6*z2 - 7*z2*z2/r2 - 0.6*r2)
	}
	return a, nil
}

// AtmosphericDensity implements Body as an exponential atmosphere model
// with a fixed base-density/scale-height pair (a rough LEO fit for Earth),
// used for every TwoBody regardless of which body it is.
func (b TwoBody) AtmosphericDensity(r []float64, t time.Time) (float64, error) {
	alt := math.Sqrt(r[0]*r[0]+r[1]*r[1]+r[2]*r[2]) - b.Radius
	const rho0 = 3.614e-13 // kg/m^3 at 700 km reference altitude
	const h0 = 700000.0
	const scaleHeight = 88667.0
	return rho0 * math.Exp(-(alt-h0)/scaleHeight), nil
}

// GravitationalParameter implements Body.
func (b TwoBody) GravitationalParameter() float64 { return b.Mu }

// EquatorialRadius implements Body.
func (b TwoBody) EquatorialRadius() float64 { return b.Radius }

// Flattening implements Body. TwoBody treats its primary as a sphere.
func (b TwoBody) Flattening() float64 { return 0 }

var errZeroRadius = &zeroRadiusErr{}

type zeroRadiusErr struct{}

func (e *zeroRadiusErr) Error() string { return "celestial: position vector is zero" }

// Built-in reference bodies, values ported from smd/celestial.go (converted
// from km to meters, since astrocore's core works in SI throughout).
var (
	Earth = TwoBody{BodyName: "Earth", Mu: 3.98600433e14, Radius: 6378136.3, J2: 1082.6269e-6, J3: -2.5324e-6}
	Mars  = TwoBody{BodyName: "Mars", Mu: 4.28283100e13, Radius: 3396190.0, J2: 1964e-6, J3: 36e-6}
	Sun   = TwoBody{BodyName: "Sun", Mu: 1.32712440017987e20, Radius: 695700000.0}
)

// Ephemeris is a meeus-backed heliocentric ephemeris for the major planets,
// ported from smd.CelestialObject.HelioOrbit's VSOP87 branch. It implements
// Position (heliocentric, meters) by deferring to gravitational/atmospheric
// queries of an embedded TwoBody, so it can stand in wherever a Body with a
// moving Position is needed (third-body perturbation sources).
type Ephemeris struct {
	TwoBody
	vsopIndex int // 1-based VSOP87 planet slot, per planetposition.LoadPlanetPath
	planet    *planetposition.V87Planet
}

// NewEphemeris returns an Ephemeris for one of Venus/Earth/Mars/Jupiter,
// loading its VSOP87 series on first Position call via
// planetposition.LoadPlanetPath with an empty directory path; no directory
// can be supplied.
func NewEphemeris(body TwoBody, vsopIndex int) *Ephemeris {
	return &Ephemeris{TwoBody: body, vsopIndex: vsopIndex}
}

// AU is one astronomical unit, in meters.
const AU = 1.49597870700e11

// Position implements Body: heliocentric position via VSOP87.
func (e *Ephemeris) Position(instant time.Time) ([]float64, error) {
	if e.planet == nil {
		planet, err := planetposition.LoadPlanetPath(e.vsopIndex-1, "")
		if err != nil {
			return nil, err
		}
		e.planet = planet
	}
	l, lat, r := e.planet.Position2000(julian.TimeToJD(instant))
	r *= AU
	sB, cB := math.Sincos(lat.Rad())
	sL, cL := math.Sincos(l.Rad())
	return []float64{r * cB * cL, r * cB * sL, r * sB}, nil
}

// AsFrame exposes an Ephemeris body's rotation as an inertial frame handle,
// for callers building a frame.Frame graph anchored on it.
func (e *Ephemeris) AsFrame() frame.Frame {
	return frame.Inertial{FrameName: e.BodyName}
}
