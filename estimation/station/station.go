// Package station models ground-station range/range-rate measurements,
// ported from smd/station.go's Station/Measurement pair, converted from
// smd's km/km-s convention to SI (meters, seconds) and from its
// hardcoded ECI/ECEF Earth-only transform to the frame package's general
// Frame interface.
package station

import (
	"math"
	"math/rand"
	"time"

	"github.com/gonum/matrix/mat64"
	"github.com/gonum/stat/distmv"

	"github.com/sabiduria-space/astrocore/frame"
)

// Station is a ground station fixed in a body-fixed rotating frame,
// observing range and range-rate with Gaussian noise.
type Station struct {
	Name             string
	Position         []float64 // body-fixed frame, meters
	LatitudeRad      float64
	LongitudeRad     float64
	ElevationMaskRad float64
	BodyFixedFrame   frame.Frame
	rangeNoise       *distmv.Normal
	rangeRateNoise   *distmv.Normal
}

// New returns a Station at the given geodetic latitude/longitude (radians)
// and altitude (meters) above a spherical body of the given radius,
// rotating in bf, with 1-sigma range/range-rate noise (meters,
// meters/second). A zero sigma makes that observable noise-free.
func New(name string, bf frame.Frame, bodyRadius, altitude, latitudeRad, longitudeRad, elevationMaskRad, sigmaRange, sigmaRangeRate float64) (Station, error) {
	r := bodyRadius + altitude
	position := []float64{
		r * math.Cos(latitudeRad) * math.Cos(longitudeRad),
		r * math.Cos(latitudeRad) * math.Sin(longitudeRad),
		r * math.Sin(latitudeRad),
	}
	seed := rand.New(rand.NewSource(1))
	var rangeNoise, rangeRateNoise *distmv.Normal
	var ok bool
	if sigmaRange != 0 {
		rangeNoise, ok = distmv.NewNormal([]float64{0}, mat64.NewSymDense(1, []float64{sigmaRange * sigmaRange}), seed)
		if !ok {
			return Station{}, errNoiseConstruction
		}
	}
	if sigmaRangeRate != 0 {
		rangeRateNoise, ok = distmv.NewNormal([]float64{0}, mat64.NewSymDense(1, []float64{sigmaRangeRate * sigmaRangeRate}), seed)
		if !ok {
			return Station{}, errNoiseConstruction
		}
	}
	return Station{
		Name:             name,
		Position:         position,
		LatitudeRad:      latitudeRad,
		LongitudeRad:     longitudeRad,
		ElevationMaskRad: elevationMaskRad,
		BodyFixedFrame:   bf,
		rangeNoise:       rangeNoise,
		rangeRateNoise:   rangeRateNoise,
	}, nil
}

type errConstruction string

func (e errConstruction) Error() string { return string(e) }

var errNoiseConstruction = errConstruction("station: invalid noise covariance")

// Measurement is a single range/range-rate observation.
type Measurement struct {
	Visible       bool
	Range         float64
	RangeRate     float64
	TrueRange     float64
	TrueRangeRate float64
	Instant       time.Time
}

// Observe computes the true (noise-free) and noisy range/range-rate of a
// spacecraft given its position/velocity (r, v) in fromFrame, per
// smd/station.go's PerformMeasurement (there hardcoded to ECI->ECEF via
// ECI2ECEF/ECEF2ECI; here driven by the station's own BodyFixedFrame).
func (s Station) Observe(instant time.Time, fromFrame frame.Frame, r, v []float64) (Measurement, error) {
	xf, err := fromFrame.TransformTo(s.BodyFixedFrame, instant)
	if err != nil {
		return Measurement{}, err
	}
	rBF := frame.MxV33(xf.Rotation, r)
	for i := range rBF {
		rBF[i] += xf.Translation[i]
	}
	omegaCrossR := cross(xf.AngularVelocity, r)
	vCombined := make([]float64, 3)
	for i := range vCombined {
		vCombined[i] = v[i] + omegaCrossR[i]
	}
	vBF := frame.MxV33(xf.Rotation, vCombined)

	rho := make([]float64, 3)
	for i := 0; i < 3; i++ {
		rho[i] = rBF[i] - s.Position[i]
	}
	rangeM := norm(rho)
	rangeRate := dot(rho, vBF) / rangeM
	elevation := math.Asin(dot(unit(rho), unit(s.Position)))
	visible := elevation >= s.ElevationMaskRad
	noisyRange, noisyRangeRate := rangeM, rangeRate
	if s.rangeNoise != nil {
		noisyRange += s.rangeNoise.Rand(nil)[0]
	}
	if s.rangeRateNoise != nil {
		noisyRangeRate += s.rangeRateNoise.Rand(nil)[0]
	}
	return Measurement{
		Visible:       visible,
		Range:         noisyRange,
		RangeRate:     noisyRangeRate,
		TrueRange:     rangeM,
		TrueRangeRate: rangeRate,
		Instant:       instant,
	}, nil
}

func cross(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot(a, b []float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func norm(v []float64) float64   { return math.Sqrt(dot(v, v)) }
func unit(v []float64) []float64 {
	n := norm(v)
	if n == 0 {
		return []float64{0, 0, 0}
	}
	return []float64{v[0] / n, v[1] / n, v[2] / n}
}
