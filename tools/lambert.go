// Package tools implements mission-design utilities that sit above the
// dynamics/propagator core. Currently a Lambert boundary-value solver,
// sizing the impulsive departure/arrival velocities for a transfer between
// two position vectors flown in a given time of flight. Grounded on
// smd/tools.go's universal-variable Lambert solver, rewritten around a
// Direction enum instead of a signed dm float and float64 position/velocity
// vectors instead of exposing mat64.Vector to callers, so cmd/lambert
// doesn't need its own gonum/matrix import.
package tools

import (
	"math"

	"github.com/gonum/matrix/mat64"

	"github.com/sabiduria-space/astrocore/celestial"
	"github.com/sabiduria-space/astrocore/errkind"
)

// Direction selects which way around the transfer orbit a Solve should
// take when it is not already implied by the swept angle.
type Direction int

const (
	// AutoDirection takes the short way when the swept true anomaly is
	// less than pi, the long way otherwise.
	AutoDirection Direction = iota
	// ShortWay forces prograde motion regardless of the swept angle.
	ShortWay
	// LongWay forces retrograde motion regardless of the swept angle.
	LongWay
)

// TransferSolution is one Lambert solve: the velocity a spacecraft must
// depart with, and the velocity it arrives with, to travel from the
// initial to the final position in the given time of flight.
type TransferSolution struct {
	DepartureVelocity []float64
	ArrivalVelocity   []float64
	// UniversalAnomalySquared is psi, the universal-variable square of the
	// eccentric-anomaly difference, as reported for inspection. Solve takes
	// no seed for it: every call starts its bisection at zero.
	UniversalAnomalySquared float64
}

const (
	convergenceTol = 1e-6
	angleTol       = (5e-5 / 180) * math.Pi
	maxIterations  = 1000
)

// Solve solves Lambert's problem between initialPosition and
// finalPosition (meters, in a frame centered on body) for the given time
// of flight (seconds), using the universal-variable bisection method.
// Multi-revolution transfers are not supported.
func Solve(initialPosition, finalPosition []float64, timeOfFlight float64, direction Direction, body celestial.Body) (TransferSolution, error) {
	if len(initialPosition) != 3 || len(finalPosition) != 3 {
		return TransferSolution{}, errkind.New(errkind.OutOfRange, "lambert: position vectors must be 3-dimensional")
	}
	ri := mat64.NewVector(3, append([]float64{}, initialPosition...))
	rf := mat64.NewVector(3, append([]float64{}, finalPosition...))
	rNormI := vectorNorm(ri)
	rNormF := vectorNorm(rf)
	cosDeltaNu := mat64.Dot(ri, rf) / (rNormI * rNormF)

	nuI := math.Atan2(ri.At(1, 0), ri.At(0, 0))
	nuF := math.Atan2(rf.At(1, 0), rf.At(0, 0))
	dm := directionMultiplier(direction, nuF-nuI)

	a := dm * math.Sqrt(rNormI*rNormF*(1+cosDeltaNu))
	if math.Abs(nuF-nuI) < angleTol && math.Abs(a) < convergenceTol {
		return TransferSolution{}, errkind.New(errkind.InvalidConfiguration, "lambert: swept angle and A both vanish, transfer is degenerate")
	}

	psi := 0.0
	psiUp := 4 * math.Pi * math.Pi
	psiLow := -4 * math.Pi
	c2, c3 := 0.5, 1.0/6.0
	var dt, y float64
	for iter := 0; math.Abs(dt-timeOfFlight) > convergenceTol; iter++ {
		if iter > maxIterations {
			return TransferSolution{}, errkind.New(errkind.NonConvergent, "lambert: bisection did not converge")
		}
		y = rNormI + rNormF + a*(psi*c3-1)/math.Sqrt(c2)
		if a > 0 && y < 0 {
			return TransferSolution{}, errkind.New(errkind.NonConvergent, "lambert: y went negative, transfer is infeasible for this bracket")
		}
		chi := math.Sqrt(y / c2)
		dt = (math.Pow(chi, 3)*c3 + a*math.Sqrt(y)) / math.Sqrt(body.GravitationalParameter())
		if dt < timeOfFlight {
			psiLow = psi
		} else {
			psiUp = psi
		}
		psi = (psiUp + psiLow) / 2
		c2, c3 = stumpff(psi)
	}

	f := 1 - y/rNormI
	gDot := 1 - y/rNormF
	g := a * math.Sqrt(y/body.GravitationalParameter())

	vi := mat64.NewVector(3, nil)
	vi.AddScaledVec(rf, -f, ri)
	vi.ScaleVec(1/g, vi)

	rf2 := mat64.NewVector(3, nil)
	rf2.ScaleVec(gDot, rf)
	vf := mat64.NewVector(3, nil)
	vf.AddScaledVec(rf2, -1, ri)
	vf.ScaleVec(1/g, vf)

	return TransferSolution{
		DepartureVelocity:       []float64{vi.At(0, 0), vi.At(1, 0), vi.At(2, 0)},
		ArrivalVelocity:         []float64{vf.At(0, 0), vf.At(1, 0), vf.At(2, 0)},
		UniversalAnomalySquared: psi,
	}, nil
}

func directionMultiplier(direction Direction, sweptAngle float64) float64 {
	switch direction {
	case ShortWay:
		return 1
	case LongWay:
		return -1
	default:
		if sweptAngle < math.Pi {
			return 1
		}
		return -1
	}
}

// stumpff returns the c2/c3 universal-variable functions at psi, switching
// between the elliptical (trig), hyperbolic (hyperbolic-trig) and
// near-parabolic (series limit) branches.
func stumpff(psi float64) (c2, c3 float64) {
	switch {
	case psi > convergenceTol:
		s := math.Sqrt(psi)
		sinS, cosS := math.Sincos(s)
		return (1 - cosS) / psi, (s - sinS) / math.Pow(s, 3)
	case psi < -convergenceTol:
		s := math.Sqrt(-psi)
		return (1 - math.Cosh(s)) / psi, (math.Sinh(s) - s) / math.Pow(s, 3)
	default:
		return 0.5, 1.0 / 6.0
	}
}

func vectorNorm(v *mat64.Vector) float64 { return math.Sqrt(mat64.Dot(v, v)) }
