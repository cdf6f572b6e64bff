package tools

import (
	"testing"

	"github.com/gonum/floats"

	"github.com/sabiduria-space/astrocore/celestial"
)

// valladoEarth is Earth's GM in km^3/s^2, the unit Vallado's worked Lambert
// example (4th edition, page 497) uses; celestial.Earth itself is in SI
// (meters), so a dedicated km-scale body keeps this test's reference values
// unconverted rather than forcing a unit translation through the fixture.
var valladoEarth = celestial.TwoBody{BodyName: "Earth (km)", Mu: 398600.4418}

func TestSolveShortAndAutoAgree(t *testing.T) {
	// From Vallado 4th edition, page 497
	ri := []float64{15945.34, 0, 0}
	rf := []float64{12214.83899, 10249.46731, 0}
	viExp := []float64{2.058913, 2.915965, 0}
	vfExp := []float64{-3.451565, 0.910315, 0}
	for _, direction := range []Direction{AutoDirection, ShortWay} {
		sol, err := Solve(ri, rf, 76.0*60, direction, valladoEarth)
		if err != nil {
			t.Fatalf("err %s", err)
		}
		if !vectorsApprox(sol.DepartureVelocity, viExp, 1e-6) {
			t.Fatalf("[direction=%v] incorrect departure velocity, got %v", direction, sol.DepartureVelocity)
		}
		if !vectorsApprox(sol.ArrivalVelocity, vfExp, 1e-6) {
			t.Fatalf("[direction=%v] incorrect arrival velocity, got %v", direction, sol.ArrivalVelocity)
		}
	}
}

func TestSolveLongWay(t *testing.T) {
	ri := []float64{15945.34, 0, 0}
	rf := []float64{12214.83899, 10249.46731, 0}
	viExp := []float64{-3.811158, -2.003854, 0}
	vfExp := []float64{4.207569, 0.914724, 0}

	sol, err := Solve(ri, rf, 76.0*60, LongWay, valladoEarth)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if !vectorsApprox(sol.DepartureVelocity, viExp, 1e-6) {
		t.Fatalf("incorrect departure velocity, got %v", sol.DepartureVelocity)
	}
	if !vectorsApprox(sol.ArrivalVelocity, vfExp, 1e-6) {
		t.Fatalf("incorrect arrival velocity, got %v", sol.ArrivalVelocity)
	}
}

func TestSolveRejectsNonThreeDimensionalVectors(t *testing.T) {
	rf := []float64{12214.83899, 10249.46731, 0}
	if _, err := Solve([]float64{15945.34, 0}, rf, 76.0*60, AutoDirection, valladoEarth); err == nil {
		t.Fatal("expected an error for a 2-dimensional initial position")
	}
	if _, err := Solve([]float64{15945.34, 0}, []float64{12214.83899, 10249.46731}, 76.0*60, AutoDirection, valladoEarth); err == nil {
		t.Fatal("expected an error when both vectors are 2-dimensional")
	}
}

func vectorsApprox(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !floats.EqualWithinAbs(a[i], b[i], tol) {
			return false
		}
	}
	return true
}
