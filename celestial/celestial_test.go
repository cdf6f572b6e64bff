package celestial

import (
	"math"
	"testing"
	"time"
)

func TestTwoBodyGravitationalFieldPointsInward(t *testing.T) {
	r := []float64{7000e3, 0, 0}
	a, err := Earth.GravitationalField(r, time.Now())
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if a[0] >= 0 {
		t.Fatalf("expected inward acceleration, got %v", a)
	}
	expected := -Earth.Mu / (r[0] * r[0])
	if math.Abs((a[0]-expected)/expected) > 1e-2 {
		t.Fatalf("expected magnitude ~%f (J2-perturbed), got %f", expected, a[0])
	}
}

func TestTwoBodyGravitationalFieldRejectsZeroRadius(t *testing.T) {
	if _, err := Earth.GravitationalField([]float64{0, 0, 0}, time.Now()); err == nil {
		t.Fatal("expected error at zero radius")
	}
}

func TestTwoBodyAtmosphericDensityDecaysWithAltitude(t *testing.T) {
	low, err := Earth.AtmosphericDensity([]float64{Earth.Radius + 400e3, 0, 0}, time.Now())
	if err != nil {
		t.Fatalf("err %s", err)
	}
	high, err := Earth.AtmosphericDensity([]float64{Earth.Radius + 800e3, 0, 0}, time.Now())
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if high >= low {
		t.Fatalf("expected density to decay with altitude, got low=%g high=%g", low, high)
	}
}

func TestTwoBodyIsAlwaysAtItsOwnOrigin(t *testing.T) {
	r, err := Earth.Position(time.Now())
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if r[0] != 0 || r[1] != 0 || r[2] != 0 {
		t.Fatalf("expected TwoBody.Position to be the origin, got %v", r)
	}
}

func TestFlatteningZeroForTwoBody(t *testing.T) {
	if Earth.Flattening() != 0 {
		t.Fatal("expected TwoBody to model a sphere")
	}
}
