package dynamics

import (
	"math"
	"testing"
	"time"

	"github.com/gonum/floats"

	"github.com/sabiduria-space/astrocore/state"
)

func vectorsEqual(a, b []float64, tol float64) bool {
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

func TestPositionDerivative(t *testing.T) {
	d := NewPositionDerivative()
	v := []float64{1, 2, 3}
	out, err := d.Compute(0, v, nil)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if !vectorsEqual(out, v, 1e-12) {
		t.Fatalf("position derivative should equal velocity, got %v", out)
	}
}

func TestCentralBodyGravityPointsInward(t *testing.T) {
	body := mockBody{mu: 3.986e14}
	d := NewCentralBodyGravity(body, time.Now())
	r := []float64{7000e3, 0, 0}
	out, err := d.Compute(0, r, nil)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if out[0] >= 0 {
		t.Fatalf("gravity should pull toward the origin, got %v", out)
	}
	expected := -body.mu / (r[0] * r[0])
	if !floats.EqualWithinRel(out[0], expected, 1e-9) {
		t.Fatalf("expected %f got %f", expected, out[0])
	}
}

func TestThirdBodyGravityRegularizedAtOrigin(t *testing.T) {
	body := mockBody{mu: 1}
	d := NewThirdBodyGravity(body, time.Now(), func(float64) ([]float64, error) { return []float64{1, 0, 0}, nil })
	out, err := d.Compute(0, []float64{1, 0, 0}, nil)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if !vectorsEqual(out, []float64{0, 0, 0}, 1e-12) {
		t.Fatalf("coincident spacecraft/body position should regularize to zero, got %v", out)
	}
}

func TestAtmosphericDragOpposesVelocity(t *testing.T) {
	body := mockBody{mu: 3.986e14, rho: 1e-12}
	d := NewAtmosphericDrag(body, time.Now())
	reads := []float64{7000e3, 0, 0, 0, 7500, 0, 100, 1, 2.2}
	out, err := d.Compute(0, reads, nil)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if out[1] >= 0 {
		t.Fatalf("drag should decelerate along -velocity, got %v", out)
	}
}

func TestThrusterStopsOutOfPropellant(t *testing.T) {
	engine := NewGenericEngine(1e-3, 1500)
	law := fixedLaw{dir: []float64{1, 0, 0}, throttle: 1}
	d := NewThruster(engine, law, 50, time.Now())
	_, err := d.Compute(0, []float64{7000e3, 0, 0, 0, 7500, 0, 50}, nil)
	if err == nil {
		t.Fatal("expected out-of-propellant error at mass == dry mass")
	}
}

type fixedLaw struct {
	dir      []float64
	throttle float64
}

func (l fixedLaw) Name() string { return "fixed" }
func (l fixedLaw) Direction(t float64, s state.State) ([]float64, float64, error) {
	return l.dir, l.throttle, nil
}

type mockBody struct {
	mu, radius, rho float64
}

func (b mockBody) Name() string { return "mock" }
func (b mockBody) Position(t time.Time) ([]float64, error) { return []float64{0, 0, 0}, nil }
func (b mockBody) GravitationalField(r []float64, t time.Time) ([]float64, error) {
	r2 := r[0]*r[0] + r[1]*r[1] + r[2]*r[2]
	rn := math.Sqrt(r2)
	k := -b.mu / (rn * r2)
	return []float64{k * r[0], k * r[1], k * r[2]}, nil
}
func (b mockBody) AtmosphericDensity(r []float64, t time.Time) (float64, error) { return b.rho, nil }
func (b mockBody) GravitationalParameter() float64                             { return b.mu }
func (b mockBody) EquatorialRadius() float64                                   { return b.radius }
func (b mockBody) Flattening() float64                                         { return 0 }
