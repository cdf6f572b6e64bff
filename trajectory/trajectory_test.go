package trajectory

import (
	"math"
	"testing"
	"time"

	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/state"
	"github.com/sabiduria-space/astrocore/state/coords"
)

const earthMu = 3.986004418e14

func circularCOE() COE {
	return COE{SMA: 6878136.3, Ecc: 0, Inc: 0.9, RAAN: 0.1, AOP: 0, TrueAnomaly: 0}
}

func newBroker() *coords.Broker {
	b := coords.NewBroker()
	b.Add(coords.CartesianPosition())
	b.Add(coords.CartesianVelocity())
	return b
}

func TestKeplerConservesRadiusForCircularOrbit(t *testing.T) {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	eci := frame.Inertial{FrameName: "ECI"}
	k, err := NewKepler(epoch, earthMu, circularCOE(), eci, newBroker())
	if err != nil {
		t.Fatalf("NewKepler: %s", err)
	}
	s0, err := k.StateAt(epoch)
	if err != nil {
		t.Fatalf("StateAt(epoch): %s", err)
	}
	r0, _ := s0.Extract(coords.CartesianPosition())
	s1, err := k.StateAt(epoch.Add(37 * time.Minute))
	if err != nil {
		t.Fatalf("StateAt(+37m): %s", err)
	}
	r1, _ := s1.Extract(coords.CartesianPosition())
	if math.Abs(norm(r0)-norm(r1)) > 1 {
		t.Fatalf("circular orbit radius should be conserved, got %f vs %f", norm(r0), norm(r1))
	}
}

func TestKeplerElementsRoundTrip(t *testing.T) {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	eci := frame.Inertial{FrameName: "ECI"}
	initial := COE{SMA: 7200000, Ecc: 0.01, Inc: 0.9, RAAN: 0.3, AOP: 1.1, TrueAnomaly: 2.4}
	k, err := NewKepler(epoch, earthMu, initial, eci, newBroker())
	if err != nil {
		t.Fatalf("NewKepler: %s", err)
	}
	elements, err := k.Elements(epoch)
	if err != nil {
		t.Fatalf("Elements: %s", err)
	}
	if math.Abs(elements.SMA-initial.SMA) > 1e-3 {
		t.Fatalf("expected sma %f, got %f", initial.SMA, elements.SMA)
	}
	if math.Abs(elements.Ecc-initial.Ecc) > 1e-9 {
		t.Fatalf("expected ecc %f, got %f", initial.Ecc, elements.Ecc)
	}
}

func TestKeplerRejectsHyperbolicEccentricity(t *testing.T) {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	eci := frame.Inertial{FrameName: "ECI"}
	_, err := NewKepler(epoch, earthMu, COE{SMA: 7e6, Ecc: 1.2}, eci, newBroker())
	if err == nil {
		t.Fatal("expected error for eccentricity >= 1")
	}
}

func TestStaticReturnsFixedCoordinatesRetimestamped(t *testing.T) {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	eci := frame.Inertial{FrameName: "ECI"}
	broker := coords.NewBroker()
	broker.Add(coords.CartesianPosition())
	s, err := state.New(epoch, []float64{1, 2, 3}, eci, broker)
	if err != nil {
		t.Fatalf("state.New: %s", err)
	}
	m := NewStatic(s)
	later := epoch.Add(time.Hour)
	out, err := m.StateAt(later)
	if err != nil {
		t.Fatalf("StateAt: %s", err)
	}
	if !out.Instant.Equal(later) {
		t.Fatalf("expected retimestamped instant %s, got %s", later, out.Instant)
	}
	r, _ := out.Extract(coords.CartesianPosition())
	if !(r[0] == 1 && r[1] == 2 && r[2] == 3) {
		t.Fatalf("expected unchanged coordinates, got %v", r)
	}
}

func TestTabulatedInterpolatesAndRejectsOutOfRange(t *testing.T) {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	eci := frame.Inertial{FrameName: "ECI"}
	broker := coords.NewBroker()
	broker.Add(coords.CartesianPosition())
	instants := []time.Time{epoch, epoch.Add(60 * time.Second), epoch.Add(120 * time.Second)}
	profile := [][]float64{
		{0, 0, 0},
		{60, 120, 180},
		{120, 240, 360},
	}
	m, err := NewTabulated(instants, profile, eci, broker)
	if err != nil {
		t.Fatalf("NewTabulated: %s", err)
	}
	mid, err := m.StateAt(epoch.Add(30 * time.Second))
	if err != nil {
		t.Fatalf("StateAt(mid): %s", err)
	}
	r, _ := mid.Extract(coords.CartesianPosition())
	if math.Abs(r[0]-30) > 1e-6 {
		t.Fatalf("expected linear column to interpolate to 30, got %f", r[0])
	}
	if _, err := m.StateAt(epoch.Add(121 * time.Second)); err == nil {
		t.Fatal("expected out-of-range error past the last tabulated instant")
	}
}

func TestNadirPointsRoughlyTowardEarthCenter(t *testing.T) {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	eci := frame.Inertial{FrameName: "ECI"}
	k, err := NewKepler(epoch, earthMu, circularCOE(), eci, newBroker())
	if err != nil {
		t.Fatalf("NewKepler: %s", err)
	}
	broker := coords.NewBroker()
	broker.Add(coords.AttitudeQuaternion())
	nadir := NewNadir(k, broker)
	s, err := nadir.StateAt(epoch)
	if err != nil {
		t.Fatalf("StateAt: %s", err)
	}
	q, err := s.Extract(coords.AttitudeQuaternion())
	if err != nil {
		t.Fatalf("Extract: %s", err)
	}
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if math.Abs(n-1) > 1e-9 {
		t.Fatalf("expected unit quaternion, got norm %f", n)
	}
}

func TestPassesSegmentsCircularOrbitIntoRevolutions(t *testing.T) {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	eci := frame.Inertial{FrameName: "ECI"}
	k, err := NewKepler(epoch, earthMu, circularCOE(), eci, newBroker())
	if err != nil {
		t.Fatalf("NewKepler: %s", err)
	}
	period := 2 * math.Pi * math.Sqrt(math.Pow(circularCOE().SMA, 3)/earthMu)
	t1 := epoch.Add(time.Duration(2.2 * period * float64(time.Second)))
	passes, err := Passes(k, epoch, t1, 10*time.Second, time.Second)
	if err != nil {
		t.Fatalf("Passes: %s", err)
	}
	if len(passes) < 2 {
		t.Fatalf("expected at least 2 passes over 2.2 periods, got %d: %+v", len(passes), passes)
	}
}
