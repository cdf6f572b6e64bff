package eclipse

import (
	"math"
	"testing"
	"time"

	"github.com/sabiduria-space/astrocore/celestial"
	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/state"
	"github.com/sabiduria-space/astrocore/state/coords"
	"github.com/sabiduria-space/astrocore/temporal"
	"github.com/sabiduria-space/astrocore/trajectory"
)

// fixedPositionBody is a Body fixed at an arbitrary position, standing in
// for a simplified Sun-relative-to-Earth ephemeris so the occultation
// geometry can be exercised without a real VSOP87 load.
type fixedPositionBody struct {
	celestial.TwoBody
	pos []float64
}

func (b fixedPositionBody) Position(time.Time) ([]float64, error) { return b.pos, nil }

func staticTarget(t *testing.T, fr frame.Frame, epoch time.Time, pos []float64) *trajectory.Static {
	t.Helper()
	broker := coords.NewBroker()
	broker.Add(coords.CartesianPosition())
	s, err := state.New(epoch, pos, fr, broker)
	if err != nil {
		t.Fatalf("state.New: %s", err)
	}
	return trajectory.NewStatic(s)
}

func TestUmbraDirectlyBehindEarth(t *testing.T) {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	eci := frame.Inertial{FrameName: "ECI"}
	sun := fixedPositionBody{TwoBody: celestial.Sun, pos: []float64{celestial.AU, 0, 0}}
	// Satellite on the night side, in Earth's shadow cone, 500 km up.
	target := staticTarget(t, eci, epoch, []float64{-(celestial.Earth.Radius + 500e3), 0, 0})
	gen := NewGenerator(target, celestial.Earth, sun, eci, temporal.Solver{Step: time.Second, Tolerance: time.Millisecond, MaxIterations: 50})
	k, err := gen.kindAt(epoch)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if k != Umbra {
		t.Fatalf("expected Umbra, got %v", k)
	}
}

func TestNoEclipseOnDaySide(t *testing.T) {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	eci := frame.Inertial{FrameName: "ECI"}
	sun := fixedPositionBody{TwoBody: celestial.Sun, pos: []float64{celestial.AU, 0, 0}}
	target := staticTarget(t, eci, epoch, []float64{celestial.Earth.Radius + 500e3, 0, 0})
	gen := NewGenerator(target, celestial.Earth, sun, eci, temporal.Solver{Step: time.Second, Tolerance: time.Millisecond, MaxIterations: 50})
	k, err := gen.kindAt(epoch)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if k != None {
		t.Fatalf("expected no eclipse on the sunlit side, got %v", k)
	}
}

func TestUmbraIntervalsOverOnePeriod(t *testing.T) {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	eci := frame.Inertial{FrameName: "ECI"}
	sun := fixedPositionBody{TwoBody: celestial.Sun, pos: []float64{celestial.AU, 0, 0}}
	radius := celestial.Earth.Radius + 500e3
	mu := celestial.Earth.GravitationalParameter()
	period := 2 * math.Pi * math.Sqrt(radius*radius*radius/mu)

	model := orbitModel{radius: radius, omega: 2 * math.Pi / period, fr: eci, epoch: epoch}
	gen := NewGenerator(model, celestial.Earth, sun, eci, temporal.Solver{Step: 10 * time.Second, Tolerance: 200 * time.Millisecond, MaxIterations: 60})
	intervals, err := gen.UmbraIntervals(epoch, epoch.Add(time.Duration(period)*time.Second))
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if len(intervals) == 0 {
		t.Fatal("expected at least one umbra interval over a full orbit")
	}
}

// orbitModel is a minimal circular-orbit trajectory.Model in the xy-plane,
// local to this test file: it exists only to give UmbraIntervals a target
// whose shadow state actually changes over the analysis window.
type orbitModel struct {
	radius, omega float64
	fr            frame.Frame
	epoch         time.Time
}

func (m orbitModel) StateAt(instant time.Time) (state.State, error) {
	dt := instant.Sub(m.epoch).Seconds()
	theta := m.omega * dt
	broker := coords.NewBroker()
	broker.Add(coords.CartesianPosition())
	return state.New(instant, []float64{m.radius * math.Cos(theta), m.radius * math.Sin(theta), 0}, m.fr, broker)
}
