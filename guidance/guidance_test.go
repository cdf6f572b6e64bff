package guidance

import (
	"math"
	"testing"
	"time"

	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/state"
	"github.com/sabiduria-space/astrocore/state/coords"
)

func circularState(t *testing.T, r, v []float64) state.State {
	t.Helper()
	broker := coords.NewBroker()
	broker.Add(coords.CartesianPosition())
	broker.Add(coords.CartesianVelocity())
	s, err := state.NewBuilder(broker).
		Set(coords.CartesianPosition(), r).
		Set(coords.CartesianVelocity(), v).
		Build(time.Now(), frame.Inertial{FrameName: "ECI"})
	if err != nil {
		t.Fatalf("err %s", err)
	}
	return s
}

func TestConstantThrustNormalizesDirection(t *testing.T) {
	law := NewConstantThrust([]float64{3, 4, 0}, 0.5)
	dir, throttle, err := law.Direction(0, state.Undefined)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if math.Abs(dir[0]-0.6) > 1e-9 || math.Abs(dir[1]-0.8) > 1e-9 {
		t.Fatalf("expected normalized direction (0.6,0.8,0), got %v", dir)
	}
	if throttle != 0.5 {
		t.Fatalf("expected throttle 0.5, got %f", throttle)
	}
}

func TestSequentialDelegatesToWindowCoveringTime(t *testing.T) {
	a := NewConstantThrust([]float64{1, 0, 0}, 1)
	b := NewConstantThrust([]float64{0, 1, 0}, 0.3)
	seq := NewSequential(
		SequentialWindow{Start: 0, End: 10, Law: a},
		SequentialWindow{Start: 10, End: 20, Law: b},
	)
	dir, throttle, err := seq.Direction(15, state.Undefined)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if dir[1] != 1 || throttle != 0.3 {
		t.Fatalf("expected delegation to the second window, got dir=%v throttle=%f", dir, throttle)
	}
}

func TestSequentialReturnsZeroThrustInGap(t *testing.T) {
	a := NewConstantThrust([]float64{1, 0, 0}, 1)
	seq := NewSequential(SequentialWindow{Start: 0, End: 10, Law: a})
	dir, throttle, err := seq.Direction(50, state.Undefined)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if throttle != 0 || dir[0] != 0 || dir[1] != 0 || dir[2] != 0 {
		t.Fatalf("expected zero thrust outside all windows, got dir=%v throttle=%f", dir, throttle)
	}
}

func TestQLawReturnsZeroThrottleWhenAlreadyAtTarget(t *testing.T) {
	const mu = 3.986004418e14
	r := []float64{7000e3, 0, 0}
	vCirc := math.Sqrt(mu / 7000e3)
	v := []float64{0, vCirc, 0}
	s := circularState(t, r, v)

	law := NewQLaw(mu, 1e-6)
	law.UseSMA = true
	law.TargetSMA = 7000e3

	_, throttle, err := law.Direction(0, s)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if throttle != 0 {
		t.Fatalf("expected zero throttle once the target semi-major axis is reached, got %f", throttle)
	}
}

func TestQLawThrustsWhenAwayFromTarget(t *testing.T) {
	const mu = 3.986004418e14
	r := []float64{7000e3, 0, 0}
	vCirc := math.Sqrt(mu / 7000e3)
	v := []float64{0, vCirc, 0}
	s := circularState(t, r, v)

	law := NewQLaw(mu, 1e-6)
	law.UseSMA = true
	law.TargetSMA = 7500e3

	dir, throttle, err := law.Direction(0, s)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if throttle != 1 {
		t.Fatalf("expected full throttle while away from target, got %f", throttle)
	}
	if math.Abs(math.Sqrt(dir[0]*dir[0]+dir[1]*dir[1]+dir[2]*dir[2])-1) > 1e-9 {
		t.Fatalf("expected a unit thrust direction, got %v", dir)
	}
}
