package coords

import (
	"math"
	"testing"
	"time"

	"github.com/sabiduria-space/astrocore/frame"
)

func TestBrokerAddIsIdempotentOnIdentity(t *testing.T) {
	b := NewBroker()
	off1 := b.Add(CartesianPosition())
	off2 := b.Add(CartesianPosition())
	if off1 != off2 {
		t.Fatalf("expected re-adding the same subset to return the same offset, got %d vs %d", off1, off2)
	}
	if b.Size() != 3 || b.SubsetCount() != 1 {
		t.Fatalf("expected size 3 and 1 subset, got size=%d count=%d", b.Size(), b.SubsetCount())
	}
}

func TestBrokerLayoutIsInsertionOrdered(t *testing.T) {
	b := NewBroker()
	b.Add(CartesianPosition())
	b.Add(Mass())
	posOffset, _, _ := b.Index(CartesianPosition())
	massOffset, _, _ := b.Index(Mass())
	if posOffset != 0 || massOffset != 3 {
		t.Fatalf("expected position at 0 and mass at 3, got %d and %d", posOffset, massOffset)
	}
}

func TestBrokerIndexUnregisteredSubsetErrors(t *testing.T) {
	b := NewBroker()
	if _, _, err := b.Index(Mass()); err == nil {
		t.Fatal("expected error for unregistered subset")
	}
}

func TestBrokerExtractOutOfRangeErrors(t *testing.T) {
	b := NewBroker()
	b.Add(CartesianPosition())
	if _, err := b.Extract([]float64{1, 2}, CartesianPosition()); err == nil {
		t.Fatal("expected out-of-range error for a short vector")
	}
}

func TestScalarSubsetIsIdentityUnderFrameChange(t *testing.T) {
	b := NewBroker()
	b.Add(Mass())
	v := []float64{1500}
	out, err := b.Reframe(v, frame.Inertial{FrameName: "A"}, frame.Inertial{FrameName: "A"}, time.Now())
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if out[0] != 1500 {
		t.Fatalf("expected scalar subset unchanged across frame reframe, got %v", out)
	}
}

func TestCartesianVelocityReframeAddsRotationalTerm(t *testing.T) {
	b := NewBroker()
	b.Add(CartesianPosition())
	b.Add(CartesianVelocity())
	r := []float64{1, 0, 0}
	v := []float64{0, 0, 0}
	vec := append(append([]float64{}, r...), v...)

	epoch := time.Now()
	inertial := frame.Inertial{FrameName: "ECI"}
	rotating := frame.BodyFixed{FrameName: "ECEF", RotationRate: 1.0, Epoch: epoch}

	out, err := b.Reframe(vec, inertial, rotating, epoch)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	vOut, err := b.Extract(out, CartesianVelocity())
	if err != nil {
		t.Fatalf("err %s", err)
	}
	// A stationary point in inertial space picks up an apparent velocity of
	// omega x r when observed in the rotating frame at the instant their
	// axes align.
	if math.Abs(vOut[1]-1.0) > 1e-9 {
		t.Fatalf("expected v_y ~ 1 from the rotational term, got %v", vOut)
	}
}

func TestAddVectorsAndSubtractVectorsRoundTrip(t *testing.T) {
	b := NewBroker()
	b.Add(CartesianPosition())
	b.Add(Mass())
	a := []float64{1, 2, 3, 100}
	c := []float64{0.5, 0.5, 0.5, 10}
	sum, err := b.AddVectors(a, c)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	back, err := b.SubtractVectors(sum, c)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	for i := range a {
		if math.Abs(a[i]-back[i]) > 1e-12 {
			t.Fatalf("round trip mismatch at %d: %v vs %v", i, a, back)
		}
	}
}
