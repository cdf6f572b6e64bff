package station

import (
	"math"
	"testing"
	"time"

	"github.com/sabiduria-space/astrocore/frame"
)

func TestNewPlacesStationAtExpectedGeodeticPosition(t *testing.T) {
	bf := frame.Inertial{FrameName: "ECEF"}
	const earthRadius = 6378.137e3
	st, err := New("equator", bf, earthRadius, 0, 0, 0, 0, 10, 0.1)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if math.Abs(st.Position[0]-earthRadius) > 1e-3 || st.Position[1] != 0 || st.Position[2] != 0 {
		t.Fatalf("expected a station at lat=0,lon=0 to sit on the x axis at the body radius, got %v", st.Position)
	}
}

func TestObserveOverheadSatelliteReportsHighElevationAndExpectedRange(t *testing.T) {
	bf := frame.Inertial{FrameName: "ECEF"}
	const earthRadius = 6378.137e3
	st, err := New("equator", bf, earthRadius, 0, 0, 0, 0, 0, 0)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	r := []float64{earthRadius + 500e3, 0, 0}
	v := []float64{0, 7500, 0}
	m, err := st.Observe(time.Now(), bf, r, v)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if !m.Visible {
		t.Fatal("expected an overhead satellite to be visible")
	}
	if math.Abs(m.TrueRange-500e3) > 1 {
		t.Fatalf("expected true range ~500km, got %f", m.TrueRange)
	}
	if math.Abs(m.TrueRangeRate) > 1e-6 {
		t.Fatalf("expected near-zero range rate for a tangential velocity, got %f", m.TrueRangeRate)
	}
}

func TestObserveBelowMaskIsNotVisible(t *testing.T) {
	bf := frame.Inertial{FrameName: "ECEF"}
	const earthRadius = 6378.137e3
	st, err := New("equator", bf, earthRadius, 0, 0, 0, 80*math.Pi/180, 0, 0)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	// Nearly on the horizon: far along the surface tangent, barely above it.
	r := []float64{earthRadius + 1e3, earthRadius * 0.9, 0}
	v := []float64{0, 7500, 0}
	m, err := st.Observe(time.Now(), bf, r, v)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if m.Visible {
		t.Fatal("expected a near-horizon satellite to fall below an 80 degree elevation mask")
	}
}
