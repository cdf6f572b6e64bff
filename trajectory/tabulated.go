package trajectory

import (
	"time"

	"github.com/sabiduria-space/astrocore/errkind"
	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/interp"
	"github.com/sabiduria-space/astrocore/state"
	"github.com/sabiduria-space/astrocore/state/coords"
)

// Tabulated is a Model over a stored (instants[], profile-matrix) table,
// interpolating each broker column independently with a
// interp.BarycentricRational built once at construction. Mirrors
// dynamics.Tabulated's "must be called in the frame it was built in"
// invariant: StateAt never reframes, it returns coordinates
// expressed in Frame as-is.
type Tabulated struct {
	Frame   frame.Frame
	Broker  *coords.Broker
	instants []time.Time
	columns  []*interp.BarycentricRational
	t0, t1   float64
}

// NewTabulated builds a Tabulated model. profile[row] must have length
// broker.Size() and instants must be strictly increasing.
func NewTabulated(instants []time.Time, profile [][]float64, fr frame.Frame, broker *coords.Broker) (*Tabulated, error) {
	if len(instants) < 2 || len(instants) != len(profile) {
		return nil, errkind.New(errkind.InvalidConfiguration, "tabulated: need at least two matching (instant, row) pairs")
	}
	n := broker.Size()
	xs := make([]float64, len(instants))
	t0 := instants[0]
	for i, instant := range instants {
		if len(profile[i]) != n {
			return nil, errkind.New(errkind.BrokerMismatch, "tabulated: profile row width does not match broker size")
		}
		xs[i] = instant.Sub(t0).Seconds()
		if i > 0 && xs[i] <= xs[i-1] {
			return nil, errkind.New(errkind.InvalidConfiguration, "tabulated: instants must be strictly increasing")
		}
	}
	columns := make([]*interp.BarycentricRational, n)
	for col := 0; col < n; col++ {
		ys := make([]float64, len(instants))
		for row := range instants {
			ys[row] = profile[row][col]
		}
		columns[col] = interp.NewBarycentricRational(xs, ys, 3)
	}
	return &Tabulated{
		Frame:    fr,
		Broker:   broker,
		instants: instants,
		columns:  columns,
		t0:       xs[0],
		t1:       xs[len(xs)-1],
	}, nil
}

// StateAt implements Model. instant must lie within [first, last] sample
// instant; out-of-range instants raise OutOfRange instead of extrapolating.
func (m *Tabulated) StateAt(instant time.Time) (state.State, error) {
	rel := instant.Sub(m.instants[0]).Seconds()
	if rel < m.t0 || rel > m.t1 {
		return state.State{}, errkind.New(errkind.OutOfRange, "tabulated: instant outside tabulated interval")
	}
	out := make([]float64, len(m.columns))
	for col, interpolator := range m.columns {
		out[col] = interpolator.Evaluate(rel)
	}
	return state.New(instant, out, m.Frame, m.Broker)
}

// Bounds returns the first and last tabulated instants.
func (m *Tabulated) Bounds() (time.Time, time.Time) {
	return m.instants[0], m.instants[len(m.instants)-1]
}
