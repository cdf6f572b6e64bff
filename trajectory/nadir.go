package trajectory

import (
	"math"
	"time"

	"github.com/sabiduria-space/astrocore/errkind"
	"github.com/sabiduria-space/astrocore/guidance/lof"
	"github.com/sabiduria-space/astrocore/state"
	"github.com/sabiduria-space/astrocore/state/coords"
)

// Nadir is a pointing Model: it reuses an underlying translational Model
// (typically a Kepler or Tabulated orbit) for position/velocity and derives
// a nadir-pointing attitude quaternion from the VVLH local-orbital-frame
// basis (guidance/lof.VVLH), the convention original_source's
// NadirPointing orbit model uses for Earth-observation attitude profiles,
// needed for any ground-track-locked payload.
type Nadir struct {
	Orbit  Model
	Broker *coords.Broker
}

// NewNadir returns a Nadir model deriving attitude from orbit's
// position/velocity; broker must register AttitudeQuaternion (and may also
// register CartesianPosition/Velocity, copied through unchanged).
func NewNadir(orbit Model, broker *coords.Broker) *Nadir {
	return &Nadir{Orbit: orbit, Broker: broker}
}

// StateAt implements Model.
func (m *Nadir) StateAt(instant time.Time) (state.State, error) {
	orbitState, err := m.Orbit.StateAt(instant)
	if err != nil {
		return state.State{}, err
	}
	r, err := orbitState.Extract(coords.CartesianPosition())
	if err != nil {
		return state.State{}, errkind.Wrap(errkind.BrokerMismatch, "nadir: underlying model has no CARTESIAN_POSITION", err)
	}
	v, err := orbitState.Extract(coords.CartesianVelocity())
	if err != nil {
		return state.State{}, errkind.Wrap(errkind.BrokerMismatch, "nadir: underlying model has no CARTESIAN_VELOCITY", err)
	}
	basis := lof.VVLH(r, v)
	q := dcmToQuaternion(basis.X, basis.Y, basis.Z)

	out := make([]float64, m.Broker.Size())
	for _, subset := range m.Broker.Subsets() {
		offset, size, ierr := m.Broker.Index(subset)
		if ierr != nil {
			return state.State{}, ierr
		}
		switch subset.Name() {
		case "ATTITUDE_QUATERNION":
			copy(out[offset:offset+size], q)
		case "CARTESIAN_POSITION":
			copy(out[offset:offset+size], r)
		case "CARTESIAN_VELOCITY":
			copy(out[offset:offset+size], v)
		}
	}
	return state.New(instant, out, orbitState.Frame, m.Broker)
}

// dcmToQuaternion converts a rotation matrix given by its columns (x, y, z
// unit vectors expressed in the parent frame) to a scalar-first unit
// quaternion via Shepperd's method, duplicating
// state/coords.dcmToQuaternion's algorithm locally (that helper is
// unexported and coords must not grow a dependency on trajectory).
func dcmToQuaternion(x, y, z []float64) []float64 {
	m00, m01, m02 := x[0], y[0], z[0]
	m10, m11, m12 := x[1], y[1], z[1]
	m20, m21, m22 := x[2], y[2], z[2]
	trace := m00 + m11 + m22
	var w, qx, qy, qz float64
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1.0)
		w = 0.25 / s
		qx = (m21 - m12) * s
		qy = (m02 - m20) * s
		qz = (m10 - m01) * s
	case m00 > m11 && m00 > m22:
		s := 2.0 * math.Sqrt(1.0+m00-m11-m22)
		w = (m21 - m12) / s
		qx = 0.25 * s
		qy = (m01 + m10) / s
		qz = (m02 + m20) / s
	case m11 > m22:
		s := 2.0 * math.Sqrt(1.0+m11-m00-m22)
		w = (m02 - m20) / s
		qx = (m01 + m10) / s
		qy = 0.25 * s
		qz = (m12 + m21) / s
	default:
		s := 2.0 * math.Sqrt(1.0+m22-m00-m11)
		w = (m10 - m01) / s
		qx = (m02 + m20) / s
		qy = (m12 + m21) / s
		qz = 0.25 * s
	}
	n := math.Sqrt(w*w + qx*qx + qy*qy + qz*qz)
	if n == 0 {
		return []float64{1, 0, 0, 0}
	}
	return []float64{w / n, qx / n, qy / n, qz / n}
}
