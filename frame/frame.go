// Package frame defines the reference-frame collaborator consumed by the
// coordinate-subset algebra: something that can produce a rigid transform
// (translation, rotation, linear & angular velocity) between two named
// frames at a given instant. astrocore does not implement ephemeris-grade
// frame chains itself (that is an external collaborator
// it ships the interface plus a couple of concrete frames adequate for
// two-body and ground-station work, ported from smd/rotation.go and
// smd/station.go's ECI/ECEF helpers.
package frame

import (
	"math"
	"time"

	"github.com/gonum/matrix/mat64"
)

// EarthRotationRate is Earth's mean sidereal rotation rate, in rad/s.
const EarthRotationRate = 7.292115146706979e-5

// RigidTransform carries the translation, rotation and velocity parts of a
// frame-to-frame transform at a fixed instant.
type RigidTransform struct {
	Translation      []float64    // position offset, meters
	Rotation         *mat64.Dense // 3x3 direction-cosine matrix
	LinearVelocity   []float64    // m/s
	AngularVelocity  []float64    // rad/s, expressed in the target frame
	AngularAcc       []float64    // rad/s^2, for acceleration reframing; may be nil (treated as zero)
}

// Frame is the reference-frame collaborator. Implementations must be
// read-only and shareable across goroutines; acyclicity of any frame graph
// behind an implementation is the implementation's configuration invariant,
// not something astrocore guards against at runtime.
type Frame interface {
	Name() string
	// TransformTo returns the rigid transform that maps a vector expressed
	// in this frame into the target frame at the given instant.
	TransformTo(target Frame, instant time.Time) (RigidTransform, error)
}

// Identity returns the identity RigidTransform, which every concrete Frame
// below returns from TransformTo when the target is the same frame.
func Identity() RigidTransform {
	return RigidTransform{
		Translation:     []float64{0, 0, 0},
		Rotation:        denseIdentity(3),
		LinearVelocity:  []float64{0, 0, 0},
		AngularVelocity: []float64{0, 0, 0},
	}
}

func denseIdentity(n int) *mat64.Dense {
	vals := make([]float64, n*n)
	for j := 0; j < n*n; j++ {
		if j%(n+1) == 0 {
			vals[j] = 1
		}
	}
	return mat64.NewDense(n, n, vals)
}

// R3 is a rotation about the 3rd (z) axis by angle x, ported from smd/rotation.go.
func R3(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// R1 is a rotation about the 1st (x) axis by angle x, ported from smd/rotation.go.
func R1(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// MxV33 multiplies a 3x3 matrix with a length-3 vector, ported from smd/rotation.go.
func MxV33(m *mat64.Dense, v []float64) []float64 {
	vVec := mat64.NewVector(3, v)
	var rVec mat64.Vector
	rVec.MulVec(m, vVec)
	return []float64{rVec.At(0, 0), rVec.At(1, 0), rVec.At(2, 0)}
}

// Inertial is a fixed (non-rotating) frame centered on a celestial body,
// e.g. an Earth-centered inertial (ECI) frame.
type Inertial struct {
	FrameName string
}

// Name implements Frame.
func (f Inertial) Name() string { return f.FrameName }

// TransformTo implements Frame. Inertial-to-inertial is the identity;
// Inertial-to-BodyFixed delegates to the fixed frame's rotation.
func (f Inertial) TransformTo(target Frame, instant time.Time) (RigidTransform, error) {
	switch t := target.(type) {
	case Inertial:
		return Identity(), nil
	case BodyFixed:
		θ := math.Mod(t.RotationRate*secondsSinceEpoch(instant, t.Epoch)+t.θ0, 2*math.Pi)
		return RigidTransform{
			Translation:     []float64{0, 0, 0},
			Rotation:        R3(θ),
			LinearVelocity:  []float64{0, 0, 0},
			AngularVelocity: []float64{0, 0, t.RotationRate},
		}, nil
	default:
		return RigidTransform{}, unsupported(f.Name(), target.Name())
	}
}

// BodyFixed is a uniformly-rotating body-fixed frame (e.g. ECEF), ported
// from smd/station.go's ECI2ECEF/ECEF2ECI helpers generalized to any
// rotation rate and reference epoch rather than a hardcoded Earth constant.
type BodyFixed struct {
	FrameName    string
	RotationRate float64 // rad/s
	Epoch        time.Time
	θ0           float64 // rotation angle at Epoch, rad
}

// Name implements Frame.
func (f BodyFixed) Name() string { return f.FrameName }

// TransformTo implements Frame.
func (f BodyFixed) TransformTo(target Frame, instant time.Time) (RigidTransform, error) {
	switch t := target.(type) {
	case BodyFixed:
		if t.FrameName == f.FrameName {
			return Identity(), nil
		}
		return RigidTransform{}, unsupported(f.Name(), target.Name())
	case Inertial:
		θ := math.Mod(f.RotationRate*secondsSinceEpoch(instant, f.Epoch)+f.θ0, 2*math.Pi)
		return RigidTransform{
			Translation:     []float64{0, 0, 0},
			Rotation:        R3(-θ),
			LinearVelocity:  []float64{0, 0, 0},
			AngularVelocity: []float64{0, 0, -f.RotationRate},
		}, nil
	default:
		return RigidTransform{}, unsupported(f.Name(), target.Name())
	}
}

func secondsSinceEpoch(t, epoch time.Time) float64 {
	return t.Sub(epoch).Seconds()
}

func unsupported(from, to string) error {
	return &unsupportedErr{from, to}
}

type unsupportedErr struct{ from, to string }

func (e *unsupportedErr) Error() string {
	return "frame: no direct transform " + e.from + " -> " + e.to
}
