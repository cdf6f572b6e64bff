package coords

import (
	"math"
	"time"

	"github.com/gonum/matrix/mat64"

	"github.com/sabiduria-space/astrocore/frame"
)

// ---- Cartesian position/velocity/acceleration ----

// cartesianPosition implements Subset for a 3-vector position.
type cartesianPosition struct{}

// CartesianPosition is the built-in 3-size position subset.
func CartesianPosition() Subset { return cartesianPosition{} }

func (cartesianPosition) Name() string { return "CARTESIAN_POSITION" }
func (cartesianPosition) Size() int    { return 3 }
func (cartesianPosition) Add(a, b []float64) []float64      { return scalarAdd(a, b) }
func (cartesianPosition) Subtract(a, b []float64) []float64 { return scalarSubtract(a, b) }

func (s cartesianPosition) InFrame(full []float64, broker *Broker, from, to frame.Frame, instant time.Time) ([]float64, error) {
	r, err := extractDependency(full, broker, s)
	if err != nil {
		return nil, err
	}
	xf, err := from.TransformTo(to, instant)
	if err != nil {
		return nil, err
	}
	rotated := frame.MxV33(xf.Rotation, r)
	for i := range rotated {
		rotated[i] += xf.Translation[i]
	}
	return rotated, nil
}

// cartesianVelocity implements Subset for a 3-vector velocity, depending on position.
type cartesianVelocity struct{}

// CartesianVelocity is the built-in 3-size velocity subset (depends on position).
func CartesianVelocity() Subset { return cartesianVelocity{} }

func (cartesianVelocity) Name() string { return "CARTESIAN_VELOCITY" }
func (cartesianVelocity) Size() int    { return 3 }
func (cartesianVelocity) Add(a, b []float64) []float64      { return scalarAdd(a, b) }
func (cartesianVelocity) Subtract(a, b []float64) []float64 { return scalarSubtract(a, b) }

func (s cartesianVelocity) InFrame(full []float64, broker *Broker, from, to frame.Frame, instant time.Time) ([]float64, error) {
	v, err := extractDependency(full, broker, s)
	if err != nil {
		return nil, err
	}
	r, err := extractDependency(full, broker, CartesianPosition())
	if err != nil {
		return nil, err
	}
	xf, err := from.TransformTo(to, instant)
	if err != nil {
		return nil, err
	}
	// v' = R*v + R*(omega x r) + v_frame
	omegaCrossR := cross(xf.AngularVelocity, r)
	combined := make([]float64, 3)
	for i := range combined {
		combined[i] = v[i] + omegaCrossR[i]
	}
	rotated := frame.MxV33(xf.Rotation, combined)
	for i := range rotated {
		rotated[i] += xf.LinearVelocity[i]
	}
	return rotated, nil
}

// cartesianAcceleration implements Subset for a 3-vector acceleration,
// depending on position and velocity.
type cartesianAcceleration struct{}

// CartesianAcceleration is the built-in 3-size acceleration subset.
func CartesianAcceleration() Subset { return cartesianAcceleration{} }

func (cartesianAcceleration) Name() string { return "CARTESIAN_ACCELERATION" }
func (cartesianAcceleration) Size() int    { return 3 }
func (cartesianAcceleration) Add(a, b []float64) []float64      { return scalarAdd(a, b) }
func (cartesianAcceleration) Subtract(a, b []float64) []float64 { return scalarSubtract(a, b) }

func (s cartesianAcceleration) InFrame(full []float64, broker *Broker, from, to frame.Frame, instant time.Time) ([]float64, error) {
	a, err := extractDependency(full, broker, s)
	if err != nil {
		return nil, err
	}
	r, err := extractDependency(full, broker, CartesianPosition())
	if err != nil {
		return nil, err
	}
	v, err := extractDependency(full, broker, CartesianVelocity())
	if err != nil {
		return nil, err
	}
	xf, err := from.TransformTo(to, instant)
	if err != nil {
		return nil, err
	}
	omega := xf.AngularVelocity
	alpha := xf.AngularAcc
	if alpha == nil {
		alpha = []float64{0, 0, 0}
	}
	// a' = R*(a + 2*omega x v + omega x (omega x r) + alpha x r)
	omegaCrossV := cross(omega, v)
	omegaCrossR := cross(omega, r)
	omegaCrossOmegaR := cross(omega, omegaCrossR)
	alphaCrossR := cross(alpha, r)
	combined := make([]float64, 3)
	for i := range combined {
		combined[i] = a[i] + 2*omegaCrossV[i] + omegaCrossOmegaR[i] + alphaCrossR[i]
	}
	return frame.MxV33(xf.Rotation, combined), nil
}

func cross(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// ---- Attitude quaternion & angular velocity ----

type attitudeQuaternion struct{}

// AttitudeQuaternion is the built-in 4-size attitude subset, scalar-first [w,x,y,z].
func AttitudeQuaternion() Subset { return attitudeQuaternion{} }

func (attitudeQuaternion) Name() string { return "ATTITUDE_QUATERNION" }
func (attitudeQuaternion) Size() int    { return 4 }
func (attitudeQuaternion) Add(a, b []float64) []float64      { return scalarAdd(a, b) }
func (attitudeQuaternion) Subtract(a, b []float64) []float64 { return scalarSubtract(a, b) }

func (s attitudeQuaternion) InFrame(full []float64, broker *Broker, from, to frame.Frame, instant time.Time) ([]float64, error) {
	q, err := extractDependency(full, broker, s)
	if err != nil {
		return nil, err
	}
	xf, err := from.TransformTo(to, instant)
	if err != nil {
		return nil, err
	}
	fq := dcmToQuaternion(xf.Rotation)
	nq := quaternionMultiply(fq, q)
	nq = normalizeQuaternion(nq)
	// Sign continuity: flip if it drifted to the opposite hemisphere from
	// the pre-transform attitude.
	if dot4(nq, q) < 0 {
		for i := range nq {
			nq[i] = -nq[i]
		}
	}
	return nq, nil
}

func dot4(a, b []float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
}

func normalizeQuaternion(q []float64) []float64 {
	n := math.Sqrt(dot4(q, q))
	if n == 0 {
		return []float64{1, 0, 0, 0}
	}
	out := make([]float64, 4)
	for i := range q {
		out[i] = q[i] / n
	}
	return out
}

func quaternionMultiply(a, b []float64) []float64 {
	aw, ax, ay, az := a[0], a[1], a[2], a[3]
	bw, bx, by, bz := b[0], b[1], b[2], b[3]
	return []float64{
		aw*bw - ax*bx - ay*by - az*bz,
		aw*bx + ax*bw + ay*bz - az*by,
		aw*by - ax*bz + ay*bw + az*bx,
		aw*bz + ax*by - ay*bx + az*bw,
	}
}

// dcmToQuaternion converts a 3x3 direction-cosine matrix to a scalar-first
// unit quaternion using Shepperd's method.
func dcmToQuaternion(m *mat64.Dense) []float64 {
	r11, r12, r13 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	r21, r22, r23 := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	r31, r32, r33 := m.At(2, 0), m.At(2, 1), m.At(2, 2)
	tr := r11 + r22 + r33
	var w, x, y, z float64
	if tr > 0 {
		s := math.Sqrt(tr+1) * 2
		w = s / 4
		x = (r32 - r23) / s
		y = (r13 - r31) / s
		z = (r21 - r12) / s
	} else if r11 > r22 && r11 > r33 {
		s := math.Sqrt(1+r11-r22-r33) * 2
		w = (r32 - r23) / s
		x = s / 4
		y = (r12 + r21) / s
		z = (r13 + r31) / s
	} else if r22 > r33 {
		s := math.Sqrt(1+r22-r11-r33) * 2
		w = (r13 - r31) / s
		x = (r12 + r21) / s
		y = s / 4
		z = (r23 + r32) / s
	} else {
		s := math.Sqrt(1+r33-r11-r22) * 2
		w = (r21 - r12) / s
		x = (r13 + r31) / s
		y = (r23 + r32) / s
		z = s / 4
	}
	return normalizeQuaternion([]float64{w, x, y, z})
}

type angularVelocity struct{}

// AngularVelocity is the built-in 3-size angular-velocity subset (depends on attitude).
func AngularVelocity() Subset { return angularVelocity{} }

func (angularVelocity) Name() string { return "ANGULAR_VELOCITY" }
func (angularVelocity) Size() int    { return 3 }
func (angularVelocity) Add(a, b []float64) []float64      { return scalarAdd(a, b) }
func (angularVelocity) Subtract(a, b []float64) []float64 { return scalarSubtract(a, b) }

func (s angularVelocity) InFrame(full []float64, broker *Broker, from, to frame.Frame, instant time.Time) ([]float64, error) {
	w, err := extractDependency(full, broker, s)
	if err != nil {
		return nil, err
	}
	q, err := extractDependency(full, broker, AttitudeQuaternion())
	if err != nil {
		return nil, err
	}
	xf, err := from.TransformTo(to, instant)
	if err != nil {
		return nil, err
	}
	// Express the frame's angular velocity in the rotated body frame via
	// the (post-transform) attitude quaternion.
	bodyFromFrame := rotateVectorByQuaternionInverse(q, xf.AngularVelocity)
	out := make([]float64, 3)
	for i := range out {
		out[i] = w[i] + bodyFromFrame[i]
	}
	return out, nil
}

func rotateVectorByQuaternionInverse(q, v []float64) []float64 {
	conj := []float64{q[0], -q[1], -q[2], -q[3]}
	vq := []float64{0, v[0], v[1], v[2]}
	t := quaternionMultiply(conj, vq)
	t = quaternionMultiply(t, q)
	return []float64{t[1], t[2], t[3]}
}

// ---- Scalar invariants ----

type scalarSubset struct {
	name string
}

func (s scalarSubset) Name() string { return s.name }
func (scalarSubset) Size() int      { return 1 }
func (scalarSubset) Add(a, b []float64) []float64      { return scalarAdd(a, b) }
func (scalarSubset) Subtract(a, b []float64) []float64 { return scalarSubtract(a, b) }
func (s scalarSubset) InFrame(full []float64, broker *Broker, from, to frame.Frame, instant time.Time) ([]float64, error) {
	return extractDependency(full, broker, s)
}

// Mass is the built-in 1-size spacecraft-mass subset, kg.
func Mass() Subset { return scalarSubset{"MASS"} }

// SurfaceArea is the built-in 1-size cross-sectional-area subset, m^2.
func SurfaceArea() Subset { return scalarSubset{"SURFACE_AREA"} }

// DragCoefficient is the built-in 1-size Cd subset.
func DragCoefficient() Subset { return scalarSubset{"DRAG_COEFFICIENT"} }

// MassFlowRate is the built-in 1-size mass-flow-rate subset, kg/s.
func MassFlowRate() Subset { return scalarSubset{"MASS_FLOW_RATE"} }

// BallisticCoefficient is the built-in 1-size ballistic-coefficient subset.
func BallisticCoefficient() Subset { return scalarSubset{"BALLISTIC_COEFFICIENT"} }

// Channel is an arbitrary named scalar (or small-vector) subset, the open
// escape hatch for arbitrary tabulated channels, which original_source's
// CoordinatesSubset base class supports as a non-closed hierarchy. Frame
// change is identity, like other non-geometric
// channels, unless size is 3 in which case it behaves like a free vector
// (no position dependency) for frames that only rotate (e.g. body rates
// tracked outside the standard attitude subset).
type Channel struct {
	ChannelName string
	ChannelSize int
	Vector      bool // if true and ChannelSize==3, rotate geometrically (no translation)
}

// NewChannel returns a new arbitrary tabulated-data channel subset.
func NewChannel(name string, size int) Subset {
	return Channel{ChannelName: name, ChannelSize: size}
}

// NewVectorChannel returns a new arbitrary 3-vector channel that rotates
// (but does not translate) under reframing, e.g. a body-fixed moment vector.
func NewVectorChannel(name string) Subset {
	return Channel{ChannelName: name, ChannelSize: 3, Vector: true}
}

func (c Channel) Name() string { return c.ChannelName }
func (c Channel) Size() int    { return c.ChannelSize }
func (c Channel) Add(a, b []float64) []float64      { return scalarAdd(a, b) }
func (c Channel) Subtract(a, b []float64) []float64 { return scalarSubtract(a, b) }
func (c Channel) InFrame(full []float64, broker *Broker, from, to frame.Frame, instant time.Time) ([]float64, error) {
	v, err := extractDependency(full, broker, c)
	if err != nil {
		return nil, err
	}
	if !c.Vector || c.ChannelSize != 3 {
		return v, nil
	}
	xf, err := from.TransformTo(to, instant)
	if err != nil {
		return nil, err
	}
	return frame.MxV33(xf.Rotation, v), nil
}
