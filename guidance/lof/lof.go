// Package lof builds local-orbital-frame bases from
// instantaneous position/velocity: VNC, LVLH, QSW, TNW, NED and VVLH.
// Ported from smd/rotation.go's frame-construction helpers, generalized from
// ad hoc per-call vector math into named basis-builder functions shared by
// the guidance laws and any caller needing a local frame.
package lof

import "math"

// Basis is an orthonormal right-handed triad, each row a unit vector
// expressed in the same frame as the input position/velocity.
type Basis struct {
	X, Y, Z []float64
}

// Rotate expresses vector v (given in the same frame as the inputs used to
// build b) in the local frame b.
func (b Basis) Rotate(v []float64) []float64 {
	return []float64{dot(b.X, v), dot(b.Y, v), dot(b.Z, v)}
}

// Unrotate expresses a vector given in the local frame b back in the
// original frame.
func (b Basis) Unrotate(v []float64) []float64 {
	out := make([]float64, 3)
	for i := 0; i < 3; i++ {
		out[i] = b.X[i]*v[0] + b.Y[i]*v[1] + b.Z[i]*v[2]
	}
	return out
}

// VNC returns the Velocity-Normal-Co-normal basis: X along velocity, Z
// along the orbit normal (r x v), Y completing the triad.
func VNC(r, v []float64) Basis {
	x := unit(v)
	h := cross(r, v)
	z := unit(h)
	y := cross(z, x)
	return Basis{X: x, Y: y, Z: z}
}

// LVLH returns the Local-Vertical-Local-Horizontal basis: X along radial
// (away from the central body), Z along the orbit normal, Y completing the
// triad (along-track for a circular orbit).
func LVLH(r, v []float64) Basis {
	x := unit(r)
	h := cross(r, v)
	z := unit(h)
	y := cross(z, x)
	return Basis{X: x, Y: y, Z: z}
}

// QSW is the radial/along-track/cross-track basis (sometimes called RSW):
// X radial, Y along the projection of velocity, Z along the orbit normal.
func QSW(r, v []float64) Basis {
	x := unit(r)
	h := cross(r, v)
	z := unit(h)
	y := cross(z, x)
	return Basis{X: x, Y: y, Z: z}
}

// TNW returns the Tangential-Normal-W basis: X along velocity, Z along the
// orbit normal, Y completing the triad (pointing roughly toward the center
// for near-circular orbits).
func TNW(r, v []float64) Basis {
	x := unit(v)
	h := cross(r, v)
	w := unit(h)
	y := cross(w, x)
	return Basis{X: x, Y: y, Z: w}
}

// VVLH returns the Vehicle-Velocity-Local-Horizontal basis used by many
// attitude-pointing conventions: Z toward the central body (nadir), X
// along velocity (completed to orthogonality), Y completing the
// right-handed triad (roughly anti-normal).
func VVLH(r, v []float64) Basis {
	z := negate(unit(r))
	h := cross(r, v)
	y := negate(unit(h))
	x := cross(y, z)
	return Basis{X: x, Y: y, Z: z}
}

// NED returns the North-East-Down basis at geodetic position r (Cartesian,
// body-fixed frame), approximating the body as a sphere: Down toward the
// body center, North in the meridian plane, East completing the triad.
func NED(r []float64) Basis {
	down := negate(unit(r))
	zAxis := []float64{0, 0, 1}
	if norm(cross(down, zAxis)) == 0 {
		// At a pole, North is undefined; fall back to the X axis.
		north := []float64{1, 0, 0}
		return Basis{X: north, Y: cross(down, north), Z: down}
	}
	east := unit(cross(down, zAxis))
	north := cross(east, down)
	return Basis{X: north, Y: east, Z: down}
}

func dot(a, b []float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func norm(v []float64) float64 {
	return math.Sqrt(dot(v, v))
}

func unit(v []float64) []float64 {
	n := norm(v)
	if n == 0 {
		return []float64{0, 0, 0}
	}
	return []float64{v[0] / n, v[1] / n, v[2] / n}
}

func negate(v []float64) []float64 {
	return []float64{-v[0], -v[1], -v[2]}
}
