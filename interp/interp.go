// Package interp defines the Interpolator collaborator consumed by tabulated
// dynamics/trajectory models and ships a couple of concrete
// implementations: linear and barycentric-rational (Floater-Hormann), the
// latter being the one trajectory.Tabulated builds for its columns.
package interp

import "sort"

// Interpolator evaluates a 1-D function sampled at a set of nodes.
type Interpolator interface {
	Evaluate(x float64) float64
	Derivative(x float64) float64
}

// Linear is a piecewise-linear interpolator.
type Linear struct {
	X, Y []float64
}

// NewLinear returns a Linear interpolator over the given nodes, sorted by X.
func NewLinear(x, y []float64) *Linear {
	xs, ys := sortedCopy(x, y)
	return &Linear{X: xs, Y: ys}
}

func (l *Linear) bracket(x float64) int {
	i := sort.SearchFloat64s(l.X, x)
	if i == 0 {
		return 0
	}
	if i >= len(l.X) {
		return len(l.X) - 2
	}
	return i - 1
}

// Evaluate implements Interpolator.
func (l *Linear) Evaluate(x float64) float64 {
	if len(l.X) == 1 {
		return l.Y[0]
	}
	i := l.bracket(x)
	x0, x1 := l.X[i], l.X[i+1]
	y0, y1 := l.Y[i], l.Y[i+1]
	if x1 == x0 {
		return y0
	}
	t := (x - x0) / (x1 - x0)
	return y0 + t*(y1-y0)
}

// Derivative implements Interpolator.
func (l *Linear) Derivative(x float64) float64 {
	if len(l.X) == 1 {
		return 0
	}
	i := l.bracket(x)
	x0, x1 := l.X[i], l.X[i+1]
	y0, y1 := l.Y[i], l.Y[i+1]
	if x1 == x0 {
		return 0
	}
	return (y1 - y0) / (x1 - x0)
}

// BarycentricRational is a Floater-Hormann barycentric-rational
// interpolator, robust to unevenly spaced nodes without Runge oscillation.
// d is the blending-order parameter (typically 3-5); d=0 gives Berrut's
// rational interpolant, and d=n-1 (n nodes) the polynomial (barycentric
// Lagrange) interpolant.
type BarycentricRational struct {
	X, Y  []float64
	W     []float64
	d     int
}

// NewBarycentricRational builds a Floater-Hormann interpolator of order d
// over the given (sorted) nodes.
func NewBarycentricRational(x, y []float64, d int) *BarycentricRational {
	xs, ys := sortedCopy(x, y)
	n := len(xs)
	if d >= n {
		d = n - 1
	}
	w := make([]float64, n)
	for k := 0; k < n; k++ {
		lo := k - d
		if lo < 0 {
			lo = 0
		}
		hi := k
		if hi > n-1-d {
			hi = n - 1 - d
		}
		var sum float64
		for i := lo; i <= hi; i++ {
			prod := 1.0
			for j := i; j <= i+d; j++ {
				if j == k {
					continue
				}
				prod *= xs[k] - xs[j]
			}
			sign := 1.0
			if i%2 == 1 {
				sign = -1.0
			}
			sum += sign / prod
		}
		w[k] = sum
	}
	return &BarycentricRational{X: xs, Y: ys, W: w, d: d}
}

// Evaluate implements Interpolator.
func (b *BarycentricRational) Evaluate(x float64) float64 {
	var num, den float64
	for i, xi := range b.X {
		if x == xi {
			return b.Y[i]
		}
		t := b.W[i] / (x - xi)
		num += t * b.Y[i]
		den += t
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// Derivative implements Interpolator via a central finite difference; an
// analytic barycentric derivative is a worthwhile extension but not
// required for the dynamics/trajectory consumers in this module.
func (b *BarycentricRational) Derivative(x float64) float64 {
	const h = 1e-6
	return (b.Evaluate(x+h) - b.Evaluate(x-h)) / (2 * h)
}

func sortedCopy(x, y []float64) ([]float64, []float64) {
	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return x[idx[i]] < x[idx[j]] })
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, j := range idx {
		xs[i] = x[j]
		ys[i] = y[j]
	}
	return xs, ys
}
