package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinearInterpolatesBetweenNodes(t *testing.T) {
	l := NewLinear([]float64{0, 1, 2}, []float64{0, 10, 20})
	assert.InDelta(t, 5, l.Evaluate(0.5), 1e-9)
	assert.InDelta(t, 15, l.Evaluate(1.5), 1e-9)
}

func TestLinearSortsUnsortedInput(t *testing.T) {
	l := NewLinear([]float64{2, 0, 1}, []float64{20, 0, 10})
	assert.InDelta(t, 5, l.Evaluate(0.5), 1e-9, "expected nodes sorted by X before interpolating")
}

func TestLinearDerivativeIsSlopeOfSegment(t *testing.T) {
	l := NewLinear([]float64{0, 1, 3}, []float64{0, 10, 30})
	assert.InDelta(t, 10, l.Derivative(2), 1e-9, "expected constant slope 10 over [1,3]")
}

func TestBarycentricRationalInterpolatesLinearDataExactly(t *testing.T) {
	b := NewBarycentricRational([]float64{0, 1, 2, 3}, []float64{0, 2, 4, 6}, 2)
	for _, x := range []float64{0.25, 1.5, 2.75} {
		assert.InDelta(t, 2*x, b.Evaluate(x), 1e-6, "expected exact reconstruction of a linear function at x=%f", x)
	}
}

func TestBarycentricRationalReturnsExactNodeValues(t *testing.T) {
	b := NewBarycentricRational([]float64{0, 1, 2}, []float64{5, 7, 3}, 1)
	assert.Equal(t, 7.0, b.Evaluate(1))
}

func TestBarycentricRationalDerivativeMatchesLinearSlope(t *testing.T) {
	b := NewBarycentricRational([]float64{0, 1, 2, 3}, []float64{0, 3, 6, 9}, 2)
	assert.InDelta(t, 3, b.Derivative(1.5), 1e-4, "expected derivative ~3 for a linear function with slope 3")
}
