package estimation

import (
	"errors"
	"math"
	"testing"
)

func TestSolveConvergesOnExactLinearFit(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	model := func(params []float64) ([]float64, error) {
		out := make([]float64, len(xs))
		for i, x := range xs {
			out[i] = params[0] + params[1]*x
		}
		return out, nil
	}
	observations := make([]float64, len(xs))
	for i, x := range xs {
		observations[i] = 2 + 3*x
	}

	ls := NewLeastSquaresSolver(model)
	sol, err := ls.Solve([]float64{0, 0}, observations)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if !sol.Converged {
		t.Fatal("expected convergence on an exactly-fitting linear model")
	}
	if math.Abs(sol.Params[0]-2) > 1e-4 || math.Abs(sol.Params[1]-3) > 1e-4 {
		t.Fatalf("expected params ~[2,3], got %v", sol.Params)
	}
	if sol.Cost > 1e-6 {
		t.Fatalf("expected near-zero residual cost, got %f", sol.Cost)
	}
}

func TestSolvePropagatesModelError(t *testing.T) {
	boom := errors.New("boom")
	model := func(params []float64) ([]float64, error) { return nil, boom }
	ls := NewLeastSquaresSolver(model)
	_, err := ls.Solve([]float64{0}, []float64{1})
	if !errors.Is(err, boom) {
		t.Fatalf("expected propagated model error, got %v", err)
	}
}

func TestSolveFailsToConvergeWithinIterationBudget(t *testing.T) {
	// A model that predicts a constant never fits a moving target: the
	// residual never shrinks, so the solver should exhaust its budget.
	model := func(params []float64) ([]float64, error) { return []float64{0}, nil }
	ls := NewLeastSquaresSolver(model)
	ls.MaxIterations = 5
	_, err := ls.Solve([]float64{0}, []float64{1000})
	if err == nil {
		t.Fatal("expected a non-convergence error when the model cannot fit the observation")
	}
}
