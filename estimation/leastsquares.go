// Package estimation implements damped Gauss-Newton/Levenberg-Marquardt
// least-squares orbit determination with a finite-difference Jacobian,
// ported from smd/estimate.go's OrbitEstimate (itself a sequential
// extended-Kalman-filter estimator) generalized to a batch least-squares
// formulation that wraps a propagator.Propagator as its
// observation-generating model, reusing gonum/matrix for the
// normal-equations linear algebra.
package estimation

import (
	"math"

	"github.com/gonum/matrix/mat64"

	"github.com/sabiduria-space/astrocore/errkind"
	"github.com/sabiduria-space/astrocore/logging"
)

// Model maps a parameter vector to a vector of predicted observations.
// ODLeastSquaresSolver's propagator-backed Model is the primary consumer;
// Model is kept abstract so LeastSquaresSolver itself has no dependency on
// propagation machinery.
type Model func(params []float64) ([]float64, error)

// LeastSquaresSolver performs damped Gauss-Newton (Levenberg) iteration to
// minimize the sum of squared residuals between Model(params) and a fixed
// set of observations, using a central-difference Jacobian.
type LeastSquaresSolver struct {
	Model           Model
	MaxIterations   int
	Tolerance       float64 // convergence threshold on relative cost decrease
	FiniteDiffStep  float64 // relative step for the central-difference Jacobian, floored by FiniteDiffFloor
	FiniteDiffFloor float64
	InitialDamping  float64
	// Logger narrates each Gauss-Newton/Levenberg iteration (cost, damping),
	// in smd's kitlog style (smd/estimate.go's per-step estimator
	// logging). Left nil it is treated as logging.Discard.
	Logger logging.Logger
}

// NewLeastSquaresSolver returns a LeastSquaresSolver with sane defaults
// (100 iterations, 1e-10 relative tolerance, 1e-6 relative finite-
// difference step floored at 1e-8, initial Levenberg damping 1e-3).
func NewLeastSquaresSolver(model Model) *LeastSquaresSolver {
	return &LeastSquaresSolver{
		Model:           model,
		MaxIterations:   100,
		Tolerance:       1e-10,
		FiniteDiffStep:  1e-6,
		FiniteDiffFloor: 1e-8,
		InitialDamping:  1e-3,
		Logger:          logging.New("estimation", "least-squares"),
	}
}

func (ls *LeastSquaresSolver) logger() logging.Logger {
	if ls.Logger == nil {
		return logging.Discard
	}
	return ls.Logger
}

// Solution is the outcome of a least-squares solve.
type Solution struct {
	Params     []float64
	Residuals  []float64
	Cost       float64
	Iterations int
	Converged  bool
}

// Solve iterates from params0 to minimize ||Model(params)-observations||^2.
func (ls *LeastSquaresSolver) Solve(params0, observations []float64) (Solution, error) {
	params := make([]float64, len(params0))
	copy(params, params0)
	damping := ls.InitialDamping
	prevCost := math.Inf(1)

	for iter := 0; iter < ls.MaxIterations; iter++ {
		predicted, err := ls.Model(params)
		if err != nil {
			return Solution{}, err
		}
		residuals := make([]float64, len(observations))
		cost := 0.0
		for i := range observations {
			residuals[i] = observations[i] - predicted[i]
			cost += residuals[i] * residuals[i]
		}

		if math.Abs(prevCost-cost) < ls.Tolerance*math.Max(1, prevCost) && iter > 0 {
			ls.logger().Log("level", "notice", "status", "converged", "iteration", iter, "cost", cost)
			return Solution{Params: params, Residuals: residuals, Cost: cost, Iterations: iter, Converged: true}, nil
		}

		jac, err := ls.jacobian(params, len(observations))
		if err != nil {
			return Solution{}, err
		}

		jacM := mat64.NewDense(len(observations), len(params), jac)
		var jtj mat64.Dense
		jtj.Mul(jacM.T(), jacM)
		for i := 0; i < len(params); i++ {
			jtj.Set(i, i, jtj.At(i, i)*(1+damping))
		}
		residM := mat64.NewVector(len(residuals), residuals)
		var jtr mat64.Dense
		jtr.Mul(jacM.T(), residM)

		var jtjInv mat64.Dense
		if err := jtjInv.Inverse(&jtj); err != nil {
			damping *= 10
			if damping > 1e8 {
				return Solution{Params: params, Residuals: residuals, Cost: cost, Iterations: iter, Converged: false},
					errkind.Wrap(errkind.NonConvergent, "estimation: normal equations singular under maximum damping", err)
			}
			continue
		}
		var delta mat64.Dense
		delta.Mul(&jtjInv, &jtr)

		candidate := make([]float64, len(params))
		for i := range candidate {
			candidate[i] = params[i] + delta.At(i, 0)
		}
		candPredicted, err := ls.Model(candidate)
		if err != nil {
			return Solution{}, err
		}
		candCost := 0.0
		for i := range observations {
			r := observations[i] - candPredicted[i]
			candCost += r * r
		}
		if candCost < cost {
			params = candidate
			prevCost = cost
			damping = math.Max(damping/10, 1e-12)
			ls.logger().Log("level", "info", "iteration", iter, "cost", candCost, "damping", damping)
		} else {
			damping *= 10
			prevCost = cost
			if damping > 1e12 {
				ls.logger().Log("level", "critical", "status", "non-convergent", "iteration", iter, "damping", damping)
				return Solution{Params: params, Residuals: residuals, Cost: cost, Iterations: iter, Converged: false},
					errkind.New(errkind.NonConvergent, "estimation: damping exceeded bound without cost improvement")
			}
			ls.logger().Log("level", "info", "iteration", iter, "status", "rejected", "cost", cost, "damping", damping)
		}
	}
	ls.logger().Log("level", "critical", "status", "non-convergent", "iteration", ls.MaxIterations)
	return Solution{Params: params, Iterations: ls.MaxIterations, Converged: false},
		errkind.New(errkind.NonConvergent, "estimation: exceeded maximum iterations")
}

// jacobian computes the central-difference Jacobian of Model at params,
// with the finite-difference step relative to each parameter and floored
// to avoid vanishing at parameters near zero.
func (ls *LeastSquaresSolver) jacobian(params []float64, numObservations int) ([]float64, error) {
	n := len(params)
	jac := make([]float64, numObservations*n)
	for j := 0; j < n; j++ {
		h := ls.FiniteDiffStep * math.Max(math.Abs(params[j]), 1)
		if h < ls.FiniteDiffFloor {
			h = ls.FiniteDiffFloor
		}
		plus := make([]float64, n)
		minus := make([]float64, n)
		copy(plus, params)
		copy(minus, params)
		plus[j] += h
		minus[j] -= h
		fPlus, err := ls.Model(plus)
		if err != nil {
			return nil, err
		}
		fMinus, err := ls.Model(minus)
		if err != nil {
			return nil, err
		}
		for i := 0; i < numObservations; i++ {
			jac[i*n+j] = (fPlus[i] - fMinus[i]) / (2 * h)
		}
	}
	return jac, nil
}
