// Package rootsolver implements the bracket-and-solve root-finding
// primitive event-condition termination builds on: bisection
// and regula-falsi (Illinois) bracket solving with a guaranteed-bracket
// precondition, and
// a convenience that brackets outward from a single point before solving.
// No smd file implements generic root-finding (smd hardcodes fixed-step
// propagation and tests its own Stop() predicate each step instead); this
// package is grounded on that same shrinking-interval idea, generalized to
// an explicit interface because the event package needs root-finding for
// arbitrary scalar crossing functions, not just "has the mission ended".
package rootsolver

import (
	"math"

	"github.com/sabiduria-space/astrocore/errkind"
)

// Func is a scalar function of a single variable (typically time) whose
// root is sought.
type Func func(x float64) (float64, error)

// Result carries the outcome of a root search.
type Result struct {
	Root       float64
	Iterations int
	Converged  bool
}

const defaultMaxIterations = 100

// Bisect finds a root of f within [lo, hi], which must bracket a sign
// change, to within the given absolute tolerance on x.
func Bisect(f Func, lo, hi, tol float64) (Result, error) {
	flo, err := f(lo)
	if err != nil {
		return Result{}, err
	}
	fhi, err := f(hi)
	if err != nil {
		return Result{}, err
	}
	if sameSign(flo, fhi) {
		return Result{}, errkind.New(errkind.NoBracket, "bisect: [lo,hi] does not bracket a root")
	}
	for i := 0; i < defaultMaxIterations; i++ {
		mid := 0.5 * (lo + hi)
		fmid, err := f(mid)
		if err != nil {
			return Result{}, err
		}
		if math.Abs(hi-lo) < tol || fmid == 0 {
			return Result{Root: mid, Iterations: i + 1, Converged: true}, nil
		}
		if sameSign(fmid, flo) {
			lo, flo = mid, fmid
		} else {
			hi, fhi = mid, fmid
		}
	}
	return Result{Root: 0.5 * (lo + hi), Iterations: defaultMaxIterations, Converged: false},
		errkind.New(errkind.NonConvergent, "bisect: exceeded maximum iterations")
}

// SolveBracket finds a root of f within [lo, hi] using regula-falsi
// (false-position) with Illinois anti-stagnation damping, a quicker-
// converging alternative to bisection that still requires a verified
// bracket. It plays the role of TOMS-748-family bracketed solvers without
// reimplementing the full algorithm's inverse-cubic extrapolation.
func SolveBracket(f Func, lo, hi, tol float64) (Result, error) {
	flo, err := f(lo)
	if err != nil {
		return Result{}, err
	}
	fhi, err := f(hi)
	if err != nil {
		return Result{}, err
	}
	if sameSign(flo, fhi) {
		return Result{}, errkind.New(errkind.NoBracket, "solve-bracket: [lo,hi] does not bracket a root")
	}
	var sideLo, sideHi int
	for i := 0; i < defaultMaxIterations; i++ {
		x := (lo*fhi - hi*flo) / (fhi - flo)
		fx, err := f(x)
		if err != nil {
			return Result{}, err
		}
		if math.Abs(fx) < tol || math.Abs(hi-lo) < tol {
			return Result{Root: x, Iterations: i + 1, Converged: true}, nil
		}
		if sameSign(fx, flo) {
			lo, flo = x, fx
			sideLo++
			if sideLo >= 2 {
				fhi /= 2
				sideLo = 0
			}
			sideHi = 0
		} else {
			hi, fhi = x, fx
			sideHi++
			if sideHi >= 2 {
				flo /= 2
				sideHi = 0
			}
			sideLo = 0
		}
	}
	return Result{Root: 0.5 * (lo + hi), Iterations: defaultMaxIterations, Converged: false},
		errkind.New(errkind.NonConvergent, "solve-bracket: exceeded maximum iterations")
}

// BracketAndSolve searches outward from x0 in steps of initialStep
// (doubling each failed attempt, up to maxExpansions) to find a sign
// change, then solves within the resulting bracket via SolveBracket.
func BracketAndSolve(f Func, x0, initialStep, tol float64, maxExpansions int) (Result, error) {
	f0, err := f(x0)
	if err != nil {
		return Result{}, err
	}
	if f0 == 0 {
		return Result{Root: x0, Iterations: 0, Converged: true}, nil
	}
	step := initialStep
	lo, hi := x0, x0
	flo := f0
	for i := 0; i < maxExpansions; i++ {
		hi = lo + step
		fhi, err := f(hi)
		if err != nil {
			return Result{}, err
		}
		if !sameSign(flo, fhi) {
			if lo > hi {
				lo, hi = hi, lo
			}
			return SolveBracket(f, lo, hi, tol)
		}
		lo = hi
		flo = fhi
		step *= 2
	}
	return Result{}, errkind.New(errkind.NoBracket, "bracket-and-solve: no sign change found within expansion budget")
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0) || (a == 0 && b == 0)
}
