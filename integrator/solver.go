package integrator

import (
	"math"

	"github.com/sabiduria-space/astrocore/errkind"
	"github.com/sabiduria-space/astrocore/rootsolver"
)

// Observer is called after every accepted step, in the manner of
// smd.Mission.SetState's per-step logging/history hook.
type Observer func(t float64, y []float64)

// ConditionEvaluator is the minimal surface Solver needs from an event
// condition: a signed crossing function of time, sampled at candidate times
// within [tLo, tHi]. The event package's Condition, combined with a
// Propagator's state-at-time query (which re-integrates from the initial
// state to each candidate time), satisfies this.
type ConditionEvaluator func(t float64) (float64, error)

// Solver drives a Stepper across a time span with optional PI adaptive
// step-size control. Where smd.Mission.Propagate handed the whole span to a
// single blocking library call, Solver owns an explicit loop so it can
// intercept each step for observation and event detection.
type Solver struct {
	Stepper   Stepper
	RelTol    float64
	AbsTol    float64
	MinStep   float64
	MaxStep   float64
	// SafetyFactor and the PI exponents follow Hairer/Wanner/Norsett's
	// standard controller (as used by most adaptive ODE45-style solvers).
	SafetyFactor float64

	prevErrNorm float64
}

// NewSolver returns a Solver. For non-adaptive steppers (RK4), RelTol/AbsTol
// are ignored and the step size is held fixed at the Integrate call's h.
func NewSolver(stepper Stepper, relTol, absTol float64) *Solver {
	return &Solver{
		Stepper:      stepper,
		RelTol:       relTol,
		AbsTol:       absTol,
		MinStep:      1e-6,
		MaxStep:      86400,
		SafetyFactor: 0.9,
		prevErrNorm:  1,
	}
}

// Integrate advances y0 from t0 to t1 using an initial step hint h0,
// returning the final state. It does not invoke an observer or check any
// termination condition beyond reaching t1.
func (s *Solver) Integrate(f Func, t0, t1, h0 float64, y0 []float64) ([]float64, error) {
	y, _, err := s.integrate(f, t0, t1, h0, y0, nil, nil)
	return y, err
}

// IntegrateWithObserver is Integrate, additionally invoking obs after every
// accepted step (mirroring smd.Mission.SetState's per-step history push).
func (s *Solver) IntegrateWithObserver(f Func, t0, t1, h0 float64, y0 []float64, obs Observer) ([]float64, error) {
	y, _, err := s.integrate(f, t0, t1, h0, y0, obs, nil)
	return y, err
}

// ConditionResult reports how IntegrateUntilCondition terminated.
type ConditionResult struct {
	Triggered   bool
	TriggerTime float64
	FinalState  []float64
}

// IntegrateUntilCondition advances y0 from t0 toward t1, invoking obs after
// every accepted step and cond after every accepted step to test for a
// sign change since the previous step. On a detected sign change, the step
// spanning the crossing becomes a bracket handed to rootsolver.SolveBracket
// to refine the triggering instant, and the final state is re-integrated
// to exactly that instant. If t1 is reached without a trigger,
// ConditionResult.Triggered is false.
func (s *Solver) IntegrateUntilCondition(f Func, t0, t1, h0 float64, y0 []float64, obs Observer, cond ConditionEvaluator, tol float64) (ConditionResult, error) {
	y, bracket, err := s.integrate(f, t0, t1, h0, y0, obs, cond)
	if err != nil {
		return ConditionResult{}, err
	}
	if bracket == nil {
		return ConditionResult{FinalState: y}, nil
	}
	root, err := rootsolver.SolveBracket(rootsolver.Func(cond), bracket.lo, bracket.hi, tol)
	if err != nil {
		return ConditionResult{}, err
	}
	yAtTrigger, err := s.Integrate(f, t0, root.Root, h0, y0)
	if err != nil {
		return ConditionResult{}, err
	}
	return ConditionResult{Triggered: true, TriggerTime: root.Root, FinalState: yAtTrigger}, nil
}

type timeBracket struct{ lo, hi float64 }

func (s *Solver) integrate(f Func, t0, t1, h0 float64, y0 []float64, obs Observer, cond ConditionEvaluator) ([]float64, *timeBracket, error) {
	if t1 == t0 {
		return y0, nil, nil
	}
	dir := 1.0
	if t1 < t0 {
		dir = -1.0
	}
	t := t0
	y := make([]float64, len(y0))
	copy(y, y0)
	h := math.Abs(h0) * dir
	if h == 0 {
		return nil, nil, errkind.New(errkind.InvalidConfiguration, "integrator: zero initial step")
	}

	var prevCondVal float64
	var havePrevCond bool
	if cond != nil {
		v, err := cond(t)
		if err != nil {
			return nil, nil, err
		}
		prevCondVal = v
		havePrevCond = true
	}

	for {
		remaining := (t1 - t) * dir
		if remaining <= 0 {
			break
		}
		if math.Abs(h) > remaining {
			h = remaining * dir
		}
		yNext, errEst, err := s.Stepper.Step(f, t, h, y)
		if err != nil {
			return nil, nil, err
		}
		hTaken := h
		if s.Stepper.Adaptive() && errEst != nil {
			accepted, hNext := s.piControl(h, y, yNext, errEst)
			if !accepted {
				h = hNext
				if math.Abs(h) < s.MinStep {
					return nil, nil, errkind.New(errkind.StepSizeUnderflow, "integrator: step size below minimum while satisfying tolerance")
				}
				continue
			}
			h = hNext
		}
		tNext := t + hTaken
		if obs != nil {
			obs(tNext, yNext)
		}
		if cond != nil {
			v, err := cond(tNext)
			if err != nil {
				return nil, nil, err
			}
			if havePrevCond && !sameSign(prevCondVal, v) {
				lo, hi := t, tNext
				if dir < 0 {
					lo, hi = tNext, t
				}
				return yNext, &timeBracket{lo: lo, hi: hi}, nil
			}
			prevCondVal = v
			havePrevCond = true
		}
		t = tNext
		y = yNext
	}
	return y, nil, nil
}

// piControl implements a proportional-integral step-size controller
// (Hairer/Wanner/Norsett's standard embedded-pair controller, as used by
// most production ODE45-style solvers including MATLAB's).
func (s *Solver) piControl(h float64, y, yNext, errEst []float64) (accepted bool, hNext float64) {
	errNorm := 0.0
	for i := range errEst {
		scale := s.AbsTol + s.RelTol*math.Max(math.Abs(y[i]), math.Abs(yNext[i]))
		if scale == 0 {
			scale = s.AbsTol
		}
		r := errEst[i] / scale
		errNorm += r * r
	}
	errNorm = math.Sqrt(errNorm / float64(len(errEst)))
	if errNorm == 0 {
		errNorm = 1e-12
	}
	order := float64(s.Stepper.Order())
	factor := s.SafetyFactor * math.Pow(1/errNorm, 0.7/order) * math.Pow(s.prevErrNorm, 0.4/order)
	factor = math.Max(0.2, math.Min(5, factor))
	newH := h * factor
	if math.Abs(newH) > s.MaxStep {
		newH = math.Copysign(s.MaxStep, newH)
	}
	if errNorm <= 1 {
		s.prevErrNorm = errNorm
		return true, newH
	}
	return false, newH
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0) || (a == 0 && b == 0)
}
