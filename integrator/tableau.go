// Package integrator implements the adaptive Runge-Kutta family: fixed-step
// RK4 plus the Cash-Karp 5(4), Dormand-Prince 5(4) and Fehlberg 7(8) embedded
// pairs, PI step-size control, an observer hook, and event-condition-triggered
// termination via rootsolver. smd.Mission drove its integration with a single
// blocking call to a fixed-step RK4 library; that shape can't host per-step
// observers or mid-step event detection, so this package replaces it with an
// explicit Butcher-tableau engine that owns the step loop directly.
package integrator

import "github.com/sabiduria-space/astrocore/errkind"

// Func is the global right-hand side: given time t and state y, returns
// dy/dt. Propagator.Derivative implements this.
type Func func(t float64, y []float64) ([]float64, error)

// tableau holds a Butcher tableau for an explicit Runge-Kutta method. B is
// the primary (higher-order, advancing) weight set; BStar, if non-nil, is
// the embedded lower-order weight set used for error estimation and
// adaptive step control.
type tableau struct {
	stages int
	c      []float64   // nodes
	a      [][]float64 // lower-triangular coefficients
	b      []float64   // primary weights
	bStar  []float64   // embedded weights, nil for fixed-step methods
	order  int
}

// step advances y by one Runge-Kutta step of size h at time t, returning
// the new state and (if the tableau has an embedded pair) an error
// estimate vector, elementwise, for step-size control.
func (tb tableau) step(f Func, t, h float64, y []float64) (yNext, errEst []float64, err error) {
	n := len(y)
	k := make([][]float64, tb.stages)
	for s := 0; s < tb.stages; s++ {
		yi := make([]float64, n)
		copy(yi, y)
		for j := 0; j < s; j++ {
			aij := tb.a[s][j]
			if aij == 0 {
				continue
			}
			for idx := 0; idx < n; idx++ {
				yi[idx] += h * aij * k[j][idx]
			}
		}
		ki, err := f(t+tb.c[s]*h, yi)
		if err != nil {
			return nil, nil, err
		}
		k[s] = ki
	}
	yNext = make([]float64, n)
	copy(yNext, y)
	for s := 0; s < tb.stages; s++ {
		if tb.b[s] == 0 {
			continue
		}
		for idx := 0; idx < n; idx++ {
			yNext[idx] += h * tb.b[s] * k[s][idx]
		}
	}
	if tb.bStar == nil {
		return yNext, nil, nil
	}
	errEst = make([]float64, n)
	for s := 0; s < tb.stages; s++ {
		db := tb.b[s] - tb.bStar[s]
		if db == 0 {
			continue
		}
		for idx := 0; idx < n; idx++ {
			errEst[idx] += h * db * k[s][idx]
		}
	}
	return yNext, errEst, nil
}

// Stepper is the collaborator interface consumed by Solver: advances a
// state by one step, optionally reporting an embedded error estimate for
// adaptive control.
type Stepper interface {
	Name() string
	Order() int
	// Adaptive reports whether this Stepper supports error-estimated
	// adaptive stepping (false for fixed-step RK4).
	Adaptive() bool
	Step(f Func, t, h float64, y []float64) (yNext, errEst []float64, err error)
}

type tableauStepper struct {
	name string
	tb   tableau
}

// Name implements Stepper.
func (s tableauStepper) Name() string { return s.name }

// Order implements Stepper.
func (s tableauStepper) Order() int { return s.tb.order }

// Adaptive implements Stepper.
func (s tableauStepper) Adaptive() bool { return s.tb.bStar != nil }

// Step implements Stepper.
func (s tableauStepper) Step(f Func, t, h float64, y []float64) ([]float64, []float64, error) {
	if len(y) == 0 {
		return nil, nil, errkind.New(errkind.InvalidConfiguration, "integrator: empty state vector")
	}
	return s.tb.step(f, t, h, y)
}

// RK4 is the classical fixed-step fourth-order Runge-Kutta method (not
// itself adaptive: callers choose a constant step size).
func RK4() Stepper {
	return tableauStepper{name: "rk4", tb: tableau{
		stages: 4,
		c:      []float64{0, 0.5, 0.5, 1},
		a: [][]float64{
			{},
			{0.5},
			{0, 0.5},
			{0, 0, 1},
		},
		b:     []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
		order: 4,
	}}
}

// CashKarp54 is the Cash-Karp embedded 5(4) pair.
func CashKarp54() Stepper {
	return tableauStepper{name: "cash-karp-54", tb: tableau{
		stages: 6,
		c:      []float64{0, 1.0 / 5, 3.0 / 10, 3.0 / 5, 1, 7.0 / 8},
		a: [][]float64{
			{},
			{1.0 / 5},
			{3.0 / 40, 9.0 / 40},
			{3.0 / 10, -9.0 / 10, 6.0 / 5},
			{-11.0 / 54, 5.0 / 2, -70.0 / 27, 35.0 / 27},
			{1631.0 / 55296, 175.0 / 512, 575.0 / 13824, 44275.0 / 110592, 253.0 / 4096},
		},
		b:     []float64{37.0 / 378, 0, 250.0 / 621, 125.0 / 594, 0, 512.0 / 1771},
		bStar: []float64{2825.0 / 27648, 0, 18575.0 / 48384, 13525.0 / 55296, 277.0 / 14336, 1.0 / 4},
		order: 5,
	}}
}

// DormandPrince54 is the Dormand-Prince embedded 5(4) pair, the de facto
// default adaptive stepper for non-stiff ODEs (MATLAB's ode45, most
// astrodynamics propagators).
func DormandPrince54() Stepper {
	return tableauStepper{name: "dormand-prince-54", tb: tableau{
		stages: 7,
		c:      []float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1},
		a: [][]float64{
			{},
			{1.0 / 5},
			{3.0 / 40, 9.0 / 40},
			{44.0 / 45, -56.0 / 15, 32.0 / 9},
			{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
			{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
			{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
		},
		b:     []float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0},
		bStar: []float64{5179.0 / 57600, 0, 7571.0 / 16695, 393.0 / 640, -92097.0 / 339200, 187.0 / 2100, 1.0 / 40},
		order: 5,
	}}
}

// Fehlberg78 is the Fehlberg embedded 7(8) pair, used when very tight
// tolerances or long-horizon propagation call for a higher-order stepper
// than Dormand-Prince 5(4).
func Fehlberg78() Stepper {
	c := []float64{0, 2.0 / 27, 1.0 / 9, 1.0 / 6, 5.0 / 12, 1.0 / 2, 5.0 / 6, 1.0 / 6, 2.0 / 3, 1.0 / 3, 1, 0, 1}
	a := [][]float64{
		{},
		{2.0 / 27},
		{1.0 / 36, 1.0 / 12},
		{1.0 / 24, 0, 1.0 / 8},
		{5.0 / 12, 0, -25.0 / 16, 25.0 / 16},
		{1.0 / 20, 0, 0, 1.0 / 4, 1.0 / 5},
		{-25.0 / 108, 0, 0, 125.0 / 108, -65.0 / 27, 125.0 / 54},
		{31.0 / 300, 0, 0, 0, 61.0 / 225, -2.0 / 9, 13.0 / 900},
		{2, 0, 0, -53.0 / 6, 704.0 / 45, -107.0 / 9, 67.0 / 90, 3},
		{-91.0 / 108, 0, 0, 23.0 / 108, -976.0 / 135, 311.0 / 54, -19.0 / 60, 17.0 / 6, -1.0 / 12},
		{2383.0 / 4100, 0, 0, -341.0 / 164, 4496.0 / 1025, -301.0 / 82, 2133.0 / 4100, 45.0 / 82, 45.0 / 164, 18.0 / 41},
		{3.0 / 205, 0, 0, 0, 0, -6.0 / 41, -3.0 / 205, -3.0 / 41, 3.0 / 41, 6.0 / 41, 0},
		{-1777.0 / 4100, 0, 0, -341.0 / 164, 4496.0 / 1025, -289.0 / 82, 2193.0 / 4100, 51.0 / 82, 33.0 / 164, 12.0 / 41, 0, 1},
	}
	b := []float64{41.0 / 840, 0, 0, 0, 0, 34.0 / 105, 9.0 / 35, 9.0 / 35, 9.0 / 280, 9.0 / 280, 41.0 / 840, 0, 0}
	bStar := []float64{0, 0, 0, 0, 0, 34.0 / 105, 9.0 / 35, 9.0 / 35, 9.0 / 280, 9.0 / 280, 0, 41.0 / 840, 41.0 / 840}
	return tableauStepper{name: "fehlberg-78", tb: tableau{
		stages: 13, c: c, a: a, b: b, bStar: bStar, order: 7,
	}}
}
