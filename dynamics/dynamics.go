// Package dynamics implements the force/contribution model:
// each Dynamics contributor declares the coordinate subsets it reads and
// writes, and a Propagator (package propagator) assembles the global
// right-hand side from the registered contributors. Ported from
// smd.Perturbations' additive perturbation model, generalized from a
// hardcoded 7-slot vector to the broker-driven coordinate model.
package dynamics

import (
	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/state/coords"
)

// Dynamics is a single contributor to a global equation of motion. It
// declares the coordinate subsets it reads (its inputs, gathered from the
// full state vector) and writes (its outputs, scattered back into the
// global derivative vector).
type Dynamics interface {
	Name() string
	Reads() []coords.Subset
	Writes() []coords.Subset
	// Compute returns the time-derivative contribution for each subset in
	// Writes(), in order, given the gathered read values at time t (seconds
	// since the propagation epoch) expressed in fr.
	Compute(t float64, reads []float64, fr frame.Frame) ([]float64, error)
}

// readWriteBase is embedded by concrete Dynamics to implement the
// boilerplate Reads()/Writes() accessors.
type readWriteBase struct {
	reads  []coords.Subset
	writes []coords.Subset
}

func (b readWriteBase) Reads() []coords.Subset  { return b.reads }
func (b readWriteBase) Writes() []coords.Subset { return b.writes }
