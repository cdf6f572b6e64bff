package dynamics

import (
	"github.com/sabiduria-space/astrocore/errkind"
	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/interp"
	"github.com/sabiduria-space/astrocore/state/coords"
)

// Tabulated is a Dynamics contributor that evaluates one barycentric-
// rational interpolator per output column against a relative time offset.
// It has no smd-file analogue (smd has no tabulated
// force model); grounded on the interp package's Floater-Hormann
// implementation and the gather/scatter contract the rest of this package
// follows.
type Tabulated struct {
	readWriteBase
	Epoch         float64 // seconds since propagation epoch that t=0 of the table refers to
	Interpolators []interp.Interpolator
}

// NewTabulated returns a Tabulated contributor writing the given subset
// (its size must equal len(interpolators)) and reading nothing from the
// state vector (purely a function of time).
func NewTabulated(writes coords.Subset, epoch float64, interpolators []interp.Interpolator) (*Tabulated, error) {
	if writes.Size() != len(interpolators) {
		return nil, errkind.New(errkind.InvalidConfiguration, "tabulated: interpolator count does not match subset size")
	}
	return &Tabulated{
		readWriteBase: readWriteBase{writes: []coords.Subset{writes}},
		Epoch:         epoch,
		Interpolators: interpolators,
	}, nil
}

// Name implements Dynamics.
func (d *Tabulated) Name() string { return "tabulated" }

// Compute implements Dynamics.
func (d *Tabulated) Compute(t float64, reads []float64, fr frame.Frame) ([]float64, error) {
	rel := t - d.Epoch
	out := make([]float64, len(d.Interpolators))
	for i, it := range d.Interpolators {
		out[i] = it.Evaluate(rel)
	}
	return out, nil
}
