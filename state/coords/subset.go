// Package coords implements the coordinate-subset algebra: named, fixed-size
// slices of a flat state vector that can be added, subtracted and reframed,
// and a Broker that lays them out within a single vector. Ported in spirit
// from smd's flat 7-slot Cartesian/GaussianVOP state vectors (mission.go's
// GetState/SetState), generalized from a hardcoded layout to the open,
// broker-driven model this package describes.
package coords

import (
	"time"

	"github.com/sabiduria-space/astrocore/errkind"
	"github.com/sabiduria-space/astrocore/frame"
)

// Subset is a named, fixed-size slice of a flat coordinate vector, with
// frame-aware arithmetic. Identity is (Name, Size): two subsets with the
// same name and size are interchangeable to a Broker.
type Subset interface {
	Name() string
	Size() int
	// Add returns a + b, componentwise, for values of this subset.
	Add(a, b []float64) []float64
	// Subtract returns a - b, componentwise, for values of this subset.
	Subtract(a, b []float64) []float64
	// InFrame returns this subset's value reframed from `from` to `to`.
	// full is the entire state vector (so composite subsets can locate
	// their dependencies via broker), instant is the state's epoch.
	InFrame(full []float64, broker *Broker, from, to frame.Frame, instant time.Time) ([]float64, error)
}

// Identity returns a (Name, Size) pair used as a Broker map key.
type Identity struct {
	Name string
	Size int
}

func identityOf(s Subset) Identity {
	return Identity{Name: s.Name(), Size: s.Size()}
}

// scalarAdd/scalarSubtract implement the trivial componentwise arithmetic
// shared by every unit-size invariant subset (mass, drag coefficient, ...);
// their frame change (scalarSubset.InFrame) is the identity.
func scalarAdd(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

func scalarSubtract(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

// out-of-range guard shared by subsets that need to read a dependency (e.g.
// velocity reading position) out of the full vector via the broker.
func extractDependency(full []float64, broker *Broker, dep Subset) ([]float64, error) {
	v, err := broker.Extract(full, dep)
	if err != nil {
		return nil, errkind.Wrap(errkind.BrokerMismatch, dep.Name()+" required by composite subset", err)
	}
	return v, nil
}
