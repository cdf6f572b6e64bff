package state

import (
	"time"

	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/state/coords"
)

// Builder assembles a coordinate vector from named subset values, the
// broker-driven generalization of how smd.NewOrbitFromRV/NewOrbitFromOE
// assemble an Orbit from heterogeneous R/V or orbital-element inputs.
type Builder struct {
	broker *coords.Broker
	values map[coords.Identity][]float64
}

// NewBuilder returns a Builder targeting the given broker.
func NewBuilder(broker *coords.Broker) *Builder {
	return &Builder{broker: broker, values: make(map[coords.Identity][]float64)}
}

// Set stages a value for the given subset; it must already be registered on
// the Builder's broker.
func (b *Builder) Set(subset coords.Subset, value []float64) *Builder {
	if len(value) != subset.Size() {
		panic("state: builder value size mismatch for " + subset.Name())
	}
	b.values[coords.Identity{Name: subset.Name(), Size: subset.Size()}] = value
	return b
}

// Build assembles the State. Any registered subset without a staged value
// defaults to zeros.
func (b *Builder) Build(instant time.Time, fr frame.Frame) (State, error) {
	out := make([]float64, b.broker.Size())
	for _, subset := range b.broker.Subsets() {
		offset, size, err := b.broker.Index(subset)
		if err != nil {
			return State{}, err
		}
		id := coords.Identity{Name: subset.Name(), Size: subset.Size()}
		if v, ok := b.values[id]; ok {
			copy(out[offset:offset+size], v)
		}
	}
	return New(instant, out, fr, b.broker)
}

// MustBuild panics on a build error; for tests and examples that construct
// states from known-valid inputs.
func (b *Builder) MustBuild(instant time.Time, fr frame.Frame) State {
	s, err := b.Build(instant, fr)
	if err != nil {
		panic(err)
	}
	return s
}
