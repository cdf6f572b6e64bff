package coords

import (
	"time"

	"github.com/sabiduria-space/astrocore/errkind"
	"github.com/sabiduria-space/astrocore/frame"
)

type entry struct {
	subset Subset
	offset int
}

// Broker maps coordinate-subset identities to their (offset, size) within a
// flat coordinate vector. Insertion-ordered; once present, a subset's offset
// never changes. Ported from smd's implicit hardcoded layout
// (GaussianVOP's fixed s[0..6]) generalized into an explicit, open registry.
type Broker struct {
	order   []Identity
	entries map[Identity]entry
	total   int
}

// NewBroker returns an empty Broker.
func NewBroker() *Broker {
	return &Broker{entries: make(map[Identity]entry)}
}

// Add registers a subset, returning its offset. Idempotent on identity: a
// subset already present returns its existing offset unchanged.
func (b *Broker) Add(s Subset) int {
	id := identityOf(s)
	if e, ok := b.entries[id]; ok {
		return e.offset
	}
	offset := b.total
	b.entries[id] = entry{subset: s, offset: offset}
	b.order = append(b.order, id)
	b.total += s.Size()
	return offset
}

// Size returns the total coordinate count across all registered subsets.
func (b *Broker) Size() int { return b.total }

// SubsetCount returns the number of distinct subsets registered.
func (b *Broker) SubsetCount() int { return len(b.order) }

// Subsets returns the registered subsets in insertion order.
func (b *Broker) Subsets() []Subset {
	out := make([]Subset, len(b.order))
	for i, id := range b.order {
		out[i] = b.entries[id].subset
	}
	return out
}

// Contains reports whether s (by identity) is registered.
func (b *Broker) Contains(s Subset) bool {
	_, ok := b.entries[identityOf(s)]
	return ok
}

// Index returns the (offset, size) of s within the flat vector.
func (b *Broker) Index(s Subset) (offset, size int, err error) {
	e, ok := b.entries[identityOf(s)]
	if !ok {
		return 0, 0, errkind.New(errkind.SubsetNotRegistered, s.Name())
	}
	return e.offset, e.subset.Size(), nil
}

// Extract returns the slice of v corresponding to subset s.
func (b *Broker) Extract(v []float64, s Subset) ([]float64, error) {
	offset, size, err := b.Index(s)
	if err != nil {
		return nil, err
	}
	if offset+size > len(v) {
		return nil, errkind.New(errkind.OutOfRange, s.Name())
	}
	return v[offset : offset+size], nil
}

// ExtractMany returns the concatenation of v's slices for each subset in ss,
// in the order given (used to build a dynamics' per-call gather buffer).
func (b *Broker) ExtractMany(v []float64, ss []Subset) ([]float64, error) {
	out := make([]float64, 0, len(ss))
	for _, s := range ss {
		sub, err := b.Extract(v, s)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

// Reframe rebuilds v subset-by-subset from `from` into `to`, each subset
// receiving the full vector and the broker so composite subsets can locate
// their dependencies.
func (b *Broker) Reframe(v []float64, from, to frame.Frame, instant time.Time) ([]float64, error) {
	out := make([]float64, len(v))
	copy(out, v)
	for _, id := range b.order {
		e := b.entries[id]
		reframed, err := e.subset.InFrame(v, b, from, to, instant)
		if err != nil {
			return nil, err
		}
		if len(reframed) != e.subset.Size() {
			return nil, errkind.New(errkind.BrokerMismatch, e.subset.Name()+" reframe size mismatch")
		}
		copy(out[e.offset:e.offset+e.subset.Size()], reframed)
	}
	return out, nil
}

// AddVectors combines two vectors subset-by-subset using each subset's Add.
func (b *Broker) AddVectors(a, c []float64) ([]float64, error) {
	return b.combine(a, c, func(s Subset, x, y []float64) []float64 { return s.Add(x, y) })
}

// SubtractVectors combines two vectors subset-by-subset using each subset's Subtract.
func (b *Broker) SubtractVectors(a, c []float64) ([]float64, error) {
	return b.combine(a, c, func(s Subset, x, y []float64) []float64 { return s.Subtract(x, y) })
}

func (b *Broker) combine(a, c []float64, op func(Subset, []float64, []float64) []float64) ([]float64, error) {
	if len(a) != b.total || len(c) != b.total {
		return nil, errkind.New(errkind.OutOfRange, "vector length does not match broker total size")
	}
	out := make([]float64, b.total)
	for _, id := range b.order {
		e := b.entries[id]
		av := a[e.offset : e.offset+e.subset.Size()]
		cv := c[e.offset : e.offset+e.subset.Size()]
		copy(out[e.offset:e.offset+e.subset.Size()], op(e.subset, av, cv))
	}
	return out, nil
}
