// Package state implements the State tuple (instant, coordinates, frame,
// broker) described in , reducible
// onto a subset of its broker, and expandable into a larger template.
// Ported from smd.Orbit's immutable-after-construction R/V cache model,
// generalized from a hardcoded 6-element Cartesian vector to the
// broker-driven coordinate model.
package state

import (
	"time"

	"github.com/sabiduria-space/astrocore/errkind"
	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/state/coords"
)

// State is an immutable snapshot: an instant, a flat coordinate vector, the
// frame it is expressed in, and the broker describing its layout.
type State struct {
	Instant     time.Time
	Coordinates []float64
	Frame       frame.Frame
	Broker      *coords.Broker
	undefined   bool
}

// Undefined is the distinguished State variant carrying no coordinates.
var Undefined = State{undefined: true}

// IsUndefined reports whether this is the Undefined sentinel.
func (s State) IsUndefined() bool { return s.undefined }

// New constructs a State. Coordinates must match broker.Size().
func New(instant time.Time, coordinates []float64, fr frame.Frame, broker *coords.Broker) (State, error) {
	if broker == nil || len(coordinates) != broker.Size() {
		return State{}, errkind.New(errkind.OutOfRange, "coordinate vector length does not match broker size")
	}
	cp := make([]float64, len(coordinates))
	copy(cp, coordinates)
	return State{Instant: instant, Coordinates: cp, Frame: fr, Broker: broker}, nil
}

// Extract returns the slice of coordinates for subset s.
func (s State) Extract(subset coords.Subset) ([]float64, error) {
	if s.undefined {
		return nil, errkind.New(errkind.Undefined, "state has no coordinates")
	}
	return s.Broker.Extract(s.Coordinates, subset)
}

// InFrame returns a new State with coordinates reframed into `to`.
func (s State) InFrame(to frame.Frame) (State, error) {
	if s.undefined {
		return State{}, errkind.New(errkind.Undefined, "state has no coordinates")
	}
	reframed, err := s.Broker.Reframe(s.Coordinates, s.Frame, to, s.Instant)
	if err != nil {
		return State{}, err
	}
	return State{Instant: s.Instant, Coordinates: reframed, Frame: to, Broker: s.Broker}, nil
}

// Reduce projects this state onto a (sub)set of its broker's subsets,
// returning a new State with a fresh broker containing only those subsets,
// in the order given.
func (s State) Reduce(subsets ...coords.Subset) (State, error) {
	if s.undefined {
		return State{}, errkind.New(errkind.Undefined, "state has no coordinates")
	}
	reducedBroker := coords.NewBroker()
	var out []float64
	for _, subset := range subsets {
		reducedBroker.Add(subset)
		v, err := s.Broker.Extract(s.Coordinates, subset)
		if err != nil {
			return State{}, err
		}
		out = append(out, v...)
	}
	return State{Instant: s.Instant, Coordinates: out, Frame: s.Frame, Broker: reducedBroker}, nil
}

// Expand injects this (possibly reduced) state's coordinates into a larger
// template broker, filling any subset not present in this state from
// defaults (indexed by the template broker's layout).
func (s State) Expand(template *coords.Broker, defaults []float64) (State, error) {
	if s.undefined {
		return State{}, errkind.New(errkind.Undefined, "state has no coordinates")
	}
	if len(defaults) != template.Size() {
		return State{}, errkind.New(errkind.OutOfRange, "defaults length does not match template broker size")
	}
	out := make([]float64, template.Size())
	copy(out, defaults)
	for _, subset := range s.Broker.Subsets() {
		srcOffset, size, err := s.Broker.Index(subset)
		if err != nil {
			return State{}, err
		}
		dstOffset, dstSize, err := template.Index(subset)
		if err != nil {
			// Not every reduced subset need appear in the template; skip silently
			// only when the template genuinely doesn't carry it.
			continue
		}
		if dstSize != size {
			return State{}, errkind.New(errkind.BrokerMismatch, subset.Name()+" size mismatch during expand")
		}
		copy(out[dstOffset:dstOffset+dstSize], s.Coordinates[srcOffset:srcOffset+size])
	}
	return State{Instant: s.Instant, Coordinates: out, Frame: s.Frame, Broker: template}, nil
}

// Equals reports elementwise equality over shared subsets after frame
// reconciliation, within the given per-component tolerance.
func (s State) Equals(other State, tol float64) (bool, error) {
	if s.undefined || other.undefined {
		return s.undefined == other.undefined, nil
	}
	otherInS, err := other.InFrame(s.Frame)
	if err != nil {
		return false, err
	}
	for _, subset := range s.Broker.Subsets() {
		if !otherInS.Broker.Contains(subset) {
			continue
		}
		a, err := s.Extract(subset)
		if err != nil {
			return false, err
		}
		b, err := otherInS.Extract(subset)
		if err != nil {
			return false, err
		}
		for i := range a {
			if abs(a[i]-b[i]) > tol {
				return false, nil
			}
		}
	}
	return true, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
