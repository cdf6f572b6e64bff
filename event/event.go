// Package event implements the event-condition model:
// scalar and angular conditions that reduce a State to a signed crossing
// function consumed by rootsolver, plus logical composition. Grounded on
// smd/mission.go's Mission.Stop predicate (a hand-written boolean check
// evaluated every integration step), generalized into reusable,
// composable Condition values that the integrator evaluates via root
// finding instead of just a step-and-check boundary.
package event

import (
	"math"

	"github.com/sabiduria-space/astrocore/state"
)

// Criterion selects how a RealCondition's signed value is derived from the
// raw observable relative to its target.
type Criterion uint8

const (
	// AnyCrossing triggers on either a positive-to-negative or
	// negative-to-positive crossing of the target value.
	AnyCrossing Criterion = iota
	// PositiveCrossing triggers only when the observable crosses the target
	// from below to above.
	PositiveCrossing
	// NegativeCrossing triggers only when the observable crosses the target
	// from above to below.
	NegativeCrossing
	// StrictlyPositive is satisfied whenever observable-target > 0; used as
	// a standing predicate rather than a single-crossing trigger.
	StrictlyPositive
	// StrictlyNegative is satisfied whenever observable-target < 0.
	StrictlyNegative
)

// Condition reduces a State at a given time to a signed value whose root
// (for crossing criteria) or sign (for standing criteria) indicates the
// event has occurred.
type Condition interface {
	Name() string
	// Evaluate returns the signed observable, whose sign (or zero-crossing,
	// depending on the condition's Criterion) indicates satisfaction.
	Evaluate(t float64, s state.State) (float64, error)
	// Satisfied reports whether the condition currently holds (used for
	// standing predicates like StrictlyPositive/StrictlyNegative, and by
	// LogicalCondition to combine children without needing a shared root).
	Satisfied(t float64, s state.State) (bool, error)
	// UpdateTarget rebinds a relative target's offset from a reference
	// state (e.g. "fire for +300s from now"). A no-op for
	// conditions with no relative target.
	UpdateTarget(ref state.State) error
}

// TargetKind selects whether a condition's target is an absolute value or
// one offset from a reference state supplied via UpdateTarget.
type TargetKind uint8

const (
	// Absolute targets compare directly against Value.
	Absolute TargetKind = iota
	// Relative targets compare against Value plus an Offset rebound by
	// UpdateTarget from a reference state (e.g. a segment's incoming
	// state).
	Relative
)

// RealCondition triggers when Extractor(s) crosses (or stands in relation
// to) Value+Offset, per the given Criterion:
// Evaluate(s) = raw_eval(s) - (target.value + target.offset).
type RealCondition struct {
	ConditionName string
	Extractor     func(s state.State) (float64, error)
	Value         float64
	Kind          TargetKind
	Offset        float64
	How           Criterion
}

// NewRealCondition returns an absolute RealCondition triggering on
// extractor(s) relative to target.
func NewRealCondition(name string, extractor func(s state.State) (float64, error), target float64, how Criterion) *RealCondition {
	return &RealCondition{ConditionName: name, Extractor: extractor, Value: target, Kind: Absolute, How: how}
}

// NewRelativeRealCondition returns a RealCondition whose effective target
// is offset+value, where offset is rebound by UpdateTarget from a
// reference state before each use — e.g. "raw_eval crosses 300s past the
// segment's incoming state".
func NewRelativeRealCondition(name string, extractor func(s state.State) (float64, error), value float64, how Criterion) *RealCondition {
	return &RealCondition{ConditionName: name, Extractor: extractor, Value: value, Kind: Relative, How: how}
}

// Name implements Condition.
func (c *RealCondition) Name() string { return c.ConditionName }

// UpdateTarget implements Condition: for a Relative target, rebinds Offset
// to Extractor(ref), so the effective target becomes ref's raw value plus
// Value. A no-op for an Absolute target.
func (c *RealCondition) UpdateTarget(ref state.State) error {
	if c.Kind != Relative {
		return nil
	}
	v, err := c.Extractor(ref)
	if err != nil {
		return err
	}
	c.Offset = v
	return nil
}

// Evaluate implements Condition: returns observable - (Value + Offset).
func (c *RealCondition) Evaluate(t float64, s state.State) (float64, error) {
	v, err := c.Extractor(s)
	if err != nil {
		return 0, err
	}
	return v - (c.Value + c.Offset), nil
}

// Satisfied implements Condition.
func (c *RealCondition) Satisfied(t float64, s state.State) (bool, error) {
	v, err := c.Evaluate(t, s)
	if err != nil {
		return false, err
	}
	switch c.How {
	case StrictlyPositive:
		return v > 0, nil
	case StrictlyNegative:
		return v < 0, nil
	default:
		// Crossing criteria are satisfied at the instant sampled only in the
		// degenerate sense of being at (or past) the root; callers drive
		// root-finding via Evaluate for these.
		return v == 0, nil
	}
}

// AngularCondition is a RealCondition specialization for angles wrapped to
// [0, 2*pi): it supports within-range membership in addition to crossing
// (e.g. true anomaly windows, beta-angle bands).
type AngularCondition struct {
	ConditionName string
	Extractor     func(s state.State) (float64, error)
	Lo, Hi        float64 // radians, [0, 2*pi), Lo may be > Hi to mean a wrapped range
}

// NewAngularCondition returns an AngularCondition satisfied when the
// wrapped extracted angle lies within [lo, hi) (wrapping through 0 if
// lo > hi).
func NewAngularCondition(name string, extractor func(s state.State) (float64, error), lo, hi float64) *AngularCondition {
	return &AngularCondition{ConditionName: name, Extractor: extractor, Lo: wrap(lo), Hi: wrap(hi)}
}

// Name implements Condition.
func (c *AngularCondition) Name() string { return c.ConditionName }

// UpdateTarget implements Condition. AngularCondition's Lo/Hi band has no
// relative-target concept; always a no-op.
func (c *AngularCondition) UpdateTarget(ref state.State) error { return nil }

// Evaluate returns a signed distance to the nearest boundary, positive
// inside the range and negative outside, useful for root-bracketing the
// range's entry/exit instants.
func (c *AngularCondition) Evaluate(t float64, s state.State) (float64, error) {
	v, err := c.Extractor(s)
	if err != nil {
		return 0, err
	}
	v = wrap(v)
	inside, distToBoundary := c.membership(v)
	if inside {
		return distToBoundary, nil
	}
	return -distToBoundary, nil
}

// Satisfied implements Condition.
func (c *AngularCondition) Satisfied(t float64, s state.State) (bool, error) {
	v, err := c.Extractor(s)
	if err != nil {
		return false, err
	}
	inside, _ := c.membership(wrap(v))
	return inside, nil
}

func (c *AngularCondition) membership(v float64) (inside bool, distToNearestBoundary float64) {
	if c.Lo <= c.Hi {
		inside = v >= c.Lo && v < c.Hi
	} else {
		inside = v >= c.Lo || v < c.Hi
	}
	dLo := angularDistance(v, c.Lo)
	dHi := angularDistance(v, c.Hi)
	if dLo < dHi {
		return inside, dLo
	}
	return inside, dHi
}

func angularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

func wrap(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// LogicalCombinator selects how LogicalCondition reduces its children.
type LogicalCombinator uint8

const (
	// And is satisfied only when every child is satisfied (min of children).
	And LogicalCombinator = iota
	// Or is satisfied when any child is satisfied (max of children).
	Or
)

// LogicalCondition combines child conditions via And (min) or Or (max).
type LogicalCondition struct {
	ConditionName string
	Children      []Condition
	How           LogicalCombinator
}

// NewLogicalCondition returns a LogicalCondition.
func NewLogicalCondition(name string, how LogicalCombinator, children ...Condition) *LogicalCondition {
	return &LogicalCondition{ConditionName: name, Children: children, How: how}
}

// Name implements Condition.
func (c *LogicalCondition) Name() string { return c.ConditionName }

// UpdateTarget implements Condition by forwarding to every child, so a
// relative target nested anywhere in the combination is rebound.
func (c *LogicalCondition) UpdateTarget(ref state.State) error {
	for _, child := range c.Children {
		if err := child.UpdateTarget(ref); err != nil {
			return err
		}
	}
	return nil
}

// Evaluate returns the min (And) or max (Or) of the children's Evaluate
// values.
func (c *LogicalCondition) Evaluate(t float64, s state.State) (float64, error) {
	if len(c.Children) == 0 {
		return 0, nil
	}
	v, err := c.Children[0].Evaluate(t, s)
	if err != nil {
		return 0, err
	}
	best := v
	for _, child := range c.Children[1:] {
		cv, err := child.Evaluate(t, s)
		if err != nil {
			return 0, err
		}
		if c.How == And {
			if cv < best {
				best = cv
			}
		} else {
			if cv > best {
				best = cv
			}
		}
	}
	return best, nil
}

// Satisfied implements Condition.
func (c *LogicalCondition) Satisfied(t float64, s state.State) (bool, error) {
	for i, child := range c.Children {
		ok, err := child.Satisfied(t, s)
		if err != nil {
			return false, err
		}
		if c.How == And && !ok {
			return false, nil
		}
		if c.How == Or && ok {
			return true, nil
		}
		if i == len(c.Children)-1 && c.How == Or {
			return false, nil
		}
	}
	return c.How == And, nil
}
