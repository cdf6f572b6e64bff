package trajectory

import (
	"time"

	"github.com/sabiduria-space/astrocore/errkind"
	"github.com/sabiduria-space/astrocore/rootsolver"
	"github.com/sabiduria-space/astrocore/state/coords"
)

// Pass is one orbital revolution, bounded by consecutive ascending-node
// (equatorial-plane, southbound-to-northbound) crossings, per the GLOSSARY's
// "Pass: one orbital revolution segmented by the ascending-node crossing."
// Ported from smd.Orbit.Period()-driven revolution counting in mission.go's
// status logging, generalized into an explicit, reusable segmentation
// operation any Model (not just the live propagation) can run over.
type Pass struct {
	Start, End time.Time
	Index      int
}

// Passes segments [t0, t1] into passes by sampling model's CARTESIAN_POSITION
// z-component at the given step and bisecting each southbound-to-northbound
// sign change (z crossing zero while increasing) with rootsolver.Bisect.
func Passes(model Model, t0, t1 time.Time, step time.Duration, tol time.Duration) ([]Pass, error) {
	if step <= 0 || t1.Before(t0) {
		return nil, errkind.New(errkind.InvalidConfiguration, "passes: invalid interval or step")
	}
	zAt := func(t time.Time) (float64, error) {
		s, err := model.StateAt(t)
		if err != nil {
			return 0, err
		}
		r, err := s.Extract(coords.CartesianPosition())
		if err != nil {
			return 0, err
		}
		return r[2], nil
	}
	toSeconds := func(t time.Time) float64 { return t.Sub(t0).Seconds() }
	fromSeconds := func(sec float64) time.Time { return t0.Add(time.Duration(sec * float64(time.Second))) }
	g := func(sec float64) (float64, error) { return zAt(fromSeconds(sec)) }

	var crossings []time.Time
	prevT := t0
	prevZ, err := zAt(prevT)
	if err != nil {
		return nil, err
	}
	for cur := t0.Add(step); !cur.After(t1); cur = cur.Add(step) {
		z, err := zAt(cur)
		if err != nil {
			return nil, err
		}
		if prevZ < 0 && z >= 0 {
			res, err := rootsolver.Bisect(g, toSeconds(prevT), toSeconds(cur), tol.Seconds())
			if err != nil {
				return nil, err
			}
			crossings = append(crossings, fromSeconds(res.Root))
		}
		prevT, prevZ = cur, z
	}

	if len(crossings) == 0 {
		return nil, nil
	}
	passes := make([]Pass, 0, len(crossings)+1)
	if crossings[0].After(t0) {
		passes = append(passes, Pass{Start: t0, End: crossings[0], Index: 0})
	}
	for i := 0; i+1 < len(crossings); i++ {
		passes = append(passes, Pass{Start: crossings[i], End: crossings[i+1], Index: len(passes)})
	}
	last := crossings[len(crossings)-1]
	if last.Before(t1) {
		passes = append(passes, Pass{Start: last, End: t1, Index: len(passes)})
	}
	return passes, nil
}
