package estimation

import (
	"github.com/sabiduria-space/astrocore/state"
	"github.com/sabiduria-space/astrocore/state/coords"
)

func positionVelocity(s state.State) (r, v []float64, err error) {
	r, err = s.Extract(coords.CartesianPosition())
	if err != nil {
		return nil, nil, err
	}
	v, err = s.Extract(coords.CartesianVelocity())
	if err != nil {
		return nil, nil, err
	}
	return r, v, nil
}
