package estimation

import (
	"math"
	"testing"
	"time"

	"github.com/sabiduria-space/astrocore/celestial"
	"github.com/sabiduria-space/astrocore/dynamics"
	"github.com/sabiduria-space/astrocore/estimation/station"
	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/integrator"
	"github.com/sabiduria-space/astrocore/propagator"
	"github.com/sabiduria-space/astrocore/state/coords"
)

func TestODLeastSquaresSolverRecoversPerturbedInitialState(t *testing.T) {
	broker := coords.NewBroker()
	broker.Add(coords.CartesianPosition())
	broker.Add(coords.CartesianVelocity())
	fr := frame.Inertial{FrameName: "ECI"}
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	gravity := dynamics.NewCentralBodyGravity(celestial.Earth, epoch)
	prop, err := propagator.New(broker, fr, dynamics.NewPositionDerivative(), gravity)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	solver := integrator.NewSolver(integrator.DormandPrince54(), 1e-10, 1e-12)

	truth := []float64{7000e3, 0, 0, 0, 7546.05, 0}

	st, err := station.New("equator", fr, celestial.Earth.Radius, 0, 0, 0, 0, 0, 0)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	instants := []time.Time{epoch.Add(60 * time.Second), epoch.Add(120 * time.Second), epoch.Add(180 * time.Second)}
	od := NewODLeastSquaresSolver(prop, solver, epoch, 10, []ObservationSchedule{{Station: st, Instants: instants}})

	observations, err := od.predict(truth)
	if err != nil {
		t.Fatalf("err %s", err)
	}

	guess := make([]float64, len(truth))
	copy(guess, truth)
	guess[0] += 1e3 // perturb the initial x position by 1km

	sol, err := od.Solve(guess, observations)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	for i := range truth {
		if math.Abs(sol.Params[i]-truth[i]) > 1 {
			t.Fatalf("expected recovered parameter %d near truth %f, got %f", i, truth[i], sol.Params[i])
		}
	}
}
