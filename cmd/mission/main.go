// Command mission reads a scenario TOML file describing a central body,
// initial Keplerian elements, and a propagation span, then propagates the
// orbit and writes a CSV of sampled states. Ported in spirit from
// smd/cmd/mission's viper-scenario-driven mission runner, rewritten against
// astrocore's Propagator/Kepler/integrator stack instead of smd.Mission.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sabiduria-space/astrocore/celestial"
	"github.com/sabiduria-space/astrocore/dynamics"
	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/integrator"
	"github.com/sabiduria-space/astrocore/propagator"
	"github.com/sabiduria-space/astrocore/state"
	"github.com/sabiduria-space/astrocore/state/coords"
	"github.com/sabiduria-space/astrocore/trajectory"
)

const defaultScenario = "~~unset~~"

var scenario string

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "mission scenario TOML file")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided, pass -scenario path/to/file.toml")
	}
	scenario = strings.TrimSuffix(scenario, ".toml")
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml: %s", scenario, err)
	}

	centralBody, err := bodyFromName(viper.GetString("orbit.body"))
	if err != nil {
		log.Fatal(err)
	}

	broker := coords.NewBroker()
	broker.Add(coords.CartesianPosition())
	broker.Add(coords.CartesianVelocity())
	dragEnabled := viper.GetBool("perturbations.drag")
	if dragEnabled {
		broker.Add(coords.Mass())
		broker.Add(coords.SurfaceArea())
		broker.Add(coords.DragCoefficient())
	}
	fr := frame.Inertial{FrameName: "ECI"}

	epoch := viper.GetTime("mission.start")
	if epoch.IsZero() {
		epoch = time.Now()
	}
	duration := viper.GetDuration("mission.duration")
	if duration == 0 {
		duration = 24 * time.Hour
	}
	stepHint := viper.GetFloat64("mission.step_seconds")
	if stepHint == 0 {
		stepHint = 30
	}

	elements := trajectory.COE{
		SMA:         viper.GetFloat64("orbit.sma"),
		Ecc:         viper.GetFloat64("orbit.ecc"),
		Inc:         viper.GetFloat64("orbit.inc") * math.Pi / 180,
		RAAN:        viper.GetFloat64("orbit.raan") * math.Pi / 180,
		AOP:         viper.GetFloat64("orbit.arg_peri") * math.Pi / 180,
		TrueAnomaly: viper.GetFloat64("orbit.true_anomaly") * math.Pi / 180,
	}
	kepler, err := trajectory.NewKepler(epoch, centralBody.GravitationalParameter(), elements, fr, broker)
	if err != nil {
		log.Fatalf("invalid orbit: %s", err)
	}
	s0, err := kepler.StateAt(epoch)
	if err != nil {
		log.Fatalf("could not seed initial state: %s", err)
	}

	contributors := []dynamics.Dynamics{
		dynamics.NewPositionDerivative(),
		dynamics.NewCentralBodyGravity(centralBody, epoch),
	}
	if dragEnabled {
		r, err := s0.Extract(coords.CartesianPosition())
		if err != nil {
			log.Fatalf("could not extract position: %s", err)
		}
		v, err := s0.Extract(coords.CartesianVelocity())
		if err != nil {
			log.Fatalf("could not extract velocity: %s", err)
		}
		area := viper.GetFloat64("spacecraft.drag_area")
		cd := viper.GetFloat64("spacecraft.drag_coefficient")
		mass := viper.GetFloat64("spacecraft.dry_mass")
		s0, err = state.NewBuilder(broker).
			Set(coords.CartesianPosition(), r).
			Set(coords.CartesianVelocity(), v).
			Set(coords.Mass(), []float64{mass}).
			Set(coords.SurfaceArea(), []float64{area}).
			Set(coords.DragCoefficient(), []float64{cd}).
			Build(epoch, fr)
		if err != nil {
			log.Fatalf("could not seed drag state: %s", err)
		}
		contributors = append(contributors, dynamics.NewAtmosphericDrag(centralBody, epoch))
	}

	prop, err := propagator.New(broker, fr, contributors...)
	if err != nil {
		log.Fatalf("could not assemble propagator: %s", err)
	}
	solver := integrator.NewSolver(integrator.DormandPrince54(), 1e-9, 1e-12)

	out, err := os.Create(viper.GetString("output.path"))
	if err != nil {
		log.Fatalf("could not create output file: %s", err)
	}
	defer out.Close()
	w := csv.NewWriter(out)
	defer w.Flush()
	w.Write([]string{"seconds", "x_m", "y_m", "z_m", "vx_mps", "vy_mps", "vz_mps"})

	samples := int(duration.Seconds() / stepHint)
	instants := make([]float64, samples)
	for i := range instants {
		instants[i] = float64(i+1) * stepHint
	}
	states, err := prop.CalculateStatesAt(solver, s0, instants, stepHint)
	if err != nil {
		log.Fatalf("propagation failed: %s", err)
	}
	for i, s := range states {
		c := s.Coordinates
		w.Write([]string{
			fmt.Sprintf("%f", instants[i]),
			fmt.Sprintf("%f", c[0]), fmt.Sprintf("%f", c[1]), fmt.Sprintf("%f", c[2]),
			fmt.Sprintf("%f", c[3]), fmt.Sprintf("%f", c[4]), fmt.Sprintf("%f", c[5]),
		})
	}
	log.Printf("[info] wrote %d samples over %s", len(states), duration)
}

func bodyFromName(name string) (celestial.Body, error) {
	switch strings.ToLower(name) {
	case "earth":
		return celestial.Earth, nil
	case "mars":
		return celestial.Mars, nil
	case "sun":
		return celestial.Sun, nil
	default:
		return nil, fmt.Errorf("unknown central body %q", name)
	}
}
