// Command od runs a batch least-squares orbit determination: it reads a
// scenario TOML file describing a central body, an initial-guess orbit,
// a set of tracking stations, and a recorded measurement file, then
// reports the estimated initial state. Ported in spirit from
// smd/cmd/od's viper-scenario-driven OD runner, rewritten against
// astrocore's estimation.ODLeastSquaresSolver instead of smd's
// gokalman-backed extended Kalman filter: this module's OD is a batch
// Gauss-Newton/Levenberg solve, not a sequential filter.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sabiduria-space/astrocore/celestial"
	"github.com/sabiduria-space/astrocore/dynamics"
	"github.com/sabiduria-space/astrocore/estimation"
	"github.com/sabiduria-space/astrocore/estimation/station"
	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/integrator"
	"github.com/sabiduria-space/astrocore/propagator"
	"github.com/sabiduria-space/astrocore/state/coords"
	"github.com/sabiduria-space/astrocore/trajectory"
)

const (
	defaultScenario = "~~unset~~"
	dateFormat      = "2006-01-02 15:04:05"
)

var scenario string

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "OD scenario TOML file")
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
	fr := frame.Inertial{FrameName: "ECI"}

	epoch := viper.GetTime("mission.start")
	if epoch.IsZero() {
		log.Fatal("mission.start must be set")
	}

	guessElements := trajectory.COE{
		SMA:         viper.GetFloat64("initial_guess.sma"),
		Ecc:         viper.GetFloat64("initial_guess.ecc"),
		Inc:         viper.GetFloat64("initial_guess.inc") * math.Pi / 180,
		RAAN:        viper.GetFloat64("initial_guess.raan") * math.Pi / 180,
		AOP:         viper.GetFloat64("initial_guess.arg_peri") * math.Pi / 180,
		TrueAnomaly: viper.GetFloat64("initial_guess.true_anomaly") * math.Pi / 180,
	}
	kepler, err := trajectory.NewKepler(epoch, centralBody.GravitationalParameter(), guessElements, fr, broker)
	if err != nil {
		log.Fatalf("invalid initial guess orbit: %s", err)
	}
	s0, err := kepler.StateAt(epoch)
	if err != nil {
		log.Fatalf("could not seed initial guess state: %s", err)
	}
	initialGuess := append([]float64{}, s0.Coordinates...)

	prop, err := propagator.New(broker, fr,
		dynamics.NewPositionDerivative(),
		dynamics.NewCentralBodyGravity(centralBody, epoch),
	)
	if err != nil {
		log.Fatalf("could not assemble propagator: %s", err)
	}
	solver := integrator.NewSolver(integrator.DormandPrince54(), 1e-9, 1e-12)
	stepHint := viper.GetFloat64("mission.step_seconds")
	if stepHint == 0 {
		stepHint = 30
	}

	stations, err := loadStations()
	if err != nil {
		log.Fatalf("could not load stations: %s", err)
	}
	records, err := loadMeasurementFile(viper.GetString("measurements.file"))
	if err != nil {
		log.Fatalf("could not load measurements: %s", err)
	}
	log.Printf("[info] loaded %d measurements over %d stations", len(records), len(stations))

	schedules, observations := buildSchedules(stations, records)
	if len(observations) == 0 {
		log.Fatal("no usable observations in measurement file")
	}

	od := estimation.NewODLeastSquaresSolver(prop, solver, epoch, stepHint, schedules)
	solution, err := od.Solve(initialGuess, observations)
	if err != nil {
		log.Printf("[warning] OD did not converge cleanly: %s", err)
	}

	fmt.Printf("converged=%v iterations=%d cost=%g\n", solution.Converged, solution.Iterations, solution.Cost)
	fmt.Printf("estimated r (m) = %+v\n", solution.Params[0:3])
	fmt.Printf("estimated v (m/s) = %+v\n", solution.Params[3:6])
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

// loadStations builds every station.<name> entry under the scenario's
// measurements.stations list into a station.Station, matching smd/cmd/od's
// own per-station TOML section layout.
func loadStations() (map[string]station.Station, error) {
	names := viper.GetStringSlice("measurements.stations")
	stations := make(map[string]station.Station, len(names))
	for _, name := range names {
		key := "station." + name + "."
		bf := frame.BodyFixed{
			FrameName:    viper.GetString(key + "frame"),
			RotationRate: viper.GetFloat64(key + "rotation_rate"),
			Epoch:        viper.GetTime("mission.start"),
		}
		st, err := station.New(
			name,
			bf,
			viper.GetFloat64(key+"body_radius_m"),
			viper.GetFloat64(key+"altitude_m"),
			viper.GetFloat64(key+"latitude_deg")*math.Pi/180,
			viper.GetFloat64(key+"longitude_deg")*math.Pi/180,
			viper.GetFloat64(key+"elevation_mask_deg")*math.Pi/180,
			viper.GetFloat64(key+"range_sigma_m"),
			viper.GetFloat64(key+"rate_sigma_mps"),
		)
		if err != nil {
			return nil, fmt.Errorf("station %q: %w", name, err)
		}
		stations[name] = st
	}
	return stations, nil
}

// buildSchedules groups the loaded measurement records by station into the
// ObservationSchedule slice ODLeastSquaresSolver.Solve expects, and lays
// the corresponding range/range-rate pairs out in the same order its
// predict method produces them (schedule order, then instant order).
func buildSchedules(stations map[string]station.Station, records []measurementRecord) ([]estimation.ObservationSchedule, []float64) {
	byStation := make(map[string][]measurementRecord)
	var order []string
	for _, rec := range records {
		if _, ok := stations[rec.Station]; !ok {
			continue
		}
		if _, seen := byStation[rec.Station]; !seen {
			order = append(order, rec.Station)
		}
		byStation[rec.Station] = append(byStation[rec.Station], rec)
	}
	sort.Strings(order)

	var schedules []estimation.ObservationSchedule
	var observations []float64
	for _, name := range order {
		recs := byStation[name]
		sort.Slice(recs, func(i, j int) bool { return recs[i].Instant.Before(recs[j].Instant) })
		instants := make([]time.Time, len(recs))
		for i, r := range recs {
			instants[i] = r.Instant
			observations = append(observations, r.Range, r.RangeRate)
		}
		schedules = append(schedules, estimation.ObservationSchedule{
			Station:  stations[name],
			Instants: instants,
		})
	}
	return schedules, observations
}
