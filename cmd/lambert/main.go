// Command lambert reads a scenario TOML file describing a central body,
// a departure and arrival position and a time of flight, then solves
// Lambert's problem and reports the required departure velocity, the
// delivered arrival velocity, and the departure delta-v against a given
// initial velocity. Ported in spirit from smd/cmd/mission's
// viper-scenario-driven runners, rewritten against tools.Solve.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/spf13/viper"

	"github.com/sabiduria-space/astrocore/celestial"
	"github.com/sabiduria-space/astrocore/tools"
)

const defaultScenario = "~~unset~~"

var scenario string

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "lambert scenario TOML file")
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

	body, err := bodyFromName(viper.GetString("transfer.body"))
	if err != nil {
		log.Fatal(err)
	}

	initialPosition := floatSlice("transfer.initial_position")
	finalPosition := floatSlice("transfer.final_position")
	timeOfFlight := viper.GetDuration("transfer.time_of_flight").Seconds()
	direction, err := directionFromName(viper.GetString("transfer.direction"))
	if err != nil {
		log.Fatal(err)
	}

	sol, err := tools.Solve(initialPosition, finalPosition, timeOfFlight, direction, body)
	if err != nil {
		log.Fatalf("lambert solve failed: %s", err)
	}

	fmt.Printf("departure velocity (km/s): %.6f %.6f %.6f\n",
		sol.DepartureVelocity[0], sol.DepartureVelocity[1], sol.DepartureVelocity[2])
	fmt.Printf("arrival velocity (km/s):   %.6f %.6f %.6f\n",
		sol.ArrivalVelocity[0], sol.ArrivalVelocity[1], sol.ArrivalVelocity[2])

	if v0 := floatSlice("transfer.initial_velocity"); len(v0) == 3 {
		dv := math.Sqrt(
			math.Pow(sol.DepartureVelocity[0]-v0[0], 2) +
				math.Pow(sol.DepartureVelocity[1]-v0[1], 2) +
				math.Pow(sol.DepartureVelocity[2]-v0[2], 2))
		fmt.Printf("departure delta-v (km/s):  %.6f\n", dv)
	}
}

// floatSlice reads a TOML array of numbers without relying on a
// GetFloat64Slice viper helper, which this version of viper lacks.
func floatSlice(key string) []float64 {
	raw, ok := viper.Get(key).([]interface{})
	if !ok {
		return nil
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		switch n := v.(type) {
		case float64:
			out[i] = n
		case int64:
			out[i] = float64(n)
		case int:
			out[i] = float64(n)
		}
	}
	return out
}

func bodyFromName(name string) (celestial.Body, error) {
	switch strings.ToLower(name) {
	case "earth":
		return celestial.TwoBody{BodyName: "Earth (km)", Mu: 398600.4418}, nil
	case "mars":
		return celestial.TwoBody{BodyName: "Mars (km)", Mu: 42828.314}, nil
	case "sun":
		return celestial.TwoBody{BodyName: "Sun (km)", Mu: 1.32712440018e11}, nil
	default:
		return nil, fmt.Errorf("unknown central body %q", name)
	}
}

func directionFromName(name string) (tools.Direction, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return tools.AutoDirection, nil
	case "short":
		return tools.ShortWay, nil
	case "long":
		return tools.LongWay, nil
	default:
		return 0, fmt.Errorf("unknown transfer direction %q", name)
	}
}
