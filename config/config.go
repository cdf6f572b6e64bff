// Package config loads astrocore's ambient configuration (solver defaults,
// ephemeris source toggles, output paths) the way smd/config.go loads its
// own: a viper-backed conf.toml located via an environment variable, parsed
// once and cached.
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// EnvVar names the environment variable pointing at the directory holding conf.toml.
const EnvVar = "ASTROCORE_CONFIG"

// Config holds the process-wide astrocore configuration.
type Config struct {
	// DefaultStepper names the integrator stepper used when none is specified.
	DefaultStepper string
	// RelTol and AbsTol are the default adaptive-solver tolerances.
	RelTol, AbsTol float64
	// OutputDir is where propagation logs/exports are written, if at all.
	OutputDir string
	// UseMeeus toggles the meeus-backed ephemeris over a caller-supplied one.
	UseMeeus bool
	// TemporalStep is the default sampling step for the temporal-condition solver.
	TemporalStep time.Duration
}

var (
	mu     sync.Mutex
	loaded bool
	cached Config
)

func defaults() Config {
	return Config{
		DefaultStepper: "dp54",
		RelTol:         1e-9,
		AbsTol:         1e-12,
		OutputDir:      "",
		UseMeeus:       false,
		TemporalStep:   30 * time.Second,
	}
}

// Get returns the cached configuration, loading it from conf.toml on first use.
// If ASTROCORE_CONFIG is unset, the built-in defaults are returned (unlike the
// teacher, which panics; astrocore is a library, not a mission script, so a
// missing config directory is not a hard failure for library callers).
func Get() Config {
	mu.Lock()
	defer mu.Unlock()
	if loaded {
		return cached
	}
	cfg := defaults()
	confPath := os.Getenv(EnvVar)
	if confPath != "" {
		viper.SetConfigName("conf")
		viper.AddConfigPath(confPath)
		if err := viper.ReadInConfig(); err == nil {
			if v := viper.GetString("solver.default_stepper"); v != "" {
				cfg.DefaultStepper = v
			}
			if v := viper.GetFloat64("solver.rel_tol"); v != 0 {
				cfg.RelTol = v
			}
			if v := viper.GetFloat64("solver.abs_tol"); v != 0 {
				cfg.AbsTol = v
			}
			if v := viper.GetString("general.output_path"); v != "" {
				cfg.OutputDir = v
			}
			cfg.UseMeeus = viper.GetBool("ephemeris.use_meeus")
			if v := viper.GetString("access.temporal_step"); v != "" {
				if d, derr := time.ParseDuration(v); derr == nil {
					cfg.TemporalStep = d
				}
			}
		} else {
			fmt.Fprintf(os.Stderr, "[astrocore:config] %s/conf.toml not found, using defaults\n", confPath)
		}
	}
	cached = cfg
	loaded = true
	return cached
}

// Reset clears the cached configuration, forcing the next Get to reload.
// Exposed for tests that need to exercise config loading under different
// environments within the same process.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	loaded = false
}
