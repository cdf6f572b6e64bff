package dynamics

import (
	"time"

	"github.com/sabiduria-space/astrocore/errkind"
	"github.com/sabiduria-space/astrocore/frame"
	"github.com/sabiduria-space/astrocore/guidance"
	"github.com/sabiduria-space/astrocore/state"
	"github.com/sabiduria-space/astrocore/state/coords"
)

// Engine models the thrust/Isp characteristics of a propulsion device,
// ported directly from smd/thrusters.go's Thruster/EPThruster interface
// (min/max power-voltage envelope plus a thrust-at-operating-point query),
// renamed to avoid colliding with the Thruster Dynamics contributor below.
type Engine interface {
	Min() (voltage, power uint)
	Max() (voltage, power uint)
	Thrust(voltage, power uint) (thrust, isp float64)
}

// GenericEngine is a fixed thrust/Isp engine not modeled against a
// power/voltage envelope, ported from smd.GenericEP.
type GenericEngine struct {
	ThrustN, IspS float64
}

// NewGenericEngine returns a GenericEngine with the given thrust (N) and
// specific impulse (s).
func NewGenericEngine(thrustN, ispS float64) *GenericEngine {
	return &GenericEngine{ThrustN: thrustN, IspS: ispS}
}

// Min implements Engine.
func (e *GenericEngine) Min() (uint, uint) { return 0, 0 }

// Max implements Engine.
func (e *GenericEngine) Max() (uint, uint) { return 0, 0 }

// Thrust implements Engine.
func (e *GenericEngine) Thrust(voltage, power uint) (float64, float64) {
	return e.ThrustN, e.IspS
}

const standardGravity = 9.80665 // m/s^2, for Isp-to-mass-flow-rate conversion

// Thruster is the Dynamics contributor coupling a guidance.Law's thrust
// direction and throttle to an Engine's force/Isp, contributing both the
// acceleration that integrates into velocity and the propellant mass flow
// rate that integrates into mass. Ported from smd/dynamics/thrusters.go's
// per-step thrust application folded into smd.Mission's Cartesian
// derivative, generalized into a standalone contributor operating on an
// arbitrary State via its guidance.Law.
type Thruster struct {
	readWriteBase
	Engine     Engine
	Law        guidance.Law
	DryMass    float64 // kg; Compute raises OutOfPropellant once mass falls to or below this
	Epoch      time.Time
	readBroker *coords.Broker
}

// NewThruster returns a Thruster contributor reading position, velocity and
// mass (so the guidance law is evaluated against a real State reconstructed
// from the broker's gathered reads, rather than through a side channel) and
// writing the acceleration and mass-flow-rate derivatives. epoch is the
// wall-clock instant Compute's seconds-since-epoch argument is relative to,
// needed to populate the reconstructed State's Instant.
func NewThruster(engine Engine, law guidance.Law, dryMass float64, epoch time.Time) *Thruster {
	readBroker := coords.NewBroker()
	readBroker.Add(coords.CartesianPosition())
	readBroker.Add(coords.CartesianVelocity())
	readBroker.Add(coords.Mass())
	return &Thruster{
		readWriteBase: readWriteBase{
			reads: []coords.Subset{
				coords.CartesianPosition(),
				coords.CartesianVelocity(),
				coords.Mass(),
			},
			writes: []coords.Subset{coords.CartesianVelocity(), coords.Mass()},
		},
		Engine:     engine,
		Law:        law,
		DryMass:    dryMass,
		Epoch:      epoch,
		readBroker: readBroker,
	}
}

// Name implements Dynamics.
func (d *Thruster) Name() string { return "thruster:" + d.Law.Name() }

// Compute implements Dynamics: returns the acceleration contribution
// followed by the (negative) mass flow rate, matching Writes() order.
// Mass at or below DryMass is a hard stop, not a throttle-down.
func (d *Thruster) Compute(t float64, reads []float64, fr frame.Frame) ([]float64, error) {
	mass := reads[6]
	if mass <= d.DryMass {
		return nil, errkind.New(errkind.OutOfPropellant, "thruster: mass at or below dry mass")
	}
	s, err := state.New(d.Epoch.Add(secondsToDuration(t)), reads, fr, d.readBroker)
	if err != nil {
		return nil, err
	}
	direction, throttle, err := d.Law.Direction(t, s)
	if err != nil {
		return nil, err
	}
	if throttle <= 0 {
		return []float64{0, 0, 0, 0}, nil
	}
	thrustN, ispS := d.Engine.Thrust(d.Engine.Max())
	accelMag := (throttle * thrustN) / mass
	mdot := -(throttle * thrustN) / (ispS * standardGravity)
	return []float64{
		accelMag * direction[0],
		accelMag * direction[1],
		accelMag * direction[2],
		mdot,
	}, nil
}
