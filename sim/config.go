package sim

import (
	"fmt"
	"math"
	"sort"
)

// Topology selects the device transfer function that converts accumulated
// phase into transmission.
type Topology string

const (
	// TopologyInterferometer is a balanced two-path interferometer.
	TopologyInterferometer Topology = "interferometer"
	// TopologyRing is a single-bus all-pass ring resonator.
	TopologyRing Topology = "ring"
)

// OutputMode selects which quantity the pipeline reports.
type OutputMode string

const (
	OutputTransmission OutputMode = "transmission"
	OutputPhase        OutputMode = "phase"
)

// validTopologies is the set of recognized topology names ("" means default).
var validTopologies = map[Topology]bool{"": true, TopologyInterferometer: true, TopologyRing: true}

// validOutputs is the set of recognized output modes ("" means default).
var validOutputs = map[OutputMode]bool{"": true, OutputTransmission: true, OutputPhase: true}

// ValidTopologyNames returns sorted non-empty topology names.
func ValidTopologyNames() []string {
	out := make([]string, 0, len(validTopologies))
	for t := range validTopologies {
		if t != "" {
			out = append(out, string(t))
		}
	}
	sort.Strings(out)
	return out
}

// SweepConfig defines the log-spaced intensity grid.
type SweepConfig struct {
	Points       int     // number of samples (>= 2)
	MinIntensity float64 // W/m^2 (> 0)
	MaxIntensity float64 // W/m^2 (> MinIntensity)
}

// DefaultSweep is fixed so results stay comparable across configurations.
var DefaultSweep = SweepConfig{Points: 300, MinIntensity: 1e2, MaxIntensity: 1e8}

// Validate checks the sweep bounds.
func (s SweepConfig) Validate() error {
	if s.Points < 2 {
		return fmt.Errorf("sweep: need at least 2 points, got %d", s.Points)
	}
	if !(s.MinIntensity > 0) || math.IsInf(s.MaxIntensity, 0) || !(s.MaxIntensity > s.MinIntensity) {
		return fmt.Errorf("sweep: need 0 < min < max, got [%v, %v]", s.MinIntensity, s.MaxIntensity)
	}
	return nil
}

// Default ring coefficients, slightly under-coupled.
const (
	DefaultRingSelfCoupling  = 0.95
	DefaultRingRoundTripLoss = 0.9
)

// DefaultKneeFraction places the knee halfway between the endpoint responses.
const DefaultKneeFraction = 0.5

// DeviceConfig fixes the device around the film. It does not vary per effect
// or per material: one Simulator evaluates every candidate with the same device.
type DeviceConfig struct {
	Topology      Topology
	InsertionLoss float64 // interferometer only, fractional power loss in [0,1)

	RingSelfCoupling  float64 // ring only, t in [0,1]
	RingRoundTripLoss float64 // ring only, a in [0,1]

	Output       OutputMode
	Sweep        SweepConfig
	KneeFraction float64 // in (0,1)
}

// DefaultDeviceConfig returns the interferometer device with the default sweep.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		Topology:          TopologyInterferometer,
		RingSelfCoupling:  DefaultRingSelfCoupling,
		RingRoundTripLoss: DefaultRingRoundTripLoss,
		Output:            OutputTransmission,
		Sweep:             DefaultSweep,
		KneeFraction:      DefaultKneeFraction,
	}
}

// withDefaults fills zero-valued fields. A zero InsertionLoss is meaningful
// and left alone.
func (c DeviceConfig) withDefaults() DeviceConfig {
	if c.Topology == "" {
		c.Topology = TopologyInterferometer
	}
	if c.Output == "" {
		c.Output = OutputTransmission
	}
	if c.Sweep == (SweepConfig{}) {
		c.Sweep = DefaultSweep
	}
	if c.KneeFraction == 0 {
		c.KneeFraction = DefaultKneeFraction
	}
	if c.RingSelfCoupling == 0 && c.RingRoundTripLoss == 0 {
		c.RingSelfCoupling = DefaultRingSelfCoupling
		c.RingRoundTripLoss = DefaultRingRoundTripLoss
	}
	return c
}

// Validate checks names and parameter ranges.
func (c DeviceConfig) Validate() error {
	if !validTopologies[c.Topology] {
		return fmt.Errorf("unknown topology %q; valid: %v", c.Topology, ValidTopologyNames())
	}
	if !validOutputs[c.Output] {
		return fmt.Errorf("unknown output mode %q", c.Output)
	}
	if c.InsertionLoss < 0 || !(c.InsertionLoss < 1) {
		return fmt.Errorf("insertion loss must be in [0,1), got %v", c.InsertionLoss)
	}
	if c.RingSelfCoupling < 0 || c.RingSelfCoupling > 1 {
		return fmt.Errorf("ring self-coupling must be in [0,1], got %v", c.RingSelfCoupling)
	}
	if c.RingRoundTripLoss < 0 || c.RingRoundTripLoss > 1 {
		return fmt.Errorf("ring round-trip loss must be in [0,1], got %v", c.RingRoundTripLoss)
	}
	if !(c.KneeFraction > 0 && c.KneeFraction < 1) {
		return fmt.Errorf("knee fraction must be in (0,1), got %v", c.KneeFraction)
	}
	if err := c.Sweep.Validate(); err != nil {
		return err
	}
	return nil
}
