// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Simulator is the evaluation facade called by the search loop. It holds
// only read-only collaborators and is safe for concurrent use.
type Simulator struct {
	provider PropertyProvider
	device   DeviceConfig
}

// NewSimulator binds a property provider to a device configuration.
// Zero-valued device fields take their defaults; the result is validated.
func NewSimulator(provider PropertyProvider, device DeviceConfig) (*Simulator, error) {
	if provider == nil {
		return nil, fmt.Errorf("simulator: property provider is required")
	}
	device = device.withDefaults()
	if err := device.Validate(); err != nil {
		return nil, fmt.Errorf("simulator: %w", err)
	}
	return &Simulator{provider: provider, device: device}, nil
}

// Device returns the effective device configuration.
func (s *Simulator) Device() DeviceConfig { return s.device }

// Simulate evaluates one candidate. On failure it returns the zero KPIs and a
// *ConfigurationError wrapping ErrInvalidParams, ErrUnknownMaterial,
// ErrMissingWavelengthData or ErrUnsupportedEffect.
func (s *Simulator) Simulate(p Params) (KPIs, error) {
	if err := p.Validate(); err != nil {
		return KPIs{}, err
	}
	props, ok := s.provider.Lookup(p.Material)
	if !ok {
		return KPIs{}, &ConfigurationError{Material: p.Material, LambdaNM: p.LambdaNM, Err: ErrUnknownMaterial}
	}
	curve, err := Respond(p, props, s.device)
	if err != nil {
		return KPIs{}, err
	}
	kpis := ExtractKPIs(curve, responseTime(props), s.device.KneeFraction)
	if kpis.Contrast == 0 {
		logrus.Debugf("simulate: flat response for %s at %dnm (%d effects)", p.Material, p.LambdaNM, len(props.ActiveEffects))
	}
	return kpis, nil
}
