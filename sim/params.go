package sim

import (
	"fmt"
	"math"
)

// Default geometry knobs, used when the caller does not search over them.
const (
	DefaultQ      = 200.0
	DefaultGamma  = 0.2
	DefaultLIntUM = 50.0
)

// Params describes one device candidate. It is built by the caller and read,
// never modified, by Simulate.
type Params struct {
	Material MaterialID
	Layers   int     // number of stacked monolayers (> 0)
	LambdaNM int     // operating wavelength, nm (> 0)
	Q        float64 // cavity quality factor (> 0)
	Gamma    float64 // modal overlap with the active film, nominally 0..1
	LIntUM   float64 // interaction length, micrometres (> 0)
}

// DefaultParams returns Params with the default geometry knobs filled in.
func DefaultParams(material MaterialID, layers, lambdaNM int) Params {
	return Params{
		Material: material,
		Layers:   layers,
		LambdaNM: lambdaNM,
		Q:        DefaultQ,
		Gamma:    DefaultGamma,
		LIntUM:   DefaultLIntUM,
	}
}

// Validate returns a ConfigurationError wrapping ErrInvalidParams when a field
// is outside its structural domain. Gamma is not range-checked; the Kerr stage
// clamps it at zero. Material is not checked here: an empty or unregistered ID
// is reported by the provider lookup as ErrUnknownMaterial.
func (p Params) Validate() error {
	bad := func(format string, args ...any) error {
		return &ConfigurationError{Material: p.Material, LambdaNM: p.LambdaNM, Err: ErrInvalidParams,
			Detail: fmt.Sprintf(format, args...)}
	}
	switch {
	case p.Layers <= 0:
		return bad("layers must be positive, got %d", p.Layers)
	case p.LambdaNM <= 0:
		return bad("lambda must be positive, got %d", p.LambdaNM)
	case !(p.Q > 0) || math.IsInf(p.Q, 0):
		return bad("Q must be a finite positive number, got %v", p.Q)
	case math.IsNaN(p.Gamma) || math.IsInf(p.Gamma, 0):
		return bad("Gamma must be finite, got %v", p.Gamma)
	case !(p.LIntUM > 0) || math.IsInf(p.LIntUM, 0):
		return bad("interaction length must be a finite positive number, got %v", p.LIntUM)
	}
	return nil
}

// LambdaM returns the wavelength in metres.
func (p Params) LambdaM() float64 { return float64(p.LambdaNM) * 1e-9 }

// LIntM returns the interaction length in metres.
func (p Params) LIntM() float64 { return p.LIntUM * 1e-6 }
