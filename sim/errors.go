package sim

import (
	"errors"
	"fmt"
	"strings"
)

// Configuration errors. All are non-retryable: the caller must fix its input.
var (
	// ErrUnknownMaterial indicates the PropertyProvider has no record for the material.
	ErrUnknownMaterial = errors.New("sim: unknown material")

	// ErrMissingWavelengthData indicates the material has no per-wavelength entry for the requested wavelength.
	ErrMissingWavelengthData = errors.New("sim: missing wavelength data")

	// ErrUnsupportedEffect indicates a material declares an effect tag with no registered model.
	ErrUnsupportedEffect = errors.New("sim: unsupported effect")

	// ErrInvalidParams indicates a structurally invalid Params value.
	ErrInvalidParams = errors.New("sim: invalid params")
)

// ConfigurationError wraps one of the sentinel errors above with the request
// context that produced it. Use errors.Is to test for the kind.
type ConfigurationError struct {
	Material MaterialID
	LambdaNM int
	Effect   EffectTag
	Detail   string
	Err      error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Material != "" {
		fmt.Fprintf(&b, " (material=%s", e.Material)
		if e.LambdaNM != 0 {
			fmt.Fprintf(&b, ", lambda=%dnm", e.LambdaNM)
		}
		if e.Effect != "" {
			fmt.Fprintf(&b, ", effect=%s", e.Effect)
		}
		b.WriteString(")")
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
