// sim/effects.go
package sim

import (
	"math"
	"sort"

	"github.com/nlo-design/modsim/sim/physics"
)

// EffectTag names a physical nonlinear effect a material can declare.
type EffectTag string

const (
	// EffectSaturableAbsorption bleaches the film's absorption as intensity rises.
	EffectSaturableAbsorption EffectTag = "saturable-absorption"
	// EffectKerr shifts the optical phase in proportion to intensity.
	EffectKerr EffectTag = "kerr"
)

// EffectKind decides how a stage composes into the running response.
type EffectKind int

const (
	// Absorptive stages produce a transmission factor, multiplied into the running transmission.
	Absorptive EffectKind = iota
	// Phase stages produce a phase shift, added into the running phase.
	Phase
)

func (k EffectKind) String() string {
	switch k {
	case Absorptive:
		return "absorptive"
	case Phase:
		return "phase"
	default:
		return "unknown"
	}
}

// Defaults used when a material leaves the optional field unset.
const (
	DefaultSaturableFraction = 0.6
	DefaultCarrierRecovery   = 5e-9  // seconds, photocarrier recovery of absorbers
	DefaultKerrResponse      = 1e-12 // seconds, electronic Kerr response
)

// stageInput is everything a stage may read. Wavelength-keyed values are
// already resolved for p.LambdaNM.
type stageInput struct {
	intensity []float64
	params    Params
	props     MaterialProperties
	k         float64
	n2        float64
	isat      float64
}

// effectStage is one registered effect model.
type effectStage struct {
	kind       EffectKind
	defaultTau float64
	// apply writes the stage's contribution (a transmission factor for
	// Absorptive, a phase in radians for Phase) into dst.
	apply func(dst []float64, in stageInput)
}

// effectRegistry maps tags to models. Unexported to prevent mutation; new
// effects are added here and need no change in the pipeline.
var effectRegistry = map[EffectTag]effectStage{
	EffectSaturableAbsorption: {
		kind:       Absorptive,
		defaultTau: DefaultCarrierRecovery,
		apply:      saturableAbsorptionStage,
	},
	EffectKerr: {
		kind:       Phase,
		defaultTau: DefaultKerrResponse,
		apply:      kerrStage,
	},
}

// IsValidEffect returns true if tag has a registered model.
func IsValidEffect(tag EffectTag) bool {
	_, ok := effectRegistry[tag]
	return ok
}

// ValidEffectNames returns sorted registered effect tags.
func ValidEffectNames() []string {
	out := make([]string, 0, len(effectRegistry))
	for tag := range effectRegistry {
		out = append(out, string(tag))
	}
	sort.Strings(out)
	return out
}

// EffectKindOf returns how tag composes, and false if tag is not registered.
func EffectKindOf(tag EffectTag) (EffectKind, bool) {
	st, ok := effectRegistry[tag]
	return st.kind, ok
}

// saturableAbsorptionStage derives A0 from the extinction coefficient of the
// whole stack, splits it into a bleachable and a residual part, and applies
// the saturable-absorber transmission.
func saturableAbsorptionStage(dst []float64, in stageInput) {
	thickness := physics.LayersToThickness(in.props.LayerThicknessNM, in.params.Layers)
	a0 := physics.SmallSignalAbsorption(in.k, in.params.LambdaM(), thickness)
	fsat := DefaultSaturableFraction
	if in.props.SaturableFraction != nil {
		fsat = physics.Clip01(*in.props.SaturableFraction)
	}
	physics.SaturableAbsorption(dst, in.intensity, fsat*a0, (1-fsat)*a0, in.isat)
}

// kerrStage scales the incident intensity by the modal overlap and the cavity
// field enhancement before computing the Kerr phase.
func kerrStage(dst []float64, in stageInput) {
	gamma := math.Max(0, in.params.Gamma)
	for i, v := range in.intensity {
		dst[i] = v * gamma
	}
	fe := physics.FieldEnhancement(in.params.Q)
	physics.KerrPhase(dst, dst, in.n2, in.params.LIntM(), in.params.LambdaM(), fe)
}
