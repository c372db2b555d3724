package sim

import (
	"fmt"
	"maps"
	"slices"
	"sort"
)

// MaterialID identifies a material record (e.g. "MOS2").
type MaterialID string

// Sourcing classifies how a material can be obtained.
type Sourcing string

const (
	SourcingCommercial   Sourcing = "commercial"
	SourcingLab          Sourcing = "lab"
	SourcingExperimental Sourcing = "experimental"
)

// validSourcing maps sourcing names to validity. Unexported to prevent mutation.
var validSourcing = map[Sourcing]bool{
	SourcingCommercial:   true,
	SourcingLab:          true,
	SourcingExperimental: true,
}

// IsValidSourcing returns true if s is a recognized sourcing class.
func IsValidSourcing(s Sourcing) bool { return validSourcing[s] }

// MaterialProperties is the immutable property record of one material.
//
// ActiveEffects defines both which effects apply and their application order.
// The four per-wavelength maps are keyed by integer nanometres and must cover
// the same set of wavelengths. Optional scalars are nil when unknown.
//
// A MaterialProperties value is shared read-only between concurrent Simulate
// calls; nothing in this package writes to it after construction.
type MaterialProperties struct {
	ID            MaterialID
	Sourcing      Sourcing
	ActiveEffects []EffectTag

	LayerThicknessNM float64

	RefractiveIndex     map[int]float64 // n
	Extinction          map[int]float64 // k
	NonlinearIndex      map[int]float64 // n2, m^2/W
	SaturationIntensity map[int]float64 // Isat, W/m^2

	ResponseTime      *float64 // tau, seconds
	SaturableFraction *float64 // bleachable share of A0, 0..1
	Dispersion        *float64 // group-velocity dispersion, s^2/m
	Anisotropy        *float64 // in-plane/out-of-plane n2 ratio
}

// HasWavelength reports whether every per-wavelength map has an entry for nm.
func (m MaterialProperties) HasWavelength(nm int) bool {
	for _, tbl := range m.spectra() {
		if _, ok := tbl[nm]; !ok {
			return false
		}
	}
	return true
}

// Wavelengths returns the sorted wavelengths (nm) present in every per-wavelength map.
func (m MaterialProperties) Wavelengths() []int {
	out := make([]int, 0, len(m.RefractiveIndex))
	for nm := range m.RefractiveIndex {
		if m.HasWavelength(nm) {
			out = append(out, nm)
		}
	}
	sort.Ints(out)
	return out
}

// Validate checks structural invariants: known sourcing, unique registered
// effect tags, positive layer thickness and identical wavelength coverage
// across the per-wavelength maps.
func (m MaterialProperties) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("material: empty id")
	}
	if !IsValidSourcing(m.Sourcing) {
		return fmt.Errorf("material %s: unknown sourcing %q", m.ID, m.Sourcing)
	}
	seen := make(map[EffectTag]bool, len(m.ActiveEffects))
	for _, tag := range m.ActiveEffects {
		if !IsValidEffect(tag) {
			return &ConfigurationError{Material: m.ID, Effect: tag, Err: ErrUnsupportedEffect,
				Detail: fmt.Sprintf("valid: %v", ValidEffectNames())}
		}
		if seen[tag] {
			return fmt.Errorf("material %s: duplicate effect %q", m.ID, tag)
		}
		seen[tag] = true
	}
	if !(m.LayerThicknessNM > 0) {
		return fmt.Errorf("material %s: layer thickness must be positive, got %v", m.ID, m.LayerThicknessNM)
	}
	if len(m.RefractiveIndex) == 0 {
		return fmt.Errorf("material %s: no wavelength data", m.ID)
	}
	for _, tbl := range m.spectra()[1:] {
		if len(tbl) != len(m.RefractiveIndex) {
			return fmt.Errorf("material %s: per-wavelength maps cover different wavelengths", m.ID)
		}
	}
	for nm := range m.RefractiveIndex {
		if !m.HasWavelength(nm) {
			return fmt.Errorf("material %s: per-wavelength maps disagree at %dnm", m.ID, nm)
		}
	}
	if f := m.SaturableFraction; f != nil && (*f < 0 || *f > 1) {
		return fmt.Errorf("material %s: saturable fraction must be in [0,1], got %v", m.ID, *f)
	}
	if tau := m.ResponseTime; tau != nil && !(*tau > 0) {
		return fmt.Errorf("material %s: response time must be positive, got %v", m.ID, *tau)
	}
	return nil
}

// Clone returns a deep copy, so a provider can hand out records without
// exposing its own maps.
func (m MaterialProperties) Clone() MaterialProperties {
	out := m
	out.ActiveEffects = slices.Clone(m.ActiveEffects)
	out.RefractiveIndex = maps.Clone(m.RefractiveIndex)
	out.Extinction = maps.Clone(m.Extinction)
	out.NonlinearIndex = maps.Clone(m.NonlinearIndex)
	out.SaturationIntensity = maps.Clone(m.SaturationIntensity)
	out.ResponseTime = clonePtr(m.ResponseTime)
	out.SaturableFraction = clonePtr(m.SaturableFraction)
	out.Dispersion = clonePtr(m.Dispersion)
	out.Anisotropy = clonePtr(m.Anisotropy)
	return out
}

func (m MaterialProperties) spectra() []map[int]float64 {
	return []map[int]float64{m.RefractiveIndex, m.Extinction, m.NonlinearIndex, m.SaturationIntensity}
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// PropertyProvider supplies material records. Implementations must be fully
// populated before the first Lookup and never mutated afterwards.
type PropertyProvider interface {
	Lookup(id MaterialID) (MaterialProperties, bool)
}

// StaticProvider is an in-memory PropertyProvider keyed by MaterialID.
// It is intended for tests and for callers that assemble records in code.
type StaticProvider map[MaterialID]MaterialProperties

// Lookup implements PropertyProvider.
func (p StaticProvider) Lookup(id MaterialID) (MaterialProperties, bool) {
	m, ok := p[id]
	return m, ok
}
