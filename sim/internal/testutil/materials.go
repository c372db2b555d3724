package testutil

import (
	"github.com/nlo-design/modsim/sim"
)

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 { return &v }

// Flat returns a per-wavelength map with value v at every nm in [from, to].
func Flat(from, to int, v float64) map[int]float64 {
	m := make(map[int]float64, to-from+1)
	for nm := from; nm <= to; nm++ {
		m[nm] = v
	}
	return m
}

// SyntheticMaterial builds a valid record covering [from, to] nm with the
// given effects and optical constants. Tests adjust fields on the result.
func SyntheticMaterial(id string, from, to int, k, n2, isat float64, effects ...sim.EffectTag) sim.MaterialProperties {
	return sim.MaterialProperties{
		ID:                  sim.MaterialID(id),
		Sourcing:            sim.SourcingCommercial,
		ActiveEffects:       effects,
		LayerThicknessNM:    0.65,
		RefractiveIndex:     Flat(from, to, 3.0),
		Extinction:          Flat(from, to, k),
		NonlinearIndex:      Flat(from, to, n2),
		SaturationIntensity: Flat(from, to, isat),
	}
}
