// Package search drives the simulator over a declared parameter space. It is
// the black-box design-search loop that sits outside the evaluation core: it
// samples candidates, scores their KPIs and tracks convergence.
package search

import (
	"github.com/nlo-design/modsim/sim"
)

// MinSwitchingEnergyPJ is the smallest switching energy that earns a score.
const MinSwitchingEnergyPJ = 1e-9

// Score maps KPIs to the figure of merit maximized by the search:
// contrast per picojoule of switching energy. Candidates with no usable
// energy estimate (tiny, zero or NaN) score 0.
func Score(k sim.KPIs) float64 {
	if k.ESwPJ > MinSwitchingEnergyPJ {
		return k.Contrast / k.ESwPJ
	}
	return 0
}
