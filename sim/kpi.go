// sim/kpi.go
package sim

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// DeviceArea is the assumed device footprint (10 um x 10 um) used for the
// switching-energy estimate. It is not derived from Params.
const DeviceArea = 10e-6 * 10e-6 // m^2

// KPIs are the switching metrics of one evaluated candidate.
type KPIs struct {
	Contrast float64 `json:"contrast"`
	T0       float64 `json:"t0"`
	KneeI    float64 `json:"knee_intensity_w_m2"`
	ESwPJ    float64 `json:"switching_energy_pj"`
	TauS     float64 `json:"response_time_s"`
	Curve    Curve   `json:"curve"`
}

// Contrast returns max(y) - min(y), or 0 for an empty slice.
func Contrast(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	return floats.Max(y) - floats.Min(y)
}

// KneeIntensity returns the sweep intensity at which y first reaches the
// value a fraction frac of the way from y[0] to y[last].
//
// The target is located by binary search, treating y as sorted in the
// direction of its endpoints. That is exact for monotone curves. For
// non-monotone curves (a ring driven past resonance) the result may land on
// the wrong side of a local extremum. Returns NaN for a flat curve.
func KneeIntensity(intensity, y []float64, frac float64) float64 {
	n := len(y)
	if n == 0 || Contrast(y) == 0 {
		return math.NaN()
	}
	first, last := y[0], y[n-1]
	target := first + frac*(last-first)
	var idx int
	if last >= first {
		idx = sort.Search(n, func(i int) bool { return y[i] >= target })
	} else {
		idx = sort.Search(n, func(i int) bool { return y[i] <= target })
	}
	if idx >= n {
		idx = n - 1
	}
	return intensity[idx]
}

// SwitchingEnergyPJ estimates the energy to drive the device through its
// transition: knee * DeviceArea * tau, in picojoules.
func SwitchingEnergyPJ(kneeI, tau float64) float64 {
	return 1e12 * kneeI * DeviceArea * tau
}

// ExtractKPIs reduces a curve to its switching metrics. A flat curve yields
// zero contrast with NaN knee and energy; it is never an error.
func ExtractKPIs(c Curve, tau, kneeFraction float64) KPIs {
	k := KPIs{
		Contrast: Contrast(c.Y),
		T0:       math.NaN(),
		TauS:     tau,
		Curve:    c,
	}
	if len(c.Y) > 0 {
		k.T0 = c.Y[0]
	}
	k.KneeI = KneeIntensity(c.I, c.Y, kneeFraction)
	k.ESwPJ = SwitchingEnergyPJ(k.KneeI, tau)
	return k
}
