package search

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/nlo-design/modsim/sim"
)

// IntRange is an inclusive integer interval.
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// FloatRange is a closed real interval.
type FloatRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r IntRange) sample(rng *rand.Rand) int { return r.Min + rng.Intn(r.Max-r.Min+1) }

func (r IntRange) clamp(v int) int { return max(r.Min, min(r.Max, v)) }

func (r FloatRange) sample(rng *rand.Rand) float64 { return r.Min + rng.Float64()*(r.Max-r.Min) }

func (r FloatRange) clamp(v float64) float64 { return math.Max(r.Min, math.Min(r.Max, v)) }

// Space is the parameter space the search explores. LIntUM is held fixed.
type Space struct {
	Materials []sim.MaterialID
	Layers    IntRange
	LambdaNM  IntRange
	Q         FloatRange
	Gamma     FloatRange
	LIntUM    float64
}

// DefaultSpace returns the standard design space over the given materials:
// layers 1..5, 1300..1600 nm, Q 10..1000, Gamma 0.05..0.5.
func DefaultSpace(materials []sim.MaterialID) Space {
	return Space{
		Materials: append([]sim.MaterialID(nil), materials...),
		Layers:    IntRange{Min: 1, Max: 5},
		LambdaNM:  IntRange{Min: 1300, Max: 1600},
		Q:         FloatRange{Min: 10, Max: 1000},
		Gamma:     FloatRange{Min: 0.05, Max: 0.5},
		LIntUM:    sim.DefaultLIntUM,
	}
}

// Validate checks that every dimension is non-empty and ordered.
func (s Space) Validate() error {
	if len(s.Materials) == 0 {
		return fmt.Errorf("search space: no materials")
	}
	if s.Layers.Min < 1 || s.Layers.Max < s.Layers.Min {
		return fmt.Errorf("search space: invalid layers range [%d, %d]", s.Layers.Min, s.Layers.Max)
	}
	if s.LambdaNM.Min < 1 || s.LambdaNM.Max < s.LambdaNM.Min {
		return fmt.Errorf("search space: invalid wavelength range [%d, %d]", s.LambdaNM.Min, s.LambdaNM.Max)
	}
	if !(s.Q.Min > 0) || s.Q.Max < s.Q.Min {
		return fmt.Errorf("search space: invalid Q range [%v, %v]", s.Q.Min, s.Q.Max)
	}
	if s.Gamma.Min < 0 || s.Gamma.Max < s.Gamma.Min {
		return fmt.Errorf("search space: invalid Gamma range [%v, %v]", s.Gamma.Min, s.Gamma.Max)
	}
	if !(s.LIntUM > 0) {
		return fmt.Errorf("search space: interaction length must be positive, got %v", s.LIntUM)
	}
	return nil
}

// Sample draws a uniformly random candidate.
func (s Space) Sample(rng *rand.Rand) sim.Params {
	return sim.Params{
		Material: s.Materials[rng.Intn(len(s.Materials))],
		Layers:   s.Layers.sample(rng),
		LambdaNM: s.LambdaNM.sample(rng),
		Q:        s.Q.sample(rng),
		Gamma:    s.Gamma.sample(rng),
		LIntUM:   s.LIntUM,
	}
}

// Perturb draws a candidate near p, kept inside the space. Q moves
// log-normally since it spans two decades.
func (s Space) Perturb(p sim.Params, rng *rand.Rand) sim.Params {
	out := p
	if rng.Float64() < 0.2 {
		out.Material = s.Materials[rng.Intn(len(s.Materials))]
	}
	out.Layers = s.Layers.clamp(p.Layers + rng.Intn(3) - 1)
	out.LambdaNM = s.LambdaNM.clamp(p.LambdaNM + int(math.Round(rng.NormFloat64()*0.03*float64(s.LambdaNM.Max-s.LambdaNM.Min))))
	out.Q = s.Q.clamp(p.Q * math.Exp(0.25*rng.NormFloat64()))
	out.Gamma = s.Gamma.clamp(p.Gamma + 0.1*(s.Gamma.Max-s.Gamma.Min)*rng.NormFloat64())
	out.LIntUM = s.LIntUM
	return out
}
