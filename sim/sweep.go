package sim

import (
	"gonum.org/v1/gonum/floats"
)

// LogSweep returns s.Points intensities spaced evenly in log space from
// s.MinIntensity to s.MaxIntensity. Each call allocates a fresh slice.
func LogSweep(s SweepConfig) []float64 {
	return floats.LogSpan(make([]float64, s.Points), s.MinIntensity, s.MaxIntensity)
}
