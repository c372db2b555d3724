// curve.go
//
// Defines the Curve struct, the sampled response handed from the pipeline to
// the KPI extractor.
package sim

// ResponseKind tags what a Curve's Y values measure.
type ResponseKind string

const (
	KindTransmission ResponseKind = "transmission"
	KindPhase        ResponseKind = "phase"

	// KindReflectance is reserved for reflective readouts; no registered
	// effect or output mode produces it yet.
	KindReflectance ResponseKind = "reflectance"
)

// Curve is a device response sampled over an intensity sweep.
// I is strictly increasing (W/m^2) and len(I) == len(Y). For
// KindTransmission every Y lies in [0,1].
type Curve struct {
	I    []float64    `json:"intensity_w_m2"`
	Y    []float64    `json:"response"`
	Kind ResponseKind `json:"kind"`
}

// Len returns the number of samples.
func (c Curve) Len() int { return len(c.I) }
