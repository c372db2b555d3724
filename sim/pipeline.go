// pipeline.go
//
// Runs a material's active effects over the intensity sweep and combines them
// into a single response curve.
package sim

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/nlo-design/modsim/sim/physics"
)

// Respond runs the response pipeline for one candidate and returns a fresh
// Curve over the device's sweep.
//
// The material's active effects are applied in declared order. Absorptive
// stages multiply into the running transmission; phase stages add into the
// running phase. The total phase is converted with the device transfer
// function once, after all stages, because the conversion is nonlinear and
// does not commute with further phase accumulation. Materials without any
// phase stage never pass through the transfer function, so a lone absorber
// reproduces its standalone transmission exactly.
//
// Respond fails with ErrMissingWavelengthData when the material lacks data
// at p.LambdaNM and with ErrUnsupportedEffect for an unregistered tag. A
// device that is invalid after defaulting (e.g. a partial sweep) is rejected
// before any sampling. p is not validated; the Simulator does that up front.
func Respond(p Params, props MaterialProperties, dev DeviceConfig) (Curve, error) {
	dev = dev.withDefaults()
	if err := dev.Validate(); err != nil {
		return Curve{}, fmt.Errorf("respond: %w", err)
	}
	if !props.HasWavelength(p.LambdaNM) {
		return Curve{}, &ConfigurationError{Material: props.ID, LambdaNM: p.LambdaNM, Err: ErrMissingWavelengthData}
	}

	// Resolve every tag before computing anything so a bad record fails
	// without doing partial work.
	stages := make([]effectStage, len(props.ActiveEffects))
	for i, tag := range props.ActiveEffects {
		st, ok := effectRegistry[tag]
		if !ok {
			return Curve{}, &ConfigurationError{Material: props.ID, LambdaNM: p.LambdaNM, Effect: tag, Err: ErrUnsupportedEffect}
		}
		stages[i] = st
	}

	intensity := LogSweep(dev.Sweep)
	n := len(intensity)
	in := stageInput{
		intensity: intensity,
		params:    p,
		props:     props,
		k:         props.Extinction[p.LambdaNM],
		n2:        props.NonlinearIndex[p.LambdaNM],
		isat:      props.SaturationIntensity[p.LambdaNM],
	}

	transmission := fill(make([]float64, n), 1)
	phase := make([]float64, n)
	scratch := make([]float64, n)
	hasPhase := false
	for _, st := range stages {
		st.apply(scratch, in)
		switch st.kind {
		case Absorptive:
			floats.Mul(transmission, scratch)
		case Phase:
			floats.Add(phase, scratch)
			hasPhase = true
		}
	}

	if dev.Output == OutputPhase {
		return Curve{I: intensity, Y: phase, Kind: KindPhase}, nil
	}

	if hasPhase {
		transfer(scratch, phase, dev)
		floats.Mul(transmission, scratch)
	}
	for i, v := range transmission {
		transmission[i] = physics.Clip01(v)
	}
	return Curve{I: intensity, Y: transmission, Kind: KindTransmission}, nil
}

// transfer applies the device's single phase-to-transmission function.
func transfer(dst, phase []float64, dev DeviceConfig) {
	switch dev.Topology {
	case TopologyRing:
		physics.RingTransmission(dst, phase, dev.RingSelfCoupling, dev.RingRoundTripLoss)
	default:
		physics.InterferometerTransmission(dst, phase, dev.InsertionLoss)
	}
}

func fill(s []float64, v float64) []float64 {
	for i := range s {
		s[i] = v
	}
	return s
}

// responseTime returns the material's declared tau, or the default of its
// leading effect, or the carrier-recovery default for an effect-free material.
func responseTime(props MaterialProperties) float64 {
	if props.ResponseTime != nil {
		return *props.ResponseTime
	}
	for _, tag := range props.ActiveEffects {
		if st, ok := effectRegistry[tag]; ok {
			return st.defaultTau
		}
	}
	return DefaultCarrierRecovery
}
