// Package physics holds the stateless effect models used by the response
// pipeline. Every function is pure: it reads its inputs, writes only into the
// destination slice it is given (or returns a scalar), and never retains
// references to either.
//
// Functions that produce a curve follow the gonum floats convention: the
// result is written into dst, which must have the same length as the input
// intensity (or phase) slice, and dst is returned for chaining. Passing a dst
// of the wrong length panics, as gonum does.
package physics

import (
	"math"
)

const (
	// MinSaturationIntensity is the floor applied to Isat (W/m^2).
	MinSaturationIntensity = 1e-30

	// MinWavelength is the floor applied to the wavelength (m).
	MinWavelength = 1e-15

	// MinRingDenominator keeps the ring transfer function finite at critical coupling.
	MinRingDenominator = 1e-12

	// MaxSmallSignalAbsorption caps A0 so a thick film never becomes fully opaque.
	MaxSmallSignalAbsorption = 0.95

	// FieldEnhancementPerQ is the linear cavity build-up coefficient used by FieldEnhancement.
	FieldEnhancementPerQ = 0.002
)

// SaturableAbsorption writes T = 1 - alphaNS - alpha0/(1+I/Isat) into dst,
// clipped to [0,1].
func SaturableAbsorption(dst, intensity []float64, alpha0, alphaNS, isat float64) []float64 {
	mustSameLen(dst, intensity)
	isat = math.Max(isat, MinSaturationIntensity)
	for i, in := range intensity {
		dst[i] = Clip01(1 - alphaNS - alpha0/(1+in/isat))
	}
	return dst
}

// KerrPhase writes phi = (2*pi/lambda) * n2 * L * FE * I into dst.
// lambdaM and lIntM are in metres, n2 in m^2/W.
func KerrPhase(dst, intensity []float64, n2, lIntM, lambdaM, fieldEnhancement float64) []float64 {
	mustSameLen(dst, intensity)
	k0 := 2 * math.Pi / math.Max(lambdaM, MinWavelength)
	coeff := k0 * n2 * lIntM * fieldEnhancement
	for i, in := range intensity {
		dst[i] = coeff * in
	}
	return dst
}

// InterferometerTransmission converts phase to transmission for a balanced
// two-path interferometer: T = 0.5*(1+cos(phi)) * (1-insertionLoss).
// insertionLoss is clamped to [0,1].
func InterferometerTransmission(dst, phi []float64, insertionLoss float64) []float64 {
	mustSameLen(dst, phi)
	scale := 1 - Clip01(insertionLoss)
	for i, p := range phi {
		dst[i] = 0.5 * (1 + math.Cos(p)) * scale
	}
	return dst
}

// RingTransmission converts round-trip phase to through-port transmission of
// an all-pass ring: T = (t-a)^2 / (1 - 2*a*t*cos(phi) + (a*t)^2).
// t is the self-coupling and a the round-trip amplitude, both clamped to [0,1].
func RingTransmission(dst, phi []float64, t, a float64) []float64 {
	mustSameLen(dst, phi)
	t, a = Clip01(t), Clip01(a)
	num := (t - a) * (t - a)
	at := a * t
	for i, p := range phi {
		den := math.Max(1-2*at*math.Cos(p)+at*at, MinRingDenominator)
		dst[i] = Clip01(num / den)
	}
	return dst
}

// SmallSignalAbsorption returns the low-intensity absorbed fraction of a film
// of the given thickness from its extinction coefficient (Beer-Lambert):
// alpha = 4*pi*k/lambda, T0 = exp(-alpha*d), A0 = 1-T0 capped at
// MaxSmallSignalAbsorption.
func SmallSignalAbsorption(k, lambdaM, thicknessM float64) float64 {
	alpha := 4 * math.Pi * k / math.Max(lambdaM, MinWavelength)
	a0 := 1 - math.Exp(-alpha*thicknessM)
	return math.Max(0, math.Min(a0, MaxSmallSignalAbsorption))
}

// FieldEnhancement is the first-order cavity intensity boost for quality factor q.
func FieldEnhancement(q float64) float64 {
	return 1 + FieldEnhancementPerQ*math.Max(q, 0)
}

// LayersToThickness returns the total film thickness in metres.
func LayersToThickness(layerThicknessNM float64, layers int) float64 {
	return layerThicknessNM * 1e-9 * float64(max(layers, 0))
}

// Clip01 clamps v into [0,1].
func Clip01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func mustSameLen(dst, src []float64) {
	if len(dst) != len(src) {
		panic("physics: slice length mismatch")
	}
}
