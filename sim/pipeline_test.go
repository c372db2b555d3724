package sim_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlo-design/modsim/sim"
	"github.com/nlo-design/modsim/sim/internal/testutil"
	"github.com/nlo-design/modsim/sim/physics"
)

func absorber(effects ...sim.EffectTag) sim.MaterialProperties {
	m := testutil.SyntheticMaterial("SA", 1500, 1600, 0.1, 1e-12, 8e5, effects...)
	m.SaturableFraction = testutil.Float64Ptr(0.6)
	return m
}

func TestRespond_SingleAbsorberMatchesStandaloneModel(t *testing.T) {
	// GIVEN a material whose only effect is saturable absorption
	props := absorber(sim.EffectSaturableAbsorption)
	p := sim.DefaultParams("SA", 3, 1550)

	// WHEN the pipeline runs under either topology
	for _, topo := range []sim.Topology{sim.TopologyInterferometer, sim.TopologyRing} {
		dev := sim.DefaultDeviceConfig()
		dev.Topology = topo
		curve, err := sim.Respond(p, props, dev)
		require.NoError(t, err)

		// THEN the curve is exactly the standalone saturable-absorber transmission
		a0 := physics.SmallSignalAbsorption(0.1, p.LambdaM(), physics.LayersToThickness(0.65, 3))
		want := physics.SaturableAbsorption(make([]float64, curve.Len()), curve.I, 0.6*a0, (1-0.6)*a0, 8e5)
		assert.Equal(t, want, curve.Y, "topology %s", topo)
		assert.Equal(t, sim.KindTransmission, curve.Kind)
	}
}

func TestRespond_PhaseIsAccumulatedBeforeTransfer(t *testing.T) {
	// GIVEN a hybrid material: absorber then Kerr
	props := absorber(sim.EffectSaturableAbsorption, sim.EffectKerr)
	p := sim.Params{Material: "SA", Layers: 2, LambdaNM: 1550, Q: 800, Gamma: 0.4, LIntUM: 100}
	dev := sim.DefaultDeviceConfig()
	dev.InsertionLoss = 0.05

	curve, err := sim.Respond(p, props, dev)
	require.NoError(t, err)

	// THEN T = SA(I) * MZI(phi_kerr(Gamma*I))
	a0 := physics.SmallSignalAbsorption(0.1, p.LambdaM(), physics.LayersToThickness(0.65, 2))
	sa := physics.SaturableAbsorption(make([]float64, curve.Len()), curve.I, 0.6*a0, 0.4*a0, 8e5)
	scaled := make([]float64, curve.Len())
	for i, v := range curve.I {
		scaled[i] = v * 0.4
	}
	phi := physics.KerrPhase(make([]float64, curve.Len()), scaled, 1e-12, 100e-6, p.LambdaM(), physics.FieldEnhancement(800))
	mzi := physics.InterferometerTransmission(make([]float64, curve.Len()), phi, 0.05)
	for i := range curve.Y {
		assert.InDelta(t, sa[i]*mzi[i], curve.Y[i], 1e-15)
	}
}

func TestRespond_EffectOrderDoesNotChangeComposition(t *testing.T) {
	p := sim.Params{Material: "SA", Layers: 2, LambdaNM: 1550, Q: 800, Gamma: 0.4, LIntUM: 100}
	a, err := sim.Respond(p, absorber(sim.EffectSaturableAbsorption, sim.EffectKerr), sim.DefaultDeviceConfig())
	require.NoError(t, err)
	b, err := sim.Respond(p, absorber(sim.EffectKerr, sim.EffectSaturableAbsorption), sim.DefaultDeviceConfig())
	require.NoError(t, err)
	assert.Equal(t, a.Y, b.Y)
}

func TestRespond_NoEffectsYieldsConstantCurve(t *testing.T) {
	props := absorber()
	curve, err := sim.Respond(sim.DefaultParams("SA", 1, 1550), props, sim.DefaultDeviceConfig())
	require.NoError(t, err)
	for _, y := range curve.Y {
		assert.Equal(t, 1.0, y)
	}
	assert.Equal(t, 0.0, sim.Contrast(curve.Y))
}

func TestRespond_UnsupportedEffect(t *testing.T) {
	props := absorber(sim.EffectSaturableAbsorption, "two-photon-absorption")
	_, err := sim.Respond(sim.DefaultParams("SA", 1, 1550), props, sim.DefaultDeviceConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sim.ErrUnsupportedEffect))

	var ce *sim.ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, sim.EffectTag("two-photon-absorption"), ce.Effect)
}

func TestRespond_MissingWavelength(t *testing.T) {
	props := absorber(sim.EffectSaturableAbsorption)
	_, err := sim.Respond(sim.DefaultParams("SA", 1, 1310), props, sim.DefaultDeviceConfig())
	assert.ErrorIs(t, err, sim.ErrMissingWavelengthData)

	// A gap in just one of the per-wavelength maps is enough to fail.
	delete(props.SaturationIntensity, 1550)
	_, err = sim.Respond(sim.DefaultParams("SA", 1, 1550), props, sim.DefaultDeviceConfig())
	assert.ErrorIs(t, err, sim.ErrMissingWavelengthData)
}

func TestRespond_ZeroSaturationIntensityStaysFinite(t *testing.T) {
	props := absorber(sim.EffectSaturableAbsorption)
	props.SaturationIntensity = testutil.Flat(1500, 1600, 0)
	curve, err := sim.Respond(sim.DefaultParams("SA", 1, 1550), props, sim.DefaultDeviceConfig())
	require.NoError(t, err)
	for _, y := range curve.Y {
		assert.False(t, math.IsNaN(y))
	}
}

func TestRespond_PhaseOutput(t *testing.T) {
	props := testutil.SyntheticMaterial("K", 1500, 1600, 0, 1e-12, 1e9, sim.EffectKerr)
	dev := sim.DefaultDeviceConfig()
	dev.Output = sim.OutputPhase
	p := sim.Params{Material: "K", Layers: 1, LambdaNM: 1550, Q: 10, Gamma: 1, LIntUM: 50}

	curve, err := sim.Respond(p, props, dev)
	require.NoError(t, err)
	assert.Equal(t, sim.KindPhase, curve.Kind)

	// Q=10 gives FE=1.02 at the top of the sweep
	want := 2 * math.Pi / 1550e-9 * 1e-12 * 50e-6 * physics.FieldEnhancement(10) * curve.I[curve.Len()-1]
	assert.InDelta(t, want, curve.Y[curve.Len()-1], 1e-12)
	assert.Greater(t, curve.Y[curve.Len()-1], 2e-2)
}

func TestRespond_NegativeGammaIsClampedToZero(t *testing.T) {
	props := testutil.SyntheticMaterial("K", 1500, 1600, 0, 1e-11, 1e9, sim.EffectKerr)
	p := sim.Params{Material: "K", Layers: 1, LambdaNM: 1550, Q: 200, Gamma: -0.5, LIntUM: 50}
	curve, err := sim.Respond(p, props, sim.DefaultDeviceConfig())
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim.Contrast(curve.Y))
}

func TestRespond_CurveInvariants(t *testing.T) {
	materials := []sim.MaterialProperties{
		absorber(sim.EffectSaturableAbsorption),
		absorber(sim.EffectSaturableAbsorption, sim.EffectKerr),
		testutil.SyntheticMaterial("SA", 1500, 1600, 0, 1e-9, 1e9, sim.EffectKerr),
	}
	topologies := []sim.Topology{sim.TopologyInterferometer, sim.TopologyRing}
	for _, props := range materials {
		for _, topo := range topologies {
			for layers := 1; layers <= 5; layers++ {
				for _, q := range []float64{10, 200, 1000} {
					for _, gamma := range []float64{0.05, 0.5, 1} {
						p := sim.Params{Material: "SA", Layers: layers, LambdaNM: 1550, Q: q, Gamma: gamma, LIntUM: 50}
						dev := sim.DefaultDeviceConfig()
						dev.Topology = topo
						curve, err := sim.Respond(p, props, dev)
						require.NoError(t, err)
						require.Equal(t, len(curve.I), len(curve.Y))
						require.Len(t, curve.I, sim.DefaultSweep.Points)
						for i := range curve.I {
							if i > 0 {
								require.Greater(t, curve.I[i], curve.I[i-1], "I must be strictly increasing")
							}
							require.GreaterOrEqual(t, curve.Y[i], 0.0)
							require.LessOrEqual(t, curve.Y[i], 1.0)
						}
					}
				}
			}
		}
	}
}

func TestLogSweep_Bounds(t *testing.T) {
	I := sim.LogSweep(sim.DefaultSweep)
	require.Len(t, I, 300)
	assert.InDelta(t, 1e2, I[0], 1e-9)
	assert.InDelta(t, 1e8, I[len(I)-1], 1e-3)
	// log-spaced: constant ratio between neighbours
	r0 := I[1] / I[0]
	for i := 2; i < len(I); i++ {
		assert.InDelta(t, r0, I[i]/I[i-1], 1e-9)
	}
}

func TestRespond_RejectsInvalidDevice(t *testing.T) {
	props := absorber(sim.EffectSaturableAbsorption)
	p := sim.DefaultParams("SA", 1, 1550)
	tests := []struct {
		name string
		dev  sim.DeviceConfig
	}{
		{"partial sweep without points", sim.DeviceConfig{Sweep: sim.SweepConfig{MinIntensity: 1e2, MaxIntensity: 1e8}}},
		{"single point sweep", sim.DeviceConfig{Sweep: sim.SweepConfig{Points: 1, MinIntensity: 1e2, MaxIntensity: 1e8}}},
		{"unknown topology", sim.DeviceConfig{Topology: "fabry-perot"}},
		{"total insertion loss", sim.DeviceConfig{InsertionLoss: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var curve sim.Curve
			var err error
			require.NotPanics(t, func() { curve, err = sim.Respond(p, props, tt.dev) })
			assert.Error(t, err)
			assert.Zero(t, curve.Len())
		})
	}
}
