package cmd

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlo-design/modsim/sim"
)

func TestKPIReport_FlatResponseEmitsNulls(t *testing.T) {
	// GIVEN KPIs of a flat response
	p := sim.DefaultParams("FLAT", 1, 1550)
	k := sim.KPIs{T0: 1, KneeI: math.NaN(), ESwPJ: math.NaN(), TauS: 5e-9}

	// WHEN the report is written
	var buf bytes.Buffer
	require.NoError(t, NewKPIReport(p, k, false).WriteJSON(&buf))

	// THEN NaN metrics become null and the output is valid JSON
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Nil(t, decoded["knee_intensity_w_m2"])
	assert.Nil(t, decoded["switching_energy_pj"])
	assert.Equal(t, 1.0, decoded["t0"])
	assert.Equal(t, 0.0, decoded["contrast"])
	assert.Equal(t, 0.0, decoded["score"])
	assert.NotContains(t, decoded, "curve")
}

func TestKPIReport_IncludesCurveOnRequest(t *testing.T) {
	k := sim.KPIs{
		Contrast: 0.5, T0: 0.4, KneeI: 1e6, ESwPJ: 0.5, TauS: 5e-9,
		Curve: sim.Curve{I: []float64{1, 2}, Y: []float64{0.4, 0.9}, Kind: sim.KindTransmission},
	}
	r := NewKPIReport(sim.DefaultParams("MOS2", 2, 1550), k, true)
	require.NotNil(t, r.Curve)
	assert.Equal(t, []float64{0.4, 0.9}, r.Curve.Y)
	assert.Equal(t, 1.0, r.Score)
	require.NotNil(t, r.KneeI)
	assert.Equal(t, 1e6, *r.KneeI)
}

func TestFinite(t *testing.T) {
	assert.Nil(t, finite(math.NaN()))
	assert.Nil(t, finite(math.Inf(1)))
	require.NotNil(t, finite(0))
	assert.Equal(t, 0.0, *finite(0))
}
