package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nlo-design/modsim/sim"
)

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(Result{})
	assert.Zero(t, s.Trials)
	assert.Zero(t, s.MeanScore)
	assert.NotNil(t, s.ByMaterial)
}

func TestSummarize_CountsOutcomes(t *testing.T) {
	res := Result{
		Trials: []Trial{
			{Index: 0, Params: sim.Params{Material: "MOS2"}, KPIs: sim.KPIs{Contrast: 0.1}, Score: 0.2},
			{Index: 1, Params: sim.Params{Material: "MOS2"}, KPIs: sim.KPIs{T0: 1}},
			{Index: 2, Params: sim.Params{Material: "WS2"}, Err: errors.New("rejected")},
			{Index: 3, Params: sim.Params{Material: "WS2"}, KPIs: sim.KPIs{Contrast: 0.3}, Score: 0.4},
		},
	}
	res.Best = res.Trials[3]

	s := Summarize(res)
	assert.Equal(t, 4, s.Trials)
	assert.Equal(t, 3, s.Evaluated)
	assert.Equal(t, 1, s.Rejected)
	assert.Equal(t, 1, s.FlatResponses)
	assert.Equal(t, 0.4, s.BestScore)
	assert.InDelta(t, 0.2, s.MeanScore, 1e-12)
	assert.Equal(t, map[sim.MaterialID]int{"MOS2": 2, "WS2": 2}, s.ByMaterial)
}
