package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/nlo-design/modsim/sim"
	"github.com/nlo-design/modsim/sim/search"
)

// KPIReport is the JSON form of one evaluation. NaN metrics (flat responses)
// are emitted as null since JSON has no NaN.
type KPIReport struct {
	Material string     `json:"material"`
	Layers   int        `json:"layers"`
	LambdaNM int        `json:"lambda_nm"`
	Q        float64    `json:"q"`
	Gamma    float64    `json:"gamma"`
	LIntUM   float64    `json:"l_int_um"`
	Contrast *float64   `json:"contrast"`
	T0       *float64   `json:"t0"`
	KneeI    *float64   `json:"knee_intensity_w_m2"`
	ESwPJ    *float64   `json:"switching_energy_pj"`
	TauS     *float64   `json:"response_time_s"`
	Score    float64    `json:"score"`
	Curve    *sim.Curve `json:"curve,omitempty"`
}

// NewKPIReport assembles the report for p and k.
func NewKPIReport(p sim.Params, k sim.KPIs, withCurve bool) KPIReport {
	r := KPIReport{
		Material: string(p.Material),
		Layers:   p.Layers,
		LambdaNM: p.LambdaNM,
		Q:        p.Q,
		Gamma:    p.Gamma,
		LIntUM:   p.LIntUM,
		Contrast: finite(k.Contrast),
		T0:       finite(k.T0),
		KneeI:    finite(k.KneeI),
		ESwPJ:    finite(k.ESwPJ),
		TauS:     finite(k.TauS),
		Score:    search.Score(k),
	}
	if withCurve {
		c := k.Curve
		r.Curve = &c
	}
	return r
}

// WriteJSON writes the report as indented JSON.
func (r KPIReport) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
