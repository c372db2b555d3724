package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/nlo-design/modsim/sim"
	"github.com/nlo-design/modsim/sim/search"
)

func TestObserveTrialRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewSearchCollector(reg)
	if err != nil {
		t.Fatalf("NewSearchCollector: %v", err)
	}

	c.ObserveTrial(search.Trial{
		Params: sim.Params{Material: "MOS2"},
		KPIs:   sim.KPIs{Contrast: 1e-3, ESwPJ: 0.4},
		Score:  2.5e-3,
	})
	c.ObserveTrial(search.Trial{
		Params: sim.Params{Material: "MOS2"},
		KPIs:   sim.KPIs{T0: 1},
	})
	c.ObserveTrial(search.Trial{
		Params: sim.Params{Material: "MOSE2"},
		Err:    &sim.ConfigurationError{Material: "MOSE2", Err: sim.ErrMissingWavelengthData},
	})

	if got := testutil.ToFloat64(c.Evaluations.WithLabelValues("MOS2", OutcomeOK)); got != 2 {
		t.Fatalf("modsim_evaluations_total{MOS2,ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Evaluations.WithLabelValues("MOSE2", OutcomeMissingWavelength)); got != 1 {
		t.Fatalf("modsim_evaluations_total{MOSE2,missing_wavelength} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.FlatCurves); got != 1 {
		t.Fatalf("modsim_flat_responses_total = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "modsim_candidate_score"); count != 2 {
		t.Fatalf("modsim_candidate_score sample_count = %d, want 2", count)
	}
}

func TestOutcomeLabels(t *testing.T) {
	cases := map[string]error{
		OutcomeOK:                nil,
		OutcomeUnknownMaterial:   &sim.ConfigurationError{Err: sim.ErrUnknownMaterial},
		OutcomeMissingWavelength: &sim.ConfigurationError{Err: sim.ErrMissingWavelengthData},
		OutcomeUnsupportedEffect: &sim.ConfigurationError{Err: sim.ErrUnsupportedEffect},
		OutcomeInvalidParams:     &sim.ConfigurationError{Err: sim.ErrInvalidParams},
		OutcomeError:             http.ErrServerClosed,
	}
	for want, err := range cases {
		if got := Outcome(err); got != want {
			t.Errorf("Outcome(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestNewSearchCollectorReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewSearchCollector(reg)
	if err != nil {
		t.Fatalf("first NewSearchCollector: %v", err)
	}
	second, err := NewSearchCollector(reg)
	if err != nil {
		t.Fatalf("second NewSearchCollector: %v", err)
	}
	first.SetBestScore(0.5)
	if got := testutil.ToFloat64(second.BestScore); got != 0.5 {
		t.Fatalf("shared modsim_best_score = %v, want 0.5", got)
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *SearchCollector
	c.ObserveTrial(search.Trial{})
	c.SetBestScore(1)
	if c.Gatherer() != nil {
		t.Fatal("nil collector should have no gatherer")
	}
}

func TestMetricsHandlerExposesSearchMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewSearchCollector(reg)
	if err != nil {
		t.Fatalf("NewSearchCollector: %v", err)
	}
	c.ObserveTrial(search.Trial{Params: sim.Params{Material: "WS2"}, KPIs: sim.KPIs{Contrast: 1}, Score: 1})
	c.SetBestScore(1)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics handler status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`modsim_evaluations_total{material="WS2",outcome="ok"} 1`,
		"modsim_best_score 1",
		"modsim_candidate_score_count 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func histogramSampleCount(t *testing.T, reg *prometheus.Registry, name string) uint64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name || mf.GetType() != dto.MetricType_HISTOGRAM {
			continue
		}
		var total uint64
		for _, m := range mf.GetMetric() {
			total += m.GetHistogram().GetSampleCount()
		}
		return total
	}
	t.Fatalf("histogram %s not found", name)
	return 0
}
