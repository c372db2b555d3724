// Package observability exposes Prometheus metrics for search campaigns.
package observability

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nlo-design/modsim/sim"
	"github.com/nlo-design/modsim/sim/search"
)

// Outcome label values for modsim_evaluations_total.
const (
	OutcomeOK                = "ok"
	OutcomeUnknownMaterial   = "unknown_material"
	OutcomeMissingWavelength = "missing_wavelength"
	OutcomeUnsupportedEffect = "unsupported_effect"
	OutcomeInvalidParams     = "invalid_params"
	OutcomeError             = "error"
)

// SearchCollector exposes search-specific Prometheus metrics.
type SearchCollector struct {
	gatherer prometheus.Gatherer

	Evaluations *prometheus.CounterVec
	Scores      prometheus.Histogram
	BestScore   prometheus.Gauge
	FlatCurves  prometheus.Counter
}

// NewSearchCollector registers search metrics against the provided registerer.
func NewSearchCollector(reg prometheus.Registerer) (*SearchCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "modsim_evaluations_total",
		Help: "Candidate evaluations performed by the search, by material and outcome.",
	}, []string{"material", "outcome"})
	if err := reg.Register(evaluations); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("collector modsim_evaluations_total already registered with incompatible type")
		}
		evaluations = existing
	}

	scores, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "modsim_candidate_score",
		Help:    "Figure of merit (contrast per pJ) of successfully evaluated candidates.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 10, 14),
	}), "modsim_candidate_score")
	if err != nil {
		return nil, err
	}

	best, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "modsim_best_score",
		Help: "Best figure of merit seen so far in the current search.",
	}), "modsim_best_score")
	if err != nil {
		return nil, err
	}

	flat, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "modsim_flat_responses_total",
		Help: "Evaluations whose response curve had zero contrast.",
	}), "modsim_flat_responses_total")
	if err != nil {
		return nil, err
	}

	return &SearchCollector{
		gatherer:    gatherer,
		Evaluations: evaluations,
		Scores:      scores,
		BestScore:   best,
		FlatCurves:  flat,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *SearchCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *SearchCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Gatherer(), promhttp.HandlerOpts{})
}

// ObserveTrial records one trial. It has the signature of search.Options.OnTrial.
func (c *SearchCollector) ObserveTrial(t search.Trial) {
	if c == nil {
		return
	}
	c.Evaluations.WithLabelValues(string(t.Params.Material), Outcome(t.Err)).Inc()
	if t.Err != nil {
		return
	}
	c.Scores.Observe(t.Score)
	if t.KPIs.Contrast == 0 {
		c.FlatCurves.Inc()
	}
}

// SetBestScore updates the best-score gauge.
func (c *SearchCollector) SetBestScore(score float64) {
	if c == nil || c.BestScore == nil {
		return
	}
	c.BestScore.Set(score)
}

// Outcome maps a Simulate error to its metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, sim.ErrUnknownMaterial):
		return OutcomeUnknownMaterial
	case errors.Is(err, sim.ErrMissingWavelengthData):
		return OutcomeMissingWavelength
	case errors.Is(err, sim.ErrUnsupportedEffect):
		return OutcomeUnsupportedEffect
	case errors.Is(err, sim.ErrInvalidParams):
		return OutcomeInvalidParams
	default:
		return OutcomeError
	}
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
