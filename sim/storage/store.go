// Package storage persists search runs and their trials so a design
// campaign can be inspected after the process exits. The evaluation core
// never touches it; the CLI records what the search loop produced.
package storage

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/nlo-design/modsim/sim/search"
)

// RunRecord summarizes one search run.
type RunRecord struct {
	ID        string
	Seed      int64
	Trials    int
	Topology  string
	BestIndex int
	BestScore float64
	CreatedAt time.Time
}

// TrialRecord is the flattened form of a search.Trial.
type TrialRecord struct {
	RunID    string
	Index    int
	Material string
	Layers   int
	LambdaNM int
	Q        float64
	Gamma    float64
	LIntUM   float64
	Contrast float64
	T0       float64
	KneeI    float64 // NaN for flat responses
	ESwPJ    float64 // NaN for flat responses
	TauS     float64
	Score    float64
	Error    string
}

// Store defines persistence operations for search runs.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	SaveTrials(ctx context.Context, trials []TrialRecord) error
	ListTrials(ctx context.Context, runID string) ([]TrialRecord, error)
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// NewTrialRecord flattens t for storage under runID.
func NewTrialRecord(runID string, t search.Trial) TrialRecord {
	rec := TrialRecord{
		RunID:    runID,
		Index:    t.Index,
		Material: string(t.Params.Material),
		Layers:   t.Params.Layers,
		LambdaNM: t.Params.LambdaNM,
		Q:        t.Params.Q,
		Gamma:    t.Params.Gamma,
		LIntUM:   t.Params.LIntUM,
		Contrast: t.KPIs.Contrast,
		T0:       t.KPIs.T0,
		KneeI:    t.KPIs.KneeI,
		ESwPJ:    t.KPIs.ESwPJ,
		TauS:     t.KPIs.TauS,
		Score:    t.Score,
	}
	if t.Err != nil {
		rec.Error = t.Err.Error()
		rec.KneeI, rec.ESwPJ = math.NaN(), math.NaN()
	}
	return rec
}
