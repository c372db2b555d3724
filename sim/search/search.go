package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nlo-design/modsim/sim"
)

// Evaluator is the single capability the search needs from the core.
// *sim.Simulator satisfies it.
type Evaluator interface {
	Simulate(p sim.Params) (sim.KPIs, error)
}

// Options configures a search run.
type Options struct {
	Trials          int     // total evaluations (> 0)
	Seed            int64   // master seed; equal seeds replay identical runs
	Workers         int     // concurrent evaluations per round (default 1)
	ExploreFraction float64 // share of trials drawn uniformly before refinement, in [0,1]
	RoundSize       int     // refinement candidates per round (default 8)

	// OnTrial, if set, is called for every trial in index order after its
	// round completes. It runs on the caller's goroutine.
	OnTrial func(Trial)
}

// DefaultOptions mirrors the reference optimizer budget: 50 calls, seed 42.
func DefaultOptions() Options {
	return Options{Trials: 50, Seed: 42, Workers: 1, ExploreFraction: 0.5, RoundSize: 8}
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.RoundSize <= 0 {
		o.RoundSize = 8
	}
	return o
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.Trials <= 0 {
		return fmt.Errorf("search: trials must be positive, got %d", o.Trials)
	}
	if o.ExploreFraction < 0 || o.ExploreFraction > 1 || math.IsNaN(o.ExploreFraction) {
		return fmt.Errorf("search: explore fraction must be in [0,1], got %v", o.ExploreFraction)
	}
	return nil
}

// Trial is one evaluated candidate. Err is set for candidates the core
// rejected (e.g. a wavelength the material has no data for); such trials
// score 0 and do not stop the search.
type Trial struct {
	Index  int
	Params sim.Params
	KPIs   sim.KPIs
	Score  float64
	Err    error
}

// Result is the outcome of a search run.
type Result struct {
	Best        Trial
	Trials      []Trial
	Convergence []float64 // best score seen after each trial
}

// ErrNoValidTrial is returned when every candidate was rejected.
var ErrNoValidTrial = errors.New("search: no candidate evaluated successfully")

// Run explores the space: first ExploreFraction of the trials are drawn
// uniformly, the rest are drawn in rounds around the best candidate so far.
// Sampling happens on the calling goroutine and results are stored by trial
// index, so the outcome depends only on the seed and the evaluator, never on
// worker scheduling.
func Run(ctx context.Context, eval Evaluator, space Space, opts Options) (Result, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if err := space.Validate(); err != nil {
		return Result{}, err
	}

	rng := NewPartitionedRNG(opts.Seed)
	explore := rng.ForSubsystem(SubsystemExplore)
	refine := rng.ForSubsystem(SubsystemRefine)

	res := Result{
		Best:        Trial{Index: -1},
		Trials:      make([]Trial, 0, opts.Trials),
		Convergence: make([]float64, 0, opts.Trials),
	}
	nExplore := int(math.Ceil(opts.ExploreFraction * float64(opts.Trials)))
	if nExplore == 0 {
		nExplore = 1
	}

	for len(res.Trials) < opts.Trials {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("search interrupted after %d trials: %w", len(res.Trials), err)
		}
		var batch []sim.Params
		if len(res.Trials) < nExplore {
			for range min(nExplore, opts.Trials) - len(res.Trials) {
				batch = append(batch, space.Sample(explore))
			}
		} else {
			center := res.Best.Params
			if res.Best.Index < 0 {
				center = space.Sample(refine)
			}
			for range min(opts.RoundSize, opts.Trials-len(res.Trials)) {
				batch = append(batch, space.Perturb(center, refine))
			}
		}

		trials, err := evaluateBatch(ctx, eval, batch, len(res.Trials), opts.Workers)
		if err != nil {
			return res, err
		}
		for _, t := range trials {
			res.Trials = append(res.Trials, t)
			if t.Err == nil && (res.Best.Index < 0 || t.Score > res.Best.Score) {
				res.Best = t
			}
			best := 0.0
			if res.Best.Index >= 0 {
				best = res.Best.Score
			}
			res.Convergence = append(res.Convergence, best)
			if t.Err != nil {
				logrus.Debugf("trial %d: %s rejected: %v", t.Index, t.Params.Material, t.Err)
			} else {
				logrus.Debugf("trial %d: %s layers=%d lambda=%dnm Q=%.1f Gamma=%.2f -> score %.4e",
					t.Index, t.Params.Material, t.Params.Layers, t.Params.LambdaNM, t.Params.Q, t.Params.Gamma, t.Score)
			}
			if opts.OnTrial != nil {
				opts.OnTrial(t)
			}
		}
	}

	if res.Best.Index < 0 {
		return res, ErrNoValidTrial
	}
	return res, nil
}

// evaluateBatch runs the candidates on up to workers goroutines.
func evaluateBatch(ctx context.Context, eval Evaluator, batch []sim.Params, offset, workers int) ([]Trial, error) {
	out := make([]Trial, len(batch))
	idx := make(chan int)
	var wg sync.WaitGroup
	for range min(workers, len(batch)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				t := Trial{Index: offset + i, Params: batch[i]}
				t.KPIs, t.Err = eval.Simulate(batch[i])
				if t.Err == nil {
					t.Score = Score(t.KPIs)
				}
				out[i] = t
			}
		}()
	}

	var err error
feed:
	for i := range batch {
		select {
		case <-ctx.Done():
			err = fmt.Errorf("search interrupted after %d trials: %w", offset+i, ctx.Err())
			break feed
		case idx <- i:
		}
	}
	close(idx)
	wg.Wait()
	return out, err
}
