package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nlo-design/modsim/sim"
	"github.com/nlo-design/modsim/sim/observability"
	"github.com/nlo-design/modsim/sim/search"
	"github.com/nlo-design/modsim/sim/storage"
)

var (
	searchConfigPath string  // Search YAML config
	trials           int     // Number of evaluations
	seed             int64   // Seed for candidate sampling
	workers          int     // Concurrent evaluations
	exploreFraction  float64 // Share of uniform samples
	storeKind        string  // Trial ledger backend
	storePath        string  // SQLite file for the ledger
	metricsAddr      string  // Listen address for /metrics
)

// searchCmd runs the design search over the default space
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the design space for the best contrast per switching energy",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		job, err := newSearchJob(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if metricsAddr != "" {
			srv := &http.Server{Addr: metricsAddr, Handler: job.metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logrus.Errorf("metrics server: %v", err)
				}
			}()
			defer srv.Close()
		}

		startTime := time.Now()
		res, err := job.run(ctx, os.Stdout)
		if err != nil {
			logrus.Fatalf("Search failed: %v", err)
		}
		logrus.Infof("Search complete: %d trials in %s, best score %.4e", len(res.Trials), time.Since(startTime), res.Best.Score)
	},
}

// searchJob bundles everything one search invocation needs.
type searchJob struct {
	sim     *sim.Simulator
	space   search.Space
	opts    search.Options
	store   storage.Store
	metrics *observability.SearchCollector
}

// newSearchJob resolves catalog, config file and flags into a searchJob.
// Explicit flags override the config file, which overrides defaults.
func newSearchJob(cmd *cobra.Command) (*searchJob, error) {
	catalog, err := loadCatalog()
	if err != nil {
		return nil, fmt.Errorf("loading materials: %w", err)
	}

	dev := sim.DefaultDeviceConfig()
	space := search.DefaultSpace(catalog.BySourcing(sim.SourcingCommercial))
	opts := search.DefaultOptions()
	if searchConfigPath != "" {
		cfg, err := search.LoadConfig(searchConfigPath)
		if err != nil {
			return nil, err
		}
		opts = cfg.ApplyOptions(opts)
		space = cfg.ApplySpace(space)
		dev = cfg.ApplyDevice(dev)
	}
	dev = applyDeviceFlags(cmd, dev)
	if cmd.Flags().Changed("trials") {
		opts.Trials = trials
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = seed
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = workers
	}
	if cmd.Flags().Changed("explore") {
		opts.ExploreFraction = exploreFraction
	}

	s, err := sim.NewSimulator(catalog, dev)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStore(storeKind, storePath)
	if err != nil {
		return nil, err
	}
	collector, err := observability.NewSearchCollector(prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}
	return &searchJob{sim: s, space: space, opts: opts, store: store, metrics: collector}, nil
}

// run executes the search, records it in the ledger and prints the best
// candidate to w.
func (j *searchJob) run(ctx context.Context, w io.Writer) (search.Result, error) {
	if err := j.store.Init(ctx); err != nil {
		return search.Result{}, fmt.Errorf("initializing %s store: %w", storeKind, err)
	}
	defer func() {
		if err := storage.CloseIfSupported(j.store); err != nil {
			logrus.Warnf("closing store: %v", err)
		}
	}()

	runID := storage.NewRunID()
	logrus.Infof("Starting search %s: %d trials, seed=%d, materials=%v, topology=%s",
		runID, j.opts.Trials, j.opts.Seed, j.space.Materials, j.sim.Device().Topology)

	opts := j.opts
	best := 0.0
	opts.OnTrial = func(t search.Trial) {
		j.metrics.ObserveTrial(t)
		if t.Err == nil && t.Score > best {
			best = t.Score
			j.metrics.SetBestScore(best)
		}
	}
	res, err := search.Run(ctx, j.sim, j.space, opts)
	if len(res.Trials) > 0 {
		records := make([]storage.TrialRecord, len(res.Trials))
		for i, t := range res.Trials {
			records[i] = storage.NewTrialRecord(runID, t)
		}
		if serr := j.store.SaveTrials(ctx, records); serr != nil {
			return res, fmt.Errorf("saving trials: %w", serr)
		}
	}
	if err != nil {
		return res, err
	}
	if err := j.store.SaveRun(ctx, storage.RunRecord{
		ID:        runID,
		Seed:      j.opts.Seed,
		Trials:    len(res.Trials),
		Topology:  string(j.sim.Device().Topology),
		BestIndex: res.Best.Index,
		BestScore: res.Best.Score,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return res, fmt.Errorf("saving run: %w", err)
	}

	sum := search.Summarize(res)
	logrus.Infof("Run %s: %d evaluated, %d rejected, %d flat, mean score %.4e, by material %v",
		runID, sum.Evaluated, sum.Rejected, sum.FlatResponses, sum.MeanScore, sum.ByMaterial)

	fmt.Fprintf(w, "Run: %s\n", runID)
	fmt.Fprintf(w, "Best Score: %.4e (trial %d)\n", res.Best.Score, res.Best.Index)
	return res, NewKPIReport(res.Best.Params, res.Best.KPIs, false).WriteJSON(w)
}

func init() {
	searchCmd.Flags().StringVar(&searchConfigPath, "config", "", "Search configuration YAML")
	searchCmd.Flags().IntVar(&trials, "trials", 50, "Number of candidate evaluations")
	searchCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for candidate sampling")
	searchCmd.Flags().IntVar(&workers, "workers", 1, "Concurrent evaluations")
	searchCmd.Flags().Float64Var(&exploreFraction, "explore", 0.5, "Share of trials sampled uniformly before refinement")
	searchCmd.Flags().StringVar(&storeKind, "store", "memory", "Trial ledger backend (memory, sqlite)")
	searchCmd.Flags().StringVar(&storePath, "db", "modsim.db", "SQLite file for --store sqlite")
	searchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
}
