package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlo-design/modsim/sim"
	"github.com/nlo-design/modsim/sim/storage"
)

func TestSearchJob_ConfigFileOverridesDefaults(t *testing.T) {
	// GIVEN a config file narrowing the space and shrinking the budget
	path := filepath.Join(t.TempDir(), "search.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
search:
  trials: 6
  seed: 3
space:
  materials: [WS2]
  lambda_nm: {min: 1500, max: 1560}
device:
  topology: ring
`), 0o644))
	old := searchConfigPath
	searchConfigPath = path
	t.Cleanup(func() { searchConfigPath = old })

	// WHEN the job is built with no explicit flags
	job, err := newSearchJob(searchCmd)
	require.NoError(t, err)

	// THEN the file wins over the defaults
	assert.Equal(t, 6, job.opts.Trials)
	assert.Equal(t, int64(3), job.opts.Seed)
	assert.Equal(t, []sim.MaterialID{"WS2"}, job.space.Materials)
	assert.Equal(t, 1500, job.space.LambdaNM.Min)
	assert.Equal(t, sim.TopologyRing, job.sim.Device().Topology)
}

func TestSearchJob_RunRecordsTrials(t *testing.T) {
	// GIVEN a search job over the default space
	old := searchConfigPath
	searchConfigPath = ""
	t.Cleanup(func() { searchConfigPath = old })
	job, err := newSearchJob(searchCmd)
	require.NoError(t, err)
	job.opts.Trials = 10
	job.opts.Workers = 2
	mem := storage.NewMemoryStore()
	job.store = mem

	// WHEN it runs
	var out bytes.Buffer
	res, err := job.run(context.Background(), &out)
	require.NoError(t, err)

	// THEN the ledger holds the run and every trial, and the best candidate is printed
	require.Len(t, res.Trials, 10)
	output := out.String()
	require.True(t, strings.HasPrefix(output, "Run: "))
	runID := strings.TrimSpace(strings.TrimPrefix(strings.SplitN(output, "\n", 2)[0], "Run: "))

	run, ok, err := mem.GetRun(context.Background(), runID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res.Best.Index, run.BestIndex)
	assert.Equal(t, res.Best.Score, run.BestScore)
	assert.Equal(t, "interferometer", run.Topology)

	trials, err := mem.ListTrials(context.Background(), runID)
	require.NoError(t, err)
	assert.Len(t, trials, 10)

	assert.Contains(t, output, "Best Score:")
	assert.Contains(t, output, `"material": "`+string(res.Best.Params.Material)+`"`)
	assert.Contains(t, []sim.MaterialID{"MOS2", "WS2"}, res.Best.Params.Material, "default space is the commercial materials")
}

// setRootFlag sets a persistent flag for one test and restores it afterwards.
func setRootFlag(t *testing.T, name, value string) {
	t.Helper()
	f := rootCmd.PersistentFlags().Lookup(name)
	require.NotNil(t, f)
	old := f.Value.String()
	require.NoError(t, rootCmd.PersistentFlags().Set(name, value))
	t.Cleanup(func() {
		_ = f.Value.Set(old)
		f.Changed = false
	})
}

func TestSearchJob_DeviceFlagOverridesOnlyItsField(t *testing.T) {
	// GIVEN a config selecting the ring topology
	path := filepath.Join(t.TempDir(), "search.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
device:
  topology: ring
  ring_round_trip_loss: 0.85
`), 0o644))
	old := searchConfigPath
	searchConfigPath = path
	t.Cleanup(func() { searchConfigPath = old })

	// WHEN only --ring-t is given on the command line
	setRootFlag(t, "ring-t", "0.8")
	job, err := newSearchJob(searchCmd)
	require.NoError(t, err)

	// THEN the flag wins for its field and the config keeps the rest
	dev := job.sim.Device()
	assert.Equal(t, sim.TopologyRing, dev.Topology)
	assert.Equal(t, 0.8, dev.RingSelfCoupling)
	assert.Equal(t, 0.85, dev.RingRoundTripLoss)
}

func TestSearchJob_TopologyFlagOverridesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.yaml")
	require.NoError(t, os.WriteFile(path, []byte("device:\n  topology: ring\n"), 0o644))
	old := searchConfigPath
	searchConfigPath = path
	t.Cleanup(func() { searchConfigPath = old })

	setRootFlag(t, "topology", "interferometer")
	job, err := newSearchJob(searchCmd)
	require.NoError(t, err)
	assert.Equal(t, sim.TopologyInterferometer, job.sim.Device().Topology)
}
