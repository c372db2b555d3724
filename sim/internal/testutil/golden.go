// Package testutil provides shared test infrastructure for the simulator.
// It holds the golden KPI dataset types, float assertion helpers and
// synthetic materials used across sim/ and its sub-package tests.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/golden_kpis.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one reference evaluation against the embedded catalog.
type GoldenTestCase struct {
	Name          string        `json:"name"`
	Material      string        `json:"material"`
	Layers        int           `json:"layers"`
	LambdaNM      int           `json:"lambda_nm"`
	Q             float64       `json:"q"`
	Gamma         float64       `json:"gamma"`
	LIntUM        float64       `json:"l_int_um"`
	Topology      string        `json:"topology"`
	InsertionLoss float64       `json:"insertion_loss"`
	RingT         float64       `json:"ring_t"`
	RingA         float64       `json:"ring_a"`
	KPIs          GoldenMetrics `json:"kpis"`
}

// GoldenMetrics are the expected scalar KPIs of a golden case.
type GoldenMetrics struct {
	Contrast float64 `json:"contrast"`
	T0       float64 `json:"t0"`
	KneeI    float64 `json:"knee_intensity_w_m2"`
	ESwPJ    float64 `json:"switching_energy_pj"`
	TauS     float64 `json:"response_time_s"`
	YLast    float64 `json:"y_last"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "golden_kpis.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
