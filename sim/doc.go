// Package sim provides the response-simulation core for thin-film nonlinear
// optical modulators.
//
// # Reading Guide
//
// Start with these files to understand the evaluation kernel:
//   - material.go: MaterialProperties, effect tags and the PropertyProvider capability
//   - pipeline.go: the effect algebra that turns a material into one response Curve
//   - kpi.go: reduction of a Curve into switching metrics
//   - simulator.go: the Simulate facade called by the search loop
//
// # Architecture
//
// The sim package owns the data contracts and the evaluation flow; numeric
// models and collaborators live in sub-packages:
//   - sim/physics/: pure effect models and device transfer functions
//   - sim/materials/: built-in material catalog and YAML loader (a PropertyProvider)
//   - sim/search/: scorer, parameter space and seeded random search
//   - sim/storage/: trial ledger (memory, sqlite)
//   - sim/observability/: Prometheus metrics for search evaluations
//
// # Effect Algebra
//
// Active effects are applied in the order the material declares them.
// Absorptive effects multiply into the running transmission; phase effects add
// into the running phase. The accumulated phase is converted to transmission
// exactly once, by the device's transfer function (DeviceConfig.Topology).
//
// # Determinism
//
// Simulate holds no mutable state. Identical Params and an unchanged property
// snapshot always produce bit-identical KPIs, and a Simulator may be shared by
// any number of goroutines.
package sim
