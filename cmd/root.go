package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nlo-design/modsim/sim"
	"github.com/nlo-design/modsim/sim/materials"
)

var (
	logLevel      string  // Log verbosity level
	materialsPath string  // Material catalog YAML (empty = embedded catalog)
	topology      string  // Device transfer function
	insertionLoss float64 // Interferometer insertion loss
	ringT         float64 // Ring self-coupling
	ringA         float64 // Ring round-trip amplitude
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "modsim",
	Short: "Response simulator and design search for nonlinear thin-film modulators",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadCatalog returns the catalog named by --materials, or the embedded one.
func loadCatalog() (*materials.Catalog, error) {
	if materialsPath == "" {
		return materials.Default(), nil
	}
	return materials.Load(materialsPath)
}

// deviceFromFlags builds the device configuration from the global flags.
func deviceFromFlags() sim.DeviceConfig {
	dev := sim.DefaultDeviceConfig()
	dev.Topology = sim.Topology(topology)
	dev.InsertionLoss = insertionLoss
	dev.RingSelfCoupling = ringT
	dev.RingRoundTripLoss = ringA
	return dev
}

// applyDeviceFlags overlays only the device flags set on the command line, so
// a config file keeps every device field the user did not override.
func applyDeviceFlags(cmd *cobra.Command, dev sim.DeviceConfig) sim.DeviceConfig {
	if flagChanged(cmd, "topology") {
		dev.Topology = sim.Topology(topology)
	}
	if flagChanged(cmd, "insertion-loss") {
		dev.InsertionLoss = insertionLoss
	}
	if flagChanged(cmd, "ring-t") {
		dev.RingSelfCoupling = ringT
	}
	if flagChanged(cmd, "ring-a") {
		dev.RingRoundTripLoss = ringA
	}
	return dev
}

// flagChanged reports whether name was set, including persistent flags
// inherited from the root command.
func flagChanged(cmd *cobra.Command, name string) bool {
	return cmd.Flags().Changed(name) || cmd.InheritedFlags().Changed(name)
}

// init sets up global flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&materialsPath, "materials", "", "Material catalog YAML (default: built-in catalog)")
	rootCmd.PersistentFlags().StringVar(&topology, "topology", string(sim.TopologyInterferometer), "Device transfer function (interferometer, ring)")
	rootCmd.PersistentFlags().Float64Var(&insertionLoss, "insertion-loss", 0, "Interferometer insertion loss, fraction in [0,1)")
	rootCmd.PersistentFlags().Float64Var(&ringT, "ring-t", sim.DefaultRingSelfCoupling, "Ring self-coupling coefficient t")
	rootCmd.PersistentFlags().Float64Var(&ringA, "ring-a", sim.DefaultRingRoundTripLoss, "Ring round-trip amplitude a")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(materialsCmd)
}
