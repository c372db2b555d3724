package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nlo-design/modsim/sim"
)

var (
	material   string  // Material ID
	layers     int     // Number of monolayers
	lambdaNM   int     // Wavelength in nm
	qFactor    float64 // Cavity Q
	gamma      float64 // Modal overlap
	lIntUM     float64 // Interaction length in um
	outputMode string  // transmission or phase
	withCurve  bool    // Include the sampled curve in the output
)

// simulateCmd evaluates a single candidate and prints its KPIs
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Evaluate one device candidate",
	Run: func(cmd *cobra.Command, args []string) {
		catalog, err := loadCatalog()
		if err != nil {
			logrus.Fatalf("Failed to load materials: %v", err)
		}
		dev := deviceFromFlags()
		dev.Output = sim.OutputMode(outputMode)
		s, err := sim.NewSimulator(catalog, dev)
		if err != nil {
			logrus.Fatalf("Invalid device configuration: %v", err)
		}

		p := sim.Params{
			Material: sim.MaterialID(material),
			Layers:   layers,
			LambdaNM: lambdaNM,
			Q:        qFactor,
			Gamma:    gamma,
			LIntUM:   lIntUM,
		}
		logrus.Infof("Simulating %s, layers=%d, lambda=%dnm, Q=%.1f, Gamma=%.2f, topology=%s",
			p.Material, p.Layers, p.LambdaNM, p.Q, p.Gamma, s.Device().Topology)

		kpis, err := s.Simulate(p)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		if err := NewKPIReport(p, kpis, withCurve).WriteJSON(os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func init() {
	simulateCmd.Flags().StringVar(&material, "material", "MOS2", "Material ID from the catalog")
	simulateCmd.Flags().IntVar(&layers, "layers", 1, "Number of stacked monolayers")
	simulateCmd.Flags().IntVar(&lambdaNM, "lambda", 1550, "Operating wavelength (nm)")
	simulateCmd.Flags().Float64Var(&qFactor, "q", sim.DefaultQ, "Cavity quality factor")
	simulateCmd.Flags().Float64Var(&gamma, "gamma", sim.DefaultGamma, "Modal overlap with the active film")
	simulateCmd.Flags().Float64Var(&lIntUM, "l-int", sim.DefaultLIntUM, "Interaction length (um)")
	simulateCmd.Flags().StringVar(&outputMode, "output", string(sim.OutputTransmission), "Reported response (transmission, phase)")
	simulateCmd.Flags().BoolVar(&withCurve, "curve", false, "Include the sampled response curve")
}
