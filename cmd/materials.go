package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nlo-design/modsim/sim/materials"
)

// materialsCmd lists the material catalog
var materialsCmd = &cobra.Command{
	Use:   "materials",
	Short: "List materials in the catalog",
	Run: func(cmd *cobra.Command, args []string) {
		catalog, err := loadCatalog()
		if err != nil {
			logrus.Fatalf("Failed to load materials: %v", err)
		}
		if err := printCatalog(os.Stdout, catalog); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func printCatalog(w io.Writer, catalog *materials.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCING\tEFFECTS\tWAVELENGTHS")
	for _, id := range catalog.IDs() {
		props, _ := catalog.Lookup(id)
		effects := make([]string, len(props.ActiveEffects))
		for i, e := range props.ActiveEffects {
			effects[i] = string(e)
		}
		nms := props.Wavelengths()
		span := "-"
		if len(nms) > 0 {
			span = fmt.Sprintf("%d-%d nm", nms[0], nms[len(nms)-1])
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id, props.Sourcing, strings.Join(effects, ","), span)
	}
	return tw.Flush()
}
