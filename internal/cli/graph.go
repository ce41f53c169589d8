package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mhalvorsen/enrichmap/pkg/network"
	"github.com/mhalvorsen/enrichmap/pkg/pipeline"
)

// graphCommand creates the graph inspection command.
func (c *CLI) graphCommand() *cobra.Command {
	var radius int

	cmd := &cobra.Command{
		Use:   "graph <graph.json>",
		Short: "Inspect network structure and neighborhood sizes",
		Long: `Graph loads a node-link graph, validates it, and prints structural
statistics: node and edge counts, degree distribution, and the neighborhood
size distribution at the given radius.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := network.ReadGraphFile(args[0])
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			idx, err := network.BuildNeighborhoods(g, radius)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Indexed %d neighborhoods", idx.Size()))

			printSuccess("Loaded %s", args[0])
			if name, ok := g.Meta()["name"].(string); ok && name != "" {
				printKeyValue("name", name)
			}
			printKeyValue("nodes", fmt.Sprintf("%d", g.NodeCount()))
			printKeyValue("edges", fmt.Sprintf("%d", g.EdgeCount()))

			degMin, degMed, degMax, isolated := degreeStats(g)
			printKeyValue("degree", fmt.Sprintf("min %d / median %d / max %d", degMin, degMed, degMax))
			if isolated > 0 {
				printWarning("%d isolated nodes (their neighborhoods contain only themselves)", isolated)
			}

			nMin, nMed, nMax := neighborhoodStats(idx)
			printKeyValue("radius", fmt.Sprintf("%d", idx.Radius()))
			printKeyValue("nbhd size", fmt.Sprintf("min %d / median %d / max %d", nMin, nMed, nMax))

			printNewline()
			printNextStep("Run analysis", fmt.Sprintf("enrichmap analyze %s --features <matrix.csv>", args[0]))
			return nil
		},
	}

	cmd.Flags().IntVarP(&radius, "radius", "r", pipeline.DefaultRadius, "neighborhood radius in hops")

	return cmd
}

// degreeStats computes min, median, and max degree plus the isolated count.
func degreeStats(g *network.Graph) (min, median, max, isolated int) {
	ids := g.NodeIDs()
	if len(ids) == 0 {
		return 0, 0, 0, 0
	}
	degrees := make([]int, len(ids))
	for i, id := range ids {
		d := len(g.Neighbors(id))
		degrees[i] = d
		if d == 0 {
			isolated++
		}
	}
	sort.Ints(degrees)
	return degrees[0], degrees[len(degrees)/2], degrees[len(degrees)-1], isolated
}

// neighborhoodStats computes min, median, and max neighborhood size.
func neighborhoodStats(idx *network.NeighborhoodIndex) (min, median, max int) {
	ids := idx.NodeIDs()
	if len(ids) == 0 {
		return 0, 0, 0
	}
	sizes := make([]int, len(ids))
	for i, id := range ids {
		sizes[i] = len(idx.Members(id))
	}
	sort.Ints(sizes)
	return sizes[0], sizes[len(sizes)/2], sizes[len(sizes)-1]
}
