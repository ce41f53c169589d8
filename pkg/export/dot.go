package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/mhalvorsen/enrichmap/pkg/network"
	"github.com/mhalvorsen/enrichmap/pkg/stratify"
)

// stratumPalette colors strata in label order. Labels beyond the palette
// wrap around; the "none" stratum always renders gray.
var stratumPalette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

const noneColor = "#cccccc"

// WriteDOT renders the network as Graphviz DOT text, filling each node with
// its stratum color. Pass a nil assignment to render an uncolored graph.
// Output order is deterministic.
func WriteDOT(g *network.Graph, a *stratify.Assignment, w io.Writer) error {
	var b strings.Builder
	b.WriteString("graph enrichmap {\n")
	b.WriteString("  node [style=filled];\n")

	colors := stratumColors(a)
	for _, id := range g.NodeIDs() {
		b.WriteString("  ")
		b.WriteString(quoteID(id))
		if a != nil {
			label := a.Label(id)
			fmt.Fprintf(&b, " [fillcolor=%q, stratum=%q]", colors[label], label)
		}
		b.WriteString(";\n")
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "  %s -- %s;\n", quoteID(e.From), quoteID(e.To))
	}
	b.WriteString("}\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write dot: %w", err)
	}
	return nil
}

func stratumColors(a *stratify.Assignment) map[string]string {
	colors := map[string]string{stratify.LabelNone: noneColor}
	if a == nil {
		return colors
	}
	next := 0
	for _, label := range a.StratumLabels() {
		if label == stratify.LabelNone {
			continue
		}
		colors[label] = stratumPalette[next%len(stratumPalette)]
		next++
	}
	return colors
}

func quoteID(id string) string {
	return fmt.Sprintf("%q", id)
}
