package stratify

import (
	"slices"
	"testing"

	"github.com/mhalvorsen/enrichmap/pkg/safe"
)

// corrected builds a two-node corrected result with explicit cells. Cells
// are given per feature in node order n1, n2.
func corrected(features []string, cells [][]safe.Cell) *safe.Result {
	return &safe.Result{
		NodeIDs:   []string{"n1", "n2"},
		Features:  features,
		Cells:     cells,
		Alpha:     0.05,
		Corrected: true,
	}
}

func sig(p, q float64) safe.Cell {
	return safe.Cell{P: p, Q: q, Direction: safe.DirectionEnriched, Significant: true}
}

func insig() safe.Cell {
	return safe.Cell{P: 0.9, Q: 0.9, Direction: safe.DirectionNone}
}

func TestAssignDominantFeature(t *testing.T) {
	r := corrected(
		[]string{"weak", "strong"},
		[][]safe.Cell{
			{sig(0.04, 0.04), insig()},
			{sig(0.001, 0.002), insig()},
		},
	)

	a := Assign(r)
	if got := a.Label("n1"); got != "strong" {
		t.Errorf("Label(n1) = %q, want strong", got)
	}
	if got := a.Label("n2"); got != LabelNone {
		t.Errorf("Label(n2) = %q, want none", got)
	}
}

func TestAssignTieBreaksOnFeatureOrder(t *testing.T) {
	tie := sig(0.01, 0.02)
	r := corrected(
		[]string{"first", "second"},
		[][]safe.Cell{
			{tie, insig()},
			{tie, insig()},
		},
	)

	a := Assign(r)
	if got := a.Label("n1"); got != "first" {
		t.Errorf("Label(n1) = %q, want first (tie resolves to input order)", got)
	}
}

func TestAssignSkipsUndefinedCells(t *testing.T) {
	undef := safe.Cell{P: 1, Q: 0, Direction: safe.DirectionUndefined, Significant: true}
	r := corrected(
		[]string{"degenerate", "real"},
		[][]safe.Cell{
			{undef, undef},
			{sig(0.01, 0.01), insig()},
		},
	)

	a := Assign(r)
	if got := a.Label("n1"); got != "real" {
		t.Errorf("Label(n1) = %q, want real (undefined cells never dominate)", got)
	}
	if got := a.Label("n2"); got != LabelNone {
		t.Errorf("Label(n2) = %q, want none", got)
	}
}

func TestAssignUncorrectedResultAllNone(t *testing.T) {
	r := &safe.Result{
		NodeIDs:  []string{"n1", "n2"},
		Features: []string{"f"},
		Cells:    [][]safe.Cell{{{P: 0.001}, {P: 0.001}}},
	}
	a := Assign(r)
	for _, node := range r.NodeIDs {
		if got := a.Label(node); got != LabelNone {
			t.Errorf("Label(%s) = %q, want none for uncorrected input", node, got)
		}
	}
}

func TestStrata(t *testing.T) {
	a := &Assignment{Labels: map[string]string{
		"n1": "f1",
		"n2": "f1",
		"n3": LabelNone,
	}}
	strata := a.Strata()
	if !slices.Equal(strata["f1"], []string{"n1", "n2"}) {
		t.Errorf("strata[f1] = %v, want [n1 n2]", strata["f1"])
	}
	if !slices.Equal(strata[LabelNone], []string{"n3"}) {
		t.Errorf("strata[none] = %v, want [n3]", strata[LabelNone])
	}
}

func TestStratumLabelsNoneLast(t *testing.T) {
	a := &Assignment{Labels: map[string]string{
		"n1": "zeta",
		"n2": LabelNone,
		"n3": "alpha",
	}}
	got := a.StratumLabels()
	want := []string{"alpha", "zeta", LabelNone}
	if !slices.Equal(got, want) {
		t.Errorf("StratumLabels() = %v, want %v", got, want)
	}
}
