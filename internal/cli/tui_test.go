package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mhalvorsen/enrichmap/pkg/export"
	"github.com/mhalvorsen/enrichmap/pkg/safe"
)

func testFeatureModel() FeatureListModel {
	result := &safe.Result{
		NodeIDs:  []string{"a", "b", "c"},
		Features: []string{"expr", "flat"},
		Cells: [][]safe.Cell{
			{
				{Q: 0.002, Score: 0.9, Direction: safe.DirectionEnriched, Significant: true},
				{Q: 0.01, Score: 0.7, Direction: safe.DirectionEnriched, Significant: true},
				{Q: 0.9, Score: 0.1},
			},
			{
				{Q: 0.8, Score: 0.1},
				{Q: 0.8, Score: 0.1},
				{Q: 0.8, Score: 0.1},
			},
		},
		Corrected: true,
	}
	rankings := export.RankFeatures(result)
	return NewFeatureListModel(rankings, result)
}

func TestFeatureListNavigation(t *testing.T) {
	m := testFeatureModel()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(FeatureListModel)
	if m.Cursor != 1 {
		t.Errorf("Cursor after down = %d, want 1", m.Cursor)
	}

	// Down at the bottom stays put.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(FeatureListModel)
	if m.Cursor != 1 {
		t.Errorf("Cursor after down at bottom = %d, want 1", m.Cursor)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = updated.(FeatureListModel)
	if m.Cursor != 0 {
		t.Errorf("Cursor after up = %d, want 0", m.Cursor)
	}
}

func TestFeatureListQuit(t *testing.T) {
	m := testFeatureModel()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestFeatureListDetailToggle(t *testing.T) {
	m := testFeatureModel()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(FeatureListModel)
	if !m.ShowDetail {
		t.Error("ShowDetail should be true after enter")
	}

	view := m.View()
	if !strings.Contains(view, "expr") {
		t.Errorf("detail view should name the selected feature, got:\n%s", view)
	}
}

func TestSignificantNodesSorted(t *testing.T) {
	m := testFeatureModel()

	hits := m.significantNodes("expr")
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}
	if hits[0].NodeID != "a" || hits[1].NodeID != "b" {
		t.Errorf("hits not sorted by q: %v", hits)
	}

	if hits := m.significantNodes("flat"); len(hits) != 0 {
		t.Errorf("flat feature should have no hits, got %v", hits)
	}
}

func TestFormatQ(t *testing.T) {
	if got := formatQ(0.0001); !strings.Contains(got, "e") {
		t.Errorf("formatQ(0.0001) = %q, want scientific notation", got)
	}
	if got := formatQ(0.05); got != "0.0500" {
		t.Errorf("formatQ(0.05) = %q, want 0.0500", got)
	}
}
