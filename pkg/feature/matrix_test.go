package feature

import (
	"slices"
	"strings"
	"testing"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
	"github.com/mhalvorsen/enrichmap/pkg/network"
)

func TestNewMatrix(t *testing.T) {
	tests := []struct {
		name      string
		sampleIDs []string
		featNames []string
		values    [][]float64
		wantErr   bool
	}{
		{
			name:      "valid",
			sampleIDs: []string{"a", "b"},
			featNames: []string{"x", "y"},
			values:    [][]float64{{1, 2}, {3, 4}},
		},
		{
			name:      "row count mismatch",
			sampleIDs: []string{"a", "b"},
			featNames: []string{"x"},
			values:    [][]float64{{1}},
			wantErr:   true,
		},
		{
			name:      "ragged row",
			sampleIDs: []string{"a", "b"},
			featNames: []string{"x", "y"},
			values:    [][]float64{{1, 2}, {3}},
			wantErr:   true,
		},
		{
			name:      "duplicate sample ID",
			sampleIDs: []string{"a", "a"},
			featNames: []string{"x"},
			values:    [][]float64{{1}, {2}},
			wantErr:   true,
		},
		{
			name:      "empty sample ID",
			sampleIDs: []string{"a", ""},
			featNames: []string{"x"},
			values:    [][]float64{{1}, {2}},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMatrix(tt.sampleIDs, tt.featNames, tt.values)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMatrix() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestColumn(t *testing.T) {
	m, err := NewMatrix([]string{"a", "b"}, []string{"x", "y"}, [][]float64{{1, 2}, {3, 4}})
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	got := m.Column(1)
	if got["a"] != 2 || got["b"] != 4 {
		t.Errorf("Column(1) = %v, want map[a:2 b:4]", got)
	}
}

func TestAlign(t *testing.T) {
	g := network.New(nil)
	g.AddNode(network.Node{ID: "a"})
	g.AddNode(network.Node{ID: "b"})

	t.Run("aligned", func(t *testing.T) {
		m, _ := NewMatrix([]string{"a", "b"}, []string{"x"}, [][]float64{{1}, {2}})
		if err := m.Align(g); err != nil {
			t.Errorf("Align() error = %v, want nil", err)
		}
	})

	t.Run("node without sample", func(t *testing.T) {
		m, _ := NewMatrix([]string{"a"}, []string{"x"}, [][]float64{{1}})
		err := m.Align(g)
		if !errors.Is(err, errors.ErrCodeInvalidGraph) {
			t.Errorf("Align() error = %v, want INVALID_GRAPH", err)
		}
	})

	t.Run("sample without node", func(t *testing.T) {
		m, _ := NewMatrix([]string{"a", "b", "ghost"}, []string{"x"}, [][]float64{{1}, {2}, {3}})
		err := m.Align(g)
		if !errors.Is(err, errors.ErrCodeInvalidGraph) {
			t.Errorf("Align() error = %v, want INVALID_GRAPH", err)
		}
	})
}

func TestReadCSVNumeric(t *testing.T) {
	input := "sample,ph,temp\ns1,7.1,20\ns2,6.8,22\n"
	m, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !slices.Equal(m.Names(), []string{"ph", "temp"}) {
		t.Errorf("Names = %v, want [ph temp]", m.Names())
	}
	if v, _ := m.Value("s2", 0); v != 6.8 {
		t.Errorf("Value(s2, ph) = %v, want 6.8", v)
	}
}

func TestReadCSVOneHot(t *testing.T) {
	input := "sample,site\ns1,gut\ns2,skin\ns3,gut\n"
	m, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	want := []string{"site=gut", "site=skin"}
	if !slices.Equal(m.Names(), want) {
		t.Fatalf("Names = %v, want %v", m.Names(), want)
	}
	if v, _ := m.Value("s1", 0); v != 1 {
		t.Errorf("s1 site=gut = %v, want 1", v)
	}
	if v, _ := m.Value("s2", 0); v != 0 {
		t.Errorf("s2 site=gut = %v, want 0", v)
	}
	if v, _ := m.Value("s2", 1); v != 1 {
		t.Errorf("s2 site=skin = %v, want 1", v)
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "header only", input: "sample,x\n"},
		{name: "no feature columns", input: "sample\ns1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.input)); err == nil {
				t.Error("ReadCSV() error = nil, want error")
			}
		})
	}
}

func TestJoin(t *testing.T) {
	a, _ := NewMatrix([]string{"s1", "s2"}, []string{"x"}, [][]float64{{1}, {2}})
	b, _ := NewMatrix([]string{"s2", "s1"}, []string{"y"}, [][]float64{{20}, {10}})

	joined, err := a.Join(b)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !slices.Equal(joined.Names(), []string{"x", "y"}) {
		t.Errorf("Names = %v, want [x y]", joined.Names())
	}
	// Rows matched by sample ID, not position.
	if v, _ := joined.Value("s1", 1); v != 10 {
		t.Errorf("s1 y = %v, want 10", v)
	}

	t.Run("column collision", func(t *testing.T) {
		c, _ := NewMatrix([]string{"s1", "s2"}, []string{"x"}, [][]float64{{0}, {0}})
		if _, err := a.Join(c); err == nil {
			t.Error("Join with colliding column should fail")
		}
	})
}
