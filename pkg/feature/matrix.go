// Package feature provides the sample-by-feature matrix consumed by the
// enrichment scorer.
//
// Rows are samples keyed by the same identifiers as graph nodes; columns are
// named features. Continuous features are used directly; categorical columns
// are expanded into one-hot indicator columns before scoring. Matrices are
// immutable inputs: after loading and alignment nothing in the engine
// mutates them.
package feature

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
	"github.com/mhalvorsen/enrichmap/pkg/network"
)

// Matrix is a rectangular table of feature values. Rows map 1:1 onto graph
// nodes; this mapping is a precondition checked by [Matrix.Align] before any
// scoring starts.
type Matrix struct {
	sampleIDs []string
	names     []string
	rowIndex  map[string]int // sampleID -> row
	values    [][]float64    // rows x columns
}

// NewMatrix builds a matrix from explicit rows. The values slice is indexed
// values[row][column] and must be rectangular with len(sampleIDs) rows and
// len(names) columns.
func NewMatrix(sampleIDs, names []string, values [][]float64) (*Matrix, error) {
	if len(values) != len(sampleIDs) {
		return nil, errors.New(errors.ErrCodeInvalidFeature,
			"row count %d does not match sample count %d", len(values), len(sampleIDs))
	}
	rowIndex := make(map[string]int, len(sampleIDs))
	for i, id := range sampleIDs {
		if id == "" {
			return nil, errors.New(errors.ErrCodeInvalidFeature, "empty sample ID at row %d", i)
		}
		if _, dup := rowIndex[id]; dup {
			return nil, errors.New(errors.ErrCodeInvalidFeature, "duplicate sample ID %q", id)
		}
		rowIndex[id] = i
		if len(values[i]) != len(names) {
			return nil, errors.New(errors.ErrCodeInvalidFeature,
				"row %q has %d values, want %d", id, len(values[i]), len(names))
		}
	}
	return &Matrix{
		sampleIDs: slices.Clone(sampleIDs),
		names:     slices.Clone(names),
		rowIndex:  rowIndex,
		values:    values,
	}, nil
}

// SampleIDs returns the row identifiers in input order.
func (m *Matrix) SampleIDs() []string { return m.sampleIDs }

// Names returns the feature column names in input order.
func (m *Matrix) Names() []string { return m.names }

// NumSamples returns the number of rows.
func (m *Matrix) NumSamples() int { return len(m.sampleIDs) }

// NumFeatures returns the number of columns.
func (m *Matrix) NumFeatures() int { return len(m.names) }

// Value returns the value for the given sample and column index.
func (m *Matrix) Value(sampleID string, col int) (float64, bool) {
	row, ok := m.rowIndex[sampleID]
	if !ok {
		return 0, false
	}
	return m.values[row][col], true
}

// Column returns the values of column col keyed by sample ID.
// The returned map is freshly allocated and safe to modify.
func (m *Matrix) Column(col int) map[string]float64 {
	out := make(map[string]float64, len(m.sampleIDs))
	for i, id := range m.sampleIDs {
		out[id] = m.values[i][col]
	}
	return out
}

// Align verifies the 1:1 mapping between graph nodes and sample rows.
// Every graph node must have a sample row and every sample row must
// correspond to a graph node. Returns an INVALID_GRAPH error naming the
// first offender.
func (m *Matrix) Align(g *network.Graph) error {
	for _, id := range g.NodeIDs() {
		if _, ok := m.rowIndex[id]; !ok {
			return errors.New(errors.ErrCodeInvalidGraph, "graph node %q has no matching sample row", id)
		}
	}
	for _, id := range m.sampleIDs {
		if !g.HasNode(id) {
			return errors.New(errors.ErrCodeInvalidGraph, "sample row %q has no matching graph node", id)
		}
	}
	return nil
}

// Join appends the columns of other to m, matching rows by sample ID.
// Both matrices must cover the same sample set. Column names must not
// collide. Used to combine metadata- and abundance-derived tables into one
// scoring input.
func (m *Matrix) Join(other *Matrix) (*Matrix, error) {
	if other.NumSamples() != m.NumSamples() {
		return nil, errors.New(errors.ErrCodeInvalidFeature,
			"sample count mismatch: %d vs %d", m.NumSamples(), other.NumSamples())
	}
	seen := make(map[string]bool, len(m.names))
	for _, n := range m.names {
		seen[n] = true
	}
	for _, n := range other.names {
		if seen[n] {
			return nil, errors.New(errors.ErrCodeInvalidFeature, "duplicate feature column %q", n)
		}
	}

	names := slices.Concat(m.names, other.names)
	values := make([][]float64, len(m.sampleIDs))
	for i, id := range m.sampleIDs {
		row, ok := other.rowIndex[id]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFeature, "sample %q missing from joined table", id)
		}
		values[i] = slices.Concat(m.values[i], other.values[row])
	}
	return NewMatrix(m.sampleIDs, names, values)
}

// matrixEnvelope is the serialized form of a Matrix, used for content
// hashing and caching.
type matrixEnvelope struct {
	SampleIDs []string    `json:"sample_ids"`
	Names     []string    `json:"names"`
	Values    [][]float64 `json:"values"`
}

// MarshalJSON encodes the matrix deterministically.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(matrixEnvelope{
		SampleIDs: m.sampleIDs,
		Names:     m.names,
		Values:    m.values,
	})
}

// UnmarshalJSON decodes a matrix and rebuilds the row index.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var env matrixEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	decoded, err := NewMatrix(env.SampleIDs, env.Names, env.Values)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

// =============================================================================
// CSV Loading
// =============================================================================

// ReadCSV decodes a feature table from CSV. The first column holds sample
// IDs, the remaining header cells name the features. Non-numeric columns are
// one-hot expanded into "name=value" indicator columns, matching the
// pre-expanded categorical convention the scorer expects.
func ReadCSV(r io.Reader) (*Matrix, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFeature, err, "read csv")
	}
	if len(records) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidFeature, "csv needs a header row and at least one sample row")
	}
	header := records[0]
	if len(header) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidFeature, "csv needs a sample-ID column and at least one feature column")
	}

	rawNames := header[1:]
	sampleIDs := make([]string, 0, len(records)-1)
	raw := make([][]string, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, errors.New(errors.ErrCodeInvalidFeature,
				"row %d has %d cells, want %d", i+2, len(rec), len(header))
		}
		sampleIDs = append(sampleIDs, rec[0])
		raw = append(raw, rec[1:])
	}

	var names []string
	columns := make([][]float64, 0, len(rawNames))
	for col, name := range rawNames {
		numeric := make([]float64, len(raw))
		isNumeric := true
		for row := range raw {
			v, err := strconv.ParseFloat(raw[row][col], 64)
			if err != nil {
				isNumeric = false
				break
			}
			numeric[row] = v
		}
		if isNumeric {
			names = append(names, name)
			columns = append(columns, numeric)
			continue
		}
		// Categorical: expand to one indicator column per distinct level.
		levels := distinctLevels(raw, col)
		for _, level := range levels {
			indicator := make([]float64, len(raw))
			for row := range raw {
				if raw[row][col] == level {
					indicator[row] = 1
				}
			}
			names = append(names, fmt.Sprintf("%s=%s", name, level))
			columns = append(columns, indicator)
		}
	}

	values := make([][]float64, len(sampleIDs))
	for i := range sampleIDs {
		values[i] = make([]float64, len(columns))
		for j := range columns {
			values[i][j] = columns[j][i]
		}
	}
	return NewMatrix(sampleIDs, names, values)
}

// ReadCSVFile reads a feature table from a CSV file.
func ReadCSVFile(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ReadCSV(f)
}

func distinctLevels(raw [][]string, col int) []string {
	seen := make(map[string]bool)
	var levels []string
	for row := range raw {
		v := raw[row][col]
		if !seen[v] {
			seen[v] = true
			levels = append(levels, v)
		}
	}
	slices.Sort(levels)
	return levels
}
