package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mhalvorsen/enrichmap/pkg/ordination"
)

// WriteJSON encodes any record set as indented JSON.
func WriteJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a record set to a JSON file at path.
func ExportJSON(v any, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(v, f)
}

// WriteEnrichmentCSV writes enrichment records with a header row.
func WriteEnrichmentCSV(records []EnrichmentRecord, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"node_id", "feature", "observed", "p", "q", "score", "direction", "significant"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.NodeID,
			r.Feature,
			formatFloat(r.Observed),
			formatFloat(r.P),
			formatFloat(r.Q),
			formatFloat(r.Score),
			r.Direction,
			strconv.FormatBool(r.Significant),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStrataCSV writes node-to-stratum assignments with a header row.
func WriteStrataCSV(records []StratumRecord, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"node_id", "stratum"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write([]string{r.NodeID, r.Label}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteOrdinationCSV writes embedding coordinates with one axis per column,
// followed by a variance_explained row when the embedding carries one.
func WriteOrdinationCSV(e *ordination.Embedding, w io.Writer) error {
	dims := 0
	if len(e.Coordinates) > 0 {
		dims = len(e.Coordinates[0])
	}
	header := make([]string, 1, 1+dims)
	header[0] = "entity"
	for axis := 1; axis <= dims; axis++ {
		header = append(header, fmt.Sprintf("axis%d", axis))
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, entity := range e.Entities {
		row := make([]string, 1, 1+dims)
		row[0] = entity
		for _, v := range e.Coordinates[i] {
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	if len(e.VarianceExplained) > 0 {
		row := make([]string, 1, 1+dims)
		row[0] = "variance_explained"
		for _, v := range e.VarianceExplained {
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write variance row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRankingCSV writes the feature ranking with a header row.
func WriteRankingCSV(rankings []FeatureRanking, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"feature", "significant_nodes", "min_q"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rankings {
		row := []string{r.Feature, strconv.Itoa(r.SignificantNodes), formatFloat(r.MinQ)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
