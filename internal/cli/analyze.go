package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
	"github.com/mhalvorsen/enrichmap/pkg/export"
	"github.com/mhalvorsen/enrichmap/pkg/feature"
	"github.com/mhalvorsen/enrichmap/pkg/network"
	"github.com/mhalvorsen/enrichmap/pkg/pipeline"
)

// analyzeCommand creates the analyze command, the main entry point for
// running the full enrichment pipeline on a graph and feature matrix.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		featurePaths []string
		configPath   string
		outputDir    string
		formatsFlag  string
		radius       int
		permutations int
		aggregate    string
		alpha        float64
		seed         uint64
		workers      int
		axisMode     string
		dims         int
		noProjection bool
		noCache      bool
		refresh      bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [graph.json]",
		Short: "Run enrichment analysis and export results",
		Long: `Analyze runs the complete enrichment pipeline on a node-link graph and one
or more feature matrices: neighborhood indexing, permutation scoring with FDR
correction, stratification into enrichment domains, and ordination.

Results are written to the output directory in the requested formats
(json, csv, dot).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			graphPath := ""
			if len(args) > 0 {
				graphPath = args[0]
			}
			formats := parseFormats(formatsFlag)

			opts := pipeline.Options{
				Radius:         radius,
				Permutations:   permutations,
				Aggregate:      aggregate,
				Alpha:          alpha,
				Seed:           seed,
				Workers:        workers,
				AxisMode:       axisMode,
				TargetDims:     dims,
				SkipProjection: noProjection,
				Refresh:        refresh,
				Logger:         c.Logger,
			}

			if configPath != "" {
				cfg, err := LoadRunConfig(configPath)
				if err != nil {
					return err
				}
				if graphPath == "" {
					graphPath = cfg.Graph
				}
				if len(featurePaths) == 0 {
					featurePaths = cfg.Features
				}
				if !cmd.Flags().Changed("output") && cfg.Output != "" {
					outputDir = cfg.Output
				}
				if !cmd.Flags().Changed("format") && len(cfg.Formats) > 0 {
					formats = cfg.Formats
				}
				opts = mergeOptions(cmd, opts, cfg.Options)
			}

			if graphPath == "" {
				return errors.New(errors.ErrCodeInvalidConfig, "no graph file given (pass a path or set graph in --config)")
			}
			if len(featurePaths) == 0 {
				return errors.New(errors.ErrCodeInvalidConfig, "no feature files given (use --features)")
			}
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}

			g, err := network.ReadGraphFile(graphPath)
			if err != nil {
				return err
			}
			m, err := loadFeatures(featurePaths)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			sp := newSpinnerWithContext(ctx, "Running enrichment analysis")
			sp.Start()
			result, err := runner.Execute(ctx, g, m, opts)
			if err != nil {
				sp.StopWithError("Analysis failed")
				return err
			}
			sp.StopWithSuccess(fmt.Sprintf("Analyzed %d nodes against %d features", result.Stats.NodeCount, result.Stats.FeatureCount))

			cached := result.CacheInfo.NeighborhoodHit && result.CacheInfo.ScoreHit
			printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.FeatureCount, cached)
			printDetail("%d significant neighborhood/feature pairs", result.Stats.SignificantCells)

			files, err := writeOutputs(result, g, outputDir, formats)
			if err != nil {
				return err
			}
			for _, f := range files {
				printFile(f)
			}

			printNewline()
			printNextStep("Rank features", fmt.Sprintf("enrichmap rank %s --features %s", graphPath, featurePaths[0]))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&featurePaths, "features", "f", nil, "feature matrix CSV files (joined on shared samples)")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML run configuration file")
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "output directory")
	cmd.Flags().StringVar(&formatsFlag, "format", "", "comma-separated output formats: json, csv, dot (default json)")
	cmd.Flags().IntVarP(&radius, "radius", "r", pipeline.DefaultRadius, "neighborhood radius in hops")
	cmd.Flags().IntVarP(&permutations, "permutations", "p", 0, "permutation count for the null model")
	cmd.Flags().StringVar(&aggregate, "aggregate", "", "neighborhood aggregation: mean or sum")
	cmd.Flags().Float64Var(&alpha, "alpha", 0, "significance threshold for FDR correction")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 draws a fresh seed; run is not cached)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent scoring workers (default GOMAXPROCS)")
	cmd.Flags().StringVar(&axisMode, "axis", "", "ordination axis: features or nodes")
	cmd.Flags().IntVar(&dims, "dims", 0, "ordination target dimensions")
	cmd.Flags().BoolVar(&noProjection, "no-projection", false, "skip the ordination phase")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the analysis cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached artifacts exist")

	return cmd
}

// mergeOptions overlays config-file options under explicitly set flags.
// A flag the user set on the command line always wins over the config file.
func mergeOptions(cmd *cobra.Command, flagOpts, cfgOpts pipeline.Options) pipeline.Options {
	merged := cfgOpts
	merged.Logger = flagOpts.Logger

	if cmd.Flags().Changed("radius") {
		merged.Radius = flagOpts.Radius
	}
	if cmd.Flags().Changed("permutations") {
		merged.Permutations = flagOpts.Permutations
	}
	if cmd.Flags().Changed("aggregate") {
		merged.Aggregate = flagOpts.Aggregate
	}
	if cmd.Flags().Changed("alpha") {
		merged.Alpha = flagOpts.Alpha
	}
	if cmd.Flags().Changed("seed") {
		merged.Seed = flagOpts.Seed
	}
	if cmd.Flags().Changed("workers") {
		merged.Workers = flagOpts.Workers
	}
	if cmd.Flags().Changed("axis") {
		merged.AxisMode = flagOpts.AxisMode
	}
	if cmd.Flags().Changed("dims") {
		merged.TargetDims = flagOpts.TargetDims
	}
	if flagOpts.SkipProjection {
		merged.SkipProjection = true
	}
	if flagOpts.Refresh {
		merged.Refresh = true
	}
	return merged
}

// loadFeatures reads one or more feature CSVs and joins them column-wise.
func loadFeatures(paths []string) (*feature.Matrix, error) {
	var m *feature.Matrix
	for _, path := range paths {
		loaded, err := feature.ReadCSVFile(path)
		if err != nil {
			return nil, err
		}
		if m == nil {
			m = loaded
			continue
		}
		joined, err := m.Join(loaded)
		if err != nil {
			return nil, err
		}
		m = joined
	}
	return m, nil
}

// writeOutputs exports the pipeline result in each requested format and
// returns the written file paths.
func writeOutputs(result *pipeline.Result, g *network.Graph, dir string, formats []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create output directory %s", dir)
	}

	var files []string
	for _, format := range formats {
		switch format {
		case pipeline.FormatJSON:
			path := filepath.Join(dir, "analysis.json")
			if err := export.ExportJSON(result, path); err != nil {
				return nil, err
			}
			files = append(files, path)

		case pipeline.FormatCSV:
			written, err := writeCSVOutputs(result, dir)
			if err != nil {
				return nil, err
			}
			files = append(files, written...)

		case pipeline.FormatDOT:
			path := filepath.Join(dir, "network.dot")
			f, err := os.Create(path)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
			}
			err = export.WriteDOT(g, result.Assignment, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return nil, err
			}
			files = append(files, path)
		}
	}
	return files, nil
}

// writeCSVOutputs writes the tabular exports for a run.
func writeCSVOutputs(result *pipeline.Result, dir string) ([]string, error) {
	type csvExport struct {
		name  string
		write func(w *os.File) error
	}

	exports := []csvExport{
		{"enrichment.csv", func(w *os.File) error {
			return export.WriteEnrichmentCSV(export.EnrichmentRecords(result.Enrichment), w)
		}},
		{"strata.csv", func(w *os.File) error {
			return export.WriteStrataCSV(export.StratumRecords(result.Assignment), w)
		}},
		{"ranking.csv", func(w *os.File) error {
			return export.WriteRankingCSV(export.RankFeatures(result.Enrichment), w)
		}},
	}
	if result.Embedding != nil {
		exports = append(exports, csvExport{"ordination.csv", func(w *os.File) error {
			return export.WriteOrdinationCSV(result.Embedding, w)
		}})
	}

	var files []string
	for _, e := range exports {
		path := filepath.Join(dir, e.name)
		f, err := os.Create(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
		}
		err = e.write(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}
