package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
	"github.com/mhalvorsen/enrichmap/pkg/pipeline"
)

// RunConfig describes a complete analysis run loaded from a TOML file.
// Flags given on the command line take precedence over config values.
//
// Example:
//
//	graph = "network.json"
//	features = ["expression.csv", "annotations.csv"]
//	output = "results"
//	formats = ["json", "csv"]
//
//	[options]
//	radius = 2
//	permutations = 1000
//	seed = 42
type RunConfig struct {
	Graph    string           `toml:"graph"`
	Features []string         `toml:"features"`
	Output   string           `toml:"output"`
	Formats  []string         `toml:"formats"`
	Options  pipeline.Options `toml:"options"`
}

// LoadRunConfig reads and parses a TOML run configuration file.
func LoadRunConfig(path string) (*RunConfig, error) {
	var cfg RunConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "run config %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse run config %s", path)
	}
	return &cfg, nil
}
