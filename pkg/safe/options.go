package safe

import (
	"runtime"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
)

// Default values shared by CLI, API, and pipeline.
const (
	// DefaultPermutations is the default null-model size.
	DefaultPermutations = 1000

	// DefaultAlpha is the default significance level for the FDR step.
	DefaultAlpha = 0.05
)

// Options configures a scoring run.
// The zero value plus ValidateAndSetDefaults yields a usable configuration.
type Options struct {
	// Permutations is the null-model size per feature. Default 1000.
	Permutations int `json:"permutations,omitempty" toml:"permutations"`

	// Aggregate names the neighborhood aggregate: "mean" (default), "sum",
	// or "max".
	Aggregate string `json:"aggregate,omitempty" toml:"aggregate"`

	// Alpha is the significance level used by Correct. Default 0.05.
	Alpha float64 `json:"alpha,omitempty" toml:"alpha"`

	// Seed seeds all permutation streams. Zero means unset: a fresh seed is
	// drawn and recorded in the result so the run stays reproducible.
	Seed uint64 `json:"seed,omitempty" toml:"seed"`

	// Workers bounds scoring concurrency across features.
	// Zero defaults to GOMAXPROCS.
	Workers int `json:"workers,omitempty" toml:"workers"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-" toml:"-"`
}

// ValidateAndSetDefaults checks ranges and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Permutations == 0 {
		o.Permutations = DefaultPermutations
	}
	if err := errors.ValidatePermutations(o.Permutations); err != nil {
		return err
	}
	if o.Alpha == 0 {
		o.Alpha = DefaultAlpha
	}
	if err := errors.ValidateAlpha(o.Alpha); err != nil {
		return err
	}
	if o.Aggregate == "" {
		o.Aggregate = DefaultAggregate
	}
	if _, err := AggregateByName(o.Aggregate); err != nil {
		return err
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	o.validated = true
	return nil
}
