package safe

import (
	"slices"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
)

// Aggregate names accepted by [Options.Aggregate].
const (
	AggregateMean = "mean"
	AggregateSum  = "sum"
	AggregateMax  = "max"
)

// DefaultAggregate is the aggregate used when none is configured.
const DefaultAggregate = AggregateMean

// AggregateFunc reduces the feature values of a neighborhood to a single
// score. Implementations must be pure: the scorer calls them from multiple
// goroutines. The input slice is never empty (every neighborhood contains at
// least the node itself) and must not be retained or modified.
type AggregateFunc func(values []float64) float64

// Mean returns the arithmetic mean of values.
func Mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Sum returns the sum of values.
func Sum(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

// Max returns the largest of values.
func Max(values []float64) float64 {
	return slices.Max(values)
}

var aggregates = map[string]AggregateFunc{
	AggregateMean: Mean,
	AggregateSum:  Sum,
	AggregateMax:  Max,
}

// AggregateByName resolves an aggregate function by its configuration name.
// Returns an INVALID_CONFIG error for unknown names.
func AggregateByName(name string) (AggregateFunc, error) {
	if name == "" {
		name = DefaultAggregate
	}
	fn, ok := aggregates[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"unknown aggregate %q (must be one of: mean, sum, max)", name)
	}
	return fn, nil
}

// ValidAggregates returns the accepted aggregate names sorted.
func ValidAggregates() []string {
	names := make([]string, 0, len(aggregates))
	for name := range aggregates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
