package resample

import (
	"fmt"
	"math"
	"slices"

	"github.com/montanaflynn/stats"
	"github.com/samber/lo"

	"github.com/sanspareilsmyn/simstat/moments"
)

// EstimatorFunc computes a scalar estimate from a sample. Resamplers reuse the
// slice they pass in, so an estimator must not retain it.
type EstimatorFunc func(data []float64) float64

// MultiEstimator computes a named vector of estimates from a sample.
type MultiEstimator interface {
	Names() []string
	Estimate(data []float64) []float64
}

// Average returns the sample mean.
func Average(data []float64) float64 {
	return moments.NewStatistic("", data...).Average()
}

// Variance returns the unbiased sample variance.
func Variance(data []float64) float64 {
	return moments.NewStatistic("", data...).Variance()
}

// StandardDeviation returns the sample standard deviation.
func StandardDeviation(data []float64) float64 {
	return moments.NewStatistic("", data...).StandardDeviation()
}

// Min returns the smallest value, NaN for empty data.
func Min(data []float64) float64 {
	return moments.NewStatistic("", data...).Min()
}

// Max returns the largest value, NaN for empty data.
func Max(data []float64) float64 {
	return moments.NewStatistic("", data...).Max()
}

// Median returns the sample median, NaN for empty data.
func Median(data []float64) float64 {
	m, err := stats.Median(stats.Float64Data(data))
	if err != nil {
		return math.NaN()
	}
	return m
}

// Percentile returns an estimator of the p-th percentile, 0 < p <= 100.
func Percentile(p float64) EstimatorFunc {
	return func(data []float64) float64 {
		v, err := stats.Percentile(stats.Float64Data(data), p)
		if err != nil {
			return math.NaN()
		}
		return v
	}
}

var estimators = map[string]EstimatorFunc{
	"average":  Average,
	"mean":     Average,
	"variance": Variance,
	"stddev":   StandardDeviation,
	"median":   Median,
	"min":      Min,
	"max":      Max,
}

// EstimatorByName looks up a preset estimator: average (or mean), variance,
// stddev, median, min, max.
func EstimatorByName(name string) (EstimatorFunc, bool) {
	e, ok := estimators[name]
	return e, ok
}

// EstimatorNames lists the names EstimatorByName accepts, sorted.
func EstimatorNames() []string {
	names := lo.Keys(estimators)
	slices.Sort(names)
	return names
}

type combined struct {
	names []string
	fns   []EstimatorFunc
}

// Combine builds a MultiEstimator from one scalar estimator per name.
func Combine(names []string, fns ...EstimatorFunc) (MultiEstimator, error) {
	if len(names) == 0 {
		return nil, ErrNoEstimatorNames
	}
	if len(names) != len(fns) {
		return nil, fmt.Errorf("%w: %d names, %d estimators", ErrDimensionMismatch, len(names), len(fns))
	}
	for _, f := range fns {
		if f == nil {
			return nil, ErrNilEstimator
		}
	}
	return &combined{names: slices.Clone(names), fns: slices.Clone(fns)}, nil
}

func (c *combined) Names() []string { return slices.Clone(c.names) }

func (c *combined) Estimate(data []float64) []float64 {
	return lo.Map(c.fns, func(f EstimatorFunc, _ int) float64 { return f(data) })
}

type basicStatistics struct{}

// BasicStatistics estimates average, variance, min, max, skewness, kurtosis
// and lag-1 correlation from a single pass over the sample.
func BasicStatistics() MultiEstimator { return basicStatistics{} }

func (basicStatistics) Names() []string {
	return []string{"average", "variance", "min", "max", "skewness", "kurtosis", "lag1Correlation"}
}

func (basicStatistics) Estimate(data []float64) []float64 {
	s := moments.NewStatistic("", data...)
	return []float64{s.Average(), s.Variance(), s.Min(), s.Max(), s.Skewness(), s.Kurtosis(), s.Lag1Correlation()}
}
