package resample

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/sanspareilsmyn/simstat/internal/dist"
	"github.com/sanspareilsmyn/simstat/moments"
)

// Estimate is the outcome of one bootstrap run for one estimated dimension.
type Estimate struct {
	Name             string
	SampleSize       int       // size of the original data or case population
	OriginalEstimate float64   // estimator applied to the original data
	Estimates        []float64 // one estimate per accepted bootstrap sample
}

// NumBootstraps returns the number of bootstrap estimates.
func (e Estimate) NumBootstraps() int { return len(e.Estimates) }

// Statistic summarizes the bootstrap estimates.
func (e Estimate) Statistic() *moments.Statistic {
	return moments.NewStatistic(e.Name, e.Estimates...)
}

// Average returns the mean of the bootstrap estimates.
func (e Estimate) Average() float64 { return e.Statistic().Average() }

// Variance returns the variance of the bootstrap estimates.
func (e Estimate) Variance() float64 { return e.Statistic().Variance() }

// StdError is the bootstrap estimate of the standard error of the estimator.
func (e Estimate) StdError() float64 { return e.Statistic().StandardDeviation() }

// Bias is the bootstrap estimate of bias, Average - OriginalEstimate.
func (e Estimate) Bias() float64 { return e.Average() - e.OriginalEstimate }

// BiasCorrected returns OriginalEstimate - Bias.
func (e Estimate) BiasCorrected() float64 { return e.OriginalEstimate - e.Bias() }

// PercentileCI returns the interval between the (1-level)/2 and (1+level)/2
// quantiles of the bootstrap estimates.
func (e Estimate) PercentileCI(level float64) (moments.Interval, error) {
	lo, hi, err := e.quantiles(level)
	if err != nil {
		return moments.Interval{}, err
	}
	return moments.Interval{Lower: lo, Upper: hi, Level: level}, nil
}

// BasicCI returns the basic (reverse percentile) interval,
// [2*orig - q_hi, 2*orig - q_lo].
func (e Estimate) BasicCI(level float64) (moments.Interval, error) {
	lo, hi, err := e.quantiles(level)
	if err != nil {
		return moments.Interval{}, err
	}
	return moments.Interval{
		Lower: 2*e.OriginalEstimate - hi,
		Upper: 2*e.OriginalEstimate - lo,
		Level: level,
	}, nil
}

// NormalCI returns OriginalEstimate +/- z * StdError.
func (e Estimate) NormalCI(level float64) (moments.Interval, error) {
	if !dist.ValidLevel(level) {
		return moments.Interval{}, fmt.Errorf("%w: %v", ErrInvalidLevel, level)
	}
	s := e.Statistic()
	if s.Count() < 2 {
		return moments.Interval{}, fmt.Errorf("%w: have %d", ErrTooFewEstimates, s.Count())
	}
	hw := dist.NormalQuantile(1-(1-level)/2) * s.StandardDeviation()
	return moments.Interval{Lower: e.OriginalEstimate - hw, Upper: e.OriginalEstimate + hw, Level: level}, nil
}

func (e Estimate) quantiles(level float64) (float64, float64, error) {
	if !dist.ValidLevel(level) {
		return math.NaN(), math.NaN(), fmt.Errorf("%w: %v", ErrInvalidLevel, level)
	}
	sorted := make([]float64, 0, len(e.Estimates))
	for _, v := range e.Estimates {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) < 2 {
		return math.NaN(), math.NaN(), fmt.Errorf("%w: have %d", ErrTooFewEstimates, len(sorted))
	}
	slices.Sort(sorted)
	tail := (1 - level) / 2
	lo := stat.Quantile(tail, stat.LinInterp, sorted, nil)
	hi := stat.Quantile(1-tail, stat.LinInterp, sorted, nil)
	return lo, hi, nil
}
