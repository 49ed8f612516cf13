// Package moments provides single-pass accumulators for summary statistics.
//
// Statistic tracks count, sum, extremes, variance, skewness, kurtosis and
// lag-1 autocorrelation of a stream of observations without storing them.
// WeightedStatistic does the same for weighted observations, and TimeWeighted
// weights a piecewise-constant value by how long it was held:
//
//	s := moments.NewStatistic("wait", 1, 2, 3, 4, 5)
//	s.Average()  // 3
//	s.Variance() // 2.5
//	ci, _ := s.ConfidenceInterval(0.95)
//
// NaN and infinite observations never raise errors; they are counted by
// MissingCount and excluded from every other statistic.
//
// None of the accumulators are safe for concurrent use; callers that share one
// across goroutines must synchronize.
package moments
