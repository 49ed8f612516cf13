package regression

import (
	"fmt"
	"math"
)

// StatisticXY accumulates (x, y) pairs. Means, sums of squared deviations and
// the sum of cross products are updated together from the pre-update count,
// the bivariate form of Welford's recurrence.
//
// A pair with a NaN or infinite coordinate is counted as missing.
type StatisticXY struct {
	name    string
	count   int
	missing int

	meanX, meanY float64
	sxx, syy     float64
	sxy          float64
}

// NewStatisticXY returns an empty accumulator.
func NewStatisticXY(name string) *StatisticXY {
	return &StatisticXY{name: name}
}

func (s *StatisticXY) Name() string { return s.name }

// Collect records one pair.
func (s *StatisticXY) Collect(x, y float64) {
	if !finite(x) || !finite(y) {
		s.missing++
		return
	}
	n := float64(s.count)
	dx := x - s.meanX
	dy := y - s.meanY
	s.count++
	r := n / float64(s.count)

	s.meanX += dx / float64(s.count)
	s.meanY += dy / float64(s.count)
	s.sxx += dx * dx * r
	s.syy += dy * dy * r
	s.sxy += dx * dy * r
}

// CollectAll records xs[i], ys[i] for every i.
func (s *StatisticXY) CollectAll(xs, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(xs), len(ys))
	}
	for i := range xs {
		s.Collect(xs[i], ys[i])
	}
	return nil
}

// Reset discards everything collected.
func (s *StatisticXY) Reset() {
	*s = StatisticXY{name: s.name}
}

// Copy returns an independent snapshot.
func (s *StatisticXY) Copy() *StatisticXY {
	c := *s
	return &c
}

func (s *StatisticXY) Count() int { return s.count }

func (s *StatisticXY) MissingCount() int { return s.missing }

func (s *StatisticXY) AverageX() float64 { return s.ifAny(s.meanX) }

func (s *StatisticXY) AverageY() float64 { return s.ifAny(s.meanY) }

func (s *StatisticXY) SumX() float64 { return s.meanX * float64(s.count) }

func (s *StatisticXY) SumY() float64 { return s.meanY * float64(s.count) }

// VarianceX is the unbiased sample variance of x.
func (s *StatisticXY) VarianceX() float64 { return s.perDOF(s.sxx) }

// VarianceY is the unbiased sample variance of y.
func (s *StatisticXY) VarianceY() float64 { return s.perDOF(s.syy) }

// CovarianceXY is the unbiased sample covariance.
func (s *StatisticXY) CovarianceXY() float64 { return s.perDOF(s.sxy) }

// CorrelationXY is the Pearson correlation coefficient.
func (s *StatisticXY) CorrelationXY() float64 {
	if s.count < 2 {
		return math.NaN()
	}
	d := math.Sqrt(s.sxx * s.syy)
	if d == 0 {
		return math.NaN()
	}
	return s.sxy / d
}

// Slope is the least squares slope of y on x, NaN when x has no spread.
// Repeated x values leave sxx at exactly zero, so no tolerance is applied.
func (s *StatisticXY) Slope() float64 {
	if s.count < 2 || s.sxx == 0 {
		return math.NaN()
	}
	return s.sxy / s.sxx
}

// Intercept is AverageY - Slope*AverageX.
func (s *StatisticXY) Intercept() float64 {
	return s.meanY - s.Slope()*s.meanX
}

// TotalSumOfSquares is the sum of squared y deviations.
func (s *StatisticXY) TotalSumOfSquares() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.syy
}

// RegressionSumOfSquares is the variation in y explained by the fit.
func (s *StatisticXY) RegressionSumOfSquares() float64 {
	return s.Slope() * s.sxy
}

// ErrorSumOfSquares is the residual variation.
func (s *StatisticXY) ErrorSumOfSquares() float64 {
	sse := s.syy - s.RegressionSumOfSquares()
	if sse < 0 {
		sse = 0
	}
	return sse
}

// RSquared is the coefficient of determination.
func (s *StatisticXY) RSquared() float64 {
	if s.syy == 0 {
		return math.NaN()
	}
	return s.RegressionSumOfSquares() / s.syy
}

// AdjustedRSquared corrects RSquared for the single regressor.
func (s *StatisticXY) AdjustedRSquared() float64 {
	if s.count <= 2 {
		return math.NaN()
	}
	n := float64(s.count)
	return 1 - (1-s.RSquared())*(n-1)/(n-2)
}

// MeanSquaredError is ErrorSumOfSquares/(n-2), NaN for n <= 2.
func (s *StatisticXY) MeanSquaredError() float64 {
	if s.count <= 2 {
		return math.NaN()
	}
	return s.ErrorSumOfSquares() / float64(s.count-2)
}

// SlopeStdError is the standard error of the slope.
func (s *StatisticXY) SlopeStdError() float64 {
	return math.Sqrt(s.MeanSquaredError() / s.sxx)
}

// InterceptStdError is the standard error of the intercept.
func (s *StatisticXY) InterceptStdError() float64 {
	n := float64(s.count)
	return math.Sqrt(s.MeanSquaredError() * (1/n + s.meanX*s.meanX/s.sxx))
}

// RatioXY estimates AverageX/AverageY. A zero denominator yields +Inf, -Inf
// or NaN for a positive, negative or zero numerator.
func (s *StatisticXY) RatioXY() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return signedRatio(s.meanX, s.meanY)
}

// RatioXYVariance is the delta-method variance of the ratio of the two
// observed variables, (Var(x) - 2R Cov(x,y) + R^2 Var(y)) / AverageY^2.
func (s *StatisticXY) RatioXYVariance() float64 {
	if s.count < 2 {
		return math.NaN()
	}
	r := s.RatioXY()
	num := s.VarianceX() - 2*r*s.CovarianceXY() + r*r*s.VarianceY()
	return signedRatio(num, s.meanY*s.meanY)
}

// RatioXYStdError is the standard error of RatioXY, sqrt(RatioXYVariance/n).
func (s *StatisticXY) RatioXYStdError() float64 {
	v := s.RatioXYVariance()
	if math.IsNaN(v) {
		return v
	}
	return math.Sqrt(v / float64(s.count))
}

func signedRatio(num, den float64) float64 {
	if den == 0 {
		switch {
		case num > 0:
			return math.Inf(1)
		case num < 0:
			return math.Inf(-1)
		default:
			return math.NaN()
		}
	}
	return num / den
}

func (s *StatisticXY) perDOF(ss float64) float64 {
	if s.count < 2 {
		return math.NaN()
	}
	return ss / float64(s.count-1)
}

func (s *StatisticXY) ifAny(v float64) float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
