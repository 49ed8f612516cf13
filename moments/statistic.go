package moments

import (
	"fmt"
	"math"

	"github.com/sanspareilsmyn/simstat/internal/dist"
)

// Statistic accumulates summary statistics over a stream of observations
// without retaining them. Mean and central moments are updated with Welford's
// recurrence (extended to third and fourth moments), so long streams do not
// lose precision to catastrophic cancellation.
//
// NaN and infinite observations are counted as missing and otherwise ignored.
// A Statistic is not safe for concurrent use.
type Statistic struct {
	name string

	count   int
	missing int

	sum  float64
	mean float64
	m2   float64 // sum of squared deviations from the mean
	m3   float64
	m4   float64

	min float64
	max float64

	first  float64
	last   float64
	lagSum float64 // sum of x[i]*x[i-1]
}

// NewStatistic returns a Statistic named name that has already collected values.
func NewStatistic(name string, values ...float64) *Statistic {
	s := &Statistic{name: name}
	s.Reset()
	s.CollectAll(values...)
	return s
}

// Name returns the name given at construction.
func (s *Statistic) Name() string { return s.name }

// SetName renames the statistic.
func (s *Statistic) SetName(name string) { s.name = name }

// Collect records x.
func (s *Statistic) Collect(x float64) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		s.missing++
		return
	}

	n1 := float64(s.count)
	s.count++
	n := float64(s.count)

	delta := x - s.mean
	deltaN := delta / n
	deltaN2 := deltaN * deltaN
	term1 := delta * deltaN * n1

	s.mean += deltaN
	s.m4 += term1*deltaN2*(n*n-3*n+3) + 6*deltaN2*s.m2 - 4*deltaN*s.m3
	s.m3 += term1*deltaN*(n-2) - 3*deltaN*s.m2
	s.m2 += term1

	s.sum += x
	if x < s.min {
		s.min = x
	}
	if x > s.max {
		s.max = x
	}

	if s.count == 1 {
		s.first = x
	} else {
		s.lagSum += x * s.last
	}
	s.last = x
}

// CollectAll records every value in order.
func (s *Statistic) CollectAll(values ...float64) {
	for _, x := range values {
		s.Collect(x)
	}
}

// Reset discards everything collected, including the missing count.
func (s *Statistic) Reset() {
	*s = Statistic{
		name: s.name,
		min:  math.Inf(1),
		max:  math.Inf(-1),
	}
}

// Copy returns an independent snapshot of the accumulator.
func (s *Statistic) Copy() *Statistic {
	c := *s
	return &c
}

// Count returns the number of non-missing observations.
func (s *Statistic) Count() int { return s.count }

// MissingCount returns the number of NaN or infinite observations seen.
func (s *Statistic) MissingCount() int { return s.missing }

// Sum returns the sum of the observations.
func (s *Statistic) Sum() float64 { return s.sum }

// Average returns the sample mean, NaN when empty.
func (s *Statistic) Average() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.mean
}

// Min returns the smallest observation, NaN when empty.
func (s *Statistic) Min() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.min
}

// Max returns the largest observation, NaN when empty.
func (s *Statistic) Max() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.max
}

// LastValue returns the most recent non-missing observation, NaN when empty.
func (s *Statistic) LastValue() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.last
}

// SumOfSquaredDeviations returns the sum of squared deviations from the mean.
func (s *Statistic) SumOfSquaredDeviations() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.m2
}

// Variance returns the unbiased sample variance, NaN for fewer than two observations.
func (s *Statistic) Variance() float64 {
	if s.count < 2 {
		return math.NaN()
	}
	return s.m2 / float64(s.count-1)
}

func (s *Statistic) StandardDeviation() float64 {
	return math.Sqrt(s.Variance())
}

// StandardError returns sqrt(variance/count).
func (s *Statistic) StandardError() float64 {
	if s.count < 2 {
		return math.NaN()
	}
	return math.Sqrt(s.Variance() / float64(s.count))
}

// Skewness returns the bias-adjusted sample skewness (G1).
func (s *Statistic) Skewness() float64 {
	if s.count < 3 || s.m2 == 0 {
		return math.NaN()
	}
	n := float64(s.count)
	g1 := math.Sqrt(n) * s.m3 / math.Pow(s.m2, 1.5)
	return g1 * math.Sqrt(n*(n-1)) / (n - 2)
}

// Kurtosis returns the bias-adjusted sample excess kurtosis (G2).
func (s *Statistic) Kurtosis() float64 {
	if s.count < 4 || s.m2 == 0 {
		return math.NaN()
	}
	n := float64(s.count)
	g2 := n*s.m4/(s.m2*s.m2) - 3
	return ((n+1)*g2 + 6) * (n - 1) / ((n - 2) * (n - 3))
}

// Lag1Covariance returns sum((x[i]-mean)*(x[i-1]-mean))/n over consecutive
// observations, NaN for fewer than three observations.
func (s *Statistic) Lag1Covariance() float64 {
	if s.count < 3 {
		return math.NaN()
	}
	n := float64(s.count)
	m := s.mean
	c := s.lagSum - m*(2*s.sum-s.first-s.last) + (n-1)*m*m
	return c / n
}

// Lag1Correlation returns Lag1Covariance / Variance, NaN for fewer than three
// observations or constant data.
func (s *Statistic) Lag1Correlation() float64 {
	if s.count < 3 || s.m2 == 0 {
		return math.NaN()
	}
	return s.Lag1Covariance() / s.Variance()
}

// VonNeumannLag1TestStatistic tests the observations for lag-1 independence.
// Under independence it is approximately standard normal.
func (s *Statistic) VonNeumannLag1TestStatistic() float64 {
	if s.count < 3 || s.m2 == 0 {
		return math.NaN()
	}
	n := float64(s.count)
	df := s.first - s.mean
	dl := s.last - s.mean
	// r1 here is the lag sum over the sum of squared deviations.
	r1 := s.Lag1Covariance() * n / s.m2
	return math.Sqrt((n*n-1)/(n-2)) * (r1 + (df*df+dl*dl)/(2*s.m2))
}

// VonNeumannLag1PValue returns the upper-tail p-value of the von Neumann statistic.
func (s *Statistic) VonNeumannLag1PValue() float64 {
	t := s.VonNeumannLag1TestStatistic()
	if math.IsNaN(t) {
		return math.NaN()
	}
	return 1 - dist.NormalCDF(t)
}

// HalfWidth returns the Student-t confidence interval half-width of the mean.
func (s *Statistic) HalfWidth(level float64) (float64, error) {
	if !dist.ValidLevel(level) {
		return math.NaN(), fmt.Errorf("%w: %v", ErrInvalidLevel, level)
	}
	if s.count < 2 {
		return math.NaN(), fmt.Errorf("%w: half-width needs 2, have %d", ErrInsufficientData, s.count)
	}
	t := dist.StudentTQuantile(1-(1-level)/2, float64(s.count-1))
	return t * s.StandardError(), nil
}

// ConfidenceInterval returns average +/- HalfWidth(level).
func (s *Statistic) ConfidenceInterval(level float64) (Interval, error) {
	hw, err := s.HalfWidth(level)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Lower: s.mean - hw, Upper: s.mean + hw, Level: level}, nil
}

// SampleSizeForHalfWidth estimates how many observations a normal-theory
// interval at level needs to reach half-width hw, using the current standard
// deviation as the planning value.
func (s *Statistic) SampleSizeForHalfWidth(hw, level float64) (int, error) {
	if !(hw > 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidHalfWidth, hw)
	}
	if !dist.ValidLevel(level) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidLevel, level)
	}
	if s.count < 2 {
		return 0, fmt.Errorf("%w: sample size estimate needs 2, have %d", ErrInsufficientData, s.count)
	}
	z := dist.NormalQuantile(1 - (1-level)/2)
	r := z * s.StandardDeviation() / hw
	return int(math.Ceil(r * r)), nil
}
