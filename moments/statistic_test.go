package moments

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoPassMoments(xs []float64) (mean, m2, m3, m4 float64) {
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	for _, x := range xs {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	return
}

func TestStatisticEmpty(t *testing.T) {
	assert := assert.New(t)

	s := NewStatistic("empty")
	assert.Equal("empty", s.Name())
	assert.Equal(0, s.Count())
	assert.Equal(0.0, s.Sum())
	for _, v := range []float64{
		s.Average(), s.Min(), s.Max(), s.Variance(), s.StandardError(),
		s.Skewness(), s.Kurtosis(), s.Lag1Covariance(), s.Lag1Correlation(),
		s.LastValue(), s.SumOfSquaredDeviations(),
	} {
		assert.True(math.IsNaN(v))
	}
}

func TestStatisticOneToFive(t *testing.T) {
	assert := assert.New(t)

	s := NewStatistic("x", 1, 2, 3, 4, 5)
	assert.Equal(5, s.Count())
	assert.Equal(15.0, s.Sum())
	assert.InDelta(3.0, s.Average(), 1e-12)
	assert.InDelta(2.5, s.Variance(), 1e-12)
	assert.InDelta(math.Sqrt(2.5), s.StandardDeviation(), 1e-12)
	assert.InDelta(math.Sqrt(0.5), s.StandardError(), 1e-12)
	assert.InDelta(10.0, s.SumOfSquaredDeviations(), 1e-12)
	assert.Equal(1.0, s.Min())
	assert.Equal(5.0, s.Max())
	assert.Equal(5.0, s.LastValue())
	assert.InDelta(0.0, s.Skewness(), 1e-12)
	assert.InDelta(-1.2, s.Kurtosis(), 1e-12)
	assert.InDelta(0.8, s.Lag1Covariance(), 1e-12)
	assert.InDelta(0.32, s.Lag1Correlation(), 1e-12)
}

func TestStatisticMatchesTwoPass(t *testing.T) {
	assert := assert.New(t)

	xs := []float64{1e6 + 4, 1e6 + 7, 1e6 + 13, 1e6 + 16, 1e6 + 2.5, 1e6 + 30, 1e6 - 8}
	s := NewStatistic("shifted", xs...)

	mean, m2, m3, m4 := twoPassMoments(xs)
	n := float64(len(xs))
	assert.InEpsilon(mean, s.Average(), 1e-12)
	assert.InEpsilon(m2/(n-1), s.Variance(), 1e-9)

	g1 := math.Sqrt(n) * m3 / math.Pow(m2, 1.5)
	assert.InEpsilon(g1*math.Sqrt(n*(n-1))/(n-2), s.Skewness(), 1e-7)

	g2 := n*m4/(m2*m2) - 3
	assert.InEpsilon(((n+1)*g2+6)*(n-1)/((n-2)*(n-3)), s.Kurtosis(), 1e-7)
}

func TestStatisticMissing(t *testing.T) {
	assert := assert.New(t)

	s := NewStatistic("m", 1, math.NaN(), 2, math.Inf(1), 3, math.Inf(-1))
	assert.Equal(3, s.Count())
	assert.Equal(3, s.MissingCount())
	assert.InDelta(2.0, s.Average(), 1e-12)
	assert.Equal(3.0, s.LastValue())
}

func TestStatisticResetIsIdempotent(t *testing.T) {
	assert := assert.New(t)

	xs := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	fresh := NewStatistic("s", xs...)

	s := NewStatistic("s", 100, -100, math.NaN())
	s.Reset()
	assert.Equal(0, s.Count())
	assert.Equal(0, s.MissingCount())
	s.CollectAll(xs...)
	assert.Equal(fresh, s)
}

func TestStatisticCopyIsSnapshot(t *testing.T) {
	assert := assert.New(t)

	s := NewStatistic("s", 1, 2, 3)
	c := s.Copy()
	s.Collect(100)
	assert.Equal(3, c.Count())
	assert.InDelta(2.0, c.Average(), 1e-12)
	assert.Equal(4, s.Count())
}

func TestStatisticConfidenceInterval(t *testing.T) {
	assert := assert.New(t)

	s := NewStatistic("s", 1, 2, 3, 4, 5)
	ci, err := s.ConfidenceInterval(0.95)
	require.NoError(t, err)
	hw := 2.7764451 * math.Sqrt(0.5)
	assert.InDelta(3-hw, ci.Lower, 1e-5)
	assert.InDelta(3+hw, ci.Upper, 1e-5)
	assert.InDelta(hw, ci.HalfWidth(), 1e-5)
	assert.True(ci.Contains(3))
	assert.Equal(0.95, ci.Level)

	_, err = s.ConfidenceInterval(1)
	assert.ErrorIs(err, ErrInvalidLevel)
	_, err = s.HalfWidth(0)
	assert.ErrorIs(err, ErrInvalidLevel)
	_, err = NewStatistic("one", 1).HalfWidth(0.9)
	assert.ErrorIs(err, ErrInsufficientData)
}

func TestStatisticSampleSize(t *testing.T) {
	assert := assert.New(t)

	s := NewStatistic("s", 1, 2, 3, 4, 5)
	n, err := s.SampleSizeForHalfWidth(0.5, 0.95)
	require.NoError(t, err)
	// (1.96 * 1.5811 / 0.5)^2 = 38.4
	assert.Equal(39, n)

	_, err = s.SampleSizeForHalfWidth(0, 0.95)
	assert.ErrorIs(err, ErrInvalidHalfWidth)
}

func TestVonNeumann(t *testing.T) {
	assert := assert.New(t)

	s := NewStatistic("s", 1, 2, 3, 4, 5)
	// sqrt(24/3) * (0.4 + (4+4)/20)
	assert.InDelta(math.Sqrt(8)*0.8, s.VonNeumannLag1TestStatistic(), 1e-12)
	p := s.VonNeumannLag1PValue()
	assert.Greater(p, 0.0)
	assert.Less(p, 0.5)

	assert.True(math.IsNaN(NewStatistic("s", 1, 2).VonNeumannLag1PValue()))
}

func TestLag1CorrelationUsesSampleVariance(t *testing.T) {
	s := NewStatistic("lag", 1, 2, 4, 3, 7, 6)
	assert.InDelta(t, s.Lag1Covariance()/s.Variance(), s.Lag1Correlation(), 1e-12)
	assert.InDelta(t, 0.2786404416839197, s.Lag1Correlation(), 1e-12)

	assert.True(t, math.IsNaN(NewStatistic("flat", 2, 2, 2, 2).Lag1Correlation()))
	assert.True(t, math.IsNaN(NewStatistic("short", 1, 2).Lag1Correlation()))
}
