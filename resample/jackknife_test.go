package resample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanspareilsmyn/simstat/internal/dist"
)

func TestJackKnifeMeanOneToFive(t *testing.T) {
	assert := assert.New(t)

	j, err := NewJackKnifeEstimator(oneToFive, Average, WithName("mean"))
	require.NoError(t, err)
	assert.Equal("mean", j.Name())
	assert.Equal(5, j.SampleSize())

	assert.InDelta(3.0, j.OriginalDataEstimate(), 1e-12)
	assert.InDeltaSlice([]float64{3.5, 3.25, 3.0, 2.75, 2.5}, j.LeaveOneOutEstimates(), 1e-12)
	assert.InDelta(3.0, j.JackKnifeEstimate(), 1e-12)
	assert.InDelta(0.0, j.JackKnifeBiasEstimate(), 1e-12)
	assert.InDeltaSlice(oneToFive, j.PseudoValues(), 1e-12)
	assert.InDelta(j.OriginalDataStatistic().StandardError(), j.JackKnifeEstimateOfSE(), 1e-12)
	assert.InDelta(math.Sqrt(0.5), j.JackKnifeEstimateOfSE(), 1e-12)
	assert.Equal(5, j.LeaveOneOutStatistic().Count())
	assert.Equal(oneToFive, j.Data())
}

func TestJackKnifeBiasIdentity(t *testing.T) {
	data := []float64{3.1, 0.4, 7.7, 2.2, 9.5, 1.0, 4.4}
	for _, est := range []EstimatorFunc{Average, Variance, Median, Max} {
		j, err := NewJackKnifeEstimator(data, est)
		require.NoError(t, err)
		assert.Equal(t, j.OriginalDataEstimate()-j.JackKnifeBiasEstimate(), j.BiasCorrectedJackknifeEstimate())
	}
}

func TestJackKnifeCorrectsPopulationVariance(t *testing.T) {
	data := []float64{3.1, 0.4, 7.7, 2.2, 9.5, 1.0, 4.4}
	n := float64(len(data))
	popVar := func(xs []float64) float64 {
		m := float64(len(xs))
		return Variance(xs) * (m - 1) / m
	}
	j, err := NewJackKnifeEstimator(data, popVar)
	require.NoError(t, err)
	assert.InDelta(t, Variance(data)*(n-1)/n, j.OriginalDataEstimate(), 1e-12)
	assert.InDelta(t, Variance(data), j.BiasCorrectedJackknifeEstimate(), 1e-9)
}

func TestJackKnifeConfidenceInterval(t *testing.T) {
	assert := assert.New(t)

	j, err := NewJackKnifeEstimator(oneToFive, Average)
	require.NoError(t, err)
	assert.Equal(0.95, j.DefaultLevel())

	hw := dist.StudentTQuantile(0.975, 4) * math.Sqrt(0.5)
	ci := j.ConfidenceInterval()
	assert.InDelta(3-hw, ci.Lower, 1e-9)
	assert.InDelta(3+hw, ci.Upper, 1e-9)
	assert.Equal(0.95, ci.Level)
	assert.InDelta(2.776445105, dist.StudentTQuantile(0.975, 4), 1e-6)

	narrow, err := j.ConfidenceIntervalAt(0.5)
	require.NoError(t, err)
	assert.Less(narrow.Width(), ci.Width())

	require.NoError(t, j.SetDefaultLevel(0.5))
	assert.Equal(narrow, j.ConfidenceInterval())

	for _, level := range []float64{0, 1, -1, 2, math.NaN()} {
		assert.ErrorIs(j.SetDefaultLevel(level), ErrInvalidLevel)
		_, err := j.ConfidenceIntervalAt(level)
		assert.ErrorIs(err, ErrInvalidLevel)
		_, err = NewJackKnifeEstimator(oneToFive, Average, WithLevel(level))
		assert.ErrorIs(err, ErrInvalidLevel)
	}
	assert.Equal(0.5, j.DefaultLevel())
}

func TestJackKnifeErrors(t *testing.T) {
	_, err := NewJackKnifeEstimator([]float64{1}, Average)
	assert.ErrorIs(t, err, ErrInsufficientData)
	_, err = NewJackKnifeEstimator(oneToFive, nil)
	assert.ErrorIs(t, err, ErrNilEstimator)
}
