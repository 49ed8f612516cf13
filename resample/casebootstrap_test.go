package resample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/sanspareilsmyn/simstat/rng"
)

// caseMean treats each case identifier as the observation itself.
type caseMean struct{}

func (caseMean) Names() []string { return []string{"mean"} }

func (caseMean) Estimate(cases []int) []float64 {
	var sum float64
	for _, c := range cases {
		sum += float64(c)
	}
	return []float64{sum / float64(len(cases))}
}

// rejectsFirst refuses any resample that starts with the first case.
type rejectsFirst struct{ first int }

func (rejectsFirst) Names() []string { return []string{"mean"} }

func (r rejectsFirst) Estimate(cases []int) []float64 {
	if len(cases) > 0 && cases[0] == r.first && !isOriginal(cases) {
		return nil
	}
	return caseMean{}.Estimate(cases)
}

func isOriginal(cases []int) bool {
	for i, c := range cases {
		if c != (i+1)*10 {
			return false
		}
	}
	return true
}

func TestCaseBootstrapSampler(t *testing.T) {
	assert := assert.New(t)

	cases := []int{10, 20, 30, 40}
	s, err := NewCaseBootstrapSampler(cases, caseMean{}, WithStream(rng.NewStream(9)), WithSaveSamples(true))
	require.NoError(t, err)
	assert.Equal(cases, s.Cases())
	assert.Equal([]float64{25}, s.OriginalEstimates())

	ests, err := s.BootstrapEstimates(25)
	require.NoError(t, err)
	require.Len(t, ests, 1)
	assert.Equal(4, ests[0].SampleSize)
	assert.Equal(25.0, ests[0].OriginalEstimate)
	assert.Equal(25, ests[0].NumBootstraps())
	assert.Equal(25, s.NumSavedSamples())

	sample, err := s.BootstrapSample(0)
	require.NoError(t, err)
	for _, c := range sample {
		assert.Contains(cases, c)
	}
	_, err = s.BootstrapSample(25)
	assert.ErrorIs(err, ErrSampleIndexOutOfRange)

	_, err = s.BootstrapEstimates(1)
	assert.ErrorIs(err, ErrTooFewBootstrapSamples)
}

func TestCaseBootstrapSamplerSkips(t *testing.T) {
	s, err := NewCaseBootstrapSampler([]int{10, 20, 30}, rejectsFirst{first: 10})
	require.NoError(t, err)

	ests, err := s.BootstrapEstimates(60)
	require.NoError(t, err)
	assert.Positive(t, s.Skipped())
	assert.Equal(t, 60, s.Skipped()+ests[0].NumBootstraps())
	assert.Equal(t, ests[0].NumBootstraps(), s.AcrossBootstrapStatistics().Counts()[0])
}

func TestCaseBootstrapSamplerDeterministic(t *testing.T) {
	s, err := NewCaseBootstrapSampler([]int{1, 2, 3, 4, 5}, caseMean{}, WithStream(rng.NewStream(31)))
	require.NoError(t, err)

	first, err := s.BootstrapEstimates(40)
	require.NoError(t, err)
	s.ResetStartStream()
	second, err := s.BootstrapEstimates(40)
	require.NoError(t, err)
	assert.Equal(t, first[0].Estimates, second[0].Estimates)
}

func TestCaseBootstrapSamplerErrors(t *testing.T) {
	_, err := NewCaseBootstrapSampler([]int{1}, caseMean{})
	assert.ErrorIs(t, err, ErrInsufficientData)
	_, err = NewCaseBootstrapSampler([]int{1, 2}, nil)
	assert.ErrorIs(t, err, ErrNilEstimator)
}

func linearMatrix(n int) *mat.Dense {
	m := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		x := float64(i)
		m.Set(i, 0, x)
		m.Set(i, 1, 2+3*x)
	}
	return m
}

func TestMatrixBootEstimatorOLS(t *testing.T) {
	assert := assert.New(t)

	ols, err := NewOLSEstimator(2, 1, true)
	require.NoError(t, err)
	assert.Equal([]string{"b0", "b1"}, ols.Names())

	mbe, err := NewMatrixBootEstimator(linearMatrix(12), ols)
	require.NoError(t, err)
	assert.Len(mbe.Cases(), 12)

	orig := mbe.Estimate(mbe.Cases())
	require.Len(t, orig, 2)
	assert.InDelta(2.0, orig[0], 1e-9)
	assert.InDelta(3.0, orig[1], 1e-9)

	s, err := NewCaseBootstrapSampler(mbe.Cases(), mbe, WithStream(rng.NewStream(3)))
	require.NoError(t, err)
	ests, err := s.BootstrapEstimates(50)
	require.NoError(t, err)
	require.Len(t, ests, 2)
	assert.Equal(50, s.Skipped()+ests[0].NumBootstraps())
	for _, v := range ests[1].Estimates {
		assert.InDelta(3.0, v, 1e-6)
	}
	assert.Equal(12, ests[0].SampleSize)
}

func TestMatrixBootEstimatorRows(t *testing.T) {
	ols, err := NewOLSEstimator(2, 1, true)
	require.NoError(t, err)
	mbe, err := NewMatrixBootEstimator(linearMatrix(4), ols)
	require.NoError(t, err)

	rows := mbe.Rows([]int{3, 3, 0})
	require.NotNil(t, rows)
	r, c := rows.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, []float64{3, 11}, mat.Row(nil, 1, rows))
	assert.Equal(t, []float64{0, 2}, mat.Row(nil, 2, rows))

	assert.Nil(t, mbe.Rows([]int{4}))
	assert.Nil(t, mbe.Estimate([]int{-1, 0}))
	// all cases identical: singular design
	assert.Nil(t, mbe.Estimate([]int{2, 2, 2}))
}

func TestOLSEstimatorErrors(t *testing.T) {
	_, err := NewOLSEstimator(2, 2, true)
	assert.ErrorIs(t, err, ErrInvalidColumn)
	_, err = NewOLSEstimator(1, 0, false)
	assert.ErrorIs(t, err, ErrInvalidColumn)

	ols, err := NewOLSEstimator(3, 0, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b2"}, ols.Names())
	assert.Nil(t, ols.Estimate(mat.NewDense(4, 2, nil)))

	_, err = NewMatrixBootEstimator(mat.NewDense(1, 2, nil), ols)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
