package moments

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedStatistic(t *testing.T) {
	assert := assert.New(t)

	w := NewWeightedStatistic("w")
	assert.True(math.IsNaN(w.Average()))
	assert.True(math.IsNaN(w.Variance()))

	w.Collect(1, 1)
	w.Collect(2, 1)
	w.Collect(3, 2)

	assert.Equal(3, w.Count())
	assert.Equal(4.0, w.SumOfWeights())
	assert.Equal(9.0, w.Sum())
	assert.Equal(6.0, w.UnweightedSum())
	assert.InDelta(2.25, w.Average(), 1e-12)
	assert.InDelta(2.0, w.UnweightedAverage(), 1e-12)
	assert.InDelta(23.0, w.WeightedSumOfSquares(), 1e-12)
	assert.InDelta(0.6875, w.Variance(), 1e-12)
	assert.Equal(1.0, w.Min())
	assert.Equal(3.0, w.Max())
	assert.Equal(3.0, w.LastValue())
	assert.Equal(2.0, w.LastWeight())
}

func TestWeightedStatisticRejects(t *testing.T) {
	assert := assert.New(t)

	w := NewWeightedStatistic("w")
	w.Collect(1, 0)
	w.Collect(1, -1)
	w.Collect(1, math.NaN())
	w.Collect(1, math.Inf(1))
	w.Collect(math.NaN(), 1)
	w.Collect(math.Inf(-1), 1)
	assert.Equal(0, w.Count())
	assert.Equal(6, w.MissingCount())

	w.Collect(4, 0.5)
	assert.Equal(1, w.Count())
	assert.Equal(4.0, w.Average())

	c := w.Copy()
	w.Reset()
	assert.Equal(0, w.MissingCount())
	assert.Equal(1, c.Count())
}

type fakeClock struct{ now float64 }

func (c *fakeClock) Time() float64 { return c.now }

func TestTimeWeighted(t *testing.T) {
	assert := assert.New(t)

	clock := &fakeClock{}
	tw, err := NewTimeWeighted("queue", clock, 0)
	require.NoError(t, err)

	clock.now = 2
	require.NoError(t, tw.Collect(3))
	clock.now = 5
	require.NoError(t, tw.Collect(1))
	require.NoError(t, tw.Collect(7)) // zero elapsed time, value replaced
	clock.now = 10
	require.NoError(t, tw.Update())

	// 0 for 2, 3 for 3, 7 for 5
	assert.InDelta((0*2+3*3+7*5)/10.0, tw.Average(), 1e-12)
	assert.Equal(3, tw.Statistic().Count())
	assert.Equal(0, tw.Statistic().MissingCount())
	assert.Equal(7.0, tw.LastValue())
	assert.Equal(10.0, tw.LastTime())

	clock.now = 9
	assert.ErrorIs(tw.Collect(1), ErrTimeReversed)

	clock.now = 20
	tw.Reset()
	clock.now = 30
	require.NoError(t, tw.Update())
	assert.Equal(7.0, tw.Average())
}

func TestTimeWeightedNilSource(t *testing.T) {
	_, err := NewTimeWeighted("x", nil, 0)
	assert.ErrorIs(t, err, ErrNilTimeSource)

	tw, err := NewTimeWeighted("x", TimeSourceFunc(func() float64 { return 1 }), 2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, tw.LastTime())
}
