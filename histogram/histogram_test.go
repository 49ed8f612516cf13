package histogram

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanspareilsmyn/simstat/ident"
)

func TestHistogramScenario(t *testing.T) {
	assert := assert.New(t)

	h, err := New([]float64{0, 1, 2, 3}, WithName("h"))
	require.NoError(t, err)
	h.CollectAll(0.5, 1.5, 1.5, 2.5, -1, 5)

	assert.Equal("h", h.Name())
	assert.Equal(3, h.NumBins())
	assert.Equal([]int{1, 2, 1}, h.BinCounts())
	assert.Equal(1, h.UnderflowCount())
	assert.Equal(1, h.OverflowCount())
	assert.Equal(4, h.BinnedCount())
	assert.Equal(6, h.TotalCount())
	assert.Equal(6, h.Statistic().Count())
	assert.Equal(4, h.BinnedStatistic().Count())
	assert.InDelta(1.5, h.BinnedStatistic().Average(), 1e-12)
}

func TestHistogramCountsAddUp(t *testing.T) {
	assert := assert.New(t)

	h, err := New([]float64{-2, 0, 0.5, 4})
	require.NoError(t, err)
	for i := -50; i < 50; i++ {
		h.Collect(float64(i) / 10)
	}
	h.Collect(math.NaN())

	sum := 0
	for _, c := range h.BinCounts() {
		sum += c
	}
	assert.Equal(h.TotalCount(), sum+h.UnderflowCount()+h.OverflowCount())
	assert.Equal(100, h.TotalCount())
	assert.Equal(1, h.MissingCount())
}

func TestHistogramBoundaries(t *testing.T) {
	assert := assert.New(t)

	h, err := New([]float64{0, 1, 2})
	require.NoError(t, err)
	h.CollectAll(0, 1, 2)

	// bins are half-open: 0 -> bin 1, 1 -> bin 2, 2 -> overflow
	assert.Equal([]int{1, 1}, h.BinCounts())
	assert.Equal(1, h.OverflowCount())
	assert.Equal(0, h.UnderflowCount())

	assert.Equal(1, h.BinNumber(0))
	assert.Equal(2, h.BinNumber(1.999))
	assert.Equal(0, h.BinNumber(2))
	assert.Equal(0, h.BinNumber(-0.1))
	assert.Equal(0, h.BinNumber(math.NaN()))

	b, err := h.FindBin(0.3)
	require.NoError(t, err)
	assert.Equal(Bin{Number: 1, Lower: 0, Upper: 1, Count: 1}, b)
	assert.True(b.Contains(0.3))
	_, err = h.FindBin(5)
	assert.ErrorIs(err, ErrNoBin)
}

func TestHistogramSingleBreakPoint(t *testing.T) {
	assert := assert.New(t)

	h, err := New([]float64{10})
	require.NoError(t, err)
	h.CollectAll(-1e300, 9.99, 10, 1e300, math.Inf(1))

	assert.Equal(2, h.NumBins())
	assert.True(math.IsInf(h.LowerLimit(), -1))
	assert.True(math.IsInf(h.UpperLimit(), 1))
	assert.Equal([]int{2, 2}, h.BinCounts())
	assert.Equal(0, h.UnderflowCount())
	// +Inf is never below an upper edge of +Inf
	assert.Equal(1, h.OverflowCount())
	assert.Equal([]float64{math.Inf(-1), 10, math.Inf(1)}, h.BreakPoints())
}

func TestHistogramInvalidBreakPoints(t *testing.T) {
	assert := assert.New(t)

	_, err := New(nil)
	assert.ErrorIs(err, ErrNoBreakPoints)
	_, err = New([]float64{0, 1, 1})
	assert.ErrorIs(err, ErrBreakPointsOrder)
	_, err = New([]float64{0, 2, 1})
	assert.ErrorIs(err, ErrBreakPointsOrder)
	_, err = New([]float64{0, math.NaN()})
	assert.ErrorIs(err, ErrBreakPointNaN)
}

func TestHistogramBinLookup(t *testing.T) {
	assert := assert.New(t)

	h, err := New([]float64{0, 1, 2, 3})
	require.NoError(t, err)
	h.CollectAll(0.5, 1.5, 1.5, 2.5)

	_, err = h.Bin(0)
	assert.ErrorIs(err, ErrBinNumberOutOfRange)
	_, err = h.Bin(4)
	assert.ErrorIs(err, ErrBinNumberOutOfRange)
	_, err = h.BinCount(7)
	assert.ErrorIs(err, ErrBinNumberOutOfRange)
	_, err = h.CumulativeBinCount(-1)
	assert.ErrorIs(err, ErrBinNumberOutOfRange)

	c, err := h.BinCount(2)
	require.NoError(t, err)
	assert.Equal(2, c)
	f, err := h.BinFraction(2)
	require.NoError(t, err)
	assert.InDelta(0.5, f, 1e-12)
	assert.InDeltaSlice([]float64{0.25, 0.5, 0.25}, h.BinFractions(), 1e-12)
}

func TestHistogramCumulative(t *testing.T) {
	assert := assert.New(t)

	h, err := New([]float64{0, 1, 2, 3})
	require.NoError(t, err)
	h.CollectAll(0.5, 1.5, 1.5, 2.5)

	last, err := h.CumulativeBinFraction(3)
	require.NoError(t, err)
	assert.Equal(1.0, last)
	total, err := h.CumulativeFraction(3)
	require.NoError(t, err)
	assert.Equal(1.0, total)

	// add underflow and overflow; bin-only and total cumulatives now differ
	h.CollectAll(-1, -2, 9)

	cb, err := h.CumulativeBinCount(2)
	require.NoError(t, err)
	assert.Equal(3, cb)
	cc, err := h.CumulativeCount(2)
	require.NoError(t, err)
	assert.Equal(5, cc)

	last, err = h.CumulativeBinFraction(3)
	require.NoError(t, err)
	assert.Equal(1.0, last)
	total, err = h.CumulativeFraction(3)
	require.NoError(t, err)
	assert.InDelta(6.0/7.0, total, 1e-12)

	assert.Equal(0, h.CumulativeBinCountAt(-5))
	assert.Equal(2, h.CumulativeCountAt(-5))
	assert.Equal(1, h.CumulativeBinCountAt(0.9))
	assert.Equal(3, h.CumulativeCountAt(0.9))
	assert.Equal(4, h.CumulativeBinCountAt(100))
	assert.Equal(7, h.CumulativeCountAt(100))
	assert.Equal(1.0, h.CumulativeFractionAt(100))
	assert.InDelta(0.75, h.CumulativeBinFractionAt(1.5), 1e-12)
	assert.Equal(0, h.CumulativeCountAt(math.NaN()))
}

func TestHistogramResetAndCopy(t *testing.T) {
	assert := assert.New(t)

	h, err := New([]float64{0, 1, 2})
	require.NoError(t, err)
	h.CollectAll(0.5, 1.5, -3, math.NaN())

	snap := h.Copy()
	h.Reset()

	assert.Equal([]int{0, 0}, h.BinCounts())
	assert.Equal(0, h.TotalCount())
	assert.Equal(0, h.MissingCount())
	assert.True(math.IsNaN(h.CumulativeFractionAt(1)))

	assert.Equal([]int{1, 1}, snap.BinCounts())
	assert.Equal(3, snap.TotalCount())
	assert.Equal(1, snap.MissingCount())
}

func TestHistogramNameSource(t *testing.T) {
	seq := ident.NewSequence()
	a, err := New([]float64{0, 1}, WithNameSource(seq))
	require.NoError(t, err)
	b, err := New([]float64{0, 1}, WithNameSource(seq))
	require.NoError(t, err)
	c, err := New([]float64{0, 1})
	require.NoError(t, err)

	assert.Equal(t, "Histogram_1", a.Name())
	assert.Equal(t, "Histogram_2", b.Name())
	assert.Equal(t, "Histogram", c.Name())
}
