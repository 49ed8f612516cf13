package moments

import (
	"math"
)

// WeightedStatistic accumulates weighted observations. An observation is
// counted as missing, and otherwise ignored, when its value is NaN or
// infinite or its weight is NaN, infinite or not positive.
//
// The weighted mean and dispersion are maintained with West's incremental
// algorithm.
type WeightedStatistic struct {
	name string

	count   int
	missing int

	sumW  float64
	sumWX float64
	sumX  float64
	mean  float64
	s     float64 // weighted sum of squared deviations from the mean

	min float64
	max float64

	lastValue  float64
	lastWeight float64
}

// NewWeightedStatistic returns an empty WeightedStatistic.
func NewWeightedStatistic(name string) *WeightedStatistic {
	w := &WeightedStatistic{name: name}
	w.Reset()
	return w
}

func (w *WeightedStatistic) Name() string { return w.name }

// Collect records x with weight wt.
func (w *WeightedStatistic) Collect(x, wt float64) {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(wt) || math.IsInf(wt, 0) || wt <= 0 {
		w.missing++
		return
	}

	w.count++
	w.sumW += wt
	w.sumWX += wt * x
	w.sumX += x

	delta := x - w.mean
	r := delta * wt / w.sumW
	w.mean += r
	w.s += (w.sumW - wt) * delta * r

	if x < w.min {
		w.min = x
	}
	if x > w.max {
		w.max = x
	}
	w.lastValue = x
	w.lastWeight = wt
}

// Reset discards everything collected.
func (w *WeightedStatistic) Reset() {
	*w = WeightedStatistic{
		name:       w.name,
		min:        math.Inf(1),
		max:        math.Inf(-1),
		lastValue:  math.NaN(),
		lastWeight: math.NaN(),
	}
}

// Copy returns an independent snapshot.
func (w *WeightedStatistic) Copy() *WeightedStatistic {
	c := *w
	return &c
}

// Count returns the number of accepted observations.
func (w *WeightedStatistic) Count() int { return w.count }

func (w *WeightedStatistic) MissingCount() int { return w.missing }

// SumOfWeights returns the sum of accepted weights.
func (w *WeightedStatistic) SumOfWeights() float64 { return w.sumW }

// Sum returns the weighted sum of the observations.
func (w *WeightedStatistic) Sum() float64 { return w.sumWX }

// UnweightedSum returns the plain sum of the observations.
func (w *WeightedStatistic) UnweightedSum() float64 { return w.sumX }

// Average returns the weighted mean, NaN when empty.
func (w *WeightedStatistic) Average() float64 {
	if w.count == 0 {
		return math.NaN()
	}
	return w.sumWX / w.sumW
}

// UnweightedAverage returns the plain mean, NaN when empty.
func (w *WeightedStatistic) UnweightedAverage() float64 {
	if w.count == 0 {
		return math.NaN()
	}
	return w.sumX / float64(w.count)
}

// WeightedSumOfSquares returns sum(w*x*x).
func (w *WeightedStatistic) WeightedSumOfSquares() float64 {
	if w.count == 0 {
		return math.NaN()
	}
	return w.s + w.sumW*w.mean*w.mean
}

// Variance returns sum(w*x*x)/sum(w) - average^2, computed from the
// deviation accumulator so it never goes negative.
func (w *WeightedStatistic) Variance() float64 {
	if w.count == 0 {
		return math.NaN()
	}
	return w.s / w.sumW
}

func (w *WeightedStatistic) StandardDeviation() float64 {
	return math.Sqrt(w.Variance())
}

func (w *WeightedStatistic) Min() float64 {
	if w.count == 0 {
		return math.NaN()
	}
	return w.min
}

func (w *WeightedStatistic) Max() float64 {
	if w.count == 0 {
		return math.NaN()
	}
	return w.max
}

// LastValue returns the last accepted value, NaN when empty.
func (w *WeightedStatistic) LastValue() float64 { return w.lastValue }

// LastWeight returns the weight of the last accepted value, NaN when empty.
func (w *WeightedStatistic) LastWeight() float64 { return w.lastWeight }
