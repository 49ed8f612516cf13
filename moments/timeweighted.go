package moments

import "fmt"

// TimeSource reports the current simulated time. Successive calls must not
// decrease.
type TimeSource interface {
	Time() float64
}

// TimeSourceFunc adapts a function to TimeSource.
type TimeSourceFunc func() float64

func (f TimeSourceFunc) Time() float64 { return f() }

// TimeWeighted tracks a piecewise-constant quantity, such as a queue length,
// weighting each value by how long it was held. Each Collect reads the time
// source once and credits the elapsed interval to the previous value.
type TimeWeighted struct {
	stat *WeightedStatistic
	src  TimeSource

	lastTime  float64
	lastValue float64
}

// NewTimeWeighted starts tracking at the current time with the given initial value.
func NewTimeWeighted(name string, src TimeSource, initial float64) (*TimeWeighted, error) {
	if src == nil {
		return nil, ErrNilTimeSource
	}
	return &TimeWeighted{
		stat:      NewWeightedStatistic(name),
		src:       src,
		lastTime:  src.Time(),
		lastValue: initial,
	}, nil
}

// Collect changes the tracked value to x at the current time.
func (t *TimeWeighted) Collect(x float64) error {
	if err := t.advance(); err != nil {
		return err
	}
	t.lastValue = x
	return nil
}

// Update credits the time elapsed since the last change to the current value
// without changing it. Call it before reading results at the end of a run.
func (t *TimeWeighted) Update() error {
	return t.advance()
}

func (t *TimeWeighted) advance() error {
	now := t.src.Time()
	if now < t.lastTime {
		return fmt.Errorf("%w: %v < %v", ErrTimeReversed, now, t.lastTime)
	}
	// a zero-length interval carries no weight
	if elapsed := now - t.lastTime; elapsed > 0 {
		t.stat.Collect(t.lastValue, elapsed)
	}
	t.lastTime = now
	return nil
}

// Reset clears the accumulated history but keeps the current value, restarting
// the clock at the current time. This is how warm-up periods are discarded.
func (t *TimeWeighted) Reset() {
	t.stat.Reset()
	t.lastTime = t.src.Time()
}

// Statistic returns a snapshot of the weighted accumulator.
func (t *TimeWeighted) Statistic() *WeightedStatistic { return t.stat.Copy() }

// Average returns the time-weighted average.
func (t *TimeWeighted) Average() float64 { return t.stat.Average() }

func (t *TimeWeighted) LastValue() float64 { return t.lastValue }

func (t *TimeWeighted) LastTime() float64 { return t.lastTime }
