package frequency

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/sanspareilsmyn/simstat/ident"
	"github.com/sanspareilsmyn/simstat/moments"
)

// Cell is the tabulated count of one observed integer.
type Cell struct {
	Value int
	Count int
	Label string
}

// CDFPoint is one step of the empirical distribution function.
type CDFPoint struct {
	Value      int
	Proportion float64
}

// IntegerFrequency counts occurrences of integer observations.
//
// Values outside [lower, upper] increment the underflow and overflow counters
// but are still tabulated; the counters annotate out-of-range data rather than
// exclude it. Only observed values get a cell.
type IntegerFrequency struct {
	name   string
	lower  int
	upper  int
	counts map[int]int
	labels map[int]string

	total     int
	underflow int
	overflow  int
	minValue  int
	maxValue  int

	stat *moments.Statistic
}

// denseScanFactor bounds the [min, max] width Cells walks densely, as a
// multiple of the number of distinct values.
const denseScanFactor = 64

// Option configures an IntegerFrequency.
type Option func(*options)

type options struct {
	name      string
	nameSrc   ident.Source
	lower     int
	upper     int
	hasLimits bool
}

func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithNameSource draws a default name from src when WithName is not given.
func WithNameSource(src ident.Source) Option {
	return func(o *options) { o.nameSrc = src }
}

// WithLimits sets the inclusive range used for underflow and overflow counting.
func WithLimits(lower, upper int) Option {
	return func(o *options) {
		o.lower, o.upper, o.hasLimits = lower, upper, true
	}
}

// NewIntegerFrequency returns an empty table. Without WithLimits the range is
// the full int range.
func NewIntegerFrequency(opts ...Option) (*IntegerFrequency, error) {
	o := options{lower: math.MinInt, upper: math.MaxInt}
	for _, opt := range opts {
		opt(&o)
	}
	if o.hasLimits && o.lower > o.upper {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrInvalidLimits, o.lower, o.upper)
	}
	name := ident.Name(o.name, o.nameSrc, "IntegerFrequency")
	return &IntegerFrequency{
		name:   name,
		lower:  o.lower,
		upper:  o.upper,
		counts: make(map[int]int),
		labels: make(map[int]string),
		stat:   moments.NewStatistic(name),
	}, nil
}

func (f *IntegerFrequency) Name() string { return f.name }

func (f *IntegerFrequency) LowerLimit() int { return f.lower }

func (f *IntegerFrequency) UpperLimit() int { return f.upper }

// Collect tabulates i.
func (f *IntegerFrequency) Collect(i int) {
	f.stat.Collect(float64(i))
	if f.total == 0 || i < f.minValue {
		f.minValue = i
	}
	if f.total == 0 || i > f.maxValue {
		f.maxValue = i
	}
	if i < f.lower {
		f.underflow++
	}
	if i > f.upper {
		f.overflow++
	}
	f.counts[i]++
	f.total++
}

// CollectAll tabulates each value in order.
func (f *IntegerFrequency) CollectAll(values ...int) {
	for _, v := range values {
		f.Collect(v)
	}
}

// SetLabel attaches a label to value; it shows up on the value's cell.
func (f *IntegerFrequency) SetLabel(value int, label string) {
	f.labels[value] = label
}

// Cells returns the observed cells in ascending value order.
//
// Cells are found by walking every integer in the observed [min, max] range,
// which costs O(max-min). When that range is more than denseScanFactor times
// wider than the number of distinct values, the observed values are sorted
// instead. Both give the same result.
func (f *IntegerFrequency) Cells() []Cell {
	if f.total == 0 {
		return nil
	}
	cells := make([]Cell, 0, len(f.counts))
	add := func(v int) {
		if c, ok := f.counts[v]; ok {
			cells = append(cells, Cell{Value: v, Count: c, Label: f.labels[v]})
		}
	}
	// unsigned difference cannot overflow for any pair of ints
	width := uint64(f.maxValue) - uint64(f.minValue)
	if width/denseScanFactor > uint64(len(f.counts)) {
		for _, v := range slices.Sorted(maps.Keys(f.counts)) {
			add(v)
		}
		return cells
	}
	for v := f.minValue; ; v++ {
		add(v)
		if v == f.maxValue {
			break
		}
	}
	return cells
}

// Values returns the observed values in ascending order.
func (f *IntegerFrequency) Values() []int {
	cells := f.Cells()
	out := make([]int, len(cells))
	for i, c := range cells {
		out[i] = c.Value
	}
	return out
}

// Frequencies returns the counts aligned with Values.
func (f *IntegerFrequency) Frequencies() []int {
	cells := f.Cells()
	out := make([]int, len(cells))
	for i, c := range cells {
		out[i] = c.Count
	}
	return out
}

// Proportions returns the counts aligned with Values divided by TotalCount.
func (f *IntegerFrequency) Proportions() []float64 {
	cells := f.Cells()
	out := make([]float64, len(cells))
	for i, c := range cells {
		out[i] = float64(c.Count) / float64(f.total)
	}
	return out
}

// Frequency returns how many times i was observed.
func (f *IntegerFrequency) Frequency(i int) int { return f.counts[i] }

// Proportion returns Frequency(i)/TotalCount, NaN when empty.
func (f *IntegerFrequency) Proportion(i int) float64 {
	if f.total == 0 {
		return math.NaN()
	}
	return float64(f.counts[i]) / float64(f.total)
}

// CumulativeFrequency counts observations less than or equal to i.
func (f *IntegerFrequency) CumulativeFrequency(i int) int {
	sum := 0
	for _, c := range f.Cells() {
		if c.Value > i {
			break
		}
		sum += c.Count
	}
	return sum
}

// CumulativeProportion is CumulativeFrequency(i)/TotalCount, NaN when empty.
func (f *IntegerFrequency) CumulativeProportion(i int) float64 {
	if f.total == 0 {
		return math.NaN()
	}
	return float64(f.CumulativeFrequency(i)) / float64(f.total)
}

// CDF returns the empirical distribution function at each observed value.
func (f *IntegerFrequency) CDF() []CDFPoint {
	cells := f.Cells()
	out := make([]CDFPoint, len(cells))
	sum := 0
	for i, c := range cells {
		sum += c.Count
		out[i] = CDFPoint{Value: c.Value, Proportion: float64(sum) / float64(f.total)}
	}
	return out
}

// Mode returns the most frequent value, the smallest one on ties.
func (f *IntegerFrequency) Mode() (int, bool) {
	best, bestCount := 0, 0
	for _, c := range f.Cells() {
		if c.Count > bestCount {
			best, bestCount = c.Value, c.Count
		}
	}
	return best, bestCount > 0
}

// TotalCount returns the number of collected observations.
func (f *IntegerFrequency) TotalCount() int { return f.total }

// NumberOfCells returns the number of distinct observed values.
func (f *IntegerFrequency) NumberOfCells() int { return len(f.counts) }

func (f *IntegerFrequency) UnderflowCount() int { return f.underflow }

func (f *IntegerFrequency) OverflowCount() int { return f.overflow }

// Statistic returns a snapshot of the statistics over the collected values.
func (f *IntegerFrequency) Statistic() *moments.Statistic { return f.stat.Copy() }

// Reset clears all counts. Labels are kept.
func (f *IntegerFrequency) Reset() {
	clear(f.counts)
	f.total, f.underflow, f.overflow = 0, 0, 0
	f.minValue, f.maxValue = 0, 0
	f.stat.Reset()
}

// Copy returns an independent snapshot.
func (f *IntegerFrequency) Copy() *IntegerFrequency {
	c := *f
	c.counts = maps.Clone(f.counts)
	c.labels = maps.Clone(f.labels)
	c.stat = f.stat.Copy()
	return &c
}
