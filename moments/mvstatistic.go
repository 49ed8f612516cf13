package moments

import (
	"fmt"
	"slices"
)

// MVStatistic keeps one Statistic per named dimension of a vector-valued stream.
type MVStatistic struct {
	name  string
	names []string
	stats []*Statistic
}

// NewMVStatistic returns an MVStatistic with one dimension per name.
func NewMVStatistic(name string, names []string) (*MVStatistic, error) {
	if len(names) == 0 {
		return nil, ErrNoDimensions
	}
	mv := &MVStatistic{
		name:  name,
		names: slices.Clone(names),
		stats: make([]*Statistic, len(names)),
	}
	for i, n := range names {
		mv.stats[i] = NewStatistic(n)
	}
	return mv, nil
}

func (mv *MVStatistic) Name() string { return mv.name }

// Dimension returns the number of dimensions.
func (mv *MVStatistic) Dimension() int { return len(mv.stats) }

// Names returns the dimension names in order.
func (mv *MVStatistic) Names() []string { return slices.Clone(mv.names) }

// Collect records one vector observation. Missing components are handled per
// dimension the same way Statistic handles them.
func (mv *MVStatistic) Collect(x []float64) error {
	if len(x) != len(mv.stats) {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(x), len(mv.stats))
	}
	for i, v := range x {
		mv.stats[i].Collect(v)
	}
	return nil
}

// CollectAll records each row in order, stopping at the first mismatched row.
func (mv *MVStatistic) CollectAll(rows [][]float64) error {
	for i, row := range rows {
		if err := mv.Collect(row); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

// Statistic returns a snapshot of dimension i.
func (mv *MVStatistic) Statistic(i int) *Statistic {
	return mv.stats[i].Copy()
}

// StatisticByName returns a snapshot of the named dimension.
func (mv *MVStatistic) StatisticByName(name string) (*Statistic, bool) {
	i := slices.Index(mv.names, name)
	if i < 0 {
		return nil, false
	}
	return mv.stats[i].Copy(), true
}

func (mv *MVStatistic) Counts() []int {
	out := make([]int, len(mv.stats))
	for i, s := range mv.stats {
		out[i] = s.Count()
	}
	return out
}

func (mv *MVStatistic) Averages() []float64 {
	return mv.each((*Statistic).Average)
}

func (mv *MVStatistic) Variances() []float64 {
	return mv.each((*Statistic).Variance)
}

func (mv *MVStatistic) StandardDeviations() []float64 {
	return mv.each((*Statistic).StandardDeviation)
}

func (mv *MVStatistic) each(f func(*Statistic) float64) []float64 {
	out := make([]float64, len(mv.stats))
	for i, s := range mv.stats {
		out[i] = f(s)
	}
	return out
}

func (mv *MVStatistic) Reset() {
	for _, s := range mv.stats {
		s.Reset()
	}
}

// Copy returns an independent snapshot.
func (mv *MVStatistic) Copy() *MVStatistic {
	c := &MVStatistic{
		name:  mv.name,
		names: slices.Clone(mv.names),
		stats: make([]*Statistic, len(mv.stats)),
	}
	for i, s := range mv.stats {
		c.stats[i] = s.Copy()
	}
	return c
}
