package histogram

import (
	"fmt"
	"math"
	"slices"

	"github.com/sanspareilsmyn/simstat/ident"
	"github.com/sanspareilsmyn/simstat/moments"
)

// Bin is a half-open interval [Lower, Upper) and the number of observations
// that fell in it. Bin numbers start at 1.
type Bin struct {
	Number int
	Lower  float64
	Upper  float64
	Count  int
}

// Contains reports whether x lies in [Lower, Upper).
func (b Bin) Contains(x float64) bool {
	return x >= b.Lower && x < b.Upper
}

// Histogram tabulates observations into contiguous bins defined by break
// points. Values below the first break point are counted as underflow, values
// at or above the last as overflow, and NaN values as missing.
//
// A Histogram is not safe for concurrent use.
type Histogram struct {
	name string
	bins []Bin

	underflow int
	overflow  int
	missing   int

	stat   *moments.Statistic // every non-missing observation
	binned *moments.Statistic // observations that landed in a bin
}

// Option configures a Histogram.
type Option func(*options)

type options struct {
	name    string
	nameSrc ident.Source
}

// WithName sets the histogram name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithNameSource draws a default name from src when WithName is not given.
func WithNameSource(src ident.Source) Option {
	return func(o *options) { o.nameSrc = src }
}

// New builds a histogram with one bin per consecutive pair of break points.
// Break points must be strictly increasing and may include -Inf or +Inf to
// rule out underflow or overflow. A single break point b produces the two
// bins [-Inf, b) and [b, +Inf).
func New(breakPoints []float64, opts ...Option) (*Histogram, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	bp, err := validateBreakPoints(breakPoints)
	if err != nil {
		return nil, err
	}

	h := &Histogram{
		name: ident.Name(o.name, o.nameSrc, "Histogram"),
		bins: make([]Bin, len(bp)-1),
	}
	for i := range h.bins {
		h.bins[i] = Bin{Number: i + 1, Lower: bp[i], Upper: bp[i+1]}
	}
	h.stat = moments.NewStatistic(h.name + ":All")
	h.binned = moments.NewStatistic(h.name + ":Binned")
	return h, nil
}

func validateBreakPoints(breakPoints []float64) ([]float64, error) {
	if len(breakPoints) == 0 {
		return nil, ErrNoBreakPoints
	}
	for i, b := range breakPoints {
		if math.IsNaN(b) {
			return nil, fmt.Errorf("%w: index %d", ErrBreakPointNaN, i)
		}
		if i > 0 && !(b > breakPoints[i-1]) {
			return nil, fmt.Errorf("%w: bp[%d]=%v, bp[%d]=%v", ErrBreakPointsOrder, i-1, breakPoints[i-1], i, b)
		}
	}
	if len(breakPoints) == 1 {
		return []float64{math.Inf(-1), breakPoints[0], math.Inf(1)}, nil
	}
	return slices.Clone(breakPoints), nil
}

func (h *Histogram) Name() string { return h.name }

// Collect tabulates x.
func (h *Histogram) Collect(x float64) {
	if math.IsNaN(x) {
		h.missing++
		return
	}
	h.stat.Collect(x)

	switch {
	case x < h.LowerLimit():
		h.underflow++
	case x >= h.UpperLimit():
		h.overflow++
	default:
		i := h.findIndex(x)
		if i < 0 {
			panic(fmt.Errorf("%w: %v passed range checks of [%v, %v)", ErrNoBin, x, h.LowerLimit(), h.UpperLimit()))
		}
		h.bins[i].Count++
		h.binned.Collect(x)
	}
}

// CollectAll tabulates each value in order.
func (h *Histogram) CollectAll(xs ...float64) {
	for _, x := range xs {
		h.Collect(x)
	}
}

// findIndex scans for the first bin whose upper limit exceeds x.
func (h *Histogram) findIndex(x float64) int {
	for i := range h.bins {
		if x < h.bins[i].Upper {
			return i
		}
	}
	return -1
}

// FindBin returns the bin that would hold x.
func (h *Histogram) FindBin(x float64) (Bin, error) {
	if math.IsNaN(x) || x < h.LowerLimit() || x >= h.UpperLimit() {
		return Bin{}, fmt.Errorf("%w: %v outside [%v, %v)", ErrNoBin, x, h.LowerLimit(), h.UpperLimit())
	}
	i := h.findIndex(x)
	if i < 0 {
		return Bin{}, fmt.Errorf("%w: %v", ErrNoBin, x)
	}
	return h.bins[i], nil
}

// BinNumber returns the number of the bin holding x, or 0 when x is NaN,
// underflow or overflow.
func (h *Histogram) BinNumber(x float64) int {
	b, err := h.FindBin(x)
	if err != nil {
		return 0
	}
	return b.Number
}

// Bin returns bin number n (1-based).
func (h *Histogram) Bin(n int) (Bin, error) {
	if n < 1 || n > len(h.bins) {
		return Bin{}, fmt.Errorf("%w: %d not in [1, %d]", ErrBinNumberOutOfRange, n, len(h.bins))
	}
	return h.bins[n-1], nil
}

// Bins returns a copy of all bins.
func (h *Histogram) Bins() []Bin { return slices.Clone(h.bins) }

func (h *Histogram) NumBins() int { return len(h.bins) }

// BreakPoints returns the bin edges, including any infinite outer edges.
func (h *Histogram) BreakPoints() []float64 {
	bp := make([]float64, 0, len(h.bins)+1)
	for _, b := range h.bins {
		bp = append(bp, b.Lower)
	}
	return append(bp, h.bins[len(h.bins)-1].Upper)
}

// LowerLimit returns the lower edge of the first bin.
func (h *Histogram) LowerLimit() float64 { return h.bins[0].Lower }

// UpperLimit returns the upper edge of the last bin.
func (h *Histogram) UpperLimit() float64 { return h.bins[len(h.bins)-1].Upper }

func (h *Histogram) UnderflowCount() int { return h.underflow }

func (h *Histogram) OverflowCount() int { return h.overflow }

func (h *Histogram) MissingCount() int { return h.missing }

// BinnedCount returns the number of observations that landed in a bin.
func (h *Histogram) BinnedCount() int {
	n := 0
	for _, b := range h.bins {
		n += b.Count
	}
	return n
}

// TotalCount returns binned + underflow + overflow; missing values are excluded.
func (h *Histogram) TotalCount() int {
	return h.BinnedCount() + h.underflow + h.overflow
}

// BinCount returns the count of bin n.
func (h *Histogram) BinCount(n int) (int, error) {
	b, err := h.Bin(n)
	if err != nil {
		return 0, err
	}
	return b.Count, nil
}

// BinFraction returns the count of bin n over BinnedCount, NaN when nothing is binned.
func (h *Histogram) BinFraction(n int) (float64, error) {
	c, err := h.BinCount(n)
	if err != nil {
		return math.NaN(), err
	}
	return ratio(c, h.BinnedCount()), nil
}

func (h *Histogram) BinCounts() []int {
	out := make([]int, len(h.bins))
	for i, b := range h.bins {
		out[i] = b.Count
	}
	return out
}

func (h *Histogram) BinFractions() []float64 {
	total := h.BinnedCount()
	out := make([]float64, len(h.bins))
	for i, b := range h.bins {
		out[i] = ratio(b.Count, total)
	}
	return out
}

// CumulativeBinCount sums the counts of bins 1..n. Underflow and overflow are
// not included.
func (h *Histogram) CumulativeBinCount(n int) (int, error) {
	if _, err := h.Bin(n); err != nil {
		return 0, err
	}
	return h.sumBins(n), nil
}

// CumulativeBinFraction is CumulativeBinCount(n) / BinnedCount.
func (h *Histogram) CumulativeBinFraction(n int) (float64, error) {
	c, err := h.CumulativeBinCount(n)
	if err != nil {
		return math.NaN(), err
	}
	return ratio(c, h.BinnedCount()), nil
}

// CumulativeCount is the number of observations below the upper edge of bin
// n, counting underflow.
func (h *Histogram) CumulativeCount(n int) (int, error) {
	c, err := h.CumulativeBinCount(n)
	if err != nil {
		return 0, err
	}
	return h.underflow + c, nil
}

// CumulativeFraction is CumulativeCount(n) / TotalCount.
func (h *Histogram) CumulativeFraction(n int) (float64, error) {
	c, err := h.CumulativeCount(n)
	if err != nil {
		return math.NaN(), err
	}
	return ratio(c, h.TotalCount()), nil
}

// CumulativeBinCountAt sums the bins up to and including the one holding x.
// It is 0 below the range and BinnedCount at or above it.
func (h *Histogram) CumulativeBinCountAt(x float64) int {
	switch {
	case math.IsNaN(x), x < h.LowerLimit():
		return 0
	case x >= h.UpperLimit():
		return h.BinnedCount()
	default:
		return h.sumBins(h.findIndex(x) + 1)
	}
}

// CumulativeCountAt is CumulativeBinCountAt plus underflow, and TotalCount at
// or above the range.
func (h *Histogram) CumulativeCountAt(x float64) int {
	switch {
	case math.IsNaN(x):
		return 0
	case x < h.LowerLimit():
		return h.underflow
	case x >= h.UpperLimit():
		return h.TotalCount()
	default:
		return h.underflow + h.sumBins(h.findIndex(x)+1)
	}
}

func (h *Histogram) CumulativeBinFractionAt(x float64) float64 {
	return ratio(h.CumulativeBinCountAt(x), h.BinnedCount())
}

func (h *Histogram) CumulativeFractionAt(x float64) float64 {
	return ratio(h.CumulativeCountAt(x), h.TotalCount())
}

func (h *Histogram) sumBins(n int) int {
	c := 0
	for _, b := range h.bins[:n] {
		c += b.Count
	}
	return c
}

// Statistic returns a snapshot of the statistics over every non-missing value.
func (h *Histogram) Statistic() *moments.Statistic { return h.stat.Copy() }

// BinnedStatistic returns a snapshot of the statistics over binned values only.
func (h *Histogram) BinnedStatistic() *moments.Statistic { return h.binned.Copy() }

// Reset zeroes every count, keeping the bins.
func (h *Histogram) Reset() {
	for i := range h.bins {
		h.bins[i].Count = 0
	}
	h.underflow, h.overflow, h.missing = 0, 0, 0
	h.stat.Reset()
	h.binned.Reset()
}

// Copy returns an independent snapshot.
func (h *Histogram) Copy() *Histogram {
	c := *h
	c.bins = slices.Clone(h.bins)
	c.stat = h.stat.Copy()
	c.binned = h.binned.Copy()
	return &c
}

func ratio(num, den int) float64 {
	if den == 0 {
		return math.NaN()
	}
	return float64(num) / float64(den)
}
