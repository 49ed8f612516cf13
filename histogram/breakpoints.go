package histogram

import (
	"fmt"
	"math"
	"slices"

	"github.com/sanspareilsmyn/simstat/moments"
)

// scottFactor is the constant in Scott's normal-reference bin width rule.
const scottFactor = 3.49

// CreateBreakPoints returns lower, lower+width, ..., lower+numBins*width.
func CreateBreakPoints(lower float64, numBins int, width float64) ([]float64, error) {
	if numBins <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNumBins, numBins)
	}
	if !(width > 0) || math.IsInf(width, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWidth, width)
	}
	if math.IsNaN(lower) || math.IsInf(lower, 0) {
		return nil, fmt.Errorf("%w: lower limit %v", ErrInvalidRange, lower)
	}
	bp := make([]float64, numBins+1)
	for i := range bp {
		bp[i] = lower + float64(i)*width
	}
	return bp, nil
}

// CreateBreakPointsRange splits [lower, upper] into numBins equal-width bins.
// The last break point is set to upper exactly.
func CreateBreakPointsRange(lower, upper float64, numBins int) ([]float64, error) {
	if !(upper > lower) || math.IsInf(lower, 0) || math.IsInf(upper, 0) {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrInvalidRange, lower, upper)
	}
	bp, err := CreateBreakPoints(lower, numBins, (upper-lower)/float64(numBins))
	if err != nil {
		return nil, err
	}
	bp[numBins] = upper
	return bp, nil
}

// RecommendBreakPoints proposes break points for data using Scott's rule,
// width = 3.49 * sd * n^(-1/3), rounded up to one significant digit and
// starting from floor(min). NaN and infinite values are ignored. Data with
// fewer than two values or no spread yields the single break point floor(v),
// which New expands to two half-infinite bins.
func RecommendBreakPoints(data []float64) []float64 {
	s := moments.NewStatistic("", data...)
	if s.Count() == 0 {
		return nil
	}
	if s.Count() == 1 || s.Min() == s.Max() {
		return []float64{math.Floor(s.Min())}
	}

	width := niceWidth(scottFactor * s.StandardDeviation() * math.Pow(float64(s.Count()), -1.0/3.0))
	lower := math.Floor(s.Min())
	numBins := int(math.Ceil((s.Max() - s.Min()) / width))
	if numBins < 1 {
		numBins = 1
	}
	// max must land inside the last bin, which is half-open
	for lower+float64(numBins)*width <= s.Max() {
		numBins++
	}
	bp, _ := CreateBreakPoints(lower, numBins, width)
	return bp
}

// niceWidth rounds w up to one significant digit.
func niceWidth(w float64) float64 {
	scale := math.Pow(10, math.Floor(math.Log10(w)))
	return math.Ceil(w/scale) * scale
}

// AddNegativeInfinity returns bp with -Inf prepended, removing underflow.
func AddNegativeInfinity(bp []float64) []float64 {
	if len(bp) > 0 && math.IsInf(bp[0], -1) {
		return slices.Clone(bp)
	}
	return append([]float64{math.Inf(-1)}, bp...)
}

// AddPositiveInfinity returns bp with +Inf appended, removing overflow.
func AddPositiveInfinity(bp []float64) []float64 {
	out := slices.Clone(bp)
	if len(out) > 0 && math.IsInf(out[len(out)-1], 1) {
		return out
	}
	return append(out, math.Inf(1))
}
