package pipeline

import (
	"time"

	"github.com/sanspareilsmyn/simstat/frequency"
	"github.com/sanspareilsmyn/simstat/histogram"
	"github.com/sanspareilsmyn/simstat/moments"
)

// WindowSummary holds the statistics of one feature over one window.
type WindowSummary struct {
	FeatureName string
	MetricType  string
	WindowStart time.Time
	WindowEnd   time.Time

	Count        int64 // messages seen while the window was open
	NullCount    int64 // feature absent or null
	InvalidCount int64 // present but not a value of the feature's type
	MissingCount int64 // null, invalid, NaN or infinite

	N               int
	Mean            float64
	Variance        float64
	StdDev          float64
	Min             float64
	Max             float64
	Skewness        float64
	Kurtosis        float64
	Lag1Correlation float64
	MeanCI          moments.Interval // Student-t interval of the mean
	P50             float64
	P95             float64

	Bootstrap *BootstrapSummary
	JackKnife *JackKnifeSummary

	Bins      []histogram.Bin
	Underflow int
	Overflow  int

	Cells []frequency.Cell
}

// MissingRate returns MissingCount / Count, NaN for an empty window.
func (s WindowSummary) MissingRate() float64 {
	if s.Count == 0 {
		return nan
	}
	return float64(s.MissingCount) / float64(s.Count)
}

// BootstrapSummary is the bootstrap percentile interval of an estimator.
type BootstrapSummary struct {
	Estimator string
	Samples   int
	Original  float64
	StdError  float64
	Bias      float64
	CI        moments.Interval
	Skipped   int
}

// JackKnifeSummary is the jackknife view of an estimator.
type JackKnifeSummary struct {
	Estimator     string
	Estimate      float64
	StdError      float64
	Bias          float64
	BiasCorrected float64
	CI            moments.Interval
}

// windowState holds one time window and the state of every feature in it.
type windowState struct {
	start    time.Time
	end      time.Time
	features map[string]*featureWindow
}

func newWindowState(start, end time.Time) *windowState {
	return &windowState{
		start:    start,
		end:      end,
		features: make(map[string]*featureWindow),
	}
}

// featureWindow accumulates one feature within one window.
type featureWindow struct {
	count   int64
	nulls   int64
	invalid int64

	stat   *moments.Statistic
	hist   *histogram.Histogram
	freq   *frequency.IntegerFrequency
	values []float64 // finite observations, capped at maxRetained
}
