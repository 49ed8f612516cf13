package pipeline

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/simstat/frequency"
	"github.com/sanspareilsmyn/simstat/histogram"
	"github.com/sanspareilsmyn/simstat/internal/config"
	"github.com/sanspareilsmyn/simstat/moments"
)

func ptr[T any](v T) *T { return &v }

// gathered returns the value of every series of the named family, keyed by
// its labels, which the registry sorts by name.
func gathered(t *testing.T, reg *prometheus.Registry, name string) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]float64)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			key := ""
			for _, lp := range m.GetLabel() {
				if key != "" {
					key += ","
				}
				key += lp.GetName() + "=" + lp.GetValue()
			}
			switch {
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			}
		}
	}
	return out
}

func testSummary() WindowSummary {
	return WindowSummary{
		FeatureName:  "waitTime",
		WindowStart:  windowStart,
		WindowEnd:    windowStart.Add(time.Minute),
		Count:        10,
		MissingCount: 3,
		N:            7,
		Mean:         12,
		StdDev:       0.5,
		Min:          10,
		Max:          14,
		P50:          12,
		P95:          math.NaN(),
		MeanCI:       moments.Interval{Lower: 11, Upper: 13, Level: 0.95},
		Bootstrap: &BootstrapSummary{
			Estimator: "average",
			Samples:   200,
			StdError:  0.4,
			CI:        moments.Interval{Lower: 11.2, Upper: 12.9, Level: 0.95},
		},
		JackKnife: &JackKnifeSummary{Estimator: "average", StdError: 0.45, Bias: 0},
		Bins: []histogram.Bin{
			{Number: 1, Lower: 0, Upper: 10, Count: 2},
			{Number: 2, Lower: 10, Upper: 20, Count: 5},
		},
		Overflow: 1,
		Cells:    []frequency.Cell{{Value: 4, Count: 6}},
	}
}

func newTestReporter(thresholds config.Thresholds) (*Reporter, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	features := []config.FeatureConfig{{Name: "waitTime", Thresholds: thresholds}}
	return NewReporter(features, nil, reg, zap.NewNop()), reg
}

func TestReporterPublishesGauges(t *testing.T) {
	r, reg := newTestReporter(config.Thresholds{})
	r.report(testSummary())

	assert.Equal(t, map[string]float64{"feature_name=waitTime": 12}, gathered(t, reg, "simstat_feature_window_mean_value"))
	assert.Equal(t, 0.3, gathered(t, reg, "simstat_feature_window_missing_rate")["feature_name=waitTime"])

	q := gathered(t, reg, "simstat_feature_window_quantile_value")
	assert.Equal(t, 12.0, q["feature_name=waitTime,quantile=0.5"])
	assert.Equal(t, 0.0, q["feature_name=waitTime,quantile=0.95"], "NaN is published as 0")

	ci := gathered(t, reg, "simstat_feature_window_bootstrap_ci")
	assert.Equal(t, 11.2, ci["bound=lower,estimator=average,feature_name=waitTime"])
	assert.Equal(t, 12.9, ci["bound=upper,estimator=average,feature_name=waitTime"])

	bins := gathered(t, reg, "simstat_feature_window_histogram_bin_count")
	assert.Len(t, bins, 4)
	assert.Equal(t, 5.0, bins["bin=2,feature_name=waitTime,lower=10"])
	assert.Equal(t, 1.0, bins["bin=-1,feature_name=waitTime,lower=20"])

	assert.Equal(t, 6.0, gathered(t, reg, "simstat_feature_window_frequency")["feature_name=waitTime,value=4"])
	assert.Equal(t, 1.0, gathered(t, reg, "simstat_feature_windows_total")["feature_name=waitTime"])
	assert.Empty(t, gathered(t, reg, "simstat_feature_threshold_violations_total"))
}

func TestReporterThresholdViolations(t *testing.T) {
	r, reg := newTestReporter(config.Thresholds{
		MissingRate: ptr(0.2),
		MeanMin:     ptr(5.0),
		MeanMax:     ptr(10.0),
		StdDevMin:   ptr(1.0),
		CIWidthMax:  ptr(1.0),
	})
	r.report(testSummary())
	r.report(testSummary())

	v := gathered(t, reg, "simstat_feature_threshold_violations_total")
	assert.Equal(t, map[string]float64{
		"check_type=missing_rate,comparison=>,feature_name=waitTime":       2,
		"check_type=mean,comparison=>,feature_name=waitTime":               2,
		"check_type=stddev,comparison=<,feature_name=waitTime":             2,
		"check_type=bootstrap_ci_width,comparison=>,feature_name=waitTime": 2,
	}, v)
}

func TestReporterSkipsUnconfiguredFeature(t *testing.T) {
	r, reg := newTestReporter(config.Thresholds{})
	s := testSummary()
	s.FeatureName = "other"
	r.report(s)
	assert.Empty(t, gathered(t, reg, "simstat_feature_window_mean_value"))
}

func TestReporterRunStopsWhenInputCloses(t *testing.T) {
	in := make(chan WindowSummary, 1)
	reg := prometheus.NewRegistry()
	r := NewReporter([]config.FeatureConfig{{Name: "waitTime"}}, in, reg, zap.NewNop())

	in <- testSummary()
	close(in)
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 1.0, gathered(t, reg, "simstat_feature_windows_total")["feature_name=waitTime"])
}

func TestReporterReplacesFrequencyCells(t *testing.T) {
	r, reg := newTestReporter(config.Thresholds{})
	first := testSummary()
	first.Cells = []frequency.Cell{{Value: 4, Count: 6}, {Value: 5, Count: 1}}
	r.report(first)

	second := testSummary()
	second.Cells = []frequency.Cell{{Value: 5, Count: 3}}
	r.report(second)

	assert.Equal(t, map[string]float64{"feature_name=waitTime,value=5": 3},
		gathered(t, reg, "simstat_feature_window_frequency"))
}
