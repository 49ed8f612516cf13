package pipeline

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/simstat/internal/config"
)

const metricPrefix = "simstat_"

// metrics are the gauges the Reporter maintains, one series per feature.
type metrics struct {
	count       *prometheus.GaugeVec
	missing     *prometheus.GaugeVec
	missingRate *prometheus.GaugeVec
	mean        *prometheus.GaugeVec
	stdDev      *prometheus.GaugeVec
	min         *prometheus.GaugeVec
	max         *prometheus.GaugeVec
	quantile    *prometheus.GaugeVec
	meanCI      *prometheus.GaugeVec
	bootCI      *prometheus.GaugeVec
	bootSE      *prometheus.GaugeVec
	jackSE      *prometheus.GaugeVec
	jackBias    *prometheus.GaugeVec
	bin         *prometheus.GaugeVec
	cell        *prometheus.GaugeVec
	violations  *prometheus.CounterVec
	windows     *prometheus.CounterVec
}

func gauge(f promauto.Factory, name, help string, labels ...string) *prometheus.GaugeVec {
	return f.NewGaugeVec(prometheus.GaugeOpts{Name: metricPrefix + name, Help: help}, append([]string{"feature_name"}, labels...))
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		count:       gauge(f, "feature_window_count", "Messages seen for a feature in the last window."),
		missing:     gauge(f, "feature_window_missing_count", "Null, invalid or non-finite values for a feature in the last window."),
		missingRate: gauge(f, "feature_window_missing_rate", "Missing count / count for a feature in the last window."),
		mean:        gauge(f, "feature_window_mean_value", "Mean of a feature in the last window."),
		stdDev:      gauge(f, "feature_window_stddev_value", "Standard deviation of a feature in the last window."),
		min:         gauge(f, "feature_window_min_value", "Minimum of a feature in the last window."),
		max:         gauge(f, "feature_window_max_value", "Maximum of a feature in the last window."),
		quantile:    gauge(f, "feature_window_quantile_value", "Quantiles of the retained values of a feature in the last window.", "quantile"),
		meanCI:      gauge(f, "feature_window_mean_ci", "Student-t confidence interval bounds of the mean.", "bound"),
		bootCI:      gauge(f, "feature_window_bootstrap_ci", "Bootstrap percentile interval bounds of the configured estimator.", "estimator", "bound"),
		bootSE:      gauge(f, "feature_window_bootstrap_stderr", "Bootstrap standard error of the configured estimator.", "estimator"),
		jackSE:      gauge(f, "feature_window_jackknife_stderr", "Jackknife standard error of the configured estimator.", "estimator"),
		jackBias:    gauge(f, "feature_window_jackknife_bias", "Jackknife bias estimate of the configured estimator.", "estimator"),
		bin:         gauge(f, "feature_window_histogram_bin_count", "Observations per histogram bin; bin 0 is underflow, bin -1 overflow.", "bin", "lower"),
		cell:        gauge(f, "feature_window_frequency", "Observations per integer value of an integer feature.", "value"),
		violations: f.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "feature_threshold_violations_total",
			Help: "Threshold violations detected for a feature and specific check.",
		}, []string{"feature_name", "check_type", "comparison"}),
		windows: f.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "feature_windows_total",
			Help: "Windows summarized for a feature.",
		}, []string{"feature_name"}),
	}
}

// Reporter publishes window summaries as Prometheus metrics and checks them
// against the configured thresholds.
type Reporter struct {
	features map[string]config.FeatureConfig
	input    <-chan WindowSummary
	metrics  *metrics
	logger   *zap.Logger
}

// NewReporter registers the reporter's metrics with reg.
func NewReporter(features []config.FeatureConfig, input <-chan WindowSummary, reg prometheus.Registerer, logger *zap.Logger) *Reporter {
	featureMap := make(map[string]config.FeatureConfig, len(features))
	for _, f := range features {
		featureMap[f.Name] = f
	}
	logger.Debug("Reporter initialized", zap.Int("feature_count", len(featureMap)))
	return &Reporter{
		features: featureMap,
		input:    input,
		metrics:  newMetrics(reg),
		logger:   logger,
	}
}

// Run publishes summaries until the input closes or ctx is done.
func (r *Reporter) Run(ctx context.Context) error {
	sugar := r.logger.Sugar()
	sugar.Info("Starting reporter loop...")
	defer sugar.Info("Reporter loop stopped.")

	for {
		select {
		case s, ok := <-r.input:
			if !ok {
				sugar.Info("Reporter input channel closed.")
				return nil
			}
			r.report(s)

		case <-ctx.Done():
			sugar.Info("Context cancelled, stopping reporter.")
			return ctx.Err()
		}
	}
}

// setGauge writes v, or 0 when v is NaN or infinite.
func setGauge(g prometheus.Gauge, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	g.Set(v)
}

func (r *Reporter) report(s WindowSummary) {
	name := s.FeatureName
	featureCfg, exists := r.features[name]
	if !exists {
		r.logger.Warn("Received summary for unconfigured feature, skipping metric update",
			zap.String("feature_name", name),
			zap.Time("window_start", s.WindowStart),
			zap.Time("window_end", s.WindowEnd),
		)
		return
	}
	m := r.metrics
	missingRate := s.MissingRate()

	m.windows.WithLabelValues(name).Inc()
	setGauge(m.count.WithLabelValues(name), float64(s.Count))
	setGauge(m.missing.WithLabelValues(name), float64(s.MissingCount))
	setGauge(m.missingRate.WithLabelValues(name), missingRate)
	setGauge(m.mean.WithLabelValues(name), s.Mean)
	setGauge(m.stdDev.WithLabelValues(name), s.StdDev)
	setGauge(m.min.WithLabelValues(name), s.Min)
	setGauge(m.max.WithLabelValues(name), s.Max)
	setGauge(m.quantile.WithLabelValues(name, "0.5"), s.P50)
	setGauge(m.quantile.WithLabelValues(name, "0.95"), s.P95)
	setGauge(m.meanCI.WithLabelValues(name, "lower"), s.MeanCI.Lower)
	setGauge(m.meanCI.WithLabelValues(name, "upper"), s.MeanCI.Upper)

	if b := s.Bootstrap; b != nil {
		setGauge(m.bootCI.WithLabelValues(name, b.Estimator, "lower"), b.CI.Lower)
		setGauge(m.bootCI.WithLabelValues(name, b.Estimator, "upper"), b.CI.Upper)
		setGauge(m.bootSE.WithLabelValues(name, b.Estimator), b.StdError)
	}
	if j := s.JackKnife; j != nil {
		setGauge(m.jackSE.WithLabelValues(name, j.Estimator), j.StdError)
		setGauge(m.jackBias.WithLabelValues(name, j.Estimator), j.Bias)
	}
	if len(s.Bins) > 0 {
		setGauge(m.bin.WithLabelValues(name, "0", "-Inf"), float64(s.Underflow))
		for _, b := range s.Bins {
			setGauge(m.bin.WithLabelValues(name, strconv.Itoa(b.Number), formatFloat(b.Lower)), float64(b.Count))
		}
		last := s.Bins[len(s.Bins)-1]
		setGauge(m.bin.WithLabelValues(name, "-1", formatFloat(last.Upper)), float64(s.Overflow))
	}
	// values absent from this window must not keep an earlier count
	m.cell.DeletePartialMatch(prometheus.Labels{"feature_name": name})
	for _, c := range s.Cells {
		setGauge(m.cell.WithLabelValues(name, strconv.Itoa(c.Value)), float64(c.Count))
	}

	t := featureCfg.Thresholds
	r.checkMax(name, s.WindowEnd, "missing_rate", missingRate, t.MissingRate)
	r.checkRange(name, s.WindowEnd, "mean", s.Mean, t.MeanMin, t.MeanMax)
	r.checkRange(name, s.WindowEnd, "stddev", s.StdDev, t.StdDevMin, t.StdDevMax)
	if s.Bootstrap != nil {
		r.checkMax(name, s.WindowEnd, "bootstrap_ci_width", s.Bootstrap.CI.Width(), t.CIWidthMax)
	}

	r.logStats(s, missingRate)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (r *Reporter) checkRange(feature string, windowEnd time.Time, check string, actual float64, minThreshold, maxThreshold *float64) {
	if math.IsNaN(actual) {
		return
	}
	if minThreshold != nil && actual < *minThreshold {
		r.violation(feature, windowEnd, check, "<", actual, *minThreshold)
	}
	r.checkMax(feature, windowEnd, check, actual, maxThreshold)
}

func (r *Reporter) checkMax(feature string, windowEnd time.Time, check string, actual float64, threshold *float64) {
	if threshold == nil || math.IsNaN(actual) {
		return
	}
	if actual > *threshold {
		r.violation(feature, windowEnd, check, ">", actual, *threshold)
	}
}

func (r *Reporter) violation(feature string, windowEnd time.Time, check, comparison string, actual, threshold float64) {
	r.logger.Warn("Threshold violation",
		zap.String("feature_name", feature),
		zap.String("check_type", check),
		zap.Time("window_end", windowEnd),
		zap.Float64("actual", actual),
		zap.Float64("threshold", threshold),
		zap.String("comparison", comparison),
	)
	r.metrics.violations.WithLabelValues(feature, check, comparison).Inc()
}

func (r *Reporter) logStats(s WindowSummary, missingRate float64) {
	fields := []zap.Field{
		zap.String("feature_name", s.FeatureName),
		zap.Time("window_end", s.WindowEnd),
		zap.Int64("count", s.Count),
		zap.Int("n", s.N),
	}
	if !math.IsNaN(missingRate) {
		fields = append(fields, zap.Float64("missing_rate", missingRate))
	}
	if !math.IsNaN(s.Mean) {
		fields = append(fields, zap.Float64("mean", s.Mean))
	}
	if !math.IsNaN(s.StdDev) {
		fields = append(fields, zap.Float64("stddev", s.StdDev))
	}
	if b := s.Bootstrap; b != nil {
		fields = append(fields,
			zap.Float64("bootstrap_ci_lower", b.CI.Lower),
			zap.Float64("bootstrap_ci_upper", b.CI.Upper),
		)
	}
	if j := s.JackKnife; j != nil {
		fields = append(fields, zap.Float64("jackknife_stderr", j.StdError))
	}
	r.logger.Info("Feature window summarized", fields...)
}
