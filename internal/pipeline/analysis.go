package pipeline

import (
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/simstat/frequency"
	"github.com/sanspareilsmyn/simstat/histogram"
	"github.com/sanspareilsmyn/simstat/internal/config"
	"github.com/sanspareilsmyn/simstat/internal/message"
	"github.com/sanspareilsmyn/simstat/moments"
	"github.com/sanspareilsmyn/simstat/resample"
	"github.com/sanspareilsmyn/simstat/rng"
)

var nan = math.NaN()

// featureSpec is a configured feature with its histogram break points and
// frequency options resolved.
type featureSpec struct {
	cfg         config.FeatureConfig
	breakPoints []float64
	freqOpts    []frequency.Option
}

func newFeatureSpec(cfg config.FeatureConfig) (featureSpec, error) {
	spec := featureSpec{cfg: cfg}
	if cfg.MetricType == "" {
		spec.cfg.MetricType = config.MetricTypeNumerical
	}
	h := cfg.Histogram
	switch {
	case len(h.BreakPoints) > 0:
		spec.breakPoints = h.BreakPoints
	case h.NumBins > 0:
		bp, err := histogram.CreateBreakPointsRange(h.Lower, h.Upper, h.NumBins)
		if err != nil {
			return featureSpec{}, fmt.Errorf("feature %q: %w", cfg.Name, err)
		}
		spec.breakPoints = bp
	}
	if spec.breakPoints != nil {
		if _, err := histogram.New(spec.breakPoints); err != nil {
			return featureSpec{}, fmt.Errorf("feature %q: %w", cfg.Name, err)
		}
	}
	if spec.cfg.MetricType == config.MetricTypeInteger {
		spec.freqOpts = []frequency.Option{frequency.WithName(cfg.Name)}
		if l := cfg.Limits; l.Lower != nil || l.Upper != nil {
			lower, upper := math.MinInt, math.MaxInt
			if l.Lower != nil {
				lower = *l.Lower
			}
			if l.Upper != nil {
				upper = *l.Upper
			}
			spec.freqOpts = append(spec.freqOpts, frequency.WithLimits(lower, upper))
		}
		if _, err := frequency.NewIntegerFrequency(spec.freqOpts...); err != nil {
			return featureSpec{}, fmt.Errorf("feature %q: %w", cfg.Name, err)
		}
	}
	return spec, nil
}

func (s featureSpec) newWindow() *featureWindow {
	fw := &featureWindow{stat: moments.NewStatistic(s.cfg.Name)}
	if s.breakPoints != nil {
		// break points were validated by newFeatureSpec
		fw.hist, _ = histogram.New(s.breakPoints, histogram.WithName(s.cfg.Name))
	}
	if s.freqOpts != nil {
		// options were validated by newFeatureSpec
		fw.freq, _ = frequency.NewIntegerFrequency(s.freqOpts...)
	}
	return fw
}

// observe records the feature's value from msg. It reports false when the
// value is present but not of the feature's type.
func (s featureSpec) observe(fw *featureWindow, msg message.DynamicMessage, maxRetained int) bool {
	name := s.cfg.Name
	fw.count++
	if !msg.HasNonNull(name) {
		fw.nulls++
		return true
	}

	var v float64
	switch s.cfg.MetricType {
	case config.MetricTypeInteger:
		i, ok := msg.GetInt(name)
		if !ok {
			fw.invalid++
			return false
		}
		fw.freq.Collect(i)
		v = float64(i)
	default:
		f, ok := msg.GetFloat64(name)
		if !ok {
			fw.invalid++
			return false
		}
		v = f
	}

	fw.stat.Collect(v)
	if fw.hist != nil {
		fw.hist.Collect(v)
	}
	if !math.IsNaN(v) && !math.IsInf(v, 0) && len(fw.values) < maxRetained {
		fw.values = append(fw.values, v)
	}
	return true
}

// analyzer turns a closed feature window into a WindowSummary.
type analyzer struct {
	cfg       config.PipelineConfig
	bootEst   resample.EstimatorFunc
	jackEst   resample.EstimatorFunc
	streams   *rng.Provider
	perStream map[string]*rng.PCGStream
	logger    *zap.Logger
}

func newAnalyzer(cfg config.PipelineConfig, logger *zap.Logger) (*analyzer, error) {
	a := &analyzer{
		cfg:       cfg,
		streams:   rng.NewProvider(cfg.Bootstrap.Seed),
		perStream: make(map[string]*rng.PCGStream),
		logger:    logger,
	}
	if cfg.Bootstrap.Samples > 0 {
		est, ok := resample.EstimatorByName(cfg.Bootstrap.Estimator)
		if !ok {
			return nil, fmt.Errorf("bootstrap estimator %q: %w", cfg.Bootstrap.Estimator, config.ErrUnknownEstimator)
		}
		a.bootEst = est
	}
	if cfg.JackKnife.Enabled {
		est, ok := resample.EstimatorByName(cfg.JackKnife.Estimator)
		if !ok {
			return nil, fmt.Errorf("jackknife estimator %q: %w", cfg.JackKnife.Estimator, config.ErrUnknownEstimator)
		}
		a.jackEst = est
	}
	return a, nil
}

// stream returns the feature's bootstrap stream. Each feature keeps its own
// stream for the life of the process, one substream per window.
func (a *analyzer) stream(feature string) *rng.PCGStream {
	s, ok := a.perStream[feature]
	if !ok {
		s = a.streams.StreamFor(feature)
		a.perStream[feature] = s
	}
	return s
}

func (a *analyzer) summarize(spec featureSpec, fw *featureWindow, start, end time.Time) WindowSummary {
	st := fw.stat
	sum := WindowSummary{
		FeatureName:     spec.cfg.Name,
		MetricType:      spec.cfg.MetricType,
		WindowStart:     start,
		WindowEnd:       end,
		Count:           fw.count,
		NullCount:       fw.nulls,
		InvalidCount:    fw.invalid,
		MissingCount:    fw.nulls + fw.invalid + int64(st.MissingCount()),
		N:               st.Count(),
		Mean:            st.Average(),
		Variance:        st.Variance(),
		StdDev:          st.StandardDeviation(),
		Min:             st.Min(),
		Max:             st.Max(),
		Skewness:        st.Skewness(),
		Kurtosis:        st.Kurtosis(),
		Lag1Correlation: st.Lag1Correlation(),
		P50:             percentile(fw.values, 50),
		P95:             percentile(fw.values, 95),
	}
	if ci, err := st.ConfidenceInterval(a.cfg.Bootstrap.Level); err == nil {
		sum.MeanCI = ci
	}
	if fw.hist != nil {
		sum.Bins = fw.hist.Bins()
		sum.Underflow = fw.hist.UnderflowCount()
		sum.Overflow = fw.hist.OverflowCount()
	}
	if fw.freq != nil {
		sum.Cells = fw.freq.Cells()
	}
	if len(fw.values) >= 2 {
		sum.Bootstrap = a.bootstrap(spec.cfg.Name, fw.values)
		sum.JackKnife = a.jackknife(spec.cfg.Name, fw.values)
	}
	return sum
}

func (a *analyzer) bootstrap(feature string, values []float64) *BootstrapSummary {
	if a.bootEst == nil {
		return nil
	}
	s := a.stream(feature)
	defer s.AdvanceToNextSubstream()

	b, err := resample.NewBootstrap(values,
		resample.WithName(feature),
		resample.WithStream(s),
		resample.WithLogger(a.logger),
	)
	if err != nil {
		a.logger.Warn("Bootstrap setup failed", zap.String("feature_name", feature), zap.Error(err))
		return nil
	}
	est, err := b.GenerateSamples(a.cfg.Bootstrap.Samples, a.bootEst)
	if err != nil {
		a.logger.Warn("Bootstrap failed", zap.String("feature_name", feature), zap.Error(err))
		return nil
	}
	out := &BootstrapSummary{
		Estimator: a.cfg.Bootstrap.Estimator,
		Samples:   est.NumBootstraps(),
		Original:  est.OriginalEstimate,
		StdError:  est.StdError(),
		Bias:      est.Bias(),
		Skipped:   b.Skipped(),
	}
	ci, err := est.PercentileCI(a.cfg.Bootstrap.Level)
	if err != nil {
		a.logger.Debug("No bootstrap interval", zap.String("feature_name", feature), zap.Error(err))
		out.CI = moments.Interval{Lower: nan, Upper: nan, Level: a.cfg.Bootstrap.Level}
	} else {
		out.CI = ci
	}
	return out
}

func (a *analyzer) jackknife(feature string, values []float64) *JackKnifeSummary {
	if a.jackEst == nil {
		return nil
	}
	j, err := resample.NewJackKnifeEstimator(values, a.jackEst,
		resample.WithName(feature),
		resample.WithLevel(a.cfg.Bootstrap.Level),
		resample.WithLogger(a.logger),
	)
	if err != nil {
		a.logger.Warn("Jackknife failed", zap.String("feature_name", feature), zap.Error(err))
		return nil
	}
	return &JackKnifeSummary{
		Estimator:     a.cfg.JackKnife.Estimator,
		Estimate:      j.JackKnifeEstimate(),
		StdError:      j.JackKnifeEstimateOfSE(),
		Bias:          j.JackKnifeBiasEstimate(),
		BiasCorrected: j.BiasCorrectedJackknifeEstimate(),
		CI:            j.ConfidenceInterval(),
	}
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return nan
	}
	v, err := stats.PercentileNearestRank(stats.Float64Data(values), p)
	if err != nil {
		return nan
	}
	return v
}
