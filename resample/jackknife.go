package resample

import (
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/simstat/internal/dist"
	"github.com/sanspareilsmyn/simstat/moments"
)

// JackKnifeEstimator computes leave-one-out estimates of a statistic at
// construction and derives bias and standard error estimates from them.
type JackKnifeEstimator struct {
	name     string
	data     []float64
	level    float64
	original float64
	loo      []float64
	looStat  *moments.Statistic
	dataStat *moments.Statistic
	se       float64
}

// NewJackKnifeEstimator evaluates est on data and on each of its n
// leave-one-out subsets. data must hold at least two observations.
func NewJackKnifeEstimator(data []float64, est EstimatorFunc, opts ...Option) (*JackKnifeEstimator, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: have %d", ErrInsufficientData, len(data))
	}
	if est == nil {
		return nil, ErrNilEstimator
	}
	cfg := newConfig(opts)
	if !dist.ValidLevel(cfg.level) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, cfg.level)
	}
	name := cfg.resolveName("JackKnife")
	j := &JackKnifeEstimator{
		name:     name,
		data:     slices.Clone(data),
		level:    cfg.level,
		dataStat: moments.NewStatistic(name+":OriginalData", data...),
		looStat:  moments.NewStatistic(name + ":LeaveOneOut"),
	}
	j.original = est(slices.Clone(data))

	n := len(data)
	j.loo = make([]float64, n)
	buf := make([]float64, n-1)
	for i := range data {
		copy(buf, data[:i])
		copy(buf[i:], data[i+1:])
		j.loo[i] = est(buf)
		j.looStat.Collect(j.loo[i])
	}

	jm := j.looStat.Average()
	var ss float64
	for _, v := range j.loo {
		d := v - jm
		ss += d * d
	}
	j.se = math.Sqrt(float64(n-1) * ss / float64(n))

	cfg.logger.Debug("Jackknife computed",
		zap.String("estimator", name),
		zap.Int("n", n),
		zap.Float64("se", j.se),
	)
	return j, nil
}

func (j *JackKnifeEstimator) Name() string { return j.name }

// Data returns a copy of the original data.
func (j *JackKnifeEstimator) Data() []float64 { return slices.Clone(j.data) }

// SampleSize returns n.
func (j *JackKnifeEstimator) SampleSize() int { return len(j.data) }

// OriginalDataEstimate returns the estimator applied to all of the data.
func (j *JackKnifeEstimator) OriginalDataEstimate() float64 { return j.original }

// OriginalDataStatistic summarizes the original data.
func (j *JackKnifeEstimator) OriginalDataStatistic() *moments.Statistic { return j.dataStat.Copy() }

// LeaveOneOutEstimates returns the n leave-one-out estimates; element i omits
// observation i.
func (j *JackKnifeEstimator) LeaveOneOutEstimates() []float64 { return slices.Clone(j.loo) }

// LeaveOneOutStatistic summarizes the leave-one-out estimates.
func (j *JackKnifeEstimator) LeaveOneOutStatistic() *moments.Statistic { return j.looStat.Copy() }

// JackKnifeEstimate is the mean of the leave-one-out estimates.
func (j *JackKnifeEstimator) JackKnifeEstimate() float64 { return j.looStat.Average() }

// PseudoValues returns n*original - (n-1)*loo_i for each observation.
func (j *JackKnifeEstimator) PseudoValues() []float64 {
	n := float64(len(j.data))
	out := make([]float64, len(j.loo))
	for i, v := range j.loo {
		out[i] = n*j.original - (n-1)*v
	}
	return out
}

// JackKnifeBiasEstimate returns (n-1)*(jackknife estimate - original estimate).
func (j *JackKnifeEstimator) JackKnifeBiasEstimate() float64 {
	return float64(len(j.data)-1) * (j.JackKnifeEstimate() - j.original)
}

// BiasCorrectedJackknifeEstimate returns original estimate - bias estimate.
func (j *JackKnifeEstimator) BiasCorrectedJackknifeEstimate() float64 {
	return j.original - j.JackKnifeBiasEstimate()
}

// JackKnifeEstimateOfSE returns sqrt((n-1)/n * sum((loo_i - mean)^2)).
func (j *JackKnifeEstimator) JackKnifeEstimateOfSE() float64 { return j.se }

// DefaultLevel returns the level used by ConfidenceInterval.
func (j *JackKnifeEstimator) DefaultLevel() float64 { return j.level }

// SetDefaultLevel changes the level used by ConfidenceInterval.
func (j *JackKnifeEstimator) SetDefaultLevel(level float64) error {
	if !dist.ValidLevel(level) {
		return fmt.Errorf("%w: %v", ErrInvalidLevel, level)
	}
	j.level = level
	return nil
}

// ConfidenceInterval returns the Student-t interval at the default level.
func (j *JackKnifeEstimator) ConfidenceInterval() moments.Interval {
	ci, _ := j.ConfidenceIntervalAt(j.level)
	return ci
}

// ConfidenceIntervalAt returns jackknife estimate +/- t(1-alpha/2, n-1) * SE.
func (j *JackKnifeEstimator) ConfidenceIntervalAt(level float64) (moments.Interval, error) {
	if !dist.ValidLevel(level) {
		return moments.Interval{}, fmt.Errorf("%w: %v", ErrInvalidLevel, level)
	}
	alpha := 1 - level
	t := dist.StudentTQuantile(1-alpha/2, float64(len(j.data)-1))
	hw := t * j.se
	jm := j.JackKnifeEstimate()
	return moments.Interval{Lower: jm - hw, Upper: jm + hw, Level: level}, nil
}
