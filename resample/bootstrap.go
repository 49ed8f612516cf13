package resample

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/simstat/moments"
	"github.com/sanspareilsmyn/simstat/rng"
)

// Bootstrap draws samples with replacement from a fixed data set and
// summarizes an estimator across them.
//
// A Bootstrap is not safe for concurrent use.
type Bootstrap struct {
	name   string
	data   []float64
	stream rng.Stream
	logger *zap.Logger

	original *moments.Statistic

	saveSamples bool
	samples     [][]float64
	sampleStats []*moments.Statistic

	across   *moments.MVStatistic // estimates of the last run, per dimension
	averages *moments.Statistic   // averages of the samples of the last run
	last     []Estimate
	skipped  int
}

// NewBootstrap copies data, which must hold at least two observations.
func NewBootstrap(data []float64, opts ...Option) (*Bootstrap, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: have %d", ErrInsufficientData, len(data))
	}
	cfg := newConfig(opts)
	name := cfg.resolveName("Bootstrap")
	return &Bootstrap{
		name:        name,
		data:        slices.Clone(data),
		stream:      cfg.resolveStream(),
		logger:      cfg.logger,
		original:    moments.NewStatistic(name+":OriginalData", data...),
		saveSamples: cfg.saveSamples,
		averages:    moments.NewStatistic(name + ":SampleAverages"),
	}, nil
}

func (b *Bootstrap) Name() string { return b.name }

// SampleSize returns the size of the original data, which is also the size of
// every bootstrap sample.
func (b *Bootstrap) SampleSize() int { return len(b.data) }

// Data returns a copy of the original data.
func (b *Bootstrap) Data() []float64 { return slices.Clone(b.data) }

// OriginalDataStatistic summarizes the original data.
func (b *Bootstrap) OriginalDataStatistic() *moments.Statistic { return b.original.Copy() }

// OriginalDataAverage returns the mean of the original data.
func (b *Bootstrap) OriginalDataAverage() float64 { return b.original.Average() }

// GenerateSamples draws numSamples bootstrap samples, applies est to each and
// returns the resulting Estimate. Saved samples from a previous run are
// discarded.
func (b *Bootstrap) GenerateSamples(numSamples int, est EstimatorFunc) (Estimate, error) {
	if est == nil {
		return Estimate{}, ErrNilEstimator
	}
	multi, err := Combine([]string{b.name}, est)
	if err != nil {
		return Estimate{}, err
	}
	out, err := b.BootstrapEstimates(numSamples, multi)
	if err != nil {
		return Estimate{}, err
	}
	return out[0], nil
}

// BootstrapEstimates draws numSamples bootstrap samples and applies a
// vector-valued estimator to each, returning one Estimate per dimension.
//
// A draw whose estimate has the wrong number of dimensions is skipped and
// counted by Skipped rather than failing the run; the returned estimates then
// hold fewer than numSamples values. The estimate of the original data must
// have the declared dimension.
func (b *Bootstrap) BootstrapEstimates(numSamples int, est MultiEstimator) ([]Estimate, error) {
	if numSamples <= 1 {
		return nil, fmt.Errorf("%w: %d", ErrTooFewBootstrapSamples, numSamples)
	}
	if est == nil {
		return nil, ErrNilEstimator
	}
	names := est.Names()
	if len(names) == 0 {
		return nil, ErrNoEstimatorNames
	}
	original := est.Estimate(slices.Clone(b.data))
	if len(original) != len(names) {
		return nil, fmt.Errorf("%w: original data gave %d values for %d names", ErrDimensionMismatch, len(original), len(names))
	}

	across, err := moments.NewMVStatistic(b.name+":AcrossBootstrap", names)
	if err != nil {
		return nil, err
	}
	b.clearSaved()
	b.averages.Reset()
	b.skipped = 0

	values := make([][]float64, len(names))
	for k := range values {
		values[k] = make([]float64, 0, numSamples)
	}
	sample := make([]float64, len(b.data))
	for i := 0; i < numSamples; i++ {
		if b.saveSamples {
			sample = make([]float64, len(b.data))
		}
		b.draw(sample)

		got := est.Estimate(sample)
		if err := across.Collect(got); err != nil {
			b.skipped++
			b.logger.Debug("Skipping bootstrap sample with mismatched estimate",
				zap.String("bootstrap", b.name),
				zap.Int("sample", i+1),
				zap.Error(err),
			)
			continue
		}
		for k, v := range got {
			values[k] = append(values[k], v)
		}

		stat := moments.NewStatistic(fmt.Sprintf("%s:Sample_%d", b.name, i+1), sample...)
		b.averages.Collect(stat.Average())
		if b.saveSamples {
			b.samples = append(b.samples, sample)
			b.sampleStats = append(b.sampleStats, stat)
		}
	}
	if b.skipped > 0 {
		b.logger.Warn("Bootstrap samples skipped",
			zap.String("bootstrap", b.name),
			zap.Int("skipped", b.skipped),
			zap.Int("requested", numSamples),
		)
	}

	b.across = across
	b.last = make([]Estimate, len(names))
	for k, n := range names {
		b.last[k] = Estimate{
			Name:             n,
			SampleSize:       len(b.data),
			OriginalEstimate: original[k],
			Estimates:        values[k],
		}
	}
	b.logger.Debug("Bootstrap run complete",
		zap.String("bootstrap", b.name),
		zap.Int("samples", numSamples),
		zap.Strings("dimensions", names),
	)
	return b.LastEstimates(), nil
}

func (b *Bootstrap) draw(dst []float64) {
	hi := len(b.data) - 1
	for j := range dst {
		dst[j] = b.data[b.stream.RandInt(0, hi)]
	}
}

func (b *Bootstrap) clearSaved() {
	b.samples = nil
	b.sampleStats = nil
}

// LastEstimates returns the estimates of the most recent run.
func (b *Bootstrap) LastEstimates() []Estimate {
	out := make([]Estimate, len(b.last))
	for i, e := range b.last {
		e.Estimates = slices.Clone(e.Estimates)
		out[i] = e
	}
	return out
}

// AcrossBootstrapStatistics summarizes the estimates of the most recent run,
// nil before the first run.
func (b *Bootstrap) AcrossBootstrapStatistics() *moments.MVStatistic {
	if b.across == nil {
		return nil
	}
	return b.across.Copy()
}

// SampleAverages summarizes the averages of the accepted samples of the most
// recent run.
func (b *Bootstrap) SampleAverages() *moments.Statistic { return b.averages.Copy() }

// Skipped returns how many draws of the most recent run were skipped.
func (b *Bootstrap) Skipped() int { return b.skipped }

func (b *Bootstrap) SaveSamples() bool { return b.saveSamples }

// SetSaveSamples controls whether the next run retains its samples.
func (b *Bootstrap) SetSaveSamples(save bool) { b.saveSamples = save }

// NumSavedSamples returns the number of samples retained by the last run.
func (b *Bootstrap) NumSavedSamples() int { return len(b.samples) }

// BootstrapSample returns a copy of saved sample i (0-based).
func (b *Bootstrap) BootstrapSample(i int) ([]float64, error) {
	if i < 0 || i >= len(b.samples) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrSampleIndexOutOfRange, i, len(b.samples))
	}
	return slices.Clone(b.samples[i]), nil
}

// BootstrapSampleStatistics returns snapshots of the statistics of each saved sample.
func (b *Bootstrap) BootstrapSampleStatistics() []*moments.Statistic {
	out := make([]*moments.Statistic, len(b.sampleStats))
	for i, s := range b.sampleStats {
		out[i] = s.Copy()
	}
	return out
}

// EmpiricalRV returns a random variate that draws from the original data
// using stream, or the bootstrap's own stream when stream is nil.
func (b *Bootstrap) EmpiricalRV(stream rng.Stream) (*rng.Empirical, error) {
	if stream == nil {
		stream = b.stream
	}
	return rng.NewEmpirical(b.data, stream)
}

// Stream returns the stream used to draw samples.
func (b *Bootstrap) Stream() rng.Stream { return b.stream }

// SetStream replaces the stream used to draw samples.
func (b *Bootstrap) SetStream(s rng.Stream) error {
	if s == nil {
		return ErrNilStream
	}
	b.stream = s
	return nil
}

func (b *Bootstrap) ResetStartStream() { b.stream.ResetStartStream() }

func (b *Bootstrap) ResetStartSubstream() { b.stream.ResetStartSubstream() }

func (b *Bootstrap) AdvanceToNextSubstream() { b.stream.AdvanceToNextSubstream() }

func (b *Bootstrap) SetAntithetic(flag bool) { b.stream.SetAntithetic(flag) }

func (b *Bootstrap) Antithetic() bool { return b.stream.Antithetic() }
