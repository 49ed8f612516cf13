package resample

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/simstat/moments"
	"github.com/sanspareilsmyn/simstat/rng"
)

// MVEstimator computes a named vector of estimates from a sample of
// multivariate observations.
type MVEstimator interface {
	Names() []string
	Estimate(rows [][]float64) []float64
}

// MVBootstrap resamples whole observations of a multivariate data set.
type MVBootstrap struct {
	name   string
	rows   [][]float64
	stream rng.Stream
	logger *zap.Logger

	original *moments.MVStatistic
	across   *moments.MVStatistic
	last     []Estimate
	skipped  int
}

// NewMVBootstrap copies rows, which must hold at least two observations of the
// same positive dimension.
func NewMVBootstrap(rows [][]float64, opts ...Option) (*MVBootstrap, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: have %d", ErrInsufficientData, len(rows))
	}
	dim := len(rows[0])
	if dim == 0 {
		return nil, ErrRaggedData
	}
	for i, r := range rows {
		if len(r) != dim {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrRaggedData, i, len(r), dim)
		}
	}
	cp := cloneRows(rows)
	cfg := newConfig(opts)
	name := cfg.resolveName("MVBootstrap")
	original, err := moments.NewMVStatistic(name+":OriginalData", columnNames(dim))
	if err != nil {
		return nil, err
	}
	if err := original.CollectAll(cp); err != nil {
		return nil, err
	}
	return &MVBootstrap{
		name:     name,
		rows:     cp,
		stream:   cfg.resolveStream(),
		logger:   cfg.logger,
		original: original,
	}, nil
}

func columnNames(dim int) []string {
	names := make([]string, dim)
	for i := range names {
		names[i] = fmt.Sprintf("x%d", i)
	}
	return names
}

func (b *MVBootstrap) Name() string { return b.name }

func (b *MVBootstrap) SampleSize() int { return len(b.rows) }

// Dimension returns the length of each observation.
func (b *MVBootstrap) Dimension() int { return len(b.rows[0]) }

// OriginalDataStatistics summarizes each column of the original data.
func (b *MVBootstrap) OriginalDataStatistics() *moments.MVStatistic { return b.original.Copy() }

// GenerateSamples draws numSamples resamples of the observations and returns
// one Estimate per estimator dimension. Draws whose estimate has the wrong
// dimension are skipped and counted by Skipped.
func (b *MVBootstrap) GenerateSamples(numSamples int, est MVEstimator) ([]Estimate, error) {
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
	original := est.Estimate(cloneRows(b.rows))
	if len(original) != len(names) {
		return nil, fmt.Errorf("%w: original data gave %d values for %d names", ErrDimensionMismatch, len(original), len(names))
	}
	across, err := moments.NewMVStatistic(b.name+":AcrossBootstrap", names)
	if err != nil {
		return nil, err
	}
	b.skipped = 0

	values := make([][]float64, len(names))
	dim := b.Dimension()
	buf := make([]float64, len(b.rows)*dim)
	sample := make([][]float64, len(b.rows))
	hi := len(b.rows) - 1
	for i := 0; i < numSamples; i++ {
		// the estimator sees copies so it cannot alter the stored rows
		for j := range sample {
			sample[j] = buf[j*dim : (j+1)*dim : (j+1)*dim]
			copy(sample[j], b.rows[b.stream.RandInt(0, hi)])
		}
		got := est.Estimate(sample)
		if err := across.Collect(got); err != nil {
			b.skipped++
			b.logger.Debug("Skipping multivariate sample with mismatched estimate",
				zap.String("bootstrap", b.name),
				zap.Int("sample", i+1),
				zap.Error(err),
			)
			continue
		}
		for k, v := range got {
			values[k] = append(values[k], v)
		}
	}
	if b.skipped > 0 {
		b.logger.Warn("Multivariate bootstrap samples skipped",
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
			SampleSize:       len(b.rows),
			OriginalEstimate: original[k],
			Estimates:        values[k],
		}
	}
	return b.LastEstimates(), nil
}

// LastEstimates returns the estimates of the most recent run.
func (b *MVBootstrap) LastEstimates() []Estimate {
	out := make([]Estimate, len(b.last))
	for i, e := range b.last {
		e.Estimates = slices.Clone(e.Estimates)
		out[i] = e
	}
	return out
}

func cloneRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}

// AcrossBootstrapStatistics summarizes the accepted estimates of the last run.
func (b *MVBootstrap) AcrossBootstrapStatistics() *moments.MVStatistic {
	if b.across == nil {
		return nil
	}
	return b.across.Copy()
}

func (b *MVBootstrap) Skipped() int { return b.skipped }

func (b *MVBootstrap) ResetStartStream() { b.stream.ResetStartStream() }

func (b *MVBootstrap) ResetStartSubstream() { b.stream.ResetStartSubstream() }

func (b *MVBootstrap) AdvanceToNextSubstream() { b.stream.AdvanceToNextSubstream() }

func (b *MVBootstrap) SetAntithetic(flag bool) { b.stream.SetAntithetic(flag) }

func (b *MVBootstrap) Antithetic() bool { return b.stream.Antithetic() }

type columnAverages struct {
	names []string
}

// ColumnAverages estimates the mean of each column. The number of names
// fixes the expected observation dimension.
func ColumnAverages(names ...string) MVEstimator {
	return columnAverages{names: slices.Clone(names)}
}

func (c columnAverages) Names() []string { return slices.Clone(c.names) }

func (c columnAverages) Estimate(rows [][]float64) []float64 {
	mv, err := moments.NewMVStatistic("", c.names)
	if err != nil {
		return nil
	}
	if err := mv.CollectAll(rows); err != nil {
		return nil
	}
	return mv.Averages()
}
