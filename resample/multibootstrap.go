package resample

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/simstat/rng"
)

// MultiBootstrap resamples several named factors independently, each with its
// own Bootstrap and its own stream.
type MultiBootstrap struct {
	name       string
	names      []string
	bootstraps map[string]*Bootstrap
	provider   *rng.Provider
	logger     *zap.Logger
	skipped    int
}

// NewMultiBootstrap creates one Bootstrap per entry of data. Each factor's
// stream is keyed by its name on the configured provider, so adding a factor
// does not disturb the sequences of the others.
func NewMultiBootstrap(data map[string][]float64, opts ...Option) (*MultiBootstrap, error) {
	if len(data) == 0 {
		return nil, ErrNoFactors
	}
	cfg := newConfig(opts)
	provider := cfg.provider
	if provider == nil {
		provider = rng.NewProvider(rng.DefaultSeed)
	}
	mb := &MultiBootstrap{
		name:       cfg.resolveName("MultiBootstrap"),
		names:      lo.Keys(data),
		bootstraps: make(map[string]*Bootstrap, len(data)),
		provider:   provider,
		logger:     cfg.logger,
	}
	slices.Sort(mb.names)
	for _, n := range mb.names {
		b, err := NewBootstrap(data[n],
			WithName(n),
			WithStream(provider.StreamFor(n)),
			WithSaveSamples(cfg.saveSamples),
			WithLogger(cfg.logger.Named(n)),
		)
		if err != nil {
			return nil, fmt.Errorf("factor %q: %w", n, err)
		}
		mb.bootstraps[n] = b
	}
	return mb, nil
}

func (mb *MultiBootstrap) Name() string { return mb.name }

// Names returns the factor names, sorted.
func (mb *MultiBootstrap) Names() []string { return slices.Clone(mb.names) }

// Bootstrap returns the bootstrap of a factor.
func (mb *MultiBootstrap) Bootstrap(name string) (*Bootstrap, bool) {
	b, ok := mb.bootstraps[name]
	return b, ok
}

// GenerateSamples resamples each requested factor the requested number of
// times. Requested names that are not factors are skipped and counted by
// Skipped. Every count is validated before any factor is resampled.
func (mb *MultiBootstrap) GenerateSamples(numSamples map[string]int, est EstimatorFunc) (map[string]Estimate, error) {
	if est == nil {
		return nil, ErrNilEstimator
	}
	for n, b := range numSamples {
		if b <= 1 {
			return nil, fmt.Errorf("%w: factor %q requested %d", ErrTooFewBootstrapSamples, n, b)
		}
	}
	mb.skipped = 0
	requested := lo.Keys(numSamples)
	slices.Sort(requested)

	out := make(map[string]Estimate, len(requested))
	for _, n := range requested {
		b, ok := mb.bootstraps[n]
		if !ok {
			mb.skipped++
			mb.logger.Warn("Skipping unknown bootstrap factor",
				zap.String("multiBootstrap", mb.name),
				zap.String("factor", n),
			)
			continue
		}
		e, err := b.GenerateSamples(numSamples[n], est)
		if err != nil {
			return nil, fmt.Errorf("factor %q: %w", n, err)
		}
		out[n] = e
	}
	return out, nil
}

// GenerateSamplesAll resamples every factor numSamples times.
func (mb *MultiBootstrap) GenerateSamplesAll(numSamples int, est EstimatorFunc) (map[string]Estimate, error) {
	req := lo.SliceToMap(mb.names, func(n string) (string, int) { return n, numSamples })
	return mb.GenerateSamples(req, est)
}

// Skipped returns how many requested names of the last run were not factors.
func (mb *MultiBootstrap) Skipped() int { return mb.skipped }

// LastEstimates returns the estimates of the last run of every factor that has
// been resampled at least once.
func (mb *MultiBootstrap) LastEstimates() map[string]Estimate {
	out := make(map[string]Estimate)
	for _, n := range mb.names {
		if last := mb.bootstraps[n].LastEstimates(); len(last) > 0 {
			out[n] = last[0]
		}
	}
	return out
}

// EmpiricalRVs returns one empirical random variate per factor. With useCRN
// every variate shares a single new stream; otherwise each gets its own.
func (mb *MultiBootstrap) EmpiricalRVs(useCRN bool) (map[string]*rng.Empirical, error) {
	var shared rng.Stream
	if useCRN {
		shared = mb.provider.NextStream()
	}
	out := make(map[string]*rng.Empirical, len(mb.names))
	for _, n := range mb.names {
		s := shared
		if s == nil {
			s = mb.provider.NextStream()
		}
		e, err := mb.bootstraps[n].EmpiricalRV(s)
		if err != nil {
			return nil, fmt.Errorf("factor %q: %w", n, err)
		}
		out[n] = e
	}
	return out, nil
}

func (mb *MultiBootstrap) each(f func(*Bootstrap)) {
	for _, n := range mb.names {
		f(mb.bootstraps[n])
	}
}

func (mb *MultiBootstrap) all(f func(*Bootstrap) bool) bool {
	return lo.EveryBy(mb.names, func(n string) bool { return f(mb.bootstraps[n]) })
}

func (mb *MultiBootstrap) ResetStartStream() { mb.each((*Bootstrap).ResetStartStream) }

func (mb *MultiBootstrap) ResetStartSubstream() { mb.each((*Bootstrap).ResetStartSubstream) }

func (mb *MultiBootstrap) AdvanceToNextSubstream() { mb.each((*Bootstrap).AdvanceToNextSubstream) }

// SetAntithetic sets the antithetic option on every factor's stream.
func (mb *MultiBootstrap) SetAntithetic(flag bool) {
	mb.each(func(b *Bootstrap) { b.SetAntithetic(flag) })
}

// Antithetic reports true only when every factor's stream is antithetic.
func (mb *MultiBootstrap) Antithetic() bool { return mb.all((*Bootstrap).Antithetic) }

// SetSaveSamples sets sample retention on every factor.
func (mb *MultiBootstrap) SetSaveSamples(save bool) {
	mb.each(func(b *Bootstrap) { b.SetSaveSamples(save) })
}

// SaveSamples reports true only when every factor retains its samples.
func (mb *MultiBootstrap) SaveSamples() bool { return mb.all((*Bootstrap).SaveSamples) }
