package resample

import (
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/simstat/ident"
	"github.com/sanspareilsmyn/simstat/rng"
)

const defaultLevel = 0.95

// Option configures the resamplers in this package. Options that do not apply
// to a given resampler are ignored.
type Option func(*config)

type config struct {
	name        string
	nameSrc     ident.Source
	stream      rng.Stream
	provider    *rng.Provider
	saveSamples bool
	logger      *zap.Logger
	level       float64
}

func newConfig(opts []Option) config {
	c := config{
		logger: zap.NewNop(),
		level:  defaultLevel,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// resolveStream picks the explicit stream, then the provider, then a stream
// seeded with rng.DefaultSeed.
func (c config) resolveStream() rng.Stream {
	switch {
	case c.stream != nil:
		return c.stream
	case c.provider != nil:
		return c.provider.NextStream()
	default:
		return rng.NewStream(rng.DefaultSeed)
	}
}

func (c config) resolveName(prefix string) string {
	return ident.Name(c.name, c.nameSrc, prefix)
}

// WithName names the resampler and its estimates.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithNameSource draws a default name from src when WithName is not given.
func WithNameSource(src ident.Source) Option {
	return func(c *config) { c.nameSrc = src }
}

// WithStream sets the random number stream used to draw resamples.
func WithStream(s rng.Stream) Option {
	return func(c *config) { c.stream = s }
}

// WithStreamProvider supplies streams for resamplers that were not given one,
// and for the per-factor bootstraps of a MultiBootstrap.
func WithStreamProvider(p *rng.Provider) Option {
	return func(c *config) { c.provider = p }
}

// WithSaveSamples retains every drawn resample until the next run.
func WithSaveSamples(save bool) Option {
	return func(c *config) { c.saveSamples = save }
}

// WithLogger reports skipped draws and unknown factors.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLevel sets the default confidence level of a JackKnifeEstimator.
func WithLevel(level float64) Option {
	return func(c *config) { c.level = level }
}
