package rng

import (
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Provider hands out streams derived from a single master seed. Streams
// obtained from the same provider configuration are reproducible across runs.
type Provider struct {
	seed uint64
	next atomic.Uint64
}

// NewProvider returns a provider rooted at seed.
func NewProvider(seed uint64) *Provider {
	return &Provider{seed: seed}
}

// Seed returns the master seed.
func (p *Provider) Seed() uint64 { return p.seed }

// NextStream returns a new stream whose seed is the i-th derivative of the
// master seed, i counting calls to NextStream.
func (p *Provider) NextStream() *PCGStream {
	i := p.next.Add(1)
	return NewStream(mix(p.seed + i*substreamStride))
}

// StreamFor returns the stream associated with key. The same key always yields
// a stream with the same seed, which keeps per-name sequences stable when the
// set of names changes.
func (p *Provider) StreamFor(key string) *PCGStream {
	return NewStream(mix(p.seed ^ xxhash.Sum64String(key)))
}

// Issued returns how many streams NextStream has produced.
func (p *Provider) Issued() uint64 {
	return p.next.Load()
}

// splitmix64 finalizer
func mix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
