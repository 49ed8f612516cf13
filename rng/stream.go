package rng

import (
	"math"
	"math/rand/v2"
)

// DefaultSeed seeds streams that were not given a seed or provider.
const DefaultSeed uint64 = 12345

// golden ratio increment used to spread substream indices over the PCG sequence space.
const substreamStride uint64 = 0x9E3779B97F4A7C15

// Controller is the replay surface of a random number stream.
type Controller interface {
	// ResetStartStream positions the stream at the start of its first substream.
	ResetStartStream()
	// ResetStartSubstream positions the stream at the start of its current substream.
	ResetStartSubstream()
	// AdvanceToNextSubstream moves to the start of the following substream.
	AdvanceToNextSubstream()
	// SetAntithetic toggles antithetic variates (u becomes 1-u).
	SetAntithetic(flag bool)
	Antithetic() bool
}

// Stream is a controllable source of uniform random numbers.
type Stream interface {
	Controller
	// RandU01 returns a uniform value on [0,1), or (0,1] when antithetic.
	RandU01() float64
	// RandInt returns a uniform integer in the inclusive range [low, high].
	RandInt(low, high int) int
}

// PCGStream is a Stream backed by a PCG generator. Each substream is an
// independent PCG sequence selected by (seed, substream index), so every reset
// replays exactly the same values.
//
// A PCGStream is not safe for concurrent use.
type PCGStream struct {
	seed       uint64
	substream  uint64
	antithetic bool

	src *rand.PCG
	r   *rand.Rand
}

// NewStream returns a stream positioned at the start of substream 0.
func NewStream(seed uint64) *PCGStream {
	s := &PCGStream{seed: seed}
	s.src = rand.NewPCG(seed, substreamKey(0))
	s.r = rand.New(s.src)
	return s
}

func substreamKey(i uint64) uint64 {
	return (i+1)*substreamStride ^ 0xda3e39cb94b95bdb
}

// Seed returns the seed the stream was created with.
func (s *PCGStream) Seed() uint64 { return s.seed }

// Substream returns the index of the current substream.
func (s *PCGStream) Substream() uint64 { return s.substream }

func (s *PCGStream) reseed() {
	s.src.Seed(s.seed, substreamKey(s.substream))
}

func (s *PCGStream) ResetStartStream() {
	s.substream = 0
	s.reseed()
}

func (s *PCGStream) ResetStartSubstream() {
	s.reseed()
}

func (s *PCGStream) AdvanceToNextSubstream() {
	s.substream++
	s.reseed()
}

func (s *PCGStream) SetAntithetic(flag bool) { s.antithetic = flag }

func (s *PCGStream) Antithetic() bool { return s.antithetic }

func (s *PCGStream) RandU01() float64 {
	u := s.r.Float64()
	if s.antithetic {
		return 1 - u
	}
	return u
}

// RandInt panics if low > high, like the math/rand integer helpers.
func (s *PCGStream) RandInt(low, high int) int {
	if low > high {
		panic("rng: RandInt called with low > high")
	}
	if low == high {
		return low
	}
	span := float64(high) - float64(low) + 1
	v := low + int(math.Floor(s.RandU01()*span))
	if v > high {
		// antithetic draws can return exactly 1
		v = high
	}
	return v
}
