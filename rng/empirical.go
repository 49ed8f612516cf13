package rng

import "slices"

// Empirical draws values uniformly, with replacement, from a fixed data set.
type Empirical struct {
	data   []float64
	stream Stream
}

// NewEmpirical copies data and draws from it using stream.
func NewEmpirical(data []float64, stream Stream) (*Empirical, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	if stream == nil {
		return nil, ErrNilStream
	}
	return &Empirical{data: slices.Clone(data), stream: stream}, nil
}

// Value returns one draw.
func (e *Empirical) Value() float64 {
	return e.data[e.stream.RandInt(0, len(e.data)-1)]
}

// Sample returns n draws.
func (e *Empirical) Sample(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = e.Value()
	}
	return out
}

// Stream returns the underlying stream, so callers can control replay.
func (e *Empirical) Stream() Stream { return e.stream }

// Data returns a copy of the values drawn from.
func (e *Empirical) Data() []float64 { return slices.Clone(e.data) }
