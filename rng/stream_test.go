package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draw(s Stream, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s.RandU01()
	}
	return out
}

func TestStreamReplay(t *testing.T) {
	assert := assert.New(t)

	s := NewStream(7)
	first := draw(s, 10)

	s.ResetStartSubstream()
	assert.Equal(first, draw(s, 10))

	s.AdvanceToNextSubstream()
	assert.Equal(uint64(1), s.Substream())
	second := draw(s, 10)
	assert.NotEqual(first, second)

	s.ResetStartSubstream()
	assert.Equal(second, draw(s, 10))

	s.ResetStartStream()
	assert.Equal(uint64(0), s.Substream())
	assert.Equal(first, draw(s, 10))
}

func TestStreamSameSeedSameValues(t *testing.T) {
	assert.Equal(t, draw(NewStream(99), 20), draw(NewStream(99), 20))
}

func TestStreamAntithetic(t *testing.T) {
	assert := assert.New(t)

	s := NewStream(3)
	plain := draw(s, 10)

	s.ResetStartSubstream()
	s.SetAntithetic(true)
	assert.True(s.Antithetic())
	anti := draw(s, 10)
	for i := range plain {
		assert.InDelta(1-plain[i], anti[i], 1e-15)
	}
}

func TestRandIntRange(t *testing.T) {
	assert := assert.New(t)

	s := NewStream(11)
	seen := make(map[int]int)
	for i := 0; i < 5000; i++ {
		v := s.RandInt(2, 6)
		assert.GreaterOrEqual(v, 2)
		assert.LessOrEqual(v, 6)
		seen[v]++
	}
	assert.Len(seen, 5)

	s.SetAntithetic(true)
	for i := 0; i < 1000; i++ {
		v := s.RandInt(0, 3)
		assert.GreaterOrEqual(v, 0)
		assert.LessOrEqual(v, 3)
	}

	assert.Equal(4, s.RandInt(4, 4))
	assert.Panics(func() { s.RandInt(5, 4) })
}

func TestProvider(t *testing.T) {
	assert := assert.New(t)

	p := NewProvider(1)
	a := p.NextStream()
	b := p.NextStream()
	assert.NotEqual(a.Seed(), b.Seed())
	assert.Equal(uint64(2), p.Issued())

	q := NewProvider(1)
	assert.Equal(a.Seed(), q.NextStream().Seed())

	assert.Equal(p.StreamFor("wait_time").Seed(), q.StreamFor("wait_time").Seed())
	assert.NotEqual(p.StreamFor("wait_time").Seed(), p.StreamFor("queue_length").Seed())
}

func TestEmpirical(t *testing.T) {
	assert := assert.New(t)

	_, err := NewEmpirical(nil, NewStream(1))
	assert.ErrorIs(err, ErrEmptyData)
	_, err = NewEmpirical([]float64{1}, nil)
	assert.ErrorIs(err, ErrNilStream)

	data := []float64{1, 2, 3}
	e, err := NewEmpirical(data, NewStream(5))
	require.NoError(t, err)
	data[0] = 100 // copy is owned by the variate

	for _, v := range e.Sample(200) {
		assert.Contains([]float64{1, 2, 3}, v)
	}

	e.Stream().ResetStartStream()
	x := e.Sample(5)
	e.Stream().ResetStartStream()
	assert.Equal(x, e.Sample(5))
	assert.Equal([]float64{1, 2, 3}, e.Data())
}
