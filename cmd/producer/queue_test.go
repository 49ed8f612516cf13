package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanspareilsmyn/simstat/internal/message"
	"github.com/sanspareilsmyn/simstat/moments"
	"github.com/sanspareilsmyn/simstat/rng"
)

func TestQueueFirstCustomerDoesNotWait(t *testing.T) {
	q := newQueue(0.5, 1, rng.NewStream(1))
	c := q.next()
	assert.Equal(t, 0.0, c.WaitTime)
	assert.Equal(t, 0, c.QueueLength)
}

func TestQueueMeanWaitNearTheory(t *testing.T) {
	// M/M/1 with rho = 0.5: mean wait in queue is rho/(mu-lambda) = 1.
	q := newQueue(0.5, 1, rng.NewStream(2024))
	stat := moments.NewStatistic("wait")
	for range 200000 {
		stat.Collect(q.next().WaitTime)
	}
	assert.InDelta(t, 1.0, stat.Average(), 0.1)
	assert.GreaterOrEqual(t, stat.Min(), 0.0)
}

func TestQueueResetReplaysFreshSubstream(t *testing.T) {
	q := newQueue(0.9, 1, rng.NewStream(3))
	var first []float64
	for range 20 {
		first = append(first, q.next().WaitTime)
	}
	q.reset()
	var second []float64
	for range 20 {
		second = append(second, q.next().WaitTime)
	}
	assert.Equal(t, 0.0, second[0])
	assert.NotEqual(t, first, second)
}

func TestObservationMarksMissing(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	msg := observation(customer{WaitTime: 1.5, QueueLength: 2}, 3, 10, 5, now)
	assert.False(t, msg.HasNonNull("waitTime"))
	assert.Equal(t, now, msg.Timestamp(time.Time{}))

	b, err := message.Encode(observation(customer{WaitTime: 1.5, QueueLength: 2}, 3, 7, 5, now))
	require.NoError(t, err)
	parsed, err := message.ParseDynamicJSON(b)
	require.NoError(t, err)
	v, ok := parsed.GetFloat64("waitTime")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)
	n, ok := parsed.GetInt("queueLength")
	assert.True(t, ok)
	assert.Equal(t, 2, n)
}
