package main

import (
	"math"

	"github.com/sanspareilsmyn/simstat/rng"
)

// queue is a single-server FIFO queue with exponential interarrival and
// service times. Each call to next simulates one more customer.
type queue struct {
	arrivalRate float64
	serviceRate float64
	stream      rng.Stream

	served     int
	clock      float64
	wait       float64
	lastServe  float64
	departures []float64 // departure times of customers still in the system
}

// customer is what one simulated customer reports.
type customer struct {
	WaitTime    float64
	QueueLength int // customers in the system found on arrival
}

func newQueue(arrivalRate, serviceRate float64, stream rng.Stream) *queue {
	return &queue{arrivalRate: arrivalRate, serviceRate: serviceRate, stream: stream}
}

func (q *queue) exponential(rate float64) float64 {
	return -math.Log(1-q.stream.RandU01()) / rate
}

func (q *queue) next() customer {
	if q.served > 0 {
		interarrival := q.exponential(q.arrivalRate)
		// Lindley recursion
		q.wait = math.Max(0, q.wait+q.lastServe-interarrival)
		q.clock += interarrival
	}
	q.lastServe = q.exponential(q.serviceRate)

	inSystem := q.departures[:0]
	for _, d := range q.departures {
		if d > q.clock {
			inSystem = append(inSystem, d)
		}
	}
	q.departures = append(inSystem, q.clock+q.wait+q.lastServe)
	q.served++

	return customer{WaitTime: q.wait, QueueLength: len(inSystem)}
}

// reset restarts the queue empty, on the stream's next substream.
func (q *queue) reset() {
	q.stream.AdvanceToNextSubstream()
	q.served = 0
	q.clock, q.wait, q.lastServe = 0, 0, 0
	q.departures = q.departures[:0]
}
