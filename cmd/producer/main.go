package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/simstat/internal/config"
	"github.com/sanspareilsmyn/simstat/internal/logging"
	"github.com/sanspareilsmyn/simstat/internal/message"
	"github.com/sanspareilsmyn/simstat/rng"
)

var (
	broker       = flag.String("broker", "localhost:9092", "Kafka broker address")
	topic        = flag.String("topic", "simulation-observations", "Topic to publish observations to")
	seed         = flag.Uint64("seed", rng.DefaultSeed, "Master seed of the simulation")
	arrivalRate  = flag.Float64("arrival-rate", 0.9, "Customer arrival rate")
	serviceRate  = flag.Float64("service-rate", 1.0, "Customer service rate")
	customers    = flag.Int("customers", 500, "Customers per replication")
	interval     = flag.Duration("interval", 100*time.Millisecond, "Delay between published observations")
	missingEvery = flag.Int("missing-every", 50, "Publish a null waitTime every n customers, 0 to disable")
)

func main() {
	flag.Parse()

	logger, err := logging.NewLogger(config.LogConfig{Level: "info", Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	writer := &kafka.Writer{
		Addr:     kafka.TCP(*broker),
		Topic:    *topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("Error closing kafka writer", zap.Error(err))
		}
	}()
	logger.Info("Starting simulation producer",
		zap.String("topic", *topic),
		zap.String("broker", *broker),
		zap.Uint64("seed", *seed),
		zap.Float64("utilization", *arrivalRate / *serviceRate),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		logger.Info("Shutdown signal received, stopping producer...")
		cancel()
	}()

	q := newQueue(*arrivalRate, *serviceRate, rng.NewProvider(*seed).StreamFor("queue"))
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	replication, served := 1, 0
	for {
		select {
		case <-ticker.C:
			if served == *customers {
				q.reset()
				replication++
				served = 0
				logger.Info("Starting replication", zap.Int("replication", replication))
			}
			c := q.next()
			served++

			b, err := message.Encode(observation(c, replication, served, *missingEvery, time.Now()))
			if err != nil {
				logger.Warn("Error encoding observation", zap.Error(err))
				continue
			}
			if err := writer.WriteMessages(ctx, kafka.Message{Value: b}); err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("Error writing observation", zap.Error(err))
				continue
			}
			logger.Debug("Produced observation", zap.ByteString("value", b))

		case <-ctx.Done():
			logger.Info("Producer loop stopped.")
			return
		}
	}
}

// observation builds the message for the n-th customer of a replication.
func observation(c customer, replication, n, missingEvery int, now time.Time) message.DynamicMessage {
	msg := message.DynamicMessage{
		message.FieldTimestamp:   now.UTC().Format(time.RFC3339Nano),
		message.FieldReplication: replication,
		"customer":               n,
		"waitTime":               c.WaitTime,
		"queueLength":            c.QueueLength,
	}
	if missingEvery > 0 && n%missingEvery == 0 {
		msg["waitTime"] = nil
	}
	return msg
}
