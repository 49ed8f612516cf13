package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/simstat/internal/config"
	"github.com/sanspareilsmyn/simstat/internal/message"
)

const channelBufferSize = 100

// Pipeline runs the stages consumer -> parser -> collector -> reporter.
type Pipeline struct {
	consumer  *Consumer
	collector *Collector
	reporter  *Reporter
	logger    *zap.Logger

	rawMessages    chan []byte
	parsedMessages chan message.DynamicMessage
	summaries      chan WindowSummary
}

// New wires a pipeline for cfg. Metrics are registered with reg.
func New(cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*Pipeline, error) {
	initLogger := logger.Named("pipeline.init")

	rawMessages := make(chan []byte, channelBufferSize)
	consumer, err := NewConsumer(cfg.Kafka, rawMessages, logger.Named("consumer"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConsumerCreationFailed, err)
	}

	p, err := newPipeline(cfg, consumer, rawMessages, logger, reg)
	if err != nil {
		return nil, err
	}
	initLogger.Info("Pipeline instance created successfully",
		zap.String("topic", cfg.Kafka.Topic),
		zap.Int("features", len(cfg.Features)),
	)
	return p, nil
}

func newPipeline(cfg *config.Config, consumer *Consumer, rawMessages chan []byte, logger *zap.Logger, reg prometheus.Registerer) (*Pipeline, error) {
	parsedMessages := make(chan message.DynamicMessage, channelBufferSize)
	summaries := make(chan WindowSummary, channelBufferSize)

	collector, err := NewCollector(cfg.Pipeline, cfg.Features, parsedMessages, summaries, logger.Named("collector"))
	if err != nil {
		return nil, err
	}
	reporter := NewReporter(cfg.Features, summaries, reg, logger.Named("reporter"))

	return &Pipeline{
		consumer:       consumer,
		collector:      collector,
		reporter:       reporter,
		logger:         logger.Named("pipeline"),
		rawMessages:    rawMessages,
		parsedMessages: parsedMessages,
		summaries:      summaries,
	}, nil
}

// Run starts every stage and blocks until ctx is cancelled or a stage fails.
// Each stage closes its output channel on exit so the next one drains.
func (p *Pipeline) Run(ctx context.Context) error {
	sugar := p.logger.Sugar()
	var wg sync.WaitGroup
	pipelineErr := make(chan error, 4)

	sugar.Info("Pipeline Run: Starting components...")

	wg.Add(4)
	go p.runConsumer(ctx, &wg, pipelineErr)
	go p.runParser(ctx, &wg)
	go p.runCollector(ctx, &wg, pipelineErr)
	go p.runReporter(ctx, &wg, pipelineErr)

	var firstErr error
	select {
	case <-ctx.Done():
		sugar.Info("Pipeline Run: Context cancelled. Waiting for components to finish...")
		firstErr = ctx.Err()
	case err := <-pipelineErr:
		sugar.Errorw("Pipeline Run: Received error from a component, initiating shutdown...", zap.Error(err))
		firstErr = err
	}

	wg.Wait()
	sugar.Info("Pipeline Run: All components finished.")

	if firstErr != nil && !errors.Is(firstErr, context.Canceled) {
		return firstErr
	}
	return nil
}

func (p *Pipeline) runConsumer(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()
	defer close(p.rawMessages)

	if err := p.consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Consumer component exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrConsumerRunFailed, err)
	}
}

func (p *Pipeline) runParser(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer close(p.parsedMessages)
	parse(ctx, p.rawMessages, p.parsedMessages, p.logger.Named("parser"))
}

// parse decodes raw records into messages until in closes or ctx is done.
// Records that fail to decode are logged and skipped.
func parse(ctx context.Context, in <-chan []byte, out chan<- message.DynamicMessage, logger *zap.Logger) {
	sugar := logger.Sugar()
	for {
		select {
		case raw, ok := <-in:
			if !ok {
				sugar.Debug("Parser finished (raw message channel closed).")
				return
			}
			msg, err := message.ParseDynamicJSON(raw)
			if err != nil {
				sugar.Warnw("Failed to parse message, skipping", zap.Error(err))
				continue
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (p *Pipeline) runCollector(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()
	defer close(p.summaries)

	if err := p.collector.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Collector component exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrCollectorRunFailed, err)
	}
}

func (p *Pipeline) runReporter(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()

	if err := p.reporter.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Reporter component exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrReporterRunFailed, err)
	}
}
