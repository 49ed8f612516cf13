package pipeline

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/simstat/internal/config"
	"github.com/sanspareilsmyn/simstat/internal/message"
)

// Collector assigns observations to tumbling windows by their timestamp and
// emits a WindowSummary per feature when a window closes.
type Collector struct {
	config   config.PipelineConfig
	features []featureSpec
	input    <-chan message.DynamicMessage
	output   chan<- WindowSummary
	analyzer *analyzer
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	windows map[time.Time]*windowState // keyed by window end
}

// NewCollector creates a Collector for the configured features.
func NewCollector(cfg config.PipelineConfig, features []config.FeatureConfig, input <-chan message.DynamicMessage, output chan<- WindowSummary, logger *zap.Logger) (*Collector, error) {
	if cfg.WindowSize <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrCollectorCreation, config.ErrInvalidPipelineWindowSize)
	}
	specs := make([]featureSpec, 0, len(features))
	for _, f := range features {
		spec, err := newFeatureSpec(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCollectorCreation, err)
		}
		specs = append(specs, spec)
	}
	an, err := newAnalyzer(cfg, logger.Named("analyzer"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCollectorCreation, err)
	}
	c := &Collector{
		config:   cfg,
		features: specs,
		input:    input,
		output:   output,
		analyzer: an,
		logger:   logger,
		now:      time.Now,
		windows:  make(map[time.Time]*windowState),
	}
	logger.Info("Collector initialized",
		zap.Duration("window_size", cfg.WindowSize),
		zap.Int("configured_features", len(specs)),
		zap.Int("bootstrap_samples", cfg.Bootstrap.Samples),
		zap.Bool("jackknife_enabled", cfg.JackKnife.Enabled),
	)
	return c, nil
}

// Run consumes observations until the input closes or ctx is done, closing
// windows as the wall clock passes their end. Open windows are flushed on exit.
func (c *Collector) Run(ctx context.Context) error {
	sugar := c.logger.Sugar()
	sugar.Info("Starting collector loop...")
	defer sugar.Info("Collector loop stopped.")

	ticker := time.NewTicker(c.config.WindowSize)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.input:
			if !ok {
				sugar.Info("Collector input channel closed. Flushing open windows...")
				c.flushAll()
				return nil
			}
			c.processMessage(msg)

		case tick := <-ticker.C:
			sugar.Debugw("Ticker fired, flushing completed windows", zap.Time("tick_time", tick))
			c.flushWindows(tick)

		case <-ctx.Done():
			sugar.Info("Context cancelled, stopping collector. Flushing open windows...")
			c.flushAll()
			return ctx.Err()
		}
	}
}

// processMessage records every configured feature of msg in the window that
// contains the message timestamp.
func (c *Collector) processMessage(msg message.DynamicMessage) {
	ts := msg.Timestamp(c.now())
	size := c.config.WindowSize
	windowEnd := ts.Truncate(size).Add(size)

	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.windows[windowEnd]
	if !ok {
		w = newWindowState(windowEnd.Add(-size), windowEnd)
		c.windows[windowEnd] = w
		c.logger.Debug("Created new state for window", zap.Time("window_end", windowEnd))
	}
	for _, spec := range c.features {
		fw, ok := w.features[spec.cfg.Name]
		if !ok {
			fw = spec.newWindow()
			w.features[spec.cfg.Name] = fw
		}
		if !spec.observe(fw, msg, c.config.MaxRetained) {
			c.logger.Warn("Value could not be processed for feature",
				zap.String("feature_name", spec.cfg.Name),
				zap.String("metric_type", spec.cfg.MetricType),
				zap.String("value_snippet", msg.GetFieldSnippet(spec.cfg.Name, 50)),
				zap.Time("window_end", windowEnd),
			)
		}
	}
}

// flushWindows summarizes and emits every window ending at or before cutoff,
// oldest first.
func (c *Collector) flushWindows(cutoff time.Time) {
	for _, w := range c.takeWindows(func(end time.Time) bool { return !end.After(cutoff) }) {
		c.emit(w)
	}
}

func (c *Collector) flushAll() {
	for _, w := range c.takeWindows(func(time.Time) bool { return true }) {
		c.emit(w)
	}
}

// takeWindows removes the selected windows from the state, sorted by end.
func (c *Collector) takeWindows(selected func(end time.Time) bool) []*windowState {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []*windowState
	for end, w := range c.windows {
		if selected(end) {
			out = append(out, w)
			delete(c.windows, end)
		}
	}
	slices.SortFunc(out, func(a, b *windowState) int { return a.end.Compare(b.end) })
	return out
}

func (c *Collector) emit(w *windowState) {
	c.logger.Debug("Flushing window",
		zap.Time("window_end", w.end),
		zap.Int("feature_count", len(w.features)),
	)
	for _, spec := range c.features {
		fw, ok := w.features[spec.cfg.Name]
		if !ok || fw.count == 0 {
			continue
		}
		summary := c.analyzer.summarize(spec, fw, w.start, w.end)
		select {
		case c.output <- summary:
		default:
			c.logger.Warn("Collector output channel full, dropping summary",
				zap.String("feature_name", spec.cfg.Name),
				zap.Time("window_end", w.end),
			)
		}
	}
}
