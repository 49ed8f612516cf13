package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sanspareilsmyn/simstat/resample"
)

const (
	defaultKafkaGroupID       = "simstat-default-group"
	defaultPipelineWindow     = 1 * time.Minute
	defaultMaxRetained        = 10000
	defaultBootstrapSamples   = 200
	defaultBootstrapLevel     = 0.95
	defaultBootstrapEstimator = "average"
	defaultBootstrapSeed      = 12345
	defaultJackKnifeEnabled   = true
	defaultJackKnifeEstimator = "average"
	defaultMetricsListenAddr  = ":2112"
	defaultMetricsPath        = "/metrics"
	defaultLogLevel           = "info"
	defaultLogFormat          = "console"
	defaultLogFileEnabled     = false
	defaultLogDirectory       = "log"
	defaultLogFilename        = "simstat.log"
	defaultLogMaxSizeMB       = 100
	defaultLogMaxBackups      = 3
	defaultLogMaxAgeDays      = 7
	defaultLogCompress        = false

	// Environment variable prefix
	envPrefix = "SIMSTAT"
)

// Metric types a feature can be collected as.
const (
	MetricTypeNumerical = "numerical"
	MetricTypeInteger   = "integer"
)

type Config struct {
	Kafka    KafkaConfig     `mapstructure:"kafka"`
	Pipeline PipelineConfig  `mapstructure:"pipeline"`
	Features []FeatureConfig `mapstructure:"features"`
	Metrics  MetricsConfig   `mapstructure:"metrics"`
	Log      LogConfig       `mapstructure:"log"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"groupID"`
}

type PipelineConfig struct {
	WindowSize  time.Duration   `mapstructure:"windowSize"`
	MaxRetained int             `mapstructure:"maxRetained"` // values kept per feature per window for resampling
	Bootstrap   BootstrapConfig `mapstructure:"bootstrap"`
	JackKnife   JackKnifeConfig `mapstructure:"jackknife"`
}

// BootstrapConfig controls the per-window bootstrap interval. Samples of 0
// disables it.
type BootstrapConfig struct {
	Samples   int     `mapstructure:"samples"`
	Level     float64 `mapstructure:"level"`
	Estimator string  `mapstructure:"estimator"`
	Seed      uint64  `mapstructure:"seed"`
}

type JackKnifeConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Estimator string `mapstructure:"estimator"`
}

type FeatureConfig struct {
	Name       string          `mapstructure:"name"`
	MetricType string          `mapstructure:"metricType"` // "numerical" or "integer"
	Histogram  HistogramConfig `mapstructure:"histogram"`
	Limits     LimitsConfig    `mapstructure:"limits"`
	Thresholds Thresholds      `mapstructure:"thresholds"`
}

// HistogramConfig describes the bins of a numerical feature. Explicit break
// points win over an equal-width range.
type HistogramConfig struct {
	BreakPoints []float64 `mapstructure:"breakPoints"`
	Lower       float64   `mapstructure:"lower"`
	Upper       float64   `mapstructure:"upper"`
	NumBins     int       `mapstructure:"numBins"`
}

// Enabled reports whether any bins are configured.
func (h HistogramConfig) Enabled() bool {
	return len(h.BreakPoints) > 0 || h.NumBins > 0
}

// LimitsConfig bounds the expected values of an integer feature.
type LimitsConfig struct {
	Lower *int `mapstructure:"lower"`
	Upper *int `mapstructure:"upper"`
}

type MetricsConfig struct {
	ListenAddr string `mapstructure:"listenAddr"`
	Path       string `mapstructure:"path"`
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"`
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`   // Compress rotated files?
}

type Thresholds struct {
	MissingRate *float64 `mapstructure:"missingRate"`
	MeanMin     *float64 `mapstructure:"meanMin"`
	MeanMax     *float64 `mapstructure:"meanMax"`
	StdDevMin   *float64 `mapstructure:"stdDevMin"`
	StdDevMax   *float64 `mapstructure:"stdDevMax"`
	CIWidthMax  *float64 `mapstructure:"ciWidthMax"`
}

// Load initializes viper, reads config, applies defaults, unmarshals, and validates.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	configureViper(v, configPath)

	// Set default values before reading config source .yaml
	setDefaults(v)

	// Read configuration from file (error if mandatory file is missing)
	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configureViper sets up viper instance for file and environment variables.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults applies default configuration values using Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("kafka.groupID", defaultKafkaGroupID)
	v.SetDefault("pipeline.windowSize", defaultPipelineWindow)
	v.SetDefault("pipeline.maxRetained", defaultMaxRetained)
	v.SetDefault("pipeline.bootstrap.samples", defaultBootstrapSamples)
	v.SetDefault("pipeline.bootstrap.level", defaultBootstrapLevel)
	v.SetDefault("pipeline.bootstrap.estimator", defaultBootstrapEstimator)
	v.SetDefault("pipeline.bootstrap.seed", defaultBootstrapSeed)
	v.SetDefault("pipeline.jackknife.enabled", defaultJackKnifeEnabled)
	v.SetDefault("pipeline.jackknife.estimator", defaultJackKnifeEstimator)
	v.SetDefault("metrics.listenAddr", defaultMetricsListenAddr)
	v.SetDefault("metrics.path", defaultMetricsPath)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
}

// readConfigFile attempts to read the configuration file specified in viper.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return ErrConfigFileMissing
		}
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if len(cfg.Kafka.Brokers) == 0 {
		return ErrEmptyKafkaBrokers
	}
	if cfg.Kafka.Topic == "" {
		return ErrEmptyKafkaTopic
	}
	if cfg.Kafka.GroupID == "" {
		return ErrEmptyKafkaGroupID
	}
	if err := validatePipeline(&cfg.Pipeline); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(cfg.Features))
	for i := range cfg.Features {
		f := &cfg.Features[i]
		if f.Name == "" {
			return fmt.Errorf("%w: feature #%d", ErrEmptyFeatureName, i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateFeature, f.Name)
		}
		seen[f.Name] = struct{}{}
		if err := validateFeature(f); err != nil {
			return fmt.Errorf("feature %q: %w", f.Name, err)
		}
	}
	return nil
}

func validatePipeline(p *PipelineConfig) error {
	if p.WindowSize <= 0 {
		return ErrInvalidPipelineWindowSize
	}
	if p.MaxRetained < 0 {
		return ErrInvalidMaxRetained
	}
	b := p.Bootstrap
	if b.Samples < 0 || b.Samples == 1 {
		return fmt.Errorf("%w: %d", ErrInvalidBootstrapSamples, b.Samples)
	}
	if !(b.Level > 0 && b.Level < 1) {
		return fmt.Errorf("%w: %v", ErrInvalidConfidenceLevel, b.Level)
	}
	if _, ok := resample.EstimatorByName(b.Estimator); !ok {
		return fmt.Errorf("%w: bootstrap %q", ErrUnknownEstimator, b.Estimator)
	}
	if p.JackKnife.Enabled {
		if _, ok := resample.EstimatorByName(p.JackKnife.Estimator); !ok {
			return fmt.Errorf("%w: jackknife %q", ErrUnknownEstimator, p.JackKnife.Estimator)
		}
	}
	return nil
}

func validateFeature(f *FeatureConfig) error {
	if f.MetricType == "" {
		f.MetricType = MetricTypeNumerical
	}
	switch f.MetricType {
	case MetricTypeNumerical:
		return validateHistogram(f.Histogram)
	case MetricTypeInteger:
		l := f.Limits
		if l.Lower != nil && l.Upper != nil && *l.Lower > *l.Upper {
			return fmt.Errorf("%w: [%d, %d]", ErrInvalidLimits, *l.Lower, *l.Upper)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMetricType, f.MetricType)
	}
}

func validateHistogram(h HistogramConfig) error {
	if len(h.BreakPoints) > 0 {
		for i, bp := range h.BreakPoints {
			if math.IsNaN(bp) || (i > 0 && bp <= h.BreakPoints[i-1]) {
				return fmt.Errorf("%w: %v", ErrInvalidHistogram, h.BreakPoints)
			}
		}
		return nil
	}
	if h.NumBins < 0 || (h.NumBins > 0 && h.Upper <= h.Lower) {
		return fmt.Errorf("%w: %d bins over [%v, %v]", ErrInvalidHistogram, h.NumBins, h.Lower, h.Upper)
	}
	return nil
}
