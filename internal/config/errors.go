package config

import "errors"

var (
	ErrReadingConfigFile         = errors.New("failed to read config file")
	ErrUnmarshallingConfig       = errors.New("failed to unmarshal config")
	ErrEmptyKafkaBrokers         = errors.New("kafka brokers list cannot be empty")
	ErrEmptyKafkaTopic           = errors.New("kafka topic cannot be empty")
	ErrEmptyKafkaGroupID         = errors.New("kafka groupID cannot be empty")
	ErrInvalidPipelineWindowSize = errors.New("pipeline windowSize must be positive")
	ErrInvalidMaxRetained        = errors.New("pipeline maxRetained cannot be negative")
	ErrInvalidBootstrapSamples   = errors.New("bootstrap samples must be 0 (disabled) or > 1")
	ErrInvalidConfidenceLevel    = errors.New("confidence level must be in (0,1)")
	ErrUnknownEstimator          = errors.New("unknown estimator")
	ErrEmptyFeatureName          = errors.New("feature name cannot be empty")
	ErrDuplicateFeature          = errors.New("feature configured more than once")
	ErrUnknownMetricType         = errors.New("metricType must be numerical or integer")
	ErrInvalidHistogram          = errors.New("invalid histogram bins")
	ErrInvalidLimits             = errors.New("integer limits lower bound exceeds upper bound")
	ErrConfigFileMissing         = errors.New("config file not found")
)
