package pipeline

import "errors"

var (
	ErrInvalidKafkaConfig     = errors.New("invalid Kafka configuration provided")
	ErrKafkaFetchFailed       = errors.New("failed to fetch message from Kafka")
	ErrKafkaCommitFailed      = errors.New("failed to commit message offset to Kafka")
	ErrConsumerCreationFailed = errors.New("failed to create consumer")
	ErrCollectorCreation      = errors.New("failed to create collector")
	ErrConsumerRunFailed      = errors.New("consumer component failed")
	ErrCollectorRunFailed     = errors.New("collector component failed")
	ErrReporterRunFailed      = errors.New("reporter component failed")
)
