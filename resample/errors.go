package resample

import "errors"

var (
	ErrTooFewBootstrapSamples = errors.New("number of bootstrap samples must be > 1")
	ErrInsufficientData       = errors.New("resampling needs at least two observations")
	ErrNilEstimator           = errors.New("estimator must not be nil")
	ErrNoEstimatorNames       = errors.New("estimator must name at least one dimension")
	ErrDimensionMismatch      = errors.New("estimator output does not match its declared dimensions")
	ErrSampleIndexOutOfRange  = errors.New("bootstrap sample index out of range")
	ErrTooFewEstimates        = errors.New("at least two finite bootstrap estimates are required")
	ErrInvalidLevel           = errors.New("confidence level must be in (0,1)")
	ErrNoFactors              = errors.New("multi-bootstrap needs at least one factor")
	ErrRaggedData             = errors.New("all observations must have the same positive dimension")
	ErrNilStream              = errors.New("stream must not be nil")
	ErrInvalidColumn          = errors.New("column index out of range")
)
