package moments

import "errors"

var (
	ErrInvalidLevel      = errors.New("confidence level must be in (0,1)")
	ErrInsufficientData  = errors.New("not enough observations")
	ErrInvalidHalfWidth  = errors.New("desired half-width must be positive")
	ErrDimensionMismatch = errors.New("observation dimension does not match statistic dimension")
	ErrNoDimensions      = errors.New("at least one dimension name is required")
	ErrNilTimeSource     = errors.New("time source must not be nil")
	ErrTimeReversed      = errors.New("time source moved backwards")
)
