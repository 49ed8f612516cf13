package histogram

import "errors"

var (
	ErrNoBreakPoints       = errors.New("at least one break point is required")
	ErrBreakPointsOrder    = errors.New("break points must be strictly increasing")
	ErrBreakPointNaN       = errors.New("break points must not be NaN")
	ErrInvalidNumBins      = errors.New("number of bins must be positive")
	ErrInvalidWidth        = errors.New("bin width must be positive and finite")
	ErrInvalidRange        = errors.New("upper limit must be greater than lower limit")
	ErrBinNumberOutOfRange = errors.New("bin number out of range")
	ErrNoBin               = errors.New("value does not fall in any bin")
)
