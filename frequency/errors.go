package frequency

import "errors"

var (
	ErrInvalidLimits  = errors.New("lower limit must not exceed upper limit")
	ErrNoStates       = errors.New("at least one state is required")
	ErrDuplicateState = errors.New("state names must be unique")
	ErrUnknownState   = errors.New("unknown state")
)
