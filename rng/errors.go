package rng

import "errors"

var (
	ErrEmptyData = errors.New("empirical data must not be empty")
	ErrNilStream = errors.New("stream must not be nil")
)
