package regression

import "errors"

// ErrLengthMismatch is returned when paired slices differ in length.
var ErrLengthMismatch = errors.New("x and y must have the same length")
