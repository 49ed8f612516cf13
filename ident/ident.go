// Package ident provides caller-owned sources of default names for
// accumulators and resamplers.
package ident

import (
	"strconv"
	"sync/atomic"
)

// Source hands out names for objects that were not given one explicitly.
type Source interface {
	Next(prefix string) string
}

// Sequence numbers names with a single counter shared across prefixes.
// The zero value is ready to use and safe for concurrent use.
type Sequence struct {
	n atomic.Int64
}

// NewSequence returns a Sequence starting at 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns prefix followed by an underscore and the next number.
func (s *Sequence) Next(prefix string) string {
	return prefix + "_" + strconv.FormatInt(s.n.Add(1), 10)
}

// Count returns how many names have been issued.
func (s *Sequence) Count() int64 {
	return s.n.Load()
}

// Name returns name when it is non-empty, otherwise the next name from src.
// A nil src yields prefix unchanged.
func Name(name string, src Source, prefix string) string {
	if name != "" {
		return name
	}
	if src == nil {
		return prefix
	}
	return src.Next(prefix)
}
