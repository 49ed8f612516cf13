// Package rng provides replayable uniform random number streams.
//
// Streams are split into substreams so that a run can be repeated exactly
// (ResetStartStream, ResetStartSubstream) or moved onto fresh, non-overlapping
// numbers (AdvanceToNextSubstream). Replay is what makes common random
// numbers possible:
//
//	s := rng.NewStream(42)
//	a := s.RandInt(0, 9)
//	s.ResetStartSubstream()
//	b := s.RandInt(0, 9) // a == b
//
// A Provider hands out independent streams from one master seed, either in
// sequence (NextStream) or keyed by name (StreamFor).
package rng
