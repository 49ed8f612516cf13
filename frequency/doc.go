// Package frequency tabulates discrete observations.
//
// IntegerFrequency counts integer values and derives proportions and the
// empirical CDF; StateFrequency counts visits to named states and the
// transitions between them.
package frequency
