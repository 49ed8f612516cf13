// Package dist wraps the gonum distributions used for confidence intervals.
package dist

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// StudentTQuantile returns the p-quantile of a standard Student-t distribution
// with dof degrees of freedom. Returns NaN for dof <= 0 or p outside (0,1).
func StudentTQuantile(p, dof float64) float64 {
	if dof <= 0 || math.IsNaN(dof) || !(p > 0 && p < 1) {
		return math.NaN()
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
	return t.Quantile(p)
}

// NormalQuantile returns the p-quantile of the standard normal distribution.
func NormalQuantile(p float64) float64 {
	if !(p > 0 && p < 1) {
		return math.NaN()
	}
	return distuv.UnitNormal.Quantile(p)
}

// NormalCDF returns P(Z <= x) for a standard normal Z.
func NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// ValidLevel reports whether level lies strictly inside (0,1).
func ValidLevel(level float64) bool {
	return level > 0 && level < 1
}
