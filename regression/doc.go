// Package regression accumulates paired observations for covariance,
// correlation and simple linear regression in a single pass.
package regression
