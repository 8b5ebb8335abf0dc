// Package matprod tolerance-based verification for floating-point comparisons
package matprod

import (
	"fmt"
	"math"
)

// ToleranceConfig defines tolerance parameters for floating-point comparison
type ToleranceConfig struct {
	// AbsTol is the absolute tolerance for values near zero
	AbsTol float64

	// RelTol is the relative tolerance as a fraction of the larger value
	RelTol float64
}

// DefaultTolerance accepts a relative error below 1e-9, enough for any
// reordering of an n-term float64 sum at the sizes this package runs.
func DefaultTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol: 1e-12,
		RelTol: 1e-9,
	}
}

// NearEqual checks if two float64 values are equal within tolerance
func NearEqual(a, b float64, tol ToleranceConfig) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}

	// Check if exactly equal (handles ±0 and same-signed Inf)
	if a == b {
		return true
	}

	// Unequal infinities never match; the relative bound would be Inf
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}

	diff := math.Abs(a - b)
	if diff <= tol.AbsTol {
		return true
	}

	larger := math.Max(math.Abs(a), math.Abs(b))
	return diff <= larger*tol.RelTol
}

// VerificationResult summarizes a comparison of two arrays
type VerificationResult struct {
	MaxAbsError float64
	MaxRelError float64
	NumErrors   int
	TotalItems  int
	FirstError  int // Index of first error, -1 if none
}

// Verify compares two arrays and returns detailed results
func Verify(expected, actual []float64, tol ToleranceConfig) VerificationResult {
	result := VerificationResult{
		TotalItems: len(expected),
		FirstError: -1,
	}

	if len(expected) != len(actual) {
		result.NumErrors = len(expected)
		return result
	}

	for i := range expected {
		if NearEqual(expected[i], actual[i], tol) {
			continue
		}
		result.NumErrors++
		if result.FirstError == -1 {
			result.FirstError = i
		}

		absDiff := math.Abs(expected[i] - actual[i])
		result.MaxAbsError = math.Max(result.MaxAbsError, absDiff)
		if expected[i] != 0 {
			result.MaxRelError = math.Max(result.MaxRelError, absDiff/math.Abs(expected[i]))
		}
	}

	return result
}

// OK reports whether every item matched
func (r VerificationResult) OK() bool {
	return r.NumErrors == 0
}

// String formats the verification result for display
func (r VerificationResult) String() string {
	if r.NumErrors == 0 {
		return "PASS: All values match within tolerance"
	}

	errorRate := float64(r.NumErrors) / float64(r.TotalItems) * 100
	return fmt.Sprintf("FAIL: %d/%d values differ (%.2f%%), first at %d, max abs %g, max rel %g",
		r.NumErrors, r.TotalItems, errorRate, r.FirstError, r.MaxAbsError, r.MaxRelError)
}
