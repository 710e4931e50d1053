// Package testutil provides reusable test helper functions for comb filter tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/go-audio-combfilter/internal/simdops"
)

// Default tolerances for various test scenarios.
const (
	CancellationTolerance = 1e-5
)

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf[F simdops.Float](t *testing.T, s []F, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(float64(v)) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(float64(v), 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange[F simdops.Float](t *testing.T, s []F, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if float64(v) < minVal || float64(v) > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, float64(v), minVal, maxVal)
		}
	}
	return true
}

// AssertAllZero verifies that every element is exactly zero.
func AssertAllZero[F simdops.Float](t *testing.T, s []F, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v != 0 {
			return assert.Fail(t, "non-zero sample", "s[%d]=%g", i, float64(v))
		}
	}
	return true
}

// AssertBitExact verifies that two slices have equal length and identical
// elements.
func AssertBitExact[F simdops.Float](t *testing.T, expected, actual []F, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if expected[i] != actual[i] {
			return assert.Fail(t, "samples differ",
				"sample %d: expected %v, got %v", i, expected[i], actual[i])
		}
	}
	return true
}

// AssertMonotonic verifies that a slice is monotonically non-decreasing.
func AssertMonotonic[F simdops.Float](t *testing.T, s []F, msgAndArgs ...any) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] < s[i-1] {
			return assert.Fail(t, "not monotonic",
				"s[%d]=%f < s[%d]=%f", i, float64(s[i]), i-1, float64(s[i-1]))
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}

// Blocks splits s into consecutive sub-slices of the given sizes. The sizes
// must sum to len(s).
func Blocks[F simdops.Float](s []F, sizes []int) [][]F {
	blocks := make([][]F, 0, len(sizes))
	pos := 0
	for _, n := range sizes {
		blocks = append(blocks, s[pos:pos+n])
		pos += n
	}
	return blocks
}
