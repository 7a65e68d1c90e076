// Package testutil holds shared test helpers: decimal assertions, fixed
// fixtures and container-backed stores for integration tests.
package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// AssertDecimalEqual compares decimals by value, ignoring exponent.
func AssertDecimalEqual(t *testing.T, want, got decimal.Decimal, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.Truef(t, want.Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

// AssertDecimalEqualString parses want and compares it with got.
func AssertDecimalEqualString(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) bool {
	t.Helper()
	return AssertDecimalEqual(t, decimal.RequireFromString(want), got, msgAndArgs...)
}

// AssertDecimalWithin checks |want-got| <= tolerance.
func AssertDecimalWithin(t *testing.T, want, got, tolerance decimal.Decimal) bool {
	t.Helper()
	return assert.Truef(t, want.Sub(got).Abs().LessThanOrEqual(tolerance),
		"want %s ± %s, got %s", want, tolerance, got)
}
