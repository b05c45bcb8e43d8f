// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent of
// domain or business logic.
package utils

import "strconv"

// AtoiDefault converts s to an int, returning def when s is empty or does
// not parse.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampInt bounds n to the inclusive [lo, hi] range.
func ClampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
