package model

import (
	"math"
	"strconv"
)

// ParseCents converts decimal string amounts (major units) to cents (int64).
// The storefront API formats some amounts as strings ("50.00" = €50.00).
// Handles edge cases: empty strings, missing decimals, large values.
// Examples: "50.00" → 5000, "1234.56" → 123456, "" → 0
func ParseCents(s string) int64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	// math.Round handles both positive and negative amounts correctly
	return int64(math.Round(f * 100))
}

// CentsFromFloat converts a major-unit JSON number to cents.
// Summary endpoints serve raw totals as numbers (50.0), not strings.
func CentsFromFloat(f float64) int64 {
	return int64(math.Round(f * 100))
}
