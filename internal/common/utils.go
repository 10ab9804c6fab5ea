package common

import (
	"math"
	"strings"
)

// SplitList splits a comma separated value and trims each element. Positions
// are preserved, so "a,,b" yields three elements. An empty input yields nil.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// NullableFloat returns nil for NaN and infinities so JSON encoders emit null.
func NullableFloat(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
