// Package amount converts between decimal strings and fixed-point minor
// units. All monetary values in the ledger are int64 counts of 1/10000 of a
// currency unit, which keeps arithmetic exact and comparisons cheap.
package amount

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DecimalPrecision is the number of fractional digits carried.
	DecimalPrecision = 4
	// Scale is the number of minor units per whole currency unit.
	Scale = 10_000
)

// Parse converts a decimal string such as "1.5" or "-0.0032" into minor
// units. Fractional digits beyond the fourth are truncated, not rounded.
// Missing fractional digits are treated as zeros.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse amount: empty string")
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if s == "" || s == "." {
		return 0, fmt.Errorf("parse amount: no digits")
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if len(fracPart) > DecimalPrecision {
		fracPart = fracPart[:DecimalPrecision]
	}
	for len(fracPart) < DecimalPrecision {
		fracPart += "0"
	}
	if intPart == "" {
		intPart = "0"
	}

	units, err := strconv.ParseInt(intPart+fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if neg {
		units = -units
	}
	return units, nil
}

// Format renders minor units as a decimal string with exactly four fractional
// digits, e.g. Format(15000) == "1.5000" and Format(-10) == "-0.0010".
func Format(units int64) string {
	sign := ""
	if units < 0 {
		sign = "-"
		units = -units
	}
	return fmt.Sprintf("%s%d.%04d", sign, units/Scale, units%Scale)
}
