package util

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

var (
	intPrefixRegex   = regexp.MustCompile(`^\s*[+-]?\d+`)
	floatPrefixRegex = regexp.MustCompile(`^\s*[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// ParseIntPrefix reads the leading integer of a spreadsheet cell, ignoring
// anything after it ("12.7" is 12, "1,234" is 1). Returns 0 when the cell
// does not start with a number.
func ParseIntPrefix(cell string) int64 {
	match := intPrefixRegex.FindString(cell)
	if match == "" {
		return 0
	}

	value, err := strconv.ParseInt(trimLeadingSpace(match), 10, 64)
	if err != nil {
		return 0
	}
	return value
}

// ParseFloatPrefix reads the leading decimal number of a spreadsheet cell.
// Returns 0 when the cell does not start with a number.
func ParseFloatPrefix(cell string) float64 {
	match := floatPrefixRegex.FindString(cell)
	if match == "" {
		return 0
	}

	value, err := strconv.ParseFloat(trimLeadingSpace(match), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

func trimLeadingSpace(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' && s[i] != '\n' && s[i] != '\r' {
			return s[i:]
		}
	}
	return ""
}

// FormatFixed formats the value with a fixed number of decimals. Ties of
// the exact binary value round away from zero, i.e 0.125 is "0.13".
func FormatFixed(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'f', decimals, 64)
	}
	if decimals < 0 {
		decimals = 0
	}

	exact := new(big.Rat).SetFloat64(math.Abs(value))
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	scaled := new(big.Int).Mul(exact.Num(), scale)

	units, remainder := new(big.Int).QuoRem(scaled, exact.Denom(), new(big.Int))
	if remainder.Lsh(remainder, 1).Cmp(exact.Denom()) >= 0 {
		units.Add(units, big.NewInt(1))
	}

	digits := units.String()
	if decimals > 0 {
		if len(digits) <= decimals {
			digits = strings.Repeat("0", decimals-len(digits)+1) + digits
		}
		digits = digits[:len(digits)-decimals] + "." + digits[len(digits)-decimals:]
	}

	if value < 0 {
		return "-" + digits
	}
	return digits
}

// RatioString returns numerator/denominator*scale with fixed decimals,
// or "0" when the denominator is zero.
func RatioString(numerator, denominator, scale float64, decimals int) string {
	if denominator == 0 {
		return "0"
	}
	return FormatFixed(numerator/denominator*scale, decimals)
}

// NonZeroRatioString is RatioString which also yields "0" for a zero numerator.
func NonZeroRatioString(numerator, denominator, scale float64, decimals int) string {
	if numerator == 0 {
		return "0"
	}
	return RatioString(numerator, denominator, scale, decimals)
}

// RoundHalfUp rounds half values towards positive infinity.
func RoundHalfUp(value float64) int64 {
	return int64(math.Floor(value + 0.5))
}

// ToFloat64 reads a json decoded number, numeric string or integer as float64.
// Anything else is 0.
func ToFloat64(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}
