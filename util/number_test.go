package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseIntPrefix(t *testing.T) {
	tests := map[string]int64{
		"100":    100,
		" 42 ":   42,
		"12.7":   12,
		"1,234":  1,
		"-5":     -5,
		"":       0,
		"abc":    0,
		"7 days": 7,
	}
	for cell, want := range tests {
		assert.Equal(t, want, ParseIntPrefix(cell), cell)
	}
}

func TestParseFloatPrefix(t *testing.T) {
	tests := map[string]float64{
		"40":     40,
		"45.5%":  45.5,
		".5":     0.5,
		"1e2x":   100,
		"-0.25":  -0.25,
		"":       0,
		"n/a":    0,
		"12.34.": 12.34,
	}
	for cell, want := range tests {
		assert.Equal(t, want, ParseFloatPrefix(cell), cell)
	}
}

func TestFormatFixed(t *testing.T) {
	tests := []struct {
		value    float64
		decimals int
		want     string
	}{
		{0, 2, "0.00"},
		{0.125, 2, "0.13"},
		{45.25, 1, "45.3"},
		{2.5, 0, "3"},
		{1.005, 2, "1.00"},
		{0.05, 1, "0.1"},
		{123.456, 2, "123.46"},
		{0.001, 2, "0.00"},
		{-0.125, 2, "-0.13"},
		{7, 1, "7.0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFixed(tt.value, tt.decimals), "%v with %d decimals", tt.value, tt.decimals)
	}

	assert.Equal(t, "0.13", RatioString(5, 40, 1, 2))
	assert.Equal(t, "45.3", RatioString(90.5, 2, 1, 1))
}

func TestRatioStrings(t *testing.T) {
	assert.Equal(t, "0", RatioString(10, 0, 100, 2))
	assert.Equal(t, "0.00", RatioString(0, 10, 100, 2))
	assert.Equal(t, "2.67", RatioString(400, 150, 1, 2))
	assert.Equal(t, "25.0", RatioString(30, 120, 100, 1))

	assert.Equal(t, "0", NonZeroRatioString(0, 10, 100, 2))
	assert.Equal(t, "0", NonZeroRatioString(10, 0, 100, 2))
	assert.Equal(t, "10.00", NonZeroRatioString(10, 100, 100, 2))
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, int64(67), RoundHalfUp(66.6667))
	assert.Equal(t, int64(33), RoundHalfUp(33.3333))
	assert.Equal(t, int64(3), RoundHalfUp(2.5))
	assert.Equal(t, int64(-2), RoundHalfUp(-2.5))
}

func TestToFloat64(t *testing.T) {
	assert.Equal(t, 1.5, ToFloat64(1.5))
	assert.Equal(t, float64(3), ToFloat64(3))
	assert.Equal(t, 2.25, ToFloat64("2.25"))
	assert.Equal(t, float64(0), ToFloat64("x"))
	assert.Equal(t, float64(0), ToFloat64(nil))
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	for _, value := range []string{"2024-03-09", "20240309", "2024-03-09T17:30:00Z", " 2024-03-09 "} {
		date, err := ParseDate(value)
		assert.Nil(t, err, value)
		if assert.NotNil(t, date, value) {
			assert.Equal(t, want, *date, value)
		}
	}

	date, err := ParseDate("")
	assert.Nil(t, err)
	assert.Nil(t, date)

	_, err = ParseDate("not a date")
	assert.NotNil(t, err)

	assert.Nil(t, ParseDateOrNil(float64(20240309)))
	assert.Nil(t, ParseDateOrNil("garbage"))
	assert.Equal(t, "2024-03-09", FormatDate(ParseDateOrNil("2024-03-09")))
	assert.Equal(t, "", FormatDate(nil))
}
