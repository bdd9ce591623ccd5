package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var headerWhitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeHeaderName lowercases the header and collapses whitespace runs to '_'.
func NormalizeHeaderName(header string) string {
	return headerWhitespaceRegex.ReplaceAllString(strings.ToLower(header), "_")
}

// CoerceNumber returns the token as float64 when the whole token is a finite
// number, otherwise the token unchanged. An empty token stays an empty string.
func CoerceNumber(token string) interface{} {
	if token == "" {
		return token
	}

	value, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return token
	}
	return value
}

// ParseCSVLine splits a single csv line on commas outside double quotes.
// A doubled quote inside a quoted field is read as one literal quote.
// Every value is trimmed of surrounding whitespace.
func ParseCSVLine(line string) []string {
	values := make([]string, 0)

	var current strings.Builder
	inQuotes := false
	for i := 0; i < len(line); i++ {
		char := line[i]
		switch {
		case char == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case char == ',' && !inQuotes:
			values = append(values, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(char)
		}
	}
	values = append(values, strings.TrimSpace(current.String()))

	return values
}

// ParseCSV parses csv text using the first line as header row. Rows with a
// value count different from the header count are skipped.
func ParseCSV(text string) []map[string]interface{} {
	_, records := ParseCSVWithHeaders(text)
	return records
}

// ParseCSVWithHeaders is ParseCSV which also returns the normalized headers
// in file order.
func ParseCSVWithHeaders(text string) ([]string, []map[string]interface{}) {
	records := make([]map[string]interface{}, 0)

	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return []string{}, records
	}

	rawHeaders := ParseCSVLine(strings.TrimSuffix(lines[0], "\r"))
	headers := make([]string, len(rawHeaders))
	for i := range rawHeaders {
		headers[i] = NormalizeHeaderName(rawHeaders[i])
	}

	for _, line := range lines[1:] {
		values := ParseCSVLine(strings.TrimSuffix(line, "\r"))
		if len(values) != len(headers) {
			continue
		}

		record := make(map[string]interface{}, len(headers))
		for i, header := range headers {
			record[header] = CoerceNumber(values[i])
		}
		records = append(records, record)
	}

	return headers, records
}
