package util

import (
	"strings"
	"time"

	"github.com/jinzhu/now"
)

const DateFormat = "2006-01-02"

// ParseDate parses a calendar date from the common export formats
// (2006-01-02, 20060102, RFC3339 and the jinzhu/now formats). An empty
// string is not an error and returns nil.
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	var parsed time.Time
	var err error
	if parsed, err = time.Parse(time.RFC3339, value); err != nil {
		if parsed, err = time.Parse("20060102", value); err != nil {
			parsed, err = now.New(time.Now().UTC()).Parse(value)
			if err != nil {
				return nil, err
			}
		}
	}

	date := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	return &date, nil
}

// ParseDateOrNil is ParseDate which treats unparsable values as absent.
func ParseDateOrNil(value interface{}) *time.Time {
	str, ok := value.(string)
	if !ok {
		return nil
	}

	date, err := ParseDate(str)
	if err != nil {
		return nil
	}
	return date
}

// FormatDate returns the date as YYYY-MM-DD or an empty string for nil.
func FormatDate(date *time.Time) string {
	if date == nil {
		return ""
	}
	return date.Format(DateFormat)
}

func TimeNowUTC() time.Time {
	return time.Now().UTC()
}
