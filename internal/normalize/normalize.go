package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Accepted ISO-8601 shapes. Timestamps without an offset are read as UTC and
// keep their wall-clock hour.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format: %q", value)
}

// IsDigits reports whether value is a non-empty run of ASCII decimal digits.
func IsDigits(value string) bool {
	for _, ch := range value {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return len(value) > 0
}

// ParseSite converts a digits-only site reference to its integer value.
func ParseSite(value string) (int, error) {
	if !IsDigits(value) {
		return 0, fmt.Errorf("site %q is not numeric", value)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("site %q: %w", value, err)
	}
	return n, nil
}
