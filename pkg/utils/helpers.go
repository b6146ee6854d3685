package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseDuration safely parses duration string like "5m"
func ParseDuration(d string) time.Duration {
	return ParseDurationOr(d, 5*time.Minute)
}

// ParseDurationOr parses d, returning fallback when d is empty, invalid or not positive.
func ParseDurationOr(d string, fallback time.Duration) time.Duration {
	if d == "" {
		return fallback
	}
	duration, err := time.ParseDuration(d)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

// ParseValue converts a raw spreadsheet cell into int, float64 or string.
// Blank cells become nil.
func ParseValue(s string) interface{} {
	// Trim whitespace first
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// try int
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	// try float
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return s
}

// numericPrefix matches the longest leading decimal number, the way a
// spreadsheet viewer reads "4.5 (MOS)" as 4.5.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*([eE][+-]?\d+)?|\.\d+([eE][+-]?\d+)?)`)

// ParseNumber converts a cell to a finite float64. Strings accept a leading
// numeric prefix; non-numeric strings, blanks, NaN and infinities are rejected.
func ParseNumber(v interface{}) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case int32:
		f = float64(val)
	case uint:
		f = float64(val)
	case uint64:
		f = float64(val)
	case string:
		m := numericPrefix.FindString(strings.TrimSpace(val))
		if m == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(m, 64)
		if err != nil {
			// exponent overflow: the prefix is numeric but not finite
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatValue renders a cell as the trimmed string used for comparisons and labels.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

var firstInt = regexp.MustCompile(`-?\d+`)

// FirstInt returns the first (optionally negative) integer in s, or 0 when s has no digits.
func FirstInt(s string) int {
	m := firstInt.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// Round2 rounds the binary value of f to two decimal places using math.Round
// on f*100. Decimal halves such as 1.005 are stored just below the half and
// round down.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
