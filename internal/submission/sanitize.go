// internal/submission/sanitize.go
package submission

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MaxIDLength   = 255
	MaxTextLength = 1000
)

// ParseNumber coerces form input to a finite float. Anything that does not
// parse, and NaN or Inf, becomes 0.
func ParseNumber(v interface{}) float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		s = strings.TrimPrefix(s, "₱")
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseInt is ParseNumber truncated toward zero and clamped to the int range.
func ParseInt(v interface{}) int {
	f := math.Trunc(ParseNumber(v))
	switch {
	case f >= float64(math.MaxInt):
		return math.MaxInt
	case f <= float64(math.MinInt):
		return math.MinInt
	}
	return int(f)
}

// TrimID trims s and caps it at 255 characters.
func TrimID(s string) string {
	return truncate(strings.TrimSpace(s), MaxIDLength)
}

// TrimText trims s and caps it at 1000 characters.
func TrimText(s string) string {
	return truncate(strings.TrimSpace(s), MaxTextLength)
}

// NullableString returns nil for blank input so the field encodes as null.
func NullableString(s string) *string {
	s = TrimText(s)
	if s == "" {
		return nil
	}
	return &s
}

// Text renders loosely typed form input as a trimmed string.
func Text(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return TrimText(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return TrimText(fmt.Sprint(s))
	}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max]))
}
