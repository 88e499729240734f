package submission

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
	}{
		{"numeric string", "75000", 75000},
		{"padded string", "  12.5 ", 12.5},
		{"thousands separator", "1,234.5", 1234.5},
		{"peso sign", "₱2,000", 2000},
		{"empty string", "", 0},
		{"garbage", "abc", 0},
		{"NaN", "NaN", 0},
		{"infinity", "Inf", 0},
		{"nil", nil, 0},
		{"float", 42.25, 42.25},
		{"int", 7, 7},
		{"json number", json.Number("99"), 99},
		{"bool", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumber(tt.in))
		})
	}
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 0, ParseInt(""))
	assert.Equal(t, 3, ParseInt("3.9"))
	assert.Equal(t, -2, ParseInt("-2.5"))
	assert.Equal(t, 12, ParseInt(12.0))
	assert.Equal(t, 0, ParseInt("twelve"))
	assert.Equal(t, 3221225472, ParseInt("3221225472"))
	assert.Equal(t, math.MaxInt, ParseInt(1e30))
	assert.Equal(t, math.MinInt, ParseInt("-1e30"))
}

func TestTrimID(t *testing.T) {
	assert.Equal(t, "LA-1", TrimID("  LA-1 \n"))

	long := TrimID(strings.Repeat("x", 300))
	assert.Len(t, long, MaxIDLength)

	multibyte := TrimID(strings.Repeat("ñ", 300))
	assert.Equal(t, MaxIDLength, utf8.RuneCountInString(multibyte))
	assert.True(t, utf8.ValidString(multibyte))
}

func TestTrimText(t *testing.T) {
	assert.Equal(t, "hello", TrimText("  hello  "))
	assert.Len(t, TrimText(strings.Repeat("a", 1200)), MaxTextLength)
}

func TestNullableString(t *testing.T) {
	assert.Nil(t, NullableString(""))
	assert.Nil(t, NullableString("   "))

	s := NullableString(" note ")
	require.NotNil(t, s)
	assert.Equal(t, "note", *s)
}

func TestText(t *testing.T) {
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "abc", Text(" abc "))
	assert.Equal(t, "1500", Text(1500.0))
	assert.Equal(t, "true", Text(true))
}
