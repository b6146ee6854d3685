package utils

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name   string
		in     interface{}
		want   float64
		wantOK bool
	}{
		{"float", 4.25, 4.25, true},
		{"int", 3, 3, true},
		{"numeric string", "3.5", 3.5, true},
		{"leading prefix", "4.5 MOS", 4.5, true},
		{"leading whitespace", "  -2", -2, true},
		{"leading dot", ".5", 0.5, true},
		{"exponent", "1e3x", 1000, true},
		{"suffix unit", "10dB", 10, true},
		{"text", "Traffic", 0, false},
		{"blank", "", 0, false},
		{"nil", nil, 0, false},
		{"infinity word", "Infinity", 0, false},
		{"overflow", "1e999", 0, false},
		{"nan", math.NaN(), 0, false},
		{"inf", math.Inf(1), 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-12)
			}
		})
	}
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, 10, ParseValue(" 10 "))
	assert.Equal(t, 2.5, ParseValue("2.5"))
	assert.Equal(t, "10dB", ParseValue("10dB"))
	assert.Nil(t, ParseValue("   "))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "Traffic", FormatValue("  Traffic "))
	assert.Equal(t, "10", FormatValue(10))
	assert.Equal(t, "10", FormatValue(10.0))
	assert.Equal(t, "2.5", FormatValue(2.5))
	assert.Equal(t, "", FormatValue(nil))
}

func TestFirstInt(t *testing.T) {
	assert.Equal(t, 20, FirstInt("20dB"))
	assert.Equal(t, 5, FirstInt("SNR 5 dB"))
	assert.Equal(t, -5, FirstInt("-5dB"))
	assert.Equal(t, 0, FirstInt("clean"))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.33, Round2(10.0/3))
	assert.Equal(t, -0.5, Round2(-0.5))
	assert.Equal(t, 1.24, Round2(1.2351))
	assert.Equal(t, 1.0, Round2(1.005))
	assert.Equal(t, 2.67, Round2(2.675))
	assert.Equal(t, -0.13, Round2(-0.125))
}

func TestParseDurationOr(t *testing.T) {
	assert.Equal(t, 5*time.Minute, ParseDuration(""))
	assert.Equal(t, 30*time.Second, ParseDurationOr("30s", time.Minute))
	assert.Equal(t, time.Minute, ParseDurationOr("bogus", time.Minute))
	assert.Equal(t, time.Minute, ParseDurationOr("-1s", time.Minute))
}
