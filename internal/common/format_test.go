package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1234.5, "$1,234.50"},
		{0.29, "$0.29"},
		{1000000, "$1,000,000.00"},
		{-12.3, "-$12.30"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(tt.in), "FormatMoney(%v)", tt.in)
	}
	assert.Equal(t, "-", FormatMoney(math.NaN()))
}

func TestFormatSigned(t *testing.T) {
	assert.Equal(t, "+$5.00", FormatSignedMoney(5))
	assert.Equal(t, "-$5.00", FormatSignedMoney(-5))
	assert.Equal(t, "+0.00%", FormatSignedPct(0))
	assert.Equal(t, "-3.25%", FormatSignedPct(-3.25))
}

func TestFormatVolume(t *testing.T) {
	assert.Equal(t, "0", FormatVolume(0))
	assert.Equal(t, "999", FormatVolume(999))
	assert.Equal(t, "1,234,567", FormatVolume(1234567))
	assert.Equal(t, "-1,000", FormatVolume(-1000))
}
