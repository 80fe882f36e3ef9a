package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrecision(t *testing.T) {
	tests := []struct {
		code string
		want int32
	}{
		{"USD", 2},
		{"EUR", 2},
		{"SAR", 2},
		{"JPY", 0},
		{"VND", 0},
		{"KRW", 0},
		{"BHD", 3},
		{"KWD", 3},
		{"OMR", 3},
		{"usd", 2},
		{"vnd", 0},
		{" kwd ", 3},
		{"XYZ", 2}, // unknown codes default to 2
		{"", 2},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, Precision(tt.code))
		})
	}
}
