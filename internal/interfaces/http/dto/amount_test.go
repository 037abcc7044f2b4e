package dto

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"0", "0.00"},
		{"200000", "200,000.00"},
		{"1000000", "1,000,000.00"},
		{"333333.333333", "333,333.33"},
		{"1234567.125", "1,234,567.13"},
		{"999.995", "1,000.00"},
		{"-1500.5", "-1,500.50"},
		{"-0.001", "0.00"},
		{"12", "12.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatAmount(decimal.RequireFromString(tt.in)))
		})
	}
}
