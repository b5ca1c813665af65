package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloatPrefix(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"12.5", 12.5, true},
		{"  12.5kg", 12.5, true},
		{".5", 0.5, true},
		{"5.", 5, true},
		{"-3.25", -3.25, true},
		{"+7", 7, true},
		{"1e3", 1000, true},
		{"1e3x", 1000, true},
		{"2e", 2, true},
		{"2e+", 2, true},
		{"1.2.3", 1.2, true},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{".", 0, false},
		{"-", 0, false},
		{"Infinity", 0, false},
		{"1e400", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := FloatPrefix(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntPrefix(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"42", 42, true},
		{" 42 units", 42, true},
		{"12.9", 12, true},
		{"-5", -5, true},
		{"+5", 5, true},
		{"1e3", 1, true},
		{"0x1f", 31, true},
		{"007", 7, true},
		{"0x", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
		{"99999999999999999999999", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := IntPrefix(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "9.99", FormatFloat(9.99))
	assert.Equal(t, "10", FormatFloat(10))
	assert.Equal(t, "0.5", FormatFloat(0.5))
}
