package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQty(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1", 1, true},
		{"10000", 10000, true},
		{" 42 ", 42, true},
		{"0", 0, false},
		{"10001", 0, false},
		{"-3", 0, false},
		{"+3", 0, false},
		{"1.5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseQty(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"0.99", 0.99, true},
		{"0,99", 0.99, true},
		{"10", 10, true},
		{"0", 0, true},
		{" 1.5 ", 1.5, true},
		{".5", 0.5, true},
		{"-1", 0, false},
		{"+5", 0, false},
		{"1e3", 0, false},
		{"0x1p2", 0, false},
		{"inf", 0, false},
		{"nan", 0, false},
		{"1,2,3", 0, false},
		{"1.2.3", 0, false},
		{".", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parsePrice(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, "input %q", tc.in)
		}
	}
}

func TestParseID(t *testing.T) {
	id, ok := parseID("12")
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)

	for _, in := range []string{"0", "-1", "12a", "", "1.0"} {
		_, ok := parseID(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "4.95$", formatMoney(4.95))
	assert.Equal(t, "0.50$", formatMoney(0.5))
}
