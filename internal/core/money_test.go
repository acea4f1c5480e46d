package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1250", "1250", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"12,5", "12.5", true},
		{"1,2500", "1.25", true},
		{"1,250", "", false},
		{"12,345", "", false},
		{"1.250,5", "", false},
		{"1,000.50", "", false},
		{"1,2,3", "", false},
		{"0.01", "0.01", true},
		{".5", "0.5", true},
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"0.00", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1e3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestWholeUnits(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"3200", 3200},
		{"1249.4", 1249},
		{"1249.6", 1250},
		{"2.5", 2},
		{"3.5", 4},
	}
	for _, tc := range cases {
		if got := WholeUnits(decimal.RequireFromString(tc.in)); got != tc.want {
			t.Fatalf("WholeUnits(%s) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
