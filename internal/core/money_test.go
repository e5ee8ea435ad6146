package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1.00", true},
		{"12.5", "12.50", true},
		{"12,34", "12.34", true},
		{" 2.50 ", "2.50", true},
		{"0", "0.00", true},
		{"-4.2", "-4.20", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1,2,3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || FormatAmount(got) != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, FormatAmount(got), err)
			}
		} else if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestParseStoredAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"12.50", "12.50", true},
		{" -3 ", "-3.00", true},
		{"12,50", "", false},
		{"1,000.00", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseStoredAmount(tc.in)
		if tc.ok {
			if err != nil || FormatAmount(got) != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, FormatAmount(got), err)
			}
		} else if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestSumAvoidsFloatDrift(t *testing.T) {
	es := []Expense{
		NewExpense("a", MustAmount("0.10"), NewDate(2024, 1, 1), Food, ""),
		NewExpense("b", MustAmount("0.20"), NewDate(2024, 1, 1), Food, ""),
	}
	if got := Sum(es); !got.Equal(MustAmount("0.30")) {
		t.Fatalf("expected 0.30, got %s", got)
	}
	if !Sum(nil).IsZero() {
		t.Fatalf("empty sum should be zero")
	}
}
