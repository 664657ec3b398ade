package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseCurrency(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Currency
		ok   bool
	}{
		{"USD", USD, true},
		{"usd", USD, true},
		{" eur ", EUR, true},
		{"SAR", SAR, true},
		{"GBP", "", false},
		{"", "", false},
	} {
		got, err := ParseCurrency(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseCurrency(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseCurrency(%q): expected error", tc.in)
		}
	}
}

func TestRoundHalfUp(t *testing.T) {
	d := decimal.RequireFromString("10.005")
	if got := Round(d).StringFixed(2); got != "10.01" {
		t.Fatalf("Round(10.005) = %s, want 10.01", got)
	}
	d = decimal.RequireFromString("10.004")
	if got := Round(d).StringFixed(2); got != "10.00" {
		t.Fatalf("Round(10.004) = %s, want 10.00", got)
	}
}

func TestTax(t *testing.T) {
	total := decimal.RequireFromString("91200.00")
	rate := decimal.NewFromInt(15)
	if got := Tax(total, rate).StringFixed(2); got != "13680.00" {
		t.Fatalf("Tax = %s, want 13680.00", got)
	}
}

func TestAmountAddRejectsMixedCurrencies(t *testing.T) {
	a, err := New(decimal.NewFromInt(10), USD)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(decimal.NewFromInt(5), EUR)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Add(b); err == nil {
		t.Fatal("expected mixed-currency add to fail")
	}
}
