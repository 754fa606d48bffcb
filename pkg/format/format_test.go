package format

import (
	"math"
	"testing"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		unit     string
		decimals int32
		expected string
	}{
		{"Zero", 0, "VND", 0, "0 VND"},
		{"Small", 999, "VND", 0, "999 VND"},
		{"Thousands", 1234, "VND", 0, "1,234 VND"},
		{"Billions", 5_000_000_000, "VND", 0, "5,000,000,000 VND"},
		{"Negative rounds half away", -1_383_857_261.8, "VND", 0, "-1,383,857,262 VND"},
		{"Two decimals", 1234.5, "USD", 2, "1,234.50 USD"},
		{"No unit", -1234.567, "", 2, "-1,234.57"},
		{"Negative rounding to zero", -0.4, "VND", 0, "0 VND"},
		{"Negative decimals clamp", 12.6, "", -1, "13"},
		{"Positive infinity", math.Inf(1), "VND", 0, NotANumber},
		{"Negative infinity", math.Inf(-1), "", 2, NotANumber},
		{"NaN", math.NaN(), "VND", 0, NotANumber},
		{"Ceiling sized amount", 1e17, "VND", 0, "100,000,000,000,000,000 VND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Currency(tt.amount, tt.unit, tt.decimals)
			if got != tt.expected {
				t.Errorf("Currency(%v, %q, %d) = %q, expected %q", tt.amount, tt.unit, tt.decimals, got, tt.expected)
			}
		})
	}
}

func TestPercentAndYears(t *testing.T) {
	if got := Percent(14.950007); got != "14.95%" {
		t.Errorf("Percent = %q", got)
	}
	if got := Years(4.16666, LabelsFor("en")); got != "4.17 years" {
		t.Errorf("Years(en) = %q", got)
	}
	if got := Years(7.8125, LabelsFor("vi")); got != "7.81 năm" {
		t.Errorf("Years(vi) = %q", got)
	}
}

func TestLabelsFor(t *testing.T) {
	tests := []struct {
		locale        string
		uncomputable  string
		neverRecovers string
		supported     bool
	}{
		{"en", "cannot be computed", "never recovers", true},
		{"vi", "Không thể tính", "Không hoàn vốn", true},
		{"VI", "Không thể tính", "Không hoàn vốn", true},
		{"fr", "cannot be computed", "never recovers", false},
		{"", "cannot be computed", "never recovers", false},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			l := LabelsFor(tt.locale)
			if l.Uncomputable != tt.uncomputable || l.NeverRecovers != tt.neverRecovers {
				t.Errorf("LabelsFor(%q) = %+v", tt.locale, l)
			}
			if SupportedLocale(tt.locale) != tt.supported {
				t.Errorf("SupportedLocale(%q) = %v", tt.locale, !tt.supported)
			}
		})
	}
}
