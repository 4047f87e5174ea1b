package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{"integer euros", "12", 12, false},
		{"dot separator", "12.34", 12.34, false},
		{"comma separator", "12,34", 12.34, false},
		{"one decimal digit", "5.5", 5.5, false},
		{"third decimal rounds down", "12.344", 12.34, false},
		{"third decimal rounds up", "12.346", 12.35, false},
		{"half rounds up", "12.345", 12.35, false},
		{"leading dot", ".50", 0.5, false},
		{"whitespace trimmed", " 7,00 ", 7, false},
		{"empty", "", 0, true},
		{"zero rejected", "0", 0, true},
		{"zero with decimals rejected", "0.00", 0, true},
		{"negative rejected", "-5", 0, true},
		{"explicit plus rejected", "+5", 0, true},
		{"two separators", "1.2.3", 0, true},
		{"letters", "12a", 0, true},
		{"overflow", "99999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) = %v, want error", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("ParseAmount(%q) error = %v, want ErrInvalidAmount", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatEuros(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{12.34, "€12,34"},
		{12, "€12,00"},
		{0.5, "€0,50"},
		{0, "€0,00"},
		{-847.46, "-€847,46"},
		{847.4576271186441, "€847,46"},
	}

	for _, tt := range tests {
		if got := FormatEuros(tt.amount); got != tt.want {
			t.Errorf("FormatEuros(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}
