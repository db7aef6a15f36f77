package model

import "testing"

func TestParseCents(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"50.00", 5000},
		{"1234.56", 123456},
		{"0.01", 1},
		{"5", 500},
		{"-9.99", -999},
		{"", 0},
		{"not-a-number", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseCents(tt.input); got != tt.want {
				t.Errorf("ParseCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestCentsFromFloat(t *testing.T) {
	tests := []struct {
		input float64
		want  int64
	}{
		{50.0, 5000},
		{49.999, 5000},
		{0.005, 1},
		{-5.5, -550},
		{0, 0},
	}

	for _, tt := range tests {
		if got := CentsFromFloat(tt.input); got != tt.want {
			t.Errorf("CentsFromFloat(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
