package agent

import (
	"math"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"2+2", 4},
		{"2 + 2", 4},
		{"10 - 3", 7},
		{"4 * 5", 20},
		{"10 / 4", 2.5},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"-5 + 3", -2},
		{"-(2 + 3)", -5},
		{"2.5 * 2", 5},
		{"1 + 2 + 3 + 4", 10},
		{"100 / 10 / 2", 5},
		{"((1 + 2) * (3 + 4))", 21},
		{"7", 7},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.expr, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"division by zero", "1 / 0"},
		{"unclosed paren", "(1 + 2"},
		{"trailing operator", "1 +"},
		{"empty", ""},
		{"double operator", "1 + * 2"},
		{"letters", "two + two"},
		{"bad number", "1..2 + 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Evaluate(tt.expr); err == nil {
				t.Errorf("Evaluate(%q) succeeded, want error", tt.expr)
			}
		})
	}
}

func TestIsExpression(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"2+2", true},
		{"  (3 * 4) / 2  ", true},
		{"-5 + 3.5", true},
		{"what is the soul", false},
		{"what is 2+2", false},
		{"", false},
		{"   ", false},
		{"+-*/", false},
		{"(1 + 2", false},
		{"3,000 + 2", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := IsExpression(tt.query); got != tt.want {
				t.Errorf("IsExpression(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{4, "4"},
		{2.5, "2.5"},
		{-0.125, "-0.125"},
		{1000000, "1e+06"},
	}

	for _, tt := range tests {
		if got := formatNumber(tt.v); got != tt.want {
			t.Errorf("formatNumber(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
