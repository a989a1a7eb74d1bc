package countdown_test

import (
	"testing"

	"cdt-go/internal/countdown"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		value     int64
		total     int64
		wantLabel string
		wantPts   int64
	}{
		{"first number", 10000, 10000, "First Number", 0},
		{"first number shadows 1000s", 5000, 5000, "First Number", 0},
		{"first number shadows even", 10, 10, "First Number", 0},
		{"multiple of 1000", 9000, 10000, "1000s", 1000},
		{"zero is a 1000", 0, 10000, "1000s", 1000},
		{"one above 1000", 9001, 10000, "1001s", 500},
		{"multiple of 200", 9800, 10000, "200s", 200},
		{"one above 200", 9801, 10000, "201s", 100},
		{"multiple of 100", 9900, 10000, "100s", 100},
		{"one above 100", 9901, 10000, "101s", 50},
		{"odd", 9857, 10000, "Odd Numbers", 12},
		{"even", 9858, 10000, "Even Numbers", 10},
		{"1000 beats 200 and 100", 8000, 10000, "1000s", 1000},
		{"200 beats 100", 9600, 10000, "200s", 200},
		{"1001 beats odd", 7001, 10000, "1001s", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := countdown.Classify(tt.value, tt.total)
			if rule.Label != tt.wantLabel {
				t.Errorf("Classify(%d, %d).Label = %q, want %q", tt.value, tt.total, rule.Label, tt.wantLabel)
			}
			if rule.Points != tt.wantPts {
				t.Errorf("Classify(%d, %d).Points = %d, want %d", tt.value, tt.total, rule.Points, tt.wantPts)
			}
		})
	}
}

func TestRules_PriorityOrder(t *testing.T) {
	for i, r := range countdown.Rules {
		if r.Priority != i+1 {
			t.Errorf("Rules[%d].Priority = %d, want %d", i, r.Priority, i+1)
		}
	}
}
