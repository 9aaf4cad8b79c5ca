package querycache

import (
	"math"
	"testing"
)

func TestThresholdCellSet(t *testing.T) {
	tests := []struct {
		name    string
		val     float64
		wantErr bool
	}{
		{"valid mid", 0.5, false},
		{"lower bound", 0.0, false},
		{"upper bound", 1.0, false},
		{"negative", -0.1, true},
		{"too high", 1.5, true},
		{"nan", math.NaN(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewThresholdCell(0.6)
			err := c.Set(tt.val)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%v) error = %v, wantErr %v", tt.val, err, tt.wantErr)
			}
			if tt.wantErr {
				if got := c.Get(); got != 0.6 {
					t.Errorf("Get() after rejected Set = %v, want 0.6 unchanged", got)
				}
			} else if got := c.Get(); got != tt.val {
				t.Errorf("Get() = %v, want %v", got, tt.val)
			}
		})
	}
}
