package hook

import "testing"

func TestClampCoord(t *testing.T) {
	tests := []struct {
		in   int32
		want int16
	}{
		{0, 0},
		{500, 500},
		{0x7FFF, 0x7FFF},
		{0x8000, 0x7FFF},
		{100000, 0x7FFF},
		{-5, -5},
		{-0x8000, -0x8000},
		{-100000, -0x8000},
	}
	for _, tt := range tests {
		if got := clampCoord(tt.in); got != tt.want {
			t.Errorf("clampCoord(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
