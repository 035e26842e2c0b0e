package accounting

import "testing"

func TestPriceFor(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{15, "P 5.00"},
		{30, "P 10.00"},
		{60, "P 20.00"},
		{120, "P 40.00"},
		{45, "P 0.00"},
		{0, "P 0.00"},
		{-15, "P 0.00"},
	}

	for _, tt := range tests {
		if got := PriceFor(tt.minutes); got != tt.want {
			t.Errorf("PriceFor(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestKnownTier(t *testing.T) {
	for _, minutes := range []int{15, 30, 60, 120} {
		if !KnownTier(minutes) {
			t.Errorf("KnownTier(%d) = false, want true", minutes)
		}
	}
	for _, minutes := range []int{0, 10, 45, 90} {
		if KnownTier(minutes) {
			t.Errorf("KnownTier(%d) = true, want false", minutes)
		}
	}
}
