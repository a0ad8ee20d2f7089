package volume

import (
	"math"
	"testing"
)

func TestComputeAlpha(t *testing.T) {
	alpha := ComputeAlpha(DefaultMaxDB)
	if alpha <= 0 {
		t.Fatalf("ComputeAlpha(%v) = %v, want > 0", DefaultMaxDB, alpha)
	}

	// The curve must pass through the anchor point: the linear
	// reference maps to the midpoint of the dB range.
	mid := MinDB + fraction*(DefaultMaxDB-MinDB)
	got := LinearToDB(linearRef, DefaultMaxDB, alpha)
	if math.Abs(got-mid) > 0.5 {
		t.Errorf("LinearToDB(linearRef) = %v, want ~%v", got, mid)
	}
}

func TestLinearToDBClamping(t *testing.T) {
	alpha := ComputeAlpha(DefaultMaxDB)

	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"below minimum clamps to floor", 0.0, MinDB},
		{"at minimum hits floor", 0.02, MinDB},
		{"above maximum clamps to ceiling", 1.5, DefaultMaxDB},
		{"at maximum hits ceiling", 1.0, DefaultMaxDB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LinearToDB(tt.value, DefaultMaxDB, alpha); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("LinearToDB(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestLinearToDBHalfSteps(t *testing.T) {
	alpha := ComputeAlpha(DefaultMaxDB)
	for _, v := range []float64{0.1, 0.25, 0.4, 0.57, 0.7, 0.85, 0.99} {
		db := LinearToDB(v, DefaultMaxDB, alpha)
		if db <= MinDB || db >= DefaultMaxDB {
			continue
		}
		if r := math.Mod(db*2, 1); math.Abs(r) > 1e-9 {
			t.Errorf("LinearToDB(%v) = %v, not a 0.5 dB step", v, db)
		}
	}
}

func TestRoundTripLinear(t *testing.T) {
	alpha := ComputeAlpha(DefaultMaxDB)
	for _, v := range []float64{0.05, 0.1, 0.3, 0.5, 0.57, 0.75, 0.9, 0.98} {
		db := LinearToDB(v, DefaultMaxDB, alpha)
		back := DBToLinear(db, DefaultMaxDB, alpha)
		// 0.5 dB rounding plus 3-decimal rounding bounds the error.
		if math.Abs(back-v) > 0.02 {
			t.Errorf("round trip %v -> %v dB -> %v, drift too large", v, db, back)
		}
	}
}

func TestRoundTripDB(t *testing.T) {
	alpha := ComputeAlpha(DefaultMaxDB)
	for _, db := range []float64{-80, -60, -44, -30.5, -20, -10, -3, 0, 5.5} {
		lin := DBToLinear(db, DefaultMaxDB, alpha)
		back := LinearToDB(lin, DefaultMaxDB, alpha)
		if math.Abs(back-db) > 0.5 {
			t.Errorf("round trip %v dB -> %v -> %v dB, drift too large", db, lin, back)
		}
	}
}

func TestDBToLinearBounds(t *testing.T) {
	alpha := ComputeAlpha(DefaultMaxDB)
	if got := DBToLinear(-150, DefaultMaxDB, alpha); math.Abs(got-minLinear) > 1e-9 {
		t.Errorf("DBToLinear(-150) = %v, want %v", got, minLinear)
	}
	if got := DBToLinear(50, DefaultMaxDB, alpha); math.Abs(got-maxLinear) > 1e-9 {
		t.Errorf("DBToLinear(50) = %v, want %v", got, maxLinear)
	}
}
