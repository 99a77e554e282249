package domain

import "testing"

func TestLevelCurveInverse(t *testing.T) {
	t.Parallel()
	for level := 1; level <= 100; level++ {
		if got := LevelForXP(XPForLevel(level)); got != level {
			t.Fatalf("LevelForXP(XPForLevel(%d)) = %d", level, got)
		}
	}
}

func TestLevelBracketsAndMonotonic(t *testing.T) {
	t.Parallel()
	prevLevel := 1
	for xp := int64(0); xp <= 1_000_000; xp += 7 {
		level := LevelForXP(xp)
		if level < prevLevel {
			t.Fatalf("level dropped at xp %d: %d < %d", xp, level, prevLevel)
		}
		prevLevel = level
		if lo, hi := XPForLevel(level), XPForLevel(level+1); lo > xp || xp >= hi {
			t.Fatalf("xp %d outside level %d bracket [%d,%d)", xp, level, lo, hi)
		}
	}
	prevXP := int64(-1)
	for level := -3; level <= 200; level++ {
		xp := XPForLevel(level)
		if xp < prevXP {
			t.Fatalf("XPForLevel decreased at %d", level)
		}
		prevXP = xp
	}
}

func TestLevelEdges(t *testing.T) {
	t.Parallel()
	cases := []struct {
		xp   int64
		want int
	}{
		{-50, 1}, {0, 1}, {99, 1}, {100, 2}, {399, 2}, {400, 3}, {8_099, 9}, {8_100, 10},
	}
	for _, tc := range cases {
		if got := LevelForXP(tc.xp); got != tc.want {
			t.Fatalf("LevelForXP(%d) = %d, want %d", tc.xp, got, tc.want)
		}
	}
	if XPForLevel(0) != 0 || XPForLevel(1) != 0 || XPForLevel(3) != 400 {
		t.Fatalf("unexpected XPForLevel values")
	}
}

func TestSessionXP(t *testing.T) {
	t.Parallel()
	cases := map[int64]int64{0: 0, -5: 0, 59_999: 0, 60_000: 10, 65_000: 10, 150_000: 20}
	for ms, want := range cases {
		if got := SessionXP(ms); got != want {
			t.Fatalf("SessionXP(%d) = %d, want %d", ms, got, want)
		}
	}
}

func TestProgressFor(t *testing.T) {
	t.Parallel()
	p := ProgressFor(250)
	if p.Level != 2 || p.NextLevel != 3 || p.LevelXP != 100 || p.NextLevelXP != 400 {
		t.Fatalf("unexpected progress %+v", p)
	}
	if p.Percent != 50 {
		t.Fatalf("expected 50%%, got %v", p.Percent)
	}
	if zero := ProgressFor(-10); zero.XP != 0 || zero.Level != 1 || zero.Percent != 0 {
		t.Fatalf("negative xp clamps to level 1 start, got %+v", zero)
	}
}
