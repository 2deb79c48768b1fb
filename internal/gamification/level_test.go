package gamification

import (
	"math"
	"testing"
)

func TestDeriveLevel_Boundaries(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{299, 2},
		{300, 3},
		{599, 3},
		{600, 4},
		{999, 4},
		{1000, 5},
		{-50, 1},
	}
	for _, tt := range tests {
		if got := DeriveLevel(tt.xp); got != tt.want {
			t.Errorf("DeriveLevel(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestXPForLevel_MatchesDeriveLevel(t *testing.T) {
	for level := 1; level <= 120; level++ {
		start := XPForLevel(level)
		if got := DeriveLevel(start); got != level {
			t.Errorf("DeriveLevel(XPForLevel(%d)=%d) = %d", level, start, got)
		}
		if level > 1 {
			if got := DeriveLevel(start - 1); got != level-1 {
				t.Errorf("DeriveLevel(%d) = %d, want %d", start-1, got, level-1)
			}
		}
	}
}

func TestNextLevelProgress(t *testing.T) {
	lp := NextLevelProgress(400)
	if lp.Level != 3 {
		t.Errorf("Level = %d, want 3", lp.Level)
	}
	if lp.Progress != 100 {
		t.Errorf("Progress = %d, want 100", lp.Progress)
	}
	if lp.Required != 300 {
		t.Errorf("Required = %d, want 300", lp.Required)
	}
	if lp.Percentage < 33.3 || lp.Percentage > 33.4 {
		t.Errorf("Percentage = %v, want ~33.3", lp.Percentage)
	}
	if lp.Max {
		t.Error("Max should be false below level 100")
	}
}

func TestNextLevelProgress_MaxLevel(t *testing.T) {
	lp := NextLevelProgress(XPForLevel(MaxDisplayLevel))
	if !lp.Max {
		t.Error("Max should be true at level 100")
	}
	if lp.Percentage != 100 {
		t.Errorf("Percentage = %v, want 100", lp.Percentage)
	}
}

func TestRankFor(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{1, "Rookie"},
		{4, "Rookie"},
		{5, "Code Cadet"},
		{9, "Code Cadet"},
		{10, "Developer"},
		{15, "Code Warrior"},
		{24, "Code Warrior"},
		{25, "Senior Developer"},
		{35, "Tech Lead"},
		{50, "Code Master"},
		{75, "Programming Guru"},
		{99, "Programming Guru"},
		{100, "Code Legend"},
		{250, "Code Legend"},
		{0, "Rookie"},
	}
	for _, tt := range tests {
		if got := RankFor(tt.level); got != tt.want {
			t.Errorf("RankFor(%d) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestDeriveLevel_ClampsHugeTotals(t *testing.T) {
	capped := DeriveLevel(MaxTotalXP)
	if capped != 4472 {
		t.Errorf("DeriveLevel(MaxTotalXP) = %d, want 4472", capped)
	}
	for _, xp := range []int{MaxTotalXP + 1, math.MaxInt32, math.MaxInt} {
		if got := DeriveLevel(xp); got != capped {
			t.Errorf("DeriveLevel(%d) = %d, want %d", xp, got, capped)
		}
	}
}
