package gamification

import (
	"testing"
	"time"
)

type fakeMultiplier struct{ m float64 }

func (f *fakeMultiplier) XPMultiplier() float64 { return f.m }
func (f *fakeMultiplier) AddXPMultiplier(d float64) float64 {
	f.m += d
	return f.m
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(dateLayout+" 15:04", s, time.Local)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestApplyReward_AccumulatesAndDerivesLevel(t *testing.T) {
	p := NewProfile(time.Now())
	b := RewardBreakdown{FinalXP: 150}

	prog := ApplyReward(p, b, CatAlgorithms, Intermediate)

	if p.TotalXP != 150 || p.XP != 150 {
		t.Errorf("TotalXP/XP = %d/%d, want 150/150", p.TotalXP, p.XP)
	}
	if p.Level != 2 {
		t.Errorf("Level = %d, want 2", p.Level)
	}
	if !prog.LeveledUp || prog.LevelsGained != 1 {
		t.Errorf("LeveledUp/LevelsGained = %v/%d, want true/1", prog.LeveledUp, prog.LevelsGained)
	}
	cs := p.CategoryStats[CatAlgorithms]
	if cs.Solved != 1 || cs.XP != 150 {
		t.Errorf("category stats = %+v, want solved 1 xp 150", cs)
	}
	if cs.Attempted < cs.Solved {
		t.Errorf("attempted %d < solved %d", cs.Attempted, cs.Solved)
	}
	if p.SkillPoints["algorithms"] != 2 {
		t.Errorf("algorithms skill = %d, want 2", p.SkillPoints["algorithms"])
	}
	if p.ChallengesSolved != 1 {
		t.Errorf("ChallengesSolved = %d, want 1", p.ChallengesSolved)
	}
}

func TestApplyReward_MultipleLevelsAndPerks(t *testing.T) {
	p := NewProfile(time.Now())
	p.TotalXP = XPForLevel(9)
	p.XP = p.TotalXP
	p.Level = 9

	need := XPForLevel(11) - p.TotalXP
	prog := ApplyReward(p, RewardBreakdown{FinalXP: need}, CatDatabases, Expert)

	if prog.LevelsGained != 2 {
		t.Fatalf("LevelsGained = %d, want 2", prog.LevelsGained)
	}
	if prog.Rank != "Developer" || !prog.RankChanged {
		t.Errorf("Rank = %q changed=%v, want Developer/true", prog.Rank, prog.RankChanged)
	}

	var bonus float64
	var msgs []string
	for _, pk := range prog.Perks {
		bonus += pk.MultiplierBonus
		msgs = append(msgs, pk.Message)
	}
	if len(prog.Perks) != 2 {
		t.Errorf("perks = %v, want category unlock + multiplier at level 10", msgs)
	}
	if bonus < 0.099 || bonus > 0.101 {
		t.Errorf("multiplier bonus = %v, want 0.1", bonus)
	}

	src := &fakeMultiplier{m: 1.0}
	ApplyPerks(src, prog.Perks)
	if src.m < 1.099 || src.m > 1.101 {
		t.Errorf("session multiplier = %v, want 1.1", src.m)
	}
}

func TestLevelPerks_Milestones(t *testing.T) {
	perks := levelPerks(24, 25)
	found := false
	for _, pk := range perks {
		if pk.Message == "AI Code Review unlocked!" {
			found = true
		}
	}
	if !found {
		t.Errorf("levelPerks(24,25) = %+v, want AI Code Review", perks)
	}

	perks = levelPerks(49, 50)
	// 50 is a multiple of 5 and 10 and the certification milestone.
	if len(perks) != 3 {
		t.Errorf("levelPerks(49,50) = %+v, want 3 perks", perks)
	}

	if perks := levelPerks(1, 4); len(perks) != 0 {
		t.Errorf("levelPerks(1,4) = %+v, want none", perks)
	}
}

func TestApplyReward_SkillPointsClamped(t *testing.T) {
	p := NewProfile(time.Now())
	p.SkillPoints["machineLearning"] = 98

	ApplyReward(p, RewardBreakdown{FinalXP: 10}, CatMachineLearning, Expert)

	if got := p.SkillPoints["machineLearning"]; got != 100 {
		t.Errorf("machineLearning = %d, want 100", got)
	}
}

func TestSkillFor_EveryCategoryMapped(t *testing.T) {
	skills := make(map[string]bool)
	for _, s := range Skills {
		skills[s] = true
	}
	for _, c := range Categories {
		s := SkillFor(c)
		if s == "" {
			t.Errorf("category %q has no skill", c)
		} else if !skills[s] {
			t.Errorf("category %q maps to unknown skill %q", c, s)
		}
	}
}

func TestRecordAttempt_OnlyFirstAttemptCounts(t *testing.T) {
	p := NewProfile(time.Now())
	RecordAttempt(p, CatAlgorithms, 1)
	RecordAttempt(p, CatAlgorithms, 2)
	RecordAttempt(p, CatAlgorithms, 3)

	if got := p.CategoryStats[CatAlgorithms].Attempted; got != 1 {
		t.Errorf("Attempted = %d, want 1", got)
	}
}

func TestRecomputeSuccessRate(t *testing.T) {
	p := NewProfile(time.Now())
	p.CategoryStats[CatAlgorithms] = CategoryStats{Solved: 2, Attempted: 3}
	p.CategoryStats[CatDatabases] = CategoryStats{Solved: 1, Attempted: 3}

	RecomputeSuccessRate(p)

	if p.SuccessRate != 50 {
		t.Errorf("SuccessRate = %d, want 50", p.SuccessRate)
	}
	if p.ChallengesSolved != 3 {
		t.Errorf("ChallengesSolved = %d, want 3", p.ChallengesSolved)
	}

	empty := NewProfile(time.Now())
	RecomputeSuccessRate(empty)
	if empty.SuccessRate != 0 {
		t.Errorf("empty SuccessRate = %d, want 0", empty.SuccessRate)
	}
}

func TestUpdateStreak(t *testing.T) {
	today := mustDate(t, "2026-03-10 14:00")

	tests := []struct {
		name       string
		streak     int
		lastSolved string
		want       int
	}{
		{"first ever", 0, "", 1},
		{"same day", 4, "2026-03-10", 4},
		{"yesterday", 4, "2026-03-09", 5},
		{"gap", 4, "2026-03-07", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProfile(today)
			p.Streak = tt.streak
			p.MaxStreak = tt.streak
			got := UpdateStreak(p, tt.lastSolved, today)
			if p.Streak != tt.want {
				t.Errorf("Streak = %d, want %d", p.Streak, tt.want)
			}
			if got != "2026-03-10" {
				t.Errorf("returned date = %q, want 2026-03-10", got)
			}
			if p.MaxStreak < p.Streak {
				t.Errorf("MaxStreak %d < Streak %d", p.MaxStreak, p.Streak)
			}
		})
	}
}

func TestUpdateStreak_AcrossMonthBoundary(t *testing.T) {
	p := NewProfile(time.Now())
	p.Streak = 2
	UpdateStreak(p, "2026-02-28", mustDate(t, "2026-03-01 09:00"))
	if p.Streak != 3 {
		t.Errorf("Streak = %d, want 3", p.Streak)
	}
}

func TestRecordSolveTime(t *testing.T) {
	p := NewProfile(time.Now())

	p.ChallengesSolved = 1
	RecordSolveTime(p, 300)
	p.ChallengesSolved = 2
	RecordSolveTime(p, 100)
	p.ChallengesSolved = 3
	RecordSolveTime(p, 200)

	if p.FastestSolve == nil || *p.FastestSolve != 100 {
		t.Errorf("FastestSolve = %v, want 100", p.FastestSolve)
	}
	if p.AvgSolveTime != 200 {
		t.Errorf("AvgSolveTime = %d, want 200", p.AvgSolveTime)
	}
}
