package gamification

import (
	"math"
	"time"
)

const (
	maxSkillPoints       = 100
	multiplierStepLevels = 10
	multiplierStep       = 0.1
)

var skillIncrement = map[Difficulty]int{
	Beginner:     1,
	Intermediate: 2,
	Advanced:     3,
	Expert:       5,
}

// MultiplierSource holds the session-scoped global XP multiplier. It is not
// part of the persisted profile and resets when the process restarts.
type MultiplierSource interface {
	XPMultiplier() float64
	AddXPMultiplier(delta float64) float64
}

// Perk is a one-off unlock granted when a level is reached.
type Perk struct {
	Level           int     `json:"level"`
	Message         string  `json:"message"`
	MultiplierBonus float64 `json:"multiplierBonus,omitempty"`
}

// Progress is the result of applying one reward to a profile.
type Progress struct {
	PreviousLevel int    `json:"previousLevel"`
	Level         int    `json:"level"`
	LevelsGained  int    `json:"levelsGained"`
	LeveledUp     bool   `json:"leveledUp"`
	PreviousRank  string `json:"previousRank"`
	Rank          string `json:"rank"`
	RankChanged   bool   `json:"rankChanged"`
	Perks         []Perk `json:"perks,omitempty"`
}

// ApplyReward credits a solved challenge to p and re-derives level and rank
// from the new XP total. Level is never incremented directly.
func ApplyReward(p *Profile, b RewardBreakdown, category string, difficulty Difficulty) Progress {
	p.initMaps()
	prevLevel := max(p.Level, 1)
	prevRank := RankFor(prevLevel)

	p.TotalXP = min(p.TotalXP+b.FinalXP, MaxTotalXP)
	p.XP = min(p.XP+b.FinalXP, MaxTotalXP)

	cs := p.CategoryStats[category]
	cs.Solved++
	cs.Attempted = max(cs.Attempted, cs.Solved)
	cs.XP += b.FinalXP
	p.CategoryStats[category] = cs

	addSkillPoints(p, category, difficulty)
	RecomputeSuccessRate(p)

	p.Level = DeriveLevel(p.TotalXP)
	p.Rank = RankFor(p.Level)

	prog := Progress{
		PreviousLevel: prevLevel,
		Level:         p.Level,
		PreviousRank:  prevRank,
		Rank:          p.Rank,
		RankChanged:   prevRank != p.Rank,
	}
	if p.Level > prevLevel {
		prog.LeveledUp = true
		prog.LevelsGained = p.Level - prevLevel
		prog.Perks = levelPerks(prevLevel, p.Level)
	}
	return prog
}

// RecordAttempt counts a category attempt. Only the first submission of a
// challenge counts so retries do not drag the success rate down twice.
func RecordAttempt(p *Profile, category string, attempt int) {
	p.initMaps()
	if attempt == 1 {
		cs := p.CategoryStats[category]
		cs.Attempted++
		p.CategoryStats[category] = cs
	}
	RecomputeSuccessRate(p)
}

// RecomputeSuccessRate derives the success rate and solved count from the
// per-category totals.
func RecomputeSuccessRate(p *Profile) {
	solved, attempted := p.TotalSolved(), p.TotalAttempted()
	p.ChallengesSolved = solved
	if attempted == 0 {
		p.SuccessRate = 0
		return
	}
	p.SuccessRate = min(roundHalfUp(100*float64(solved)/float64(attempted)), 100)
}

// UpdateStreak advances the daily streak for a solve on today. lastSolved is
// the stored last-solved date ("" if never); the returned value replaces it.
func UpdateStreak(p *Profile, lastSolved string, today time.Time) string {
	todayKey := today.Format(dateLayout)
	if lastSolved == todayKey {
		return lastSolved
	}
	yesterday := today.AddDate(0, 0, -1).Format(dateLayout)
	if lastSolved == yesterday {
		p.Streak++
	} else {
		p.Streak = 1
	}
	p.DailyStreak = p.Streak
	p.MaxStreak = max(p.MaxStreak, p.Streak)
	return todayKey
}

// RecordSolveTime folds a solve duration into the fastest and average times.
// It must run after the solve has been counted in ChallengesSolved.
func RecordSolveTime(p *Profile, seconds int) {
	if seconds <= 0 {
		return
	}
	if p.FastestSolve == nil || seconds < *p.FastestSolve {
		v := seconds
		p.FastestSolve = &v
	}
	n := max(p.ChallengesSolved, 1)
	avg := (float64(p.AvgSolveTime)*float64(n-1) + float64(seconds)) / float64(n)
	p.AvgSolveTime = int(math.Round(avg))
}

// ApplyPerks adds each perk's multiplier bonus to the session source.
func ApplyPerks(src MultiplierSource, perks []Perk) {
	if src == nil {
		return
	}
	for _, pk := range perks {
		if pk.MultiplierBonus > 0 {
			src.AddXPMultiplier(pk.MultiplierBonus)
		}
	}
}

func addSkillPoints(p *Profile, category string, difficulty Difficulty) {
	skill := SkillFor(category)
	if skill == "" {
		return
	}
	inc, ok := skillIncrement[difficulty]
	if !ok {
		inc = skillIncrement[Beginner]
	}
	p.SkillPoints[skill] = min(max(p.SkillPoints[skill]+inc, 0), maxSkillPoints)
}

// levelPerks lists the perks for every level in (from, to].
func levelPerks(from, to int) []Perk {
	var perks []Perk
	for lvl := from + 1; lvl <= to; lvl++ {
		if lvl%5 == 0 {
			perks = append(perks, Perk{Level: lvl, Message: "New challenge category unlocked!"})
		}
		if lvl%multiplierStepLevels == 0 {
			perks = append(perks, Perk{Level: lvl, Message: "XP multiplier increased!", MultiplierBonus: multiplierStep})
		}
		switch lvl {
		case 25:
			perks = append(perks, Perk{Level: lvl, Message: "AI Code Review unlocked!"})
		case 50:
			perks = append(perks, Perk{Level: lvl, Message: "Certification system unlocked!"})
		}
	}
	return perks
}
