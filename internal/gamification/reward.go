package gamification

import "math"

const (
	minRewardXP        = 5
	defaultElapsedSecs = 600
	streakStep         = 0.05
	streakCap          = 2.0
)

// baseXP is the reward before any multiplier, per tier.
var baseXP = map[Difficulty]int{
	Beginner:     25,
	Intermediate: 50,
	Advanced:     100,
	Expert:       200,
}

var categoryMultipliers = map[string]float64{
	CatAlgorithms:         1.2,
	CatDataStructures:     1.1,
	CatDynamicProgramming: 1.3,
	CatMachineLearning:    1.4,
	CatWebDevelopment:     1.0,
	CatDatabases:          1.1,
	CatCybersecurity:      1.3,
	CatMobileDevelopment:  1.1,
}

// RewardInput is everything the calculator needs for one solve.
type RewardInput struct {
	Difficulty       Difficulty
	Category         string
	ElapsedSeconds   int
	Attempts         int
	Streak           int
	GlobalMultiplier float64
}

// RewardBreakdown is the per-solve XP computation, kept for display.
// Bonus fields are deltas between successive stages; a negative
// AttemptBonus or TimeBonus is a penalty.
type RewardBreakdown struct {
	Difficulty Difficulty `json:"difficulty"`
	Category   string     `json:"category"`

	Base int `json:"base"`

	CategoryMultiplier float64 `json:"categoryMultiplier"`
	TimeMultiplier     float64 `json:"timeMultiplier"`
	AttemptMultiplier  float64 `json:"attemptMultiplier"`
	StreakMultiplier   float64 `json:"streakMultiplier"`
	GlobalMultiplier   float64 `json:"globalMultiplier"`

	CategoryBonus int `json:"categoryBonus"`
	TimeBonus     int `json:"timeBonus"`
	AttemptBonus  int `json:"attemptBonus"`
	StreakBonus   int `json:"streakBonus"`
	GlobalBonus   int `json:"globalBonus"`

	AfterCategory int `json:"afterCategory"`
	AfterTime     int `json:"afterTime"`
	AfterAttempts int `json:"afterAttempts"`
	AfterStreak   int `json:"afterStreak"`

	FinalXP int `json:"finalXP"`
}

// BaseXP returns the unmultiplied reward for a tier. Unknown tiers fall back
// to beginner.
func BaseXP(d Difficulty) int {
	if v, ok := baseXP[d]; ok {
		return v
	}
	return baseXP[Beginner]
}

// CategoryMultiplier returns the category weighting, 1.0 for unknown categories.
func CategoryMultiplier(category string) float64 {
	if m, ok := categoryMultipliers[category]; ok {
		return m
	}
	return 1.0
}

// TimeMultiplier rewards fast solves and penalises very slow ones.
func TimeMultiplier(elapsedSeconds int) float64 {
	switch {
	case elapsedSeconds < 120:
		return 1.8
	case elapsedSeconds < 300:
		return 1.5
	case elapsedSeconds < 600:
		return 1.3
	case elapsedSeconds < 900:
		return 1.1
	case elapsedSeconds > 1800:
		return 0.8
	default:
		return 1.0
	}
}

// AttemptMultiplier decays by 0.2 per extra attempt, floored at 0.3.
func AttemptMultiplier(attempts int) float64 {
	return math.Max(0.3, 1.2-0.2*float64(attempts-1))
}

// StreakMultiplier grows 5% per streak day, capped at +200%.
func StreakMultiplier(streak int) float64 {
	return 1.0 + math.Min(float64(streak)*streakStep, streakCap)
}

// ComputeReward maps one solve to an XP breakdown. Out-of-range inputs are
// clamped rather than rejected.
func ComputeReward(in RewardInput) RewardBreakdown {
	if !in.Difficulty.Valid() {
		in.Difficulty = Beginner
	}
	if in.ElapsedSeconds < 1 {
		in.ElapsedSeconds = defaultElapsedSecs
	}
	if in.Attempts < 1 {
		in.Attempts = 1
	}
	if in.Streak < 0 {
		in.Streak = 0
	}
	if in.GlobalMultiplier <= 0 || math.IsNaN(in.GlobalMultiplier) || math.IsInf(in.GlobalMultiplier, 0) {
		in.GlobalMultiplier = 1.0
	}

	base := float64(BaseXP(in.Difficulty))
	cm := CategoryMultiplier(in.Category)
	tm := TimeMultiplier(in.ElapsedSeconds)
	am := AttemptMultiplier(in.Attempts)
	sm := StreakMultiplier(in.Streak)
	gm := in.GlobalMultiplier

	afterCategory := base * cm
	afterTime := afterCategory * tm
	afterAttempts := afterTime * am
	afterStreak := afterAttempts * sm
	total := afterStreak * gm

	return RewardBreakdown{
		Difficulty: in.Difficulty,
		Category:   in.Category,
		Base:       int(base),

		CategoryMultiplier: cm,
		TimeMultiplier:     tm,
		AttemptMultiplier:  am,
		StreakMultiplier:   sm,
		GlobalMultiplier:   gm,

		CategoryBonus: roundHalfUp(base * (cm - 1)),
		TimeBonus:     roundHalfUp(afterCategory * (tm - 1)),
		AttemptBonus:  roundHalfUp(afterTime * (am - 1)),
		StreakBonus:   roundHalfUp(afterAttempts * (sm - 1)),
		GlobalBonus:   roundHalfUp(afterStreak * (gm - 1)),

		AfterCategory: roundHalfUp(afterCategory),
		AfterTime:     roundHalfUp(afterTime),
		AfterAttempts: roundHalfUp(afterAttempts),
		AfterStreak:   roundHalfUp(afterStreak),

		FinalXP: max(minRewardXP, roundHalfUp(total)),
	}
}

// roundHalfUp rounds .5 toward positive infinity, so -2.5 becomes -2.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
