package gamification

import (
	"bytes"
	"encoding/json"
	"time"
)

const (
	defaultUsername = "NewCoder"
	dateLayout      = "2006-01-02"
)

// Difficulty is a challenge tier.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
	Expert       Difficulty = "expert"
)

// Difficulties lists every tier in ascending order.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced, Expert}

// Valid reports whether d is a known tier.
func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced, Expert:
		return true
	}
	return false
}

// Challenge categories.
const (
	CatAlgorithms         = "algorithms"
	CatDataStructures     = "data-structures"
	CatDynamicProgramming = "dynamic-programming"
	CatMachineLearning    = "machine-learning"
	CatWebDevelopment     = "web-development"
	CatDatabases          = "databases"
	CatCybersecurity      = "cybersecurity"
	CatMobileDevelopment  = "mobile-development"
)

// Categories lists every challenge category in display order.
var Categories = []string{
	CatAlgorithms,
	CatDataStructures,
	CatWebDevelopment,
	CatDatabases,
	CatMachineLearning,
	CatCybersecurity,
	CatMobileDevelopment,
	CatDynamicProgramming,
}

// categorySkill maps a challenge category to the skill it trains.
var categorySkill = map[string]string{
	CatAlgorithms:         "algorithms",
	CatDataStructures:     "dataStructures",
	CatWebDevelopment:     "webDev",
	CatCybersecurity:      "cybersecurity",
	CatMachineLearning:    "machineLearning",
	CatDatabases:          "databases",
	CatMobileDevelopment:  "mobileDev",
	CatDynamicProgramming: "dynamicProgramming",
}

// Skills lists every skill key in display order.
var Skills = []string{
	"algorithms",
	"dataStructures",
	"webDev",
	"cybersecurity",
	"machineLearning",
	"databases",
	"mobileDev",
	"dynamicProgramming",
}

// SkillFor returns the skill trained by category, or "" if none.
func SkillFor(category string) string {
	return categorySkill[category]
}

// CategoryStats tracks one category's solve history.
type CategoryStats struct {
	Solved    int `json:"solved"`
	Attempted int `json:"attempted"`
	XP        int `json:"xp"`
}

// Profile is the single persisted player record.
type Profile struct {
	ID       int    `json:"id"`
	Username string `json:"username"`

	// XP is the legacy running total kept alongside TotalXP; TotalXP is
	// authoritative and never smaller.
	XP      int    `json:"xp"`
	TotalXP int    `json:"totalXP"`
	Level   int    `json:"level"`
	Rank    string `json:"rank"`

	Streak        int    `json:"streak"`
	MaxStreak     int    `json:"maxStreak"`
	DailyStreak   int    `json:"dailyStreak"`
	LastLoginDate string `json:"lastLoginDate"`
	JoinDate      string `json:"joinDate"`
	TotalSessions int    `json:"totalSessions"`

	ChallengesSolved int  `json:"challengesSolved"`
	SuccessRate      int  `json:"successRate"`
	AvgSolveTime     int  `json:"avgSolveTime"`
	FastestSolve     *int `json:"fastestSolve"`
	WeeklyXP         int  `json:"weeklyXP"`
	MonthlyXP        int  `json:"monthlyXP"`

	CategoryStats map[string]CategoryStats `json:"categoryStats"`
	SkillPoints   map[string]int           `json:"skillPoints"`
	Achievements  []string                 `json:"achievements"`
}

// NewProfile returns the default record for a first-time player.
func NewProfile(now time.Time) *Profile {
	p := &Profile{
		ID:            1,
		Username:      defaultUsername,
		Level:         1,
		Rank:          RankFor(1),
		JoinDate:      now.Format(dateLayout),
		LastLoginDate: now.Format(dateLayout),
	}
	p.initMaps()
	return p
}

// HasAchievement reports whether id is in the unlocked set.
func (p *Profile) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// TotalAttempted sums attempted counts across categories.
func (p *Profile) TotalAttempted() int {
	n := 0
	for _, cs := range p.CategoryStats {
		n += cs.Attempted
	}
	return n
}

// TotalSolved sums solved counts across categories.
func (p *Profile) TotalSolved() int {
	n := 0
	for _, cs := range p.CategoryStats {
		n += cs.Solved
	}
	return n
}

// initMaps ensures every category and skill key is present.
func (p *Profile) initMaps() {
	if p.CategoryStats == nil {
		p.CategoryStats = make(map[string]CategoryStats, len(Categories))
	}
	for _, c := range Categories {
		if _, ok := p.CategoryStats[c]; !ok {
			p.CategoryStats[c] = CategoryStats{}
		}
	}
	if p.SkillPoints == nil {
		p.SkillPoints = make(map[string]int, len(Skills))
	}
	for _, s := range Skills {
		if _, ok := p.SkillPoints[s]; !ok {
			p.SkillPoints[s] = 0
		}
	}
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
}

// repair brings a loaded record back within its invariants, field by field.
// It reports whether anything was changed.
func (p *Profile) repair() bool {
	before := p.clone()

	if p.ID < 1 {
		p.ID = 1
	}
	if p.Username == "" {
		p.Username = defaultUsername
	}
	if p.XP < 0 {
		p.XP = 0
	}
	if p.TotalXP < 0 {
		p.TotalXP = 0
	}
	p.XP = min(p.XP, MaxTotalXP)
	p.TotalXP = min(p.TotalXP, MaxTotalXP)
	if p.TotalXP < p.XP {
		p.TotalXP = p.XP
	}
	if derived := DeriveLevel(p.TotalXP); p.Level < 1 || abs(p.Level-derived) > 1 {
		p.Level = derived
	}
	p.Rank = RankFor(p.Level)

	p.Streak = max(p.Streak, 0)
	p.MaxStreak = max(p.MaxStreak, p.Streak)
	p.DailyStreak = max(p.DailyStreak, 0)
	p.SuccessRate = min(max(p.SuccessRate, 0), 100)
	p.AvgSolveTime = max(p.AvgSolveTime, 0)
	if p.FastestSolve != nil && *p.FastestSolve < 0 {
		p.FastestSolve = nil
	}

	p.initMaps()
	for k, v := range p.SkillPoints {
		if v < 0 || v > 100 {
			p.SkillPoints[k] = 0
		}
	}
	for k, cs := range p.CategoryStats {
		cs.Solved = max(cs.Solved, 0)
		cs.Attempted = max(cs.Attempted, cs.Solved)
		cs.XP = max(cs.XP, 0)
		p.CategoryStats[k] = cs
	}
	p.Achievements = dedupe(p.Achievements)

	return !before.equal(p)
}

// clone returns a deep copy of p.
func (p *Profile) clone() *Profile {
	cp := *p
	cp.CategoryStats = make(map[string]CategoryStats, len(p.CategoryStats))
	for k, v := range p.CategoryStats {
		cp.CategoryStats[k] = v
	}
	cp.SkillPoints = make(map[string]int, len(p.SkillPoints))
	for k, v := range p.SkillPoints {
		cp.SkillPoints[k] = v
	}
	cp.Achievements = make([]string, len(p.Achievements))
	copy(cp.Achievements, p.Achievements)
	if p.FastestSolve != nil {
		v := *p.FastestSolve
		cp.FastestSolve = &v
	}
	return &cp
}

// Clone returns a deep copy safe to hand to other goroutines.
func (p *Profile) Clone() *Profile { return p.clone() }

func (p *Profile) equal(o *Profile) bool {
	a, errA := json.Marshal(p)
	b, errB := json.Marshal(o)
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
