package gamification

import (
	"fmt"
	"time"
)

// Tier represents an achievement's difficulty level.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// Group clusters related achievements in the UI.
type Group string

const (
	GroupProgress Group = "Progress"
	GroupSpeed    Group = "Speed"
	GroupStreaks  Group = "Streaks"
	GroupMastery  Group = "Category Mastery"
	GroupSpecial  Group = "Special"
)

// Auxiliary counter thresholds.
const (
	nightOwlSolves      = 20
	earlyBirdSolves     = 20
	perfectionistSolves = 10
)

// SolveEvent describes the successful submission being evaluated.
type SolveEvent struct {
	ChallengeID    string     `json:"challengeId"`
	Category       string     `json:"category"`
	Difficulty     Difficulty `json:"difficulty"`
	ElapsedSeconds int        `json:"elapsedSeconds"`
	Attempts       int        `json:"attempts"`
	At             time.Time  `json:"at"`
}

// Counters are the separately persisted running counts for time-of-day and
// first-attempt achievements.
type Counters struct {
	NightSolves   int `json:"nightSolves"`
	EarlySolves   int `json:"earlySolves"`
	PerfectSolves int `json:"perfectSolves"`
}

// Count bumps each counter the solve qualifies for. Night covers 22:00
// through 06:59 and early 05:00 through 09:59, so 05:00-06:59 counts twice.
func (c *Counters) Count(ev SolveEvent) {
	hour := ev.At.Hour()
	if hour >= 22 || hour <= 6 {
		c.NightSolves++
	}
	if hour >= 5 && hour <= 9 {
		c.EarlySolves++
	}
	if ev.Attempts == 1 {
		c.PerfectSolves++
	}
}

// Snapshot is the state an achievement condition is checked against.
type Snapshot struct {
	Profile  *Profile
	Solve    SolveEvent
	Counters Counters
}

// Achievement describes a single unlockable goal.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Tier        Tier
	Group       Group
	// Condition reports whether the achievement is earned by this snapshot.
	Condition func(*Snapshot) bool
}

// AchievementProgress summarises how much of the registry is unlocked.
type AchievementProgress struct {
	Total      int `json:"total"`
	Unlocked   int `json:"unlocked"`
	Percentage int `json:"percentage"`
}

// AchievementEngine holds the registry and evaluates which achievements a
// snapshot newly unlocks.
type AchievementEngine struct {
	registry []Achievement
	byID     map[string]Achievement
}

// NewAchievementEngine creates an engine pre-loaded with the full achievement set.
func NewAchievementEngine() *AchievementEngine {
	reg := buildRegistry()
	byID := make(map[string]Achievement, len(reg))
	for _, a := range reg {
		byID[a.ID] = a
	}
	return &AchievementEngine{registry: reg, byID: byID}
}

// Registry returns a shallow copy of all registered achievements.
func (e *AchievementEngine) Registry() []Achievement {
	out := make([]Achievement, len(e.registry))
	copy(out, e.registry)
	return out
}

// Lookup returns the registered achievement with the given ID.
func (e *AchievementEngine) Lookup(id string) (Achievement, bool) {
	a, ok := e.byID[id]
	return a, ok
}

// Evaluate checks every not-yet-unlocked achievement. Newly passing IDs are
// appended to snap.Profile.Achievements and returned; an ID already present
// is never emitted again. The caller persists the profile.
func (e *AchievementEngine) Evaluate(snap *Snapshot) []Achievement {
	p := snap.Profile
	p.initMaps()
	var unlocked []Achievement
	for _, a := range e.registry {
		if p.HasAchievement(a.ID) {
			continue
		}
		if a.Condition(snap) {
			p.Achievements = append(p.Achievements, a.ID)
			unlocked = append(unlocked, a)
		}
	}
	return unlocked
}

// Progress reports unlocked/total for p. Unknown IDs in p are not counted.
func (e *AchievementEngine) Progress(p *Profile) AchievementProgress {
	n := 0
	for _, id := range p.Achievements {
		if _, ok := e.byID[id]; ok {
			n++
		}
	}
	total := len(e.registry)
	pct := 0
	if total > 0 {
		pct = roundHalfUp(float64(n) / float64(total) * 100)
	}
	return AchievementProgress{Total: total, Unlocked: n, Percentage: pct}
}

var solveMilestones = []struct {
	N    int
	Name string
	Tier Tier
}{
	{1, "First Steps", TierBronze},
	{5, "Warming Up", TierBronze},
	{10, "Rising Challenger", TierBronze},
	{25, "Problem Solver", TierSilver},
	{50, "Dedicated Solver", TierSilver},
	{100, "Century Club", TierGold},
	{250, "Code Crusher", TierGold},
	{500, "Elite Programmer", TierPlatinum},
	{1000, "Thousand Solutions", TierPlatinum},
}

var speedThresholds = []struct {
	Difficulty Difficulty
	Seconds    int
	Name       string
	Tier       Tier
}{
	{Beginner, 120, "Quick Starter", TierBronze},
	{Intermediate, 300, "Speed Coder", TierSilver},
	{Advanced, 600, "Lightning Fast", TierGold},
	{Expert, 1200, "Time Master", TierPlatinum},
}

var streakMilestones = []struct {
	N    int
	Name string
	Tier Tier
}{
	{5, "Getting Consistent", TierBronze},
	{10, "Habit Former", TierBronze},
	{15, "Fortnight Focus", TierSilver},
	{30, "Unstoppable", TierGold},
	{50, "Iron Will", TierGold},
	{100, "Legend", TierPlatinum},
}

var masteryMilestones = []struct {
	N      int
	Suffix string
	Tier   Tier
}{
	{10, "Apprentice", TierBronze},
	{25, "Adept", TierSilver},
	{50, "Expert", TierGold},
	{100, "Master", TierPlatinum},
}

var categoryLabels = map[string]string{
	CatAlgorithms:         "Algorithms",
	CatDataStructures:     "Data Structures",
	CatWebDevelopment:     "Web Development",
	CatDatabases:          "Databases",
	CatMachineLearning:    "Machine Learning",
	CatCybersecurity:      "Cybersecurity",
	CatMobileDevelopment:  "Mobile Development",
	CatDynamicProgramming: "Dynamic Programming",
}

// CategoryLabel returns the display name for a category.
func CategoryLabel(category string) string {
	if l, ok := categoryLabels[category]; ok {
		return l
	}
	return category
}

// Milestone checks compare with == on purpose: an achievement is earned at
// the solve where the counter lands on the milestone. A counter repaired
// past a milestone never earns it.
func buildRegistry() []Achievement {
	var reg []Achievement

	for _, m := range solveMilestones {
		n := m.N
		desc := fmt.Sprintf("Solve %d challenges", n)
		if n == 1 {
			desc = "Solve your first challenge"
		}
		reg = append(reg, Achievement{
			ID: fmt.Sprintf("challenges-%d", n), Name: m.Name,
			Description: desc,
			Tier:        m.Tier, Group: GroupProgress,
			Condition: func(s *Snapshot) bool { return s.Profile.ChallengesSolved == n },
		})
	}

	for _, st := range speedThresholds {
		d, secs := st.Difficulty, st.Seconds
		reg = append(reg, Achievement{
			ID: fmt.Sprintf("speed-demon-%s", d), Name: st.Name,
			Description: fmt.Sprintf("Solve %s %s challenge in under %d minutes", article(d), d, secs/60),
			Tier:        st.Tier, Group: GroupSpeed,
			Condition: func(s *Snapshot) bool {
				return s.Solve.Difficulty == d && s.Solve.ElapsedSeconds > 0 && s.Solve.ElapsedSeconds < secs
			},
		})
	}

	for _, m := range streakMilestones {
		n := m.N
		reg = append(reg, Achievement{
			ID: fmt.Sprintf("streak-%d", n), Name: m.Name,
			Description: fmt.Sprintf("Maintain a %d-day streak", n),
			Tier:        m.Tier, Group: GroupStreaks,
			Condition: func(s *Snapshot) bool { return s.Profile.Streak == n },
		})
	}

	for _, cat := range Categories {
		for _, m := range masteryMilestones {
			c, n := cat, m.N
			reg = append(reg, Achievement{
				ID: fmt.Sprintf("%s-%d", c, n), Name: CategoryLabel(c) + " " + m.Suffix,
				Description: fmt.Sprintf("Solve %d %s challenges", n, CategoryLabel(c)),
				Tier:        m.Tier, Group: GroupMastery,
				Condition: func(s *Snapshot) bool {
					return s.Solve.Category == c && s.Profile.CategoryStats[c].Solved == n
				},
			})
		}
	}

	reg = append(reg,
		Achievement{
			ID: "night-owl", Name: "Night Owl",
			Description: fmt.Sprintf("Solve %d challenges between 10 PM and 7 AM", nightOwlSolves),
			Tier:        TierSilver, Group: GroupSpecial,
			Condition: func(s *Snapshot) bool { return s.Counters.NightSolves >= nightOwlSolves },
		},
		Achievement{
			ID: "early-bird", Name: "Early Bird",
			Description: fmt.Sprintf("Solve %d challenges between 5 AM and 10 AM", earlyBirdSolves),
			Tier:        TierSilver, Group: GroupSpecial,
			Condition: func(s *Snapshot) bool { return s.Counters.EarlySolves >= earlyBirdSolves },
		},
		Achievement{
			ID: "perfectionist", Name: "Perfectionist",
			Description: fmt.Sprintf("Solve %d challenges on the first attempt", perfectionistSolves),
			Tier:        TierGold, Group: GroupSpecial,
			Condition: func(s *Snapshot) bool { return s.Counters.PerfectSolves >= perfectionistSolves },
		},
	)

	return reg
}

func article(d Difficulty) string {
	switch d {
	case Intermediate, Advanced, Expert:
		return "an"
	}
	return "a"
}
