package gamification

import (
	"math/rand"
	"sort"
)

var rivalNames = []string{
	"0X0806", "CodeNinja", "AlgoMaster", "DataWizard", "ByteBender", "LogicLord",
	"ScriptSage", "BugHunter", "CyberPunk", "DevDynamo", "TechTitan",
	"CodeCrusader", "PixelPioneer", "SyntaxSorcerer", "EliteCoder",
}

// LeaderboardEntry is one row of the leaderboard.
type LeaderboardEntry struct {
	Rank             int    `json:"rank"`
	Username         string `json:"username"`
	XP               int    `json:"xp"`
	Level            int    `json:"level"`
	ChallengesSolved int    `json:"challengesSolved"`
	Streak           int    `json:"streak"`
	You              bool   `json:"you,omitempty"`
}

// Rivals returns the fixed rival roster. The same seed always yields the
// same numbers.
func Rivals(seed int64) []LeaderboardEntry {
	rng := rand.New(rand.NewSource(seed))
	out := make([]LeaderboardEntry, 0, len(rivalNames))
	for i, name := range rivalNames {
		var e LeaderboardEntry
		switch i {
		case 0:
			e = LeaderboardEntry{Username: name, XP: 500000, ChallengesSolved: 5000, Streak: 365}
		case 1:
			e = LeaderboardEntry{Username: name, XP: 45000, ChallengesSolved: 4500, Streak: 300}
		default:
			e = LeaderboardEntry{
				Username:         name,
				XP:               2000 - (i-1)*50 + rng.Intn(100),
				ChallengesSolved: 300 - (i-1)*10 + rng.Intn(20),
				Streak:           rng.Intn(30) + 1,
			}
		}
		e.Level = DeriveLevel(e.XP)
		out = append(out, e)
	}
	return out
}

// Leaderboard ranks the player among the rivals by total XP. Ties go to the
// rival.
func Leaderboard(p *Profile, seed int64) []LeaderboardEntry {
	entries := Rivals(seed)
	entries = append(entries, LeaderboardEntry{
		Username:         p.Username,
		XP:               p.TotalXP,
		Level:            p.Level,
		ChallengesSolved: p.ChallengesSolved,
		Streak:           p.Streak,
		You:              true,
	})
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].XP != entries[j].XP {
			return entries[i].XP > entries[j].XP
		}
		return !entries[i].You && entries[j].You
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
