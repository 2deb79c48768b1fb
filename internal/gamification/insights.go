package gamification

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Insights is a derived summary of the player's habits.
type Insights struct {
	FavoriteCategory string   `json:"favoriteCategory"`
	LearningVelocity float64  `json:"learningVelocity"` // solves per day over the month
	ConsistencyScore int      `json:"consistencyScore"` // 0-100
	DaysActive       int      `json:"daysActive"`
	Recommendations  []string `json:"recommendations"`
}

// BuildInsights derives Insights from the profile and the period buckets.
func BuildInsights(p *Profile, ps Periods, now time.Time) Insights {
	days := daysSince(p.JoinDate, now)
	consistency := min(100, roundHalfUp(float64(p.Streak*3)+float64(days)/7*30))

	in := Insights{
		FavoriteCategory: favoriteCategory(p),
		LearningVelocity: math.Round(float64(ps.Monthly.ChallengesSolved)/30*10) / 10,
		ConsistencyScore: consistency,
		DaysActive:       days,
		Recommendations:  []string{},
	}

	if consistency < 50 {
		in.Recommendations = append(in.Recommendations, "Try to solve at least one challenge daily to improve consistency")
	}
	if skill, pts, ok := weakestSkill(p); ok && pts < 50 {
		in.Recommendations = append(in.Recommendations, fmt.Sprintf("Focus on %s to improve your weakest skill area", skill))
	}
	return in
}

// favoriteCategory is the category with the most solves, ties broken by
// display order. A player with no solves gets algorithms.
func favoriteCategory(p *Profile) string {
	best, bestSolved := CatAlgorithms, 0
	for _, c := range Categories {
		if n := p.CategoryStats[c].Solved; n > bestSolved {
			best, bestSolved = c, n
		}
	}
	return best
}

func weakestSkill(p *Profile) (string, int, bool) {
	if len(p.SkillPoints) == 0 {
		return "", 0, false
	}
	keys := make([]string, 0, len(p.SkillPoints))
	for k := range p.SkillPoints {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	weakest := keys[0]
	for _, k := range keys[1:] {
		if p.SkillPoints[k] < p.SkillPoints[weakest] {
			weakest = k
		}
	}
	return weakest, p.SkillPoints[weakest], true
}

func daysSince(date string, now time.Time) int {
	start, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		return 0
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return max(int(math.Round(today.Sub(start).Hours()/24)), 0)
}
