package gamification

import "time"

const monthLayout = "2006-01"

// PeriodStats accumulates activity within one calendar period.
type PeriodStats struct {
	// Key identifies the period: a date for daily and weekly (the week's
	// Monday) buckets, a year-month for monthly ones.
	Key              string   `json:"key"`
	ChallengesSolved int      `json:"challengesSolved"`
	XPEarned         int      `json:"xpEarned"`
	TimeSpent        int      `json:"timeSpent"` // seconds
	CategoriesWorked []string `json:"categoriesWorked,omitempty"`
}

// Periods holds the rolling daily, weekly and monthly buckets.
type Periods struct {
	Daily   PeriodStats `json:"daily"`
	Weekly  PeriodStats `json:"weekly"`
	Monthly PeriodStats `json:"monthly"`
}

// dayKey, weekKey and monthKey use the local calendar of t.
func dayKey(t time.Time) string { return t.Format(dateLayout) }

func weekKey(t time.Time) string {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset).Format(dateLayout)
}

func monthKey(t time.Time) string { return t.Format(monthLayout) }

// Rotate resets any bucket whose period has rolled over. It reports whether
// anything was reset.
func (ps *Periods) Rotate(now time.Time) bool {
	changed := false
	if k := dayKey(now); ps.Daily.Key != k {
		ps.Daily = PeriodStats{Key: k}
		changed = true
	}
	if k := weekKey(now); ps.Weekly.Key != k {
		ps.Weekly = PeriodStats{Key: k}
		changed = true
	}
	if k := monthKey(now); ps.Monthly.Key != k {
		ps.Monthly = PeriodStats{Key: k}
		changed = true
	}
	return changed
}

// RecordSolve adds one solve to every bucket, rotating first.
func (ps *Periods) RecordSolve(now time.Time, category string, xp, seconds int) {
	ps.Rotate(now)
	for _, b := range []*PeriodStats{&ps.Daily, &ps.Weekly, &ps.Monthly} {
		b.ChallengesSolved++
		b.XPEarned += xp
		b.TimeSpent += max(seconds, 0)
	}
	if category != "" && !contains(ps.Daily.CategoriesWorked, category) {
		ps.Daily.CategoriesWorked = append(ps.Daily.CategoriesWorked, category)
	}
}

func (ps *Periods) clone() Periods {
	cp := *ps
	if ps.Daily.CategoriesWorked != nil {
		cp.Daily.CategoriesWorked = append([]string(nil), ps.Daily.CategoriesWorked...)
	}
	return cp
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
