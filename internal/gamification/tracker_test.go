package gamification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/code-arsenal/arsenal/internal/kv"
)

type countingObserver struct {
	submissions  int
	rewards      int
	achievements int
	writeErrors  int
	lastLevel    int
}

func (o *countingObserver) ObserveSubmission(string, Difficulty, bool) { o.submissions++ }
func (o *countingObserver) ObserveReward(RewardBreakdown)              { o.rewards++ }
func (o *countingObserver) ObserveLevel(level int)                     { o.lastLevel = level }
func (o *countingObserver) ObserveAchievement(Achievement)             { o.achievements++ }
func (o *countingObserver) ObserveWriteError()                         { o.writeErrors++ }

func newTestTracker(t *testing.T, store kv.Store, now time.Time) *Tracker {
	t.Helper()
	ps := NewProfileStore(store, quietLogger())
	ps.now = func() time.Time { return now }
	tr := NewTracker(context.Background(), ps, quietLogger())
	tr.now = func() time.Time { return now }
	return tr
}

func solve(category string, d Difficulty, secs, attempts int, at time.Time) Submission {
	return Submission{
		ChallengeID:    "c-1",
		Category:       category,
		Difficulty:     d,
		ElapsedSeconds: secs,
		Attempts:       attempts,
		Success:        true,
		At:             at,
	}
}

func TestRecordOutcome_SuccessPipeline(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	mem := kv.NewMemory()
	tr := newTestTracker(t, mem, now)
	ctx := context.Background()

	out, err := tr.RecordOutcome(ctx, nil, solve(CatWebDevelopment, Beginner, 90, 1, now))
	if err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if !out.Success || out.Breakdown == nil {
		t.Fatalf("outcome = %+v, want success with breakdown", out)
	}
	if out.Breakdown.FinalXP != 54 {
		t.Errorf("FinalXP = %d, want 54", out.Breakdown.FinalXP)
	}

	p := tr.Profile()
	if p.TotalXP != 54 || p.XP != 54 {
		t.Errorf("TotalXP/XP = %d/%d, want 54/54", p.TotalXP, p.XP)
	}
	if p.Streak != 1 || p.ChallengesSolved != 1 || p.SuccessRate != 100 {
		t.Errorf("streak/solved/rate = %d/%d/%d, want 1/1/100", p.Streak, p.ChallengesSolved, p.SuccessRate)
	}
	if !p.HasAchievement("challenges-1") || !p.HasAchievement("speed-demon-beginner") {
		t.Errorf("Achievements = %v, want challenges-1 and speed-demon-beginner", p.Achievements)
	}
	if len(out.Unlocked) != 2 {
		t.Errorf("Unlocked = %d, want 2", len(out.Unlocked))
	}
	if c := tr.Counters(); c.PerfectSolves != 1 || c.NightSolves != 0 {
		t.Errorf("Counters = %+v", c)
	}
	ps := tr.Periods()
	if ps.Daily.XPEarned != 54 || ps.Weekly.ChallengesSolved != 1 || ps.Monthly.TimeSpent != 90 {
		t.Errorf("Periods = %+v", ps)
	}
	if p.WeeklyXP != 54 || p.MonthlyXP != 54 {
		t.Errorf("WeeklyXP/MonthlyXP = %d/%d, want 54/54", p.WeeklyXP, p.MonthlyXP)
	}

	// A fresh tracker on the same store sees the committed state.
	again := newTestTracker(t, mem, now)
	if got := again.Profile(); got.TotalXP != 54 || !got.HasAchievement("challenges-1") {
		t.Errorf("reloaded profile = %+v", got)
	}
	if again.lastSolved != "2026-03-10" {
		t.Errorf("reloaded lastSolved = %q", again.lastSolved)
	}
}

func TestRecordOutcome_FailureCountsAttemptOnly(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	tr := newTestTracker(t, kv.NewMemory(), now)

	sub := solve(CatAlgorithms, Intermediate, 200, 1, now)
	sub.Success = false
	out, err := tr.RecordOutcome(context.Background(), nil, sub)
	if err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if out.Success || out.Breakdown != nil {
		t.Errorf("failure outcome = %+v", out)
	}
	p := tr.Profile()
	if cs := p.CategoryStats[CatAlgorithms]; cs.Attempted != 1 || cs.Solved != 0 {
		t.Errorf("algorithms = %+v, want attempted 1 solved 0", cs)
	}
	if p.TotalXP != 0 || p.Streak != 0 || p.SuccessRate != 0 {
		t.Errorf("failure changed xp/streak/rate: %d/%d/%d", p.TotalXP, p.Streak, p.SuccessRate)
	}
}

func TestRecordOutcome_AttemptedNeverBelowSolved(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	tr := newTestTracker(t, kv.NewMemory(), now)
	ctx := context.Background()

	fail := solve(CatDatabases, Beginner, 100, 1, now)
	fail.Success = false
	steps := []Submission{
		fail,
		solve(CatDatabases, Beginner, 100, 2, now),
		// A first-seen submission already on attempt 3.
		solve(CatDatabases, Beginner, 100, 3, now),
		solve(CatDatabases, Beginner, 100, 1, now),
	}
	for i, sub := range steps {
		if _, err := tr.RecordOutcome(ctx, nil, sub); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		cs := tr.Profile().CategoryStats[CatDatabases]
		if cs.Attempted < cs.Solved {
			t.Fatalf("step %d: attempted %d < solved %d", i, cs.Attempted, cs.Solved)
		}
	}
	p := tr.Profile()
	if cs := p.CategoryStats[CatDatabases]; cs.Solved != 3 || cs.Attempted != 3 {
		t.Errorf("databases = %+v, want solved 3 attempted 3", cs)
	}
	if p.SuccessRate != 100 {
		t.Errorf("SuccessRate = %d, want 100", p.SuccessRate)
	}
}

func TestRecordOutcome_RejectsMissingCategory(t *testing.T) {
	tr := newTestTracker(t, kv.NewMemory(), time.Now())
	_, err := tr.RecordOutcome(context.Background(), nil, Submission{Success: true})
	if !errors.Is(err, ErrInvalidSubmission) {
		t.Errorf("err = %v, want ErrInvalidSubmission", err)
	}
}

func TestRecordOutcome_WriteFailuresAreSwallowed(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	broken := brokenKV{Store: kv.NewMemory(), putErr: errors.New("read-only filesystem")}
	tr := newTestTracker(t, broken, now)
	obs := &countingObserver{}
	tr.SetObserver(obs)

	out, err := tr.RecordOutcome(context.Background(), nil, solve(CatAlgorithms, Advanced, 400, 1, now))
	if err != nil {
		t.Fatalf("RecordOutcome returned %v, want write errors swallowed", err)
	}
	if out.Profile.TotalXP == 0 {
		t.Error("in-memory profile should still be updated")
	}
	if tr.Profile().TotalXP != out.Profile.TotalXP {
		t.Error("tracker state diverged from outcome")
	}
	if obs.writeErrors == 0 {
		t.Error("expected write errors to be observed")
	}
	if obs.submissions != 1 || obs.rewards != 1 {
		t.Errorf("observer submissions/rewards = %d/%d, want 1/1", obs.submissions, obs.rewards)
	}
}

func TestRecordOutcome_CallbacksAndLevelUp(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	tr := newTestTracker(t, kv.NewMemory(), now)

	var rewards, unlocks int
	var levelUp *Progress
	tr.OnReward(func(sub Submission, b RewardBreakdown, p *Profile) {
		rewards++
		if p.TotalXP != b.FinalXP {
			t.Errorf("callback profile TotalXP = %d, want %d", p.TotalXP, b.FinalXP)
		}
	})
	tr.OnLevelUp(func(prog Progress) { levelUp = &prog })
	tr.OnAchievement(func(Achievement) { unlocks++ })

	// 200 * 1.4 * 1.8 * 1.2 = 604.8 -> 605 XP, level 4.
	out, err := tr.RecordOutcome(context.Background(), nil, solve(CatMachineLearning, Expert, 60, 1, now))
	if err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if out.Breakdown.FinalXP != 605 {
		t.Errorf("FinalXP = %d, want 605", out.Breakdown.FinalXP)
	}
	if rewards != 1 {
		t.Errorf("reward callbacks = %d, want 1", rewards)
	}
	if levelUp == nil || levelUp.Level != 4 || levelUp.LevelsGained != 3 {
		t.Errorf("level up = %+v, want level 4 after gaining 3", levelUp)
	}
	if unlocks != len(out.Unlocked) || unlocks == 0 {
		t.Errorf("achievement callbacks = %d, unlocked = %d", unlocks, len(out.Unlocked))
	}
}

func TestRecordOutcome_LevelTenRaisesSessionMultiplier(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	mem := kv.NewMemory()
	seed := NewProfile(now)
	seed.TotalXP = XPForLevel(10) - 1
	seed.XP = seed.TotalXP
	seed.Level = 9
	if err := NewProfileStore(mem, quietLogger()).Save(context.Background(), seed); err != nil {
		t.Fatal(err)
	}
	tr := newTestTracker(t, mem, now)

	mult := &fakeMultiplier{m: 1.0}
	out, err := tr.RecordOutcome(context.Background(), mult, solve(CatWebDevelopment, Beginner, 700, 2, now))
	if err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if out.Progress.Level != 10 {
		t.Fatalf("Level = %d, want 10", out.Progress.Level)
	}
	if mult.m < 1.099 || mult.m > 1.101 {
		t.Errorf("session multiplier = %v, want 1.1", mult.m)
	}
}

func TestRecordOutcome_GlobalMultiplierApplied(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	tr := newTestTracker(t, kv.NewMemory(), now)

	// 25 * 1.0 * 1.0 (1000s) * 1.0 (2 attempts) * 1.0 * 2.0 = 50
	out, err := tr.RecordOutcome(context.Background(), &fakeMultiplier{m: 2.0}, solve(CatWebDevelopment, Beginner, 1000, 2, now))
	if err != nil {
		t.Fatal(err)
	}
	if out.Breakdown.FinalXP != 50 {
		t.Errorf("FinalXP = %d, want 50", out.Breakdown.FinalXP)
	}
}

func TestRecordOutcome_StreakAcrossDays(t *testing.T) {
	day1 := time.Date(2026, 3, 9, 23, 30, 0, 0, time.Local)
	day2 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	tr := newTestTracker(t, kv.NewMemory(), day1)
	ctx := context.Background()

	first, _ := tr.RecordOutcome(ctx, nil, solve(CatAlgorithms, Beginner, 500, 2, day1))
	tr.now = func() time.Time { return day2 }
	second, _ := tr.RecordOutcome(ctx, nil, solve(CatAlgorithms, Beginner, 500, 2, day2))
	third, _ := tr.RecordOutcome(ctx, nil, solve(CatAlgorithms, Beginner, 500, 2, day2))

	if first.Breakdown.StreakMultiplier != 1.0 {
		t.Errorf("first solve streak multiplier = %v, want 1.0 (pre-update streak 0)", first.Breakdown.StreakMultiplier)
	}
	if second.Breakdown.StreakMultiplier <= first.Breakdown.StreakMultiplier {
		t.Error("second-day solve should use the carried streak")
	}
	if third.Profile.Streak != 2 {
		t.Errorf("Streak = %d, want 2 (same day does not advance)", third.Profile.Streak)
	}
	c := tr.Counters()
	if c.NightSolves != 1 || c.EarlySolves != 2 {
		t.Errorf("Counters = %+v, want night 1 early 2", c)
	}
}

func TestRename(t *testing.T) {
	tr := newTestTracker(t, kv.NewMemory(), time.Now())
	ctx := context.Background()

	if _, err := tr.Rename(ctx, "   "); !errors.Is(err, ErrInvalidUsername) {
		t.Errorf("blank rename err = %v", err)
	}
	long := "abcdefghijklmnopqrstuvwxyz0123456789"
	if _, err := tr.Rename(ctx, long); !errors.Is(err, ErrInvalidUsername) {
		t.Errorf("long rename err = %v", err)
	}
	p, err := tr.Rename(ctx, "  grace  ")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if p.Username != "grace" || tr.Profile().Username != "grace" {
		t.Errorf("Username = %q", p.Username)
	}
}

func TestReset_StartsFresh(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	mem := kv.NewMemory()
	tr := newTestTracker(t, mem, now)
	ctx := context.Background()

	_, _ = tr.RecordOutcome(ctx, nil, solve(CatAlgorithms, Expert, 100, 1, now))
	p, err := tr.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if p.TotalXP != 0 || len(p.Achievements) != 0 {
		t.Errorf("after reset = %+v", p)
	}
	if c := tr.Counters(); c != (Counters{}) {
		t.Errorf("Counters after reset = %+v", c)
	}
	if d := NewProfileStore(mem, quietLogger()).LastSolvedDate(ctx); d != "" {
		t.Errorf("last solved date survived reset: %q", d)
	}
}

func TestStartSession(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	tr := newTestTracker(t, kv.NewMemory(), now)

	p := tr.StartSession(context.Background())
	if p.TotalSessions != 1 || p.LastLoginDate != "2026-03-10" {
		t.Errorf("sessions/login = %d/%q", p.TotalSessions, p.LastLoginDate)
	}
}

func TestAchievements_Listing(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	tr := newTestTracker(t, kv.NewMemory(), now)
	_, _ = tr.RecordOutcome(context.Background(), nil, solve(CatAlgorithms, Beginner, 500, 2, now))

	list, prog := tr.Achievements()
	if len(list) != prog.Total {
		t.Errorf("listed %d, total %d", len(list), prog.Total)
	}
	unlocked := 0
	for _, a := range list {
		if a.Unlocked {
			unlocked++
		}
	}
	if unlocked != prog.Unlocked || unlocked != 1 {
		t.Errorf("unlocked listed %d, progress %d, want 1", unlocked, prog.Unlocked)
	}
}
