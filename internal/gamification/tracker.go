package gamification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const maxUsernameLen = 32

var (
	// ErrInvalidSubmission is returned for a submission without a category.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrInvalidUsername is returned by Rename for empty or oversized names.
	ErrInvalidUsername = errors.New("invalid username")
)

// Submission is one graded attempt at a challenge. Grading happens before
// the tracker sees it.
type Submission struct {
	ChallengeID    string     `json:"challengeId"`
	Category       string     `json:"category"`
	Difficulty     Difficulty `json:"difficulty"`
	ElapsedSeconds int        `json:"elapsedSeconds"`
	Attempts       int        `json:"attempts"`
	Success        bool       `json:"success"`
	At             time.Time  `json:"at"`
}

// Outcome is what a recorded submission produced.
type Outcome struct {
	Success   bool             `json:"success"`
	Breakdown *RewardBreakdown `json:"breakdown,omitempty"`
	Progress  *Progress        `json:"progress,omitempty"`
	Unlocked  []Achievement    `json:"-"`
	Profile   *Profile         `json:"profile"`
}

// Observer receives pipeline telemetry.
type Observer interface {
	ObserveSubmission(category string, difficulty Difficulty, success bool)
	ObserveReward(b RewardBreakdown)
	ObserveLevel(level int)
	ObserveAchievement(a Achievement)
	ObserveWriteError()
}

// RewardCallback is invoked after a successful submission is committed.
type RewardCallback func(sub Submission, b RewardBreakdown, p *Profile)

// LevelUpCallback is invoked when a submission raises the level.
type LevelUpCallback func(prog Progress)

// AchievementCallback is invoked for each newly unlocked achievement.
type AchievementCallback func(a Achievement)

// Tracker runs the submission pipeline: reward, progression, achievements,
// persistence. Every mutation is written through before the call returns;
// a failed write is logged and the in-memory state stays authoritative.
type Tracker struct {
	store    *ProfileStore
	engine   *AchievementEngine
	log      *slog.Logger
	now      func() time.Time
	observer Observer

	mu         sync.Mutex
	profile    *Profile
	lastSolved string
	counters   Counters
	periods    Periods

	onReward      RewardCallback
	onLevelUp     LevelUpCallback
	onAchievement AchievementCallback
}

// NewTracker loads player state from store. If the backend cannot be read
// the tracker starts from defaults and logs the failure.
func NewTracker(ctx context.Context, store *ProfileStore, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		store:  store,
		engine: NewAchievementEngine(),
		log:    logger,
		now:    time.Now,
	}
	t.reload(ctx)
	return t
}

func (t *Tracker) reload(ctx context.Context) {
	p, err := t.store.Load(ctx)
	if err != nil {
		t.log.Error("loading profile failed, starting from defaults", "error", err)
		p = NewProfile(t.now())
	}
	t.profile = p
	t.lastSolved = t.store.LastSolvedDate(ctx)
	t.counters = t.store.Counters(ctx)
	t.periods = t.store.Periods(ctx)
}

// SetObserver installs a telemetry sink. Must be called before use.
func (t *Tracker) SetObserver(o Observer) { t.observer = o }

// OnReward registers a callback for committed rewards.
func (t *Tracker) OnReward(cb RewardCallback) { t.onReward = cb }

// OnLevelUp registers a callback for level increases.
func (t *Tracker) OnLevelUp(cb LevelUpCallback) { t.onLevelUp = cb }

// OnAchievement registers a callback for unlocks.
func (t *Tracker) OnAchievement(cb AchievementCallback) { t.onAchievement = cb }

// Engine returns the achievement registry in use.
func (t *Tracker) Engine() *AchievementEngine { return t.engine }

// StartSession records a login: bumps the session count and login date.
func (t *Tracker) StartSession(ctx context.Context) *Profile {
	t.mu.Lock()
	t.profile.TotalSessions++
	t.profile.LastLoginDate = t.now().Format(dateLayout)
	snap := t.profile.clone()
	t.mu.Unlock()

	t.saveProfile(ctx, snap)
	return snap
}

// RecordOutcome applies a graded submission. mult supplies and receives the
// session XP multiplier; nil means 1.0 with no level-up bonus retained.
func (t *Tracker) RecordOutcome(ctx context.Context, mult MultiplierSource, sub Submission) (Outcome, error) {
	if strings.TrimSpace(sub.Category) == "" {
		return Outcome{}, fmt.Errorf("%w: missing category", ErrInvalidSubmission)
	}
	if !sub.Difficulty.Valid() {
		sub.Difficulty = Beginner
	}
	if sub.Attempts < 1 {
		sub.Attempts = 1
	}
	if sub.ElapsedSeconds < 1 {
		sub.ElapsedSeconds = defaultElapsedSecs
	}
	if sub.At.IsZero() {
		sub.At = t.now()
	}
	if t.observer != nil {
		t.observer.ObserveSubmission(sub.Category, sub.Difficulty, sub.Success)
	}

	global := 1.0
	if mult != nil {
		global = mult.XPMultiplier()
	}

	t.mu.Lock()
	p := t.profile
	RecordAttempt(p, sub.Category, sub.Attempts)

	if !sub.Success {
		snap := p.clone()
		t.mu.Unlock()
		t.saveProfile(ctx, snap)
		return Outcome{Success: false, Profile: snap}, nil
	}

	b := ComputeReward(RewardInput{
		Difficulty:       sub.Difficulty,
		Category:         sub.Category,
		ElapsedSeconds:   sub.ElapsedSeconds,
		Attempts:         sub.Attempts,
		Streak:           p.Streak,
		GlobalMultiplier: global,
	})
	t.lastSolved = UpdateStreak(p, t.lastSolved, sub.At)
	prog := ApplyReward(p, b, sub.Category, sub.Difficulty)
	RecordSolveTime(p, sub.ElapsedSeconds)

	ev := SolveEvent{
		ChallengeID:    sub.ChallengeID,
		Category:       sub.Category,
		Difficulty:     sub.Difficulty,
		ElapsedSeconds: sub.ElapsedSeconds,
		Attempts:       sub.Attempts,
		At:             sub.At,
	}
	t.counters.Count(ev)
	t.periods.RecordSolve(sub.At, sub.Category, b.FinalXP, sub.ElapsedSeconds)
	p.WeeklyXP = t.periods.Weekly.XPEarned
	p.MonthlyXP = t.periods.Monthly.XPEarned

	// Evaluate while still holding the lock so the snapshot is consistent.
	unlocked := t.engine.Evaluate(&Snapshot{Profile: p, Solve: ev, Counters: t.counters})

	snap := p.clone()
	lastSolved := t.lastSolved
	counters := t.counters
	periods := t.periods.clone()
	t.mu.Unlock()

	t.persist(ctx, snap, lastSolved, counters, periods)
	ApplyPerks(mult, prog.Perks)

	if t.observer != nil {
		t.observer.ObserveReward(b)
		t.observer.ObserveLevel(snap.Level)
		for _, a := range unlocked {
			t.observer.ObserveAchievement(a)
		}
	}

	// Dispatch callbacks outside the lock.
	if t.onReward != nil {
		t.onReward(sub, b, snap)
	}
	if prog.LeveledUp && t.onLevelUp != nil {
		t.onLevelUp(prog)
	}
	for _, a := range unlocked {
		if t.onAchievement == nil {
			break
		}
		t.onAchievement(a)
	}

	return Outcome{Success: true, Breakdown: &b, Progress: &prog, Unlocked: unlocked, Profile: snap}, nil
}

// Profile returns a deep copy of the current profile.
func (t *Tracker) Profile() *Profile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.profile.clone()
}

// Periods returns the period buckets as of now; stale buckets read as empty.
func (t *Tracker) Periods() Periods {
	t.mu.Lock()
	ps := t.periods.clone()
	t.mu.Unlock()
	ps.Rotate(t.now())
	return ps
}

// Counters returns the auxiliary achievement counters.
func (t *Tracker) Counters() Counters {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counters
}

// Insights derives habit insights from current state.
func (t *Tracker) Insights() Insights {
	p := t.Profile()
	return BuildInsights(p, t.Periods(), t.now())
}

// AchievementStatus pairs a registry entry with its unlock state.
type AchievementStatus struct {
	Achievement
	Unlocked bool
}

// Achievements lists the registry with unlock flags, in registry order.
func (t *Tracker) Achievements() ([]AchievementStatus, AchievementProgress) {
	p := t.Profile()
	reg := t.engine.Registry()
	out := make([]AchievementStatus, len(reg))
	for i, a := range reg {
		out[i] = AchievementStatus{Achievement: a, Unlocked: p.HasAchievement(a.ID)}
	}
	return out, t.engine.Progress(p)
}

// Rename changes the display name.
func (t *Tracker) Rename(ctx context.Context, name string) (*Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxUsernameLen {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUsername, name)
	}
	t.mu.Lock()
	t.profile.Username = name
	snap := t.profile.clone()
	t.mu.Unlock()

	t.saveProfile(ctx, snap)
	return snap, nil
}

// Reset wipes persisted state and starts a fresh profile.
func (t *Tracker) Reset(ctx context.Context) (*Profile, error) {
	if err := t.store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("resetting state: %w", err)
	}
	t.mu.Lock()
	t.profile = NewProfile(t.now())
	t.lastSolved = ""
	t.counters = Counters{}
	t.periods = Periods{}
	snap := t.profile.clone()
	t.mu.Unlock()

	t.saveProfile(ctx, snap)
	return snap, nil
}

func (t *Tracker) saveProfile(ctx context.Context, p *Profile) {
	if err := t.store.Save(ctx, p); err != nil {
		t.writeFailed("profile", err)
	}
}

func (t *Tracker) persist(ctx context.Context, p *Profile, lastSolved string, c Counters, ps Periods) {
	t.saveProfile(ctx, p)
	if err := t.store.SetLastSolvedDate(ctx, lastSolved); err != nil {
		t.writeFailed("last solved date", err)
	}
	if err := t.store.SaveCounters(ctx, c); err != nil {
		t.writeFailed("counters", err)
	}
	if err := t.store.SavePeriods(ctx, ps); err != nil {
		t.writeFailed("period stats", err)
	}
}

func (t *Tracker) writeFailed(what string, err error) {
	t.log.Error("failed to save "+what, "error", err)
	if t.observer != nil {
		t.observer.ObserveWriteError()
	}
}
