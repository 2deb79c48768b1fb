// Package app wires the engine, catalog, session and assistant into the
// operations every surface shares: open, submit, chat and terminal.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/code-arsenal/arsenal/internal/assistant"
	"github.com/code-arsenal/arsenal/internal/catalog"
	"github.com/code-arsenal/arsenal/internal/config"
	"github.com/code-arsenal/arsenal/internal/gamification"
	"github.com/code-arsenal/arsenal/internal/kv"
	"github.com/code-arsenal/arsenal/internal/session"
)

// App owns the long-lived components for one process.
type App struct {
	Tracker   *gamification.Tracker
	Catalog   *catalog.Catalog
	Grader    catalog.Grader
	Session   *session.Session
	Assistant *assistant.Assistant
	Terminal  *assistant.Terminal

	// mu serialises Submit and Reset so a challenge is credited once.
	mu    sync.Mutex
	store kv.Store
	seed  int64
	log   *slog.Logger
	now   func() time.Time
}

// Options carries the pieces New does not build from config. Zero values
// select the defaults.
type Options struct {
	Store  kv.Store       // nil opens cfg.Storage
	Grader catalog.Grader // nil uses a RandomGrader with cfg.Grading
	Now    func() time.Time
}

// New builds an App from cfg.
func New(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	store := opts.Store
	if store == nil {
		var err error
		store, err = kv.Open(cfg.Storage.Backend, cfg.Storage.Dir)
		if err != nil {
			return nil, fmt.Errorf("opening %s store: %w", cfg.Storage.Backend, err)
		}
	}

	grader := opts.Grader
	if grader == nil {
		grader = catalog.NewRandomGrader(rand.NewSource(now().UnixNano()), cfg.Grading)
	}

	asst, err := assistant.New(rand.NewSource(now().UnixNano()), logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	a := &App{
		Tracker:   gamification.NewTracker(ctx, gamification.NewProfileStore(store, logger), logger),
		Catalog:   catalog.New(catalog.Generate(cfg.Catalog.Seed, cfg.Catalog.Size)),
		Grader:    grader,
		Session:   session.New(now()),
		Assistant: asst,
		store:     store,
		seed:      cfg.Catalog.Seed,
		log:       logger,
		now:       now,
	}
	a.Terminal = assistant.NewTerminal(a.Tracker, a.Catalog, a.Session, a.seed)

	logger.Info("engine ready",
		"session", a.Session.ID,
		"backend", cfg.Storage.Backend,
		"challenges", a.Catalog.Len(),
	)
	return a, nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.store.Close()
}

// Seed is the catalog seed, also used for the rival roster.
func (a *App) Seed() int64 { return a.seed }

// Open starts an attempt on a challenge and returns it with its starter code.
func (a *App) Open(id string) (catalog.Challenge, session.Attempt, error) {
	ch, err := a.Catalog.Get(id)
	if err != nil {
		return catalog.Challenge{}, session.Attempt{}, err
	}
	if ch.Completed {
		return ch, session.Attempt{}, fmt.Errorf("%w: %s", catalog.ErrChallengeCompleted, id)
	}
	return ch, a.Session.Open(id, a.now()), nil
}

// SubmitResult is the outcome of one graded submission.
type SubmitResult struct {
	Challenge catalog.Challenge    `json:"challenge"`
	Success   bool                 `json:"success"`
	Attempts  int                  `json:"attempts"`
	Hint      bool                 `json:"hint"`
	Outcome   gamification.Outcome `json:"outcome"`
}

// Submit grades an attempt at challenge id and feeds the result to the
// tracker. A challenge that was never opened is opened implicitly. elapsed
// overrides the session clock when positive.
func (a *App) Submit(ctx context.Context, id string, elapsed int) (SubmitResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ch, err := a.Catalog.Get(id)
	if err != nil {
		return SubmitResult{}, err
	}
	if ch.Completed {
		return SubmitResult{}, fmt.Errorf("%w: %s", catalog.ErrChallengeCompleted, id)
	}

	now := a.now()
	a.Session.Open(id, now)
	if elapsed <= 0 {
		elapsed = a.Session.Elapsed(id, now)
	}

	att, err := a.Session.Submit(id)
	if err != nil {
		return SubmitResult{}, err
	}
	success := a.Grader.Grade(ch.Difficulty)
	if !success {
		if att, err = a.Session.Fail(id); err != nil {
			return SubmitResult{}, err
		}
	}

	out, err := a.Tracker.RecordOutcome(ctx, a.Session, gamification.Submission{
		ChallengeID:    id,
		Category:       ch.Category,
		Difficulty:     ch.Difficulty,
		ElapsedSeconds: elapsed,
		Attempts:       att.Submissions,
		Success:        success,
		At:             now,
	})
	if err != nil {
		return SubmitResult{}, err
	}

	if success {
		if ch, err = a.Catalog.MarkCompleted(id, now); err != nil && !errors.Is(err, catalog.ErrChallengeCompleted) {
			return SubmitResult{}, err
		}
		a.Session.Close(id)
		a.log.Info("challenge solved",
			"challenge", id,
			"xp", out.Breakdown.FinalXP,
			"level", out.Profile.Level,
			"attempts", att.Submissions,
		)
	} else {
		a.log.Debug("submission failed", "challenge", id, "failures", att.Failures, "hint", att.Hint)
	}

	return SubmitResult{
		Challenge: ch,
		Success:   success,
		Attempts:  att.Submissions,
		Hint:      att.Hint,
		Outcome:   out,
	}, nil
}

// Reset wipes the player's progress along with the session attempts,
// multiplier and catalog completion flags that were earned by it.
func (a *App) Reset(ctx context.Context) (*gamification.Profile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := a.Tracker.Reset(ctx)
	if err != nil {
		return nil, err
	}
	a.Catalog.ResetCompleted()
	a.Session.Reset()
	a.log.Info("progress reset", "session", a.Session.ID)
	return p, nil
}

// Chat answers a message. challengeID, when set and open, gives the
// assistant the active challenge.
func (a *App) Chat(message, challengeID string) assistant.Reply {
	req := assistant.Request{
		Message: message,
		Profile: a.Tracker.Profile(),
		Now:     a.now(),
	}
	if challengeID != "" {
		if _, open := a.Session.Get(challengeID); open {
			if ch, err := a.Catalog.Get(challengeID); err == nil {
				req.Challenge = &ch
			}
		}
	}
	return a.Assistant.Respond(req)
}

// Exec runs one terminal command line.
func (a *App) Exec(line string) assistant.TermResult {
	return a.Terminal.Exec(line)
}

// Leaderboard ranks the player among the rivals.
func (a *App) Leaderboard() []gamification.LeaderboardEntry {
	return gamification.Leaderboard(a.Tracker.Profile(), a.seed)
}

// Stats bundles the derived statistics views.
type Stats struct {
	Level    gamification.LevelProgress `json:"level"`
	Periods  gamification.Periods       `json:"periods"`
	Insights gamification.Insights      `json:"insights"`
	Counters gamification.Counters      `json:"counters"`
	Session  SessionInfo                `json:"session"`
}

// SessionInfo describes the running session.
type SessionInfo struct {
	ID         string            `json:"id"`
	StartedAt  time.Time         `json:"startedAt"`
	Multiplier float64           `json:"multiplier"`
	Open       []session.Attempt `json:"open"`
}

// Stats returns the current derived statistics.
func (a *App) Stats() Stats {
	p := a.Tracker.Profile()
	return Stats{
		Level:    gamification.NextLevelProgress(p.TotalXP),
		Periods:  a.Tracker.Periods(),
		Insights: a.Tracker.Insights(),
		Counters: a.Tracker.Counters(),
		Session:  a.SessionInfo(),
	}
}

// SessionInfo snapshots the session context.
func (a *App) SessionInfo() SessionInfo {
	return SessionInfo{
		ID:         a.Session.ID,
		StartedAt:  a.Session.StartedAt,
		Multiplier: a.Session.XPMultiplier(),
		Open:       a.Session.Active(),
	}
}
