package gamification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/code-arsenal/arsenal/internal/kv"
)

// Persisted keys.
const (
	KeyProfile        = "profile"
	KeyLastSolvedDate = "last_solved_date"
	KeyUnlocked       = "unlocked_achievements"
	KeyStatsDaily     = "stats_daily"
	KeyStatsWeekly    = "stats_weekly"
	KeyStatsMonthly   = "stats_monthly"
	KeyNightSolves    = "night_solves"
	KeyEarlySolves    = "early_solves"
	KeyPerfectSolves  = "perfect_solves"
)

var allKeys = []string{
	KeyProfile, KeyLastSolvedDate, KeyUnlocked,
	KeyStatsDaily, KeyStatsWeekly, KeyStatsMonthly,
	KeyNightSolves, KeyEarlySolves, KeyPerfectSolves,
}

// ProfileStore reads and writes player state through a kv.Store. Reads
// never fail on malformed data: bad values are logged and replaced with
// defaults.
type ProfileStore struct {
	kv  kv.Store
	log *slog.Logger
	now func() time.Time
}

// NewProfileStore wraps store. A nil logger uses slog.Default.
func NewProfileStore(store kv.Store, logger *slog.Logger) *ProfileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileStore{kv: store, log: logger, now: time.Now}
}

// Load returns the stored profile repaired to its invariants, or a fresh
// default profile if none is stored. An error is returned only when the
// backend itself cannot be read.
func (s *ProfileStore) Load(ctx context.Context) (*Profile, error) {
	p := NewProfile(s.now())

	raw, err := s.kv.Get(ctx, KeyProfile)
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("reading profile: %w", err)
	default:
		var stored Profile
		var typeErr *json.UnmarshalTypeError
		err := json.Unmarshal(raw, &stored)
		switch {
		case err == nil:
			p = &stored
		case errors.As(err, &typeErr):
			// The decoder fills every other field; repair handles the rest.
			s.log.Warn("profile field has the wrong type, repairing", "field", typeErr.Field, "error", err)
			p = &stored
		default:
			s.log.Warn("profile record unreadable, using defaults", "error", err)
		}
	}

	var unlocked []string
	if s.getJSON(ctx, KeyUnlocked, &unlocked) {
		p.Achievements = append(p.Achievements, unlocked...)
	}

	if p.repair() {
		s.log.Info("profile repaired on load", "level", p.Level, "total_xp", p.TotalXP)
	}
	return p, nil
}

// Save writes the profile and its unlocked-achievement list.
func (s *ProfileStore) Save(ctx context.Context, p *Profile) error {
	if err := s.putJSON(ctx, KeyProfile, p); err != nil {
		return err
	}
	return s.putJSON(ctx, KeyUnlocked, p.Achievements)
}

// LastSolvedDate returns the stored streak date, or "" if none.
func (s *ProfileStore) LastSolvedDate(ctx context.Context) string {
	var d string
	if !s.getJSON(ctx, KeyLastSolvedDate, &d) {
		return ""
	}
	if _, err := time.Parse(dateLayout, d); err != nil {
		s.log.Warn("ignoring malformed last solved date", "value", d)
		return ""
	}
	return d
}

// SetLastSolvedDate stores the streak date.
func (s *ProfileStore) SetLastSolvedDate(ctx context.Context, date string) error {
	return s.putJSON(ctx, KeyLastSolvedDate, date)
}

// Counters loads the auxiliary achievement counters.
func (s *ProfileStore) Counters(ctx context.Context) Counters {
	var c Counters
	c.NightSolves = s.getCount(ctx, KeyNightSolves)
	c.EarlySolves = s.getCount(ctx, KeyEarlySolves)
	c.PerfectSolves = s.getCount(ctx, KeyPerfectSolves)
	return c
}

// SaveCounters stores each counter under its own key.
func (s *ProfileStore) SaveCounters(ctx context.Context, c Counters) error {
	for key, v := range map[string]int{
		KeyNightSolves:   c.NightSolves,
		KeyEarlySolves:   c.EarlySolves,
		KeyPerfectSolves: c.PerfectSolves,
	} {
		if err := s.putJSON(ctx, key, v); err != nil {
			return err
		}
	}
	return nil
}

// Periods loads the rolling period buckets.
func (s *ProfileStore) Periods(ctx context.Context) Periods {
	var ps Periods
	s.getJSON(ctx, KeyStatsDaily, &ps.Daily)
	s.getJSON(ctx, KeyStatsWeekly, &ps.Weekly)
	s.getJSON(ctx, KeyStatsMonthly, &ps.Monthly)
	return ps
}

// SavePeriods stores the three period buckets.
func (s *ProfileStore) SavePeriods(ctx context.Context, ps Periods) error {
	if err := s.putJSON(ctx, KeyStatsDaily, ps.Daily); err != nil {
		return err
	}
	if err := s.putJSON(ctx, KeyStatsWeekly, ps.Weekly); err != nil {
		return err
	}
	return s.putJSON(ctx, KeyStatsMonthly, ps.Monthly)
}

// Clear deletes every key this store owns.
func (s *ProfileStore) Clear(ctx context.Context) error {
	for _, k := range allKeys {
		if err := s.kv.Delete(ctx, k); err != nil {
			return fmt.Errorf("clearing %s: %w", k, err)
		}
	}
	return nil
}

func (s *ProfileStore) getCount(ctx context.Context, key string) int {
	var n int
	if !s.getJSON(ctx, key, &n) || n < 0 {
		return 0
	}
	return n
}

// getJSON decodes key into out, reporting whether a usable value was found.
func (s *ProfileStore) getJSON(ctx context.Context, key string, out any) bool {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.log.Warn("state read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.log.Warn("state value unreadable, using default", "key", key, "error", err)
		return false
	}
	return true
}

func (s *ProfileStore) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}
