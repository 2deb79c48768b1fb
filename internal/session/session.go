// Package session holds per-process state that is deliberately not
// persisted: the session ID, the global XP multiplier and the challenge
// attempts currently open.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// HintAfterFailures is the number of failed submissions after which a hint
// is offered.
const HintAfterFailures = 3

// ErrNotOpen is returned when a submission references a challenge with no
// open attempt.
var ErrNotOpen = errors.New("challenge not open")

// Attempt is one open challenge. Elapsed time is measured from OpenedAt.
type Attempt struct {
	ChallengeID string    `json:"challengeId"`
	OpenedAt    time.Time `json:"openedAt"`
	Submissions int       `json:"submissions"`
	Failures    int       `json:"failures"`
	Hint        bool      `json:"hint"`
}

// Session is the live context for one process run.
type Session struct {
	ID        string
	StartedAt time.Time

	mu         sync.RWMutex
	multiplier float64
	attempts   map[string]*Attempt
	listener   func(Event)
}

// New starts a session with multiplier 1.0.
func New(now time.Time) *Session {
	return &Session{
		ID:         uuid.NewString(),
		StartedAt:  now,
		multiplier: 1.0,
		attempts:   make(map[string]*Attempt),
	}
}

// OnEvent installs the change listener. It is invoked outside the lock.
func (s *Session) OnEvent(fn func(Event)) {
	s.mu.Lock()
	s.listener = fn
	s.mu.Unlock()
}

// XPMultiplier returns the current global multiplier.
func (s *Session) XPMultiplier() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.multiplier
}

// AddXPMultiplier raises the multiplier by delta and returns the new value.
func (s *Session) AddXPMultiplier(delta float64) float64 {
	s.mu.Lock()
	s.multiplier += delta
	m := s.multiplier
	ev := Event{Type: EventMultiplier, Multiplier: m, OpenCount: len(s.attempts)}
	fn := s.listener
	s.mu.Unlock()

	if fn != nil {
		fn(ev)
	}
	return m
}

// Reset drops every open attempt and returns the multiplier to 1.0.
func (s *Session) Reset() {
	s.mu.Lock()
	s.attempts = make(map[string]*Attempt)
	s.multiplier = 1.0
	ev := Event{Type: EventMultiplier, Multiplier: s.multiplier}
	fn := s.listener
	s.mu.Unlock()

	if fn != nil {
		fn(ev)
	}
}

// Open starts timing a challenge. Re-opening an already open challenge keeps
// the original start time and counts.
func (s *Session) Open(challengeID string, now time.Time) Attempt {
	s.mu.Lock()
	a, ok := s.attempts[challengeID]
	if !ok {
		a = &Attempt{ChallengeID: challengeID, OpenedAt: now}
		s.attempts[challengeID] = a
	}
	snap := *a
	ev := Event{Type: EventOpened, Attempt: snap, Multiplier: s.multiplier, OpenCount: len(s.attempts)}
	fn := s.listener
	s.mu.Unlock()

	if fn != nil && !ok {
		fn(ev)
	}
	return snap
}

// Submit counts a submission for an open challenge and returns the attempt
// with Submissions already incremented.
func (s *Session) Submit(challengeID string) (Attempt, error) {
	return s.update(challengeID, EventSubmitted, func(a *Attempt) { a.Submissions++ })
}

// Fail records a failed submission. Hint is set once failures reach
// HintAfterFailures.
func (s *Session) Fail(challengeID string) (Attempt, error) {
	return s.update(challengeID, EventSubmitted, func(a *Attempt) {
		a.Failures++
		a.Hint = a.Failures >= HintAfterFailures
	})
}

// Close ends a challenge's attempt window.
func (s *Session) Close(challengeID string) (Attempt, bool) {
	s.mu.Lock()
	a, ok := s.attempts[challengeID]
	if !ok {
		s.mu.Unlock()
		return Attempt{}, false
	}
	delete(s.attempts, challengeID)
	snap := *a
	ev := Event{Type: EventClosed, Attempt: snap, Multiplier: s.multiplier, OpenCount: len(s.attempts)}
	fn := s.listener
	s.mu.Unlock()

	if fn != nil {
		fn(ev)
	}
	return snap, true
}

// Get returns a copy of the open attempt for challengeID.
func (s *Session) Get(challengeID string) (Attempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attempts[challengeID]
	if !ok {
		return Attempt{}, false
	}
	return *a, true
}

// Active returns the open attempts, oldest first.
func (s *Session) Active() []Attempt {
	s.mu.RLock()
	out := make([]Attempt, 0, len(s.attempts))
	for _, a := range s.attempts {
		out = append(out, *a)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].OpenedAt.Before(out[j].OpenedAt)
		}
		return out[i].ChallengeID < out[j].ChallengeID
	})
	return out
}

// Elapsed returns whole seconds since challengeID was opened, at least 1.
// Unknown challenges report 0.
func (s *Session) Elapsed(challengeID string, now time.Time) int {
	a, ok := s.Get(challengeID)
	if !ok {
		return 0
	}
	return max(int(now.Sub(a.OpenedAt).Seconds()), 1)
}

// Uptime is how long the session has been running.
func (s *Session) Uptime(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}

func (s *Session) update(challengeID string, typ EventType, fn func(*Attempt)) (Attempt, error) {
	s.mu.Lock()
	a, ok := s.attempts[challengeID]
	if !ok {
		s.mu.Unlock()
		return Attempt{}, ErrNotOpen
	}
	fn(a)
	snap := *a
	ev := Event{Type: typ, Attempt: snap, Multiplier: s.multiplier, OpenCount: len(s.attempts)}
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener(ev)
	}
	return snap, nil
}
