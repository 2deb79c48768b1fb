package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

var t0 = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	s := New(t0)
	if _, err := uuid.Parse(s.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", s.ID, err)
	}
	if got := s.XPMultiplier(); got != 1.0 {
		t.Errorf("XPMultiplier() = %v, want 1.0", got)
	}
	if got := len(s.Active()); got != 0 {
		t.Errorf("new session has %d open attempts, want 0", got)
	}
	if New(t0).ID == s.ID {
		t.Error("two sessions share an ID")
	}
}

func TestAddXPMultiplier(t *testing.T) {
	s := New(t0)
	var events []Event
	s.OnEvent(func(ev Event) { events = append(events, ev) })

	s.AddXPMultiplier(0.1)
	got := s.AddXPMultiplier(0.1)
	if got < 1.199 || got > 1.201 {
		t.Errorf("AddXPMultiplier = %v, want 1.2", got)
	}
	if len(events) != 2 || events[1].Type != EventMultiplier {
		t.Errorf("events = %+v, want two multiplier events", events)
	}
}

func TestReset(t *testing.T) {
	s := New(t0)
	s.Open("a", t0)
	s.Open("b", t0)
	s.AddXPMultiplier(0.2)

	var last Event
	s.OnEvent(func(ev Event) { last = ev })
	s.Reset()

	if got := len(s.Active()); got != 0 {
		t.Errorf("Active() has %d attempts after Reset, want 0", got)
	}
	if got := s.XPMultiplier(); got != 1.0 {
		t.Errorf("XPMultiplier() = %v after Reset, want 1.0", got)
	}
	if last.Type != EventMultiplier || last.Multiplier != 1.0 {
		t.Errorf("Reset event = %+v, want multiplier 1.0", last)
	}
	if _, err := s.Submit("a"); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Submit after Reset = %v, want ErrNotOpen", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	s := New(t0)
	first := s.Open("c-1", t0)
	_, _ = s.Submit("c-1")
	again := s.Open("c-1", t0.Add(time.Minute))

	if !again.OpenedAt.Equal(first.OpenedAt) {
		t.Errorf("re-open moved OpenedAt from %v to %v", first.OpenedAt, again.OpenedAt)
	}
	if again.Submissions != 1 {
		t.Errorf("re-open reset Submissions to %d", again.Submissions)
	}
}

func TestSubmitRequiresOpen(t *testing.T) {
	s := New(t0)
	if _, err := s.Submit("missing"); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Submit(missing) err = %v, want ErrNotOpen", err)
	}
	if _, err := s.Fail("missing"); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Fail(missing) err = %v, want ErrNotOpen", err)
	}
}

func TestHintAfterThreeFailures(t *testing.T) {
	s := New(t0)
	s.Open("c-1", t0)

	tests := []struct {
		failures int
		wantHint bool
	}{
		{1, false},
		{2, false},
		{3, true},
		{4, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("failures=%d", tt.failures), func(t *testing.T) {
			if _, err := s.Submit("c-1"); err != nil {
				t.Fatal(err)
			}
			a, err := s.Fail("c-1")
			if err != nil {
				t.Fatal(err)
			}
			if a.Failures != tt.failures || a.Hint != tt.wantHint {
				t.Errorf("failures=%d hint=%v, want %d/%v", a.Failures, a.Hint, tt.failures, tt.wantHint)
			}
			if a.Submissions != tt.failures {
				t.Errorf("Submissions = %d, want %d", a.Submissions, tt.failures)
			}
		})
	}
}

func TestCloseRemovesAttempt(t *testing.T) {
	s := New(t0)
	s.Open("a", t0)
	s.Open("b", t0.Add(time.Second))

	closed, ok := s.Close("a")
	if !ok || closed.ChallengeID != "a" {
		t.Fatalf("Close(a) = %+v, %v", closed, ok)
	}
	if _, ok := s.Get("a"); ok {
		t.Error("Get(a) after Close returned ok")
	}
	if _, ok := s.Close("a"); ok {
		t.Error("second Close(a) returned ok")
	}
	if got := s.Active(); len(got) != 1 || got[0].ChallengeID != "b" {
		t.Errorf("Active() = %+v, want [b]", got)
	}
}

func TestActiveOrdering(t *testing.T) {
	s := New(t0)
	s.Open("late", t0.Add(2*time.Minute))
	s.Open("early", t0)
	s.Open("mid", t0.Add(time.Minute))

	got := s.Active()
	want := []string{"early", "mid", "late"}
	for i, id := range want {
		if got[i].ChallengeID != id {
			t.Errorf("Active()[%d] = %s, want %s", i, got[i].ChallengeID, id)
		}
	}
}

func TestElapsed(t *testing.T) {
	s := New(t0)
	s.Open("c-1", t0)

	if got := s.Elapsed("c-1", t0.Add(95*time.Second)); got != 95 {
		t.Errorf("Elapsed = %d, want 95", got)
	}
	if got := s.Elapsed("c-1", t0); got != 1 {
		t.Errorf("Elapsed at open = %d, want 1", got)
	}
	if got := s.Elapsed("missing", t0); got != 0 {
		t.Errorf("Elapsed(missing) = %d, want 0", got)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := New(t0)
	s.Open("c-1", t0)

	a, _ := s.Get("c-1")
	a.Failures = 99

	b, _ := s.Get("c-1")
	if b.Failures != 0 {
		t.Error("Get did not return a copy; mutation leaked into session")
	}
}

func TestEventsFired(t *testing.T) {
	s := New(t0)
	var types []EventType
	s.OnEvent(func(ev Event) { types = append(types, ev.Type) })

	s.Open("c-1", t0)
	s.Open("c-1", t0) // no event for a re-open
	_, _ = s.Submit("c-1")
	s.Close("c-1")

	want := []EventType{EventOpened, EventSubmitted, EventClosed}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, types[i], want[i])
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New(t0)
	var wg sync.WaitGroup
	const goroutines = 50

	for i := 0; i < goroutines; i++ {
		wg.Add(3)
		id := fmt.Sprintf("c-%d", i)

		go func() {
			defer wg.Done()
			s.Open(id, t0)
			_, _ = s.Submit(id)
			_, _ = s.Fail(id)
		}()
		go func() {
			defer wg.Done()
			s.Get(id)
			s.Active()
			s.XPMultiplier()
		}()
		go func() {
			defer wg.Done()
			s.AddXPMultiplier(0.01)
			s.Close(id)
		}()
	}

	wg.Wait()
}
