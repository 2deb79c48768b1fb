package demo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/code-arsenal/arsenal/internal/app"
	"github.com/code-arsenal/arsenal/internal/catalog"
	"github.com/code-arsenal/arsenal/internal/config"
	"github.com/code-arsenal/arsenal/internal/gamification"
	"github.com/code-arsenal/arsenal/internal/kv"
	"github.com/code-arsenal/arsenal/internal/logging"
)

func newTestApp(t *testing.T, size int, pass func(gamification.Difficulty) bool) *app.App {
	t.Helper()
	cfg := config.Default()
	cfg.Catalog.Size = size
	a, err := app.New(context.Background(), cfg, app.Options{
		Store:  kv.NewMemory(),
		Grader: catalog.GraderFunc(pass),
	}, logging.Discard())
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func always(gamification.Difficulty) bool { return true }

func TestPlayer_SteadySolvesCatalog(t *testing.T) {
	a := newTestApp(t, 5, always)
	p := NewPlayer(a, Steady, time.Hour, 1, logging.Discard())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		submitted, err := p.Step(ctx)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if !submitted {
			t.Fatalf("step %d made no submission", i)
		}
	}
	if got := a.Tracker.Profile().ChallengesSolved; got != 5 {
		t.Errorf("ChallengesSolved = %d, want 5", got)
	}
	if _, err := p.Step(ctx); !errors.Is(err, errExhausted) {
		t.Errorf("step after the last challenge = %v, want errExhausted", err)
	}
}

func TestPlayer_RetriesFailedChallenge(t *testing.T) {
	calls := 0
	a := newTestApp(t, 5, func(gamification.Difficulty) bool {
		calls++
		return calls > 2
	})
	p := NewPlayer(a, Steady, time.Hour, 1, logging.Discard())
	ctx := context.Background()

	if _, err := p.Step(ctx); err != nil {
		t.Fatal(err)
	}
	first := p.current
	if first == "" {
		t.Fatal("failed submission should keep the challenge current")
	}
	p.Step(ctx)
	if p.current != first {
		t.Errorf("current = %q after a second failure, want %q", p.current, first)
	}
	p.Step(ctx)
	if p.current != "" {
		t.Errorf("current = %q after a pass, want empty", p.current)
	}
	ch, _ := a.Catalog.Get(first)
	if !ch.Completed {
		t.Errorf("%s not marked completed", first)
	}
}

func TestPlayer_Pace(t *testing.T) {
	tests := []struct {
		pace Pace
		want []bool
	}{
		{Steady, []bool{true, true, true, true, true, true, true, true}},
		{Burst, []bool{true, true, true, false, false, false, true, true}},
		{Stall, []bool{false, false, false, true, false, false, false, true}},
	}
	for _, tt := range tests {
		t.Run(string(tt.pace), func(t *testing.T) {
			a := newTestApp(t, 20, always)
			p := NewPlayer(a, tt.pace, time.Hour, 3, logging.Discard())
			for i, want := range tt.want {
				got, err := p.Step(context.Background())
				if err != nil {
					t.Fatalf("tick %d: %v", i+1, err)
				}
				if got != want {
					t.Errorf("tick %d submitted=%v, want %v", i+1, got, want)
				}
			}
		})
	}
}

func TestPlayer_ElapsedWithinJitter(t *testing.T) {
	p := NewPlayer(nil, Steady, time.Hour, 9, logging.Discard())
	for d, base := range solveSeconds {
		for i := 0; i < 50; i++ {
			got := p.elapsed(d)
			if got < base/2 || got > base/2+base {
				t.Fatalf("%s elapsed %d outside [%d,%d]", d, got, base/2, base/2+base)
			}
		}
	}
}

func TestPlayer_StartStopsOnCancel(t *testing.T) {
	a := newTestApp(t, 3, always)
	p := NewPlayer(a, Steady, 5*time.Millisecond, 1, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for a.Tracker.Profile().ChallengesSolved < 3 {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("solved %d of 3 before deadline", a.Tracker.Profile().ChallengesSolved)
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
}

func TestParsePace(t *testing.T) {
	for _, s := range []string{"steady", "burst", "stall"} {
		if _, ok := ParsePace(s); !ok {
			t.Errorf("ParsePace(%q) rejected", s)
		}
	}
	if _, ok := ParsePace("sprint"); ok {
		t.Error("ParsePace(sprint) accepted")
	}
}
