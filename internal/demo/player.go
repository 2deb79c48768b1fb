// Package demo drives an App with a simulated player so the TUI has
// something to show without a human at the keyboard.
package demo

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/code-arsenal/arsenal/internal/app"
	"github.com/code-arsenal/arsenal/internal/catalog"
	"github.com/code-arsenal/arsenal/internal/gamification"
)

// Pace controls how often the simulated player submits.
type Pace string

const (
	Steady Pace = "steady" // one submission per tick
	Burst  Pace = "burst"  // three ticks on, three off
	Stall  Pace = "stall"  // one submission every fourth tick
)

// ParsePace maps a flag value to a Pace.
func ParsePace(s string) (Pace, bool) {
	switch p := Pace(s); p {
	case Steady, Burst, Stall:
		return p, true
	}
	return "", false
}

// solveSeconds is the typical solve time per difficulty before jitter.
var solveSeconds = map[gamification.Difficulty]int{
	gamification.Beginner:     90,
	gamification.Intermediate: 240,
	gamification.Advanced:     540,
	gamification.Expert:       1100,
}

// Player works through the catalog one challenge at a time, retrying a
// failed challenge until it passes.
type Player struct {
	app      *app.App
	pace     Pace
	interval time.Duration
	rng      *rand.Rand
	log      *slog.Logger

	current string
	tick    int
}

// NewPlayer builds a player over a. seed fixes the challenge picks and
// solve times.
func NewPlayer(a *app.App, pace Pace, interval time.Duration, seed int64, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		app:      a,
		pace:     pace,
		interval: interval,
		rng:      rand.New(rand.NewSource(seed)),
		log:      logger.With("component", "demo"),
	}
}

// Start runs the player until ctx is cancelled.
func (p *Player) Start(ctx context.Context) {
	p.log.Info("demo player started", "pace", p.pace, "interval", p.interval)
	go p.run(ctx)
}

func (p *Player) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.Step(ctx); err != nil {
				if errors.Is(err, errExhausted) {
					p.log.Info("demo player solved the whole catalog")
					return
				}
				p.log.Warn("demo submission failed", "err", err)
			}
		}
	}
}

var errExhausted = errors.New("no unsolved challenges left")

// Step advances one tick. It reports whether a submission was made.
func (p *Player) Step(ctx context.Context) (bool, error) {
	p.tick++
	if !p.active() {
		return false, nil
	}

	if p.current == "" {
		id, err := p.pick()
		if err != nil {
			return false, err
		}
		if _, _, err := p.app.Open(id); err != nil {
			return false, err
		}
		p.current = id
	}

	ch, err := p.app.Catalog.Get(p.current)
	if err != nil {
		p.current = ""
		return false, err
	}
	res, err := p.app.Submit(ctx, p.current, p.elapsed(ch.Difficulty))
	if errors.Is(err, catalog.ErrChallengeCompleted) {
		p.current = ""
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if res.Success {
		p.current = ""
	}
	return true, nil
}

func (p *Player) active() bool {
	switch p.pace {
	case Burst:
		return (p.tick-1)%6 < 3
	case Stall:
		return p.tick%4 == 0
	}
	return true
}

func (p *Player) pick() (string, error) {
	page := p.app.Catalog.Filter(catalog.Filter{HideCompleted: true})
	if page.Total == 0 {
		return "", errExhausted
	}
	return page.Items[p.rng.Intn(len(page.Items))].ID, nil
}

// elapsed jitters the typical time by +/-50%.
func (p *Player) elapsed(d gamification.Difficulty) int {
	base, ok := solveSeconds[d]
	if !ok {
		base = solveSeconds[gamification.Intermediate]
	}
	return base/2 + p.rng.Intn(base+1)
}
