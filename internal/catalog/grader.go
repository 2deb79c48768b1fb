package catalog

import (
	"math/rand"
	"sync"

	"github.com/code-arsenal/arsenal/internal/gamification"
)

// Grader decides whether a submission passes.
type Grader interface {
	Grade(d gamification.Difficulty) bool
}

// GraderFunc adapts a function to Grader.
type GraderFunc func(d gamification.Difficulty) bool

func (f GraderFunc) Grade(d gamification.Difficulty) bool { return f(d) }

// Rates are pass probabilities per difficulty.
type Rates struct {
	Beginner     float64 `yaml:"beginner"`
	Intermediate float64 `yaml:"intermediate"`
	Advanced     float64 `yaml:"advanced"`
	Expert       float64 `yaml:"expert"`
}

// DefaultRates makes harder challenges fail more often.
func DefaultRates() Rates {
	return Rates{Beginner: 0.85, Intermediate: 0.70, Advanced: 0.55, Expert: 0.40}
}

// For returns the pass probability for d. Unknown tiers use the
// intermediate rate.
func (r Rates) For(d gamification.Difficulty) float64 {
	switch d {
	case gamification.Beginner:
		return r.Beginner
	case gamification.Advanced:
		return r.Advanced
	case gamification.Expert:
		return r.Expert
	}
	return r.Intermediate
}

// RandomGrader passes a submission with the configured probability. It is
// the stand-in for running real test cases.
type RandomGrader struct {
	mu    sync.Mutex
	rng   *rand.Rand
	rates Rates
}

// NewRandomGrader creates a grader drawing from src.
func NewRandomGrader(src rand.Source, rates Rates) *RandomGrader {
	return &RandomGrader{rng: rand.New(src), rates: rates}
}

func (g *RandomGrader) Grade(d gamification.Difficulty) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64() < g.rates.For(d)
}
