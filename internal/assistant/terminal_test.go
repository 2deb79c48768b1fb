package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-arsenal/arsenal/internal/catalog"
	"github.com/code-arsenal/arsenal/internal/gamification"
	"github.com/code-arsenal/arsenal/internal/kv"
	"github.com/code-arsenal/arsenal/internal/session"
)

func newTerminal(t *testing.T) (*Terminal, *gamification.Tracker, *catalog.Catalog, *session.Session) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := gamification.NewProfileStore(kv.NewMemory(), logger)
	tr := gamification.NewTracker(context.Background(), store, logger)
	cat := catalog.New(catalog.Generate(1, 20))
	sess := session.New(time.Now())
	term := NewTerminal(tr, cat, sess, 1)
	term.stats = func() (ProcStats, error) {
		return ProcStats{RSSBytes: 32 << 20, CPUPercent: 1.5, Uptime: 90 * time.Second, Goroutines: 7}, nil
	}
	return term, tr, cat, sess
}

func TestTerminal_Help(t *testing.T) {
	term, _, _, _ := newTerminal(t)
	out := term.Exec("  HELP ").Output
	for _, c := range Commands {
		if c == "help" {
			continue
		}
		assert.Contains(t, out, "• "+c+" - ")
	}
}

func TestTerminal_Unknown(t *testing.T) {
	term, _, _, _ := newTerminal(t)
	assert.Equal(t, "Command not found: sudo rm. Type 'help' for available commands.", term.Exec("sudo rm").Output)
	assert.Equal(t, TermResult{}, term.Exec("   "))
}

func TestTerminal_Clear(t *testing.T) {
	term, _, _, _ := newTerminal(t)
	res := term.Exec("clear")
	assert.True(t, res.Clear)
	assert.Empty(t, res.Output)
}

func TestTerminal_Status(t *testing.T) {
	term, _, _, sess := newTerminal(t)
	sess.Open("challenge-1", time.Now())

	out := term.Exec("status").Output
	assert.Contains(t, out, "Uptime: 1m30s")
	assert.Contains(t, out, "Memory (RSS): 32.0 MiB")
	assert.Contains(t, out, "CPU: 1.5%")
	assert.Contains(t, out, "20 challenges loaded")
	assert.Contains(t, out, "(1 open, x1.0 XP)")
}

func TestTerminal_StatusProcessError(t *testing.T) {
	term, _, _, _ := newTerminal(t)
	term.stats = func() (ProcStats, error) { return ProcStats{}, errors.New("no procfs") }
	assert.Contains(t, term.Exec("status").Output, "Process: unavailable (no procfs)")
}

func TestSelfStats(t *testing.T) {
	st, err := selfStats()
	if err != nil {
		t.Skipf("process stats unavailable here: %v", err)
	}
	assert.Positive(t, st.Goroutines)
	assert.GreaterOrEqual(t, st.Uptime, time.Duration(0))
}

func TestTerminal_StatsAndAchievements(t *testing.T) {
	term, tr, _, _ := newTerminal(t)
	_, err := tr.RecordOutcome(context.Background(), nil, gamification.Submission{
		Category: gamification.CatAlgorithms, Difficulty: gamification.Beginner,
		ElapsedSeconds: 500, Attempts: 2, Success: true,
	})
	require.NoError(t, err)

	stats := term.Exec("stats").Output
	assert.Contains(t, stats, "Challenges solved: 1")
	assert.Contains(t, stats, "Success rate: 100%")

	ach := term.Exec("achievements").Output
	assert.True(t, strings.HasPrefix(ach, "Your achievements (1/"))
	assert.Contains(t, ach, "✓ First Steps")
	assert.Contains(t, ach, "(LOCKED)")
}

func TestTerminal_Challenges(t *testing.T) {
	term, _, cat, sess := newTerminal(t)
	assert.Contains(t, term.Exec("challenges").Output, "Nothing yet")

	_, err := cat.MarkCompleted("challenge-2", time.Now())
	require.NoError(t, err)
	sess.Open("challenge-3", time.Now())
	_, _ = sess.Submit("challenge-3")

	done, _ := cat.Get("challenge-2")
	open, _ := cat.Get("challenge-3")
	out := term.Exec("challenges").Output
	assert.Contains(t, out, "1. "+done.Title+" [COMPLETED]")
	assert.Contains(t, out, "2. "+open.Title+" [IN PROGRESS] 1 attempt(s)")
}

func TestTerminal_Leaderboard(t *testing.T) {
	term, _, _, _ := newTerminal(t)
	out := term.Exec("leaderboard").Output
	assert.Contains(t, out, "1. 0X0806 - 500,000 XP")
	assert.Contains(t, out, "(you) - 0 XP")
}
