package assistant

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/code-arsenal/arsenal/internal/catalog"
	"github.com/code-arsenal/arsenal/internal/gamification"
	"github.com/code-arsenal/arsenal/internal/session"
)

// State is the read side of the tracker the terminal reports on.
type State interface {
	Profile() *gamification.Profile
	Achievements() ([]gamification.AchievementStatus, gamification.AchievementProgress)
}

// ProcStats is a point-in-time view of this process.
type ProcStats struct {
	RSSBytes   uint64
	CPUPercent float64
	Uptime     time.Duration
	Goroutines int
}

// TermResult is the output of one terminal command.
type TermResult struct {
	Output string `json:"output"`
	Clear  bool   `json:"clear,omitempty"`
}

// Terminal runs the built-in shell commands.
type Terminal struct {
	state   State
	catalog *catalog.Catalog
	session *session.Session
	seed    int64
	stats   func() (ProcStats, error)
}

// NewTerminal wires the command table to live state. seed selects the
// leaderboard rivals.
func NewTerminal(state State, cat *catalog.Catalog, sess *session.Session, seed int64) *Terminal {
	return &Terminal{
		state:   state,
		catalog: cat,
		session: sess,
		seed:    seed,
		stats:   selfStats,
	}
}

// Commands lists the command names in help order.
var Commands = []string{"help", "status", "challenges", "stats", "clear", "hack", "languages", "achievements", "leaderboard"}

// Exec runs one command line. Unknown commands produce a hint, never an error.
func (t *Terminal) Exec(line string) TermResult {
	cmd := strings.ToLower(strings.TrimSpace(line))
	switch cmd {
	case "":
		return TermResult{}
	case "help":
		return TermResult{Output: t.help()}
	case "status":
		return TermResult{Output: t.status()}
	case "challenges":
		return TermResult{Output: t.challenges()}
	case "stats":
		return TermResult{Output: t.userStats()}
	case "clear":
		return TermResult{Clear: true}
	case "hack":
		return TermResult{Output: "Initiating matrix connection...\n▓▓▓▓▓▓▓▓▓▓ 100%\nWelcome to the CODE ARSENAL matrix.\nYou are now connected to the global network."}
	case "languages":
		return TermResult{Output: "Supported languages:\nJavaScript, Python, Java, C++, C#, Go, Rust,\nTypeScript, Swift, Kotlin, PHP, Ruby, Scala,\nHaskell, Clojure, Erlang, F# and more..."}
	case "achievements":
		return TermResult{Output: t.achievements()}
	case "leaderboard":
		return TermResult{Output: t.leaderboard()}
	}
	return TermResult{Output: fmt.Sprintf("Command not found: %s. Type 'help' for available commands.", strings.TrimSpace(line))}
}

func (t *Terminal) help() string {
	return `Available commands:
• status - Show system status
• challenges - List recent challenges
• stats - Display user statistics
• clear - Clear terminal
• hack - Enter the matrix
• languages - List supported languages
• achievements - Show achievements
• leaderboard - Show top users`
}

func (t *Terminal) status() string {
	var b strings.Builder
	b.WriteString("CODE ARSENAL system status:\n")
	st, err := t.stats()
	if err != nil {
		fmt.Fprintf(&b, "• Process: unavailable (%v)\n", err)
	} else {
		fmt.Fprintf(&b, "• Uptime: %s\n", st.Uptime.Truncate(time.Second))
		fmt.Fprintf(&b, "• Memory (RSS): %.1f MiB\n", float64(st.RSSBytes)/(1<<20))
		fmt.Fprintf(&b, "• CPU: %.1f%%\n", st.CPUPercent)
		fmt.Fprintf(&b, "• Goroutines: %d\n", st.Goroutines)
	}
	if t.catalog != nil {
		fmt.Fprintf(&b, "• Challenge engine: %d challenges loaded\n", t.catalog.Len())
	}
	if t.session != nil {
		fmt.Fprintf(&b, "• Session: %s (%d open, x%.1f XP)", shortID(t.session.ID), len(t.session.Active()), t.session.XPMultiplier())
	}
	return strings.TrimRight(b.String(), "\n")
}

func (t *Terminal) challenges() string {
	var lines []string
	if t.catalog != nil {
		for _, c := range t.catalog.Completed(3) {
			lines = append(lines, fmt.Sprintf("%s [COMPLETED]", c.Title))
		}
	}
	if t.session != nil && t.catalog != nil {
		for _, a := range t.session.Active() {
			if c, err := t.catalog.Get(a.ChallengeID); err == nil {
				lines = append(lines, fmt.Sprintf("%s [IN PROGRESS] %d attempt(s)", c.Title, a.Submissions))
			}
		}
	}
	if len(lines) == 0 {
		return "Recent challenges:\nNothing yet. Open a challenge to get started."
	}
	var b strings.Builder
	b.WriteString("Recent challenges:")
	for i, l := range lines {
		fmt.Fprintf(&b, "\n%d. %s", i+1, l)
	}
	return b.String()
}

func (t *Terminal) userStats() string {
	p := t.state.Profile()
	return fmt.Sprintf(`User statistics:
• XP: %s
• Level: %d (%s)
• Challenges solved: %d
• Success rate: %d%%
• Current streak: %d days`, comma(p.TotalXP), p.Level, p.Rank, p.ChallengesSolved, p.SuccessRate, p.Streak)
}

func (t *Terminal) achievements() string {
	list, prog := t.state.Achievements()
	var b strings.Builder
	fmt.Fprintf(&b, "Your achievements (%d/%d):", prog.Unlocked, prog.Total)
	shown := 0
	for _, a := range list {
		if a.Unlocked {
			fmt.Fprintf(&b, "\n✓ %s - %s", a.Name, a.Description)
			shown++
		}
	}
	// Tease the next few locked ones.
	for _, a := range list {
		if shown >= 8 {
			break
		}
		if !a.Unlocked {
			fmt.Fprintf(&b, "\n🔒 %s - %s (LOCKED)", a.Name, a.Description)
			shown++
		}
	}
	return b.String()
}

func (t *Terminal) leaderboard() string {
	board := gamification.Leaderboard(t.state.Profile(), t.seed)
	var b strings.Builder
	b.WriteString("Top 5 global rankings:")
	for _, e := range board[:min(5, len(board))] {
		fmt.Fprintf(&b, "\n%d. %s - %s XP", e.Rank, e.Username, comma(e.XP))
	}
	for _, e := range board {
		if e.You && e.Rank > 5 {
			fmt.Fprintf(&b, "\n...\n%d. %s (you) - %s XP", e.Rank, e.Username, comma(e.XP))
		}
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func selfStats() (ProcStats, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return ProcStats{}, fmt.Errorf("inspecting process: %w", err)
	}
	st := ProcStats{Goroutines: runtime.NumGoroutine()}
	if mem, err := p.MemoryInfo(); err == nil {
		st.RSSBytes = mem.RSS
	}
	if cpu, err := p.CPUPercent(); err == nil {
		st.CPUPercent = cpu
	}
	created, err := p.CreateTime()
	if err != nil {
		return st, fmt.Errorf("reading process start time: %w", err)
	}
	st.Uptime = time.Since(time.UnixMilli(created))
	return st, nil
}
