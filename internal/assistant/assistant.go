// Package assistant is the rule-based coding mentor: intent detection over
// chat messages, templated markdown replies and the terminal commands.
package assistant

import (
	"bytes"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/code-arsenal/arsenal/internal/catalog"
	"github.com/code-arsenal/arsenal/internal/gamification"
)

const maxHistory = 50

// Request is one chat message with the context needed to answer it.
type Request struct {
	Message   string
	Profile   *gamification.Profile
	Challenge *catalog.Challenge // nil when no challenge is open
	Now       time.Time
}

// Reply is the assistant's answer.
type Reply struct {
	Intent   Intent   `json:"intent"`
	Text     string   `json:"text"` // markdown
	Analysis Analysis `json:"analysis"`
}

// Assistant answers chat messages. It keeps a short message history to
// infer the learner's style.
type Assistant struct {
	tpl *template.Template
	log *slog.Logger

	mu      sync.Mutex
	rng     *rand.Rand
	history []string
}

var funcs = template.FuncMap{
	"join":  strings.Join,
	"comma": comma,
	"label": gamification.CategoryLabel,
}

// New parses the reply templates. src drives the random choice of tips
// and hints.
func New(src rand.Source, logger *slog.Logger) (*Assistant, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root := template.New("assistant").Funcs(funcs)
	for intent, text := range replyTemplates {
		if _, err := root.New(string(intent)).Parse(text); err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", intent, err)
		}
	}
	return &Assistant{tpl: root, log: logger, rng: rand.New(src)}, nil
}

type replyData struct {
	Profile         *gamification.Profile
	Challenge       *catalog.Challenge
	Analysis        Analysis
	TimeOfDay       string
	Activity        string
	Tip             string
	Hint            string
	Explanation     string
	General         string
	LevelTip        string
	SkillLevel      string
	LearningStyle   string
	LearningPath    string
	TopSkills       []string
	Gaps            []string
	Recommendations string
	Advanced        string
	Favorite        string
	Snippet         string
	SnippetLang     string
}

// Respond answers req.
func (a *Assistant) Respond(req Request) Reply {
	p := req.Profile
	if p == nil {
		p = gamification.NewProfile(req.Now)
	}
	if req.Now.IsZero() {
		req.Now = time.Now()
	}

	intent := DetectIntent(req.Message, req.Challenge != nil)
	analysis := Analyze(req.Message)
	style := a.remember(req.Message)

	lang := analysis.Language
	if lang == "" {
		lang = "javascript"
	}
	data := replyData{
		Profile:         p,
		Challenge:       req.Challenge,
		Analysis:        analysis,
		TimeOfDay:       timeOfDay(req.Now),
		Activity:        recentActivity(p),
		Tip:             a.pick(tips),
		Explanation:     a.pick(explanations),
		General:         a.pick(generalOpeners),
		LevelTip:        levelTip(p.Level),
		SkillLevel:      skillLevel(p.Level),
		LearningStyle:   style,
		LearningPath:    learningPath(p.Level),
		TopSkills:       topSkills(p, 3),
		Gaps:            skillGaps(p, 3),
		Recommendations: recommendations(p),
		Advanced:        advancedRecommendation(p.Level),
		Favorite:        gamification.BuildInsights(p, gamification.Periods{}, req.Now).FavoriteCategory,
		Snippet:         snippets[lang],
		SnippetLang:     lang,
	}
	if data.Snippet == "" {
		data.Snippet = snippets["javascript"]
		data.SnippetLang = "javascript"
	}
	if req.Challenge != nil {
		data.Hint = a.pick(hintsFor(req.Challenge.Category))
	}

	var buf bytes.Buffer
	if err := a.tpl.ExecuteTemplate(&buf, string(intent), data); err != nil {
		a.log.Error("rendering reply failed", "intent", intent, "error", err)
		return Reply{Intent: intent, Text: "Something went wrong on my side. Try asking again.", Analysis: analysis}
	}
	return Reply{Intent: intent, Text: strings.TrimSpace(buf.String()), Analysis: analysis}
}

func (a *Assistant) pick(options []string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return options[a.rng.Intn(len(options))]
}

// remember records msg and returns the learning style inferred from the
// conversation so far.
func (a *Assistant) remember(msg string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, strings.ToLower(msg))
	if len(a.history) > maxHistory {
		a.history = a.history[len(a.history)-maxHistory:]
	}
	all := strings.Join(a.history, " ")
	switch {
	case strings.Contains(all, "explain") || strings.Contains(all, "why"):
		return "analytical"
	case strings.Contains(all, "example") || strings.Contains(all, "show"):
		return "visual"
	case strings.Contains(all, "practice") || strings.Contains(all, "exercise"):
		return "kinesthetic"
	}
	return "balanced"
}

func timeOfDay(now time.Time) string {
	switch h := now.Hour(); {
	case h < 12:
		return "morning"
	case h < 17:
		return "afternoon"
	}
	return "evening"
}

func recentActivity(p *gamification.Profile) string {
	switch {
	case p.WeeklyXP > 500:
		return "**Amazing progress this week!** You've been crushing challenges."
	case p.WeeklyXP > 200:
		return "**Solid week of coding!** Keep up the momentum."
	}
	return "**Ready for a productive session?** Let's make some progress!"
}

func skillLevel(level int) string {
	switch {
	case level < 5:
		return "beginner"
	case level < 15:
		return "intermediate"
	case level < 35:
		return "advanced"
	}
	return "expert"
}

func levelTip(level int) string {
	switch {
	case level < 5:
		return "**Beginner tip:** start with the fundamentals and don't worry about optimisation yet."
	case level < 15:
		return "**Intermediate focus:** you're making great progress. Explore more complex algorithms and data structures."
	case level < 50:
		return "**Advanced challenge:** focus on system design, optimisation and best practices."
	}
	return "**Expert level:** you're among the elite. Consider mentoring others."
}

func learningPath(level int) string {
	switch {
	case level < 10:
		return "1. **Arrays and strings** (foundation)\n2. **Hash maps and sets** (key data structures)\n3. **Basic recursion** (problem-solving technique)"
	case level < 25:
		return "1. **Dynamic programming** (optimisation technique)\n2. **Graph algorithms** (BFS, DFS, shortest path)\n3. **Advanced data structures** (trees, heaps)"
	}
	return "1. **System design** (scalability)\n2. **Advanced algorithms** (network flow, string algorithms)\n3. **Architecture patterns** (design principles)"
}

// recommendations are the personalised bullets shared by the career and
// fallback replies.
func recommendations(p *gamification.Profile) string {
	var recs []string
	if p.SuccessRate < 70 {
		recs = append(recs, "- Focus on understanding fundamentals before tackling harder problems")
	}
	if p.Streak < 5 {
		recs = append(recs, "- Build consistency with daily practice (even 15 minutes helps!)")
	}
	if p.Level < 10 {
		recs = append(recs, "- Master basic data structures (arrays, strings, hash maps)")
	}
	if len(recs) == 0 {
		return "- Keep up the excellent work! You're on track."
	}
	return strings.Join(recs, "\n")
}

func advancedRecommendation(level int) string {
	switch {
	case level < 10:
		return "- Focus on algorithm fundamentals and basic data structures"
	case level < 25:
		return "- Practice dynamic programming and advanced graph algorithms"
	case level < 50:
		return "- Explore system design and scalability concepts"
	}
	return "- Consider contributing to open source and mentoring others"
}

type skillScore struct {
	name  string
	score int
}

func sortedSkills(p *gamification.Profile) []skillScore {
	out := make([]skillScore, 0, len(p.SkillPoints))
	for _, s := range gamification.Skills {
		if v, ok := p.SkillPoints[s]; ok {
			out = append(out, skillScore{s, v})
		}
	}
	return out
}

func topSkills(p *gamification.Profile, n int) []string {
	skills := sortedSkills(p)
	sort.SliceStable(skills, func(i, j int) bool { return skills[i].score > skills[j].score })
	var out []string
	for _, s := range skills[:min(n, len(skills))] {
		out = append(out, s.name)
	}
	return out
}

// skillGaps lists up to n skills below 60, in display order.
func skillGaps(p *gamification.Profile, n int) []string {
	var out []string
	for _, s := range sortedSkills(p) {
		if s.score < 60 && len(out) < n {
			out = append(out, s.name)
		}
	}
	return out
}

func comma(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
