package assistant

import (
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-arsenal/arsenal/internal/catalog"
	"github.com/code-arsenal/arsenal/internal/gamification"
)

func newAssistant(t *testing.T) *Assistant {
	t.Helper()
	a, err := New(rand.NewSource(1), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return a
}

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		msg    string
		active bool
		want   Intent
	}{
		{"Hello there", false, IntentGreeting},
		{"please review my code", false, IntentCodeAnalysis},
		{"can you analyze code for me", false, IntentCodeAnalysis},
		{"I have a bug in my loop", false, IntentDebugging},
		{"I want to learn graphs", false, IntentLearning},
		{"explain recursion", false, IntentExplanation},
		{"make this faster", false, IntentOptimization},
		{"is this secure", false, IntentSecurity},
		{"tips for my interview", false, IntentCareerAdvice},
		{"give me an exercise", false, IntentChallenge},
		{"generate code for sorting", false, IntentCodeGeneration},
		{"lorem ipsum", false, IntentGeneral},
		// Rule order: greeting beats debugging.
		{"hi, I found a bug", false, IntentGreeting},
		// An open challenge forces hint/help/stuck to the challenge intent.
		{"hi, I need a hint", true, IntentChallenge},
		{"help me please", true, IntentChallenge},
		{"help me please", false, IntentGeneral},
		{"I'm stuck on this bug", true, IntentChallenge},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectIntent(tt.msg, tt.active))
		})
	}
}

func TestDetectIntent_WordBoundaries(t *testing.T) {
	// "this" contains "hi" but is not a greeting.
	assert.NotEqual(t, IntentGreeting, DetectIntent("this thing", false))
}

func TestAnalyze(t *testing.T) {
	a := Analyze("URGENT: my Python code crashes, why?? I'm so frustrated")
	assert.Equal(t, "python", a.Language)
	assert.True(t, a.Urgent)
	assert.Equal(t, "frustrated", a.Emotion)
	assert.True(t, a.IsQuestion)
	assert.True(t, a.HasCode)

	b := Analyze("I love performance and security testing")
	assert.Equal(t, "", b.Language)
	assert.False(t, b.Urgent)
	assert.Equal(t, "excited", b.Emotion)
	assert.Equal(t, []string{"performance", "security", "testing"}, b.Topics)

	c := Analyze("for (i = 0; i < n; i++) { if (x) {} } def f(): pass")
	assert.Equal(t, []string{"loop", "function", "conditional"}, c.CodePatterns)
}

func TestDetectLanguage(t *testing.T) {
	tests := map[string]string{
		"good morning":           "",
		"writing go services":    "go",
		"javascript closures":    "javascript",
		"java generics":          "java",
		"c++ templates are hard": "c++",
		"rust lifetimes":         "rust",
	}
	for msg, want := range tests {
		assert.Equal(t, want, detectLanguage(msg), msg)
	}
}

func TestRespond_GreetingUsesProfile(t *testing.T) {
	a := newAssistant(t)
	p := gamification.NewProfile(time.Now())
	p.Username = "ada"
	p.TotalXP = 12345
	p.Level = 15

	r := a.Respond(Request{Message: "hello", Profile: p, Now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)})
	assert.Equal(t, IntentGreeting, r.Intent)
	assert.Contains(t, r.Text, "Good morning, ada!")
	assert.Contains(t, r.Text, "12,345")
	assert.Contains(t, r.Text, "**15**")
}

func TestRespond_ChallengeHint(t *testing.T) {
	a := newAssistant(t)
	ch := &catalog.Challenge{Title: "Two Sum 7", Category: gamification.CatAlgorithms, Difficulty: gamification.Beginner, Points: 25}

	r := a.Respond(Request{Message: "I'm stuck", Challenge: ch, Now: time.Now()})
	assert.Equal(t, IntentChallenge, r.Intent)
	assert.Contains(t, r.Text, `Hint for "Two Sum 7"`)
	assert.Contains(t, r.Text, "Potential XP: 25+")

	found := false
	for _, h := range challengeHints[gamification.CatAlgorithms] {
		if strings.Contains(r.Text, h) {
			found = true
		}
	}
	assert.True(t, found, "reply should carry an algorithms hint: %s", r.Text)
}

func TestRespond_ChallengeWithoutActive(t *testing.T) {
	a := newAssistant(t)
	r := a.Respond(Request{Message: "give me a challenge", Now: time.Now()})
	assert.Equal(t, IntentChallenge, r.Intent)
	assert.Contains(t, r.Text, "not working on a challenge")
}

func TestRespond_DebuggingUrgency(t *testing.T) {
	a := newAssistant(t)
	r := a.Respond(Request{Message: "urgent bug in rust", Now: time.Now()})
	assert.Equal(t, IntentDebugging, r.Intent)
	assert.Contains(t, r.Text, "HIGH priority")
	assert.Contains(t, r.Text, "Language: rust")
}

func TestRespond_CodeGenerationSnippet(t *testing.T) {
	a := newAssistant(t)
	r := a.Respond(Request{Message: "write function in python", Now: time.Now()})
	assert.Equal(t, IntentCodeGeneration, r.Intent)
	assert.Contains(t, r.Text, "```python")
	assert.Contains(t, r.Text, "def solution")
}

func TestRespond_EveryIntentRenders(t *testing.T) {
	a := newAssistant(t)
	ch := &catalog.Challenge{Title: "X", Category: "unknown", Difficulty: gamification.Expert}
	msgs := []string{
		"hello", "review my code", "fix this error", "teach me", "explain algorithm",
		"optimize this", "security please", "career", "hint", "create class", "zzz",
	}
	for _, m := range msgs {
		r := a.Respond(Request{Message: m, Challenge: ch, Now: time.Now()})
		assert.NotEmpty(t, r.Text, m)
		assert.NotContains(t, r.Text, "<no value>", m)
		assert.NotContains(t, r.Text, "went wrong", m)
	}
}

func TestLearningStyleFromHistory(t *testing.T) {
	a := newAssistant(t)
	assert.Equal(t, "balanced", a.remember("hello"))
	assert.Equal(t, "kinesthetic", a.remember("more practice please"))
	assert.Equal(t, "analytical", a.remember("explain it"))
}

func TestRecommendations(t *testing.T) {
	p := gamification.NewProfile(time.Now())
	assert.Equal(t, 3, strings.Count(recommendations(p), "\n- ")+1)

	p.SuccessRate, p.Streak, p.Level = 90, 10, 20
	assert.Contains(t, recommendations(p), "excellent work")
}

func TestSkillHelpers(t *testing.T) {
	p := gamification.NewProfile(time.Now())
	p.SkillPoints["databases"] = 80
	p.SkillPoints["webDev"] = 70
	p.SkillPoints["algorithms"] = 65

	assert.Equal(t, []string{"databases", "webDev", "algorithms"}, topSkills(p, 3))
	assert.Equal(t, []string{"dataStructures", "cybersecurity", "machineLearning"}, skillGaps(p, 3))
}

func TestComma(t *testing.T) {
	assert.Equal(t, "0", comma(0))
	assert.Equal(t, "999", comma(999))
	assert.Equal(t, "1,000", comma(1000))
	assert.Equal(t, "500,000", comma(500000))
	assert.Equal(t, "-12,345", comma(-12345))
}
