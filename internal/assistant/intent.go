package assistant

import (
	"regexp"
	"strings"
)

// Intent is the detected purpose of a chat message.
type Intent string

const (
	IntentGreeting       Intent = "greeting"
	IntentCodeAnalysis   Intent = "codeAnalysis"
	IntentDebugging      Intent = "debugging"
	IntentLearning       Intent = "learning"
	IntentExplanation    Intent = "explanation"
	IntentOptimization   Intent = "optimization"
	IntentSecurity       Intent = "security"
	IntentCareerAdvice   Intent = "careerAdvice"
	IntentChallenge      Intent = "challenge"
	IntentCodeGeneration Intent = "codeGeneration"
	IntentGeneral        Intent = "general"
)

// intentRules are tried in order; the first match wins.
var intentRules = []struct {
	intent  Intent
	pattern *regexp.Regexp
}{
	{IntentGreeting, regexp.MustCompile(`\b(hello|hi|hey|welcome|good morning|good afternoon|good evening)\b`)},
	{IntentCodeAnalysis, regexp.MustCompile(`\b(review|analyze|check|examine|audit|inspect)\s+(my\s+)?code\b`)},
	{IntentDebugging, regexp.MustCompile(`\b(debug|fix|error|bug|broken|issue|problem|exception|crash)\b`)},
	{IntentLearning, regexp.MustCompile(`\b(learn|study|tutorial|teach|understand|master|practice)\b`)},
	{IntentExplanation, regexp.MustCompile(`\b(explain|how|what|why|tell me|describe|clarify)\b`)},
	{IntentOptimization, regexp.MustCompile(`\b(optimize|improve|faster|performance|efficient|speed up)\b`)},
	{IntentSecurity, regexp.MustCompile(`\b(security|secure|vulnerability|hack|safe|protect)\b`)},
	{IntentCareerAdvice, regexp.MustCompile(`\b(career|job|interview|skills|resume|salary|promotion)\b`)},
	{IntentChallenge, regexp.MustCompile(`\b(challenge|problem|exercise|stuck|hint|solution)\b`)},
	{IntentCodeGeneration, regexp.MustCompile(`\b(generate|create|write|build|make)\s+(code|function|class|script)\b`)},
}

// DetectIntent classifies msg. While a challenge is open, asking for a
// hint, help or being stuck always routes to the challenge intent.
func DetectIntent(msg string, challengeActive bool) Intent {
	m := strings.ToLower(msg)
	if challengeActive && (strings.Contains(m, "hint") || strings.Contains(m, "help") || strings.Contains(m, "stuck")) {
		return IntentChallenge
	}
	for _, r := range intentRules {
		if r.pattern.MatchString(m) {
			return r.intent
		}
	}
	return IntentGeneral
}

// Analysis is what the detectors found in a message.
type Analysis struct {
	Language     string   `json:"language,omitempty"`
	Urgent       bool     `json:"urgent"`
	Emotion      string   `json:"emotion"`
	IsQuestion   bool     `json:"isQuestion"`
	HasCode      bool     `json:"hasCode"`
	Topics       []string `json:"topics,omitempty"`
	CodePatterns []string `json:"codePatterns,omitempty"`
}

var (
	languages   = []string{"javascript", "python", "java", "cpp", "c++", "go", "rust", "typescript"}
	urgentWords = []string{"urgent", "asap", "immediately", "critical", "emergency", "deadline"}
	topicWords  = []string{"algorithm", "data structure", "performance", "security", "testing", "debugging"}

	questionRe = regexp.MustCompile(`\?|\b(how|what|why|when|where|can|could|should|would)\b`)
	codeRe     = regexp.MustCompile("```|`|\\bcode\\b")
	languageRe = make(map[string]*regexp.Regexp, len(languages))

	codePatternRules = []struct {
		name    string
		pattern *regexp.Regexp
	}{
		{"loop", regexp.MustCompile(`(?i)for\s*\(`)},
		{"function", regexp.MustCompile(`(?i)function|def\s+|func\s+`)},
		{"class", regexp.MustCompile(`(?i)class\s+`)},
		{"conditional", regexp.MustCompile(`(?i)if\s*\(`)},
	}
)

func init() {
	for _, l := range languages {
		languageRe[l] = regexp.MustCompile(`(^|[^a-z+])` + regexp.QuoteMeta(l) + `($|[^a-z+])`)
	}
}

// Analyze runs every detector over msg.
func Analyze(msg string) Analysis {
	m := strings.ToLower(msg)
	a := Analysis{
		Language:   detectLanguage(m),
		Urgent:     containsAny(m, urgentWords),
		Emotion:    detectEmotion(m),
		IsQuestion: questionRe.MatchString(m),
		HasCode:    codeRe.MatchString(msg),
	}
	for _, t := range topicWords {
		if strings.Contains(m, t) {
			a.Topics = append(a.Topics, t)
		}
	}
	for _, r := range codePatternRules {
		if r.pattern.MatchString(msg) {
			a.CodePatterns = append(a.CodePatterns, r.name)
		}
	}
	return a
}

// detectLanguage matches whole words so "go" does not fire on "good".
func detectLanguage(m string) string {
	for _, l := range languages {
		if languageRe[l].MatchString(m) {
			return l
		}
	}
	return ""
}

func detectEmotion(m string) string {
	switch {
	case containsAny(m, []string{"frustrated", "stuck", "confused"}):
		return "frustrated"
	case containsAny(m, []string{"excited", "love", "awesome"}):
		return "excited"
	case containsAny(m, []string{"worried", "concerned", "afraid"}):
		return "concerned"
	}
	return "neutral"
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
