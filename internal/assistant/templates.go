package assistant

// Reply templates, keyed by intent. Rendered with replyData.
var replyTemplates = map[Intent]string{
	IntentGreeting: `**Good {{.TimeOfDay}}, {{.Profile.Username}}!**

**Your coding journey**
- Current level: **{{.Profile.Level}}** ({{.Profile.Rank}})
- Total XP: **{{comma .Profile.TotalXP}}**
- Success rate: **{{.Profile.SuccessRate}}%**
- Current streak: **{{.Profile.Streak}} days**

{{.Activity}}

**Tip:** {{.Tip}}

I can help with code review, debugging, learning paths, security and challenge hints. What would you like to work on today?`,

	IntentCodeAnalysis: `**Code analysis mode**

I'll look at:
- **Quality**: readability, maintainability, style
- **Performance**: time and space complexity
- **Security**: common vulnerabilities
- **Architecture**: structure and design patterns
- **Testing**: coverage gaps

Paste your snippet in a fenced block{{if .Analysis.Language}} (I see you're using **{{.Analysis.Language}}**){{end}}, or describe the area to focus on.

At level {{.Profile.Level}} I'll pitch the feedback at a **{{.SkillLevel}}** level.`,

	IntentDebugging: `**Debugging assistant: {{if .Analysis.Urgent}}HIGH{{else}}NORMAL{{end}} priority**

**Step 1: Error analysis**
- Share the exact error message
- Include the failing code
- Describe when it happens

**Step 2: Context**
- Language: {{if .Analysis.Language}}{{.Analysis.Language}}{{else}}please specify{{end}}
- Expected vs actual behaviour
- Recent changes

**Step 3: Diagnosis**
{{if .Analysis.Urgent}}- Reproduce with the smallest input first
- Bisect recent changes before reading code line by line{{else}}- Rubber duck: explain the code line by line
- Binary search: isolate the failing section
- Print debugging at the boundaries
- Follow the stack trace{{end}}
{{if eq .Analysis.Emotion "frustrated"}}
Bugs like this are frustrating. Take it one step at a time; we'll get there.{{end}}`,

	IntentLearning: `**Personalised learning path**

- Current level: **{{.Profile.Level}}**
- Learning style: **{{.LearningStyle}}**
- Strongest areas: **{{join .TopSkills ", "}}**
{{- if .Gaps}}
- Growth areas: **{{join .Gaps ", "}}**{{end}}

**Recommended next steps**
{{.LearningPath}}

Focus on concepts over syntax, practise daily and build small projects. What topic would you like to dive into?`,

	IntentExplanation: `{{.Explanation}}
{{- if .Analysis.Topics}}

Topics I picked up: {{join .Analysis.Topics ", "}}.{{end}}

{{.LevelTip}}`,

	IntentOptimization: `**Performance optimisation**

I can look at:
- Algorithmic complexity
- Memory usage and allocation
- Caching strategies
- Parallelism
- Database query plans
{{- if .Analysis.CodePatterns}}

I spotted: {{join .Analysis.CodePatterns ", "}}. Loops and nested conditionals are the usual hot spots.{{end}}

Share the code and what "fast enough" means for you.`,

	IntentSecurity: `**Security review**

I'll check for:
- Input validation and injection (SQL, command, XSS)
- Authentication and session handling
- Authorisation and access control
- Secrets and encryption at rest
- OWASP Top 10 issues

Your cybersecurity skill is at **{{index .Profile.SkillPoints "cybersecurity"}}/100**. Share the code you want reviewed.`,

	IntentCareerAdvice: `**Career guidance**

As a **{{.Profile.Rank}}** (level {{.Profile.Level}}) with {{.Profile.ChallengesSolved}} challenges solved:
{{.Recommendations}}
{{.Advanced}}

Interview tip: practise explaining your solutions out loud while you solve them.`,

	IntentChallenge: `{{if .Challenge}}**Hint for "{{.Challenge.Title}}"**

{{.Hint}}

- Difficulty: {{.Challenge.Difficulty}}
- Potential XP: {{.Challenge.Points}}+{{else}}You're not working on a challenge right now. Want me to recommend one for a level {{.Profile.Level}} coder? Try something in **{{label .Favorite}}**.{{end}}`,

	IntentCodeGeneration: `**Code scaffold{{if .Analysis.Language}} ({{.Analysis.Language}}){{end}}**

` + "```" + `{{.SnippetLang}}
{{.Snippet}}
` + "```" + `

Fill in the body and I'll review it with you.`,

	IntentGeneral: `{{.General}}

{{.LevelTip}}

**Recommendations**
{{.Recommendations}}`,
}
