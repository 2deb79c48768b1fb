package assistant

import "github.com/code-arsenal/arsenal/internal/gamification"

var tips = []string{
	"Break complex problems into smaller, manageable pieces",
	"Use descriptive variable names to make your code self-documenting",
	"Practice explaining your solutions - it solidifies understanding",
	"Review failed attempts to identify patterns and improve",
	"Time-box your problem-solving to avoid getting stuck too long",
}

var explanations = []string{
	"**Detailed explanation**\n\nLet's break this down step by step, with an example for each part.",
	"**Deep dive**\n\nHere's the concept, where it shows up in practice, and the common pitfalls.",
	"**Technical analysis**\n\nI'll start from the underlying idea and build up to real-world use.",
	"**Conceptual overview**\n\nFirst some context, then a worked example, then best practices.",
}

var generalOpeners = []string{
	"**Your programming mentor**\n\nI can review code, help debug, plan your learning and give challenge hints.",
	"**Ready when you are**\n\nAsk me about algorithms, data structures, security, performance or your next challenge.",
	"**Let's level up**\n\nTell me what you're working on and I'll tailor the help to your progress.",
}

var challengeHints = map[string][]string{
	gamification.CatAlgorithms: {
		"Consider the time complexity: can you solve this in O(n) or O(log n)?",
		"Think about edge cases: empty inputs, single elements, duplicates.",
		"Hash maps often give O(1) lookups for the inner loop.",
		"The two-pointer technique might be useful here.",
	},
	gamification.CatDataStructures: {
		"Which data structure gives the best access pattern for this problem?",
		"Think about the relationships between elements.",
		"Balance memory usage against access time.",
		"Sometimes a hybrid of two structures works best.",
	},
	gamification.CatWebDevelopment: {
		"Consider browser compatibility and user experience.",
		"Think mobile-first.",
		"Optimise for loading time: fewer round trips, smaller payloads.",
		"Don't forget security: validate everything from the client.",
	},
	gamification.CatDynamicProgramming: {
		"Define the subproblem first, then the recurrence.",
		"Can you reduce the table to one or two rows?",
		"Start with memoised recursion, then convert to bottom-up.",
	},
	gamification.CatDatabases: {
		"Check which columns the query filters on; are they indexed?",
		"Look at the query plan before rewriting the query.",
		"Normalise first, denormalise only where reads demand it.",
	},
	gamification.CatCybersecurity: {
		"Never trust input: where does this data cross a trust boundary?",
		"Prefer vetted libraries over custom cryptography.",
		"Think like an attacker: what is the cheapest way in?",
	},
}

func hintsFor(category string) []string {
	if h, ok := challengeHints[category]; ok {
		return h
	}
	return challengeHints[gamification.CatAlgorithms]
}

var snippets = map[string]string{
	"javascript": "function solution(input) {\n  // your code here\n  return result;\n}",
	"typescript": "function solution(input: unknown): unknown {\n  // your code here\n  return result;\n}",
	"python":     "def solution(data):\n    # your code here\n    return result",
	"go":         "func solution(input []int) int {\n\t// your code here\n\treturn 0\n}",
	"java":       "class Solution {\n    public int solve(int[] input) {\n        // your code here\n        return 0;\n    }\n}",
	"rust":       "fn solution(input: &[i32]) -> i32 {\n    // your code here\n    0\n}",
	"cpp":        "int solution(const std::vector<int>& input) {\n    // your code here\n    return 0;\n}",
	"c++":        "int solution(const std::vector<int>& input) {\n    // your code here\n    return 0;\n}",
}
