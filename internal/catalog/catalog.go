// Package catalog generates and serves the browsable challenge list.
package catalog

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/code-arsenal/arsenal/internal/gamification"
)

// DefaultSize is the number of challenges generated when none is configured.
const DefaultSize = 5000

var (
	ErrChallengeNotFound  = errors.New("challenge not found")
	ErrChallengeCompleted = errors.New("challenge already completed")
)

// Challenge is one catalog entry.
type Challenge struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Category    string                  `json:"category"`
	Difficulty  gamification.Difficulty `json:"difficulty"`
	Points      int                     `json:"points"`    // base XP before multipliers
	TimeLimit   int                     `json:"timeLimit"` // suggested seconds
	Tags        []string                `json:"tags"`
	Rating      int                     `json:"rating"` // 1-5
	Solvers     int                     `json:"solvers"`
	Completed   bool                    `json:"completed"`
	CompletedAt *time.Time              `json:"completedAt,omitempty"`
}

// StarterCode returns the editor scaffold shown when a challenge is opened.
func (c Challenge) StarterCode() string {
	return fmt.Sprintf(`// %s
// Difficulty: %s
// XP Reward: %d

function solution() {
    // Write your code here

    return result;
}
`, c.Title, c.Difficulty, c.Points)
}

func (c Challenge) clone() Challenge {
	cp := c
	cp.Tags = append([]string(nil), c.Tags...)
	if c.CompletedAt != nil {
		at := *c.CompletedAt
		cp.CompletedAt = &at
	}
	return cp
}

var titleTemplates = map[string][]string{
	gamification.CatAlgorithms: {
		"Two Sum", "Three Sum", "Merge Sort", "Quick Sort", "Binary Search",
		"Depth First Search", "Breadth First Search", "Dijkstra Algorithm",
		"A* Search", "Minimax Algorithm",
	},
	gamification.CatDataStructures: {
		"Implement Stack", "Implement Queue", "Binary Tree Traversal",
		"Hash Table Implementation", "Linked List Operations",
		"Heap Implementation", "Trie Data Structure", "Graph Representation",
	},
	gamification.CatDynamicProgramming: {
		"Fibonacci Sequence", "Longest Common Subsequence", "Knapsack Problem",
		"Edit Distance", "Coin Change", "Maximum Subarray",
	},
	gamification.CatMachineLearning: {
		"Linear Regression", "K-Means Clustering", "Decision Trees",
		"Neural Network Basics", "Feature Selection", "Cross Validation",
	},
	gamification.CatWebDevelopment: {
		"REST API Design", "Authentication System", "Responsive Layout",
		"State Management", "Performance Optimization", "SEO Implementation",
	},
	gamification.CatDatabases: {
		"SQL Queries", "Database Design", "Indexing Strategies",
		"Transaction Management", "Normalization", "Query Optimization",
	},
	gamification.CatCybersecurity: {
		"Encryption Algorithms", "Vulnerability Assessment", "Secure Coding",
		"Penetration Testing", "Network Security", "Cryptography",
	},
	gamification.CatMobileDevelopment: {
		"UI Components", "State Management", "API Integration",
		"Push Notifications", "Offline Storage", "Performance Optimization",
	},
}

var timeLimits = map[gamification.Difficulty]int{
	gamification.Beginner:     15 * 60,
	gamification.Intermediate: 30 * 60,
	gamification.Advanced:     45 * 60,
	gamification.Expert:       60 * 60,
}

// Generate builds n challenges from seed. The same seed and n always produce
// the same list. IDs are challenge-1 through challenge-n.
func Generate(seed int64, n int) []Challenge {
	rng := rand.New(rand.NewSource(seed))
	cats := gamification.Categories
	out := make([]Challenge, 0, max(n, 0))
	for i := 0; i < n; i++ {
		cat := cats[rng.Intn(len(cats))]
		diff := gamification.Difficulties[rng.Intn(len(gamification.Difficulties))]
		templates := titleTemplates[cat]
		tmpl := templates[rng.Intn(len(templates))]

		out = append(out, Challenge{
			ID:          fmt.Sprintf("challenge-%d", i+1),
			Title:       fmt.Sprintf("%s %d", tmpl, i+1),
			Description: fmt.Sprintf("Solve the %s problem with optimal time complexity.", strings.ToLower(tmpl)),
			Category:    cat,
			Difficulty:  diff,
			Points:      gamification.BaseXP(diff),
			TimeLimit:   timeLimits[diff],
			Tags:        []string{cat, string(diff)},
			Rating:      rng.Intn(5) + 1,
			Solvers:     rng.Intn(1000) + 50,
		})
	}
	return out
}

// Filter selects a page of challenges. Zero fields match everything; a zero
// Limit returns every match.
type Filter struct {
	Category      string
	Difficulty    gamification.Difficulty
	Search        string
	HideCompleted bool
	Limit         int
	Offset        int
}

// Page is one filtered slice of the catalog.
type Page struct {
	Items []Challenge `json:"items"`
	Total int         `json:"total"` // matches before paging
}

// CategoryCount summarises one category.
type CategoryCount struct {
	Category  string `json:"category"`
	Label     string `json:"label"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
}

// Catalog is the in-memory challenge list. Completion flags live only for
// the lifetime of the process.
type Catalog struct {
	mu    sync.RWMutex
	items []Challenge
	index map[string]int
}

// New wraps items, which the catalog takes ownership of.
func New(items []Challenge) *Catalog {
	idx := make(map[string]int, len(items))
	for i, c := range items {
		idx[c.ID] = i
	}
	return &Catalog{items: items, index: idx}
}

// Len returns the number of challenges.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get returns a copy of the challenge with the given ID.
func (c *Catalog) Get(id string) (Challenge, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return Challenge{}, fmt.Errorf("%w: %s", ErrChallengeNotFound, id)
	}
	return c.items[i].clone(), nil
}

// Filter returns the matching challenges in catalog order.
func (c *Catalog) Filter(f Filter) Page {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	c.mu.RLock()
	defer c.mu.RUnlock()

	var matches []Challenge
	for _, ch := range c.items {
		if f.Category != "" && ch.Category != f.Category {
			continue
		}
		if f.Difficulty != "" && ch.Difficulty != f.Difficulty {
			continue
		}
		if f.HideCompleted && ch.Completed {
			continue
		}
		if search != "" && !matchesSearch(ch, search) {
			continue
		}
		matches = append(matches, ch)
	}

	page := Page{Total: len(matches), Items: []Challenge{}}
	start := min(max(f.Offset, 0), len(matches))
	end := len(matches)
	if f.Limit > 0 {
		end = min(start+f.Limit, end)
	}
	for _, ch := range matches[start:end] {
		page.Items = append(page.Items, ch.clone())
	}
	return page
}

func matchesSearch(ch Challenge, q string) bool {
	if strings.Contains(strings.ToLower(ch.Title), q) ||
		strings.Contains(strings.ToLower(ch.Description), q) {
		return true
	}
	for _, t := range ch.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// MarkCompleted flags a challenge as solved at the given time.
func (c *Catalog) MarkCompleted(id string, at time.Time) (Challenge, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return Challenge{}, fmt.Errorf("%w: %s", ErrChallengeNotFound, id)
	}
	ch := &c.items[i]
	if ch.Completed {
		return ch.clone(), fmt.Errorf("%w: %s", ErrChallengeCompleted, id)
	}
	ch.Completed = true
	ch.CompletedAt = &at
	ch.Solvers++
	return ch.clone(), nil
}

// ResetCompleted clears every completion flag and the solver credited with it.
func (c *Catalog) ResetCompleted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		ch := &c.items[i]
		if !ch.Completed {
			continue
		}
		ch.Completed = false
		ch.CompletedAt = nil
		ch.Solvers = max(ch.Solvers-1, 0)
	}
}

// Categories returns per-category counts in display order.
func (c *Catalog) Categories() []CategoryCount {
	c.mu.RLock()
	counts := make(map[string]*CategoryCount, len(gamification.Categories))
	for _, ch := range c.items {
		cc, ok := counts[ch.Category]
		if !ok {
			cc = &CategoryCount{Category: ch.Category, Label: gamification.CategoryLabel(ch.Category)}
			counts[ch.Category] = cc
		}
		cc.Total++
		if ch.Completed {
			cc.Completed++
		}
	}
	c.mu.RUnlock()

	order := make(map[string]int, len(gamification.Categories))
	for i, cat := range gamification.Categories {
		order[cat] = i
	}
	out := make([]CategoryCount, 0, len(counts))
	for _, cc := range counts {
		out = append(out, *cc)
	}
	sort.Slice(out, func(i, j int) bool {
		oi, iok := order[out[i].Category]
		oj, jok := order[out[j].Category]
		if iok != jok {
			return iok
		}
		if oi != oj {
			return oi < oj
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Completed returns up to limit solved challenges, most recent first.
func (c *Catalog) Completed(limit int) []Challenge {
	c.mu.RLock()
	var done []Challenge
	for _, ch := range c.items {
		if ch.Completed {
			done = append(done, ch.clone())
		}
	}
	c.mu.RUnlock()

	sort.SliceStable(done, func(i, j int) bool {
		return done[i].CompletedAt.After(*done[j].CompletedAt)
	})
	if limit > 0 && len(done) > limit {
		done = done[:limit]
	}
	return done
}
