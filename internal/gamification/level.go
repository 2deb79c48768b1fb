package gamification

const (
	xpPerLevelStep = 100
	// MaxDisplayLevel is where the next-level progress bar stops.
	MaxDisplayLevel = 100
)

// rankThresholds is ordered ascending by MinLevel.
var rankThresholds = []struct {
	MinLevel int
	Name     string
}{
	{1, "Rookie"},
	{5, "Code Cadet"},
	{10, "Developer"},
	{15, "Code Warrior"},
	{25, "Senior Developer"},
	{35, "Tech Lead"},
	{50, "Code Master"},
	{75, "Programming Guru"},
	{100, "Code Legend"},
}

// MaxTotalXP caps cumulative XP. Stored totals above it are clamped on load.
const MaxTotalXP = 1_000_000_000

// LevelProgress describes the position within the current level.
type LevelProgress struct {
	Level      int     `json:"level"`
	Progress   int     `json:"progress"`   // XP earned since the level started
	Required   int     `json:"required"`   // XP the level costs in total
	Percentage float64 `json:"percentage"` // 0-100
	Max        bool    `json:"max"`
}

// DeriveLevel returns the level for a cumulative XP total. Advancing past
// level k costs k*100 XP, so level 2 starts at 100, level 3 at 300, level 4
// at 600.
// Totals above MaxTotalXP derive the level of MaxTotalXP.
func DeriveLevel(totalXP int) int {
	totalXP = min(totalXP, MaxTotalXP)
	level := 1
	threshold := 0
	for totalXP >= threshold+level*xpPerLevelStep {
		threshold += level * xpPerLevelStep
		level++
	}
	return level
}

// XPForLevel returns the cumulative XP at which level starts.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return xpPerLevelStep * (level - 1) * level / 2
}

// NextLevelProgress reports how far totalXP is through its current level.
func NextLevelProgress(totalXP int) LevelProgress {
	level := DeriveLevel(totalXP)
	if level >= MaxDisplayLevel {
		return LevelProgress{Level: level, Percentage: 100, Max: true}
	}
	start := XPForLevel(level)
	required := level * xpPerLevelStep
	progress := totalXP - start
	return LevelProgress{
		Level:      level,
		Progress:   progress,
		Required:   required,
		Percentage: min(max(float64(progress)/float64(required)*100, 0), 100),
	}
}

// RankFor returns the label for the highest threshold at or below level.
func RankFor(level int) string {
	name := rankThresholds[0].Name
	for _, r := range rankThresholds {
		if level >= r.MinLevel {
			name = r.Name
		}
	}
	return name
}
