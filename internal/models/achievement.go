package models

// Badge levels by score
const (
	LevelBronze = "Bronze"
	LevelSilver = "Silver"
	LevelGold   = "Gold"
)

// PointsPerAchievement is awarded for every unlocked achievement.
const PointsPerAchievement = 25

// Achievement is the evaluated state of one catalog rule.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
	Progress    int    `json:"progress"`
}

// RewardsSummary is everything the rewards page shows about the current user.
type RewardsSummary struct {
	Achievements  []Achievement `json:"achievements"`
	UnlockedCount int           `json:"unlocked_count"`
	Score         int           `json:"score"`
	Level         string        `json:"level"`
	NextLevel     string        `json:"next_level,omitempty"`
	PointsToNext  int           `json:"points_to_next"`
	MemberSince   string        `json:"member_since,omitempty"`
}

// LevelForScore maps a score to its badge level.
func LevelForScore(score int) string {
	switch {
	case score >= 500:
		return LevelGold
	case score >= 250:
		return LevelSilver
	default:
		return LevelBronze
	}
}

// NextLevelForScore returns the next badge and the points still needed.
// Gold is terminal and reports an empty level.
func NextLevelForScore(score int) (string, int) {
	switch {
	case score >= 500:
		return "", 0
	case score >= 250:
		return LevelGold, 500 - score
	default:
		return LevelSilver, 250 - score
	}
}

// LeaderboardEntry is one row of the leaderboard. Rank is 1-based and only
// set after ranking.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Score  int    `json:"score"`
	Level  string `json:"level"`
	IsYou  bool   `json:"is_you"`
}

// Leaderboard is the ranked roster plus the caller's position.
type Leaderboard struct {
	Entries  []LeaderboardEntry `json:"entries"`
	YourRank int                `json:"your_rank"`
}
