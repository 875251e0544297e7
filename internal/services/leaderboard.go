package services

import (
	"sort"

	"pocket-budget/internal/models"
)

// DefaultRoster is the fixed set of other savers the user competes with.
func DefaultRoster() []models.LeaderboardEntry {
	roster := []models.LeaderboardEntry{
		{Name: "Aarav", Avatar: "🦁", Score: 475},
		{Name: "Priya", Avatar: "🦋", Score: 400},
		{Name: "Rohan", Avatar: "🐯", Score: 350},
		{Name: "Ananya", Avatar: "🌸", Score: 300},
		{Name: "Vikram", Avatar: "🦅", Score: 225},
		{Name: "Meera", Avatar: "🐬", Score: 150},
		{Name: "Kabir", Avatar: "🐼", Score: 100},
		{Name: "Isha", Avatar: "🦊", Score: 50},
	}
	for i := range roster {
		roster[i].Level = models.LevelForScore(roster[i].Score)
	}
	return roster
}

// RankLeaderboard appends user after roster, sorts by score descending and
// returns the ranked entries with the user's 1-based rank. Equal scores keep
// insertion order, so the user ranks below roster entries with the same score.
func RankLeaderboard(roster []models.LeaderboardEntry, user models.LeaderboardEntry) ([]models.LeaderboardEntry, int) {
	entries := make([]models.LeaderboardEntry, 0, len(roster)+1)
	entries = append(entries, roster...)
	for i := range entries {
		entries[i].IsYou = false
	}

	user.IsYou = true
	if user.Level == "" {
		user.Level = models.LevelForScore(user.Score)
	}
	entries = append(entries, user)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	rank := 0
	for i := range entries {
		entries[i].Rank = i + 1
		if entries[i].IsYou {
			rank = i + 1
		}
	}
	return entries, rank
}
