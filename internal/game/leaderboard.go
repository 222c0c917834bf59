package game

import (
	"slices"

	"github.com/sanketnaik99/trivia-sub000/internal"
)

// =============================================================================
// LEADERBOARD
// =============================================================================

// ComputeLeaderboard ranks participants by score descending; ties break on
// last-win recency (more recent ranks higher). Ranks are dense 1..N.
// Caller holds room.Mu.
func ComputeLeaderboard(room *internal.Room) []internal.LeaderboardEntry {
	entries := make([]internal.LeaderboardEntry, 0, len(room.Participants))
	for _, p := range room.Participants {
		entries = append(entries, internal.LeaderboardEntry{
			ParticipantID: p.ID,
			Name:          p.Name,
			Score:         p.Score,
			RoundsWon:     p.RoundsWon,
			LastWinAt:     p.LastWinAt,
		})
	}

	slices.SortFunc(entries, func(a, b internal.LeaderboardEntry) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		// Never-won participants sort below any winner on equal score
		switch {
		case a.LastWinAt == nil && b.LastWinAt == nil:
			return 0
		case a.LastWinAt == nil:
			return 1
		case b.LastWinAt == nil:
			return -1
		case a.LastWinAt.After(*b.LastWinAt):
			return -1
		case b.LastWinAt.After(*a.LastWinAt):
			return 1
		default:
			return 0
		}
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
