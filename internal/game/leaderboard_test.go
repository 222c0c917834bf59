package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanketnaik99/trivia-sub000/internal"
)

func TestComputeLeaderboardOrdersByScoreThenRecency(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-time.Minute)

	room := &internal.Room{Participants: map[string]*internal.Participant{
		"p1": {ID: "p1", Name: "alice", Score: 2, RoundsWon: 2, LastWinAt: &earlier},
		"p2": {ID: "p2", Name: "bob", Score: 2, RoundsWon: 2, LastWinAt: &now},
		"p3": {ID: "p3", Name: "carol", Score: 3, RoundsWon: 3, LastWinAt: &earlier},
	}}

	entries := ComputeLeaderboard(room)

	require.Len(t, entries, 3)
	assert.Equal(t, "p3", entries[0].ParticipantID)
	assert.Equal(t, "p2", entries[1].ParticipantID)
	assert.Equal(t, "p1", entries[2].ParticipantID)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestComputeLeaderboardNeverWonSortsBelowWinners(t *testing.T) {
	now := time.Now()

	room := &internal.Room{Participants: map[string]*internal.Participant{
		"p1": {ID: "p1", Name: "alice", Score: 1, LastWinAt: &now},
		"p2": {ID: "p2", Name: "bob", Score: 1},
	}}

	entries := ComputeLeaderboard(room)

	require.Len(t, entries, 2)
	assert.Equal(t, "p1", entries[0].ParticipantID)
	assert.Equal(t, "p2", entries[1].ParticipantID)
}

func TestComputeLeaderboardEmptyRoom(t *testing.T) {
	room := &internal.Room{Participants: map[string]*internal.Participant{}}
	assert.Empty(t, ComputeLeaderboard(room))
}
