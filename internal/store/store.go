package store

import (
	"context"
	"errors"

	"github.com/sanketnaik99/trivia-sub000/internal"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrUnexpectedDatabase = errors.New("unexpected database error")
)

// Store is the narrow data-access boundary the game core depends on. Every
// method is a concrete query; the coordinator never sees a raw client.
// All calls are fallible and may suspend; callers must re-validate in-memory
// room state after any call before mutating it.
type Store interface {
	// Group membership
	IsGroupMember(ctx context.Context, userID, groupID string) (bool, error)
	UpsertMembership(ctx context.Context, userID, groupID string) error

	// Group leaderboards
	AddGroupPoints(ctx context.Context, groupID, userID string, points int) error
	GroupLeaderboard(ctx context.Context, groupID string) ([]internal.GroupStanding, error)

	// Question catalog
	ListQuestions(ctx context.Context) ([]internal.Question, error)
	CountQuestionsByCategory(ctx context.Context, category string) (int, error)

	// Scheduled games: marking completion is best-effort on room deletion.
	MarkScheduledGameCompleted(ctx context.Context, roomCode string) error

	Close()
}
