package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sanketnaik99/trivia-sub000/internal/store"
)

var repo *store.PostgresStore

func TestMain(m *testing.M) {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine3.22",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testusername"),
		postgres.WithPassword("testpassword"),
		postgres.WithInitScripts(filepath.Join("testdata", "init.sql")),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		panic(err)
	}

	connString, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}

	repo, err = store.NewPostgresStore(ctx, connString)
	if err != nil {
		panic(err)
	}

	code := m.Run()

	repo.Close()
	postgresContainer.Terminate(ctx)
	os.Exit(code)
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()

	t.Run("UpsertMembership", func(t *testing.T) {
		err := repo.UpsertMembership(ctx, "user-1", "group-1")
		assert.NoError(t, err)

		// Second upsert of the same pair is a no-op, not an error
		err = repo.UpsertMembership(ctx, "user-1", "group-1")
		assert.NoError(t, err)
	})

	t.Run("IsGroupMember", func(t *testing.T) {
		member, err := repo.IsGroupMember(ctx, "user-1", "group-1")
		assert.NoError(t, err)
		assert.True(t, member)

		member, err = repo.IsGroupMember(ctx, "user-2", "group-1")
		assert.NoError(t, err)
		assert.False(t, member)
	})

	t.Run("AddGroupPoints_Accumulates", func(t *testing.T) {
		require.NoError(t, repo.AddGroupPoints(ctx, "group-1", "user-1", 1))
		require.NoError(t, repo.AddGroupPoints(ctx, "group-1", "user-1", 1))
		require.NoError(t, repo.AddGroupPoints(ctx, "group-1", "user-2", 1))

		standings, err := repo.GroupLeaderboard(ctx, "group-1")
		require.NoError(t, err)
		require.Len(t, standings, 2)

		assert.Equal(t, "user-1", standings[0].UserID)
		assert.Equal(t, 2, standings[0].Points)
		assert.Equal(t, 1, standings[0].Rank)
		assert.Equal(t, "Alice", standings[0].Name)

		assert.Equal(t, "user-2", standings[1].UserID)
		assert.Equal(t, 1, standings[1].Points)
		assert.Equal(t, 2, standings[1].Rank)
	})

	t.Run("ListQuestions", func(t *testing.T) {
		questions, err := repo.ListQuestions(ctx)
		require.NoError(t, err)
		require.Len(t, questions, 3)

		byID := make(map[string]bool)
		for _, q := range questions {
			byID[q.ID] = true
		}
		assert.True(t, byID["q-1"])
		assert.True(t, byID["q-2"])
	})

	t.Run("ListQuestions_AcceptedAnswers", func(t *testing.T) {
		questions, err := repo.ListQuestions(ctx)
		require.NoError(t, err)

		for _, q := range questions {
			if q.ID == "q-2" {
				assert.Equal(t, []string{"Da Vinci", "Leonardo"}, q.AcceptedAnswers)
				return
			}
		}
		t.Fatal("q-2 not returned")
	})

	t.Run("CountQuestionsByCategory", func(t *testing.T) {
		count, err := repo.CountQuestionsByCategory(ctx, "geography")
		assert.NoError(t, err)
		assert.Equal(t, 1, count)

		count, err = repo.CountQuestionsByCategory(ctx, "history")
		assert.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("MarkScheduledGameCompleted", func(t *testing.T) {
		err := repo.MarkScheduledGameCompleted(ctx, "ABCDEF")
		assert.NoError(t, err)
	})

	t.Run("MarkScheduledGameCompleted_Missing", func(t *testing.T) {
		err := repo.MarkScheduledGameCompleted(ctx, "ZZZZZZ")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
