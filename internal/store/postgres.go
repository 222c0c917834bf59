package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanketnaik99/trivia-sub000/internal"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) IsGroupMember(ctx context.Context, userID, groupID string) (bool, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM group_memberships WHERE user_id = $1 AND group_id = $2)",
		userID, groupID)

	var member bool
	if err := row.Scan(&member); err != nil {
		return false, wrapDBErr(err)
	}
	return member, nil
}

func (s *PostgresStore) UpsertMembership(ctx context.Context, userID, groupID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO group_memberships(user_id, group_id)
		 VALUES($1, $2)
		 ON CONFLICT (user_id, group_id) DO NOTHING`,
		userID, groupID)
	if err != nil {
		return wrapDBErr(err)
	}
	return nil
}

func (s *PostgresStore) AddGroupPoints(ctx context.Context, groupID, userID string, points int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO group_leaderboards(group_id, user_id, points, rounds_won)
		 VALUES($1, $2, $3, 1)
		 ON CONFLICT (group_id, user_id)
		 DO UPDATE SET points = group_leaderboards.points + EXCLUDED.points,
		               rounds_won = group_leaderboards.rounds_won + 1`,
		groupID, userID, points)
	if err != nil {
		return wrapDBErr(err)
	}
	return nil
}

func (s *PostgresStore) GroupLeaderboard(ctx context.Context, groupID string) ([]internal.GroupStanding, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT l.user_id, COALESCE(u.display_name, l.user_id), l.points
		 FROM group_leaderboards l
		 LEFT JOIN users u ON u.id = l.user_id
		 WHERE l.group_id = $1
		 ORDER BY l.points DESC, l.user_id`,
		groupID)
	if err != nil {
		return nil, wrapDBErr(err)
	}
	defer rows.Close()

	standings := make([]internal.GroupStanding, 0)
	for rows.Next() {
		var st internal.GroupStanding
		if err := rows.Scan(&st.UserID, &st.Name, &st.Points); err != nil {
			return nil, wrapDBErr(err)
		}
		st.Rank = len(standings) + 1
		standings = append(standings, st)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(err)
	}
	return standings, nil
}

func (s *PostgresStore) ListQuestions(ctx context.Context) ([]internal.Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, text, answer, COALESCE(accepted_answers, '{}'), category
		 FROM questions`)
	if err != nil {
		return nil, wrapDBErr(err)
	}
	defer rows.Close()

	questions := make([]internal.Question, 0)
	for rows.Next() {
		var q internal.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Answer, &q.AcceptedAnswers, &q.Category); err != nil {
			return nil, wrapDBErr(err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(err)
	}
	return questions, nil
}

func (s *PostgresStore) CountQuestionsByCategory(ctx context.Context, category string) (int, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM questions WHERE category = $1", category)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, wrapDBErr(err)
	}
	return count, nil
}

func (s *PostgresStore) MarkScheduledGameCompleted(ctx context.Context, roomCode string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE scheduled_games SET completed = TRUE, completed_at = NOW() WHERE room_code = $1",
		roomCode)
	if err != nil {
		return wrapDBErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func wrapDBErr(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
	}
}
