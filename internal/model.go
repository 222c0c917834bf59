package internal

import (
	"context"
	"sync"
	"time"
)

const (
	RoundDuration           = 180 * time.Second
	ReadyCountdownDuration  = 5 * time.Second
	MinPlayersToStart       = 2
	DefaultMaxActive        = 16
	RoomCodeLength          = 6
	MaxCodeAttempts         = 5
	MinQuestionsPerCategory = 10
)

type GamePhase string

const (
	PhaseLobby   GamePhase = "lobby"
	PhaseActive  GamePhase = "active"
	PhaseResults GamePhase = "results"
)

type ParticipantRole string

const (
	RoleActive    ParticipantRole = "active"
	RoleSpectator ParticipantRole = "spectator"
)

type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
)

type FeedbackMode string

const (
	FeedbackAfterEach  FeedbackMode = "after_each"
	FeedbackEndOfRound FeedbackMode = "end_of_round"
)

// ValidFeedbackMode reports enum membership for payload validation.
func ValidFeedbackMode(m FeedbackMode) bool {
	return m == FeedbackAfterEach || m == FeedbackEndOfRound
}

type Question struct {
	ID              string   `json:"id"`
	Text            string   `json:"text"`
	Answer          string   `json:"answer"`
	AcceptedAnswers []string `json:"accepted_answers"`
	Category        string   `json:"category"`
}

type ParticipantAnswer struct {
	ParticipantID string `json:"participant_id"`
	AnswerText    string `json:"answer_text"`
	Timestamp     int64  `json:"timestamp_ms"` // clamped to [0, round duration]
	IsCorrect     bool   `json:"is_correct"`
}

type Round struct {
	QuestionID string              `json:"question_id"`
	StartTime  time.Time           `json:"start_time"`
	Duration   time.Duration       `json:"-"`
	Answers    []ParticipantAnswer `json:"answers"`
	WinnerID   *string             `json:"winner_id"`
	EndTime    *time.Time          `json:"end_time"`
}

// HasAnswered reports whether the participant already has an answer entry.
func (r *Round) HasAnswered(participantID string) bool {
	for _, a := range r.Answers {
		if a.ParticipantID == participantID {
			return true
		}
	}
	return false
}

type GameTimer struct {
	StartTime     time.Time     `json:"start_time"`
	Duration      time.Duration `json:"duration"`
	TimeRemaining time.Duration `json:"time_remaining"`
	IsActive      bool          `json:"is_active"`
	Context       context.Context
	Cancel        context.CancelFunc
}

type Room struct {
	Code         string
	Participants map[string]*Participant

	// Game state
	Phase           GamePhase `json:"phase"`
	CurrentQuestion *Question `json:"current_question"`
	CurrentRound    *Round    `json:"current_round"`

	// Question history, to avoid repeats until the pool is exhausted
	UsedQuestionIDs []string `json:"used_question_ids"`

	// Configuration
	GroupID          *string      `json:"group_id"`
	SelectedCategory *string      `json:"selected_category"`
	FeedbackMode     FeedbackMode `json:"feedback_mode"`
	MaxActivePlayers int          `json:"max_active_players"`

	// Lifecycle
	CreatedAt        time.Time `json:"created_at"`
	LastActivityAt   time.Time `json:"last_activity_at"`
	CountdownPending bool      `json:"countdown_pending"`

	// Timer (ready countdown in lobby/results, auto-end while active)
	Timer *GameTimer `json:"timer"`

	// Concurrency control
	Mu sync.RWMutex `json:"-"`
}

type LeaderboardEntry struct {
	Rank          int        `json:"rank"`
	ParticipantID string     `json:"participant_id"`
	Name          string     `json:"name"`
	Score         int        `json:"score"`
	RoundsWon     int        `json:"rounds_won"`
	LastWinAt     *time.Time `json:"last_win_at,omitempty"`
}

type RoundResult struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	AnswerText    string `json:"answer_text"`
	Answered      bool   `json:"answered"`
	IsCorrect     bool   `json:"is_correct"`
	Timestamp     int64  `json:"timestamp_ms"`
	ScoreDelta    int    `json:"score_delta"`
	NewScore      int    `json:"new_score"`
}
