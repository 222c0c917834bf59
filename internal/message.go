package internal

import "time"

type Message[T any] struct {
	Type EventType `json:"type"`
	Data T         `json:"data"`
}

// EventType is the closed set of wire event names. Inbound dispatch switches
// over these constants so an unhandled kind is a compile-visible gap, not a
// silently dropped string.
type EventType string

// Client -> server
const (
	EventRoomCreate       EventType = "room:create"
	EventJoin             EventType = "JOIN"
	EventReady            EventType = "READY"
	EventAnswer           EventType = "ANSWER"
	EventLeave            EventType = "LEAVE"
	EventChangeRole       EventType = "CHANGE_ROLE_PREFERENCE"
	EventGroupSubscribe   EventType = "group:subscribe"
	EventGroupUnsubscribe EventType = "group:unsubscribe"
)

// Server -> client
const (
	EventRoomCreated        EventType = "ROOM_CREATED"
	EventRoomState          EventType = "ROOM_STATE"
	EventPlayerJoined       EventType = "PLAYER_JOINED"
	EventPlayerLeft         EventType = "PLAYER_LEFT"
	EventPlayerReady        EventType = "PLAYER_READY"
	EventGameStart          EventType = "GAME_START"
	EventAnswerSubmitted    EventType = "ANSWER_SUBMITTED"
	EventAnswerCountUpdate  EventType = "ANSWER_COUNT_UPDATE"
	EventRoundEnd           EventType = "ROUND_END"
	EventReconnected        EventType = "RECONNECTED"
	EventTimerUpdate        EventType = "TIMER_UPDATE"
	EventError              EventType = "ERROR"
	EventLeaderboardUpdated EventType = "leaderboard:updated"
)

// Error codes carried by EventError payloads.
const (
	ErrCodeRoomNotFound        = "room_not_found"
	ErrCodeInvalidState        = "invalid_state"
	ErrCodeAlreadyAnswered     = "already_answered"
	ErrCodeNotJoined           = "not_joined"
	ErrCodeRoomLimit           = "room_limit"
	ErrCodeNameTaken           = "name_taken"
	ErrCodeNotAMember          = "not_a_member"
	ErrCodeInvalidCategory     = "invalid_category"
	ErrCodeInvalidFeedbackMode = "invalid_feedback_mode"
	ErrCodeRoleCapacity        = "role_capacity"
	ErrCodeUnauthorized        = "unauthorized"
	ErrCodeInvalidPayload      = "invalid_payload"
	ErrCodeUnknownEvent        = "unknown_event"
)

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateRoomData struct {
	GroupID          *string `json:"group_id,omitempty"`
	SelectedCategory *string `json:"selected_category,omitempty"`
	FeedbackMode     string  `json:"feedback_mode,omitempty"`
	UserID           string  `json:"user_id,omitempty"`
}

type RoomCreatedData struct {
	RoomCode string  `json:"room_code"`
	GroupID  *string `json:"group_id,omitempty"`
}

type JoinData struct {
	PlayerID   string `json:"player_id,omitempty"`
	PlayerName string `json:"player_name"`
	RoomCode   string `json:"room_code"`
	UserID     string `json:"user_id,omitempty"`
}

type ReadyData struct {
	IsReady bool `json:"is_ready"`
}

type AnswerData struct {
	AnswerText string `json:"answer_text"`
	Timestamp  int64  `json:"timestamp_ms"`
}

type ChangeRoleData struct {
	PreferredRole ParticipantRole `json:"preferred_role"`
}

type GroupSubscribeData struct {
	GroupID string `json:"group_id"`
}

type PlayerJoinedData struct {
	Participant    ParticipantSnapshot `json:"participant"`
	PlayerCount    int                 `json:"player_count"`
	SpectatorCount int                 `json:"spectator_count"`
}

type PlayerLeftData struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	PlayerCount   int    `json:"player_count"`
}

type PlayerReadyData struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	IsReady       bool   `json:"is_ready"`
	ReadyCount    int    `json:"ready_count"`
	ActiveCount   int    `json:"active_count"`
}

type GameStartData struct {
	RoomCode     string    `json:"room_code"`
	QuestionID   string    `json:"question_id"`
	QuestionText string    `json:"question_text"`
	StartTime    time.Time `json:"start_time"`
	DurationMs   int64     `json:"duration_ms"`
}

type AnswerSubmittedData struct {
	QuestionID string `json:"question_id"`
	Timestamp  int64  `json:"timestamp_ms"`
	Accepted   bool   `json:"accepted"`
}

type AnswerCountData struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

type RoundEndData struct {
	QuestionID      string             `json:"question_id"`
	CorrectAnswer   string             `json:"correct_answer"`
	AcceptedAnswers []string           `json:"accepted_answers"`
	WinnerID        *string            `json:"winner_id"`
	WinnerName      string             `json:"winner_name,omitempty"`
	WinnerScore     int                `json:"winner_score,omitempty"`
	Results         []RoundResult      `json:"results"`
	Leaderboard     []LeaderboardEntry `json:"leaderboard"`
}

type ReconnectedData struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
}

type TimerUpdateData struct {
	TimeRemaining int64     `json:"time_remaining_ms"`
	Phase         GamePhase `json:"phase"`
	IsActive      bool      `json:"is_active"`
}

// GroupStanding is one row of a persistent group leaderboard.
type GroupStanding struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Rank   int    `json:"rank"`
}

type LeaderboardUpdatedData struct {
	GroupID     string          `json:"group_id"`
	Leaderboard []GroupStanding `json:"leaderboard"`
	RoomCode    string          `json:"room_code,omitempty"`
}

type RoundSummary struct {
	QuestionID string    `json:"question_id"`
	StartTime  time.Time `json:"start_time"`
	DurationMs int64     `json:"duration_ms"`
	Answered   int       `json:"answered"`
}

type RoomStateData struct {
	RoomCode         string                `json:"room_code"`
	Phase            GamePhase             `json:"phase"`
	Participants     []ParticipantSnapshot `json:"participants"`
	CurrentQuestion  *QuestionPublic       `json:"current_question,omitempty"`
	CurrentRound     *RoundSummary         `json:"current_round,omitempty"`
	Leaderboard      []LeaderboardEntry    `json:"leaderboard"`
	GroupID          *string               `json:"group_id,omitempty"`
	SelectedCategory *string               `json:"selected_category,omitempty"`
	FeedbackMode     FeedbackMode          `json:"feedback_mode"`
	MaxActivePlayers int                   `json:"max_active_players"`
	SpectatorCount   int                   `json:"spectator_count"`
}

// QuestionPublic is the question as broadcast mid-round: no answers attached.
type QuestionPublic struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
}
