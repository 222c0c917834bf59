package game

import (
	"context"
	"sync"
	"time"

	"github.com/sanketnaik99/trivia-sub000/internal"
	"github.com/sanketnaik99/trivia-sub000/internal/auth"
	"github.com/sanketnaik99/trivia-sub000/internal/config"
)

// fakeStore is an in-memory Store for hub tests.
type fakeStore struct {
	mu        sync.Mutex
	members   map[string]bool
	questions []internal.Question
	points    map[string]int
	completed []string
}

func newFakeStore(questions []internal.Question) *fakeStore {
	return &fakeStore{
		members:   make(map[string]bool),
		questions: questions,
		points:    make(map[string]int),
	}
}

func (f *fakeStore) memberKey(userID, groupID string) string { return userID + "/" + groupID }

func (f *fakeStore) IsGroupMember(_ context.Context, userID, groupID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[f.memberKey(userID, groupID)], nil
}

func (f *fakeStore) UpsertMembership(_ context.Context, userID, groupID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[f.memberKey(userID, groupID)] = true
	return nil
}

func (f *fakeStore) AddGroupPoints(_ context.Context, groupID, userID string, points int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points[f.memberKey(userID, groupID)] += points
	return nil
}

func (f *fakeStore) GroupLeaderboard(_ context.Context, groupID string) ([]internal.GroupStanding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	standings := make([]internal.GroupStanding, 0)
	for key, pts := range f.points {
		standings = append(standings, internal.GroupStanding{UserID: key, Points: pts})
	}
	return standings, nil
}

func (f *fakeStore) ListQuestions(_ context.Context) ([]internal.Question, error) {
	return f.questions, nil
}

func (f *fakeStore) CountQuestionsByCategory(_ context.Context, category string) (int, error) {
	count := 0
	for _, q := range f.questions {
		if q.Category == category {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) MarkScheduledGameCompleted(_ context.Context, roomCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, roomCode)
	return nil
}

func (f *fakeStore) Close() {}

func sampleQuestions() []internal.Question {
	return []internal.Question{
		{ID: "q-1", Text: "What is the capital of France?", Answer: "Paris", Category: "geography"},
		{ID: "q-2", Text: "Who painted the Mona Lisa?", Answer: "Leonardo da Vinci",
			AcceptedAnswers: []string{"Da Vinci", "Leonardo"}, Category: "art"},
		{ID: "q-3", Text: "What is the largest planet?", Answer: "Jupiter", Category: "science"},
	}
}

func newTestHub(cfg config.Config, questions []internal.Question) (*Hub, *fakeStore) {
	if cfg.MaxRooms == 0 {
		cfg.MaxRooms = 10
	}
	if cfg.RoomCleanupDelay == 0 {
		cfg.RoomCleanupDelay = 25 * time.Millisecond
	}
	st := newFakeStore(questions)
	return NewHub(cfg, st, NewQuestionBank(questions), auth.NewJWTVerifier("test-secret")), st
}

// newTestRoom registers a lobby room directly, bypassing the create handler.
func newTestRoom(h *Hub, code string) *internal.Room {
	now := time.Now()
	room := &internal.Room{
		Participants:     make(map[string]*internal.Participant),
		Phase:            internal.PhaseLobby,
		UsedQuestionIDs:  make([]string, 0),
		FeedbackMode:     internal.FeedbackAfterEach,
		MaxActivePlayers: internal.DefaultMaxActive,
		CreatedAt:        now,
		LastActivityAt:   now,
	}
	if err := h.Registry.CreateRoom(code, room); err != nil {
		panic(err)
	}
	return room
}

// addPlayer inserts a connected participant without going through JOIN.
func addPlayer(room *internal.Room, id, name string, role internal.ParticipantRole) *internal.Participant {
	p := &internal.Participant{
		ID:       id,
		Room:     room,
		Name:     name,
		Role:     role,
		Status:   internal.StatusConnected,
		JoinedAt: time.Now(),
	}
	room.Mu.Lock()
	room.Participants[p.ID] = p
	room.Mu.Unlock()
	return p
}

// boundSession returns a conn-less session already bound to the participant.
func boundSession(room *internal.Room, p *internal.Participant) *session {
	s := &session{}
	s.bind(room, p)
	return s
}
