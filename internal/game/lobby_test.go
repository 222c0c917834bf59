package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanketnaik99/trivia-sub000/internal"
	"github.com/sanketnaik99/trivia-sub000/internal/config"
)

func TestHandleReadyTogglesFlag(t *testing.T) {
	h, _ := newTestHub(config.Config{}, sampleQuestions())
	room := newTestRoom(h, "LOB201")
	p1 := addPlayer(room, "p1", "alice", internal.RoleActive)
	s := boundSession(room, p1)

	h.HandleReady(s, internal.ReadyData{IsReady: true})

	room.Mu.RLock()
	assert.True(t, p1.IsReady)
	room.Mu.RUnlock()

	h.HandleReady(s, internal.ReadyData{IsReady: false})

	room.Mu.RLock()
	assert.False(t, p1.IsReady)
	room.Mu.RUnlock()
}

func TestHandleReadyRejectedMidRound(t *testing.T) {
	h, _ := newTestHub(config.Config{}, sampleQuestions())
	room := newTestRoom(h, "LOB202")
	p1 := addPlayer(room, "p1", "alice", internal.RoleActive)
	activeRound(room, sampleQuestions()[0])

	h.HandleReady(boundSession(room, p1), internal.ReadyData{IsReady: true})

	room.Mu.RLock()
	defer room.Mu.RUnlock()
	assert.False(t, p1.IsReady)
}

func TestCountdownRequiresTwoConnectedActives(t *testing.T) {
	h, _ := newTestHub(config.Config{}, sampleQuestions())
	room := newTestRoom(h, "LOB203")
	p1 := addPlayer(room, "p1", "alice", internal.RoleActive)

	h.HandleReady(boundSession(room, p1), internal.ReadyData{IsReady: true})

	room.Mu.RLock()
	defer room.Mu.RUnlock()
	assert.False(t, room.CountdownPending)
}

func TestCountdownRequiresAllActivesReady(t *testing.T) {
	h, _ := newTestHub(config.Config{}, sampleQuestions())
	room := newTestRoom(h, "LOB204")
	p1 := addPlayer(room, "p1", "alice", internal.RoleActive)
	addPlayer(room, "p2", "bob", internal.RoleActive)

	h.HandleReady(boundSession(room, p1), internal.ReadyData{IsReady: true})

	room.Mu.RLock()
	defer room.Mu.RUnlock()
	assert.False(t, room.CountdownPending)
}

func TestCountdownIgnoresSpectatorsAndDisconnected(t *testing.T) {
	h, _ := newTestHub(config.Config{}, sampleQuestions())
	room := newTestRoom(h, "LOB205")
	p1 := addPlayer(room, "p1", "alice", internal.RoleActive)
	p2 := addPlayer(room, "p2", "bob", internal.RoleActive)
	addPlayer(room, "p3", "carol", internal.RoleSpectator)
	ghost := addPlayer(room, "p4", "dave", internal.RoleActive)
	ghost.Status = internal.StatusDisconnected

	h.HandleReady(boundSession(room, p1), internal.ReadyData{IsReady: true})
	h.HandleReady(boundSession(room, p2), internal.ReadyData{IsReady: true})
	defer CancelPhaseTimer(room)

	room.Mu.RLock()
	defer room.Mu.RUnlock()
	assert.True(t, room.CountdownPending)
}

func TestReadyCountdownNotCancelledByUnready(t *testing.T) {
	h, _ := newTestHub(config.Config{}, sampleQuestions())
	room := newTestRoom(h, "LOB206")
	p1 := addPlayer(room, "p1", "alice", internal.RoleActive)
	p2 := addPlayer(room, "p2", "bob", internal.RoleActive)

	h.HandleReady(boundSession(room, p1), internal.ReadyData{IsReady: true})
	h.HandleReady(boundSession(room, p2), internal.ReadyData{IsReady: true})

	room.Mu.RLock()
	require.True(t, room.CountdownPending)
	room.Mu.RUnlock()

	// Un-readying after the countdown is armed does not stop it
	h.HandleReady(boundSession(room, p1), internal.ReadyData{IsReady: false})

	room.Mu.RLock()
	assert.True(t, room.CountdownPending)
	room.Mu.RUnlock()

	h.countdownFired(room.Code)
	defer CancelPhaseTimer(room)

	room.Mu.RLock()
	defer room.Mu.RUnlock()
	assert.Equal(t, internal.PhaseActive, room.Phase)
	require.NotNil(t, room.CurrentRound)
	assert.False(t, room.CountdownPending)
}

func TestCountdownFiredOnDeletedRoomIsNoOp(t *testing.T) {
	h, _ := newTestHub(config.Config{}, sampleQuestions())
	room := newTestRoom(h, "LOB207")
	h.Registry.DeleteRoom(room.Code)

	h.countdownFired(room.Code) // must not panic
}

func TestCountdownFiredMidRoundIsIgnored(t *testing.T) {
	h, _ := newTestHub(config.Config{}, sampleQuestions())
	room := newTestRoom(h, "LOB208")
	addPlayer(room, "p1", "alice", internal.RoleActive)
	activeRound(room, sampleQuestions()[0])

	room.Mu.RLock()
	firstQuestion := room.CurrentRound.QuestionID
	room.Mu.RUnlock()

	h.countdownFired(room.Code)

	room.Mu.RLock()
	defer room.Mu.RUnlock()
	assert.Equal(t, internal.PhaseActive, room.Phase)
	assert.Equal(t, firstQuestion, room.CurrentRound.QuestionID)
}

func TestReadyFromResultsPhaseStartsNextCountdown(t *testing.T) {
	h, _ := newTestHub(config.Config{}, sampleQuestions())
	room := newTestRoom(h, "LOB209")
	p1 := addPlayer(room, "p1", "alice", internal.RoleActive)
	p2 := addPlayer(room, "p2", "bob", internal.RoleActive)

	room.Mu.Lock()
	room.Phase = internal.PhaseResults
	room.Mu.Unlock()

	h.HandleReady(boundSession(room, p1), internal.ReadyData{IsReady: true})
	h.HandleReady(boundSession(room, p2), internal.ReadyData{IsReady: true})
	defer CancelPhaseTimer(room)

	room.Mu.RLock()
	defer room.Mu.RUnlock()
	assert.True(t, room.CountdownPending)
}
