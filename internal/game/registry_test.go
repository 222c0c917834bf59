package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanketnaik99/trivia-sub000/internal"
)

func emptyRoom() *internal.Room {
	return &internal.Room{
		Participants: make(map[string]*internal.Participant),
		Phase:        internal.PhaseLobby,
	}
}

func TestRegistryCreateRoomRejectsDuplicateCode(t *testing.T) {
	rg := NewRegistry(10, time.Minute)

	require.NoError(t, rg.CreateRoom("ABC234", emptyRoom()))
	assert.ErrorIs(t, rg.CreateRoom("ABC234", emptyRoom()), ErrRoomExists)
	// Codes normalize to uppercase, so a lowercase variant is the same code
	assert.ErrorIs(t, rg.CreateRoom("abc234", emptyRoom()), ErrRoomExists)
}

func TestRegistryGetRoomIsCaseInsensitive(t *testing.T) {
	rg := NewRegistry(10, time.Minute)
	room := emptyRoom()
	require.NoError(t, rg.CreateRoom("XYZ789", room))

	assert.Same(t, room, rg.GetRoom("xyz789"))
	assert.Same(t, room, rg.GetRoom("XYZ789"))
	assert.Nil(t, rg.GetRoom("NOPE22"))
}

func TestRegistryEnforcesRoomLimit(t *testing.T) {
	rg := NewRegistry(2, time.Minute)

	require.NoError(t, rg.CreateRoom("AAAA22", emptyRoom()))
	require.NoError(t, rg.CreateRoom("BBBB22", emptyRoom()))
	assert.ErrorIs(t, rg.CreateRoom("CCCC22", emptyRoom()), ErrRoomLimit)

	rg.DeleteRoom("AAAA22")
	assert.NoError(t, rg.CreateRoom("CCCC22", emptyRoom()))
}

func TestRegistryDeleteRoomFiresOnDelete(t *testing.T) {
	rg := NewRegistry(10, time.Minute)
	groupID := "group-1"
	room := emptyRoom()
	room.GroupID = &groupID
	require.NoError(t, rg.CreateRoom("DELT22", room))

	deleted := make(chan string, 1)
	rg.SetOnDelete(func(code string, gid *string) {
		require.NotNil(t, gid)
		assert.Equal(t, "group-1", *gid)
		deleted <- code
	})

	rg.DeleteRoom("DELT22")

	select {
	case code := <-deleted:
		assert.Equal(t, "DELT22", code)
	case <-time.After(time.Second):
		t.Fatal("onDelete never fired")
	}
	assert.Nil(t, rg.GetRoom("DELT22"))
}

func TestRegistryCleanupDeletesEmptyRoom(t *testing.T) {
	rg := NewRegistry(10, 20*time.Millisecond)
	require.NoError(t, rg.CreateRoom("CLEN22", emptyRoom()))

	rg.ScheduleCleanup("CLEN22")

	require.Eventually(t, func() bool {
		return rg.GetRoom("CLEN22") == nil
	}, time.Second, 5*time.Millisecond)
}

func TestRegistryCleanupSparesRepopulatedRoom(t *testing.T) {
	rg := NewRegistry(10, 20*time.Millisecond)
	room := emptyRoom()
	require.NoError(t, rg.CreateRoom("SPAR22", room))

	rg.ScheduleCleanup("SPAR22")

	// A join racing the timer wins
	room.Mu.Lock()
	room.Participants["p1"] = &internal.Participant{ID: "p1", Status: internal.StatusConnected}
	room.Mu.Unlock()

	time.Sleep(60 * time.Millisecond)
	assert.NotNil(t, rg.GetRoom("SPAR22"))
}

func TestRegistryActivityCancelsCleanup(t *testing.T) {
	rg := NewRegistry(10, 20*time.Millisecond)
	require.NoError(t, rg.CreateRoom("ACTV22", emptyRoom()))

	rg.ScheduleCleanup("ACTV22")
	rg.UpdateLastActivity("ACTV22")

	time.Sleep(60 * time.Millisecond)
	assert.NotNil(t, rg.GetRoom("ACTV22"))
}
