package game

import (
	"log"

	"github.com/sanketnaik99/trivia-sub000/internal"
)

// =============================================================================
// LOBBY - READY TRACKING & COUNTDOWN
// =============================================================================

// HandleReady flips a participant's ready flag. Valid only while the room is
// between rounds (lobby or results); mid-round toggles get a private error.
func (h *Hub) HandleReady(s *session, data internal.ReadyData) {
	room, p := s.binding()
	if room == nil || p == nil {
		s.sendError(internal.ErrCodeNotJoined, "you have not joined a room")
		return
	}

	h.Registry.UpdateLastActivity(room.Code)

	room.Mu.Lock()

	if room.Participants[p.ID] != p {
		room.Mu.Unlock()
		s.sendError(internal.ErrCodeNotJoined, "you are no longer in this room")
		return
	}
	if room.Phase != internal.PhaseLobby && room.Phase != internal.PhaseResults {
		room.Mu.Unlock()
		s.sendError(internal.ErrCodeInvalidState, "cannot change readiness while a round is active")
		return
	}

	p.IsReady = data.IsReady

	readyUpdate := internal.Message[internal.PlayerReadyData]{
		Type: internal.EventPlayerReady,
		Data: internal.PlayerReadyData{
			ParticipantID: p.ID,
			Name:          p.Name,
			IsReady:       p.IsReady,
			ReadyCount:    room.ReadyCount(),
			ActiveCount:   room.ActiveConnectedCount(),
		},
	}

	log.Printf("[HandleReady] room=%s participant=%s (%s) ready=%t (%d/%d)",
		room.Code, p.ID, p.Name, p.IsReady, readyUpdate.Data.ReadyCount, readyUpdate.Data.ActiveCount)

	room.Mu.Unlock()

	SafeBroadcastToRoom(room, readyUpdate)

	h.maybeScheduleCountdown(room)
}

// maybeScheduleCountdown arms the pre-round countdown when at least two
// connected active participants are all ready. Once armed, the countdown is
// never cancelled: un-readying before it fires does not stop the round from
// starting. Only one countdown can be pending at a time.
func (h *Hub) maybeScheduleCountdown(room *internal.Room) {
	room.Mu.Lock()

	if room.Phase != internal.PhaseLobby && room.Phase != internal.PhaseResults {
		room.Mu.Unlock()
		return
	}
	if room.CountdownPending {
		room.Mu.Unlock()
		return
	}
	if room.ActiveConnectedCount() < internal.MinPlayersToStart || !room.AreAllActiveReady() {
		room.Mu.Unlock()
		return
	}

	room.CountdownPending = true
	roomCode := room.Code
	room.Mu.Unlock()

	log.Printf("[maybeScheduleCountdown] room=%s: all ready, starting %v countdown",
		roomCode, internal.ReadyCountdownDuration)

	StartPhaseTimer(room, internal.ReadyCountdownDuration, func() {
		h.countdownFired(roomCode)
	})
}

// countdownFired re-resolves the room at expiry; the room may have been
// deleted or already advanced while the timer ran.
func (h *Hub) countdownFired(roomCode string) {
	room := h.Registry.GetRoom(roomCode)
	if room == nil {
		log.Printf("[countdownFired] room=%s no longer exists, ignoring", roomCode)
		return
	}

	room.Mu.Lock()
	room.CountdownPending = false
	stale := room.Phase != internal.PhaseLobby && room.Phase != internal.PhaseResults
	room.Mu.Unlock()

	if stale {
		log.Printf("[countdownFired] room=%s already advanced, ignoring", roomCode)
		return
	}

	if err := h.StartRound(room); err != nil {
		// Room stays in its last consistent phase; players can retry readying
		log.Printf("[countdownFired] room=%s: failed to start round: %v", roomCode, err)
	}
}
