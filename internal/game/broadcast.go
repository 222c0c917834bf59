package game

import (
	"log"

	"github.com/sanketnaik99/trivia-sub000/internal"
)

// =============================================================================
// BROADCASTING & MESSAGING
// =============================================================================

// SafeBroadcastToRoom sends to every connected participant. Participants are
// snapshotted under the room lock; writes happen outside it.
func SafeBroadcastToRoom[T any](room *internal.Room, msg internal.Message[T]) {
	room.Mu.RLock()
	participants := make([]*internal.Participant, 0, len(room.Participants))
	for _, p := range room.Participants {
		if p.Status == internal.StatusConnected {
			participants = append(participants, p)
		}
	}
	room.Mu.RUnlock()

	successCount := 0
	for _, p := range participants {
		if err := p.SafeWriteJSON(msg); err != nil {
			log.Printf("[Broadcast][Room:%s] failed for participant %s (%s): %v",
				room.Code, p.ID, p.Name, err)
			continue
		}
		successCount++
	}
	log.Printf("[Broadcast][Room:%s] sent %s to %d/%d participants",
		room.Code, msg.Type, successCount, len(participants))
}

// SafeBroadcastToRoomExcept sends to every connected participant except one.
func SafeBroadcastToRoomExcept[T any](room *internal.Room, msg internal.Message[T], exclude *internal.Participant) {
	room.Mu.RLock()
	participants := make([]*internal.Participant, 0, len(room.Participants))
	for _, p := range room.Participants {
		if p.Status == internal.StatusConnected {
			participants = append(participants, p)
		}
	}
	room.Mu.RUnlock()

	successCount := 0
	for _, p := range participants {
		if exclude != nil && p.ID == exclude.ID {
			continue
		}
		if err := p.SafeWriteJSON(msg); err != nil {
			log.Printf("[BroadcastExcept][Room:%s] failed for participant %s (%s): %v",
				room.Code, p.ID, p.Name, err)
			continue
		}
		successCount++
	}
	log.Printf("[BroadcastExcept][Room:%s] sent %s to %d participants",
		room.Code, msg.Type, successCount)
}

// buildRoomState assembles the full snapshot. Caller holds room.Mu.
func buildRoomState(room *internal.Room) internal.RoomStateData {
	state := internal.RoomStateData{
		RoomCode:         room.Code,
		Phase:            room.Phase,
		Participants:     room.ParticipantSnapshots(),
		Leaderboard:      ComputeLeaderboard(room),
		GroupID:          room.GroupID,
		SelectedCategory: room.SelectedCategory,
		FeedbackMode:     room.FeedbackMode,
		MaxActivePlayers: room.MaxActivePlayers,
		SpectatorCount:   room.SpectatorCount(),
	}

	if room.CurrentQuestion != nil {
		state.CurrentQuestion = &internal.QuestionPublic{
			ID:       room.CurrentQuestion.ID,
			Text:     room.CurrentQuestion.Text,
			Category: room.CurrentQuestion.Category,
		}
	}
	if room.CurrentRound != nil {
		state.CurrentRound = &internal.RoundSummary{
			QuestionID: room.CurrentRound.QuestionID,
			StartTime:  room.CurrentRound.StartTime,
			DurationMs: room.CurrentRound.Duration.Milliseconds(),
			Answered:   len(room.CurrentRound.Answers),
		}
	}
	return state
}

// BroadcastRoomState sends a fresh full snapshot to everyone in the room.
func BroadcastRoomState(room *internal.Room) {
	room.Mu.RLock()
	state := buildRoomState(room)
	room.Mu.RUnlock()

	SafeBroadcastToRoom(room, internal.Message[internal.RoomStateData]{
		Type: internal.EventRoomState,
		Data: state,
	})
}

// SendRoomState sends the snapshot to a single participant.
func SendRoomState(room *internal.Room, p *internal.Participant) {
	room.Mu.RLock()
	state := buildRoomState(room)
	room.Mu.RUnlock()

	if err := p.SafeWriteJSON(internal.Message[internal.RoomStateData]{
		Type: internal.EventRoomState,
		Data: state,
	}); err != nil {
		log.Printf("[SendRoomState] room=%s: failed for participant %s: %v", room.Code, p.ID, err)
	}
}
