package game

import (
	"log"
	"strings"

	"github.com/sanketnaik99/trivia-sub000/internal"
	"github.com/sanketnaik99/trivia-sub000/internal/utils"
)

// =============================================================================
// ANSWER EVALUATION & SUBMISSION
// =============================================================================

// IsAnswerCorrect compares a submitted answer against the canonical answer
// and any accepted variants. Comparison is case- and whitespace-insensitive.
// Empty submissions are never correct.
func IsAnswerCorrect(submitted, canonical string, accepted []string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(submitted))
	if cleaned == "" {
		return false
	}
	if cleaned == strings.ToLower(strings.TrimSpace(canonical)) {
		return true
	}
	for _, variant := range accepted {
		if cleaned == strings.ToLower(strings.TrimSpace(variant)) {
			return true
		}
	}
	return false
}

// HandleAnswer processes an ANSWER event from a joined participant.
func (h *Hub) HandleAnswer(s *session, data internal.AnswerData) {
	room, p := s.binding()
	if room == nil || p == nil {
		s.sendError(internal.ErrCodeNotJoined, "you have not joined a room")
		return
	}

	h.Registry.UpdateLastActivity(room.Code)

	room.Mu.Lock()

	// The participant may have been removed while this event was in flight
	if room.Participants[p.ID] != p {
		room.Mu.Unlock()
		s.sendError(internal.ErrCodeNotJoined, "you are no longer in this room")
		return
	}
	if room.Phase != internal.PhaseActive || room.CurrentRound == nil || room.CurrentQuestion == nil {
		room.Mu.Unlock()
		s.sendError(internal.ErrCodeInvalidState, "no round is currently active")
		return
	}
	if p.Role != internal.RoleActive {
		room.Mu.Unlock()
		s.sendError(internal.ErrCodeInvalidState, "spectators cannot submit answers")
		return
	}
	if room.CurrentRound.HasAnswered(p.ID) {
		room.Mu.Unlock()
		s.sendError(internal.ErrCodeAlreadyAnswered, "you have already answered this round")
		return
	}

	round := room.CurrentRound
	question := room.CurrentQuestion

	ts := utils.ClampTimestamp(data.Timestamp, round.Duration.Milliseconds())
	correct := IsAnswerCorrect(data.AnswerText, question.Answer, question.AcceptedAnswers)

	round.Answers = append(round.Answers, internal.ParticipantAnswer{
		ParticipantID: p.ID,
		AnswerText:    data.AnswerText,
		Timestamp:     ts,
		IsCorrect:     correct,
	})

	// Snapshot for broadcast before unlocking
	answered := len(round.Answers)
	total := room.ActiveConnectedCount()
	allAnswered := room.HasEveryoneAnswered()
	questionID := question.ID
	roomCode := room.Code

	room.Mu.Unlock()

	log.Printf("[HandleAnswer] room=%s participant=%s answered (correct=%t ts=%dms, %d/%d)",
		roomCode, p.ID, correct, ts, answered, total)

	// Private ack to the submitter
	if err := p.SafeWriteJSON(internal.Message[internal.AnswerSubmittedData]{
		Type: internal.EventAnswerSubmitted,
		Data: internal.AnswerSubmittedData{
			QuestionID: questionID,
			Timestamp:  ts,
			Accepted:   true,
		},
	}); err != nil {
		log.Printf("[HandleAnswer] room=%s failed to ack participant %s: %v", roomCode, p.ID, err)
	}

	// Updated count to the whole room
	SafeBroadcastToRoom(room, internal.Message[internal.AnswerCountData]{
		Type: internal.EventAnswerCountUpdate,
		Data: internal.AnswerCountData{Answered: answered, Total: total},
	})

	// Everyone answered: end the round without waiting for the timer
	if allAnswered {
		log.Printf("[HandleAnswer] room=%s: all active participants answered, ending round early", roomCode)
		h.EndRound(room)
	}
}
