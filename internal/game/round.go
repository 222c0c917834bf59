package game

import (
	"context"
	"log"
	"time"

	"github.com/sanketnaik99/trivia-sub000/internal"
)

// =============================================================================
// ROUND LIFECYCLE
// =============================================================================

// StartRound moves the room into the active phase with a freshly selected
// question. It fails loudly when no question is available; the room is left
// in its prior phase and remains joinable.
func (h *Hub) StartRound(room *internal.Room) error {
	room.Mu.Lock()

	if room.Phase == internal.PhaseActive {
		room.Mu.Unlock()
		log.Printf("[StartRound] room=%s already active, ignoring", room.Code)
		return nil
	}
	if room.ActiveConnectedCount() == 0 {
		room.Mu.Unlock()
		log.Printf("[StartRound] room=%s has no connected active participants, aborting", room.Code)
		return nil
	}

	question, err := h.Bank.Select(room)
	if err != nil {
		room.Mu.Unlock()
		return err
	}

	now := time.Now()
	room.CurrentQuestion = question
	room.CurrentRound = &internal.Round{
		QuestionID: question.ID,
		StartTime:  now,
		Duration:   internal.RoundDuration,
		Answers:    make([]internal.ParticipantAnswer, 0),
	}
	room.Phase = internal.PhaseActive
	room.CountdownPending = false
	room.ResetReadyStates()

	startData := internal.GameStartData{
		RoomCode:     room.Code,
		QuestionID:   question.ID,
		QuestionText: question.Text,
		StartTime:    now,
		DurationMs:   internal.RoundDuration.Milliseconds(),
	}
	roomCode := room.Code

	room.Mu.Unlock()

	log.Printf("[StartRound] room=%s: round started with question %s (duration=%v)",
		roomCode, question.ID, internal.RoundDuration)

	// Armed before GAME_START goes out, so answers racing the broadcast find
	// the auto-end timer already in place
	StartPhaseTimer(room, internal.RoundDuration, func() {
		log.Printf("[StartRound.Timer] room=%s: round duration elapsed", roomCode)
		h.EndRound(room)
	})

	SafeBroadcastToRoom(room, internal.Message[internal.GameStartData]{
		Type: internal.EventGameStart,
		Data: startData,
	})

	// An answer set completed between unlock and arming ends the round through
	// EndRound; make sure no auto-end timer outlives it
	room.Mu.RLock()
	ended := room.Phase != internal.PhaseActive
	room.Mu.RUnlock()
	if ended {
		CancelPhaseTimer(room)
	}

	return nil
}

// EndRound closes the current round, resolves the winner, and returns the
// room to the results phase. It is idempotent: the auto-end timer and the
// all-answered short-circuit can both call it and the second call is a no-op.
func (h *Hub) EndRound(room *internal.Room) {
	room.Mu.Lock()

	if room.Phase != internal.PhaseActive || room.CurrentRound == nil || room.CurrentQuestion == nil {
		room.Mu.Unlock()
		log.Printf("[EndRound] room=%s: no round in play, ignoring", room.Code)
		return
	}

	round := room.CurrentRound
	question := room.CurrentQuestion

	now := time.Now()
	round.EndTime = &now

	// Winner: correct answer with the strictly lowest clamped timestamp.
	// Strict comparison means equal timestamps keep the earlier submission.
	var winner *internal.Participant
	var winnerTS int64
	for _, a := range round.Answers {
		if !a.IsCorrect {
			continue
		}
		if winner == nil || a.Timestamp < winnerTS {
			if p := room.Participants[a.ParticipantID]; p != nil {
				winner = p
				winnerTS = a.Timestamp
			}
		}
	}

	if winner != nil {
		winner.Score++
		winner.RoundsWon++
		winAt := now
		winner.LastWinAt = &winAt
		id := winner.ID
		round.WinnerID = &id
	}

	// Per-participant results for everyone still in the room
	results := make([]internal.RoundResult, 0, len(room.Participants))
	for _, p := range room.Participants {
		result := internal.RoundResult{
			ParticipantID: p.ID,
			Name:          p.Name,
			NewScore:      p.Score,
		}
		for _, a := range round.Answers {
			if a.ParticipantID == p.ID {
				result.Answered = true
				result.AnswerText = a.AnswerText
				result.IsCorrect = a.IsCorrect
				result.Timestamp = a.Timestamp
				break
			}
		}
		if winner != nil && p.ID == winner.ID {
			result.ScoreDelta = 1
		}
		results = append(results, result)
	}

	endData := internal.RoundEndData{
		QuestionID:      question.ID,
		CorrectAnswer:   question.Answer,
		AcceptedAnswers: question.AcceptedAnswers,
		WinnerID:        round.WinnerID,
		Results:         results,
	}
	if winner != nil {
		endData.WinnerName = winner.Name
		endData.WinnerScore = winner.Score
	}

	// Back to the between-rounds state
	room.CurrentQuestion = nil
	room.CurrentRound = nil
	room.Phase = internal.PhaseResults
	room.ResetReadyStates()

	endData.Leaderboard = ComputeLeaderboard(room)

	roomCode := room.Code
	groupID := room.GroupID
	var winnerUserID *string
	var winnerName string
	if winner != nil {
		winnerUserID = winner.UserID
		winnerName = winner.Name
	}

	room.Mu.Unlock()

	CancelPhaseTimer(room)

	if round.WinnerID != nil {
		log.Printf("[EndRound] room=%s: round over, winner=%s (%s) ts=%dms",
			roomCode, *round.WinnerID, winnerName, winnerTS)
	} else {
		log.Printf("[EndRound] room=%s: round over, no correct answers", roomCode)
	}

	SafeBroadcastToRoom(room, internal.Message[internal.RoundEndData]{
		Type: internal.EventRoundEnd,
		Data: endData,
	})

	BroadcastRoomState(room)

	// Group leaderboard attribution is an eventually-consistent side effect;
	// storage failures are logged and never fail the round.
	if groupID != nil && winnerUserID != nil {
		go h.pushGroupLeaderboard(roomCode, *groupID, *winnerUserID)
	}
}

func (h *Hub) pushGroupLeaderboard(roomCode, groupID, winnerUserID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.Store.AddGroupPoints(ctx, groupID, winnerUserID, 1); err != nil {
		log.Printf("[pushGroupLeaderboard] room=%s group=%s: add points failed: %v",
			roomCode, groupID, err)
		return
	}

	standings, err := h.Store.GroupLeaderboard(ctx, groupID)
	if err != nil {
		log.Printf("[pushGroupLeaderboard] room=%s group=%s: read leaderboard failed: %v",
			roomCode, groupID, err)
		return
	}

	h.Groups.Broadcast(groupID, internal.Message[internal.LeaderboardUpdatedData]{
		Type: internal.EventLeaderboardUpdated,
		Data: internal.LeaderboardUpdatedData{
			GroupID:     groupID,
			Leaderboard: standings,
			RoomCode:    roomCode,
		},
	})
}
