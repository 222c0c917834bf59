package game

import (
	"context"
	"log"
	"time"

	"github.com/sanketnaik99/trivia-sub000/internal"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

// StartPhaseTimer arms the room's single phase timer (ready countdown or
// round auto-end). Any existing timer of the same room is cancelled first so
// duplicate firings cannot happen. The goroutine ticks once a second to
// broadcast remaining time and distinguishes natural expiry from cancellation
// via the context error.
func StartPhaseTimer(room *internal.Room, duration time.Duration, onExpire func()) {
	CancelPhaseTimer(room)

	ctx, cancel := context.WithTimeout(context.Background(), duration)

	room.Mu.Lock()
	room.Timer = &internal.GameTimer{
		StartTime: time.Now(),
		Duration:  duration,
		IsActive:  true,
		Context:   ctx,
		Cancel:    cancel,
	}
	room.Mu.Unlock()

	log.Printf("[StartPhaseTimer] room=%s: timer started for %v", room.Code, duration)

	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				BroadcastTimerUpdate(room)

			case <-ctx.Done():
				room.Mu.Lock()
				// Only touch the timer if it is still the one we armed;
				// a later StartPhaseTimer call may have replaced it.
				if room.Timer != nil && room.Timer.Context == ctx {
					room.Timer.IsActive = false
				}
				room.Mu.Unlock()

				if ctx.Err() == context.DeadlineExceeded {
					log.Printf("[StartPhaseTimer] room=%s: timer expired after %v", room.Code, duration)
					// Separate goroutine so the timer goroutine exits immediately
					go onExpire()
				} else {
					log.Printf("[StartPhaseTimer] room=%s: timer cancelled before expiry", room.Code)
				}
				return
			}
		}
	}()
}

// BroadcastTimerUpdate sends remaining time to the room while a timer runs.
func BroadcastTimerUpdate(room *internal.Room) {
	if room == nil {
		return
	}

	room.Mu.Lock()
	if room.Timer == nil || !room.Timer.IsActive {
		room.Mu.Unlock()
		return
	}

	remaining := max(room.Timer.Duration-time.Since(room.Timer.StartTime), 0)
	room.Timer.TimeRemaining = remaining

	update := internal.TimerUpdateData{
		TimeRemaining: remaining.Milliseconds(),
		Phase:         room.Phase,
		IsActive:      true,
	}
	room.Mu.Unlock()

	SafeBroadcastToRoom(room, internal.Message[internal.TimerUpdateData]{
		Type: internal.EventTimerUpdate,
		Data: update,
	})
}

// CancelPhaseTimer stops the current phase timer, if any.
func CancelPhaseTimer(room *internal.Room) {
	if room == nil {
		return
	}

	room.Mu.Lock()
	if room.Timer == nil || !room.Timer.IsActive {
		room.Mu.Unlock()
		return
	}

	if room.Timer.Cancel != nil {
		room.Timer.Cancel()
	}
	room.Timer.IsActive = false
	room.Timer.TimeRemaining = 0

	update := internal.TimerUpdateData{
		TimeRemaining: 0,
		Phase:         room.Phase,
		IsActive:      false,
	}
	room.Mu.Unlock()

	log.Printf("[CancelPhaseTimer] room=%s: timer cancelled", room.Code)

	SafeBroadcastToRoom(room, internal.Message[internal.TimerUpdateData]{
		Type: internal.EventTimerUpdate,
		Data: update,
	})
}
