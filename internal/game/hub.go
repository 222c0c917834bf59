package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sanketnaik99/trivia-sub000/internal/auth"
	"github.com/sanketnaik99/trivia-sub000/internal/config"
	"github.com/sanketnaik99/trivia-sub000/internal/store"
)

// =============================================================================
// HUB
// =============================================================================

// Hub owns every dependency of the game core and is handed to the websocket
// layer. Nothing in this package reaches for package-level state.
type Hub struct {
	Registry *Registry
	Store    store.Store
	Bank     *QuestionBank
	Groups   *GroupHub
	Auth     auth.Verifier

	disconnectGrace time.Duration

	// Pending disconnect-grace removals, keyed by roomCode+"/"+participantID
	graceMu     sync.Mutex
	graceTimers map[string]*time.Timer
}

func NewHub(cfg config.Config, st store.Store, bank *QuestionBank, verifier auth.Verifier) *Hub {
	h := &Hub{
		Registry:        NewRegistry(cfg.MaxRooms, cfg.RoomCleanupDelay),
		Store:           st,
		Bank:            bank,
		Groups:          NewGroupHub(),
		Auth:            verifier,
		disconnectGrace: cfg.DisconnectGrace,
		graceTimers:     make(map[string]*time.Timer),
	}

	// Deleting a group-linked room marks its scheduled-game record completed.
	// Storage failures here must never block deletion.
	h.Registry.SetOnDelete(func(code string, groupID *string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.MarkScheduledGameCompleted(ctx, code); err != nil {
			log.Printf("[Hub.onDelete] room=%s: mark scheduled game completed failed: %v", code, err)
		}
	})

	return h
}

func (h *Hub) graceKey(roomCode, participantID string) string {
	return roomCode + "/" + participantID
}

func (h *Hub) cancelGraceRemoval(roomCode, participantID string) {
	key := h.graceKey(roomCode, participantID)
	h.graceMu.Lock()
	if t, ok := h.graceTimers[key]; ok {
		t.Stop()
		delete(h.graceTimers, key)
	}
	h.graceMu.Unlock()
}

func (h *Hub) scheduleGraceRemoval(roomCode, participantID string) {
	key := h.graceKey(roomCode, participantID)
	h.graceMu.Lock()
	if t, ok := h.graceTimers[key]; ok {
		t.Stop()
	}
	h.graceTimers[key] = time.AfterFunc(h.disconnectGrace, func() {
		h.graceMu.Lock()
		delete(h.graceTimers, key)
		h.graceMu.Unlock()
		h.graceRemovalFired(roomCode, participantID)
	})
	h.graceMu.Unlock()
}
