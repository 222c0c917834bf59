package game

import (
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/sanketnaik99/trivia-sub000/internal"
)

// =============================================================================
// ROOM REGISTRY
// =============================================================================

var (
	ErrRoomExists = errors.New("room code already in use")
	ErrRoomLimit  = errors.New("room limit reached")
)

// Registry is the process-wide code->room map. It is constructed once and
// injected wherever rooms are resolved, so tests get isolated instances.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*internal.Room
	cleanups map[string]*time.Timer

	maxRooms     int
	cleanupDelay time.Duration

	// onDelete runs after a room is removed, outside the registry lock.
	// Used to mark linked scheduled games completed; best-effort only.
	onDelete func(code string, groupID *string)
}

func NewRegistry(maxRooms int, cleanupDelay time.Duration) *Registry {
	return &Registry{
		rooms:        make(map[string]*internal.Room),
		cleanups:     make(map[string]*time.Timer),
		maxRooms:     maxRooms,
		cleanupDelay: cleanupDelay,
	}
}

func (rg *Registry) SetOnDelete(fn func(code string, groupID *string)) {
	rg.onDelete = fn
}

// CreateRoom stores the room under its normalized code. The caller retries
// with a fresh code on ErrRoomExists.
func (rg *Registry) CreateRoom(code string, room *internal.Room) error {
	key := strings.ToUpper(code)

	rg.mu.Lock()
	defer rg.mu.Unlock()

	if _, exists := rg.rooms[key]; exists {
		return ErrRoomExists
	}
	if rg.maxRooms > 0 && len(rg.rooms) >= rg.maxRooms {
		return ErrRoomLimit
	}

	room.Code = key
	rg.rooms[key] = room

	log.Printf("[Registry.CreateRoom] room %s created (total rooms: %d)", key, len(rg.rooms))
	return nil
}

// GetRoom is a case-insensitive lookup.
func (rg *Registry) GetRoom(code string) *internal.Room {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return rg.rooms[strings.ToUpper(code)]
}

func (rg *Registry) RoomCount() int {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return len(rg.rooms)
}

// DeleteRoom cancels any pending cleanup and removes the room. The linked
// scheduled-game record is marked completed via onDelete; a failure there
// never blocks deletion.
func (rg *Registry) DeleteRoom(code string) {
	key := strings.ToUpper(code)

	rg.mu.Lock()
	if t, ok := rg.cleanups[key]; ok {
		t.Stop()
		delete(rg.cleanups, key)
	}
	room, exists := rg.rooms[key]
	if exists {
		delete(rg.rooms, key)
	}
	remaining := len(rg.rooms)
	rg.mu.Unlock()

	if !exists {
		return
	}

	room.Mu.RLock()
	groupID := room.GroupID
	room.Mu.RUnlock()

	log.Printf("[Registry.DeleteRoom] room %s deleted (remaining rooms: %d)", key, remaining)

	if rg.onDelete != nil {
		go rg.onDelete(key, groupID)
	}
}

// ScheduleCleanup arms deferred deletion for an empty room. Any existing
// timer for the same code is replaced.
func (rg *Registry) ScheduleCleanup(code string) {
	key := strings.ToUpper(code)

	rg.mu.Lock()
	if t, ok := rg.cleanups[key]; ok {
		t.Stop()
	}
	rg.cleanups[key] = time.AfterFunc(rg.cleanupDelay, func() {
		rg.cleanupFired(key)
	})
	rg.mu.Unlock()

	log.Printf("[Registry.ScheduleCleanup] room %s scheduled for cleanup in %v", key, rg.cleanupDelay)
}

func (rg *Registry) CancelCleanup(code string) {
	key := strings.ToUpper(code)

	rg.mu.Lock()
	t, ok := rg.cleanups[key]
	if ok {
		t.Stop()
		delete(rg.cleanups, key)
	}
	rg.mu.Unlock()

	if ok {
		log.Printf("[Registry.CancelCleanup] room %s cleanup cancelled", key)
	}
}

// UpdateLastActivity bumps the activity timestamp and cancels any pending
// cleanup; activity implies the room is still wanted.
func (rg *Registry) UpdateLastActivity(code string) {
	room := rg.GetRoom(code)
	if room == nil {
		return
	}

	room.Mu.Lock()
	room.LastActivityAt = time.Now()
	room.Mu.Unlock()

	rg.CancelCleanup(code)
}

// cleanupFired re-checks emptiness at expiry; a join that raced the timer
// wins and the room survives.
func (rg *Registry) cleanupFired(key string) {
	rg.mu.Lock()
	delete(rg.cleanups, key)
	room := rg.rooms[key]
	rg.mu.Unlock()

	if room == nil {
		return
	}

	room.Mu.RLock()
	empty := len(room.Participants) == 0
	room.Mu.RUnlock()

	if !empty {
		log.Printf("[Registry.cleanupFired] room %s no longer empty, keeping", key)
		return
	}
	rg.DeleteRoom(key)
}
