package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sanketnaik99/trivia-sub000/internal"
)

// =============================================================================
// GROUP CHANNELS
// =============================================================================

// GroupHub fans events out to connections subscribed to a persistent group,
// independent of which room (if any) they currently sit in.
type GroupHub struct {
	mu   sync.RWMutex
	subs map[string]map[*session]bool
}

func NewGroupHub() *GroupHub {
	return &GroupHub{subs: make(map[string]map[*session]bool)}
}

func (g *GroupHub) Subscribe(groupID string, s *session) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.subs[groupID] == nil {
		g.subs[groupID] = make(map[*session]bool)
	}
	g.subs[groupID][s] = true
}

func (g *GroupHub) Unsubscribe(groupID string, s *session) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if set := g.subs[groupID]; set != nil {
		delete(set, s)
		if len(set) == 0 {
			delete(g.subs, groupID)
		}
	}
}

// RemoveSession drops the session from every group it subscribed to.
func (g *GroupHub) RemoveSession(s *session) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for groupID, set := range g.subs {
		delete(set, s)
		if len(set) == 0 {
			delete(g.subs, groupID)
		}
	}
}

// Broadcast sends to every subscriber of the group. Sessions are snapshotted
// under the lock; writes happen outside it.
func (g *GroupHub) Broadcast(groupID string, msg internal.Message[internal.LeaderboardUpdatedData]) {
	g.mu.RLock()
	sessions := make([]*session, 0, len(g.subs[groupID]))
	for s := range g.subs[groupID] {
		sessions = append(sessions, s)
	}
	g.mu.RUnlock()

	for _, s := range sessions {
		if err := s.send(msg); err != nil {
			log.Printf("[GroupHub.Broadcast] group=%s: send failed: %v", groupID, err)
		}
	}
	log.Printf("[GroupHub.Broadcast] group=%s: sent %s to %d subscribers",
		groupID, msg.Type, len(sessions))
}

// HandleGroupSubscribe adds an authenticated, verified group member to the
// group's notification channel.
func (h *Hub) HandleGroupSubscribe(s *session, data internal.GroupSubscribeData) {
	if s.userID == "" {
		s.sendError(internal.ErrCodeUnauthorized, "group subscriptions require an identity")
		return
	}
	if data.GroupID == "" {
		s.sendError(internal.ErrCodeInvalidPayload, "group_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	member, err := h.Store.IsGroupMember(ctx, s.userID, data.GroupID)
	if err != nil {
		log.Printf("[HandleGroupSubscribe] membership check failed for user=%s group=%s: %v",
			s.userID, data.GroupID, err)
		s.sendError(internal.ErrCodeNotAMember, "could not verify group membership")
		return
	}
	if !member {
		s.sendError(internal.ErrCodeNotAMember, "you are not a member of this group")
		return
	}

	h.Groups.Subscribe(data.GroupID, s)
	log.Printf("[HandleGroupSubscribe] user=%s subscribed to group=%s", s.userID, data.GroupID)
}

func (h *Hub) HandleGroupUnsubscribe(s *session, data internal.GroupSubscribeData) {
	if s.userID == "" {
		s.sendError(internal.ErrCodeUnauthorized, "group subscriptions require an identity")
		return
	}
	if data.GroupID == "" {
		s.sendError(internal.ErrCodeInvalidPayload, "group_id is required")
		return
	}
	h.Groups.Unsubscribe(data.GroupID, s)
}
