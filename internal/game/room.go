package game

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sanketnaik99/trivia-sub000/internal"
	"github.com/sanketnaik99/trivia-sub000/internal/utils"
)

// =============================================================================
// ROOM MANAGEMENT - CREATE / JOIN / LEAVE / ROLES
// =============================================================================

// HandleCreateRoom validates the request and registers a fresh room. The
// creator still joins through a normal JOIN event afterwards.
func (h *Hub) HandleCreateRoom(s *session, data internal.CreateRoomData) {
	// Connection-bound identity wins over a payload-provided one
	userID := s.userID
	if userID == "" {
		userID = data.UserID
	}
	if userID == "" {
		s.sendError(internal.ErrCodeUnauthorized, "room creation requires an identity")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if data.SelectedCategory != nil {
		count, err := h.Store.CountQuestionsByCategory(ctx, *data.SelectedCategory)
		if err != nil {
			log.Printf("[HandleCreateRoom] category count failed for %q: %v", *data.SelectedCategory, err)
			s.sendError(internal.ErrCodeInvalidCategory, "could not validate category")
			return
		}
		if count < internal.MinQuestionsPerCategory {
			s.sendError(internal.ErrCodeInvalidCategory, "category has too few questions")
			return
		}
	}

	feedbackMode := internal.FeedbackAfterEach
	if data.FeedbackMode != "" {
		feedbackMode = internal.FeedbackMode(data.FeedbackMode)
		if !internal.ValidFeedbackMode(feedbackMode) {
			s.sendError(internal.ErrCodeInvalidFeedbackMode, "unknown feedback mode")
			return
		}
	}

	if data.GroupID != nil {
		member, err := h.Store.IsGroupMember(ctx, userID, *data.GroupID)
		if err != nil {
			log.Printf("[HandleCreateRoom] membership check failed for user=%s group=%s: %v",
				userID, *data.GroupID, err)
			s.sendError(internal.ErrCodeNotAMember, "could not verify group membership")
			return
		}
		if !member {
			s.sendError(internal.ErrCodeNotAMember, "you are not a member of this group")
			return
		}
	}

	now := time.Now()
	room := &internal.Room{
		Participants:     make(map[string]*internal.Participant),
		Phase:            internal.PhaseLobby,
		UsedQuestionIDs:  make([]string, 0),
		GroupID:          data.GroupID,
		SelectedCategory: data.SelectedCategory,
		FeedbackMode:     feedbackMode,
		MaxActivePlayers: internal.DefaultMaxActive,
		CreatedAt:        now,
		LastActivityAt:   now,
	}

	// Collisions are resolved by regenerating, never by queuing
	var code string
	var err error
	for attempt := 0; attempt < internal.MaxCodeAttempts; attempt++ {
		code = utils.GenerateRoomCode(internal.RoomCodeLength)
		err = h.Registry.CreateRoom(code, room)
		if err == nil {
			break
		}
		if errors.Is(err, ErrRoomLimit) {
			s.sendError(internal.ErrCodeRoomLimit, "server is at capacity, try again later")
			return
		}
	}
	if err != nil {
		s.sendError(internal.ErrCodeRoomLimit, "could not allocate a room code")
		return
	}

	// The room starts empty; if nobody ever joins, the cleanup timer reclaims
	// it. The first JOIN's activity bump cancels it.
	h.Registry.ScheduleCleanup(room.Code)

	log.Printf("[HandleCreateRoom] room %s created by user %s (group=%v category=%v)",
		room.Code, userID, data.GroupID, data.SelectedCategory)

	s.send(internal.Message[internal.RoomCreatedData]{
		Type: internal.EventRoomCreated,
		Data: internal.RoomCreatedData{RoomCode: room.Code, GroupID: room.GroupID},
	})
}

// HandleJoin resolves the room and binds the connection to a participant,
// preferring reconnection over creating a duplicate identity:
// participant-id match first, then authenticated-account match, then
// anonymous same-name supersession, then a fresh participant.
func (h *Hub) HandleJoin(s *session, data internal.JoinData) {
	if data.PlayerName == "" {
		s.sendError(internal.ErrCodeInvalidPayload, "player_name is required")
		return
	}

	room := h.Registry.GetRoom(data.RoomCode)
	if room == nil {
		s.sendError(internal.ErrCodeRoomNotFound, "no room with that code")
		return
	}

	userID := s.userID
	if userID == "" {
		userID = data.UserID
	}

	room.Mu.Lock()

	// (a) explicit participant id: reconnect to that seat
	if data.PlayerID != "" {
		if p := room.Participants[data.PlayerID]; p != nil {
			h.rebindLocked(room, p, s)
			return // rebindLocked unlocks
		}
	}

	// (b) authenticated identity already has a seat in this room
	if userID != "" {
		if p := room.FindByUserID(userID); p != nil {
			h.rebindLocked(room, p, s)
			return
		}
	}

	// (c) stale-session handling by name
	superseded := false
	if existing := room.FindByName(data.PlayerName); existing != nil {
		if userID == "" && existing.UserID == nil {
			// Anonymous rejoin supersedes the old session outright
			log.Printf("[HandleJoin] room=%s: superseding stale participant %s (%s)",
				room.Code, existing.ID, existing.Name)
			h.dropParticipantLocked(room, existing)
			superseded = true
		} else {
			room.Mu.Unlock()
			s.sendError(internal.ErrCodeNameTaken, "that name is already taken in this room")
			return
		}
	}

	role := internal.RoleSpectator
	if room.Phase == internal.PhaseLobby && room.ActiveCount() < room.MaxActivePlayers {
		role = internal.RoleActive
	}

	p := &internal.Participant{
		ID:       uuid.NewString(),
		Conn:     s.conn,
		Room:     room,
		Name:     data.PlayerName,
		Role:     role,
		Status:   internal.StatusConnected,
		JoinedAt: time.Now(),
	}
	if userID != "" {
		uid := userID
		p.UserID = &uid
	}
	room.Participants[p.ID] = p

	joinedData := internal.PlayerJoinedData{
		Participant:    p.Snapshot(),
		PlayerCount:    len(room.Participants),
		SpectatorCount: room.SpectatorCount(),
	}

	room.Mu.Unlock()

	s.bind(room, p)
	h.Registry.UpdateLastActivity(room.Code)

	log.Printf("[HandleJoin] room=%s: participant %s (%s) joined as %s",
		room.Code, p.ID, p.Name, p.Role)

	SafeBroadcastToRoomExcept(room, internal.Message[internal.PlayerJoinedData]{
		Type: internal.EventPlayerJoined,
		Data: joinedData,
	}, p)

	SendRoomState(room, p)

	// A superseded seat is a departure like any other: it may have been the
	// last unanswered active, or the blocker on the countdown
	if superseded {
		h.reevaluateAfterDeparture(room)
	}
}

// rebindLocked attaches the session's connection to an existing participant.
// Called with room.Mu held; unlocks before broadcasting.
func (h *Hub) rebindLocked(room *internal.Room, p *internal.Participant, s *session) {
	p.Mu.Lock()
	if p.Conn != nil && p.Conn != s.conn {
		p.Conn.Close()
	}
	p.Conn = s.conn
	p.Mu.Unlock()
	p.Status = internal.StatusConnected

	reconnData := internal.ReconnectedData{ParticipantID: p.ID, Name: p.Name}
	room.Mu.Unlock()

	s.bind(room, p)
	h.cancelGraceRemoval(room.Code, p.ID)
	h.Registry.UpdateLastActivity(room.Code)

	log.Printf("[rebindLocked] room=%s: participant %s (%s) reconnected", room.Code, p.ID, p.Name)

	SafeBroadcastToRoomExcept(room, internal.Message[internal.ReconnectedData]{
		Type: internal.EventReconnected,
		Data: reconnData,
	}, p)

	SendRoomState(room, p)
}

// HandleLeave removes the participant permanently.
func (h *Hub) HandleLeave(s *session) {
	room, p := s.binding()
	if room == nil || p == nil {
		s.sendError(internal.ErrCodeNotJoined, "you have not joined a room")
		return
	}

	s.unbind()
	h.removeParticipant(room, p, true)
}

// handleDisconnect runs when the transport drops. With a zero grace period
// the participant is removed immediately so remaining players are never
// blocked on a ghost; with a positive grace they are parked as disconnected
// and removed only if the grace expires without a reconnect.
func (h *Hub) handleDisconnect(s *session) {
	h.Groups.RemoveSession(s)

	room, p := s.binding()
	if room == nil || p == nil {
		return
	}
	s.unbind()

	if h.disconnectGrace <= 0 {
		log.Printf("[handleDisconnect] room=%s: participant %s (%s) disconnected, removing",
			room.Code, p.ID, p.Name)
		h.removeParticipant(room, p, true)
		return
	}

	room.Mu.Lock()
	if room.Participants[p.ID] != p {
		room.Mu.Unlock()
		return
	}
	p.Status = internal.StatusDisconnected
	room.Mu.Unlock()

	log.Printf("[handleDisconnect] room=%s: participant %s (%s) disconnected, grace %v",
		room.Code, p.ID, p.Name, h.disconnectGrace)

	h.scheduleGraceRemoval(room.Code, p.ID)
	BroadcastRoomState(room)

	// A disconnected participant no longer gates round end or the countdown
	h.reevaluateAfterDeparture(room)
}

// graceRemovalFired removes a participant whose grace period expired without
// a reconnect.
func (h *Hub) graceRemovalFired(roomCode, participantID string) {
	room := h.Registry.GetRoom(roomCode)
	if room == nil {
		return
	}

	room.Mu.RLock()
	p := room.Participants[participantID]
	stillGone := p != nil && p.Status == internal.StatusDisconnected
	room.Mu.RUnlock()

	if !stillGone {
		return
	}
	log.Printf("[graceRemovalFired] room=%s: participant %s grace expired, removing", roomCode, participantID)
	h.removeParticipant(room, p, true)
}

// removeParticipant deletes a participant and handles every knock-on effect:
// scrubbing their round entry, spectator promotion, countdown re-evaluation,
// early round end, and empty-room cleanup scheduling.
func (h *Hub) removeParticipant(room *internal.Room, p *internal.Participant, announce bool) {
	room.Mu.Lock()

	if room.Participants[p.ID] != p {
		room.Mu.Unlock()
		return
	}

	h.dropParticipantLocked(room, p)

	leftData := internal.PlayerLeftData{
		ParticipantID: p.ID,
		Name:          p.Name,
		PlayerCount:   len(room.Participants),
	}
	empty := len(room.Participants) == 0
	roomCode := room.Code

	room.Mu.Unlock()

	h.cancelGraceRemoval(roomCode, p.ID)

	log.Printf("[removeParticipant] room=%s: removed %s (%s), %d remaining",
		roomCode, p.ID, p.Name, leftData.PlayerCount)

	if empty {
		h.Registry.ScheduleCleanup(roomCode)
		return
	}

	if announce {
		SafeBroadcastToRoom(room, internal.Message[internal.PlayerLeftData]{
			Type: internal.EventPlayerLeft,
			Data: leftData,
		})
	}
	BroadcastRoomState(room)

	h.reevaluateAfterDeparture(room)
}

// dropParticipantLocked removes the participant from room structures and
// scrubs their entry from the current round so no per-round state references
// an absent id. Promotion fills any freed lobby slot. Caller holds room.Mu.
func (h *Hub) dropParticipantLocked(room *internal.Room, p *internal.Participant) {
	delete(room.Participants, p.ID)

	if room.CurrentRound != nil {
		answers := room.CurrentRound.Answers[:0]
		for _, a := range room.CurrentRound.Answers {
			if a.ParticipantID != p.ID {
				answers = append(answers, a)
			}
		}
		room.CurrentRound.Answers = answers
	}

	p.Mu.Lock()
	if p.Conn != nil {
		p.Conn.Close()
		p.Conn = nil
	}
	p.Mu.Unlock()

	h.promoteSpectatorsLocked(room)
}

// promoteSpectatorsLocked moves waiting spectators into freed active slots,
// earliest joiner first, while the room is in lobby. Caller holds room.Mu.
func (h *Hub) promoteSpectatorsLocked(room *internal.Room) {
	if room.Phase != internal.PhaseLobby {
		return
	}
	for room.ActiveCount() < room.MaxActivePlayers {
		next := room.EarliestSpectator()
		if next == nil {
			return
		}
		next.Role = internal.RoleActive
		log.Printf("[promoteSpectators] room=%s: promoted %s (%s) to active",
			room.Code, next.ID, next.Name)
	}
}

// reevaluateAfterDeparture re-runs the transitions a departure can unblock.
func (h *Hub) reevaluateAfterDeparture(room *internal.Room) {
	room.Mu.RLock()
	phase := room.Phase
	allAnswered := room.HasEveryoneAnswered()
	anyoneLeft := room.ActiveConnectedCount() > 0
	room.Mu.RUnlock()

	if phase == internal.PhaseActive && allAnswered && anyoneLeft {
		log.Printf("[reevaluateAfterDeparture] room=%s: departure completed the answer set", room.Code)
		h.EndRound(room)
		return
	}
	if phase == internal.PhaseLobby || phase == internal.PhaseResults {
		h.maybeScheduleCountdown(room)
	}
}

// HandleChangeRole lets a spectator request promotion (capacity permitting)
// or an active participant step down to spectate.
func (h *Hub) HandleChangeRole(s *session, data internal.ChangeRoleData) {
	room, p := s.binding()
	if room == nil || p == nil {
		s.sendError(internal.ErrCodeNotJoined, "you have not joined a room")
		return
	}
	if data.PreferredRole != internal.RoleActive && data.PreferredRole != internal.RoleSpectator {
		s.sendError(internal.ErrCodeInvalidPayload, "unknown role")
		return
	}

	h.Registry.UpdateLastActivity(room.Code)

	room.Mu.Lock()

	if room.Participants[p.ID] != p {
		room.Mu.Unlock()
		s.sendError(internal.ErrCodeNotJoined, "you are no longer in this room")
		return
	}
	if p.Role == data.PreferredRole {
		room.Mu.Unlock()
		return
	}

	if data.PreferredRole == internal.RoleActive {
		if room.ActiveCount() >= room.MaxActivePlayers {
			room.Mu.Unlock()
			s.sendError(internal.ErrCodeRoleCapacity, "no active slots available")
			return
		}
		p.Role = internal.RoleActive
	} else {
		p.Role = internal.RoleSpectator
		p.IsReady = false
		// Stepping down frees a slot for the longest-waiting spectator
		h.promoteSpectatorsLocked(room)
	}

	log.Printf("[HandleChangeRole] room=%s: participant %s (%s) is now %s",
		room.Code, p.ID, p.Name, p.Role)

	room.Mu.Unlock()

	BroadcastRoomState(room)
	h.reevaluateAfterDeparture(room)
}
