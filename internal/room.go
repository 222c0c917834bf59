package internal

import "strings"

// Methods (Room struct). Callers hold room.Mu unless noted.

func (r *Room) GetParticipant(id string) *Participant {
	return r.Participants[id]
}

// ActiveConnectedCount counts active-role participants that are connected.
func (r *Room) ActiveConnectedCount() int {
	count := 0
	for _, p := range r.Participants {
		if p.Role == RoleActive && p.Status == StatusConnected {
			count++
		}
	}
	return count
}

func (r *Room) ActiveCount() int {
	count := 0
	for _, p := range r.Participants {
		if p.Role == RoleActive {
			count++
		}
	}
	return count
}

func (r *Room) SpectatorCount() int {
	count := 0
	for _, p := range r.Participants {
		if p.Role == RoleSpectator {
			count++
		}
	}
	return count
}

func (r *Room) ReadyCount() int {
	count := 0
	for _, p := range r.Participants {
		if p.Role == RoleActive && p.Status == StatusConnected && p.IsReady {
			count++
		}
	}
	return count
}

// AreAllActiveReady reports whether every connected active participant is
// ready. True for an empty set; callers must also check MinPlayersToStart.
func (r *Room) AreAllActiveReady() bool {
	for _, p := range r.Participants {
		if p.Role == RoleActive && p.Status == StatusConnected && !p.IsReady {
			return false
		}
	}
	return true
}

// HasEveryoneAnswered reports whether every connected active participant has
// an entry in the current round. False when there is no round in play.
func (r *Room) HasEveryoneAnswered() bool {
	if r.CurrentRound == nil {
		return false
	}
	for _, p := range r.Participants {
		if p.Role == RoleActive && p.Status == StatusConnected && !r.CurrentRound.HasAnswered(p.ID) {
			return false
		}
	}
	return true
}

func (r *Room) ResetReadyStates() {
	for _, p := range r.Participants {
		p.IsReady = false
	}
}

// FindByName returns the participant with the given name, compared
// case-insensitively. Used for anonymous rejoin supersession.
func (r *Room) FindByName(name string) *Participant {
	for _, p := range r.Participants {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// FindByUserID returns the participant bound to the external account id.
func (r *Room) FindByUserID(userID string) *Participant {
	for _, p := range r.Participants {
		if p.UserID != nil && *p.UserID == userID {
			return p
		}
	}
	return nil
}

// EarliestSpectator returns the spectator with the oldest JoinedAt, or nil.
// Promotion order is strictly join order.
func (r *Room) EarliestSpectator() *Participant {
	var earliest *Participant
	for _, p := range r.Participants {
		if p.Role != RoleSpectator {
			continue
		}
		if earliest == nil || p.JoinedAt.Before(earliest.JoinedAt) {
			earliest = p
		}
	}
	return earliest
}

func (r *Room) ParticipantSnapshots() []ParticipantSnapshot {
	snaps := make([]ParticipantSnapshot, 0, len(r.Participants))
	for _, p := range r.Participants {
		snaps = append(snaps, p.Snapshot())
	}
	return snaps
}
