package internal

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type Participant struct {
	ID   string          `json:"id"`
	Conn *websocket.Conn `json:"-"`
	Room *Room           `json:"-"` // Avoid circular reference in JSON

	Name   string  `json:"name"`
	UserID *string `json:"user_id"` // external account link, nil for anonymous

	Role    ParticipantRole  `json:"role"`
	IsReady bool             `json:"is_ready"`
	Status  ConnectionStatus `json:"connection_status"`

	// Cumulative in-room stats
	Score     int        `json:"score"`
	RoundsWon int        `json:"rounds_won"`
	LastWinAt *time.Time `json:"last_win_at"`

	JoinedAt time.Time `json:"joined_at"`

	Mu sync.Mutex `json:"-"` // serializes writes on Conn
}

type ParticipantSnapshot struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	UserID    *string          `json:"user_id,omitempty"`
	Role      ParticipantRole  `json:"role"`
	IsReady   bool             `json:"is_ready"`
	Status    ConnectionStatus `json:"connection_status"`
	Score     int              `json:"score"`
	RoundsWon int              `json:"rounds_won"`
	JoinedAt  time.Time        `json:"joined_at"`
}

func (p *Participant) Snapshot() ParticipantSnapshot {
	return ParticipantSnapshot{
		ID:        p.ID,
		Name:      p.Name,
		UserID:    p.UserID,
		Role:      p.Role,
		IsReady:   p.IsReady,
		Status:    p.Status,
		Score:     p.Score,
		RoundsWon: p.RoundsWon,
		JoinedAt:  p.JoinedAt,
	}
}

// SafeWriteJSON serializes concurrent writers on the same connection.
// Gorilla connections support at most one concurrent writer.
func (p *Participant) SafeWriteJSON(v any) error {
	p.Mu.Lock()
	defer p.Mu.Unlock()
	if p.Conn == nil {
		return websocket.ErrCloseSent
	}
	return p.Conn.WriteJSON(v)
}
