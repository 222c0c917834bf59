package game

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/sanketnaik99/trivia-sub000/internal"
)

// =============================================================================
// WEBSOCKET CONNECTION HANDLING
// =============================================================================

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Inbound events per connection: small steady rate with room for bursts of
// UI-driven clicking. Excess events are dropped with a private error.
const (
	inboundRate  = rate.Limit(20)
	inboundBurst = 40
)

// session is the per-connection state before and after a participant binding
// exists. The verified identity never changes over the connection's life;
// the room/participant binding does.
type session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	userID  string // empty for anonymous connections
	limiter *rate.Limiter

	mu          sync.Mutex
	room        *internal.Room
	participant *internal.Participant
}

func (s *session) bind(room *internal.Room, p *internal.Participant) {
	s.mu.Lock()
	s.room = room
	s.participant = p
	s.mu.Unlock()
}

func (s *session) unbind() {
	s.mu.Lock()
	s.room = nil
	s.participant = nil
	s.mu.Unlock()
}

func (s *session) binding() (*internal.Room, *internal.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room, s.participant
}

// send writes to the connection. Once a participant is bound, all writers
// for this connection converge on the participant's write mutex.
func (s *session) send(v any) error {
	s.mu.Lock()
	p := s.participant
	s.mu.Unlock()

	if p != nil {
		return p.SafeWriteJSON(v)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.conn == nil {
		return websocket.ErrCloseSent
	}
	return s.conn.WriteJSON(v)
}

// sendError reports a business-rule violation to this connection only.
// Errors are never broadcast and never corrupt shared state.
func (s *session) sendError(code, message string) {
	if err := s.send(internal.Message[internal.ErrorData]{
		Type: internal.EventError,
		Data: internal.ErrorData{Code: code, Message: message},
	}); err != nil {
		log.Printf("[session.sendError] failed to deliver %s: %v", code, err)
	}
}

// HandleWebSocket upgrades the connection, resolves the optional bearer
// identity, and runs the read loop until the transport drops.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[HandleWebSocket] upgrade failed:", err)
		return
	}

	s := &session{
		conn:    conn,
		limiter: rate.NewLimiter(inboundRate, inboundBurst),
	}

	// Identity is optional at connect time; only create/group operations
	// require it. A bad token closes the handshake rather than limping on.
	if token := r.URL.Query().Get("token"); token != "" {
		userID, err := h.Auth.Verify(token)
		if err != nil {
			log.Printf("[HandleWebSocket] token rejected: %v", err)
			s.sendError(internal.ErrCodeUnauthorized, "invalid token")
			conn.Close()
			return
		}
		s.userID = userID
	}

	log.Printf("[HandleWebSocket] connection established (user=%q)", s.userID)

	h.readLoop(s)
}

// readLoop parses inbound envelopes and dispatches them. The event set is
// closed: every kind the protocol defines has a case here, and anything else
// is answered with unknown_event.
func (h *Hub) readLoop(s *session) {
	defer func() {
		s.conn.Close()
		h.handleDisconnect(s)
	}()

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			log.Printf("[readLoop] read error (user=%q): %v", s.userID, err)
			break
		}

		if !s.limiter.Allow() {
			s.sendError(internal.ErrCodeInvalidPayload, "too many events, slow down")
			continue
		}

		var baseMsg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &baseMsg); err != nil {
			log.Printf("[readLoop] failed to parse envelope: %v", err)
			s.sendError(internal.ErrCodeInvalidPayload, "malformed message")
			continue
		}

		switch baseMsg.Type {
		case internal.EventRoomCreate:
			var data internal.CreateRoomData
			if !decodePayload(s, baseMsg.Data, &data) {
				continue
			}
			h.HandleCreateRoom(s, data)

		case internal.EventJoin:
			var data internal.JoinData
			if !decodePayload(s, baseMsg.Data, &data) {
				continue
			}
			h.HandleJoin(s, data)

		case internal.EventReady:
			var data internal.ReadyData
			if !decodePayload(s, baseMsg.Data, &data) {
				continue
			}
			h.HandleReady(s, data)

		case internal.EventAnswer:
			var data internal.AnswerData
			if !decodePayload(s, baseMsg.Data, &data) {
				continue
			}
			h.HandleAnswer(s, data)

		case internal.EventLeave:
			h.HandleLeave(s)

		case internal.EventChangeRole:
			var data internal.ChangeRoleData
			if !decodePayload(s, baseMsg.Data, &data) {
				continue
			}
			h.HandleChangeRole(s, data)

		case internal.EventGroupSubscribe:
			var data internal.GroupSubscribeData
			if !decodePayload(s, baseMsg.Data, &data) {
				continue
			}
			h.HandleGroupSubscribe(s, data)

		case internal.EventGroupUnsubscribe:
			var data internal.GroupSubscribeData
			if !decodePayload(s, baseMsg.Data, &data) {
				continue
			}
			h.HandleGroupUnsubscribe(s, data)

		default:
			s.sendError(internal.ErrCodeUnknownEvent, "unknown event type: "+string(baseMsg.Type))
		}
	}
}

func decodePayload[T any](s *session, raw json.RawMessage, out *T) bool {
	if len(raw) == 0 {
		return true
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("[decodePayload] bad payload: %v", err)
		s.sendError(internal.ErrCodeInvalidPayload, "malformed payload")
		return false
	}
	return true
}
