package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"minesweeper/internal/game"
	"minesweeper/internal/logger"
	"minesweeper/internal/service"
)

// Hub fans game service events out to every connected client and feeds
// client actions back into the service.
type Hub struct {
	svc *service.GameService
	log *slog.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}

	unsubscribe func()
}

func NewHub(svc *service.GameService) *Hub {
	h := &Hub{
		svc:     svc,
		log:     logger.Component("ws"),
		clients: make(map[*Client]struct{}),
	}
	h.unsubscribe = svc.Subscribe(h.onEvent)
	return h
}

// Register adds c and queues the current session for it.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	ConnectedClients.Inc()
	h.log.Debug("client connected", "client", c.ID)

	snap := h.svc.Snapshot()
	h.send(c, Message{Type: MsgState, Payload: snap})
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()

	if ok {
		ConnectedClients.Dec()
		h.log.Debug("client disconnected", "client", c.ID)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close detaches the hub from the service and disconnects every client.
func (h *Hub) Close() {
	h.unsubscribe()

	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
		ConnectedClients.Dec()
	}
	h.mu.Unlock()
}

func (h *Hub) onEvent(ev service.Event) {
	switch ev.Type {
	case service.EventTick:
		h.Broadcast(Message{Type: MsgTick, Payload: TickPayload{Seq: ev.Seq, SessionID: ev.SessionID, DisplayState: ev.Display}})
	default:
		h.Broadcast(Message{Type: MsgState, Payload: ev.Session})
	}
}

func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal broadcast", "type", msg.Type, "error", err)
		return
	}

	var slow []*Client
	h.mu.RLock()
	for c := range h.clients {
		if !c.enqueue(data) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("dropping slow client", "client", c.ID)
		DroppedClients.Inc()
		h.Unregister(c)
	}
}

func (h *Hub) send(c *Client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal message", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	_, ok := h.clients[c]
	delivered := ok && c.enqueue(data)
	h.mu.RUnlock()

	if ok && !delivered {
		DroppedClients.Inc()
		h.Unregister(c)
	}
}

// HandleMessage runs one client action against the service. Results go
// back to the sender; the state change itself reaches everyone through
// the service's event stream.
func (h *Hub) HandleMessage(c *Client, raw []byte) {
	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendError(c, "bad_request", "malformed message")
		return
	}

	switch msg.Type {
	case MsgPing:
		h.send(c, Message{Type: MsgPong})

	case MsgReveal, MsgFlag:
		var p CellPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			h.sendError(c, "bad_request", "reveal and flag need row and col")
			return
		}
		var (
			result any
			err    error
		)
		if msg.Type == MsgReveal {
			result, err = h.svc.Reveal(p.Token, p.Row, p.Col)
		} else {
			result, err = h.svc.ToggleFlag(p.Token, p.Row, p.Col)
		}
		if err != nil {
			h.sendServiceError(c, err)
			return
		}
		h.send(c, Message{Type: MsgResult, Payload: result})

	case MsgNewGame:
		var p NewGamePayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				h.sendError(c, "bad_request", "new_game payload must be an object")
				return
			}
		}
		if p.Difficulty == "" {
			p.Difficulty = h.svc.Snapshot().Difficulty.Name
		}
		if _, err := h.svc.NewGame(p.Difficulty); err != nil {
			h.sendServiceError(c, err)
		}

	case MsgRestart:
		if _, err := h.svc.Restart(); err != nil {
			h.sendServiceError(c, err)
		}

	default:
		h.sendError(c, "bad_request", "unknown message type "+msg.Type)
	}
}

func (h *Hub) sendError(c *Client, code, message string) {
	h.send(c, Message{Type: MsgError, Payload: ErrorPayload{Code: code, Message: message}})
}

func (h *Hub) sendServiceError(c *Client, err error) {
	code := "internal"
	switch {
	case errors.Is(err, service.ErrStaleSession):
		code = "stale_session"
	case errors.Is(err, service.ErrInvalidToken):
		code = "invalid_token"
	case errors.Is(err, service.ErrCellOutOfRange):
		code = "out_of_range"
	case errors.Is(err, game.ErrUnknownDifficulty):
		code = "unknown_difficulty"
	default:
		h.log.Error("action failed", "client", c.ID, "error", err)
	}
	h.sendError(c, code, err.Error())
}
