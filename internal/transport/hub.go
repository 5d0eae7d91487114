package transport

import (
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/gameserver"
)

// sendBuffer is the number of frames queued per client before new frames
// are dropped.
const sendBuffer = 256

// Hub routes server output to connected clients by entity id. It is the
// gameserver.Emitter of a running server.
type Hub struct {
	mu      sync.RWMutex
	clients map[combat.EntityID]*Client
	logger  *zap.Logger
}

var _ gameserver.Emitter = (*Hub)(nil)

// NewHub creates an empty hub.
//
// Precondition: logger must be non-nil.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[combat.EntityID]*Client),
		logger:  logger,
	}
}

// Count returns the number of logged-in clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(id combat.EntityID, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[id]; ok && old != c {
		h.closeLocked(old)
	}
	h.clients[id] = c
}

// unregister forgets id if it still maps to c, leaving c open.
func (h *Hub) unregister(id combat.EntityID, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[id] == c {
		delete(h.clients, id)
	}
}

// release forgets c and closes its outbound queue.
func (h *Hub) release(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.id != "" && h.clients[c.id] == c {
		delete(h.clients, c.id)
	}
	h.closeLocked(c)
}

func (h *Hub) closeLocked(c *Client) {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// CloseAll closes every connection; their read pumps then leave the game.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		delete(h.clients, id)
		h.closeLocked(c)
	}
}

// SendText delivers a narration line as a "message" frame.
func (h *Hub) SendText(id combat.EntityID, kind gameserver.MessageKind, text string) {
	h.SendEvent(id, EventMessage, MessagePayload{Type: string(kind), Text: text})
}

// SendEvent delivers a structured event. Unknown ids (NPCs) are ignored.
func (h *Hub) SendEvent(id combat.EntityID, event string, payload any) {
	h.mu.RLock()
	c, ok := h.clients[id]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.deliver(c, event, payload)
}

// Disconnect sends reason and closes the client's connection.
func (h *Hub) Disconnect(id combat.EntityID, reason string) {
	b, err := encode(EventDisconnected, ErrorPayload{Message: reason})
	if err != nil {
		h.logger.Error("encoding disconnect", zap.Error(err))
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	if b != nil {
		h.enqueueLocked(c, b)
	}
	h.closeLocked(c)
	h.logger.Info("client disconnected by server", zap.String("id", string(id)), zap.String("reason", reason))
}

// deliver encodes and queues one frame for c.
func (h *Hub) deliver(c *Client, event string, payload any) {
	b, err := encode(event, payload)
	if err != nil {
		h.logger.Error("encoding frame", zap.String("event", event), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.enqueueLocked(c, b)
}

// enqueueLocked must run with h.mu held in either mode.
func (h *Hub) enqueueLocked(c *Client, b []byte) {
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
		h.logger.Warn("client send queue full; dropping frame", zap.String("id", string(c.id)))
	}
}
