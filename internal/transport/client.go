package transport

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/gameserver"
)

// Websocket defaults used when the config leaves them zero.
const (
	defaultWriteWait = 10 * time.Second
	defaultPongWait  = 60 * time.Second
	maxMessageSize   = 4096
)

// Game is the slice of gameserver.Service a connection drives.
type Game interface {
	Join(ctx context.Context, id combat.EntityID, name string) (combat.EntityID, error)
	Leave(ctx context.Context, id combat.EntityID) error
	HandleCommand(id combat.EntityID, line string) error
	HandleCombatResult(id combat.EntityID, res gameserver.CombatResultPayload) error
}

// Client is one websocket connection. readPump feeds the game; writePump
// drains send.
type Client struct {
	hub    *Hub
	game   Game
	conn   *websocket.Conn
	send   chan []byte
	logger *zap.Logger

	writeWait time.Duration
	pongWait  time.Duration

	// id is empty until login succeeds.
	id combat.EntityID
	// closed is guarded by hub.mu.
	closed bool
}

func newClient(hub *Hub, game Game, conn *websocket.Conn, writeWait, pongWait time.Duration, logger *zap.Logger) *Client {
	if writeWait <= 0 {
		writeWait = defaultWriteWait
	}
	if pongWait <= 0 {
		pongWait = defaultPongWait
	}
	return &Client{
		hub:       hub,
		game:      game,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		logger:    logger,
		writeWait: writeWait,
		pongWait:  pongWait,
	}
}

// readPump decodes frames until the connection fails, then leaves the game.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.release(c)
		if c.id != "" {
			if err := c.game.Leave(context.WithoutCancel(ctx), c.id); err != nil && !errors.Is(err, gameserver.ErrUnknownEntity) {
				c.logger.Warn("leaving game", zap.String("id", string(c.id)), zap.Error(err))
			}
		}
		if err := c.conn.Close(); err != nil {
			c.logger.Debug("closing websocket", zap.Error(err))
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.pongWait)); err != nil {
		c.logger.Warn("setting read deadline", zap.Error(err))
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info("websocket closed unexpectedly", zap.String("id", string(c.id)), zap.Error(err))
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.reply(EventError, ErrorPayload{Message: "malformed frame"})
			continue
		}
		if !c.handle(ctx, env) {
			return
		}
	}
}

// handle runs one frame. It returns false when the connection should close.
func (c *Client) handle(ctx context.Context, env Envelope) bool {
	if env.Event != EventLogin && c.id == "" {
		c.reply(EventError, ErrorPayload{Message: "log in first"})
		return true
	}
	switch env.Event {
	case EventLogin:
		c.login(ctx, env)
	case EventCommand:
		var p CommandPayload
		if err := decode(env, &p); err != nil {
			c.reply(EventError, ErrorPayload{Message: err.Error()})
			return true
		}
		err := c.game.HandleCommand(c.id, p.Text)
		if errors.Is(err, gameserver.ErrUnknownEntity) {
			return false
		}
	case EventCombatResult:
		var p gameserver.CombatResultPayload
		if err := decode(env, &p); err != nil {
			c.reply(EventError, ErrorPayload{Message: err.Error()})
			return true
		}
		if err := c.game.HandleCombatResult(c.id, p); errors.Is(err, gameserver.ErrUnknownEntity) {
			return false
		}
	default:
		c.reply(EventError, ErrorPayload{Message: "unknown event " + env.Event})
	}
	return true
}

func (c *Client) login(ctx context.Context, env Envelope) {
	if c.id != "" {
		c.reply(EventError, ErrorPayload{Message: "already logged in"})
		return
	}
	var p LoginPayload
	if err := decode(env, &p); err != nil {
		c.reply(EventError, ErrorPayload{Message: err.Error()})
		return
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		c.reply(EventError, ErrorPayload{Message: "name must not be empty"})
		return
	}

	id := gameserver.NewPlayerID()
	c.id = id
	c.hub.register(id, c)
	if _, err := c.game.Join(ctx, id, name); err != nil {
		c.hub.unregister(id, c)
		c.id = ""
		c.logger.Info("login rejected", zap.String("name", name), zap.Error(err))
		c.reply(EventError, ErrorPayload{Message: err.Error()})
		return
	}
	c.logger.Info("client logged in", zap.String("name", name), zap.String("id", string(id)))
	c.reply(EventWelcome, WelcomePayload{EntityID: string(id), Name: name})
}

// reply queues a frame for this connection whether or not it is logged in.
func (c *Client) reply(event string, payload any) {
	c.hub.deliver(c, event, payload)
}

// writePump drains send to the socket and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.pongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.logger.Debug("closing websocket in writePump", zap.Error(err))
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
				c.logger.Warn("setting write deadline", zap.Error(err))
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("writing frame", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
				c.logger.Warn("setting ping deadline", zap.Error(err))
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("ping failed", zap.Error(err))
				return
			}
		}
	}
}
