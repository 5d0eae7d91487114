package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/config"
	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/gameserver"
)

type fakeGame struct {
	hub *Hub

	mu       sync.Mutex
	joined   []string
	left     []combat.EntityID
	commands []string
	results  []gameserver.CombatResultPayload
	joinErr  error
}

func (g *fakeGame) Join(_ context.Context, id combat.EntityID, name string) (combat.EntityID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.joinErr != nil {
		return "", g.joinErr
	}
	g.joined = append(g.joined, name)
	g.hub.SendText(id, gameserver.MessageInfo, "Welcome, "+name+".")
	return id, nil
}

func (g *fakeGame) Leave(_ context.Context, id combat.EntityID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.left = append(g.left, id)
	return nil
}

func (g *fakeGame) HandleCommand(id combat.EntityID, line string) error {
	g.mu.Lock()
	g.commands = append(g.commands, line)
	g.mu.Unlock()
	g.hub.SendText(id, gameserver.MessageInfo, "ok: "+line)
	return nil
}

func (g *fakeGame) HandleCombatResult(id combat.EntityID, res gameserver.CombatResultPayload) error {
	g.mu.Lock()
	g.results = append(g.results, res)
	g.mu.Unlock()
	g.hub.SendEvent(id, gameserver.EventCombatResult, map[string]string{"hitType": string(res.HitType)})
	return nil
}

func (g *fakeGame) snapshot() (joined []string, left []combat.EntityID, commands []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.joined...), append([]combat.EntityID(nil), g.left...), append([]string(nil), g.commands...)
}

type fakeSnap struct{}

func (fakeSnap) Snapshot() []gameserver.EntityView {
	return []gameserver.EntityView{{ID: "n1", Name: "thug", Kind: "npc", HP: 30, MaxHP: 30}}
}

func testTransportConfig() config.TransportConfig {
	return config.TransportConfig{
		Host:         "127.0.0.1",
		Port:         0,
		Path:         "/ws",
		WriteTimeout: time.Second,
		PongTimeout:  5 * time.Second,
		Debug:        true,
	}
}

func startServer(t *testing.T) (*Server, *fakeGame, string) {
	t.Helper()
	logger := zap.NewNop()
	hub := NewHub(logger)
	game := &fakeGame{hub: hub}
	srv := NewServer(testTransportConfig(), hub, game, fakeSnap{}, logger)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		hub.CloseAll()
		ts.Close()
	})
	return srv, game, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, payload any) {
	t.Helper()
	b, err := encode(event, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, b))
}

func read(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

// readUntil skips frames until one with event arrives.
func readUntil(t *testing.T, conn *websocket.Conn, event string) Envelope {
	t.Helper()
	for i := 0; i < 10; i++ {
		env := read(t, conn)
		if env.Event == event {
			return env
		}
	}
	t.Fatalf("no %q frame", event)
	return Envelope{}
}

func login(t *testing.T, conn *websocket.Conn, name string) WelcomePayload {
	t.Helper()
	send(t, conn, EventLogin, LoginPayload{Name: name})
	var w WelcomePayload
	require.NoError(t, decode(readUntil(t, conn, EventWelcome), &w))
	return w
}

func TestLogin_WelcomesAndDeliversJoinOutput(t *testing.T) {
	_, game, url := startServer(t)
	conn := dial(t, url)

	send(t, conn, EventLogin, LoginPayload{Name: "Kai"})

	first := read(t, conn)
	assert.Equal(t, EventMessage, first.Event)
	var msg MessagePayload
	require.NoError(t, decode(first, &msg))
	assert.Equal(t, "Welcome, Kai.", msg.Text)
	assert.Equal(t, "info", msg.Type)

	var w WelcomePayload
	require.NoError(t, decode(read(t, conn), &w))
	assert.Equal(t, "Kai", w.Name)
	assert.True(t, strings.HasPrefix(w.EntityID, "player-"))

	joined, _, _ := game.snapshot()
	assert.Equal(t, []string{"Kai"}, joined)
}

func TestLogin_RejectedJoinSendsError(t *testing.T) {
	_, game, url := startServer(t)
	game.mu.Lock()
	game.joinErr = errors.New("gameserver: already connected")
	game.mu.Unlock()
	conn := dial(t, url)

	send(t, conn, EventLogin, LoginPayload{Name: "Kai"})

	env := read(t, conn)
	assert.Equal(t, EventError, env.Event)
	var e ErrorPayload
	require.NoError(t, decode(env, &e))
	assert.Contains(t, e.Message, "already connected")
}

func TestLogin_EmptyNameRefused(t *testing.T) {
	_, _, url := startServer(t)
	conn := dial(t, url)

	send(t, conn, EventLogin, LoginPayload{Name: "  "})

	var e ErrorPayload
	require.NoError(t, decode(readUntil(t, conn, EventError), &e))
	assert.Equal(t, "name must not be empty", e.Message)
}

func TestCommand_RequiresLogin(t *testing.T) {
	_, _, url := startServer(t)
	conn := dial(t, url)

	send(t, conn, EventCommand, CommandPayload{Text: "look"})

	var e ErrorPayload
	require.NoError(t, decode(readUntil(t, conn, EventError), &e))
	assert.Equal(t, "log in first", e.Message)
}

func TestCommand_RoutedToGame(t *testing.T) {
	_, game, url := startServer(t)
	conn := dial(t, url)
	login(t, conn, "Kai")

	send(t, conn, EventCommand, CommandPayload{Text: "advance thug"})

	var msg MessagePayload
	require.NoError(t, decode(readUntil(t, conn, EventMessage), &msg))
	assert.Equal(t, "ok: advance thug", msg.Text)
	_, _, commands := game.snapshot()
	assert.Equal(t, []string{"advance thug"}, commands)
}

func TestCombatResult_RoutedToGame(t *testing.T) {
	_, game, url := startServer(t)
	conn := dial(t, url)
	login(t, conn, "Kai")

	send(t, conn, EventCombatResult, gameserver.CombatResultPayload{TargetID: "n1", HitType: combat.ClientCrit, Token: "tok"})

	env := readUntil(t, conn, EventCombatResult)
	assert.JSONEq(t, `{"hitType":"crit"}`, string(env.Data))
	game.mu.Lock()
	defer game.mu.Unlock()
	require.Len(t, game.results, 1)
	assert.Equal(t, "tok", game.results[0].Token)
}

func TestMalformedAndUnknownFrames(t *testing.T) {
	_, _, url := startServer(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	var e ErrorPayload
	require.NoError(t, decode(readUntil(t, conn, EventError), &e))
	assert.Equal(t, "malformed frame", e.Message)

	login(t, conn, "Kai")
	send(t, conn, "dance", nil)
	require.NoError(t, decode(readUntil(t, conn, EventError), &e))
	assert.Equal(t, "unknown event dance", e.Message)
}

func TestDisconnect_SendsReasonAndLeaves(t *testing.T) {
	srv, game, url := startServer(t)
	conn := dial(t, url)
	w := login(t, conn, "Kai")

	srv.hub.Disconnect(combat.EntityID(w.EntityID), "You have died.")

	env := readUntil(t, conn, EventDisconnected)
	var e ErrorPayload
	require.NoError(t, decode(env, &e))
	assert.Equal(t, "You have died.", e.Message)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	assert.Eventually(t, func() bool {
		_, left, _ := game.snapshot()
		return len(left) == 1 && left[0] == combat.EntityID(w.EntityID)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, srv.hub.Count())
}

func TestHub_IgnoresUnknownIDs(t *testing.T) {
	hub := NewHub(zap.NewNop())
	assert.NotPanics(t, func() {
		hub.SendText("n1", gameserver.MessageCombat, "swing")
		hub.Disconnect("n1", "gone")
	})
	assert.Equal(t, 0, hub.Count())
}

func TestHealthz(t *testing.T) {
	srv, _, _ := startServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","clients":0}`, rec.Body.String())
}

func TestDebugEntities(t *testing.T) {
	srv, _, _ := startServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/entities", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var views []gameserver.EntityView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "thug", views[0].Name)
}

func TestDebugEntities_HiddenWithoutDebug(t *testing.T) {
	cfg := testTransportConfig()
	cfg.Debug = false
	srv := NewServer(cfg, NewHub(zap.NewNop()), &fakeGame{}, fakeSnap{}, zap.NewNop())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/entities", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEncode_NilPayloadOmitsData(t *testing.T) {
	b, err := encode(EventDisconnected, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"disconnected"}`, string(b))

	assert.Error(t, decode(Envelope{Event: EventLogin}, &LoginPayload{}))
}
