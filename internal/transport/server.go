package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/config"
	"github.com/cory-johannsen/mud-combat/internal/gameserver"
)

// Snapshotter lists live entities for the debug endpoint.
type Snapshotter interface {
	Snapshot() []gameserver.EntityView
}

// Server is the websocket front door. It implements server.Service.
type Server struct {
	cfg    config.TransportConfig
	hub    *Hub
	game   Game
	snap   Snapshotter
	logger *zap.Logger

	upgrader websocket.Upgrader
	http     *http.Server

	// ctx bounds the client pumps; cancel fires on Stop.
	ctx    context.Context
	cancel context.CancelFunc

	listener net.Listener
	ready    chan struct{}
}

// NewServer builds a server routing connections into game. snap may be nil,
// in which case /debug/entities is never mounted.
//
// Precondition: hub, game and logger must be non-nil.
func NewServer(cfg config.TransportConfig, hub *Hub, game Game, snap Snapshotter, logger *zap.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:    cfg,
		hub:    hub,
		game:   game,
		snap:   snap,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		ctx:    ctx,
		cancel: cancel,
		ready:  make(chan struct{}),
	}
	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the HTTP routes.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET(s.path(), s.serveWS)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": s.hub.Count()})
	})
	if s.cfg.Debug && s.snap != nil {
		r.GET("/debug/entities", func(c *gin.Context) {
			c.JSON(http.StatusOK, s.snap.Snapshot())
		})
	}
	return r
}

func (s *Server) path() string {
	if s.cfg.Path == "" {
		return "/ws"
	}
	return s.cfg.Path
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) serveWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.String("remote", c.Request.RemoteAddr), zap.Error(err))
		return
	}
	client := newClient(s.hub, s.game, conn, s.cfg.WriteTimeout, s.cfg.PongTimeout, s.logger)
	s.logger.Info("websocket connected", zap.String("remote", conn.RemoteAddr().String()))
	go client.writePump()
	go client.readPump(s.ctx)
}

// Start listens and serves until Stop.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("transport listen %s: %w", s.http.Addr, err)
	}
	s.listener = lis
	close(s.ready)
	s.logger.Info("websocket server listening", zap.String("addr", lis.Addr().String()), zap.String("path", s.path()))
	if err := s.http.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("transport serve: %w", err)
	}
	return nil
}

// Addr blocks until the listener is bound and returns its address.
func (s *Server) Addr() string {
	<-s.ready
	return s.listener.Addr().String()
}

// Stop refuses new connections and closes every open websocket. Hijacked
// connections are not tracked by http.Server, so the hub closes them.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout+time.Second)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Warn("transport shutdown", zap.Error(err))
	}
	s.hub.CloseAll()
	s.cancel()
}
