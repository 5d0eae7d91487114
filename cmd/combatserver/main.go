// Package main runs the combat server: the world tick, NPC AI and the
// websocket event contract, plus a gRPC health endpoint.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/config"
	"github.com/cory-johannsen/mud-combat/internal/gameserver"
	"github.com/cory-johannsen/mud-combat/internal/observability"
	"github.com/cory-johannsen/mud-combat/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, zap.String("server", cfg.Server.Name))
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	app, cleanup, err := initializeApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("initializing combat server", zap.Error(err))
	}
	defer cleanup()

	spawned, err := app.Service.Populate()
	if err != nil {
		logger.Fatal("populating rooms", zap.Error(err))
	}
	logger.Info("initial NPC population complete", zap.Int("npcs", spawned))

	tickCtx, stopTicks := context.WithCancel(ctx)
	ticker := gameserver.NewTicker(cfg.Combat.TickInterval, app.Service.Tick)

	lifecycle := server.NewLifecycle(logger, cfg.Server.ShutdownTimeout)
	lifecycle.Add("health", app.Health)
	lifecycle.Add("tick", &server.FuncService{
		StartFn: func() error {
			ticker.Start(tickCtx)
			<-ticker.Done()
			return nil
		},
		StopFn: stopTicks,
	})
	lifecycle.Add("websocket", app.Transport)
	if app.Pool != nil {
		watchCtx, stopWatch := context.WithCancel(ctx)
		lifecycle.Add("postgres-watch", &server.FuncService{
			StartFn: func() error {
				app.Pool.Watch(watchCtx, 30*time.Second, 5*time.Second, app.Health.SetServing)
				return nil
			},
			StopFn: stopWatch,
		})
	}
	lifecycle.OnShutdown(func() {
		app.Health.SetServing(false)
		saveCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := app.Service.SaveAll(saveCtx); err != nil {
			logger.Error("saving profiles on shutdown", zap.Error(err))
		}
	})

	app.Health.SetServing(true)
	logger.Info("combat server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("ws_addr", cfg.Transport.Addr()),
		zap.String("health_addr", cfg.Health.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}
