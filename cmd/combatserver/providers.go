package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/config"
	"github.com/cory-johannsen/mud-combat/internal/game/command"
	"github.com/cory-johannsen/mud-combat/internal/game/dice"
	"github.com/cory-johannsen/mud-combat/internal/game/entity"
	"github.com/cory-johannsen/mud-combat/internal/game/inventory"
	"github.com/cory-johannsen/mud-combat/internal/game/npc"
	"github.com/cory-johannsen/mud-combat/internal/game/world"
	"github.com/cory-johannsen/mud-combat/internal/gameserver"
	"github.com/cory-johannsen/mud-combat/internal/observability"
	"github.com/cory-johannsen/mud-combat/internal/scripting"
	"github.com/cory-johannsen/mud-combat/internal/server"
	"github.com/cory-johannsen/mud-combat/internal/storage/postgres"
	"github.com/cory-johannsen/mud-combat/internal/transport"
)

// App is the assembled combat server.
type App struct {
	Service   *gameserver.Service
	Transport *transport.Server
	Health    *server.HealthService
	// Pool is nil when persistence is disabled.
	Pool *postgres.Pool
}

func provideRoller(logger *zap.Logger) *dice.Roller {
	return dice.NewRoller(dice.NewSource(), observability.Component(logger, "dice"))
}

func provideWorld(cfg config.Config, logger *zap.Logger) (*world.Manager, error) {
	start := time.Now()
	zones, err := world.LoadZonesFromDir(cfg.Content.ZonesDir)
	if err != nil {
		return nil, fmt.Errorf("loading zones: %w", err)
	}
	mgr, err := world.NewManager(zones)
	if err != nil {
		return nil, fmt.Errorf("creating world manager: %w", err)
	}
	logger.Info("world loaded",
		zap.Int("zones", len(zones)),
		zap.Int("rooms", len(mgr.Rooms())),
		zap.Duration("elapsed", time.Since(start)),
	)
	return mgr, nil
}

func provideItems(cfg config.Config, logger *zap.Logger) (*inventory.Registry, error) {
	reg := inventory.NewRegistry()
	if err := reg.Load(cfg.Content.WeaponsDir, cfg.Content.ArmorDir); err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	logger.Info("items loaded", zap.Int("weapons", len(reg.AllWeapons())))
	return reg, nil
}

func provideSpawner(cfg config.Config, arena *entity.Arena, items *inventory.Registry, logger *zap.Logger) (*npc.Spawner, error) {
	if cfg.Content.NPCsDir == "" {
		return nil, nil
	}
	templates, err := npc.LoadTemplates(cfg.Content.NPCsDir)
	if err != nil {
		return nil, fmt.Errorf("loading npc templates: %w", err)
	}
	logger.Info("loaded npc templates", zap.Int("count", len(templates)))
	return npc.NewSpawner(arena, items, templates, observability.Component(logger, "npc"))
}

// provideScripts loads the global hooks and every zone's own script dir.
// A nil manager disables scripting.
func provideScripts(cfg config.Config, roller *dice.Roller, worldMgr *world.Manager, logger *zap.Logger) (*scripting.Manager, func(), error) {
	if cfg.Content.ScriptsDir == "" {
		return nil, func() {}, nil
	}
	mgr := scripting.NewManager(roller, observability.Component(logger, "lua"))
	cleanup := func() { mgr.Close() }
	if info, err := os.Stat(cfg.Content.ScriptsDir); err == nil && info.IsDir() {
		if err := mgr.LoadGlobal(cfg.Content.ScriptsDir, scripting.DefaultInstructionLimit); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("loading global scripts: %w", err)
		}
	}
	for _, zone := range worldMgr.AllZones() {
		if zone.ScriptDir == "" {
			continue
		}
		if info, err := os.Stat(zone.ScriptDir); err != nil || !info.IsDir() {
			logger.Warn("zone script_dir not found, skipping",
				zap.String("zone", zone.ID), zap.String("dir", zone.ScriptDir))
			continue
		}
		if err := mgr.LoadZone(zone.ID, zone.ScriptDir, scripting.DefaultInstructionLimit); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("loading zone %s scripts: %w", zone.ID, err)
		}
		logger.Info("zone scripts loaded", zap.String("zone", zone.ID))
	}
	return mgr, cleanup, nil
}

// providePool connects to PostgreSQL when persistence is enabled and
// returns nil otherwise.
func providePool(ctx context.Context, cfg config.Config, logger *zap.Logger) (*postgres.Pool, func(), error) {
	if !cfg.Database.Enabled {
		logger.Info("profile persistence disabled")
		return nil, func() {}, nil
	}
	pool, err := postgres.Open(ctx, cfg.Database, observability.Component(logger, "postgres"))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	return pool, pool.Close, nil
}

// provideProfiles returns the profile store on pool. Without a pool profiles
// live only as long as a connection.
func provideProfiles(pool *postgres.Pool) gameserver.ProfileStore {
	if pool == nil {
		return nil
	}
	return pool.Profiles()
}

func provideService(
	cfg config.Config,
	arena *entity.Arena,
	worldMgr *world.Manager,
	items *inventory.Registry,
	spawner *npc.Spawner,
	roller *dice.Roller,
	emit gameserver.Emitter,
	commands *command.Registry,
	scripts *scripting.Manager,
	profiles gameserver.ProfileStore,
	logger *zap.Logger,
) (*gameserver.Service, error) {
	return gameserver.NewService(gameserver.Deps{
		Arena:    arena,
		World:    worldMgr,
		Items:    items,
		Spawner:  spawner,
		Roller:   roller,
		Emitter:  emit,
		Commands: commands,
		Scripts:  scripts,
		Profiles: profiles,
		Config:   cfg.Combat,
		Logger:   observability.Component(logger, "combat"),
	})
}

func provideHub(logger *zap.Logger) *transport.Hub {
	return transport.NewHub(observability.Component(logger, "hub"))
}

func provideTransport(cfg config.Config, hub *transport.Hub, svc *gameserver.Service, logger *zap.Logger) *transport.Server {
	return transport.NewServer(cfg.Transport, hub, svc, svc, observability.Component(logger, "transport"))
}

func provideHealth(cfg config.Config, logger *zap.Logger) *server.HealthService {
	return server.NewHealthService(cfg.Health.Addr(), cfg.Server.Name, observability.Component(logger, "health"))
}
