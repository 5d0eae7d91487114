//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/config"
	"github.com/cory-johannsen/mud-combat/internal/game/command"
	"github.com/cory-johannsen/mud-combat/internal/game/entity"
	"github.com/cory-johannsen/mud-combat/internal/gameserver"
	"github.com/cory-johannsen/mud-combat/internal/transport"
)

func initializeApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, func(), error) {
	wire.Build(
		entity.NewArena,
		command.DefaultRegistry,
		provideRoller,
		provideWorld,
		provideItems,
		provideSpawner,
		provideScripts,
		providePool,
		provideProfiles,
		provideHub,
		wire.Bind(new(gameserver.Emitter), new(*transport.Hub)),
		provideService,
		provideTransport,
		provideHealth,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
