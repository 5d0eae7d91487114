// Package observability provides logging utilities.
package observability

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/mud-combat/internal/config"
)

// NewLogger creates a structured logger from the given logging configuration.
// Every entry carries the given fields (typically the server name). Loggers
// built with Component honour cfg.Components, which may sit above or below
// cfg.Level.
//
// Precondition: cfg passes config validation.
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig, fields ...zap.Field) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}
	components := make(map[string]zapcore.Level, len(cfg.Components))
	floor := level
	for name, l := range cfg.Components {
		cl, err := zapcore.ParseLevel(l)
		if err != nil {
			return nil, fmt.Errorf("parsing log level %q for component %s: %w", l, name, err)
		}
		components[name] = cl
		if cl < floor {
			floor = cl
		}
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	zapCfg.Sampling = nil
	if cfg.Sampling.Initial > 0 {
		zapCfg.Sampling = &zap.SamplingConfig{Initial: cfg.Sampling.Initial, Thereafter: cfg.Sampling.Thereafter}
	}

	zapCfg.Level = zap.NewAtomicLevelAt(floor)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	opts := []zap.Option{zap.Fields(fields...)}
	if len(components) > 0 {
		opts = append(opts, zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return &componentCore{Core: c, level: level, components: components}
		}))
	}
	logger, err := zapCfg.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// Component returns a child logger tagged with a component name.
func Component(base *zap.Logger, name string) *zap.Logger {
	return base.Named(name).With(zap.String("component", name))
}

// componentCore applies a per-component minimum level, keyed by the last
// segment of the logger name, and the base level to everything else.
type componentCore struct {
	zapcore.Core
	level      zapcore.Level
	components map[string]zapcore.Level
}

func (c *componentCore) With(fields []zapcore.Field) zapcore.Core {
	return &componentCore{Core: c.Core.With(fields), level: c.level, components: c.components}
}

func (c *componentCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if ent.Level < c.minLevel(ent.LoggerName) {
		return ce
	}
	return c.Core.Check(ent, ce)
}

func (c *componentCore) minLevel(loggerName string) zapcore.Level {
	name := loggerName
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if l, ok := c.components[name]; ok {
		return l
	}
	return c.level
}
