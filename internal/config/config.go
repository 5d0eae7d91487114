// Package config provides Viper-based configuration loading for the combat server.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds top-level server settings.
type ServerConfig struct {
	// Name identifies this server instance in logs and health checks.
	Name string `mapstructure:"name"`
	// ShutdownTimeout bounds graceful shutdown of every service.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Enabled turns on combat profile persistence.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Components overrides Level for named component loggers, e.g.
	// {"dice": "warn"} to silence roll audits.
	Components map[string]string `mapstructure:"components"`
	// Sampling throttles repeated entries per second. Zero Initial disables it.
	Sampling SamplingConfig `mapstructure:"sampling"`
}

// SamplingConfig keeps the first Initial entries with the same message each
// second and then one in every Thereafter.
type SamplingConfig struct {
	Initial    int `mapstructure:"initial"`
	Thereafter int `mapstructure:"thereafter"`
}

// CombatConfig tunes the combat clock and regeneration rates.
type CombatConfig struct {
	// TickInterval is the period of the world tick.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// ChallengeTimeout is how long a sync-bar challenge stays open.
	ChallengeTimeout time.Duration `mapstructure:"challenge_timeout"`
	// MomentumDecay is momentum lost per second once the grace window passes.
	MomentumDecay float64 `mapstructure:"momentum_decay"`
	// BalanceRegen is balance regained per second.
	BalanceRegen float64 `mapstructure:"balance_regen"`
	// FatigueRegen is fatigue regained per second outside roundtime.
	FatigueRegen float64 `mapstructure:"fatigue_regen"`
	// ActionDelays overrides the buffer action delays, keyed by action name.
	ActionDelays map[string]time.Duration `mapstructure:"action_delays"`
	// StartRoom places newly joined players; empty uses the world's start room.
	StartRoom string `mapstructure:"start_room"`
	// StartingWeapon is the weapon id new players wield; empty for bare hands.
	StartingWeapon string `mapstructure:"starting_weapon"`
}

// TransportConfig holds the websocket listener settings.
type TransportConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// Path is the websocket upgrade route.
	Path string `mapstructure:"path"`
	// WriteTimeout bounds a single websocket write.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// PongTimeout is how long the client may stay silent before it is dropped.
	PongTimeout time.Duration `mapstructure:"pong_timeout"`
	// Debug exposes /debug/entities.
	Debug bool `mapstructure:"debug"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TransportConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// HealthConfig holds the gRPC health service settings.
type HealthConfig struct {
	GRPCHost string `mapstructure:"grpc_host"`
	GRPCPort int    `mapstructure:"grpc_port"`
}

// Addr returns the "host:port" gRPC address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (h HealthConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.GRPCHost, h.GRPCPort)
}

// ContentConfig locates the YAML and Lua content directories.
type ContentConfig struct {
	WeaponsDir string `mapstructure:"weapons_dir"`
	ArmorDir   string `mapstructure:"armor_dir"`
	NPCsDir    string `mapstructure:"npcs_dir"`
	ZonesDir   string `mapstructure:"zones_dir"`
	// ScriptsDir holds global Lua hooks; empty disables scripting.
	ScriptsDir string `mapstructure:"scripts_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Combat    CombatConfig    `mapstructure:"combat"`
	Transport TransportConfig `mapstructure:"transport"`
	Health    HealthConfig    `mapstructure:"health"`
	Content   ContentConfig   `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	validators := []func() error{
		func() error { return validateServer(c.Server) },
		func() error { return validateDatabase(c.Database) },
		func() error { return validateLogging(c.Logging) },
		func() error { return validateCombat(c.Combat) },
		func() error { return validateTransport(c.Transport) },
		func() error { return validateHealth(c.Health) },
		func() error { return validateContent(c.Content) },
	}
	for _, v := range validators {
		if err := v(); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	if s.Name == "" {
		return errors.New("server.name must not be empty")
	}
	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0, got %s", s.ShutdownTimeout)
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	if !d.Enabled {
		return nil
	}
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	names := make([]string, 0, len(l.Components))
	for name := range l.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !validLevels[l.Components[name]] {
			return fmt.Errorf("logging.components.%s must be one of [debug, info, warn, error], got %q", name, l.Components[name])
		}
	}
	if l.Sampling.Initial < 0 || l.Sampling.Thereafter < 0 {
		return errors.New("logging.sampling values must be >= 0")
	}
	return nil
}

var knownActions = map[string]bool{"DASH": true, "SLASH": true, "THRUST": true, "PARRY": true, "STUMBLE": true}

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("combat.tick_interval must be > 0, got %s", c.TickInterval))
	}
	if c.ChallengeTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("combat.challenge_timeout must be > 0, got %s", c.ChallengeTimeout))
	}
	if c.MomentumDecay < 0 {
		errs = append(errs, "combat.momentum_decay must not be negative")
	}
	if c.BalanceRegen < 0 || c.FatigueRegen < 0 {
		errs = append(errs, "combat regeneration rates must not be negative")
	}
	for name, d := range c.ActionDelays {
		if !knownActions[strings.ToUpper(name)] {
			errs = append(errs, fmt.Sprintf("combat.action_delays: unknown action %q", name))
		}
		if d <= 0 {
			errs = append(errs, fmt.Sprintf("combat.action_delays.%s must be > 0", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTransport(t TransportConfig) error {
	var errs []string
	if t.Port < 0 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("transport.port must be 0-65535, got %d", t.Port))
	}
	if !strings.HasPrefix(t.Path, "/") {
		errs = append(errs, fmt.Sprintf("transport.path must start with '/', got %q", t.Path))
	}
	if t.WriteTimeout <= 0 {
		errs = append(errs, "transport.write_timeout must be > 0")
	}
	if t.PongTimeout <= 0 {
		errs = append(errs, "transport.pong_timeout must be > 0")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateHealth(h HealthConfig) error {
	if h.GRPCHost == "" {
		return errors.New("health.grpc_host must not be empty")
	}
	if h.GRPCPort < 0 || h.GRPCPort > 65535 {
		return fmt.Errorf("health.grpc_port must be 0-65535, got %d", h.GRPCPort)
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.WeaponsDir == "" {
		errs = append(errs, "content.weapons_dir must not be empty")
	}
	if c.ZonesDir == "" {
		errs = append(errs, "content.zones_dir must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with MUD_ prefix
	v.SetEnvPrefix("MUD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "combat")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "combat")
	v.SetDefault("database.password", "combat")
	v.SetDefault("database.name", "combat")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.sampling.initial", 100)
	v.SetDefault("logging.sampling.thereafter", 100)

	v.SetDefault("combat.tick_interval", "1s")
	v.SetDefault("combat.challenge_timeout", "10s")
	v.SetDefault("combat.momentum_decay", 5.0)
	v.SetDefault("combat.balance_regen", 0.05)
	v.SetDefault("combat.fatigue_regen", 1.0)

	v.SetDefault("transport.host", "0.0.0.0")
	v.SetDefault("transport.port", 8080)
	v.SetDefault("transport.path", "/ws")
	v.SetDefault("transport.write_timeout", "10s")
	v.SetDefault("transport.pong_timeout", "60s")

	v.SetDefault("health.grpc_host", "127.0.0.1")
	v.SetDefault("health.grpc_port", 50051)

	v.SetDefault("content.weapons_dir", "content/weapons")
	v.SetDefault("content.armor_dir", "content/armor")
	v.SetDefault("content.npcs_dir", "content/npcs")
	v.SetDefault("content.zones_dir", "content/zones")
	v.SetDefault("content.scripts_dir", "content/scripts")
}
