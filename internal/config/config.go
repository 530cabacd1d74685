package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Engine     EngineConfig    `toml:"engine"`
	Components map[string]int  `toml:"components"` // kind -> capacity
	Scene      SceneConfig     `toml:"scene"`
	Scripting  ScriptingConfig `toml:"scripting"`
	Database   DatabaseConfig  `toml:"database"`
	Logging    LoggingConfig   `toml:"logging"`
}

type EngineConfig struct {
	TickRate        time.Duration `toml:"tick_rate"`
	DefaultCapacity int           `toml:"default_capacity"` // kinds not listed in [components]
	MaxFrames       uint64        `toml:"max_frames"`       // 0 = run until signalled
	StatsInterval   int           `toml:"stats_interval"`   // frames between stats lines, 0 = off
	Profile         string        `toml:"profile"`          // "", "cpu", "mem" or "allocs"
	ProfileDir      string        `toml:"profile_dir"`
	StartTime       int64         // set at boot, not from config
}

type SceneConfig struct {
	Files []string `toml:"files"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir"` // empty disables the script component
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables the database scene source
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	Scenes          []string      `toml:"scenes"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Engine.StartTime = time.Now().Unix()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Engine.TickRate <= 0 {
		return fmt.Errorf("engine.tick_rate must be positive, got %s", c.Engine.TickRate)
	}
	if c.Engine.DefaultCapacity <= 0 {
		return fmt.Errorf("engine.default_capacity must be positive, got %d", c.Engine.DefaultCapacity)
	}
	switch c.Engine.Profile {
	case "", "cpu", "mem", "allocs":
	default:
		return fmt.Errorf("engine.profile: unknown mode %q", c.Engine.Profile)
	}
	for kind, n := range c.Components {
		if n <= 0 {
			return fmt.Errorf("components.%s: capacity must be positive, got %d", kind, n)
		}
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			TickRate:        50 * time.Millisecond,
			DefaultCapacity: 1024,
			StatsInterval:   200,
			ProfileDir:      ".",
		},
		Components: map[string]int{},
		Scene: SceneConfig{
			Files: []string{"scenes/demo.yaml"},
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
