package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l1jgo/ecsengine/internal/component"
	"github.com/l1jgo/ecsengine/internal/config"
	"github.com/l1jgo/ecsengine/internal/core/ecs"
	"github.com/l1jgo/ecsengine/internal/core/event"
	coresys "github.com/l1jgo/ecsengine/internal/core/system"
	"github.com/l1jgo/ecsengine/internal/persist"
	"github.com/l1jgo/ecsengine/internal/scene"
	"github.com/l1jgo/ecsengine/internal/scripting"
	"github.com/l1jgo/ecsengine/internal/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             ecsengine  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Engine ────────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/engine.toml"
	if p := os.Getenv("ECSENGINE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	if p := startProfile(cfg.Engine); p != nil {
		defer p.Stop()
	}

	// 3. Scripting
	var scripts *scripting.Engine
	if cfg.Scripting.Dir != "" {
		scripts, err = scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer scripts.Close()
	}

	// 4. World: register every kind, then size the pools
	printSection("Components")
	world := ecs.NewWorld(log)
	bus := event.NewBus()
	system.BridgeLifecycle(world, bus)
	event.Subscribe(bus, func(e event.EntityComposed) {
		log.Debug("entity composed",
			zap.Stringer("entity", e.Entity),
			zap.String("name", e.Name),
			zap.String("batch", e.Batch),
		)
	})

	if err := component.Register(world, component.Deps{Scripts: scripts}); err != nil {
		return fmt.Errorf("register components: %w", err)
	}
	if err := world.Init(cfg.Components, cfg.Engine.DefaultCapacity); err != nil {
		return fmt.Errorf("init pools: %w", err)
	}
	for _, r := range world.Directory().Registries() {
		printStat(r.Name(), r.Capacity())
	}
	fmt.Println()

	// 5. Scenes
	printSection("Scenes")
	composer := scene.NewComposer(world, bus, log)
	for _, path := range cfg.Scene.Files {
		batches, err := scene.LoadFile(path)
		if err != nil {
			return err
		}
		n, err := composer.ComposeAll(batches)
		if err != nil {
			return fmt.Errorf("compose %s: %w", path, err)
		}
		printStat(path, n)
	}
	if cfg.Database.DSN != "" {
		if err := composeFromDB(cfg.Database, composer, log); err != nil {
			return err
		}
	}
	printStat("entities", world.Entities().Len())
	fmt.Println()

	// 6. Systems
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewPoolUpdateSystem(world))
	if cfg.Engine.StatsInterval > 0 {
		runner.Register(system.NewStatsSystem(world, cfg.Engine.StatsInterval, log))
	}
	runner.Register(system.NewCleanupSystem(world, log))

	// 7. Frame loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Engine.TickRate)
	defer ticker.Stop()

	printSection("Running")
	printReady(fmt.Sprintf("frame loop started (tick: %s)", cfg.Engine.TickRate))
	if cfg.Engine.MaxFrames > 0 {
		printReady(fmt.Sprintf("stopping after %d frames", cfg.Engine.MaxFrames))
	}
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Engine.TickRate)
			if cfg.Engine.MaxFrames > 0 && runner.Frames() >= cfg.Engine.MaxFrames {
				log.Info("frame limit reached",
					zap.Uint64("frames", runner.Frames()),
					zap.Duration("mean_frame", runner.MeanFrame()),
				)
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received",
				zap.String("signal", sig.String()),
				zap.Uint64("frames", runner.Frames()),
				zap.Duration("mean_frame", runner.MeanFrame()),
				zap.Int("entities", world.Entities().Len()),
			)
			return nil
		}
	}
}

// composeFromDB composes the configured scenes stored in PostgreSQL, or
// every stored scene when none are configured.
func composeFromDB(cfg config.DatabaseConfig, composer *scene.Composer, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL connected")

	if _, err := db.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	repo := persist.NewSceneRepo(db)
	names := cfg.Scenes
	if len(names) == 0 {
		if names, err = repo.Names(ctx); err != nil {
			return fmt.Errorf("list scenes: %w", err)
		}
	}
	for _, name := range names {
		b, err := repo.Load(ctx, name)
		if err != nil {
			return fmt.Errorf("load scene %s: %w", name, err)
		}
		hs, err := composer.Compose(b)
		if err != nil {
			return fmt.Errorf("compose scene %s: %w", name, err)
		}
		printStat("db:"+name, len(hs))
	}
	return nil
}

// startProfile starts the profiler named by cfg.Profile, or returns nil.
func startProfile(cfg config.EngineConfig) interface{ Stop() } {
	var mode func(*profile.Profile)
	switch cfg.Profile {
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	case "allocs":
		mode = profile.MemProfileAllocs
	default:
		return nil
	}
	printOK(fmt.Sprintf("%s profile -> %s", cfg.Profile, cfg.ProfileDir))
	return profile.Start(mode, profile.ProfilePath(cfg.ProfileDir), profile.NoShutdownHook, profile.Quiet)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
