// sceneimport stores scene YAML files in the PostgreSQL scene table, where
// ecsengine picks them up when [database] dsn is set.
//
// Usage:
//
//	go run ./cmd/sceneimport [-config path] [-name scene] file.yaml...
//
// Every document of every file is stored under its scene name; -name
// overrides it when a single document is imported.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/ecsengine/internal/config"
	"github.com/l1jgo/ecsengine/internal/persist"
	"github.com/l1jgo/ecsengine/internal/scene"
)

func main() {
	fs := flag.NewFlagSet("sceneimport", flag.ExitOnError)
	cfgPath := fs.String("config", "config/engine.toml", "engine config with a [database] dsn")
	name := fs.String("name", "", "scene name override (single document only)")
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: sceneimport [-config path] [-name scene] file.yaml...")
		os.Exit(2)
	}
	if err := run(*cfgPath, *name, fs.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, name string, files []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("%s: [database] dsn is empty", cfgPath)
	}

	var batches []*scene.Batch
	for _, path := range files {
		bs, err := scene.LoadFile(path)
		if err != nil {
			return err
		}
		batches = append(batches, bs...)
	}
	if name != "" {
		if len(batches) != 1 {
			return fmt.Errorf("-name needs exactly one document, got %d", len(batches))
		}
		batches[0].Name = name
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, zap.NewNop())
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	if _, err := db.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	repo := persist.NewSceneRepo(db)
	for _, b := range batches {
		if err := repo.Save(ctx, b); err != nil {
			return fmt.Errorf("save %s: %w", b.Name, err)
		}
		fmt.Printf("Stored scene %s (%d entities)\n", b.Name, len(b.Entities))
	}
	return nil
}
