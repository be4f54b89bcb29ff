// Package main provides the arena binary: it loads a configuration, builds the
// configured teams and plays a single match, a battle tower or a tournament.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	format := flag.String("format", "", "override match.format: single, tower or tournament")
	seed := flag.Uint64("seed", 0, "override match.seed when non-zero")
	trace := flag.Bool("trace", false, "print every round event")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *format != "" {
		cfg.Match.Format = *format
	}
	if *seed != 0 {
		cfg.Match.Seed = *seed
	}
	if *trace {
		cfg.Match.Trace = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("validating flags: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting arena",
		zap.String("format", cfg.Match.Format),
		zap.Uint64("seed", cfg.Match.Seed),
	)

	if err := run(cfg, os.Stdin, os.Stdout, logger); err != nil {
		logger.Fatal("arena failed", zap.Error(err))
	}
	logger.Info("arena finished", zap.Duration("elapsed", time.Since(start)))
}
