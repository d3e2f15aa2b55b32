package main

import (
	"context"
	"fmt"

	"github.com/mausarm/crypto-god/config"
	"github.com/mausarm/crypto-god/internal/fetch"
	"github.com/mausarm/crypto-god/internal/game"
	"github.com/mausarm/crypto-god/internal/memorystore"
	"github.com/mausarm/crypto-god/logger"
	"github.com/mausarm/crypto-god/pkg/coingecko"
	"github.com/mausarm/crypto-god/pkg/storage/postgres"

	"go.uber.org/zap"
)

// app is the wired game shared by all subcommands.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	engine *game.Engine
	health func(ctx context.Context) bool
	closer func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, log: log, closer: func() error { return nil }}

	var st game.StateStore
	switch cfg.Storage.Driver {
	case "postgres":
		client, err := postgres.InitializeAndMigrateStateRecord(cfg.Postgres, cfg.Log.Environment, cfg.Storage.CreateDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		st = client
		a.health = client.IsHealthy
		a.closer = client.Close
	case "memory", "":
		st = memorystore.NewStateStore()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	restClient := coingecko.NewRESTClient(cfg.Market.BaseURL, cfg.Market.Timeout)
	fetchCfg := fetch.DefaultConfig()
	fetchCfg.MarketRetries = uint64(max(cfg.Market.MarketRetries, 0))
	fetchCfg.ChartRetries = uint64(max(cfg.Market.ChartRetries, 0))
	pipeline := fetch.NewPipeline(restClient, fetch.NewLimiter(cfg.Market.RequestSpacing, nil),
		log.Named("fetch"), fetchCfg, nil, nil)

	a.engine = game.NewEngine(game.Options{
		Fetcher: pipeline,
		Store:   st,
		Key:     cfg.Game.StateKey,
		Logger:  log.Named("game"),
	})
	if err := a.engine.Load(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return a, nil
}

func (a *app) close() {
	a.engine.Close()
	if err := a.closer(); err != nil {
		a.log.Warn("failed to close storage", zap.Error(err))
	}
	_ = a.log.Sync()
}
