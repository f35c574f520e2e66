package commands

import (
	"fmt"

	"github.com/wonny/riskbadge/internal/pipeline"
	"github.com/wonny/riskbadge/internal/pipelineconfig"
	"github.com/wonny/riskbadge/internal/store"
	"github.com/wonny/riskbadge/pkg/config"
	"github.com/wonny/riskbadge/pkg/database"
	"github.com/wonny/riskbadge/pkg/logger"
	"github.com/wonny/riskbadge/pkg/metrics"
	"github.com/wonny/riskbadge/pkg/redis"
)

// app holds the wired dependencies shared by every command
type app struct {
	cfg      *config.Config
	pipeCfg  *pipelineconfig.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	metrics  *metrics.Metrics
	compute  *pipeline.ComputeEngine
	badges   *pipeline.BadgeService
	pipeline *pipeline.Orchestrator
}

// newApp loads configuration and connects to PostgreSQL and Redis
func newApp() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if pipelineConfigPath != "" {
		cfg.Pipeline.ConfigPath = pipelineConfigPath
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Pipeline parameters
	pipeCfg, err := pipelineconfig.LoadOrDefault(cfg.Pipeline.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load pipeline config: %w", err)
	}

	// 4. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 5. Connect to Redis (캐시 실패는 치명적이지 않음)
	rc, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, badge cache disabled")
		rc = redis.Disabled()
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	// 6. Create repositories
	prices := store.NewPriceRepository(db.Pool)
	benchmarks := store.NewBenchmarkRepository(db.Pool)
	rates := store.NewRiskFreeRateRepository(db.Pool)
	indicators := store.NewIndicatorRepository(db)

	var cache *store.BadgeCache
	if rc.Enabled() {
		cache = store.NewBadgeCache(rc, "riskbadge")
	}

	deps := pipeline.BadgeDeps{
		Indicators:   indicators,
		Fundamentals: store.NewFundamentalRepository(db.Pool),
		Factors:      store.NewFactorRepository(db.Pool),
		Badges:       store.NewBadgeRepository(db.Pool),
	}
	if cache != nil {
		deps.Cache = cache
	}

	// 7. Create pipeline
	compute := pipeline.NewComputeEngine(prices, benchmarks, rates, indicators, pipeCfg, log, m)
	badges := pipeline.NewBadgeService(deps, pipeCfg, cfg.Redis.BadgeTTL, log, m)
	quality := pipeline.NewQualityGate(store.NewCoverageRepository(db.Pool), pipeCfg, log)

	return &app{
		cfg:      cfg,
		pipeCfg:  pipeCfg,
		log:      log,
		db:       db,
		redis:    rc,
		metrics:  m,
		compute:  compute,
		badges:   badges,
		pipeline: pipeline.NewOrchestrator(compute, badges, pipeCfg, log).WithQualityGate(quality),
	}, nil
}

// Close releases connections
func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close Redis")
	}
	a.db.Close()
}
