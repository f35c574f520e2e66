package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/riskbadge/internal/contracts"
	"github.com/wonny/riskbadge/internal/pipelineconfig"
	"github.com/wonny/riskbadge/pkg/logger"
)

// Orchestrator runs indicator compute followed by the badge batch for a region
// ⭐ SSOT: 지역별 일 배치 조율은 여기서만
type Orchestrator struct {
	compute *ComputeEngine
	badges  *BadgeService
	quality *QualityGate // optional
	cfg     *pipelineconfig.Config
	logger  *logger.Logger
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(compute *ComputeEngine, badges *BadgeService, cfg *pipelineconfig.Config, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		compute: compute,
		badges:  badges,
		cfg:     cfg,
		logger:  log,
	}
}

// WithQualityGate checks input coverage before each region run
func (o *Orchestrator) WithQualityGate(g *QualityGate) *Orchestrator {
	o.quality = g
	return o
}

// RunResult holds the results of one region run
type RunResult struct {
	RunID           string
	Region          contracts.Region
	ConfigHash      string
	Success         bool
	Error           error
	CompletedStages []string
	Quality         *QualityReport
	Compute         *ComputeResult
	Batches         []*BatchResult
	Duration        time.Duration
}

// RunRegion computes indicators for the region's markets, then badges market by market
func (o *Orchestrator) RunRegion(ctx context.Context, region contracts.Region) (*RunResult, error) {
	start := time.Now()
	markets := region.Markets()

	result := &RunResult{
		RunID:           uuid.NewString(),
		Region:          region,
		CompletedStages: make([]string, 0, 2+len(markets)),
	}

	hash, err := pipelineconfig.Hash(o.cfg)
	if err != nil {
		return nil, fmt.Errorf("hash pipeline config: %w", err)
	}
	result.ConfigHash = hash

	log := o.logger.WithFields(map[string]interface{}{
		"run_id": result.RunID,
		"region": region,
	})
	log.WithFields(map[string]interface{}{
		"markets":        markets,
		"config_version": o.cfg.Meta.Version,
		"config_hash":    hash,
	}).Info("Starting pipeline run")

	if o.quality != nil {
		report, err := o.quality.Check(ctx, markets)
		result.Quality = report
		if err != nil {
			result.Error = fmt.Errorf("quality gate failed: %w", err)
			result.Duration = time.Since(start)
			return result, result.Error
		}
		for _, w := range report.Warnings {
			log.WithField("warning", w).Warn("Input coverage warning")
		}
		result.CompletedStages = append(result.CompletedStages, "quality")
	}

	computed, err := o.compute.Run(ctx, markets)
	if err != nil {
		result.Error = fmt.Errorf("compute failed: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.Compute = computed
	result.CompletedStages = append(result.CompletedStages, "compute")

	for _, market := range markets {
		batch, err := o.badges.ComputeBatch(ctx, market)
		if err != nil {
			result.Error = fmt.Errorf("badge batch %s failed: %w", market, err)
			result.Duration = time.Since(start)
			return result, result.Error
		}
		result.Batches = append(result.Batches, batch)
		result.CompletedStages = append(result.CompletedStages, "badges:"+string(market))
	}

	result.Success = true
	result.Duration = time.Since(start)

	log.WithFields(map[string]interface{}{
		"stages":   result.CompletedStages,
		"inserted": computed.Inserted,
		"duration": result.Duration.String(),
	}).Info("Pipeline run complete")

	return result, nil
}

// RunAll runs the KR region then the US region; it stops at the first failure
func (o *Orchestrator) RunAll(ctx context.Context) ([]*RunResult, error) {
	var results []*RunResult
	for _, region := range []contracts.Region{contracts.RegionKR, contracts.RegionUS} {
		r, err := o.RunRegion(ctx, region)
		if r != nil {
			results = append(results, r)
		}
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
