package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/riskbadge/internal/contracts"
	"github.com/wonny/riskbadge/internal/pipeline"
	"github.com/wonny/riskbadge/internal/pipelineconfig"
	"github.com/wonny/riskbadge/pkg/logger"
)

// RegionRunner runs the full pipeline for one region
type RegionRunner interface {
	RunRegion(ctx context.Context, region contracts.Region) (*pipeline.RunResult, error)
}

// DailyPipelineJob computes indicators and badges for a region once per trading day
// 스케줄: KR 평일 18:00, US 화~토 09:00 (KST)
type DailyPipelineJob struct {
	runner   RegionRunner
	region   contracts.Region
	schedule string
	logger   *logger.Logger
}

// NewDailyPipelineJob creates a daily job for a region
func NewDailyPipelineJob(runner RegionRunner, region contracts.Region, schedule string, log *logger.Logger) *DailyPipelineJob {
	return &DailyPipelineJob{
		runner:   runner,
		region:   region,
		schedule: schedule,
		logger:   log,
	}
}

// DailyJobs builds one job per region using the configured schedules
func DailyJobs(runner RegionRunner, sched pipelineconfig.Schedule, log *logger.Logger) []*DailyPipelineJob {
	return []*DailyPipelineJob{
		NewDailyPipelineJob(runner, contracts.RegionKR, sched.KR, log),
		NewDailyPipelineJob(runner, contracts.RegionUS, sched.US, log),
	}
}

// Name returns the job name
func (j *DailyPipelineJob) Name() string {
	return "daily_" + string(j.region)
}

// Schedule returns the cron schedule
func (j *DailyPipelineJob) Schedule() string {
	return j.schedule
}

// Run executes the region pipeline
func (j *DailyPipelineJob) Run(ctx context.Context) error {
	j.logger.WithField("region", j.region).Info("Starting daily pipeline job")

	result, err := j.runner.RunRegion(ctx, j.region)
	if err != nil {
		return fmt.Errorf("run region %s: %w", j.region, err)
	}

	var badges int64
	failed := 0
	for _, b := range result.Batches {
		badges += b.Upserted
		failed += b.Failed
	}

	j.logger.WithFields(map[string]interface{}{
		"region":   j.region,
		"run_id":   result.RunID,
		"badges":   badges,
		"failed":   failed,
		"duration": result.Duration.String(),
	}).Info("Daily pipeline job completed")

	return nil
}
