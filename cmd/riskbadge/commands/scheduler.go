package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/riskbadge/internal/scheduler"
	"github.com/wonny/riskbadge/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `일 배치 스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업과 스케줄
  run     - 특정 작업 즉시 실행 (완료까지 대기)

Example:
  go run ./cmd/riskbadge scheduler start
  go run ./cmd/riskbadge scheduler list
  go run ./cmd/riskbadge scheduler run daily_kr`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업 (pipeline.yaml schedule):
- daily_kr: 평일 18:00 KST (KR_KOSPI, KR_KOSDAQ)
- daily_us: 화~토 09:00 KST (US_NYSE, US_NASDAQ)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Risk Badge Scheduler ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// Start scheduler
	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	ctx, stop := signalContext(cmd.Context())
	defer stop()
	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Printf("Registered jobs (%s):\n", a.cfg.Scheduler.Timezone)
	stats := sched.GetJobStats()
	for _, name := range sched.GetAllJobs() {
		fmt.Printf("  - %-10s %s\n", name, stats[name].Schedule)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	fmt.Printf("Running job: %s\n", jobName)

	result, err := sched.RunJob(ctx, jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("job %s failed after %d attempts: %s", jobName, result.Attempts, result.Error)
	}

	fmt.Printf("✅ Job %s completed in %s\n", jobName, result.Duration.Round(time.Millisecond))
	return nil
}

// newScheduler registers the daily region jobs
func newScheduler(a *app) (*scheduler.Scheduler, error) {
	loc, err := time.LoadLocation(a.cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	sched := scheduler.New(loc, a.log)
	for _, job := range jobs.DailyJobs(a.pipeline, a.pipeCfg.Schedule, a.log) {
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}

	return sched, nil
}
