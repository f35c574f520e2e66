package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/wonny/riskbadge/internal/api"
	"github.com/wonny/riskbadge/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `배지 조회 REST API 서버를 시작합니다.

Endpoints:
  GET  /health                 - Health check (postgres, redis)
  GET  /metrics                - Prometheus metrics
  GET  /api/badges/{stockID}   - 단일 종목 배지
  GET  /api/badges?ids=1,2,3   - 여러 종목 배지
  POST /api/badges/compute     - 시장 배지 재계산 (rate limited)

Example:
  go run ./cmd/riskbadge api
  go run ./cmd/riskbadge api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "일 배치 스케줄러를 같은 프로세스에서 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Risk Badge API Server ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	limiter := rate.NewLimiter(rate.Limit(a.cfg.API.ComputeRatePerSec), a.cfg.API.ComputeBurst)
	badgeHandler := handlers.NewBadgeHandler(a.badges, limiter, a.cfg.API.MaxBatchIDs, a.log)

	checks := map[string]api.HealthChecker{
		"postgres": a.db,
		"redis":    a.redis,
	}
	router := api.NewRouter(badgeHandler, checks, a.metrics, a.log)
	server := api.New(a.cfg, a.log, router)

	if apiWithScheduler {
		sched, err := newScheduler(a)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Ctrl+C 후 API_SHUTDOWN_TIMEOUT 동안 진행 중 요청을 마무리
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("api server: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
