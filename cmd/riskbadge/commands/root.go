package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	pipelineConfigPath string
	verbose            bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "riskbadge",
	Short: "Risk Badge - 종목 위험 배지 분석 시스템",
	Long: `Risk Badge Unified CLI

가격/재무 데이터로 기술 지표를 계산하고
5개 차원(가격 과열, 변동성, 추세, 기업 건전성, 밸류에이션)의
위험 배지(STABLE/CAUTION/WARNING)를 산출합니다.

Usage:
  go run ./cmd/riskbadge [command]

Examples:
  go run ./cmd/riskbadge migrate
  go run ./cmd/riskbadge compute --region kr
  go run ./cmd/riskbadge badge show --stock 5930 --market KR_KOSPI
  go run ./cmd/riskbadge api
  go run ./cmd/riskbadge scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&pipelineConfigPath, "pipeline-config", "", "pipeline YAML (default: PIPELINE_CONFIG or built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug log level)")
}
