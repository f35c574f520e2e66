package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/riskbadge/internal/contracts"
	"github.com/wonny/riskbadge/internal/pipeline"
)

// computeCmd represents the compute command
var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "지표 계산 + 배지 배치 실행",
	Long: `지역 단위로 전체 파이프라인을 실행합니다.

1. 시장별 기술 지표 계산 (stock_indicators 교체)
2. 시장별 위험 배지 배치 (risk_badges upsert)

Regions:
  kr   - KR_KOSPI, KR_KOSDAQ
  us   - US_NYSE, US_NASDAQ
  all  - kr 다음 us (실패 시 중단)

Example:
  go run ./cmd/riskbadge compute --region kr
  go run ./cmd/riskbadge compute --region all`,
	RunE: runCompute,
}

var (
	computeRegion string
)

func init() {
	rootCmd.AddCommand(computeCmd)

	// Flags
	computeCmd.Flags().StringVar(&computeRegion, "region", "all", "kr|us|all")
}

func runCompute(cmd *cobra.Command, args []string) error {
	var regions []contracts.Region
	if computeRegion != "all" {
		region, err := contracts.ParseRegion(computeRegion)
		if err != nil {
			return err
		}
		regions = append(regions, region)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	var results []*pipeline.RunResult
	if len(regions) == 0 {
		results, err = a.pipeline.RunAll(ctx)
	} else {
		var r *pipeline.RunResult
		r, err = a.pipeline.RunRegion(ctx, regions[0])
		if r != nil {
			results = append(results, r)
		}
	}

	for _, r := range results {
		printRunResult(r)
	}
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}
	return nil
}

func printRunResult(r *pipeline.RunResult) {
	status := "✅"
	if !r.Success {
		status = "❌"
	}

	fmt.Printf("\n%s Region %s (run %s, %s)\n", status, r.Region, r.RunID, r.Duration.Round(time.Millisecond))
	fmt.Printf("   Config: %s\n", r.ConfigHash)
	fmt.Printf("   Stages: %v\n", r.CompletedStages)

	if q := r.Quality; q != nil {
		for _, c := range q.Coverage {
			fmt.Printf("   🔍 %-10s total=%d price=%.2f fundamentals=%.2f factors=%.2f\n",
				c.Market, c.TotalStocks, c.PriceCoverage(), c.FundamentalCoverage(), c.FactorCoverage())
		}
		for _, w := range q.Warnings {
			fmt.Printf("   ⚠️  %s\n", w)
		}
	}

	if c := r.Compute; c != nil {
		for _, m := range c.Markets {
			fmt.Printf("   📈 %-10s stocks=%d computed=%d skipped=%d failed=%d\n",
				m, c.Stocks[m], c.Computed[m], c.Skipped[m], c.Failed[m])
		}
		fmt.Printf("   Indicators: deleted=%d inserted=%d\n", c.Deleted, c.Inserted)
	}

	for _, b := range r.Batches {
		printBatchResult(b)
	}

	if r.Error != nil {
		fmt.Printf("   Error: %v\n", r.Error)
	}
}

func printBatchResult(b *pipeline.BatchResult) {
	fmt.Printf("   🏷  %-10s records=%d upserted=%d failed=%d STABLE=%d CAUTION=%d WARNING=%d\n",
		b.Market, len(b.Records), b.Upserted, b.Failed,
		b.ByTier[contracts.TierStable], b.ByTier[contracts.TierCaution], b.ByTier[contracts.TierWarning])
}
