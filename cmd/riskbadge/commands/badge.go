package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/riskbadge/internal/contracts"
)

// badgeCmd represents the badge command
var badgeCmd = &cobra.Command{
	Use:   "badge",
	Short: "위험 배지 계산/조회",
	Long: `시장 단위 배치 또는 단일 종목 배지를 계산합니다.

지표 계산(compute)이 먼저 실행되어 있어야 합니다.

Subcommands:
  batch  - 시장 전체 배지 계산
  show   - 단일 종목 배지 계산 후 출력
  get    - 저장된 배지 조회 (캐시 우선)

Example:
  go run ./cmd/riskbadge badge batch --market KR_KOSPI
  go run ./cmd/riskbadge badge show --stock 5930 --market KR_KOSPI
  go run ./cmd/riskbadge badge get --stock 5930`,
}

var (
	badgeBatchCmd = &cobra.Command{
		Use:   "batch",
		Short: "시장 전체 배지 계산",
		RunE:  runBadgeBatch,
	}

	badgeShowCmd = &cobra.Command{
		Use:   "show",
		Short: "단일 종목 배지 계산",
		RunE:  runBadgeShow,
	}

	badgeGetCmd = &cobra.Command{
		Use:   "get",
		Short: "저장된 배지 조회",
		RunE:  runBadgeGet,
	}
)

var (
	badgeMarket string
	badgeStock  int64
)

func init() {
	rootCmd.AddCommand(badgeCmd)
	badgeCmd.AddCommand(badgeBatchCmd)
	badgeCmd.AddCommand(badgeShowCmd)
	badgeCmd.AddCommand(badgeGetCmd)

	// Flags
	badgeBatchCmd.Flags().StringVar(&badgeMarket, "market", "", "KR_KOSPI|KR_KOSDAQ|US_NYSE|US_NASDAQ")
	_ = badgeBatchCmd.MarkFlagRequired("market")

	badgeShowCmd.Flags().StringVar(&badgeMarket, "market", "", "KR_KOSPI|KR_KOSDAQ|US_NYSE|US_NASDAQ")
	badgeShowCmd.Flags().Int64Var(&badgeStock, "stock", 0, "종목 ID")
	_ = badgeShowCmd.MarkFlagRequired("market")
	_ = badgeShowCmd.MarkFlagRequired("stock")

	badgeGetCmd.Flags().Int64Var(&badgeStock, "stock", 0, "종목 ID")
	_ = badgeGetCmd.MarkFlagRequired("stock")
}

func runBadgeBatch(cmd *cobra.Command, args []string) error {
	market, err := contracts.ParseMarket(badgeMarket)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	result, err := a.badges.ComputeBatch(ctx, market)
	if err != nil {
		return fmt.Errorf("badge batch: %w", err)
	}

	fmt.Printf("✅ Badge batch %s (%s)\n", market, result.Duration)
	printBatchResult(result)
	return nil
}

func runBadgeShow(cmd *cobra.Command, args []string) error {
	market, err := contracts.ParseMarket(badgeMarket)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.badges.ComputeSingle(cmd.Context(), badgeStock, market)
	if err != nil {
		return fmt.Errorf("compute badge: %w", err)
	}
	return printBadge(rec)
}

func runBadgeGet(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.badges.GetBadge(cmd.Context(), badgeStock)
	if err != nil {
		return fmt.Errorf("get badge: %w", err)
	}

	return printBadge(rec)
}

func printBadge(rec *contracts.BadgeRecord) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
