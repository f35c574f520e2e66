package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/riskbadge/internal/contracts"
	"github.com/wonny/riskbadge/internal/pipelineconfig"
	"github.com/wonny/riskbadge/pkg/logger"
)

// ErrCoverageTooLow is returned when a market lacks price history for most of its stocks
var ErrCoverageTooLow = errors.New("price coverage below threshold")

// QualityGate validates input coverage before indicators are recomputed
// ⭐ SSOT: 실행 전 입력 데이터 검증은 여기서만
type QualityGate struct {
	repo   contracts.CoverageRepository
	cfg    *pipelineconfig.Config
	logger *logger.Logger
}

// NewQualityGate creates a new quality gate
func NewQualityGate(repo contracts.CoverageRepository, cfg *pipelineconfig.Config, log *logger.Logger) *QualityGate {
	return &QualityGate{
		repo:   repo,
		cfg:    cfg,
		logger: log,
	}
}

// QualityReport holds the coverage of every checked market
type QualityReport struct {
	Coverage []*contracts.DataCoverage
	Warnings []string
	Passed   bool
}

// Check measures coverage per market.
// 가격 커버리지 미달은 실패, 재무/팩터 미달은 경고 (해당 차원만 데이터 없음 처리됨)
func (g *QualityGate) Check(ctx context.Context, markets []contracts.Market) (*QualityReport, error) {
	q := g.cfg.Quality
	report := &QualityReport{Passed: true}

	var failed []string
	for _, market := range markets {
		c, err := g.repo.GetCoverage(ctx, market, g.cfg.Compute.MinRows)
		if err != nil {
			return nil, fmt.Errorf("coverage %s: %w", market, err)
		}
		report.Coverage = append(report.Coverage, c)

		log := g.logger.WithFields(map[string]interface{}{
			"market":       market,
			"total":        c.TotalStocks,
			"price":        c.PriceCoverage(),
			"fundamentals": c.FundamentalCoverage(),
			"factors":      c.FactorCoverage(),
		})

		// 상장 종목이 없는 시장은 계산할 것도 없음
		if c.TotalStocks == 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: no active stocks", market))
			log.Warn("No active stocks")
			continue
		}

		if c.PriceCoverage() < q.MinPriceCoverage {
			failed = append(failed, fmt.Sprintf("%s %.2f < %.2f", market, c.PriceCoverage(), q.MinPriceCoverage))
			log.Error("Price coverage below threshold")
			continue
		}
		if c.FundamentalCoverage() < q.MinFundamentalCoverage {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: fundamental coverage %.2f", market, c.FundamentalCoverage()))
		}
		if c.FactorCoverage() < q.MinFactorCoverage {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: factor coverage %.2f", market, c.FactorCoverage()))
		}
		log.Info("Coverage checked")
	}

	if len(failed) > 0 {
		report.Passed = false
		return report, fmt.Errorf("%w: %v", ErrCoverageTooLow, failed)
	}
	return report, nil
}
