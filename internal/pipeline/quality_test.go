package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskbadge/internal/contracts"
	"github.com/wonny/riskbadge/internal/pipelineconfig"
	"github.com/wonny/riskbadge/pkg/logger"
)

func TestQualityGate_Check(t *testing.T) {
	cfg := pipelineconfig.Default()

	tests := []struct {
		name         string
		coverage     map[contracts.Market]*contracts.DataCoverage
		wantErr      bool
		wantWarnings int
	}{
		{
			name: "healthy",
			coverage: map[contracts.Market]*contracts.DataCoverage{
				contracts.MarketKOSPI:  {TotalStocks: 100, PriceStocks: 95, FundamentalStocks: 90, FactorStocks: 80},
				contracts.MarketKOSDAQ: {TotalStocks: 50, PriceStocks: 40, FundamentalStocks: 30, FactorStocks: 30},
			},
		},
		{
			name: "thin fundamentals only warn",
			coverage: map[contracts.Market]*contracts.DataCoverage{
				contracts.MarketKOSPI:  {TotalStocks: 100, PriceStocks: 95, FundamentalStocks: 10, FactorStocks: 10},
				contracts.MarketKOSDAQ: {TotalStocks: 50, PriceStocks: 40, FundamentalStocks: 30, FactorStocks: 30},
			},
			wantWarnings: 2,
		},
		{
			name: "empty market is skipped",
			coverage: map[contracts.Market]*contracts.DataCoverage{
				contracts.MarketKOSPI: {TotalStocks: 100, PriceStocks: 95, FundamentalStocks: 90, FactorStocks: 80},
			},
			wantWarnings: 1,
		},
		{
			name: "missing prices fail",
			coverage: map[contracts.Market]*contracts.DataCoverage{
				contracts.MarketKOSPI:  {TotalStocks: 100, PriceStocks: 20, FundamentalStocks: 90, FactorStocks: 80},
				contracts.MarketKOSDAQ: {TotalStocks: 50, PriceStocks: 40, FundamentalStocks: 30, FactorStocks: 30},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewQualityGate(&fakeCoverage{byMarket: tt.coverage}, cfg, logger.Nop())

			report, err := gate.Check(context.Background(), contracts.RegionKR.Markets())
			require.NotNil(t, report)
			assert.Len(t, report.Coverage, 2)
			assert.Len(t, report.Warnings, tt.wantWarnings)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrCoverageTooLow)
				assert.False(t, report.Passed)
				return
			}
			assert.NoError(t, err)
			assert.True(t, report.Passed)
		})
	}
}

func TestQualityGate_RepositoryError(t *testing.T) {
	gate := NewQualityGate(&fakeCoverage{err: errors.New("db down")}, pipelineconfig.Default(), logger.Nop())

	report, err := gate.Check(context.Background(), contracts.RegionUS.Markets())
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestDataCoverage_Ratios(t *testing.T) {
	c := &contracts.DataCoverage{TotalStocks: 4, PriceStocks: 3, FundamentalStocks: 2, FactorStocks: 1}
	assert.Equal(t, 0.75, c.PriceCoverage())
	assert.Equal(t, 0.5, c.FundamentalCoverage())
	assert.Equal(t, 0.25, c.FactorCoverage())

	assert.Zero(t, (&contracts.DataCoverage{}).PriceCoverage())
}

func TestOrchestrator_QualityGateBlocksRun(t *testing.T) {
	cfg := pipelineconfig.Default()
	inds := newFakeIndicators()
	inds.put(contracts.MarketKOSPI, &contracts.IndicatorRow{StockID: 9})

	engine := NewComputeEngine(&fakePrices{}, &fakeBenchmarks{}, &fakeRates{}, inds, cfg, logger.Nop(), nil)
	svc := NewBadgeService(BadgeDeps{
		Indicators:   inds,
		Fundamentals: &fakeFundamentals{},
		Factors:      &fakeFactors{},
		Badges:       newFakeBadges(),
	}, cfg, time.Hour, logger.Nop(), nil)

	gate := NewQualityGate(&fakeCoverage{byMarket: map[contracts.Market]*contracts.DataCoverage{
		contracts.MarketKOSPI: {TotalStocks: 10, PriceStocks: 1},
	}}, cfg, logger.Nop())
	orch := NewOrchestrator(engine, svc, cfg, logger.Nop()).WithQualityGate(gate)

	result, err := orch.RunRegion(context.Background(), contracts.RegionKR)
	assert.ErrorIs(t, err, ErrCoverageTooLow)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Empty(t, result.CompletedStages)
	assert.NotNil(t, result.Quality)

	// 기존 스냅샷 유지
	_, err = inds.GetLatestByStock(context.Background(), 9)
	assert.NoError(t, err)
}

func TestOrchestrator_QualityGatePasses(t *testing.T) {
	cfg := pipelineconfig.Default()
	inds := newFakeIndicators()

	engine := NewComputeEngine(&fakePrices{}, &fakeBenchmarks{}, &fakeRates{}, inds, cfg, logger.Nop(), nil)
	svc := NewBadgeService(BadgeDeps{
		Indicators:   inds,
		Fundamentals: &fakeFundamentals{},
		Factors:      &fakeFactors{},
		Badges:       newFakeBadges(),
	}, cfg, time.Hour, logger.Nop(), nil)

	gate := NewQualityGate(&fakeCoverage{}, cfg, logger.Nop())
	orch := NewOrchestrator(engine, svc, cfg, logger.Nop()).WithQualityGate(gate)

	result, err := orch.RunRegion(context.Background(), contracts.RegionUS)
	require.NoError(t, err)
	assert.Equal(t, []string{"quality", "compute", "badges:US_NYSE", "badges:US_NASDAQ"}, result.CompletedStages)
	assert.Len(t, result.Quality.Warnings, 2)
}
