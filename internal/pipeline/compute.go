package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/riskbadge/internal/contracts"
	"github.com/wonny/riskbadge/internal/indicators"
	"github.com/wonny/riskbadge/internal/pipelineconfig"
	"github.com/wonny/riskbadge/pkg/logger"
	"github.com/wonny/riskbadge/pkg/metrics"
)

// 지표 값은 소수 4자리로 저장
const valueDecimals = 4

// ComputeEngine computes the latest indicator row of every stock in a set of markets
// and replaces the stored snapshot.
// ⭐ SSOT: 지표 계산 배치는 여기서만
type ComputeEngine struct {
	prices     contracts.PriceRepository
	benchmarks contracts.BenchmarkRepository
	rates      contracts.RiskFreeRateRepository
	indicators contracts.IndicatorRepository

	cfg     *pipelineconfig.Config
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewComputeEngine creates a new compute engine
func NewComputeEngine(
	prices contracts.PriceRepository,
	benchmarks contracts.BenchmarkRepository,
	rates contracts.RiskFreeRateRepository,
	indicatorRepo contracts.IndicatorRepository,
	cfg *pipelineconfig.Config,
	log *logger.Logger,
	m *metrics.Metrics,
) *ComputeEngine {
	return &ComputeEngine{
		prices:     prices,
		benchmarks: benchmarks,
		rates:      rates,
		indicators: indicatorRepo,
		cfg:        cfg,
		logger:     log,
		metrics:    m,
	}
}

// ComputeResult summarizes one compute run
type ComputeResult struct {
	Markets  []contracts.Market
	Stocks   map[contracts.Market]int // 가격 데이터가 있는 종목 수
	Computed map[contracts.Market]int
	Skipped  map[contracts.Market]int // 일봉 부족
	Failed   map[contracts.Market]int
	Deleted  int64
	Inserted int64
	Duration time.Duration
}

// Run computes indicators for the markets and replaces their stored rows in one transaction
func (e *ComputeEngine) Run(ctx context.Context, markets []contracts.Market) (*ComputeResult, error) {
	start := time.Now()
	timer := e.metrics.NewTimer("compute")
	defer timer.Stop()

	result := &ComputeResult{
		Markets:  markets,
		Stocks:   make(map[contracts.Market]int),
		Computed: make(map[contracts.Market]int),
		Skipped:  make(map[contracts.Market]int),
		Failed:   make(map[contracts.Market]int),
	}

	benchReturns, err := e.loadBenchmarkReturns(ctx, markets)
	if err != nil {
		return nil, err
	}
	rfRates, err := e.loadRiskFreeRates(ctx, markets)
	if err != nil {
		return nil, err
	}

	var all []*contracts.IndicatorRow
	for _, market := range markets {
		var bench *indicators.DatedSeries
		if s, ok := benchReturns[market.Benchmark()]; ok {
			bench = &s
		}

		rows, err := e.computeMarket(ctx, market, bench, rfRates[market.Country()], result)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}

	// 중단된 실행은 기존 스냅샷을 지우지 않음
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deleted, inserted, err := e.indicators.ReplaceForMarkets(ctx, markets, all)
	if err != nil {
		return nil, fmt.Errorf("replace indicators: %w", err)
	}
	result.Deleted = deleted
	result.Inserted = inserted
	result.Duration = time.Since(start)

	for market, n := range result.Computed {
		e.metrics.RecordIndicatorRows(string(market), n)
	}

	e.logger.WithFields(map[string]interface{}{
		"markets":  markets,
		"deleted":  deleted,
		"inserted": inserted,
		"duration": result.Duration.String(),
	}).Info("Indicator compute complete")

	return result, nil
}

func (e *ComputeEngine) computeMarket(
	ctx context.Context,
	market contracts.Market,
	bench *indicators.DatedSeries,
	rfPct float64,
	result *ComputeResult,
) ([]*contracts.IndicatorRow, error) {
	priceMap, err := e.prices.GetPricesByMarket(ctx, market, e.cfg.Compute.PriceHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load prices for %s: %w", market, err)
	}
	if len(priceMap) == 0 {
		e.logger.WithField("market", market).Warn("No price data")
		return nil, nil
	}

	ids := sortedIDs(priceMap)
	rows := make([]*contracts.IndicatorRow, len(ids))

	var (
		mu      sync.Mutex
		skipped int
		failed  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Compute.Workers)

	for i, id := range ids {
		if gctx.Err() != nil {
			break
		}
		i, id := i, id
		g.Go(func() error {
			row, err := ComputeStock(id, priceMap[id], bench, rfPct, e.cfg.Compute.MinRows)
			if err != nil {
				e.logger.WithError(err).WithFields(map[string]interface{}{
					"market":   market,
					"stock_id": id,
				}).Warn("Indicator compute failed")
				e.metrics.RecordFailure(string(market), "compute")

				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			if row == nil {
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			rows[i] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*contracts.IndicatorRow, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			out = append(out, r)
		}
	}

	result.Stocks[market] = len(ids)
	result.Computed[market] = len(out)
	result.Skipped[market] = skipped
	result.Failed[market] = failed

	e.logger.WithFields(map[string]interface{}{
		"market":   market,
		"stocks":   len(ids),
		"computed": len(out),
		"skipped":  skipped,
		"failed":   failed,
	}).Info("Market indicators computed")

	return out, nil
}

// loadBenchmarkReturns loads daily returns of every distinct benchmark of the markets.
// 벤치마크 데이터가 없으면 해당 시장은 beta/alpha 없이 계산
func (e *ComputeEngine) loadBenchmarkReturns(ctx context.Context, markets []contracts.Market) (map[contracts.Benchmark]indicators.DatedSeries, error) {
	result := make(map[contracts.Benchmark]indicators.DatedSeries)

	for _, market := range markets {
		bench := market.Benchmark()
		if _, done := result[bench]; done {
			continue
		}

		prices, err := e.benchmarks.GetPrices(ctx, bench, e.cfg.Compute.BenchmarkHistoryLimit)
		if err != nil {
			return nil, fmt.Errorf("load benchmark %s: %w", bench, err)
		}
		if len(prices) == 0 {
			e.logger.WithField("benchmark", bench).Warn("No benchmark data")
			continue
		}

		result[bench] = BenchmarkReturns(prices)
	}

	return result, nil
}

// loadRiskFreeRates loads the latest rate per country, falling back to the configured default
func (e *ComputeEngine) loadRiskFreeRates(ctx context.Context, markets []contracts.Market) (map[contracts.Country]float64, error) {
	result := make(map[contracts.Country]float64)

	for _, market := range markets {
		country := market.Country()
		if _, done := result[country]; done {
			continue
		}

		rate, err := e.rates.GetLatestRate(ctx, country, e.cfg.Maturity())
		if err != nil {
			return nil, fmt.Errorf("load risk-free rate %s: %w", country, err)
		}
		if rate != nil {
			result[country] = *rate
			continue
		}

		def := e.cfg.RiskFreeDefaults.For(country)
		e.logger.WithFields(map[string]interface{}{
			"country": country,
			"default": def,
		}).Warn("No risk-free rate, using default")
		result[country] = def
	}

	return result, nil
}
