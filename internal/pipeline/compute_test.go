package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskbadge/internal/contracts"
	"github.com/wonny/riskbadge/internal/pipelineconfig"
	"github.com/wonny/riskbadge/pkg/logger"
	"github.com/wonny/riskbadge/pkg/metrics"
)

func assertRounded(t *testing.T, name string, v *float64) {
	t.Helper()
	require.NotNil(t, v, name)
	assert.InDelta(t, math.Round(*v*1e4)/1e4, *v, 1e-9, name)
}

func TestComputeStock_TooFewRows(t *testing.T) {
	row, err := ComputeStock(1, bars(1, 59), nil, 3.0, 60)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestComputeStock_FullHistory(t *testing.T) {
	bench := BenchmarkReturns(benchPrices(contracts.BenchmarkKOSPI, 120))

	row, err := ComputeStock(7, bars(7, 120), &bench, 3.0, 60)
	require.NoError(t, err)
	require.NotNil(t, row)

	assert.Equal(t, int64(7), row.StockID)
	assert.Equal(t, day0.AddDate(0, 0, 119), row.Date)
	assert.NoError(t, row.Validate())

	for name, v := range map[string]*float64{
		"close": row.Close, "sma_20": row.SMA20, "ema_20": row.EMA20, "wma_20": row.WMA20,
		"rsi_14": row.RSI14, "macd": row.MACD, "macd_signal": row.MACDSignal, "macd_hist": row.MACDHist,
		"stoch_k": row.StochK, "stoch_d": row.StochD,
		"bb_upper": row.BBUpper, "bb_middle": row.BBMiddle, "bb_lower": row.BBLower,
		"atr_14": row.ATR14, "adx_14": row.ADX14, "plus_di": row.PlusDI, "minus_di": row.MinusDI,
		"sar": row.SAR, "beta": row.Beta, "alpha": row.Alpha, "sharpe": row.Sharpe,
	} {
		assertRounded(t, name, v)
	}
	require.NotNil(t, row.OBV)
	require.NotNil(t, row.VMA20)

	// 동일한 수익률이면 beta 1, alpha 0
	assert.InDelta(t, 1.0, *row.Beta, 1e-9)
	assert.InDelta(t, 0.0, *row.Alpha, 1e-9)

	// true range is never below high - low = 2
	assert.GreaterOrEqual(t, *row.ATR14, 2.0)
	assert.GreaterOrEqual(t, *row.RSI14, 0.0)
	assert.LessOrEqual(t, *row.RSI14, 100.0)
	assert.Greater(t, *row.BBUpper, *row.BBLower)
}

func TestComputeStock_WithoutBenchmark(t *testing.T) {
	row, err := ComputeStock(7, bars(7, 120), nil, 3.0, 60)
	require.NoError(t, err)

	assert.Nil(t, row.Beta)
	assert.Nil(t, row.Alpha)
	assert.NotNil(t, row.Sharpe)
}

func TestComputeStock_ReturnGate(t *testing.T) {
	// 60 bars → 59 defined returns, one short of the gate
	bench := BenchmarkReturns(benchPrices(contracts.BenchmarkKOSPI, 60))
	row, err := ComputeStock(7, bars(7, 60), &bench, 3.0, 60)
	require.NoError(t, err)
	require.NotNil(t, row)

	assert.NotNil(t, row.RSI14)
	assert.Nil(t, row.Beta)
	assert.Nil(t, row.Alpha)
	assert.Nil(t, row.Sharpe)
}

func TestComputeStock_UnorderedDates(t *testing.T) {
	bs := bars(7, 80)
	bs[10], bs[11] = bs[11], bs[10]

	_, err := ComputeStock(7, bs, nil, 3.0, 60)
	assert.ErrorIs(t, err, contracts.ErrInvalidRow)
}

func TestBenchmarkReturns_SortsByDate(t *testing.T) {
	prices := benchPrices(contracts.BenchmarkSP500, 5)
	reversed := make([]contracts.BenchmarkPrice, len(prices))
	for i, p := range prices {
		reversed[len(prices)-1-i] = p
	}

	got := BenchmarkReturns(reversed)
	require.Len(t, got.Dates, 5)
	assert.True(t, got.Dates[0].Before(got.Dates[4]))
	assert.True(t, math.IsNaN(got.Values[0]))

	want := prices[1].Close.InexactFloat64()/prices[0].Close.InexactFloat64() - 1
	assert.InDelta(t, want, got.Values[1], 1e-12)
}

func newTestEngine(prices *fakePrices, benches *fakeBenchmarks, rates *fakeRates, inds *fakeIndicators) *ComputeEngine {
	cfg := pipelineconfig.Default()
	cfg.Compute.Workers = 4
	return NewComputeEngine(prices, benches, rates, inds, cfg, logger.Nop(), metrics.New())
}

func TestComputeEngine_Run(t *testing.T) {
	prices := &fakePrices{byMarket: map[contracts.Market]map[int64][]contracts.Price{
		contracts.MarketKOSPI: {
			1: bars(1, 300),
			2: bars(2, 30), // too short
			3: bars(3, 90),
		},
	}}
	benches := &fakeBenchmarks{prices: map[contracts.Benchmark][]contracts.BenchmarkPrice{
		contracts.BenchmarkKOSPI: benchPrices(contracts.BenchmarkKOSPI, 300),
	}}
	inds := newFakeIndicators()
	inds.put(contracts.MarketKOSDAQ, &contracts.IndicatorRow{StockID: 99, Date: day0})

	engine := newTestEngine(prices, benches, &fakeRates{}, inds)
	result, err := engine.Run(context.Background(), contracts.RegionKR.Markets())
	require.NoError(t, err)

	assert.Equal(t, []contracts.Market{contracts.MarketKOSPI, contracts.MarketKOSDAQ}, inds.replaced)
	assert.Equal(t, int64(1), result.Deleted)
	assert.Equal(t, int64(2), result.Inserted)
	assert.Equal(t, 3, result.Stocks[contracts.MarketKOSPI])
	assert.Equal(t, 2, result.Computed[contracts.MarketKOSPI])
	assert.Equal(t, 1, result.Skipped[contracts.MarketKOSPI])
	assert.Zero(t, result.Computed[contracts.MarketKOSDAQ])

	assert.NotNil(t, inds.rows[1].Beta)
	assert.NotNil(t, inds.rows[3].Beta)
	assert.NotContains(t, inds.rows, int64(2))
	assert.NotContains(t, inds.rows, int64(99))
}

func TestComputeEngine_RiskFreeDefault(t *testing.T) {
	prices := &fakePrices{byMarket: map[contracts.Market]map[int64][]contracts.Price{
		contracts.MarketNYSE: {1: bars(1, 120)},
	}}
	benches := &fakeBenchmarks{prices: map[contracts.Benchmark][]contracts.BenchmarkPrice{
		contracts.BenchmarkSP500: benchPrices(contracts.BenchmarkSP500, 120),
	}}

	run := func(rates *fakeRates) *contracts.IndicatorRow {
		inds := newFakeIndicators()
		_, err := newTestEngine(prices, benches, rates, inds).Run(context.Background(), []contracts.Market{contracts.MarketNYSE})
		require.NoError(t, err)
		return inds.rows[1]
	}

	// 미수집 시 US 기본값 4.0 사용
	fallback := run(&fakeRates{})
	explicit := run(&fakeRates{rates: map[contracts.Country]float64{contracts.CountryUS: 4.0}})
	other := run(&fakeRates{rates: map[contracts.Country]float64{contracts.CountryUS: 1.0}})

	assert.Equal(t, *explicit.Sharpe, *fallback.Sharpe)
	assert.NotEqual(t, *other.Sharpe, *fallback.Sharpe)
}

func TestComputeEngine_Cancelled(t *testing.T) {
	prices := &fakePrices{byMarket: map[contracts.Market]map[int64][]contracts.Price{
		contracts.MarketKOSPI: {1: bars(1, 120)},
	}}
	inds := newFakeIndicators()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine(prices, &fakeBenchmarks{}, &fakeRates{}, inds).Run(ctx, []contracts.Market{contracts.MarketKOSPI})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, inds.replaced)
}
