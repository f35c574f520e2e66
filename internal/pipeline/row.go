package pipeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/wonny/riskbadge/internal/contracts"
	"github.com/wonny/riskbadge/internal/indicators"
)

// ComputeStock builds the latest indicator row from a stock's bars (date ascending).
// Returns nil without error when fewer than minRows bars are available.
//
// Beta and alpha need the benchmark and at least minRows defined stock returns;
// sharpe needs the returns only. Alpha reuses the rounded beta.
func ComputeStock(
	stockID int64,
	bars []contracts.Price,
	bench *indicators.DatedSeries,
	rfPct float64,
	minRows int,
) (*contracts.IndicatorRow, error) {
	if len(bars) < minRows {
		return nil, nil
	}

	s := contracts.NewPriceSeries(bars)
	if !s.IsStrictlyIncreasing() {
		return nil, fmt.Errorf("%w: stock_id=%d dates are not strictly increasing", contracts.ErrInvalidRow, stockID)
	}

	last := func(series []float64) *float64 {
		return indicators.LastRounded(series, valueDecimals)
	}

	macd := indicators.MACD(s.Close, indicators.MACDFast, indicators.MACDSlow, indicators.MACDSignalSpan)
	stoch := indicators.Stochastic(s.High, s.Low, s.Close, indicators.StochKPeriod, indicators.StochDPeriod)
	bb := indicators.BollingerBands(s.Close, indicators.BollingerPeriod, indicators.BollingerK)
	adx := indicators.ADX(s.High, s.Low, s.Close, indicators.ADXPeriod)

	row := &contracts.IndicatorRow{
		StockID: stockID,
		Date:    s.Dates[len(s.Dates)-1],
		Close:   last(s.Close),

		SMA20: last(indicators.SMA(s.Close, 20)),
		EMA20: last(indicators.EMA(s.Close, 20)),
		WMA20: last(indicators.WMA(s.Close, 20)),

		RSI14:      last(indicators.RSI(s.Close, indicators.RSIPeriod)),
		MACD:       last(macd.MACD),
		MACDSignal: last(macd.Signal),
		MACDHist:   last(macd.Histogram),
		StochK:     last(stoch.K),
		StochD:     last(stoch.D),

		BBUpper:  last(bb.Upper),
		BBMiddle: last(bb.Middle),
		BBLower:  last(bb.Lower),
		ATR14:    last(indicators.ATR(s.High, s.Low, s.Close, indicators.ATRPeriod)),

		ADX14:   last(adx.ADX),
		PlusDI:  last(adx.PlusDI),
		MinusDI: last(adx.MinusDI),
		SAR:     last(indicators.ParabolicSAR(s.High, s.Low, indicators.SARStart, indicators.SARStep, indicators.SARMaximum)),

		OBV:   indicators.LastInt(indicators.OBV(s.Close, s.Volume)),
		VMA20: indicators.LastInt(indicators.VMA(s.Volume, indicators.VMAPeriod)),
	}

	returns := indicators.DatedSeries{Dates: s.Dates, Values: indicators.DailyReturns(s.Close)}
	clean := indicators.CountDefined(returns.Values)

	if bench != nil && clean >= minRows {
		beta := indicators.Round(indicators.Beta(returns, *bench), valueDecimals)
		alpha := indicators.Round(indicators.Alpha(returns, *bench, rfPct, &beta, true), valueDecimals)
		row.Beta = &beta
		row.Alpha = &alpha
	}
	if clean >= minRows {
		sharpe := indicators.Round(indicators.SharpeRatio(returns.Values, rfPct, true), valueDecimals)
		row.Sharpe = &sharpe
	}

	return row, nil
}

// BenchmarkReturns converts benchmark closes (any order) to daily returns in date order
func BenchmarkReturns(prices []contracts.BenchmarkPrice) indicators.DatedSeries {
	sorted := make([]contracts.BenchmarkPrice, len(prices))
	copy(sorted, prices)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	dates := make([]time.Time, len(sorted))
	closes := make([]float64, len(sorted))
	for i, p := range sorted {
		dates[i] = p.Date
		closes[i] = p.Close.InexactFloat64()
	}

	return indicators.DatedSeries{Dates: dates, Values: indicators.DailyReturns(closes)}
}

func sortedIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
