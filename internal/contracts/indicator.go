package contracts

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRow marks a structurally malformed input row.
// 개별 종목 계산만 중단하고 배치는 계속 진행
var ErrInvalidRow = errors.New("invalid row")

// IndicatorRow is the latest indicator snapshot for one stock
// ⭐ SSOT: 지표 스냅샷 구조는 여기서만 정의
// Any field may be nil when its lookback was insufficient.
type IndicatorRow struct {
	StockID int64     `json:"stock_id"`
	Date    time.Time `json:"date"`
	Sector  string    `json:"sector,omitempty"`
	Close   *float64  `json:"close"`

	// Moving averages
	SMA20 *float64 `json:"sma_20"`
	EMA20 *float64 `json:"ema_20"`
	WMA20 *float64 `json:"wma_20"`

	// Momentum
	RSI14      *float64 `json:"rsi_14"`
	MACD       *float64 `json:"macd"`
	MACDSignal *float64 `json:"macd_signal"`
	MACDHist   *float64 `json:"macd_hist"`
	StochK     *float64 `json:"stoch_k"`
	StochD     *float64 `json:"stoch_d"`

	// Volatility
	BBUpper  *float64 `json:"bb_upper"`
	BBMiddle *float64 `json:"bb_middle"`
	BBLower  *float64 `json:"bb_lower"`
	ATR14    *float64 `json:"atr_14"`

	// Trend
	ADX14   *float64 `json:"adx_14"`
	PlusDI  *float64 `json:"plus_di"`
	MinusDI *float64 `json:"minus_di"`
	SAR     *float64 `json:"sar"`

	// Volume
	OBV   *int64 `json:"obv"`
	VMA20 *int64 `json:"vma_20"`

	// Return-based
	Beta   *float64 `json:"beta"`
	Alpha  *float64 `json:"alpha"`
	Sharpe *float64 `json:"sharpe"`
}

// Validate checks the structural fields every consumer relies on
func (r *IndicatorRow) Validate() error {
	if r.StockID <= 0 {
		return fmt.Errorf("%w: indicator row stock_id=%d", ErrInvalidRow, r.StockID)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("%w: indicator row for stock %d has no date", ErrInvalidRow, r.StockID)
	}
	return nil
}
