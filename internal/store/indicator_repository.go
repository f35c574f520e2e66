package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/riskbadge/internal/contracts"
	"github.com/wonny/riskbadge/pkg/database"
)

// indicatorColumns is the stock_indicators column order used for COPY
var indicatorColumns = []string{
	"stock_id", "date",
	"close",
	"sma_20", "ema_20", "wma_20",
	"rsi_14",
	"macd", "macd_signal", "macd_hist",
	"stoch_k", "stoch_d",
	"bb_upper", "bb_middle", "bb_lower",
	"atr_14", "adx_14", "plus_di", "minus_di",
	"obv", "vma_20",
	"sar",
	"beta", "alpha", "sharpe",
}

const indicatorSelect = `
	SELECT i.stock_id, i.date, COALESCE(s.sector, '') AS sector, i.close,
		i.sma_20, i.ema_20, i.wma_20,
		i.rsi_14,
		i.macd, i.macd_signal, i.macd_hist,
		i.stoch_k, i.stoch_d,
		i.bb_upper, i.bb_middle, i.bb_lower,
		i.atr_14, i.adx_14, i.plus_di, i.minus_di,
		i.obv, i.vma_20,
		i.sar,
		i.beta, i.alpha, i.sharpe
	FROM stock_indicators i
	JOIN stocks s ON s.id = i.stock_id
`

// IndicatorRepository implements contracts.IndicatorRepository
// ⭐ SSOT: 지표 스냅샷 저장소는 여기서만
type IndicatorRepository struct {
	db *database.DB
}

// NewIndicatorRepository creates a new indicator repository
func NewIndicatorRepository(db *database.DB) *IndicatorRepository {
	return &IndicatorRepository{db: db}
}

func scanIndicator(row pgx.Row) (*contracts.IndicatorRow, error) {
	var r contracts.IndicatorRow
	err := row.Scan(
		&r.StockID, &r.Date, &r.Sector, &r.Close,
		&r.SMA20, &r.EMA20, &r.WMA20,
		&r.RSI14,
		&r.MACD, &r.MACDSignal, &r.MACDHist,
		&r.StochK, &r.StochD,
		&r.BBUpper, &r.BBMiddle, &r.BBLower,
		&r.ATR14, &r.ADX14, &r.PlusDI, &r.MinusDI,
		&r.OBV, &r.VMA20,
		&r.SAR,
		&r.Beta, &r.Alpha, &r.Sharpe,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func indicatorValues(r *contracts.IndicatorRow) []any {
	return []any{
		r.StockID, r.Date,
		r.Close,
		r.SMA20, r.EMA20, r.WMA20,
		r.RSI14,
		r.MACD, r.MACDSignal, r.MACDHist,
		r.StochK, r.StochD,
		r.BBUpper, r.BBMiddle, r.BBLower,
		r.ATR14, r.ADX14, r.PlusDI, r.MinusDI,
		r.OBV, r.VMA20,
		r.SAR,
		r.Beta, r.Alpha, r.Sharpe,
	}
}

// GetLatestByStock returns the stock's indicator row, ErrNotFound when absent
func (r *IndicatorRepository) GetLatestByStock(ctx context.Context, stockID int64) (*contracts.IndicatorRow, error) {
	query := indicatorSelect + `
		WHERE i.stock_id = $1
		ORDER BY i.date DESC
		LIMIT 1
	`

	row, err := scanIndicator(r.db.Pool.QueryRow(ctx, query, stockID))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return row, nil
}

// GetAllByMarket returns the latest indicator row of every stock in the market
func (r *IndicatorRepository) GetAllByMarket(ctx context.Context, market contracts.Market) (map[int64]*contracts.IndicatorRow, error) {
	query := `
		SELECT DISTINCT ON (stock_id) * FROM (` + indicatorSelect + `
			WHERE s.market = $1
		) latest
		ORDER BY stock_id, date DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, string(market))
	if err != nil {
		return nil, fmt.Errorf("query indicators for %s: %w", market, err)
	}
	defer rows.Close()

	result := make(map[int64]*contracts.IndicatorRow)
	for rows.Next() {
		row, err := scanIndicator(rows)
		if err != nil {
			return nil, err
		}
		result[row.StockID] = row
	}
	return result, rows.Err()
}

// ReplaceForMarkets deletes every indicator row of the markets' stocks and inserts rows,
// in a single transaction.
func (r *IndicatorRepository) ReplaceForMarkets(ctx context.Context, markets []contracts.Market, rows []*contracts.IndicatorRow) (int64, int64, error) {
	var deleted, inserted int64

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM stock_indicators
			WHERE stock_id IN (SELECT id FROM stocks WHERE market = ANY($1))
		`, marketStrings(markets))
		if err != nil {
			return fmt.Errorf("delete indicators: %w", err)
		}
		deleted = tag.RowsAffected()

		if len(rows) == 0 {
			return nil
		}

		inserted, err = tx.CopyFrom(ctx,
			pgx.Identifier{"stock_indicators"},
			indicatorColumns,
			pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
				return indicatorValues(rows[i]), nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copy indicators: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return deleted, inserted, nil
}
