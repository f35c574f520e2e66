package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/riskbadge/internal/contracts"
)

// 종목별 최신 재무 스냅샷에서 중앙값 집계 (percentile_cont: 짝수 개면 가운데 두 값의 평균)
const peerAggregateSelect = `
	WITH latest AS (
		SELECT DISTINCT ON (f.stock_id)
			f.stock_id, s.sector, f.per, f.pbr, f.roe, f.operating_margin, f.debt_ratio
		FROM stock_fundamentals f
		JOIN stocks s ON s.id = f.stock_id
		WHERE s.market = $1 AND s.is_active = true
		ORDER BY f.stock_id, f.date DESC
	)
	SELECT %s
		COUNT(*)::int,
		percentile_cont(0.5) WITHIN GROUP (ORDER BY per),
		percentile_cont(0.5) WITHIN GROUP (ORDER BY pbr),
		percentile_cont(0.5) WITHIN GROUP (ORDER BY roe),
		percentile_cont(0.5) WITHIN GROUP (ORDER BY operating_margin),
		percentile_cont(0.5) WITHIN GROUP (ORDER BY debt_ratio)
	FROM latest
	%s
`

// FactorRepository implements contracts.FactorRepository
// ⭐ SSOT: 팩터 노출도/피어 집계 조회는 여기서만
type FactorRepository struct {
	pool *pgxpool.Pool
}

// NewFactorRepository creates a new factor repository
func NewFactorRepository(pool *pgxpool.Pool) *FactorRepository {
	return &FactorRepository{pool: pool}
}

// GetVolatilityZByStock returns the latest volatility z-score, nil when absent
func (r *FactorRepository) GetVolatilityZByStock(ctx context.Context, stockID int64, market contracts.Market) (*float64, error) {
	query := `
		SELECT fe.volatility_z::float8
		FROM factor_exposures fe
		JOIN stocks s ON s.id = fe.stock_id
		WHERE fe.stock_id = $1 AND s.market = $2
		ORDER BY fe.date DESC
		LIMIT 1
	`

	var z *float64
	err := r.pool.QueryRow(ctx, query, stockID, string(market)).Scan(&z)
	if err != nil {
		if mapNoRows(err) == ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("query volatility z for %d: %w", stockID, err)
	}
	return z, nil
}

// GetAllVolatilityZByMarket returns the latest non-null volatility z-score per stock
func (r *FactorRepository) GetAllVolatilityZByMarket(ctx context.Context, market contracts.Market) (map[int64]float64, error) {
	query := `
		SELECT DISTINCT ON (fe.stock_id) fe.stock_id, fe.volatility_z::float8
		FROM factor_exposures fe
		JOIN stocks s ON s.id = fe.stock_id
		WHERE s.market = $1 AND fe.volatility_z IS NOT NULL
		ORDER BY fe.stock_id, fe.date DESC
	`

	rows, err := r.pool.Query(ctx, query, string(market))
	if err != nil {
		return nil, fmt.Errorf("query volatility z for %s: %w", market, err)
	}
	defer rows.Close()

	result := make(map[int64]float64)
	for rows.Next() {
		var id int64
		var z float64
		if err := rows.Scan(&id, &z); err != nil {
			return nil, err
		}
		result[id] = z
	}
	return result, rows.Err()
}

func scanAggregate(row pgx.Row, prefix ...any) (*contracts.PeerAggregate, error) {
	var agg contracts.PeerAggregate
	dest := append(prefix,
		&agg.StockCount,
		&agg.MedianPER, &agg.MedianPBR, &agg.MedianROE,
		&agg.MedianOperatingMargin, &agg.MedianDebtRatio,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &agg, nil
}

// GetSectorAggregate returns the medians of one sector, nil when the sector has no stocks
func (r *FactorRepository) GetSectorAggregate(ctx context.Context, market contracts.Market, sector string) (*contracts.PeerAggregate, error) {
	query := fmt.Sprintf(peerAggregateSelect, "", "WHERE sector = $2")

	agg, err := scanAggregate(r.pool.QueryRow(ctx, query, string(market), sector))
	if err != nil {
		return nil, fmt.Errorf("query sector aggregate %s/%s: %w", market, sector, err)
	}
	if agg.StockCount == 0 {
		return nil, nil
	}
	return agg, nil
}

// GetAllSectorAggregates returns the medians of every sector in the market
func (r *FactorRepository) GetAllSectorAggregates(ctx context.Context, market contracts.Market) (map[string]*contracts.PeerAggregate, error) {
	query := fmt.Sprintf(peerAggregateSelect, "sector,", "WHERE sector IS NOT NULL GROUP BY sector")

	rows, err := r.pool.Query(ctx, query, string(market))
	if err != nil {
		return nil, fmt.Errorf("query sector aggregates for %s: %w", market, err)
	}
	defer rows.Close()

	result := make(map[string]*contracts.PeerAggregate)
	for rows.Next() {
		var sector string
		agg, err := scanAggregate(rows, &sector)
		if err != nil {
			return nil, err
		}
		result[sector] = agg
	}
	return result, rows.Err()
}

// GetMarketAggregate returns market-wide medians, nil when the market has no fundamentals
func (r *FactorRepository) GetMarketAggregate(ctx context.Context, market contracts.Market) (*contracts.PeerAggregate, error) {
	query := fmt.Sprintf(peerAggregateSelect, "", "")

	agg, err := scanAggregate(r.pool.QueryRow(ctx, query, string(market)))
	if err != nil {
		return nil, fmt.Errorf("query market aggregate %s: %w", market, err)
	}
	if agg.StockCount == 0 {
		return nil, nil
	}
	return agg, nil
}
