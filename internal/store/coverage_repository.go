package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/riskbadge/internal/contracts"
)

// CoverageRepository measures input coverage of a market
type CoverageRepository struct {
	pool *pgxpool.Pool
}

// NewCoverageRepository creates a new coverage repository
func NewCoverageRepository(pool *pgxpool.Pool) *CoverageRepository {
	return &CoverageRepository{pool: pool}
}

// GetCoverage counts active stocks and those with prices, fundamentals and factor exposures
func (r *CoverageRepository) GetCoverage(ctx context.Context, market contracts.Market, minRows int) (*contracts.DataCoverage, error) {
	query := `
		WITH active AS (
			SELECT id FROM stocks WHERE market = $1 AND is_active = true
		)
		SELECT
			(SELECT COUNT(*) FROM active)::int,
			(SELECT COUNT(*) FROM (
				SELECT p.stock_id
				FROM daily_prices p
				JOIN active a ON a.id = p.stock_id
				GROUP BY p.stock_id
				HAVING COUNT(*) >= $2
			) enough)::int,
			(SELECT COUNT(DISTINCT f.stock_id)
				FROM stock_fundamentals f
				JOIN active a ON a.id = f.stock_id)::int,
			(SELECT COUNT(DISTINCT fe.stock_id)
				FROM factor_exposures fe
				JOIN active a ON a.id = fe.stock_id
				WHERE fe.volatility_z IS NOT NULL)::int
	`

	c := &contracts.DataCoverage{Market: market}
	err := r.pool.QueryRow(ctx, query, string(market), minRows).Scan(
		&c.TotalStocks, &c.PriceStocks, &c.FundamentalStocks, &c.FactorStocks,
	)
	if err != nil {
		return nil, fmt.Errorf("query coverage %s: %w", market, err)
	}

	return c, nil
}
