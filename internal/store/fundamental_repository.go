package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/riskbadge/internal/contracts"
)

const fundamentalSelect = `
	SELECT DISTINCT ON (f.stock_id)
		f.stock_id, COALESCE(s.sector, ''),
		f.per::float8, f.pbr::float8, f.roe::float8, f.operating_margin::float8, f.debt_ratio::float8
	FROM stock_fundamentals f
	JOIN stocks s ON s.id = f.stock_id
`

// FundamentalRepository implements contracts.FundamentalRepository
type FundamentalRepository struct {
	pool *pgxpool.Pool
}

// NewFundamentalRepository creates a new fundamental repository
func NewFundamentalRepository(pool *pgxpool.Pool) *FundamentalRepository {
	return &FundamentalRepository{pool: pool}
}

func scanFundamental(row pgx.Row) (*contracts.Fundamental, error) {
	var f contracts.Fundamental
	if err := row.Scan(&f.StockID, &f.Sector, &f.PER, &f.PBR, &f.ROE, &f.OperatingMargin, &f.DebtRatio); err != nil {
		return nil, err
	}
	return &f, nil
}

// GetLatestByStock returns the latest fundamentals of a stock, ErrNotFound when absent
func (r *FundamentalRepository) GetLatestByStock(ctx context.Context, stockID int64) (*contracts.Fundamental, error) {
	query := fundamentalSelect + `
		WHERE f.stock_id = $1
		ORDER BY f.stock_id, f.date DESC
	`

	f, err := scanFundamental(r.pool.QueryRow(ctx, query, stockID))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return f, nil
}

// GetAllByMarket returns the latest fundamentals of every active stock in the market
func (r *FundamentalRepository) GetAllByMarket(ctx context.Context, market contracts.Market) (map[int64]*contracts.Fundamental, error) {
	query := fundamentalSelect + `
		WHERE s.market = $1 AND s.is_active = true
		ORDER BY f.stock_id, f.date DESC
	`

	rows, err := r.pool.Query(ctx, query, string(market))
	if err != nil {
		return nil, fmt.Errorf("query fundamentals for %s: %w", market, err)
	}
	defer rows.Close()

	result := make(map[int64]*contracts.Fundamental)
	for rows.Next() {
		f, err := scanFundamental(rows)
		if err != nil {
			return nil, err
		}
		result[f.StockID] = f
	}
	return result, rows.Err()
}
