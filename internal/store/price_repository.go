package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/riskbadge/internal/contracts"
)

// PriceRepository implements contracts.PriceRepository
// ⭐ SSOT: 가격 데이터 조회는 여기서만
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// GetPricesByMarket returns the latest limitPerStock bars of every active stock in the market,
// ordered by date ascending per stock.
func (r *PriceRepository) GetPricesByMarket(ctx context.Context, market contracts.Market, limitPerStock int) (map[int64][]contracts.Price, error) {
	query := `
		SELECT stock_id, date, open, high, low, close, volume
		FROM (
			SELECT dp.stock_id, dp.date, dp.open, dp.high, dp.low, dp.close, dp.volume,
				ROW_NUMBER() OVER (PARTITION BY dp.stock_id ORDER BY dp.date DESC) AS rn
			FROM daily_prices dp
			JOIN stocks s ON s.id = dp.stock_id
			WHERE s.market = $1 AND s.is_active = true
		) ranked
		WHERE rn <= $2
		ORDER BY stock_id, date ASC
	`

	rows, err := r.pool.Query(ctx, query, string(market), limitPerStock)
	if err != nil {
		return nil, fmt.Errorf("query prices for %s: %w", market, err)
	}
	defer rows.Close()

	result := make(map[int64][]contracts.Price)
	for rows.Next() {
		var p contracts.Price
		if err := rows.Scan(&p.StockID, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, err
		}
		result[p.StockID] = append(result[p.StockID], p)
	}
	return result, rows.Err()
}

// BenchmarkRepository implements contracts.BenchmarkRepository
type BenchmarkRepository struct {
	pool *pgxpool.Pool
}

// NewBenchmarkRepository creates a new benchmark repository
func NewBenchmarkRepository(pool *pgxpool.Pool) *BenchmarkRepository {
	return &BenchmarkRepository{pool: pool}
}

// GetPrices returns the latest limit closes ordered by date ascending
func (r *BenchmarkRepository) GetPrices(ctx context.Context, benchmark contracts.Benchmark, limit int) ([]contracts.BenchmarkPrice, error) {
	query := `
		SELECT benchmark, date, close
		FROM benchmark_daily_prices
		WHERE benchmark = $1
		ORDER BY date DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, string(benchmark), limit)
	if err != nil {
		return nil, fmt.Errorf("query benchmark %s: %w", benchmark, err)
	}
	defer rows.Close()

	var prices []contracts.BenchmarkPrice
	for rows.Next() {
		var p contracts.BenchmarkPrice
		var name string
		if err := rows.Scan(&name, &p.Date, &p.Close); err != nil {
			return nil, err
		}
		p.Benchmark = contracts.Benchmark(name)
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 최신순으로 조회했으므로 날짜 오름차순으로 뒤집음
	for i, j := 0, len(prices)-1; i < j; i, j = i+1, j-1 {
		prices[i], prices[j] = prices[j], prices[i]
	}
	return prices, nil
}

// RiskFreeRateRepository implements contracts.RiskFreeRateRepository
type RiskFreeRateRepository struct {
	pool *pgxpool.Pool
}

// NewRiskFreeRateRepository creates a new risk-free rate repository
func NewRiskFreeRateRepository(pool *pgxpool.Pool) *RiskFreeRateRepository {
	return &RiskFreeRateRepository{pool: pool}
}

// GetLatestRate returns the most recent rate in percent, nil when none is stored
func (r *RiskFreeRateRepository) GetLatestRate(ctx context.Context, country contracts.Country, maturity contracts.Maturity) (*float64, error) {
	query := `
		SELECT rate::float8
		FROM risk_free_rates
		WHERE country = $1 AND maturity = $2
		ORDER BY date DESC
		LIMIT 1
	`

	var rate float64
	err := r.pool.QueryRow(ctx, query, string(country), string(maturity)).Scan(&rate)
	if err != nil {
		if mapNoRows(err) == ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("query risk-free rate %s/%s: %w", country, maturity, err)
	}
	return &rate, nil
}
