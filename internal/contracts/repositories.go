package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// PriceRepository reads daily bars
type PriceRepository interface {
	// GetPricesByMarket returns the latest limitPerStock bars of every stock, ordered by date ascending
	GetPricesByMarket(ctx context.Context, market Market, limitPerStock int) (map[int64][]Price, error)
}

// BenchmarkRepository reads benchmark index closes
type BenchmarkRepository interface {
	GetPrices(ctx context.Context, benchmark Benchmark, limit int) ([]BenchmarkPrice, error)
}

// RiskFreeRateRepository reads the latest risk-free rate in percent
type RiskFreeRateRepository interface {
	// GetLatestRate returns nil when no rate is stored
	GetLatestRate(ctx context.Context, country Country, maturity Maturity) (*float64, error)
}

// IndicatorRepository manages indicator snapshots
type IndicatorRepository interface {
	GetLatestByStock(ctx context.Context, stockID int64) (*IndicatorRow, error)
	GetAllByMarket(ctx context.Context, market Market) (map[int64]*IndicatorRow, error)
	// ReplaceForMarkets deletes the markets' rows and inserts rows in one transaction
	ReplaceForMarkets(ctx context.Context, markets []Market, rows []*IndicatorRow) (deleted int64, inserted int64, err error)
}

// FundamentalRepository reads fundamental snapshots
type FundamentalRepository interface {
	GetLatestByStock(ctx context.Context, stockID int64) (*Fundamental, error)
	GetAllByMarket(ctx context.Context, market Market) (map[int64]*Fundamental, error)
}

// FactorRepository reads externally computed factor data and peer aggregates
type FactorRepository interface {
	GetVolatilityZByStock(ctx context.Context, stockID int64, market Market) (*float64, error)
	GetAllVolatilityZByMarket(ctx context.Context, market Market) (map[int64]float64, error)
	GetSectorAggregate(ctx context.Context, market Market, sector string) (*PeerAggregate, error)
	GetAllSectorAggregates(ctx context.Context, market Market) (map[string]*PeerAggregate, error)
	GetMarketAggregate(ctx context.Context, market Market) (*PeerAggregate, error)
}

// BadgeRepository persists risk badges
type BadgeRepository interface {
	GetByStock(ctx context.Context, stockID int64) (*BadgeRecord, error)
	GetByStocks(ctx context.Context, stockIDs []int64) (map[int64]*BadgeRecord, error)
	UpsertBatch(ctx context.Context, records []BadgeRecord) (int64, error)
}

// BadgeCache caches badge records for the read API
type BadgeCache interface {
	Get(ctx context.Context, stockID int64) (*BadgeRecord, bool, error)
	Set(ctx context.Context, record *BadgeRecord, ttl time.Duration) error
	Invalidate(ctx context.Context, stockIDs []int64) error
}
