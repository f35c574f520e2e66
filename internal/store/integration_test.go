package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskbadge/internal/contracts"
	"github.com/wonny/riskbadge/pkg/config"
	"github.com/wonny/riskbadge/pkg/database"
)

// newTestDB connects to DATABASE_URL and applies the schema
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = Migrate(context.Background(), db)
	require.NoError(t, err)
	return db
}

// insertStock creates a throwaway stock and removes it with its rows on cleanup
func insertStock(t *testing.T, db *database.DB, market contracts.Market, sector string) int64 {
	t.Helper()
	ctx := context.Background()

	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO stocks (symbol, market, sector) VALUES ($1, $2, $3) RETURNING id`,
		"T"+uuid.NewString()[:8], string(market), sector,
	).Scan(&id)
	require.NoError(t, err)

	t.Cleanup(func() {
		for _, table := range []string{"risk_badges", "stock_indicators", "stock_fundamentals", "factor_exposures", "daily_prices"} {
			_, _ = db.Pool.Exec(ctx, "DELETE FROM "+table+" WHERE stock_id = $1", id)
		}
		_, _ = db.Pool.Exec(ctx, "DELETE FROM stocks WHERE id = $1", id)
	})
	return id
}

func TestIntegration_IndicatorReplace(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewIndicatorRepository(db)

	// US markets keep the test away from KR data that may already exist
	market := contracts.MarketNASDAQ
	id := insertStock(t, db, market, "Technology")
	day := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	obv := int64(1200)

	row := &contracts.IndicatorRow{StockID: id, Date: day, Close: fp(101.5), RSI14: fp(55.1234), OBV: &obv}
	_, inserted, err := repo.ReplaceForMarkets(ctx, []contracts.Market{market}, []*contracts.IndicatorRow{row})
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)

	got, err := repo.GetLatestByStock(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Technology", got.Sector)
	assert.Equal(t, 55.1234, *got.RSI14)
	assert.Equal(t, obv, *got.OBV)
	assert.Nil(t, got.Beta)

	all, err := repo.GetAllByMarket(ctx, market)
	require.NoError(t, err)
	assert.Contains(t, all, id)

	// a second replace wipes the previous snapshot
	deleted, inserted, err := repo.ReplaceForMarkets(ctx, []contracts.Market{market}, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(1))
	assert.Zero(t, inserted)

	_, err = repo.GetLatestByStock(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestIntegration_BadgeUpsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewBadgeRepository(db.Pool)

	id := insertStock(t, db, contracts.MarketNYSE, "Energy")
	rec := contracts.BadgeRecord{
		StockID: id, Market: contracts.MarketNYSE,
		Date:        time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		SummaryTier: contracts.TierCaution,
		Dimensions: []contracts.DimensionResult{
			{Name: contracts.DimensionTrend, Score: 48.1, Tier: contracts.TierCaution, Direction: contracts.DirectionUptrend,
				Components: map[string]*float64{"adx": fp(64.1)}, DataAvailable: true},
		},
	}

	n, err := repo.UpsertBatch(ctx, []contracts.BadgeRecord{rec})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rec.SummaryTier = contracts.TierWarning
	_, err = repo.UpsertBatch(ctx, []contracts.BadgeRecord{rec})
	require.NoError(t, err)

	got, err := repo.GetByStock(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, contracts.TierWarning, got.SummaryTier)
	assert.NotNil(t, got.UpdatedAt)
	require.Len(t, got.Dimensions, 1)
	assert.Equal(t, contracts.DirectionUptrend, got.Dimensions[0].Direction)

	many, err := repo.GetByStocks(ctx, []int64{id, -1})
	require.NoError(t, err)
	assert.Len(t, many, 1)

	_, err = repo.GetByStock(ctx, -1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIntegration_PeerAggregates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	sector := "Sector-" + uuid.NewString()[:8]
	day := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	for _, per := range []float64{10, 20, 30, 40} {
		id := insertStock(t, db, contracts.MarketNYSE, sector)
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO stock_fundamentals (stock_id, date, per, pbr) VALUES ($1, $2, $3, NULL)`, id, day, per)
		require.NoError(t, err)
	}

	agg, err := NewFactorRepository(db.Pool).GetSectorAggregate(ctx, contracts.MarketNYSE, sector)
	require.NoError(t, err)
	require.NotNil(t, agg)
	assert.Equal(t, 4, agg.StockCount)
	assert.Equal(t, 25.0, *agg.MedianPER)
	assert.Nil(t, agg.MedianPBR)

	none, err := NewFactorRepository(db.Pool).GetSectorAggregate(ctx, contracts.MarketNYSE, "no-such-sector")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestIntegration_Coverage(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewCoverageRepository(db.Pool)
	market := contracts.MarketNYSE

	before, err := repo.GetCoverage(ctx, market, 3)
	require.NoError(t, err)

	id := insertStock(t, db, market, "Energy")
	day := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO daily_prices (stock_id, date, open, high, low, close, volume) VALUES ($1, $2, 10, 11, 9, 10, 100)`,
			id, day.AddDate(0, 0, i))
		require.NoError(t, err)
	}
	_, err = db.Pool.Exec(ctx, `INSERT INTO stock_fundamentals (stock_id, date, per) VALUES ($1, $2, 12)`, id, day)
	require.NoError(t, err)

	after, err := repo.GetCoverage(ctx, market, 3)
	require.NoError(t, err)

	assert.Equal(t, before.TotalStocks+1, after.TotalStocks)
	assert.Equal(t, before.PriceStocks+1, after.PriceStocks)
	assert.Equal(t, before.FundamentalStocks+1, after.FundamentalStocks)
	assert.Equal(t, before.FactorStocks, after.FactorStocks)
}
