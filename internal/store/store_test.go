package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskbadge/internal/contracts"
	"github.com/wonny/riskbadge/pkg/redis"
)

func fp(v float64) *float64 { return &v }

func TestMapNoRows(t *testing.T) {
	assert.ErrorIs(t, mapNoRows(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, mapNoRows(fmt.Errorf("wrapped: %w", pgx.ErrNoRows)), ErrNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, mapNoRows(other))
}

func TestMarketStrings(t *testing.T) {
	got := marketStrings(contracts.RegionKR.Markets())
	assert.Equal(t, []string{"KR_KOSPI", "KR_KOSDAQ"}, got)
	assert.Empty(t, marketStrings([]contracts.Market{}))
}

func TestDimensionsDocument(t *testing.T) {
	dims := []contracts.DimensionResult{
		{
			Name: contracts.DimensionPriceHeat, Score: 31, Tier: contracts.TierCaution,
			Direction:     contracts.DirectionOverheated,
			Components:    map[string]*float64{"rsi": fp(75), "bb_pct_b": nil},
			DataAvailable: true,
		},
		{
			Name: contracts.DimensionValuation, Score: 50, Tier: contracts.TierCaution,
			Components: map[string]*float64{},
		},
	}

	data, err := encodeDimensions(dims)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"dims":[`)
	assert.Contains(t, string(data), `"name":"price_heat"`)
	assert.Contains(t, string(data), `"direction":null`)
	assert.Contains(t, string(data), `"bb_pct_b":null`)

	back, err := decodeDimensions(data)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, contracts.DirectionOverheated, back[0].Direction)
	assert.Equal(t, 75.0, *back[0].Components["rsi"])
	assert.Nil(t, back[0].Components["bb_pct_b"])
	assert.Equal(t, contracts.DirectionNone, back[1].Direction)
	assert.False(t, back[1].DataAvailable)

	empty, err := encodeDimensions(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dims":[]}`, string(empty))

	_, err = decodeDimensions([]byte(`{"dims":[{"name":"bogus"}]}`))
	assert.Error(t, err)
}

func TestBadgeCache_Disabled(t *testing.T) {
	cache := NewBadgeCache(redis.Disabled(), "riskbadge")
	ctx := context.Background()

	rec := &contracts.BadgeRecord{StockID: 1, Market: contracts.MarketKOSPI, SummaryTier: contracts.TierStable}
	require.NoError(t, cache.Set(ctx, rec, time.Minute))

	got, ok, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	assert.NoError(t, cache.Invalidate(ctx, []int64{1, 2}))
	assert.NoError(t, cache.Invalidate(ctx, nil))
}
