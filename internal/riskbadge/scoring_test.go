package riskbadge

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskbadge/internal/contracts"
)

func f(v float64) *float64 { return &v }

func TestToTier(t *testing.T) {
	tests := []struct {
		score float64
		want  contracts.Tier
	}{
		{0, contracts.TierStable},
		{39.999, contracts.TierStable},
		{40, contracts.TierCaution},
		{69.999, contracts.TierCaution},
		{70, contracts.TierWarning},
		{100, contracts.TierWarning},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ToTier(tt.score), "score %v", tt.score)
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, ClampScore(-12))
	assert.Equal(t, 100.0, ClampScore(140))
	assert.Equal(t, 55.5, ClampScore(55.5))
}

func TestClampBeta(t *testing.T) {
	assert.Nil(t, ClampBeta(nil))
	assert.Nil(t, ClampBeta(f(math.NaN())))
	assert.Nil(t, ClampBeta(f(math.Inf(-1))))
	assert.Equal(t, 5.0, *ClampBeta(f(7)))
	assert.Equal(t, -5.0, *ClampBeta(f(-9)))
	assert.Equal(t, 1.3, *ClampBeta(f(1.3)))
}

func TestSafeRatio(t *testing.T) {
	assert.Nil(t, SafeRatio(nil, f(1)))
	assert.Nil(t, SafeRatio(f(1), nil))
	assert.Nil(t, SafeRatio(f(1), f(0)))
	assert.Nil(t, SafeRatio(f(1), f(-2)))
	assert.Equal(t, 2.0, *SafeRatio(f(3), f(1.5)))

	assert.Nil(t, SafeRatio(f(math.NaN()), f(1)))
	assert.Nil(t, SafeRatio(f(1), f(math.NaN())))
	assert.Nil(t, SafeRatio(f(1), f(math.Inf(1))))
	assert.Nil(t, SafeRatio(f(math.MaxFloat64), f(1e-300)))
}

func TestSectorOrMarketFallback(t *testing.T) {
	market := &contracts.PeerAggregate{StockCount: 400}
	thin := &contracts.PeerAggregate{StockCount: 4}
	enough := &contracts.PeerAggregate{StockCount: 5}

	assert.Same(t, market, SectorOrMarketFallback(nil, market))
	assert.Same(t, market, SectorOrMarketFallback(thin, market))
	assert.Same(t, enough, SectorOrMarketFallback(enough, market))

	// thin market is still preferred over a thin sector
	thinMarket := &contracts.PeerAggregate{StockCount: 2}
	assert.Same(t, thinMarket, SectorOrMarketFallback(thin, thinMarket))
	assert.Nil(t, SectorOrMarketFallback(thin, nil))

	assert.Same(t, thin, PeerGroup{Sector: thin, Market: market, MinSectorCount: 3}.Resolve())
	assert.Same(t, market, PeerGroup{Sector: thin, Market: market}.Resolve())
}

func TestMedian(t *testing.T) {
	assert.Nil(t, Median(nil))
	assert.Equal(t, 3.0, *Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, *Median([]float64{4, 1, 3, 2}))
}

func TestMarketAggregate(t *testing.T) {
	assert.Nil(t, MarketAggregate(nil))

	agg := MarketAggregate(map[int64]*contracts.Fundamental{
		1: {StockID: 1, PER: f(10), PBR: f(1.0), ROE: f(0.1)},
		2: {StockID: 2, PER: f(20), PBR: f(2.0)},
		3: {StockID: 3, PER: f(30)},
	})
	require.NotNil(t, agg)

	assert.Equal(t, 3, agg.StockCount)
	assert.Equal(t, 20.0, *agg.MedianPER)
	assert.Equal(t, 1.5, *agg.MedianPBR)
	assert.Equal(t, 0.1, *agg.MedianROE)
	assert.Nil(t, agg.MedianOperatingMargin)
	assert.Nil(t, agg.MedianDebtRatio)

	// 비유한 값은 중앙값에서 제외
	agg = MarketAggregate(map[int64]*contracts.Fundamental{
		1: {StockID: 1, PER: f(10), ROE: f(math.NaN())},
		2: {StockID: 2, PER: f(math.Inf(1))},
		3: {StockID: 3, PER: f(30)},
	})
	assert.Equal(t, 20.0, *agg.MedianPER)
	assert.Nil(t, agg.MedianROE)
}
