package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/riskbadge/internal/contracts"
	"github.com/wonny/riskbadge/internal/store"
)

func fp(v float64) *float64 { return &v }

var day0 = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

// closes returns a deterministic wavy uptrend
func closes(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 10*math.Sin(float64(i)/5) + 0.1*float64(i)
	}
	return out
}

func bars(stockID int64, n int) []contracts.Price {
	out := make([]contracts.Price, n)
	for i, c := range closes(n) {
		out[i] = contracts.Price{
			StockID: stockID,
			Date:    day0.AddDate(0, 0, i),
			Open:    decimal.NewFromFloat(c),
			High:    decimal.NewFromFloat(c + 1),
			Low:     decimal.NewFromFloat(c - 1),
			Close:   decimal.NewFromFloat(c),
			Volume:  int64(1000 + 10*i),
		}
	}
	return out
}

func benchPrices(b contracts.Benchmark, n int) []contracts.BenchmarkPrice {
	out := make([]contracts.BenchmarkPrice, n)
	for i, c := range closes(n) {
		out[i] = contracts.BenchmarkPrice{Benchmark: b, Date: day0.AddDate(0, 0, i), Close: decimal.NewFromFloat(c)}
	}
	return out
}

type fakePrices struct {
	byMarket map[contracts.Market]map[int64][]contracts.Price
}

func (f *fakePrices) GetPricesByMarket(_ context.Context, market contracts.Market, limit int) (map[int64][]contracts.Price, error) {
	out := make(map[int64][]contracts.Price)
	for id, bs := range f.byMarket[market] {
		if len(bs) > limit {
			bs = bs[len(bs)-limit:]
		}
		out[id] = bs
	}
	return out, nil
}

type fakeBenchmarks struct {
	prices map[contracts.Benchmark][]contracts.BenchmarkPrice
}

func (f *fakeBenchmarks) GetPrices(_ context.Context, b contracts.Benchmark, _ int) ([]contracts.BenchmarkPrice, error) {
	return f.prices[b], nil
}

type fakeRates struct {
	rates map[contracts.Country]float64
}

func (f *fakeRates) GetLatestRate(_ context.Context, c contracts.Country, _ contracts.Maturity) (*float64, error) {
	if r, ok := f.rates[c]; ok {
		return &r, nil
	}
	return nil, nil
}

type fakeIndicators struct {
	mu       sync.Mutex
	rows     map[int64]*contracts.IndicatorRow
	markets  map[int64]contracts.Market
	replaced []contracts.Market
}

func newFakeIndicators() *fakeIndicators {
	return &fakeIndicators{rows: make(map[int64]*contracts.IndicatorRow), markets: make(map[int64]contracts.Market)}
}

func (f *fakeIndicators) put(market contracts.Market, row *contracts.IndicatorRow) {
	f.rows[row.StockID] = row
	f.markets[row.StockID] = market
}

func (f *fakeIndicators) GetLatestByStock(_ context.Context, id int64) (*contracts.IndicatorRow, error) {
	if r, ok := f.rows[id]; ok {
		return r, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeIndicators) GetAllByMarket(_ context.Context, market contracts.Market) (map[int64]*contracts.IndicatorRow, error) {
	out := make(map[int64]*contracts.IndicatorRow)
	for id, r := range f.rows {
		if f.markets[id] == market {
			out[id] = r
		}
	}
	return out, nil
}

func (f *fakeIndicators) ReplaceForMarkets(_ context.Context, markets []contracts.Market, rows []*contracts.IndicatorRow) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.replaced = markets
	var deleted int64
	for id, m := range f.markets {
		for _, target := range markets {
			if m == target {
				delete(f.rows, id)
				delete(f.markets, id)
				deleted++
			}
		}
	}
	for _, r := range rows {
		f.rows[r.StockID] = r
		// 테스트에서는 첫 번째 시장으로 귀속
		f.markets[r.StockID] = markets[0]
	}
	return deleted, int64(len(rows)), nil
}

type fakeFundamentals struct {
	rows map[int64]*contracts.Fundamental
}

func (f *fakeFundamentals) GetLatestByStock(_ context.Context, id int64) (*contracts.Fundamental, error) {
	if r, ok := f.rows[id]; ok {
		return r, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeFundamentals) GetAllByMarket(_ context.Context, _ contracts.Market) (map[int64]*contracts.Fundamental, error) {
	return f.rows, nil
}

type fakeFactors struct {
	volZ    map[int64]float64
	sectors map[string]*contracts.PeerAggregate
	market  *contracts.PeerAggregate
}

func (f *fakeFactors) GetVolatilityZByStock(_ context.Context, id int64, _ contracts.Market) (*float64, error) {
	if z, ok := f.volZ[id]; ok {
		return &z, nil
	}
	return nil, nil
}

func (f *fakeFactors) GetAllVolatilityZByMarket(_ context.Context, _ contracts.Market) (map[int64]float64, error) {
	return f.volZ, nil
}

func (f *fakeFactors) GetSectorAggregate(_ context.Context, _ contracts.Market, sector string) (*contracts.PeerAggregate, error) {
	return f.sectors[sector], nil
}

func (f *fakeFactors) GetAllSectorAggregates(_ context.Context, _ contracts.Market) (map[string]*contracts.PeerAggregate, error) {
	return f.sectors, nil
}

func (f *fakeFactors) GetMarketAggregate(_ context.Context, _ contracts.Market) (*contracts.PeerAggregate, error) {
	return f.market, nil
}

type fakeBadges struct {
	saved map[int64]contracts.BadgeRecord
	reads int
}

func newFakeBadges() *fakeBadges {
	return &fakeBadges{saved: make(map[int64]contracts.BadgeRecord)}
}

func (f *fakeBadges) GetByStock(_ context.Context, id int64) (*contracts.BadgeRecord, error) {
	f.reads++
	if r, ok := f.saved[id]; ok {
		return &r, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeBadges) GetByStocks(_ context.Context, ids []int64) (map[int64]*contracts.BadgeRecord, error) {
	out := make(map[int64]*contracts.BadgeRecord)
	for _, id := range ids {
		if r, ok := f.saved[id]; ok {
			out[id] = &r
		}
	}
	return out, nil
}

// UpsertBatch encodes every record first, like the JSONB column write, and saves nothing on failure
func (f *fakeBadges) UpsertBatch(_ context.Context, records []contracts.BadgeRecord) (int64, error) {
	for _, r := range records {
		if _, err := json.Marshal(r.Dimensions); err != nil {
			return 0, fmt.Errorf("encode dimensions for stock %d: %w", r.StockID, err)
		}
	}
	for _, r := range records {
		f.saved[r.StockID] = r
	}
	return int64(len(records)), nil
}

type fakeCache struct {
	entries     map[int64]contracts.BadgeRecord
	invalidated []int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[int64]contracts.BadgeRecord)}
}

func (f *fakeCache) Get(_ context.Context, id int64) (*contracts.BadgeRecord, bool, error) {
	if r, ok := f.entries[id]; ok {
		return &r, true, nil
	}
	return nil, false, nil
}

func (f *fakeCache) Set(_ context.Context, rec *contracts.BadgeRecord, _ time.Duration) error {
	f.entries[rec.StockID] = *rec
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, ids []int64) error {
	for _, id := range ids {
		delete(f.entries, id)
	}
	f.invalidated = append(f.invalidated, ids...)
	return nil
}

type fakeCoverage struct {
	byMarket map[contracts.Market]*contracts.DataCoverage
	err      error
}

func (f *fakeCoverage) GetCoverage(_ context.Context, market contracts.Market, _ int) (*contracts.DataCoverage, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.byMarket[market]; ok {
		return c, nil
	}
	return &contracts.DataCoverage{Market: market}, nil
}
