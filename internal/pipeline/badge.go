package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/riskbadge/internal/contracts"
	"github.com/wonny/riskbadge/internal/pipelineconfig"
	"github.com/wonny/riskbadge/internal/riskbadge"
	"github.com/wonny/riskbadge/internal/store"
	"github.com/wonny/riskbadge/pkg/logger"
	"github.com/wonny/riskbadge/pkg/metrics"
)

// BadgeService scores stocks into risk badges and persists them
// ⭐ SSOT: 배지 계산/저장 흐름은 여기서만
type BadgeService struct {
	indicators   contracts.IndicatorRepository
	fundamentals contracts.FundamentalRepository
	factors      contracts.FactorRepository
	badges       contracts.BadgeRepository
	cache        contracts.BadgeCache

	cfg      *pipelineconfig.Config
	cacheTTL time.Duration
	now      func() time.Time
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

// BadgeDeps groups the collaborators of BadgeService
type BadgeDeps struct {
	Indicators   contracts.IndicatorRepository
	Fundamentals contracts.FundamentalRepository
	Factors      contracts.FactorRepository
	Badges       contracts.BadgeRepository
	Cache        contracts.BadgeCache // optional
}

// NewBadgeService creates a new badge service
func NewBadgeService(deps BadgeDeps, cfg *pipelineconfig.Config, cacheTTL time.Duration, log *logger.Logger, m *metrics.Metrics) *BadgeService {
	return &BadgeService{
		indicators:   deps.Indicators,
		fundamentals: deps.Fundamentals,
		factors:      deps.Factors,
		badges:       deps.Badges,
		cache:        deps.Cache,
		cfg:          cfg,
		cacheTTL:     cacheTTL,
		now:          time.Now,
		logger:       log,
		metrics:      m,
	}
}

// BatchResult summarizes one market batch
type BatchResult struct {
	Market   contracts.Market
	Records  []contracts.BadgeRecord
	ByTier   map[contracts.Tier]int
	Failed   int
	Upserted int64
	Duration time.Duration
}

func (s *BadgeService) peers(sector, market *contracts.PeerAggregate) riskbadge.PeerGroup {
	return riskbadge.PeerGroup{Sector: sector, Market: market, MinSectorCount: s.cfg.Peer.MinSectorCount}
}

// ComputeSingle scores one stock from its latest stored data and persists the badge
func (s *BadgeService) ComputeSingle(ctx context.Context, stockID int64, market contracts.Market) (*contracts.BadgeRecord, error) {
	timer := s.metrics.NewTimer("badge_single")
	defer timer.Stop()

	ind, err := s.indicators.GetLatestByStock(ctx, stockID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load indicators for %d: %w", stockID, err)
	}
	fund, err := s.fundamentals.GetLatestByStock(ctx, stockID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load fundamentals for %d: %w", stockID, err)
	}
	if err := validateInputs(ind, fund); err != nil {
		s.metrics.RecordFailure(string(market), "badge")
		return nil, err
	}

	volZ, err := s.factors.GetVolatilityZByStock(ctx, stockID, market)
	if err != nil {
		return nil, fmt.Errorf("load volatility z for %d: %w", stockID, err)
	}

	var sectorAgg *contracts.PeerAggregate
	if sector := sectorOf(fund, ind); sector != "" {
		sectorAgg, err = s.factors.GetSectorAggregate(ctx, market, sector)
		if err != nil {
			return nil, fmt.Errorf("load sector aggregate %s: %w", sector, err)
		}
	}
	marketAgg, err := s.factors.GetMarketAggregate(ctx, market)
	if err != nil {
		return nil, fmt.Errorf("load market aggregate %s: %w", market, err)
	}

	rec := riskbadge.Evaluate(stockID, market, s.now(), ind, fund, volZ, s.peers(sectorAgg, marketAgg))
	if err := rec.Validate(); err != nil {
		s.metrics.RecordFailure(string(market), "badge")
		return nil, err
	}

	if _, err := s.badges.UpsertBatch(ctx, []contracts.BadgeRecord{rec}); err != nil {
		return nil, fmt.Errorf("save badge %d: %w", stockID, err)
	}
	s.invalidate(ctx, []int64{stockID})
	s.metrics.RecordBadge(string(market), rec.SummaryTier.String())

	return &rec, nil
}

// ComputeBatch scores every stock with an indicator row in the market and upserts the badges.
// The market aggregate is built from the loaded fundamentals, sector aggregates come from the factor store.
func (s *BadgeService) ComputeBatch(ctx context.Context, market contracts.Market) (*BatchResult, error) {
	start := time.Now()
	timer := s.metrics.NewTimer("badge_batch")
	defer timer.Stop()

	inds, err := s.indicators.GetAllByMarket(ctx, market)
	if err != nil {
		return nil, fmt.Errorf("load indicators for %s: %w", market, err)
	}
	funds, err := s.fundamentals.GetAllByMarket(ctx, market)
	if err != nil {
		return nil, fmt.Errorf("load fundamentals for %s: %w", market, err)
	}
	exposures, err := s.factors.GetAllVolatilityZByMarket(ctx, market)
	if err != nil {
		return nil, fmt.Errorf("load volatility z for %s: %w", market, err)
	}
	sectorAggs, err := s.factors.GetAllSectorAggregates(ctx, market)
	if err != nil {
		return nil, fmt.Errorf("load sector aggregates for %s: %w", market, err)
	}

	// 시장 집계는 배치 시작 시 한 번만 계산하고 이후 읽기 전용
	marketAgg := riskbadge.MarketAggregate(funds)
	asOf := s.now()

	result := &BatchResult{
		Market: market,
		ByTier: make(map[contracts.Tier]int),
	}

	ids := sortedIDs(inds)
	result.Records = make([]contracts.BadgeRecord, 0, len(ids))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ind, fund := inds[id], funds[id]
		if err := validateInputs(ind, fund); err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"market":   market,
				"stock_id": id,
			}).Warn("Skipping stock with invalid input")
			s.metrics.RecordFailure(string(market), "badge")
			result.Failed++
			continue
		}

		var volZ *float64
		if z, ok := exposures[id]; ok {
			volZ = &z
		}

		var sectorAgg *contracts.PeerAggregate
		if sector := sectorOf(fund, ind); sector != "" {
			sectorAgg = sectorAggs[sector]
		}

		rec := riskbadge.Evaluate(id, market, asOf, ind, fund, volZ, s.peers(sectorAgg, marketAgg))
		// 저장 불가능한 배지는 해당 종목만 실패 처리
		if err := rec.Validate(); err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"market":   market,
				"stock_id": id,
			}).Warn("Skipping unpersistable badge")
			s.metrics.RecordFailure(string(market), "badge")
			result.Failed++
			continue
		}
		result.Records = append(result.Records, rec)
		result.ByTier[rec.SummaryTier]++
	}

	upserted, err := s.badges.UpsertBatch(ctx, result.Records)
	if err != nil {
		return nil, fmt.Errorf("save badges for %s: %w", market, err)
	}
	result.Upserted = upserted

	saved := make([]int64, len(result.Records))
	for i, rec := range result.Records {
		saved[i] = rec.StockID
		s.metrics.RecordBadge(string(market), rec.SummaryTier.String())
	}
	s.invalidate(ctx, saved)

	result.Duration = time.Since(start)
	s.logger.WithFields(map[string]interface{}{
		"market":   market,
		"count":    len(result.Records),
		"failed":   result.Failed,
		"stable":   result.ByTier[contracts.TierStable],
		"caution":  result.ByTier[contracts.TierCaution],
		"warning":  result.ByTier[contracts.TierWarning],
		"duration": result.Duration.String(),
	}).Info("Badge batch complete")

	return result, nil
}

// GetBadge returns the stored badge through the cache, store.ErrNotFound when absent
func (s *BadgeService) GetBadge(ctx context.Context, stockID int64) (*contracts.BadgeRecord, error) {
	if s.cache != nil {
		rec, ok, err := s.cache.Get(ctx, stockID)
		if err != nil {
			s.logger.WithError(err).WithField("stock_id", stockID).Warn("Badge cache read failed")
		} else if ok {
			return rec, nil
		}
	}

	rec, err := s.badges.GetByStock(ctx, stockID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, rec, s.cacheTTL); err != nil {
			s.logger.WithError(err).WithField("stock_id", stockID).Warn("Badge cache write failed")
		}
	}
	return rec, nil
}

// GetBadges returns the stored badges of the given stocks; missing ids are omitted
func (s *BadgeService) GetBadges(ctx context.Context, stockIDs []int64) (map[int64]*contracts.BadgeRecord, error) {
	return s.badges.GetByStocks(ctx, stockIDs)
}

// invalidate drops stale cache entries; a cache failure never fails the batch
func (s *BadgeService) invalidate(ctx context.Context, stockIDs []int64) {
	if s.cache == nil || len(stockIDs) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, stockIDs); err != nil {
		s.logger.WithError(err).WithField("count", len(stockIDs)).Warn("Badge cache invalidation failed")
	}
}

// sectorOf prefers the fundamentals' sector over the indicator row's
func sectorOf(fund *contracts.Fundamental, ind *contracts.IndicatorRow) string {
	if fund != nil {
		return fund.Sector
	}
	if ind != nil {
		return ind.Sector
	}
	return ""
}

func validateInputs(ind *contracts.IndicatorRow, fund *contracts.Fundamental) error {
	if ind != nil {
		if err := ind.Validate(); err != nil {
			return err
		}
	}
	if fund != nil {
		if err := fund.Validate(); err != nil {
			return err
		}
	}
	return nil
}
