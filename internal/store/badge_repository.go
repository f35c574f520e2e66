package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/riskbadge/internal/contracts"
)

// dimensionsDocument is the JSONB layout of risk_badges.dimensions
type dimensionsDocument struct {
	Dims []contracts.DimensionResult `json:"dims"`
}

func encodeDimensions(dims []contracts.DimensionResult) ([]byte, error) {
	if dims == nil {
		dims = []contracts.DimensionResult{}
	}
	return json.Marshal(dimensionsDocument{Dims: dims})
}

func decodeDimensions(data []byte) ([]contracts.DimensionResult, error) {
	var doc dimensionsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode dimensions: %w", err)
	}
	return doc.Dims, nil
}

// BadgeRepository implements contracts.BadgeRepository
// ⭐ SSOT: risk_badges 읽기/쓰기는 여기서만
type BadgeRepository struct {
	pool *pgxpool.Pool
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(pool *pgxpool.Pool) *BadgeRepository {
	return &BadgeRepository{pool: pool}
}

const badgeSelect = `
	SELECT stock_id, market, date, summary_tier, dimensions, updated_at
	FROM risk_badges
`

func scanBadge(row pgx.Row) (*contracts.BadgeRecord, error) {
	var (
		rec       contracts.BadgeRecord
		market    string
		tier      string
		dims      []byte
		updatedAt time.Time
	)
	if err := row.Scan(&rec.StockID, &market, &rec.Date, &tier, &dims, &updatedAt); err != nil {
		return nil, err
	}

	rec.Market = contracts.Market(market)

	t, err := contracts.ParseTier(tier)
	if err != nil {
		return nil, fmt.Errorf("badge %d: %w", rec.StockID, err)
	}
	rec.SummaryTier = t

	rec.Dimensions, err = decodeDimensions(dims)
	if err != nil {
		return nil, fmt.Errorf("badge %d: %w", rec.StockID, err)
	}

	rec.UpdatedAt = &updatedAt
	return &rec, nil
}

// GetByStock returns the stored badge, ErrNotFound when absent
func (r *BadgeRepository) GetByStock(ctx context.Context, stockID int64) (*contracts.BadgeRecord, error) {
	rec, err := scanBadge(r.pool.QueryRow(ctx, badgeSelect+` WHERE stock_id = $1`, stockID))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return rec, nil
}

// GetByStocks returns the stored badges keyed by stock id. Missing ids are omitted.
func (r *BadgeRepository) GetByStocks(ctx context.Context, stockIDs []int64) (map[int64]*contracts.BadgeRecord, error) {
	result := make(map[int64]*contracts.BadgeRecord, len(stockIDs))
	if len(stockIDs) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx, badgeSelect+` WHERE stock_id = ANY($1)`, stockIDs)
	if err != nil {
		return nil, fmt.Errorf("query badges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		result[rec.StockID] = rec
	}
	return result, rows.Err()
}

// UpsertBatch 배지 일괄 저장 (stock_id 기준 덮어쓰기)
func (r *BadgeRepository) UpsertBatch(ctx context.Context, records []contracts.BadgeRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO risk_badges (stock_id, market, date, summary_tier, dimensions, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (stock_id) DO UPDATE SET
			market = EXCLUDED.market,
			date = EXCLUDED.date,
			summary_tier = EXCLUDED.summary_tier,
			dimensions = EXCLUDED.dimensions,
			updated_at = NOW()`

	for _, rec := range records {
		dims, err := encodeDimensions(rec.Dimensions)
		if err != nil {
			return 0, fmt.Errorf("badge %d: %w", rec.StockID, err)
		}
		batch.Queue(query, rec.StockID, string(rec.Market), rec.Date, rec.SummaryTier.String(), dims)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	var affected int64
	for range records {
		tag, err := br.Exec()
		if err != nil {
			return affected, err
		}
		affected += tag.RowsAffected()
	}

	return affected, nil
}
