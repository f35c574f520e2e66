package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/riskbadge/internal/contracts"
	"github.com/wonny/riskbadge/internal/pipeline"
	"github.com/wonny/riskbadge/internal/store"
	"github.com/wonny/riskbadge/pkg/logger"
)

// BadgeService is what the badge endpoints need from the pipeline
type BadgeService interface {
	GetBadge(ctx context.Context, stockID int64) (*contracts.BadgeRecord, error)
	GetBadges(ctx context.Context, stockIDs []int64) (map[int64]*contracts.BadgeRecord, error)
	ComputeBatch(ctx context.Context, market contracts.Market) (*pipeline.BatchResult, error)
}

// BadgeHandler handles risk badge API endpoints
// ⭐ SSOT: 배지 API 핸들러는 이 구조체에서만
type BadgeHandler struct {
	service     BadgeService
	limiter     *rate.Limiter // POST /api/badges/compute
	maxBatchIDs int
	logger      *logger.Logger
}

// NewBadgeHandler creates a new badge handler
func NewBadgeHandler(service BadgeService, limiter *rate.Limiter, maxBatchIDs int, log *logger.Logger) *BadgeHandler {
	return &BadgeHandler{
		service:     service,
		limiter:     limiter,
		maxBatchIDs: maxBatchIDs,
		logger:      log,
	}
}

// GetBadge returns the stored badge of one stock
// GET /api/badges/{stockID}
func (h *BadgeHandler) GetBadge(w http.ResponseWriter, r *http.Request) {
	stockID, err := strconv.ParseInt(mux.Vars(r)["stockID"], 10, 64)
	if err != nil || stockID <= 0 {
		respondError(w, http.StatusBadRequest, "stockID must be a positive integer")
		return
	}

	rec, err := h.service.GetBadge(r.Context(), stockID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("no badge for stock %d", stockID))
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("stock_id", stockID).Error("Failed to get badge")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve badge")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    rec,
	})
}

// ListBadges returns the stored badges of several stocks, in request order
// GET /api/badges?ids=1,2,3
func (h *BadgeHandler) ListBadges(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDs(r.URL.Query().Get("ids"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(ids) > h.maxBatchIDs {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("at most %d ids per request", h.maxBatchIDs))
		return
	}

	found, err := h.service.GetBadges(r.Context(), ids)
	if err != nil {
		h.logger.WithError(err).WithField("count", len(ids)).Error("Failed to get badges")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve badges")
		return
	}

	data := make([]*contracts.BadgeRecord, 0, len(found))
	missing := make([]int64, 0)
	for _, id := range ids {
		if rec, ok := found[id]; ok {
			data = append(data, rec)
		} else {
			missing = append(missing, id)
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
		"missing": missing,
	})
}

// ComputeResponse summarizes an on-demand badge batch
type ComputeResponse struct {
	Success  bool           `json:"success"`
	Market   string         `json:"market"`
	Count    int            `json:"count"`
	Failed   int            `json:"failed"`
	ByTier   map[string]int `json:"by_tier"`
	Duration string         `json:"duration"`
}

// ComputeBadges recomputes every badge of one market from the stored indicators
// POST /api/badges/compute?market=KR_KOSPI
func (h *BadgeHandler) ComputeBadges(w http.ResponseWriter, r *http.Request) {
	market, err := contracts.ParseMarket(r.URL.Query().Get("market"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.limiter != nil && !h.limiter.Allow() {
		respondError(w, http.StatusTooManyRequests, "badge compute is rate limited, retry later")
		return
	}

	result, err := h.service.ComputeBatch(r.Context(), market)
	if err != nil {
		h.logger.WithError(err).WithField("market", market).Error("Badge compute failed")
		respondError(w, http.StatusInternalServerError, "Badge compute failed")
		return
	}

	byTier := make(map[string]int, len(result.ByTier))
	for tier, n := range result.ByTier {
		byTier[tier.String()] = n
	}

	respondJSON(w, http.StatusOK, ComputeResponse{
		Success:  true,
		Market:   string(market),
		Count:    len(result.Records),
		Failed:   result.Failed,
		ByTier:   byTier,
		Duration: result.Duration.String(),
	})
}

// parseIDs parses a comma separated list of positive stock ids, dropping duplicates
func parseIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("ids is required")
	}

	seen := make(map[int64]bool)
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid stock id %q", part)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, errors.New("ids is required")
	}
	return ids, nil
}
