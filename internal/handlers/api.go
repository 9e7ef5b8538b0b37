package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"superstore-saga/internal/dataset"
	"superstore-saga/internal/errors"
	"superstore-saga/internal/observability"
)

const defaultTableRows = 100

type APIHandlers struct {
	store  *dataset.Store
	logger *slog.Logger
}

func NewAPIHandlers(store *dataset.Store, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		store:  store,
		logger: logger,
	}
}

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

func (h *APIHandlers) HandleCategoryMetrics(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.store.CategoryMetrics(), cacheHeaders)
}

func (h *APIHandlers) HandleMonthlySales(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.store.MonthlySales(), cacheHeaders)
}

func (h *APIHandlers) HandleCategoryCounts(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.store.CategoryCounts(), cacheHeaders)
}

func (h *APIHandlers) HandleRegionMargins(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.store.RegionMargins(), cacheHeaders)
}

func (h *APIHandlers) HandleSalesDistribution(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.store.SalesHistogram(), cacheHeaders)
}

func (h *APIHandlers) HandleProfitDistribution(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.store.ProfitHistogram(), cacheHeaders)
}

// HandleTransactions serves the raw table in input row order. An optional
// limit query parameter caps the row count.
func (h *APIHandlers) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	limit := defaultTableRows
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			requestID := observability.GetRequestID(r.Context())
			errors.WriteError(w, h.logger, errors.BadRequest("limit must be a non-negative integer"), requestID)
			return
		}
		limit = parsed
	}

	errors.WriteSuccessWithHeaders(w, h.store.Transactions(limit), cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.store.Stats())
}
