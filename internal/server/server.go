package server

import (
	"log/slog"
	"net/http"

	"superstore-saga/internal/dataset"
	"superstore-saga/internal/handlers"
)

type Server struct {
	store       *dataset.Store
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(store *dataset.Store, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		store:       store,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(store, logger),
		sseHandlers: handlers.NewSSEHandlers(store, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/category-metrics", s.apiHandlers.HandleCategoryMetrics)
	s.mux.HandleFunc("GET /api/monthly-sales", s.apiHandlers.HandleMonthlySales)
	s.mux.HandleFunc("GET /api/category-counts", s.apiHandlers.HandleCategoryCounts)
	s.mux.HandleFunc("GET /api/region-margins", s.apiHandlers.HandleRegionMargins)
	s.mux.HandleFunc("GET /api/sales-distribution", s.apiHandlers.HandleSalesDistribution)
	s.mux.HandleFunc("GET /api/profit-distribution", s.apiHandlers.HandleProfitDistribution)
	s.mux.HandleFunc("GET /api/transactions", s.apiHandlers.HandleTransactions)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/distributions", s.sseHandlers.HandleDistributions)
	s.mux.HandleFunc("GET /sse/category-metrics", s.sseHandlers.HandleCategoryMetrics)
	s.mux.HandleFunc("GET /sse/scatter", s.sseHandlers.HandleScatter)
	s.mux.HandleFunc("GET /sse/matrix", s.sseHandlers.HandleMatrix)
	s.mux.HandleFunc("GET /sse/transactions", s.sseHandlers.HandleTransactionsTable)
	s.mux.HandleFunc("GET /sse/region-margins", s.sseHandlers.HandleRegionMargins)
	s.mux.HandleFunc("GET /sse/monthly-sales", s.sseHandlers.HandleMonthlySales)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
