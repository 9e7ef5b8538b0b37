package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
	"superstore-saga/internal/dataset"
	"superstore-saga/internal/models"
)

const (
	maxTableRows     = 50
	maxScatterPoints = 2000
)

var categoryTableTemplate = template.Must(template.New("categoryTable").Parse(`
<div id="category-content">
<table class="modern-table">
<thead><tr><th>Category</th><th>Total Sales</th><th>Total Profit</th><th>Avg Margin</th><th>Orders</th></tr></thead>
<tbody>
{{range $i, $item := .Data}}{{if lt $i $.MaxRows}}<tr>
<td><span class="category-badge">{{.Category}}</span></td>
<td><strong>${{printf "%.2f" .TotalSales}}</strong></td>
<td>${{printf "%.2f" .TotalProfit}}</td>
<td>{{printf "%.1f%%" .MarginPercent}}</td>
<td>{{.Transactions}}</td>
</tr>{{end}}{{end}}
</tbody>
</table>
</div>`))

var transactionsTableTemplate = template.Must(template.New("transactionsTable").Parse(`
<div id="transactions-content">
<table class="modern-table">
<thead><tr><th>Order ID</th><th>Date</th><th>Category</th><th>Region</th><th>Sales</th><th>Profit</th><th>Margin</th></tr></thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.OrderID}}</td>
<td>{{.Date}}</td>
<td><span class="category-badge">{{.Category}}</span></td>
<td>{{.Region}}</td>
<td>${{printf "%.2f" .Sales}}</td>
<td>${{printf "%.2f" .Profit}}</td>
<td>{{printf "%.1f%%" .MarginPercent}}</td>
</tr>{{end}}
</tbody>
</table>
<p class="table-note">Showing the first {{len .Rows}} of {{.Total}} records</p>
</div>`))

type SSEHandlers struct {
	store  *dataset.Store
	logger *slog.Logger
}

func NewSSEHandlers(store *dataset.Store, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		store:  store,
		logger: logger,
	}
}

type categoryTableRow struct {
	Category      string
	TotalSales    float64
	TotalProfit   float64
	MarginPercent float64
	Transactions  int
}

type templateData struct {
	Data    []categoryTableRow
	MaxRows int
}

func (h *SSEHandlers) renderCategoryTable(data []models.CategoryMetrics) (string, error) {
	if len(data) > maxTableRows {
		data = data[:maxTableRows]
	}

	rows := make([]categoryTableRow, len(data))
	for i, m := range data {
		rows[i] = categoryTableRow{
			Category:      m.Category,
			TotalSales:    m.TotalSales,
			TotalProfit:   m.TotalProfit,
			MarginPercent: float64(m.AvgProfitMargin) * 100,
			Transactions:  m.Transactions,
		}
	}

	var buf strings.Builder
	err := categoryTableTemplate.Execute(&buf, templateData{Data: rows, MaxRows: maxTableRows})
	return buf.String(), err
}

type transactionTableRow struct {
	OrderID       string
	Date          string
	Category      string
	Region        string
	Sales         float64
	Profit        float64
	MarginPercent float64
}

func (h *SSEHandlers) renderTransactionsTable() (string, error) {
	total := len(h.store.Transactions(0))
	txs := h.store.Transactions(maxTableRows)

	rows := make([]transactionTableRow, len(txs))
	for i, tx := range txs {
		rows[i] = transactionTableRow{
			OrderID:       tx.OrderID,
			Date:          tx.OrderDate.Format("2006-01-02"),
			Category:      tx.Category,
			Region:        tx.Region,
			Sales:         tx.Sales,
			Profit:        tx.Profit,
			MarginPercent: float64(tx.ProfitMargin) * 100,
		}
	}

	var buf strings.Builder
	err := transactionsTableTemplate.Execute(&buf, struct {
		Rows  []transactionTableRow
		Total int
	}{Rows: rows, Total: total})
	return buf.String(), err
}

// HandleCategoryMetrics patches the category performance table and pushes
// the bubble chart data (sized by mean absolute profit).
func (h *SSEHandlers) HandleCategoryMetrics(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.store.CategoryMetrics()
	html, err := h.renderCategoryTable(data)
	if err != nil {
		h.logger.Error("render category table", "error", err)
		return
	}
	sse.PatchElements(html)

	jsonData, err := json.Marshal(map[string]any{
		"categoryMetrics": data,
	})
	if err != nil {
		h.logger.Error("marshal category metrics", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleDistributions pushes both Act 1 histograms in one event.
func (h *SSEHandlers) HandleDistributions(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	jsonData, err := json.Marshal(map[string]any{
		"salesHistogram":  h.store.SalesHistogram(),
		"profitHistogram": h.store.ProfitHistogram(),
		"categoryCounts":  h.store.CategoryCounts(),
	})
	if err != nil {
		h.logger.Error("marshal distribution data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="distributions-content">Distribution charts loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleScatter(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	jsonData, err := json.Marshal(map[string]any{
		"scatterData": h.store.ScatterPoints(maxScatterPoints),
	})
	if err != nil {
		h.logger.Error("marshal scatter data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="scatter-content">Sales vs profit chart loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleMatrix pushes the strategic opportunities matrix data: every
// point carries sales, margin, absolute profit and region so the client
// can facet the quadrants per region.
func (h *SSEHandlers) HandleMatrix(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	jsonData, err := json.Marshal(map[string]any{
		"matrixData": h.store.ScatterPoints(maxScatterPoints),
	})
	if err != nil {
		h.logger.Error("marshal matrix data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="matrix-content">Strategic opportunities matrix loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleTransactionsTable patches the raw record table shown in the
// final act, capped at the table row limit.
func (h *SSEHandlers) HandleTransactionsTable(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	html, err := h.renderTransactionsTable()
	if err != nil {
		h.logger.Error("render transactions table", "error", err)
		return
	}
	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRegionMargins(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	jsonData, err := json.Marshal(map[string]any{
		"regionMargins": h.store.RegionMargins(),
	})
	if err != nil {
		h.logger.Error("marshal region margins", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="regions-content">Regional margin chart loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleMonthlySales(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	jsonData, err := json.Marshal(map[string]any{
		"monthlyData": h.store.MonthlySales(),
	})
	if err != nil {
		h.logger.Error("marshal monthly data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="monthly-content">Monthly trend chart loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	categoryData := h.store.CategoryMetrics()
	html, err := h.renderCategoryTable(categoryData)
	if err != nil {
		h.logger.Error("render category table", "error", err)
		return
	}
	sse.PatchElements(html)

	txTable, err := h.renderTransactionsTable()
	if err != nil {
		h.logger.Error("render transactions table", "error", err)
		return
	}
	sse.PatchElements(txTable)

	scatterData := h.store.ScatterPoints(maxScatterPoints)
	allSignals, err := json.Marshal(map[string]any{
		"salesHistogram":  h.store.SalesHistogram(),
		"profitHistogram": h.store.ProfitHistogram(),
		"categoryCounts":  h.store.CategoryCounts(),
		"categoryMetrics": categoryData,
		"scatterData":     scatterData,
		"matrixData":      scatterData,
		"regionMargins":   h.store.RegionMargins(),
		"monthlyData":     h.store.MonthlySales(),
	})
	if err != nil {
		h.logger.Error("marshal all signals data", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
