package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"superstore-saga/internal/models"

	"golang.org/x/sync/errgroup"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

// requiredColumns are the headers the load refuses to run without. Any
// other superstore column is carried when present and left zero otherwise.
var requiredColumns = []string{"Order Date", "Sales", "Profit", "Discount", "Category", "Region"}

var dateLayouts = []string{"2006-01-02", "1/2/2006"}

// Store owns the current view bundle. The whole bundle is swapped in one
// write after a successful load; a failed load leaves the previous bundle
// untouched.
type Store struct {
	mu               sync.RWMutex
	views            *Views
	csvPath          string
	recordsProcessed atomic.Int64
	logger           *slog.Logger
}

func NewStore() *Store {
	return &Store{
		views:  &Views{},
		logger: slog.Default(),
	}
}

// SetData computes the view bundle directly from in-memory records.
func (s *Store) SetData(txs []models.Transaction) {
	views := Compute(txs)

	s.mu.Lock()
	s.views = views
	s.mu.Unlock()

	s.recordsProcessed.Store(views.RecordCount)
}

// LoadFromCSV runs the full preparation pass: open, resolve the header,
// coerce every row, derive the per-row columns and build the aggregate
// views. Any missing column, unparseable date or non-numeric (or
// non-finite) value aborts
// the whole pass with the offending line; there is no per-row recovery and
// no partial result.
func (s *Store) LoadFromCSV(ctx context.Context, filename string) error {
	s.csvPath = filename

	start := time.Now()
	s.logger.Info("processing dataset", "filename", filename)

	txs, err := s.readTransactions(ctx, filename)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if len(txs) == 0 {
		return fmt.Errorf("load dataset: no records in %s", filename)
	}

	views := Compute(txs)

	s.mu.Lock()
	s.views = views
	s.mu.Unlock()

	s.recordsProcessed.Store(views.RecordCount)

	duration := time.Since(start)
	s.logger.Info("dataset processing complete",
		"records", views.RecordCount,
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(views.RecordCount)/duration.Seconds()))

	return nil
}

func (s *Store) readTransactions(ctx context.Context, filename string) ([]models.Transaction, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var txs []models.Transaction
	batch := make([][]string, 0, batchSize)
	line := 1 // header

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		batch = append(batch, record)
		if len(batch) >= batchSize {
			parsed, err := parseBatch(ctx, batch, columns, line)
			if err != nil {
				return nil, err
			}
			txs = append(txs, parsed...)
			line += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		parsed, err := parseBatch(ctx, batch, columns, line)
		if err != nil {
			return nil, err
		}
		txs = append(txs, parsed...)
	}

	return txs, nil
}

// parseBatch coerces a batch of raw records in parallel. Results land at
// their batch index so the output keeps the file's row order; the first
// coercion failure cancels the group and fails the load.
func parseBatch(ctx context.Context, batch [][]string, columns map[string]int, baseLine int) ([]models.Transaction, error) {
	results := make([]models.Transaction, len(batch))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i, record := range batch {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			tx, err := parseTransaction(record, columns)
			if err != nil {
				return fmt.Errorf("line %d: %w", baseLine+i+1, err)
			}
			results[i] = tx
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func resolveColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return columns, nil
}

func field(record []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseTransaction(record []string, columns map[string]int) (models.Transaction, error) {
	orderDate, err := parseDate(field(record, columns, "Order Date"))
	if err != nil {
		return models.Transaction{}, err
	}

	sales, err := parseAmount(field(record, columns, "Sales"), "Sales")
	if err != nil {
		return models.Transaction{}, err
	}

	profit, err := parseAmount(field(record, columns, "Profit"), "Profit")
	if err != nil {
		return models.Transaction{}, err
	}

	discount, err := parseAmount(field(record, columns, "Discount"), "Discount")
	if err != nil {
		return models.Transaction{}, err
	}

	quantity := 0
	if raw := field(record, columns, "Quantity"); raw != "" {
		quantity, err = strconv.Atoi(raw)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("parse Quantity: %w", err)
		}
	}

	return models.Transaction{
		OrderID:     field(record, columns, "Order ID"),
		OrderDate:   orderDate,
		ShipMode:    field(record, columns, "Ship Mode"),
		Segment:     field(record, columns, "Segment"),
		City:        field(record, columns, "City"),
		State:       field(record, columns, "State"),
		Region:      field(record, columns, "Region"),
		Category:    field(record, columns, "Category"),
		SubCategory: field(record, columns, "Sub-Category"),
		ProductName: field(record, columns, "Product Name"),
		Sales:       sales,
		Quantity:    quantity,
		Discount:    discount,
		Profit:      profit,
	}, nil
}

// parseAmount coerces a monetary column. ParseFloat happily accepts
// "NaN" and "Inf" strings, which would wreck the histogram bin math, so
// anything non-finite is a coercion failure like any other bad value.
func parseAmount(value, name string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parse %s: non-finite value %q", name, value)
	}
	return v, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse Order Date %q", value)
}

// View accessors. The bundle is immutable once swapped in, so handlers can
// hold the returned slices without copying.

func (s *Store) CategoryMetrics() []models.CategoryMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.views.CategoryMetrics
}

func (s *Store) MonthlySales() []models.MonthlyCategorySales {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.views.MonthlySales
}

func (s *Store) CategoryCounts() []models.CategoryCount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.views.CategoryCounts
}

func (s *Store) RegionMargins() []models.RegionMarginSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.views.RegionMargins
}

func (s *Store) SalesHistogram() []models.HistogramBin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.views.SalesHistogram
}

func (s *Store) ProfitHistogram() []models.HistogramBin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.views.ProfitHistogram
}

// Transactions returns up to limit raw rows in input order; limit <= 0
// returns everything.
func (s *Store) Transactions(limit int) []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || len(s.views.Transactions) <= limit {
		return s.views.Transactions
	}
	return s.views.Transactions[:limit]
}

// ScatterPoints projects the raw rows down to the fields the scatter
// sections plot. Non-finite margins are kept; the client decides how to
// draw them.
func (s *Store) ScatterPoints(limit int) []models.ScatterPoint {
	txs := s.Transactions(limit)

	points := make([]models.ScatterPoint, len(txs))
	for i, tx := range txs {
		points[i] = models.ScatterPoint{
			Sales:          tx.Sales,
			Profit:         tx.Profit,
			ProfitMargin:   tx.ProfitMargin,
			AbsoluteProfit: tx.AbsoluteProfit,
			Category:       tx.Category,
			Region:         tx.Region,
		}
	}
	return points
}

func (s *Store) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"record_count":   s.views.RecordCount,
		"last_processed": s.views.LastModified,
		"categories":     len(s.views.CategoryMetrics),
		"months":         len(s.views.MonthlySales),
		"regions":        len(s.views.RegionMargins),
	}
}
