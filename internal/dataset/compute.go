package dataset

import (
	"math"
	"slices"
	"strings"
	"time"

	"superstore-saga/internal/models"
)

const histogramBins = 30

// Views is the complete bundle of derived tables produced by one pass over
// the dataset. Nothing in it is persisted; every load recomputes it from
// scratch.
type Views struct {
	Transactions    []models.Transaction
	CategoryMetrics []models.CategoryMetrics
	MonthlySales    []models.MonthlyCategorySales
	CategoryCounts  []models.CategoryCount
	RegionMargins   []models.RegionMarginSummary
	SalesHistogram  []models.HistogramBin
	ProfitHistogram []models.HistogramBin
	LastModified    time.Time
	RecordCount     int64
}

// Compute derives the per-row columns and builds every aggregate view. The
// input slice is cloned, not mutated. Output ordering is deterministic, so
// repeat runs over the same input yield identical bundles.
func Compute(input []models.Transaction) *Views {
	txs := slices.Clone(input)
	deriveColumns(txs)

	return &Views{
		Transactions:    txs,
		CategoryMetrics: categoryMetrics(txs),
		MonthlySales:    monthlyCategorySales(txs),
		CategoryCounts:  categoryCounts(txs),
		RegionMargins:   regionMargins(txs),
		SalesHistogram:  histogram(txs, func(tx models.Transaction) float64 { return tx.Sales }),
		ProfitHistogram: histogram(txs, func(tx models.Transaction) float64 { return tx.Profit }),
		LastModified:    time.Now(),
		RecordCount:     int64(len(txs)),
	}
}

// deriveColumns fills ProfitMargin and AbsoluteProfit row-wise, preserving
// row count and order. The margin division is deliberately unguarded: a
// zero-sales row yields ±Inf (or NaN for 0/0) and downstream means carry it.
func deriveColumns(txs []models.Transaction) {
	for i := range txs {
		txs[i].ProfitMargin = models.Margin(txs[i].Profit / txs[i].Sales)
		txs[i].AbsoluteProfit = math.Abs(txs[i].Profit)
	}
}

type categoryAccum struct {
	sales     float64
	profit    float64
	marginSum float64
	absSum    float64
	count     int
}

func categoryMetrics(txs []models.Transaction) []models.CategoryMetrics {
	groups := make(map[string]*categoryAccum)
	for _, tx := range txs {
		acc := groups[tx.Category]
		if acc == nil {
			acc = &categoryAccum{}
			groups[tx.Category] = acc
		}
		acc.sales += tx.Sales
		acc.profit += tx.Profit
		acc.marginSum += float64(tx.ProfitMargin)
		acc.absSum += tx.AbsoluteProfit
		acc.count++
	}

	result := make([]models.CategoryMetrics, 0, len(groups))
	for category, acc := range groups {
		result = append(result, models.CategoryMetrics{
			Category:          category,
			TotalSales:        acc.sales,
			TotalProfit:       acc.profit,
			AvgProfitMargin:   models.Margin(acc.marginSum / float64(acc.count)),
			AvgAbsoluteProfit: acc.absSum / float64(acc.count),
			Transactions:      acc.count,
		})
	}
	slices.SortFunc(result, func(a, b models.CategoryMetrics) int {
		if a.TotalSales > b.TotalSales {
			return -1
		}
		if a.TotalSales < b.TotalSales {
			return 1
		}
		return strings.Compare(a.Category, b.Category)
	})
	return result
}

// monthEnd buckets a timestamp into its calendar month, anchored at the
// last day of the month.
func monthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

func monthlyCategorySales(txs []models.Transaction) []models.MonthlyCategorySales {
	type bucket struct {
		monthEnd time.Time
		sales    float64
	}
	groups := make(map[string]*bucket)
	for _, tx := range txs {
		key := tx.OrderDate.Format("2006-01") + "|" + tx.Category
		b := groups[key]
		if b == nil {
			b = &bucket{monthEnd: monthEnd(tx.OrderDate)}
			groups[key] = b
		}
		b.sales += tx.Sales
	}

	result := make([]models.MonthlyCategorySales, 0, len(groups))
	for key, b := range groups {
		month, category, _ := strings.Cut(key, "|")
		result = append(result, models.MonthlyCategorySales{
			Month:      month,
			MonthEnd:   b.monthEnd,
			Category:   category,
			TotalSales: b.sales,
		})
	}
	slices.SortFunc(result, func(a, b models.MonthlyCategorySales) int {
		if c := strings.Compare(a.Month, b.Month); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})
	return result
}

func categoryCounts(txs []models.Transaction) []models.CategoryCount {
	groups := make(map[string]int)
	for _, tx := range txs {
		groups[tx.Category]++
	}

	result := make([]models.CategoryCount, 0, len(groups))
	for category, count := range groups {
		result = append(result, models.CategoryCount{Category: category, Count: count})
	}
	slices.SortFunc(result, func(a, b models.CategoryCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Category, b.Category)
	})
	return result
}

func regionMargins(txs []models.Transaction) []models.RegionMarginSummary {
	groups := make(map[string][]float64)
	for _, tx := range txs {
		groups[tx.Region] = append(groups[tx.Region], float64(tx.ProfitMargin))
	}

	result := make([]models.RegionMarginSummary, 0, len(groups))
	for region, margins := range groups {
		slices.Sort(margins)
		result = append(result, models.RegionMarginSummary{
			Region: region,
			Min:    models.Margin(margins[0]),
			Q1:     models.Margin(quantile(margins, 0.25)),
			Median: models.Margin(quantile(margins, 0.5)),
			Q3:     models.Margin(quantile(margins, 0.75)),
			Max:    models.Margin(margins[len(margins)-1]),
			Count:  len(margins),
		})
	}
	slices.SortFunc(result, func(a, b models.RegionMarginSummary) int {
		return strings.Compare(a.Region, b.Region)
	})
	return result
}

// quantile interpolates linearly between the closest ranks of an already
// sorted slice. Equal neighbors short-circuit so infinite margins pass
// through instead of producing Inf-Inf arithmetic.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	if sorted[lo] == sorted[lo+1] {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func histogram(txs []models.Transaction, value func(models.Transaction) float64) []models.HistogramBin {
	if len(txs) == 0 {
		return []models.HistogramBin{}
	}

	lo, hi := value(txs[0]), value(txs[0])
	for _, tx := range txs[1:] {
		v := value(tx)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if lo == hi {
		return []models.HistogramBin{{Start: lo, End: hi, Count: len(txs)}}
	}

	width := (hi - lo) / histogramBins
	bins := make([]models.HistogramBin, histogramBins)
	for i := range bins {
		bins[i].Start = lo + float64(i)*width
		bins[i].End = lo + float64(i+1)*width
	}
	bins[histogramBins-1].End = hi

	for _, tx := range txs {
		idx := int((value(tx) - lo) / width)
		if idx >= histogramBins {
			idx = histogramBins - 1
		}
		bins[idx].Count++
	}
	return bins
}
