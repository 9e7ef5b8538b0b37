package dataset

import (
	"math"
	"reflect"
	"testing"
	"time"

	"superstore-saga/internal/models"
)

func tx(date time.Time, category, region string, sales, profit float64) models.Transaction {
	return models.Transaction{
		OrderDate: date,
		Category:  category,
		Region:    region,
		Sales:     sales,
		Profit:    profit,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDeriveColumns(t *testing.T) {
	txs := []models.Transaction{
		tx(date(2023, 1, 5), "Tech", "West", 100, 20),
		tx(date(2023, 1, 6), "Tech", "West", 50, -10),
	}

	deriveColumns(txs)

	if len(txs) != 2 {
		t.Fatalf("derive changed row count: %d", len(txs))
	}
	if txs[0].ProfitMargin != 0.2 {
		t.Errorf("ProfitMargin = %v, want 0.2", txs[0].ProfitMargin)
	}
	if txs[1].ProfitMargin != -0.2 {
		t.Errorf("ProfitMargin = %v, want -0.2", txs[1].ProfitMargin)
	}
	if txs[0].AbsoluteProfit != 20 {
		t.Errorf("AbsoluteProfit = %v, want 20", txs[0].AbsoluteProfit)
	}
	if txs[1].AbsoluteProfit != 10 {
		t.Errorf("AbsoluteProfit = %v, want 10 (absolute value of -10)", txs[1].AbsoluteProfit)
	}
}

// Zero-sales rows are intentionally unguarded: the margin is ±Inf, or NaN
// for a 0/0 row. This pins the behavior down rather than fixing it.
func TestDeriveColumns_ZeroSales(t *testing.T) {
	txs := []models.Transaction{
		tx(date(2023, 1, 5), "Tech", "West", 0, 20),
		tx(date(2023, 1, 6), "Tech", "West", 0, -20),
		tx(date(2023, 1, 7), "Tech", "West", 0, 0),
	}

	deriveColumns(txs)

	if !math.IsInf(float64(txs[0].ProfitMargin), 1) {
		t.Errorf("positive profit over zero sales: margin = %v, want +Inf", txs[0].ProfitMargin)
	}
	if !math.IsInf(float64(txs[1].ProfitMargin), -1) {
		t.Errorf("negative profit over zero sales: margin = %v, want -Inf", txs[1].ProfitMargin)
	}
	if !math.IsNaN(float64(txs[2].ProfitMargin)) {
		t.Errorf("zero over zero: margin = %v, want NaN", txs[2].ProfitMargin)
	}
}

func TestCategoryMetrics(t *testing.T) {
	txs := []models.Transaction{
		tx(date(2023, 1, 5), "Tech", "West", 100, 20),
		tx(date(2023, 1, 20), "Tech", "East", 50, -10),
		tx(date(2023, 2, 1), "Office", "West", 200, 40),
	}
	deriveColumns(txs)

	metrics := categoryMetrics(txs)

	if len(metrics) != 2 {
		t.Fatalf("got %d category rows, want one per distinct category (2)", len(metrics))
	}

	byCategory := make(map[string]models.CategoryMetrics)
	for _, m := range metrics {
		byCategory[m.Category] = m
	}

	tech := byCategory["Tech"]
	if tech.TotalSales != 150 {
		t.Errorf("Tech TotalSales = %v, want 150", tech.TotalSales)
	}
	if tech.TotalProfit != 10 {
		t.Errorf("Tech TotalProfit = %v, want 10", tech.TotalProfit)
	}
	// mean of 0.2 and -0.2
	if tech.AvgProfitMargin != 0 {
		t.Errorf("Tech AvgProfitMargin = %v, want 0", tech.AvgProfitMargin)
	}
	// mean of |20| and |-10|
	if tech.AvgAbsoluteProfit != 15 {
		t.Errorf("Tech AvgAbsoluteProfit = %v, want 15", tech.AvgAbsoluteProfit)
	}
	if tech.Transactions != 2 {
		t.Errorf("Tech Transactions = %d, want 2", tech.Transactions)
	}

	office := byCategory["Office"]
	if office.TotalSales != 200 || office.TotalProfit != 40 {
		t.Errorf("Office totals = (%v, %v), want (200, 40)", office.TotalSales, office.TotalProfit)
	}
}

func TestCategoryMetrics_InfiniteMarginPropagates(t *testing.T) {
	txs := []models.Transaction{
		tx(date(2023, 1, 5), "Tech", "West", 0, 20),
		tx(date(2023, 1, 6), "Tech", "West", 100, 10),
	}
	deriveColumns(txs)

	metrics := categoryMetrics(txs)
	if len(metrics) != 1 {
		t.Fatalf("got %d rows, want 1", len(metrics))
	}
	if !math.IsInf(float64(metrics[0].AvgProfitMargin), 1) {
		t.Errorf("mean margin over a +Inf member = %v, want +Inf", metrics[0].AvgProfitMargin)
	}
}

func TestMonthlyCategorySales(t *testing.T) {
	txs := []models.Transaction{
		tx(date(2023, 1, 5), "Tech", "West", 100, 20),
		tx(date(2023, 1, 20), "Tech", "West", 50, -10),
		tx(date(2023, 2, 1), "Office", "West", 200, 40),
	}

	monthly := monthlyCategorySales(txs)

	if len(monthly) != 2 {
		t.Fatalf("got %d bucket rows, want 2", len(monthly))
	}

	// Deterministic ordering: month asc, then category.
	jan, feb := monthly[0], monthly[1]
	if jan.Month != "2023-01" || jan.Category != "Tech" {
		t.Fatalf("first bucket = (%s, %s), want (2023-01, Tech)", jan.Month, jan.Category)
	}
	if jan.TotalSales != 150 {
		t.Errorf("January Tech bucket = %v, want 150", jan.TotalSales)
	}
	if !jan.MonthEnd.Equal(date(2023, 1, 31)) {
		t.Errorf("January MonthEnd = %v, want 2023-01-31", jan.MonthEnd)
	}
	if feb.Month != "2023-02" || feb.Category != "Office" || feb.TotalSales != 200 {
		t.Errorf("second bucket = (%s, %s, %v), want (2023-02, Office, 200)", feb.Month, feb.Category, feb.TotalSales)
	}
}

// Every input row contributes its Sales to exactly one (bucket, category)
// sum, and no pair absent from the input appears.
func TestMonthlyCategorySales_Partition(t *testing.T) {
	txs := []models.Transaction{
		tx(date(2022, 12, 31), "Tech", "West", 10, 1),
		tx(date(2023, 1, 1), "Tech", "West", 20, 2),
		tx(date(2023, 1, 15), "Office", "East", 30, 3),
		tx(date(2023, 1, 31), "Office", "East", 40, 4),
		tx(date(2023, 3, 1), "Furniture", "South", 50, 5),
	}

	monthly := monthlyCategorySales(txs)

	var bucketTotal float64
	pairs := make(map[string]bool)
	for _, m := range monthly {
		bucketTotal += m.TotalSales
		pairs[m.Month+"|"+m.Category] = true
	}

	var inputTotal float64
	for _, tx := range txs {
		inputTotal += tx.Sales
		key := tx.OrderDate.Format("2006-01") + "|" + tx.Category
		if !pairs[key] {
			t.Errorf("input pair %s missing from buckets", key)
		}
	}

	if bucketTotal != inputTotal {
		t.Errorf("bucket sum total = %v, input total = %v", bucketTotal, inputTotal)
	}
	if len(pairs) != 4 {
		t.Errorf("got %d pairs, want 4 (only pairs present in input)", len(pairs))
	}
}

func TestMonthEnd(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{date(2023, 1, 5), date(2023, 1, 31)},
		{date(2023, 2, 1), date(2023, 2, 28)},
		{date(2024, 2, 15), date(2024, 2, 29)},
		{date(2023, 12, 31), date(2023, 12, 31)},
	}

	for _, tt := range tests {
		if got := monthEnd(tt.in); !got.Equal(tt.want) {
			t.Errorf("monthEnd(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCategoryCounts(t *testing.T) {
	txs := []models.Transaction{
		tx(date(2023, 1, 5), "Tech", "West", 100, 20),
		tx(date(2023, 1, 6), "Tech", "West", 50, 5),
		tx(date(2023, 1, 7), "Office", "West", 200, 40),
	}

	counts := categoryCounts(txs)

	if len(counts) != 2 {
		t.Fatalf("got %d rows, want 2", len(counts))
	}
	if counts[0].Category != "Tech" || counts[0].Count != 2 {
		t.Errorf("first row = %+v, want Tech with count 2", counts[0])
	}
	if counts[1].Category != "Office" || counts[1].Count != 1 {
		t.Errorf("second row = %+v, want Office with count 1", counts[1])
	}
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}

	tests := []struct {
		q    float64
		want float64
	}{
		{0.25, 1.75},
		{0.5, 2.5},
		{0.75, 3.25},
		{0, 1},
		{1, 4},
	}

	for _, tt := range tests {
		if got := quantile(sorted, tt.q); got != tt.want {
			t.Errorf("quantile(%v) = %v, want %v", tt.q, got, tt.want)
		}
	}

	if got := quantile([]float64{7}, 0.5); got != 7 {
		t.Errorf("single-element quantile = %v, want 7", got)
	}
}

func TestRegionMargins(t *testing.T) {
	txs := []models.Transaction{
		tx(date(2023, 1, 1), "Tech", "West", 100, 10),
		tx(date(2023, 1, 2), "Tech", "West", 100, 20),
		tx(date(2023, 1, 3), "Tech", "West", 100, 30),
		tx(date(2023, 1, 4), "Tech", "West", 100, 40),
		tx(date(2023, 1, 5), "Tech", "East", 100, 50),
	}
	deriveColumns(txs)

	regions := regionMargins(txs)

	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}

	east := regions[0]
	if east.Region != "East" {
		t.Fatalf("regions not sorted by name: first = %s", east.Region)
	}
	if east.Min != 0.5 || east.Median != 0.5 || east.Max != 0.5 || east.Count != 1 {
		t.Errorf("single-row region summary = %+v, want all quartiles 0.5", east)
	}

	west := regions[1]
	if west.Min != 0.1 || west.Max != 0.4 {
		t.Errorf("West min/max = (%v, %v), want (0.1, 0.4)", west.Min, west.Max)
	}
	if math.Abs(float64(west.Median)-0.25) > 1e-12 {
		t.Errorf("West median = %v, want 0.25", west.Median)
	}
	if west.Count != 4 {
		t.Errorf("West count = %d, want 4", west.Count)
	}
}

func TestRegionMargins_InfiniteMargin(t *testing.T) {
	txs := []models.Transaction{
		tx(date(2023, 1, 1), "Tech", "West", 0, 5),
		tx(date(2023, 1, 2), "Tech", "West", 100, 10),
	}
	deriveColumns(txs)

	regions := regionMargins(txs)
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}
	if !math.IsInf(float64(regions[0].Max), 1) {
		t.Errorf("Max = %v, want +Inf carried through", regions[0].Max)
	}
}

func TestHistogram(t *testing.T) {
	txs := make([]models.Transaction, 90)
	for i := range txs {
		txs[i] = tx(date(2023, 1, 1), "Tech", "West", float64(i), 0)
	}

	bins := histogram(txs, func(tx models.Transaction) float64 { return tx.Sales })

	if len(bins) != histogramBins {
		t.Fatalf("got %d bins, want %d", len(bins), histogramBins)
	}

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	if total != len(txs) {
		t.Errorf("bin counts sum to %d, want %d", total, len(txs))
	}

	if bins[0].Start != 0 {
		t.Errorf("first bin starts at %v, want 0", bins[0].Start)
	}
	if bins[len(bins)-1].End != 89 {
		t.Errorf("last bin ends at %v, want 89", bins[len(bins)-1].End)
	}
}

func TestHistogram_DegenerateInputs(t *testing.T) {
	if bins := histogram(nil, func(tx models.Transaction) float64 { return tx.Sales }); len(bins) != 0 {
		t.Errorf("empty input: got %d bins, want 0", len(bins))
	}

	txs := []models.Transaction{
		tx(date(2023, 1, 1), "Tech", "West", 42, 0),
		tx(date(2023, 1, 2), "Tech", "West", 42, 0),
	}
	bins := histogram(txs, func(tx models.Transaction) float64 { return tx.Sales })
	if len(bins) != 1 {
		t.Fatalf("constant column: got %d bins, want 1", len(bins))
	}
	if bins[0].Count != 2 || bins[0].Start != 42 || bins[0].End != 42 {
		t.Errorf("constant column bin = %+v, want {42 42 2}", bins[0])
	}
}

// Known-answer scenario: the category aggregate and the January Tech
// bucket from a fixed three-row input.
func TestCompute_EndToEnd(t *testing.T) {
	input := []models.Transaction{
		tx(date(2023, 1, 5), "Tech", "West", 100, 20),
		tx(date(2023, 1, 20), "Tech", "West", 50, -10),
		tx(date(2023, 2, 1), "Office", "West", 200, 40),
	}

	views := Compute(input)

	if views.RecordCount != 3 {
		t.Errorf("RecordCount = %d, want 3", views.RecordCount)
	}

	var tech *models.CategoryMetrics
	for i := range views.CategoryMetrics {
		if views.CategoryMetrics[i].Category == "Tech" {
			tech = &views.CategoryMetrics[i]
		}
	}
	if tech == nil {
		t.Fatal("no Tech category row")
	}
	if tech.TotalSales != 150 || tech.TotalProfit != 10 {
		t.Errorf("Tech = (%v, %v), want (150, 10)", tech.TotalSales, tech.TotalProfit)
	}

	found := false
	for _, m := range views.MonthlySales {
		if m.Month == "2023-01" && m.Category == "Tech" {
			found = true
			if m.TotalSales != 150 {
				t.Errorf("2023-01 Tech bucket = %v, want 150", m.TotalSales)
			}
		}
	}
	if !found {
		t.Error("no 2023-01 Tech bucket")
	}
}

func TestCompute_Idempotent(t *testing.T) {
	input := []models.Transaction{
		tx(date(2023, 1, 5), "Tech", "West", 100, 20),
		tx(date(2023, 1, 20), "Office", "East", 50, -10),
		tx(date(2023, 2, 1), "Office", "West", 200, 40),
		tx(date(2023, 2, 11), "Furniture", "South", 75, 7.5),
	}

	a := Compute(input)
	b := Compute(input)

	if !reflect.DeepEqual(a.Transactions, b.Transactions) {
		t.Error("Transactions differ between runs")
	}
	if !reflect.DeepEqual(a.CategoryMetrics, b.CategoryMetrics) {
		t.Error("CategoryMetrics differ between runs")
	}
	if !reflect.DeepEqual(a.MonthlySales, b.MonthlySales) {
		t.Error("MonthlySales differ between runs")
	}
	if !reflect.DeepEqual(a.CategoryCounts, b.CategoryCounts) {
		t.Error("CategoryCounts differ between runs")
	}
	if !reflect.DeepEqual(a.RegionMargins, b.RegionMargins) {
		t.Error("RegionMargins differ between runs")
	}
	if !reflect.DeepEqual(a.SalesHistogram, b.SalesHistogram) {
		t.Error("SalesHistogram differs between runs")
	}
	if !reflect.DeepEqual(a.ProfitHistogram, b.ProfitHistogram) {
		t.Error("ProfitHistogram differs between runs")
	}
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	input := []models.Transaction{
		tx(date(2023, 1, 5), "Tech", "West", 100, 20),
	}

	views := Compute(input)

	if input[0].ProfitMargin != 0 || input[0].AbsoluteProfit != 0 {
		t.Error("Compute mutated its input slice")
	}
	if views.Transactions[0].ProfitMargin != 0.2 {
		t.Errorf("output margin = %v, want 0.2", views.Transactions[0].ProfitMargin)
	}
}

func TestCompute_OrderPreserved(t *testing.T) {
	input := []models.Transaction{
		tx(date(2023, 3, 1), "C", "West", 1, 0),
		tx(date(2023, 1, 1), "A", "West", 2, 0),
		tx(date(2023, 2, 1), "B", "West", 3, 0),
	}

	views := Compute(input)

	if len(views.Transactions) != 3 {
		t.Fatalf("row count changed: %d", len(views.Transactions))
	}
	for i, want := range []string{"C", "A", "B"} {
		if views.Transactions[i].Category != want {
			t.Errorf("row %d category = %s, want %s (input order must survive derivation)", i, views.Transactions[i].Category, want)
		}
	}
}
