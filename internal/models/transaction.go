package models

import (
	"encoding/json"
	"math"
	"time"
)

// Margin is a profit margin value. Zero-sales rows make the margin ±Inf
// (or NaN), which encoding/json refuses to encode, so non-finite values
// marshal as null instead of failing the whole response.
type Margin float64

func (m Margin) MarshalJSON() ([]byte, error) {
	f := float64(m)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// Transaction is one row of the superstore dataset. ProfitMargin and
// AbsoluteProfit are derived during load, before any view is built;
// ProfitMargin is an unguarded division and carries ±Inf (or NaN) when
// Sales is zero.
type Transaction struct {
	OrderID     string    `json:"order_id"`
	OrderDate   time.Time `json:"order_date"`
	ShipMode    string    `json:"ship_mode"`
	Segment     string    `json:"segment"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Region      string    `json:"region"`
	Category    string    `json:"category"`
	SubCategory string    `json:"sub_category"`
	ProductName string    `json:"product_name"`
	Sales       float64   `json:"sales"`
	Quantity    int       `json:"quantity"`
	Discount    float64   `json:"discount"`
	Profit      float64   `json:"profit"`

	ProfitMargin   Margin  `json:"profit_margin"`
	AbsoluteProfit float64 `json:"absolute_profit"`
}

type CategoryMetrics struct {
	Category          string  `json:"category"`
	TotalSales        float64 `json:"total_sales"`
	TotalProfit       float64 `json:"total_profit"`
	AvgProfitMargin   Margin  `json:"avg_profit_margin"`
	AvgAbsoluteProfit float64 `json:"avg_absolute_profit"`
	Transactions      int     `json:"transactions"`
}

type MonthlyCategorySales struct {
	Month      string    `json:"month"`
	MonthEnd   time.Time `json:"month_end"`
	Category   string    `json:"category"`
	TotalSales float64   `json:"total_sales"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// RegionMarginSummary is the five-number summary of ProfitMargin for one
// region, feeding the box-plot section. Quartiles inherit any ±Inf margins
// present in the region.
type RegionMarginSummary struct {
	Region string `json:"region"`
	Min    Margin `json:"min"`
	Q1     Margin `json:"q1"`
	Median Margin `json:"median"`
	Q3     Margin `json:"q3"`
	Max    Margin `json:"max"`
	Count  int    `json:"count"`
}

type HistogramBin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// ScatterPoint is one raw transaction reduced to the fields the scatter
// sections plot.
type ScatterPoint struct {
	Sales          float64 `json:"sales"`
	Profit         float64 `json:"profit"`
	ProfitMargin   Margin  `json:"profit_margin"`
	AbsoluteProfit float64 `json:"absolute_profit"`
	Category       string  `json:"category"`
	Region         string  `json:"region"`
}
