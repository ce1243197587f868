package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderRecord is one sales line item of the dataset.
type OrderRecord struct {
	OrderID     string
	OrderDate   time.Time
	ShipDate    time.Time
	Category    string
	Segment     string
	Region      string
	City        string
	ShipMode    string
	ProductName string
	Sales       decimal.Decimal
	Profit      decimal.Decimal
	Quantity    int
}

type CategoryQuantity struct {
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

type CityQuantity struct {
	City     string `json:"city"`
	Region   string `json:"region"`
	Quantity int    `json:"quantity"`
}

type SalesProfitPoint struct {
	OrderID     string  `json:"order_id"`
	ProductName string  `json:"product_name"`
	Region      string  `json:"region"`
	Sales       float64 `json:"sales"`
	Profit      float64 `json:"profit"`
	Quantity    int     `json:"quantity"`
}

// SalesBin is a half-open sales interval [Lower, Upper); the last bin is closed.
type SalesBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Label string  `json:"label"`
}

// HeatmapFacet holds average profit per region (rows) and sales bin (columns)
// for one ship mode. A nil cell means no order fell into it.
type HeatmapFacet struct {
	ShipMode  string       `json:"ship_mode"`
	AvgProfit [][]*float64 `json:"avg_profit"`
}

type ProfitHeatmap struct {
	SalesBins []SalesBin     `json:"sales_bins"`
	Regions   []string       `json:"regions"`
	Facets    []HeatmapFacet `json:"facets"`
}
