package pipeline

import (
	"errors"

	"superstore-dashboard/internal/models"
)

// ErrEmptySelection means the selection excludes every record. Runs stop
// before aggregation when it is returned.
var ErrEmptySelection = errors.New("no data for this selection")

// Result is everything one run derives from (records, selection).
type Result struct {
	Selection          models.Selection
	Filtered           []models.OrderRecord
	QuantityByCategory map[string]int
	TopCities          []models.CityQuantity
	Points             []models.SalesProfitPoint
}

func (r *Result) Categories() []models.CategoryQuantity {
	return CategorySlices(r.QuantityByCategory)
}

func (r *Result) TotalQuantity() int {
	return TotalQuantity(r.Filtered)
}

// Run filters records by sel and computes the per-run aggregates. It returns
// ErrEmptySelection, and no result, when nothing matches.
func Run(records []models.OrderRecord, sel models.Selection) (*Result, error) {
	filtered := Filter(records, NewPredicate(sel))
	if len(filtered) == 0 {
		return nil, ErrEmptySelection
	}

	return &Result{
		Selection:          sel,
		Filtered:           filtered,
		QuantityByCategory: QuantityByCategory(filtered),
		TopCities:          QuantityByCity(filtered, TopCityLimit),
		Points:             SalesProfitPoints(filtered),
	}, nil
}
