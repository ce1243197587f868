package pipeline

import (
	"slices"

	"superstore-dashboard/internal/models"
)

// TopCityLimit is the number of (city, region) groups shown in the ranked bar.
const TopCityLimit = 10

// QuantityByCategory sums quantity per category.
func QuantityByCategory(rows []models.OrderRecord) map[string]int {
	totals := make(map[string]int)
	for _, r := range rows {
		totals[r.Category] += r.Quantity
	}
	return totals
}

// CategorySlices orders a category aggregate by name for stable payloads.
func CategorySlices(totals map[string]int) []models.CategoryQuantity {
	out := make([]models.CategoryQuantity, 0, len(totals))
	for category, qty := range totals {
		out = append(out, models.CategoryQuantity{Category: category, Quantity: qty})
	}
	slices.SortFunc(out, func(a, b models.CategoryQuantity) int {
		if a.Category < b.Category {
			return -1
		}
		if a.Category > b.Category {
			return 1
		}
		return 0
	})
	return out
}

type cityKey struct {
	city   string
	region string
}

// QuantityByCity groups by (city, region) in first-seen order, ranks groups by
// summed quantity descending and keeps the first limit. Equal totals keep
// their first-seen order.
func QuantityByCity(rows []models.OrderRecord, limit int) []models.CityQuantity {
	index := make(map[cityKey]int)
	groups := make([]models.CityQuantity, 0)

	for _, r := range rows {
		key := cityKey{city: r.City, region: r.Region}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, models.CityQuantity{City: r.City, Region: r.Region})
		}
		groups[i].Quantity += r.Quantity
	}

	slices.SortStableFunc(groups, func(a, b models.CityQuantity) int {
		if a.Quantity > b.Quantity {
			return -1
		}
		if a.Quantity < b.Quantity {
			return 1
		}
		return 0
	})

	if limit >= 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}

// SalesProfitPoints projects rows onto the scatter encoding.
func SalesProfitPoints(rows []models.OrderRecord) []models.SalesProfitPoint {
	points := make([]models.SalesProfitPoint, len(rows))
	for i, r := range rows {
		points[i] = models.SalesProfitPoint{
			OrderID:     r.OrderID,
			ProductName: r.ProductName,
			Region:      r.Region,
			Sales:       r.Sales.InexactFloat64(),
			Profit:      r.Profit.InexactFloat64(),
			Quantity:    r.Quantity,
		}
	}
	return points
}

// TotalQuantity sums quantity over rows.
func TotalQuantity(rows []models.OrderRecord) int {
	total := 0
	for _, r := range rows {
		total += r.Quantity
	}
	return total
}
