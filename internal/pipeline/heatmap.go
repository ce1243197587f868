package pipeline

import (
	"fmt"

	"github.com/shopspring/decimal"

	"superstore-dashboard/internal/models"
)

// HeatmapSalesBins is the number of equal-width sales bins per facet.
const HeatmapSalesBins = 4

type cellAcc struct {
	sum   decimal.Decimal
	count int64
}

// ProfitHeatmap averages profit over sales bins x region, one facet per ship
// mode. Bins split [min sales, max sales] of rows into equal widths.
func ProfitHeatmap(rows []models.OrderRecord, regions, shipModes []string, bins int) models.ProfitHeatmap {
	if bins < 1 {
		bins = 1
	}

	hm := models.ProfitHeatmap{
		Regions: regions,
		Facets:  make([]models.HeatmapFacet, 0, len(shipModes)),
	}
	if len(rows) == 0 {
		hm.SalesBins = []models.SalesBin{}
		for _, mode := range shipModes {
			hm.Facets = append(hm.Facets, models.HeatmapFacet{ShipMode: mode, AvgProfit: emptyGrid(len(regions), 0)})
		}
		return hm
	}

	lo, hi := rows[0].Sales, rows[0].Sales
	for _, r := range rows[1:] {
		lo = decimal.Min(lo, r.Sales)
		hi = decimal.Max(hi, r.Sales)
	}
	width := hi.Sub(lo).Div(decimal.NewFromInt(int64(bins)))

	hm.SalesBins = make([]models.SalesBin, bins)
	for i := range bins {
		lower := lo.Add(width.Mul(decimal.NewFromInt(int64(i))))
		upper := lower.Add(width)
		if i == bins-1 {
			upper = hi
		}
		hm.SalesBins[i] = models.SalesBin{
			Lower: lower.InexactFloat64(),
			Upper: upper.InexactFloat64(),
			Label: fmt.Sprintf("%s-%s", lower.StringFixed(0), upper.StringFixed(0)),
		}
	}

	regionIdx := indexOf(regions)
	modeIdx := indexOf(shipModes)

	acc := make([][][]cellAcc, len(shipModes))
	for m := range acc {
		acc[m] = make([][]cellAcc, len(regions))
		for r := range acc[m] {
			acc[m][r] = make([]cellAcc, bins)
		}
	}

	for _, row := range rows {
		m, ok := modeIdx[row.ShipMode]
		if !ok {
			continue
		}
		r, ok := regionIdx[row.Region]
		if !ok {
			continue
		}
		b := salesBin(row.Sales, lo, width, bins)
		cell := &acc[m][r][b]
		cell.sum = cell.sum.Add(row.Profit)
		cell.count++
	}

	for m, mode := range shipModes {
		grid := emptyGrid(len(regions), bins)
		for r := range regions {
			for b := range bins {
				cell := acc[m][r][b]
				if cell.count == 0 {
					continue
				}
				avg := cell.sum.Div(decimal.NewFromInt(cell.count)).InexactFloat64()
				grid[r][b] = &avg
			}
		}
		hm.Facets = append(hm.Facets, models.HeatmapFacet{ShipMode: mode, AvgProfit: grid})
	}

	return hm
}

func salesBin(sales, lo, width decimal.Decimal, bins int) int {
	if width.IsZero() {
		return 0
	}
	b := int(sales.Sub(lo).Div(width).IntPart())
	if b >= bins {
		b = bins - 1
	}
	if b < 0 {
		b = 0
	}
	return b
}

func emptyGrid(rows, cols int) [][]*float64 {
	grid := make([][]*float64, rows)
	for i := range grid {
		grid[i] = make([]*float64, cols)
	}
	return grid
}

func indexOf(values []string) map[string]int {
	idx := make(map[string]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}
