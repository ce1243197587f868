// Package charts renders dashboard views as PNG images.
package charts

import (
	"fmt"
	"io"
	"math"
	"slices"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"superstore-dashboard/internal/models"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 480

	minDotWidth = 3.0
	maxDotWidth = 14.0
)

// Size is the output size in pixels. Zero fields take the defaults.
type Size struct {
	Width  int
	Height int
}

func (s Size) normalize() Size {
	if s.Width <= 0 {
		s.Width = DefaultWidth
	}
	if s.Height <= 0 {
		s.Height = DefaultHeight
	}
	return s
}

// CategoryPie draws the share of quantity sold per category.
func CategoryPie(w io.Writer, size Size, data []models.CategoryQuantity) error {
	size = size.normalize()

	values := make([]chart.Value, 0, len(data))
	for _, c := range data {
		if c.Quantity <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", c.Category, c.Quantity),
			Value: float64(c.Quantity),
		})
	}
	// Orders can match with zero quantity when the source value did not parse.
	if len(values) == 0 {
		values = append(values, chart.Value{
			Label: "No products sold",
			Value: 1,
			Style: chart.Style{FillColor: chart.ColorAlternateLightGray},
		})
	}

	pie := chart.PieChart{
		Title:  "Products sold per category",
		Width:  size.Width,
		Height: size.Height,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render category pie: %w", err)
	}
	return nil
}

// TopCitiesBar draws the ranked (city, region) quantities in rank order.
func TopCitiesBar(w io.Writer, size Size, data []models.CityQuantity) error {
	size = size.normalize()
	if len(data) == 0 {
		return fmt.Errorf("top cities bar: no data")
	}

	bars := make([]chart.Value, len(data))
	maxQty := 0
	for i, c := range data {
		bars[i] = chart.Value{
			Label: c.City,
			Value: float64(c.Quantity),
		}
		maxQty = max(maxQty, c.Quantity)
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Top %d: products sold per city", len(data)),
		Width:    size.Width,
		Height:   size.Height,
		BarWidth: barWidth(size.Width, len(data)),
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Bottom: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(1, float64(maxQty)*1.1)},
		},
		Bars: bars,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render top cities bar: %w", err)
	}
	return nil
}

func barWidth(width, n int) int {
	if n == 0 {
		return 40
	}
	return max(10, min(60, width/(n*2)))
}

// SalesProfitScatter plots profit against sales, one series per region, with
// dot size proportional to quantity.
func SalesProfitScatter(w io.Writer, size Size, points []models.SalesProfitPoint) error {
	size = size.normalize()
	if len(points) == 0 {
		return fmt.Errorf("sales profit scatter: no points")
	}

	byRegion := make(map[string][]models.SalesProfitPoint)
	var regions []string
	xMin, xMax := points[0].Sales, points[0].Sales
	yMin, yMax := points[0].Profit, points[0].Profit
	maxQty := 1
	for _, p := range points {
		if _, ok := byRegion[p.Region]; !ok {
			regions = append(regions, p.Region)
		}
		byRegion[p.Region] = append(byRegion[p.Region], p)
		xMin, xMax = math.Min(xMin, p.Sales), math.Max(xMax, p.Sales)
		yMin, yMax = math.Min(yMin, p.Profit), math.Max(yMax, p.Profit)
		maxQty = max(maxQty, p.Quantity)
	}
	slices.Sort(regions)

	series := make([]chart.Series, 0, len(regions))
	for i, region := range regions {
		pts := byRegion[region]
		xs := make([]float64, len(pts))
		ys := make([]float64, len(pts))
		qty := make([]int, len(pts))
		for j, p := range pts {
			xs[j], ys[j], qty[j] = p.Sales, p.Profit, p.Quantity
		}
		series = append(series, chart.ContinuousSeries{
			Name: region,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotColor:    regionColor(i),
				DotWidth:    minDotWidth,
				DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
					return dotWidth(qty[index], maxQty)
				},
			},
			XValues: xs,
			YValues: ys,
		})
	}

	xLo, xHi := padRange(xMin, xMax)
	yLo, yHi := padRange(yMin, yMax)

	graph := chart.Chart{
		Title:  "Sales and profit per order",
		Width:  size.Width,
		Height: size.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:  "Sales",
			Range: &chart.ContinuousRange{Min: xLo, Max: xHi},
		},
		YAxis: chart.YAxis{
			Name:  "Profit",
			Range: &chart.ContinuousRange{Min: yLo, Max: yHi},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render sales profit scatter: %w", err)
	}
	return nil
}

func dotWidth(qty, maxQty int) float64 {
	if maxQty <= 0 {
		return minDotWidth
	}
	return minDotWidth + (maxDotWidth-minDotWidth)*float64(qty)/float64(maxQty)
}

// padRange widens [lo, hi] by 5% so points do not sit on the axes; a zero
// span becomes [lo-1, hi+1].
func padRange(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		return lo - 1, hi + 1
	}
	return lo - span*0.05, hi + span*0.05
}

var palette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorOrange,
	chart.ColorGreen,
	chart.ColorRed,
	chart.ColorCyan,
	chart.ColorYellow,
}

func regionColor(i int) drawing.Color {
	if i < len(palette) {
		return palette[i]
	}
	return chart.GetDefaultColor(i)
}
