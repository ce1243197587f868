package charts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"superstore-dashboard/internal/models"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestCategoryPie(t *testing.T) {
	var buf bytes.Buffer
	err := CategoryPie(&buf, Size{}, []models.CategoryQuantity{
		{Category: "Furniture", Quantity: 8028},
		{Category: "Office Supplies", Quantity: 22906},
		{Category: "Technology", Quantity: 6939},
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestCategoryPie_NoQuantity(t *testing.T) {
	var buf bytes.Buffer
	err := CategoryPie(&buf, Size{}, []models.CategoryQuantity{{Category: "Furniture", Quantity: 0}})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestTopCitiesBar(t *testing.T) {
	var buf bytes.Buffer
	err := TopCitiesBar(&buf, Size{Width: 640, Height: 400}, []models.CityQuantity{
		{City: "New York City", Region: "East", Quantity: 3417},
		{City: "Los Angeles", Region: "West", Quantity: 2879},
		{City: "Philadelphia", Region: "East", Quantity: 1981},
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestTopCitiesBar_Empty(t *testing.T) {
	assert.Error(t, TopCitiesBar(&bytes.Buffer{}, Size{}, nil))
}

func TestSalesProfitScatter(t *testing.T) {
	var buf bytes.Buffer
	err := SalesProfitScatter(&buf, Size{}, []models.SalesProfitPoint{
		{OrderID: "A", Region: "South", Sales: 261.96, Profit: 41.91, Quantity: 2},
		{OrderID: "B", Region: "West", Sales: 14.62, Profit: 6.87, Quantity: 2},
		{OrderID: "C", Region: "South", Sales: 957.58, Profit: -383.03, Quantity: 5},
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestSalesProfitScatter_SinglePoint(t *testing.T) {
	var buf bytes.Buffer
	err := SalesProfitScatter(&buf, Size{}, []models.SalesProfitPoint{
		{OrderID: "A", Region: "Central", Sales: 300, Profit: 12.5, Quantity: 3},
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestPadRange(t *testing.T) {
	lo, hi := padRange(5, 5)
	assert.Equal(t, 4.0, lo)
	assert.Equal(t, 6.0, hi)

	lo, hi = padRange(0, 100)
	assert.Equal(t, -5.0, lo)
	assert.Equal(t, 105.0, hi)
}

func TestDotWidth(t *testing.T) {
	assert.Equal(t, minDotWidth, dotWidth(0, 10))
	assert.Equal(t, maxDotWidth, dotWidth(10, 10))
	assert.Equal(t, minDotWidth, dotWidth(3, 0))
}
