package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"superstore-dashboard/internal/dataset"
	"superstore-dashboard/internal/models"
)

func records() []models.OrderRecord {
	return []models.OrderRecord{
		{
			OrderID:     "CA-2016-152156",
			OrderDate:   time.Date(2016, 11, 8, 0, 0, 0, 0, time.UTC),
			ShipDate:    time.Date(2016, 11, 11, 0, 0, 0, 0, time.UTC),
			Category:    "Furniture",
			Segment:     "Consumer",
			Region:      "South",
			City:        "Henderson",
			ShipMode:    "Second Class",
			ProductName: "Bush Somerset Collection Bookcase, Fully Assembled",
			Sales:       decimal.RequireFromString("261.96"),
			Profit:      decimal.RequireFromString("-41.9136"),
			Quantity:    2,
		},
	}
}

func TestFor(t *testing.T) {
	e, ok := For(FormatExcel)
	require.True(t, ok)
	assert.Equal(t, ".xlsx", e.FileExtension())

	e, ok = For(FormatCSV)
	require.True(t, ok)
	assert.Equal(t, ".csv", e.FileExtension())

	e, ok = For(FormatPDF)
	require.True(t, ok)
	assert.Equal(t, "application/pdf", e.ContentType())

	_, ok = For("docx")
	assert.False(t, ok)
}

func TestCSVExporter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVExporter().Export(&buf, records()))

	loaded, err := dataset.NewLoader(nil).Read(context.Background(), &buf)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, records()[0].OrderID, loaded[0].OrderID)
	assert.Equal(t, records()[0].ProductName, loaded[0].ProductName)
	assert.True(t, records()[0].Profit.Equal(loaded[0].Profit))
	assert.Equal(t, records()[0].OrderDate, loaded[0].OrderDate)
}

func TestExcelExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelExporter().Export(&buf, records()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, "CA-2016-152156", rows[1][0])
	assert.Equal(t, "2016-11-08", rows[1][1])
	assert.Equal(t, "Henderson", rows[1][6])
	assert.Equal(t, "2", rows[1][11])
}

func TestExcelExporter_NoRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelExporter().Export(&buf, nil))
	assert.NotZero(t, buf.Len())
}

func TestPDFExporter(t *testing.T) {
	many := make([]models.OrderRecord, 0, 120)
	for range 120 {
		many = append(many, records()...)
	}

	var buf bytes.Buffer
	require.NoError(t, NewPDFExporter().Export(&buf, many))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	// 120 rows do not fit on one landscape page.
	assert.Greater(t, bytes.Count(out, []byte("/Type /Page\n")), 1)
}

func TestPDFExporter_NoRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPDFExporter().Export(&buf, nil))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
