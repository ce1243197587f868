// Package export writes the filtered dataset to downloadable files.
package export

import (
	"io"
	"strconv"
	"time"

	"superstore-dashboard/internal/models"
)

type Format string

const (
	FormatExcel Format = "xlsx"
	FormatCSV   Format = "csv"
	FormatPDF   Format = "pdf"
)

// Exporter writes order records in one file format.
type Exporter interface {
	Export(w io.Writer, records []models.OrderRecord) error
	ContentType() string
	FileExtension() string
}

// For returns the exporter for format, or false if it is unknown.
func For(format Format) (Exporter, bool) {
	switch format {
	case FormatExcel:
		return NewExcelExporter(), true
	case FormatCSV:
		return NewCSVExporter(), true
	case FormatPDF:
		return NewPDFExporter(), true
	default:
		return nil, false
	}
}

// Headers matches the column names the loader reads, so exports can be loaded
// back as a dataset.
var Headers = []string{
	"Order ID", "Order Date", "Ship Date", "Category", "Segment", "Region",
	"City", "Ship Mode", "Product Name", "Sales", "Profit", "Quantity",
}

func stringRow(r models.OrderRecord) []string {
	return []string{
		r.OrderID,
		r.OrderDate.Format(time.DateOnly),
		r.ShipDate.Format(time.DateOnly),
		r.Category,
		r.Segment,
		r.Region,
		r.City,
		r.ShipMode,
		r.ProductName,
		r.Sales.String(),
		r.Profit.String(),
		strconv.Itoa(r.Quantity),
	}
}
