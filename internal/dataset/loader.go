package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"superstore-dashboard/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

var (
	ErrEmptyFile     = errors.New("empty file")
	ErrNoRecords     = errors.New("no records found")
	ErrMissingColumn = errors.New("missing required column")
)

// Column headers the loader binds to OrderRecord fields.
const (
	ColOrderID     = "Order ID"
	ColOrderDate   = "Order Date"
	ColShipDate    = "Ship Date"
	ColCategory    = "Category"
	ColSegment     = "Segment"
	ColRegion      = "Region"
	ColCity        = "City"
	ColShipMode    = "Ship Mode"
	ColProductName = "Product Name"
	ColSales       = "Sales"
	ColProfit      = "Profit"
	ColQuantity    = "Quantity"
)

var requiredColumns = []string{
	ColOrderID, ColOrderDate, ColShipDate, ColCategory, ColSegment, ColRegion,
	ColCity, ColShipMode, ColProductName, ColSales, ColProfit, ColQuantity,
}

var dateLayouts = []string{
	time.DateOnly,
	"1/2/2006",
	"1-2-2006",
	"2006/1/2",
	time.DateTime,
	time.RFC3339,
}

// schema maps each required column to its index in the file.
type schema map[string]int

func newSchema(header []string) (schema, error) {
	s := make(schema, len(requiredColumns))
	for i, name := range header {
		// Excel exports often carry a BOM on the first header cell.
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		for _, col := range requiredColumns {
			if strings.EqualFold(name, col) {
				if _, seen := s[col]; !seen {
					s[col] = i
				}
			}
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := s[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return s, nil
}

func (s schema) field(row []string, col string) string {
	idx := s[col]
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Loader reads order files into typed records.
type Loader struct {
	logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads the file at path. Any row whose order or ship date does not parse
// fails the whole load.
func (l *Loader) Load(ctx context.Context, path string) ([]models.OrderRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	return l.Read(ctx, file)
}

// Read parses CSV content with a header row from r.
func (l *Loader) Read(ctx context.Context, r io.Reader) ([]models.OrderRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := newSchema(header)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrNoRecords
	}

	records := make([]models.OrderRecord, len(rows))
	var lenient atomic.Int64

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		if err := l.processBatch(ctx, cols, rows, records, start, end, &lenient); err != nil {
			return nil, err
		}
	}

	if n := lenient.Load(); n > 0 {
		l.logger.Warn("numeric fields defaulted to zero", "fields", n)
	}

	return records, nil
}

func (l *Loader) processBatch(ctx context.Context, cols schema, rows [][]string,
	records []models.OrderRecord, start, end int, lenient *atomic.Int64) error {

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i := start; i < end; i++ {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			rec, defaulted, err := parseRecord(cols, rows[i])
			if err != nil {
				// +2: one for the header, one for 1-based line numbers.
				return fmt.Errorf("row %d: %w", i+2, err)
			}
			if defaulted > 0 {
				lenient.Add(int64(defaulted))
			}
			records[i] = rec
			return nil
		})
	}

	return g.Wait()
}

func parseRecord(cols schema, row []string) (models.OrderRecord, int, error) {
	orderDate, err := ParseDate(cols.field(row, ColOrderDate))
	if err != nil {
		return models.OrderRecord{}, 0, fmt.Errorf("order date: %w", err)
	}
	shipDate, err := ParseDate(cols.field(row, ColShipDate))
	if err != nil {
		return models.OrderRecord{}, 0, fmt.Errorf("ship date: %w", err)
	}

	defaulted := 0
	sales, ok := parseDecimal(cols.field(row, ColSales))
	if !ok {
		defaulted++
	}
	profit, ok := parseDecimal(cols.field(row, ColProfit))
	if !ok {
		defaulted++
	}
	quantity, err := strconv.Atoi(cols.field(row, ColQuantity))
	if err != nil {
		quantity = 0
		defaulted++
	}

	return models.OrderRecord{
		OrderID:     cols.field(row, ColOrderID),
		OrderDate:   orderDate,
		ShipDate:    shipDate,
		Category:    cols.field(row, ColCategory),
		Segment:     cols.field(row, ColSegment),
		Region:      cols.field(row, ColRegion),
		City:        cols.field(row, ColCity),
		ShipMode:    cols.field(row, ColShipMode),
		ProductName: cols.field(row, ColProductName),
		Sales:       sales,
		Profit:      profit,
		Quantity:    quantity,
	}, defaulted, nil
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseDate accepts the layouts the source files are known to use and returns
// the calendar day at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
