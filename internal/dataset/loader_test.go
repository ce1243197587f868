package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Row ID,Order ID,Order Date,Ship Date,Ship Mode,Customer ID,Segment,Country,City,State,Region,Product ID,Category,Sub-Category,Product Name,Sales,Quantity,Discount,Profit"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_Load(t *testing.T) {
	csv := header + "\n" +
		`1,CA-2016-152156,11/8/2016,11/11/2016,Second Class,CG-12520,Consumer,United States,Henderson,Kentucky,South,FUR-BO-10001798,Furniture,Bookcases,"Bush Somerset Collection Bookcase",261.96,2,0,41.9136` + "\n" +
		`2,CA-2016-138688,2016-06-12,2016-06-16,Second Class,DV-13045,Corporate,United States,Los Angeles,California,West,OFF-LA-10000240,Office Supplies,Labels,"Self-Adhesive Address Labels, Typewriters",14.62,2,0,6.8714` + "\n"

	records, err := NewLoader(nil).Load(context.Background(), writeCSV(t, csv))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "CA-2016-152156", first.OrderID)
	assert.Equal(t, time.Date(2016, 11, 8, 0, 0, 0, 0, time.UTC), first.OrderDate)
	assert.Equal(t, time.Date(2016, 11, 11, 0, 0, 0, 0, time.UTC), first.ShipDate)
	assert.Equal(t, "Furniture", first.Category)
	assert.Equal(t, "Consumer", first.Segment)
	assert.Equal(t, "South", first.Region)
	assert.Equal(t, "Henderson", first.City)
	assert.Equal(t, "Second Class", first.ShipMode)
	assert.Equal(t, "Bush Somerset Collection Bookcase", first.ProductName)
	assert.True(t, decimal.RequireFromString("261.96").Equal(first.Sales))
	assert.True(t, decimal.RequireFromString("41.9136").Equal(first.Profit))
	assert.Equal(t, 2, first.Quantity)

	second := records[1]
	assert.Equal(t, "Self-Adhesive Address Labels, Typewriters", second.ProductName)
	assert.Equal(t, time.Date(2016, 6, 12, 0, 0, 0, 0, time.UTC), second.OrderDate)
}

func TestLoader_PreservesOrderAcrossBatches(t *testing.T) {
	var b strings.Builder
	b.WriteString("Order ID,Order Date,Ship Date,Category,Segment,Region,City,Ship Mode,Product Name,Sales,Profit,Quantity\n")
	const n = batchSize + 250
	for i := range n {
		b.WriteString("O")
		b.WriteString(strings.Repeat("x", i%3))
		b.WriteString(",2020-01-01,2020-01-02,Furniture,Consumer,West,Seattle,Standard Class,Chair,10,1,")
		b.WriteString(string(rune('1' + i%9)))
		b.WriteString("\n")
	}

	records, err := NewLoader(nil).Read(context.Background(), strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Len(t, records, n)
	for i, r := range records {
		if r.Quantity != i%9+1 {
			t.Fatalf("record %d out of order: quantity %d", i, r.Quantity)
		}
	}
}

func TestLoader_LenientNumbers(t *testing.T) {
	csv := "Order ID,Order Date,Ship Date,Category,Segment,Region,City,Ship Mode,Product Name,Sales,Profit,Quantity\n" +
		"A,2020-01-01,2020-01-02,Furniture,Consumer,West,Seattle,Standard Class,Chair,n/a,,x\n"

	records, err := NewLoader(nil).Read(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Sales.IsZero())
	assert.True(t, records[0].Profit.IsZero())
	assert.Equal(t, 0, records[0].Quantity)
}

func TestLoader_Failures(t *testing.T) {
	const cols = "Order ID,Order Date,Ship Date,Category,Segment,Region,City,Ship Mode,Product Name,Sales,Profit,Quantity"

	tests := []struct {
		name    string
		csv     string
		wantErr error
	}{
		{name: "empty file", csv: "", wantErr: ErrEmptyFile},
		{name: "header only", csv: cols + "\n", wantErr: ErrNoRecords},
		{name: "missing column", csv: "Order ID,Order Date\nA,2020-01-01\n", wantErr: ErrMissingColumn},
		{name: "bad order date", csv: cols + "\nA,someday,2020-01-02,F,C,W,S,M,P,1,1,1\n"},
		{name: "bad ship date", csv: cols + "\nA,2020-01-01,,F,C,W,S,M,P,1,1,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(nil).Load(context.Background(), writeCSV(t, tt.csv))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_HeaderMatching(t *testing.T) {
	csv := "\ufefforder id, ORDER DATE ,ship date,category,segment,region,city,ship mode,product name,sales,profit,quantity\n" +
		"A,2020-01-01,2020-01-02,Furniture,Consumer,West,Seattle,Standard Class,Chair,10,1,4\n"

	records, err := NewLoader(nil).Read(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, "A", records[0].OrderID)
	assert.Equal(t, 4, records[0].Quantity)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2017, 3, 9, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"2017-03-09", "3/9/2017", "03/09/2017", "3-9-2017", "2017/3/9", "2017-03-09 14:22:00", "2017-03-09T08:00:00Z"} {
		t.Run(in, func(t *testing.T) {
			got, err := ParseDate(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := ParseDate("09.03.2017")
	assert.Error(t, err)
}
