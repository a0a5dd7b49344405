package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/tillpoint/tillpoint/internal/reporting"
	"github.com/tillpoint/tillpoint/internal/sales"
)

// Level selects how much detail a CSV export carries.
type Level string

const (
	LevelBasic         Level = "basic"
	LevelDetailed      Level = "detailed"
	LevelComprehensive Level = "comprehensive"
)

// Valid reports whether the level is one of the supported values.
func (l Level) Valid() bool {
	switch l {
	case LevelBasic, LevelDetailed, LevelComprehensive:
		return true
	}
	return false
}

const defaultCustomer = "Walk-in Customer"

// WriteSalesCSV serialises the sale list at the requested level. The csv
// writer handles quoting, so product and customer names may contain commas.
func WriteSalesCSV(w io.Writer, level Level, saleList []sales.Sale, report reporting.Report) error {
	switch level {
	case LevelDetailed:
		return writeDetailed(w, saleList)
	case LevelComprehensive:
		return writeComprehensive(w, saleList, report)
	default:
		return writeBasic(w, saleList)
	}
}

func writeBasic(w io.Writer, saleList []sales.Sale) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Date", "Invoice", "Customer", "Items", "Amount"}); err != nil {
		return err
	}
	for _, sale := range saleList {
		if err := writer.Write([]string{
			sale.Date.Format("2006-01-02"),
			sale.InvoiceNumber,
			customerLabel(sale.CustomerName),
			strconv.Itoa(sale.ItemCount()),
			formatFloat(sale.TotalAmount),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeDetailed(w io.Writer, saleList []sales.Sale) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Date", "Invoice", "Customer", "Product", "Quantity", "Unit Price", "Total"}); err != nil {
		return err
	}
	for _, sale := range saleList {
		for _, item := range sale.Items {
			if err := writer.Write([]string{
				sale.Date.Format("2006-01-02"),
				sale.InvoiceNumber,
				customerLabel(sale.CustomerName),
				item.ProductName,
				strconv.Itoa(item.Quantity),
				formatFloat(item.Price),
				formatFloat(item.Total),
			}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeComprehensive(w io.Writer, saleList []sales.Sale, report reporting.Report) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	summary := [][]string{
		{"SALES REPORT SUMMARY"},
		{"Period", periodLabel(report.From, report.To)},
		{"Total Revenue", formatFloat(report.TotalRevenue)},
		{"Transactions", strconv.Itoa(report.TransactionCount)},
		{"Items Sold", strconv.Itoa(report.ItemsSold)},
		{"Average Order Value", formatFloat(report.AverageOrderValue)},
		{},
		{"SALES DETAILS"},
		{"Date", "Invoice", "Customer", "Items", "Amount"},
	}
	for _, record := range summary {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	for _, sale := range saleList {
		if err := writer.Write([]string{
			sale.Date.Format("2006-01-02"),
			sale.InvoiceNumber,
			customerLabel(sale.CustomerName),
			strconv.Itoa(sale.ItemCount()),
			formatFloat(sale.TotalAmount),
		}); err != nil {
			return err
		}
	}

	if err := writer.Write(nil); err != nil {
		return err
	}
	if err := writer.Write([]string{"PRODUCT PERFORMANCE"}); err != nil {
		return err
	}
	if err := writer.Write([]string{"Product ID", "Product Name", "Quantity Sold", "Revenue"}); err != nil {
		return err
	}
	// The performance table always covers every product in the sale list,
	// even when the report itself was built with a top-N limit.
	for _, product := range reporting.TopProducts(saleList, 0) {
		if err := writer.Write([]string{
			product.ProductID,
			product.Name,
			strconv.Itoa(product.Quantity),
			formatFloat(product.Revenue),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func periodLabel(from, to time.Time) string {
	return rangeDate(from) + " to " + rangeDate(to)
}

func rangeDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func customerLabel(name string) string {
	if name == "" {
		return defaultCustomer
	}
	return name
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
