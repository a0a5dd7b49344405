package export

import (
	"html/template"
	"io"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tillpoint/tillpoint/internal/reporting"
	"github.com/tillpoint/tillpoint/internal/sales"
)

// DocumentData feeds the printable report template.
type DocumentData struct {
	StoreName   string
	GeneratedAt time.Time
	Report      reporting.Report
	Sales       []sales.Sale
}

// DocumentRenderer produces the HTML used both for browser printing and as
// Gotenberg input.
type DocumentRenderer struct {
	tmpl      *template.Template
	formatter *message.Printer
	unit      currency.Unit
}

// NewDocumentRenderer builds a renderer for the given locale and ISO 4217
// currency code. Unknown inputs fall back to en / USD.
func NewDocumentRenderer(locale, currencyCode string) *DocumentRenderer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		unit = currency.USD
	}
	r := &DocumentRenderer{
		formatter: message.NewPrinter(tag),
		unit:      unit,
	}
	r.tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
		"money":    r.money,
		"date":     func(t time.Time) string { return t.Format("Jan 02, 2006") },
		"customer": customerLabel,
	}).Parse(reportTemplate))
	return r
}

func (r *DocumentRenderer) money(v float64) string {
	return r.formatter.Sprintf("%v", currency.NarrowSymbol(r.unit.Amount(v)))
}

// Render writes the printable HTML document for the report.
func (r *DocumentRenderer) Render(w io.Writer, data DocumentData) error {
	return r.tmpl.Execute(w, data)
}

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.StoreName}} - Sales Report</title>
<style>
body{font-family:sans-serif;margin:24px;color:#222;}
h1{font-size:20px;margin-bottom:4px;}
.meta{color:#666;font-size:12px;margin-bottom:20px;}
table{width:100%;border-collapse:collapse;margin-bottom:20px;}
th,td{border:1px solid #ddd;padding:6px;text-align:right;font-size:12px;}
th{text-align:left;background:#f5f5f5;}
td.label{text-align:left;}
section{margin-bottom:24px;}
@media print{body{margin:0;}}
</style>
</head>
<body>
<h1>{{.StoreName}}</h1>
<div class="meta">Sales Report &middot; generated {{date .GeneratedAt}}</div>

<section>
<h2>Summary</h2>
<table><tbody>
<tr><td class="label">Total Revenue</td><td>{{money .Report.TotalRevenue}}</td></tr>
<tr><td class="label">Transactions</td><td>{{.Report.TransactionCount}}</td></tr>
<tr><td class="label">Items Sold</td><td>{{.Report.ItemsSold}}</td></tr>
<tr><td class="label">Average Order Value</td><td>{{money .Report.AverageOrderValue}}</td></tr>
</tbody></table>
</section>

{{if .Report.Buckets}}
<section>
<h2>Sales by Period</h2>
<table>
<thead><tr><th>Period</th><th>Transactions</th><th>Items</th><th>Revenue</th></tr></thead>
<tbody>
{{range .Report.Buckets}}
<tr><td class="label">{{.PeriodLabel}}</td><td>{{.TransactionCount}}</td><td>{{.ItemCount}}</td><td>{{money .Total}}</td></tr>
{{end}}
</tbody></table>
</section>
{{end}}

{{if .Report.TopProducts}}
<section>
<h2>Top Products</h2>
<table>
<thead><tr><th>Product</th><th>Quantity Sold</th><th>Revenue</th></tr></thead>
<tbody>
{{range .Report.TopProducts}}
<tr><td class="label">{{.Name}}</td><td>{{.Quantity}}</td><td>{{money .Revenue}}</td></tr>
{{end}}
</tbody></table>
</section>
{{end}}

{{if .Sales}}
<section>
<h2>Transactions</h2>
<table>
<thead><tr><th>Date</th><th>Invoice</th><th>Customer</th><th>Items</th><th>Amount</th></tr></thead>
<tbody>
{{range .Sales}}
<tr><td class="label">{{date .Date}}</td><td class="label">{{.InvoiceNumber}}</td><td class="label">{{customer .CustomerName}}</td><td>{{.ItemCount}}</td><td>{{money .TotalAmount}}</td></tr>
{{end}}
</tbody></table>
</section>
{{end}}

</body>
</html>
`
