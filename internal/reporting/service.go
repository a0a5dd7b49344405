package reporting

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tillpoint/tillpoint/internal/catalog"
	"github.com/tillpoint/tillpoint/internal/sales"
)

// SalesReader is the read-only slice of the sales store the aggregator needs.
type SalesReader interface {
	GetAll(ctx context.Context) ([]sales.Sale, error)
	GetInRange(ctx context.Context, start, end time.Time) ([]sales.Sale, error)
}

// ProductReader resolves the product list for category filtering and
// dashboard counters.
type ProductReader interface {
	List(ctx context.Context, filters catalog.ListFilters) ([]catalog.Product, int, error)
}

// Snapshot is the in-memory view aggregation runs over. Loading it is the
// only suspension point; everything after is pure computation.
type Snapshot struct {
	Sales    []sales.Sale
	Products []catalog.Product
}

// ReportQuery scopes a sales report.
type ReportQuery struct {
	From        time.Time
	To          time.Time
	Category    string
	Granularity Granularity
	TopN        int
}

// Report is the aggregated output consumed by dashboards and exports.
type Report struct {
	Granularity       Granularity          `json:"granularity"`
	Category          string               `json:"category"`
	From              time.Time            `json:"from"`
	To                time.Time            `json:"to"`
	Buckets           []Bucket             `json:"buckets"`
	TotalRevenue      float64              `json:"total_revenue"`
	TransactionCount  int                  `json:"transaction_count"`
	ItemsSold         int                  `json:"items_sold"`
	AverageOrderValue float64              `json:"average_order_value"`
	TopProducts       []ProductPerformance `json:"top_products"`
}

// DashboardStats summarises the store for the landing dashboard.
type DashboardStats struct {
	TotalRevenue       float64 `json:"total_revenue"`
	TransactionCount   int     `json:"transaction_count"`
	ProductCount       int     `json:"product_count"`
	LowStockCount      int     `json:"low_stock_count"`
	AverageOrderValue  float64 `json:"average_order_value"`
	SalesGrowthPercent float64 `json:"sales_growth_percent"`
	UniqueCustomers    int     `json:"unique_customers"`
}

// Service coordinates aggregation over store snapshots with the cache layer.
type Service struct {
	sales             SalesReader
	products          ProductReader
	cache             *Cache
	lowStockThreshold int
	now               func() time.Time
}

// NewService wires the readers with a Cache helper.
func NewService(salesReader SalesReader, productReader ProductReader, cache *Cache, lowStockThreshold int) *Service {
	return &Service{
		sales:             salesReader,
		products:          productReader,
		cache:             cache,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

// LoadSnapshot fetches sales and products concurrently. Zero bounds load the
// full history.
func (s *Service) LoadSnapshot(ctx context.Context, from, to time.Time) (Snapshot, error) {
	var snapshot Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if from.IsZero() && to.IsZero() {
			snapshot.Sales, err = s.sales.GetAll(ctx)
		} else {
			snapshot.Sales, err = s.sales.GetInRange(ctx, rangeStart(from), rangeEnd(to))
		}
		return err
	})
	g.Go(func() error {
		var err error
		snapshot.Products, _, err = s.products.List(ctx, catalog.ListFilters{})
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snapshot, nil
}

// SalesReport builds the bucketed report for the query, served from cache
// when possible. Empty inputs yield zeroed metrics, never an error.
func (s *Service) SalesReport(ctx context.Context, query ReportQuery) (Report, error) {
	if !query.Granularity.Valid() {
		query.Granularity = GranularityDaily
	}
	if query.Category == "" {
		query.Category = CategoryAll
	}

	loader := func(ctx context.Context) (interface{}, error) {
		snapshot, err := s.LoadSnapshot(ctx, query.From, query.To)
		if err != nil {
			return nil, err
		}
		return s.buildReport(snapshot, query), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return Report{}, err
		}
		return value.(Report), nil
	}

	key, err := s.cache.BuildKey(ctx, "reporting", "sales",
		string(query.Granularity), query.Category,
		dateToken(query.From), dateToken(query.To), strconv.Itoa(query.TopN))
	if err != nil {
		return Report{}, err
	}
	var report Report
	if err := s.cache.FetchJSON(ctx, key, &report, loader); err != nil {
		return Report{}, err
	}
	return report, nil
}

// Dashboard computes the landing page statistics over the full history.
func (s *Service) Dashboard(ctx context.Context) (DashboardStats, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		snapshot, err := s.LoadSnapshot(ctx, time.Time{}, time.Time{})
		if err != nil {
			return nil, err
		}
		return s.buildDashboard(snapshot), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return DashboardStats{}, err
		}
		return value.(DashboardStats), nil
	}

	key, err := s.cache.BuildKey(ctx, "reporting", "dashboard")
	if err != nil {
		return DashboardStats{}, err
	}
	var stats DashboardStats
	if err := s.cache.FetchJSON(ctx, key, &stats, loader); err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}

func (s *Service) buildReport(snapshot Snapshot, query ReportQuery) Report {
	filtered := FilterByCategory(snapshot.Sales, snapshot.Products, query.Category)
	report := Report{
		Granularity:       query.Granularity,
		Category:          query.Category,
		From:              query.From,
		To:                query.To,
		Buckets:           BucketSales(filtered, query.Granularity, s.now()),
		TotalRevenue:      TotalRevenue(filtered),
		TransactionCount:  len(filtered),
		ItemsSold:         TotalItemsSold(filtered),
		AverageOrderValue: AverageOrderValue(filtered),
		TopProducts:       TopProducts(filtered, query.TopN),
	}
	return report
}

func (s *Service) buildDashboard(snapshot Snapshot) DashboardStats {
	now := s.now()
	currentStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	previousStart := currentStart.AddDate(0, -1, 0)

	var current, previous float64
	for _, sale := range snapshot.Sales {
		switch {
		case !sale.Date.Before(currentStart):
			current += sale.TotalAmount
		case !sale.Date.Before(previousStart):
			previous += sale.TotalAmount
		}
	}

	lowStock := 0
	for _, product := range snapshot.Products {
		if product.Stock < s.lowStockThreshold {
			lowStock++
		}
	}

	return DashboardStats{
		TotalRevenue:       TotalRevenue(snapshot.Sales),
		TransactionCount:   len(snapshot.Sales),
		ProductCount:       len(snapshot.Products),
		LowStockCount:      lowStock,
		AverageOrderValue:  AverageOrderValue(snapshot.Sales),
		SalesGrowthPercent: GrowthPercent(current, previous),
		UniqueCustomers:    UniqueCustomers(snapshot.Sales),
	}
}

func rangeStart(from time.Time) time.Time {
	if from.IsZero() {
		return time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return from
}

func rangeEnd(to time.Time) time.Time {
	if to.IsZero() {
		return time.Now().UTC().AddDate(0, 0, 1)
	}
	return to
}

func dateToken(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
