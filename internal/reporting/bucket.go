package reporting

import (
	"fmt"
	"sort"
	"time"

	"github.com/tillpoint/tillpoint/internal/sales"
)

// Granularity selects the time bucket size for aggregation.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// Valid reports whether the granularity is one of the supported values.
func (g Granularity) Valid() bool {
	switch g {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
		return true
	}
	return false
}

// Bucket is one aggregated time period. It is created fresh per call and
// never persisted.
type Bucket struct {
	Key              string  `json:"key"`
	PeriodLabel      string  `json:"period_label"`
	Total            float64 `json:"total"`
	TransactionCount int     `json:"transaction_count"`
	ItemCount        int     `json:"item_count"`
	IsCurrentPeriod  bool    `json:"is_current_period"`
}

// BucketSales groups sales into time buckets of the given granularity,
// emitted in ascending period order. The weekly bucket is a day-of-month
// segment (week N = days 7N-6..7N), not an ISO-8601 week.
func BucketSales(saleList []sales.Sale, granularity Granularity, now time.Time) []Bucket {
	if len(saleList) == 0 {
		return []Bucket{}
	}

	nowKey := bucketKey(now, granularity)
	byKey := make(map[string]*Bucket)
	for _, sale := range saleList {
		key := bucketKey(sale.Date, granularity)
		bucket, ok := byKey[key]
		if !ok {
			bucket = &Bucket{
				Key:             key,
				PeriodLabel:     bucketLabel(sale.Date, granularity),
				IsCurrentPeriod: key == nowKey,
			}
			byKey[key] = bucket
		}
		bucket.Total += sale.TotalAmount
		bucket.TransactionCount++
		bucket.ItemCount += sale.ItemCount()
	}

	buckets := make([]Bucket, 0, len(byKey))
	for _, bucket := range byKey {
		buckets = append(buckets, *bucket)
	}
	// Keys are built so lexicographic order equals period order.
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}

func bucketKey(t time.Time, granularity Granularity) string {
	switch granularity {
	case GranularityWeekly:
		return fmt.Sprintf("%s-W%d", t.Format("2006-01"), weekOfMonth(t))
	case GranularityMonthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

func bucketLabel(t time.Time, granularity Granularity) string {
	switch granularity {
	case GranularityWeekly:
		return fmt.Sprintf("Week %d, %s", weekOfMonth(t), t.Format("Jan"))
	case GranularityMonthly:
		return t.Format("Jan 2006")
	default:
		return t.Format("Jan 02")
	}
}

func weekOfMonth(t time.Time) int {
	return (t.Day() + 6) / 7
}
