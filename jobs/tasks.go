// Package jobs defines the background task types and the Asynq worker that
// processes them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStockReconcile repairs stock levels after a checkout recorded a
	// sale but could not apply every decrement.
	TaskStockReconcile = "pos:stock_reconcile"
	// TaskReportWarmup pre-populates the reporting caches.
	TaskReportWarmup = "reporting:warmup"
	// TaskIdempotencyCleanup drops idempotency keys past their retention
	// window.
	TaskIdempotencyCleanup = "shared:idempotency_cleanup"
)

// ReconcileItem is one pending stock adjustment from a recorded sale.
type ReconcileItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Reason      string `json:"reason"`
}

// StockReconcilePayload carries the sale whose stock writes need repair.
type StockReconcilePayload struct {
	SaleID string          `json:"sale_id"`
	Items  []ReconcileItem `json:"items"`
}

// NewStockReconcileTask constructs the reconcile task.
func NewStockReconcileTask(payload StockReconcilePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockReconcile, data, asynq.MaxRetry(10)), nil
}

// NewReportWarmupTask constructs the cache warmup task.
func NewReportWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskReportWarmup, nil, asynq.MaxRetry(2))
}

// NewIdempotencyCleanupTask constructs the key retention task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil, asynq.MaxRetry(1))
}
