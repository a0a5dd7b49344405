package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/tillpoint/tillpoint/internal/catalog"
	"github.com/tillpoint/tillpoint/internal/shared"
)

// StockReconcileJob repairs stock levels for sales whose checkout could not
// apply every decrement. The sale is already durable, so the job keeps
// retrying until each product's stock reflects it.
type StockReconcileJob struct {
	Catalog catalog.Repository
	Audit   *shared.AuditLogger
	Logger  *slog.Logger
}

// Handle processes TaskStockReconcile tasks. Items whose product vanished are
// skipped; items still short of stock clamp the level to zero, since the
// goods left the store regardless.
func (j *StockReconcileJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Catalog == nil {
		return errors.New("stock reconcile: handler not configured")
	}
	var payload StockReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("stock reconcile: %w", asynq.SkipRetry)
	}

	logger := j.logger().With(slog.String("sale_id", payload.SaleID))
	logger.Info("starting stock reconcile", slog.Int("items", len(payload.Items)))

	var unresolved []ReconcileItem
	for _, item := range payload.Items {
		if err := j.reconcileItem(ctx, item); err != nil {
			logger.Warn("reconcile item",
				slog.String("product_id", item.ProductID),
				slog.Any("error", err))
			unresolved = append(unresolved, item)
		}
	}

	if j.Audit != nil {
		_ = j.Audit.Record(ctx, shared.AuditLog{
			Actor:    "worker",
			Action:   "pos:stock_reconciled",
			Entity:   "sale",
			EntityID: payload.SaleID,
			Meta: map[string]any{
				"items":      len(payload.Items),
				"unresolved": len(unresolved),
			},
		})
	}

	if len(unresolved) > 0 {
		return fmt.Errorf("stock reconcile: %d of %d items unresolved", len(unresolved), len(payload.Items))
	}
	logger.Info("completed stock reconcile")
	return nil
}

func (j *StockReconcileJob) reconcileItem(ctx context.Context, item ReconcileItem) error {
	err := j.Catalog.DecrementStock(ctx, item.ProductID, item.Quantity)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalog.ErrProductNotFound):
		// Deleted since the sale; nothing left to adjust.
		return nil
	case errors.Is(err, catalog.ErrInsufficientStock):
		return j.Catalog.SetStock(ctx, item.ProductID, 0)
	default:
		return err
	}
}

func (j *StockReconcileJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskStockReconcile))
	}
	return slog.Default().With(slog.String("job", TaskStockReconcile))
}
