package pos

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tillpoint/tillpoint/internal/catalog"
	"github.com/tillpoint/tillpoint/internal/sales"
	"github.com/tillpoint/tillpoint/internal/shared"
)

// ErrSalePersist indicates the sale write itself failed. No stock was touched
// and the cart is intact, so the caller may retry.
var ErrSalePersist = errors.New("pos: sale could not be persisted")

// FailedStockItem names a product whose stock decrement did not apply after
// the sale was persisted.
type FailedStockItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Reason      string `json:"reason"`
}

// PartialStockError reports a persisted sale whose stock decrements partially
// failed. Retrying the checkout would double-charge stock for the items that
// did apply, so the error carries everything needed for reconciliation.
type PartialStockError struct {
	SaleID string
	Failed []FailedStockItem
}

func (e *PartialStockError) Error() string {
	ids := make([]string, len(e.Failed))
	for i, item := range e.Failed {
		ids[i] = item.ProductID
	}
	return fmt.Sprintf("pos: sale %s persisted but stock not decremented for %s", e.SaleID, strings.Join(ids, ", "))
}

// CheckoutResult is the structured outcome of a commit. FailedItems is empty
// on full success.
type CheckoutResult struct {
	Sale        sales.Sale        `json:"sale"`
	FailedItems []FailedStockItem `json:"failed_items,omitempty"`
}

// CheckoutInput carries per-commit options.
type CheckoutInput struct {
	CustomerName   string
	IdempotencyKey string
}

// CatalogPort is the slice of the catalog the checkout needs.
type CatalogPort interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
	DecrementStock(ctx context.Context, id string, qty int) error
}

// SalesPort is the slice of the sales store the checkout needs.
type SalesPort interface {
	Create(ctx context.Context, sale sales.Sale) (sales.Sale, error)
	GenerateInvoiceNumber(ctx context.Context, date time.Time) (string, error)
}

// ReconcilePort schedules out-of-band stock repair after a partial failure.
type ReconcilePort interface {
	EnqueueStockReconcile(ctx context.Context, saleID string, items []FailedStockItem) error
}

// ReportInvalidator bumps cached report versions once a sale is persisted.
type ReportInvalidator interface {
	Bump(ctx context.Context) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// MetricsPort counts checkout outcomes.
type MetricsPort interface {
	ObserveCheckout(outcome string)
	ObserveStockFailure()
}

// IdempotencyPort guards against replayed commits.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Checkout converts a non-empty cart into a durable sale plus stock
// decrements. The sale write is the point of no return: it is ordered
// strictly before any stock update, and the decrements are applied
// independently afterwards as a saga with per-item tracking.
type Checkout struct {
	catalog     CatalogPort
	sales       SalesPort
	reconciler  ReconcilePort
	audit       AuditPort
	idempotency IdempotencyPort
	metrics     MetricsPort
	reports     ReportInvalidator
}

// NewCheckout builds the checkout processor.
func NewCheckout(catalogPort CatalogPort, salesPort SalesPort, reconciler ReconcilePort, audit AuditPort, idem IdempotencyPort, metrics MetricsPort) *Checkout {
	return &Checkout{
		catalog:     catalogPort,
		sales:       salesPort,
		reconciler:  reconciler,
		audit:       audit,
		idempotency: idem,
		metrics:     metrics,
	}
}

// WithReportInvalidator registers a cache invalidator called after every
// persisted sale. Invalidation is best effort.
func (c *Checkout) WithReportInvalidator(inv ReportInvalidator) *Checkout {
	c.reports = inv
	return c
}

// Commit runs the checkout saga. On full success the cart is cleared and the
// persisted sale returned. Validation failures and a failed sale write leave
// the cart intact with no side effects. When the sale write succeeds but some
// decrements fail, the cart is still cleared (the sale happened), the result
// carries the failed items, and the returned error is a *PartialStockError.
func (c *Checkout) Commit(ctx context.Context, cart *Cart, input CheckoutInput) (CheckoutResult, error) {
	if cart == nil || len(cart.Items) == 0 {
		c.observe("rejected")
		return CheckoutResult{}, ErrEmptyCart
	}

	idemKey := ""
	if input.IdempotencyKey != "" && c.idempotency != nil {
		idemKey = "pos:checkout:" + input.IdempotencyKey
		if err := c.idempotency.CheckAndInsert(ctx, idemKey, "pos"); err != nil {
			c.observe("rejected")
			return CheckoutResult{}, err
		}
	}

	// Revalidate every snapshot against the authoritative catalog before any
	// write; the add-time snapshot may have gone stale.
	for _, item := range cart.Items {
		live, err := c.catalog.Get(ctx, item.Product.ID)
		if err != nil {
			c.releaseKey(ctx, idemKey)
			c.observe("rejected")
			return CheckoutResult{}, fmt.Errorf("pos: revalidate %s: %w", item.Product.ID, err)
		}
		if item.Quantity > live.Stock {
			c.releaseKey(ctx, idemKey)
			c.observe("rejected")
			return CheckoutResult{}, fmt.Errorf("%w: %s has %d left, cart wants %d", ErrStockExceeded, live.Name, live.Stock, item.Quantity)
		}
	}

	now := time.Now().UTC()
	invoice, err := c.sales.GenerateInvoiceNumber(ctx, now)
	if err != nil {
		c.releaseKey(ctx, idemKey)
		c.observe("failed")
		return CheckoutResult{}, fmt.Errorf("%w: %v", ErrSalePersist, err)
	}

	sale := sales.Sale{
		InvoiceNumber: invoice,
		CustomerName:  input.CustomerName,
		Date:          now,
	}
	var totalAmount float64
	for _, item := range cart.Items {
		lineTotal := round2(item.Product.Price * float64(item.Quantity))
		sale.Items = append(sale.Items, sales.SaleItem{
			ProductID:   item.Product.ID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			Price:       item.Product.Price,
			Total:       lineTotal,
		})
		totalAmount += lineTotal
	}
	sale.TotalAmount = totalAmount

	persisted, err := c.sales.Create(ctx, sale)
	if err != nil {
		c.releaseKey(ctx, idemKey)
		c.observe("failed")
		return CheckoutResult{}, fmt.Errorf("%w: %v", ErrSalePersist, err)
	}

	// Point of no return. Decrements run sequentially in cart order, each
	// applied independently; a failure is tracked, never retried inline.
	var failed []FailedStockItem
	for _, item := range cart.Items {
		if err := c.catalog.DecrementStock(ctx, item.Product.ID, item.Quantity); err != nil {
			if c.metrics != nil {
				c.metrics.ObserveStockFailure()
			}
			failed = append(failed, FailedStockItem{
				ProductID:   item.Product.ID,
				ProductName: item.Product.Name,
				Quantity:    item.Quantity,
				Reason:      err.Error(),
			})
		}
	}

	// The sale exists either way; a retried commit would double-sell.
	cart.Clear()
	if c.reports != nil {
		_ = c.reports.Bump(ctx)
	}

	result := CheckoutResult{Sale: persisted, FailedItems: failed}
	if len(failed) > 0 {
		if c.reconciler != nil {
			if err := c.reconciler.EnqueueStockReconcile(ctx, persisted.ID, failed); err != nil {
				c.recordAudit(ctx, persisted, "pos:reconcile_enqueue_failed", map[string]any{"error": err.Error()})
			}
		}
		c.recordAudit(ctx, persisted, "pos:checkout_partial", map[string]any{"failed_items": len(failed)})
		c.observe("partial")
		return result, &PartialStockError{SaleID: persisted.ID, Failed: failed}
	}

	c.recordAudit(ctx, persisted, "pos:checkout", map[string]any{"total": persisted.TotalAmount, "items": len(persisted.Items)})
	c.observe("success")
	return result, nil
}

func (c *Checkout) releaseKey(ctx context.Context, key string) {
	if key == "" || c.idempotency == nil {
		return
	}
	_ = c.idempotency.Delete(ctx, key)
}

func (c *Checkout) observe(outcome string) {
	if c.metrics != nil {
		c.metrics.ObserveCheckout(outcome)
	}
}

func (c *Checkout) recordAudit(ctx context.Context, sale sales.Sale, action string, meta map[string]any) {
	if c.audit == nil {
		return
	}
	_ = c.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "sale",
		EntityID: sale.ID,
		Meta:     meta,
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
