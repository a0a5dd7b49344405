package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSaleNotFound indicates a missing sale row.
var ErrSaleNotFound = errors.New("sales: sale not found")

// Repository abstracts sale persistence. Sales are append-only: there are no
// update or delete operations.
type Repository interface {
	Create(ctx context.Context, sale Sale) (Sale, error)
	Get(ctx context.Context, id string) (Sale, error)
	GetAll(ctx context.Context) ([]Sale, error)
	GetInRange(ctx context.Context, start, end time.Time) ([]Sale, error)
	GenerateInvoiceNumber(ctx context.Context, date time.Time) (string, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed sales repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// Create persists the sale header and its items in a single transaction.
func (r *repository) Create(ctx context.Context, sale Sale) (Sale, error) {
	if len(sale.Items) == 0 {
		return Sale{}, errors.New("sales: sale requires at least one item")
	}
	sale.ID = uuid.NewString()
	now := time.Now().UTC()
	sale.CreatedAt = now
	if sale.Date.IsZero() {
		sale.Date = now
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return Sale{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO sales (id, invoice_number, customer_name, total_amount, sale_date, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		sale.ID, sale.InvoiceNumber, sale.CustomerName, sale.TotalAmount, sale.Date, sale.CreatedAt)
	if err != nil {
		return Sale{}, fmt.Errorf("sales: insert sale: %w", err)
	}

	for i, item := range sale.Items {
		_, err = tx.Exec(ctx, `INSERT INTO sale_items (sale_id, line_order, product_id, product_name, quantity, price, total)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sale.ID, i+1, item.ProductID, item.ProductName, item.Quantity, item.Price, item.Total)
		if err != nil {
			return Sale{}, fmt.Errorf("sales: insert sale item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Sale{}, fmt.Errorf("sales: commit: %w", err)
	}
	return sale, nil
}

func (r *repository) Get(ctx context.Context, id string) (Sale, error) {
	var sale Sale
	err := r.db.QueryRow(ctx, `SELECT id, invoice_number, customer_name, total_amount, sale_date, created_at FROM sales WHERE id = $1`, id).
		Scan(&sale.ID, &sale.InvoiceNumber, &sale.CustomerName, &sale.TotalAmount, &sale.Date, &sale.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, ErrSaleNotFound
	}
	if err != nil {
		return Sale{}, err
	}
	items, err := r.loadItems(ctx, []string{sale.ID})
	if err != nil {
		return Sale{}, err
	}
	sale.Items = items[sale.ID]
	return sale, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Sale, error) {
	return r.query(ctx, `SELECT id, invoice_number, customer_name, total_amount, sale_date, created_at FROM sales ORDER BY sale_date ASC`)
}

func (r *repository) GetInRange(ctx context.Context, start, end time.Time) ([]Sale, error) {
	return r.query(ctx, `SELECT id, invoice_number, customer_name, total_amount, sale_date, created_at FROM sales WHERE sale_date >= $1 AND sale_date <= $2 ORDER BY sale_date ASC`, start, end)
}

// GenerateInvoiceNumber allocates the next sequential invoice number for the
// sale's month, e.g. INV-202608-0042. The per-month counter row is advanced
// atomically, so concurrent checkouts never mint the same number.
func (r *repository) GenerateInvoiceNumber(ctx context.Context, date time.Time) (string, error) {
	period := date.Format("200601")
	var seq int
	err := r.db.QueryRow(ctx, `INSERT INTO invoice_counters (period, value) VALUES ($1, 1)
ON CONFLICT (period) DO UPDATE SET value = invoice_counters.value + 1
RETURNING value`, period).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("sales: generate invoice number: %w", err)
	}
	return InvoiceNumber(period, seq), nil
}

// InvoiceNumber formats a period token and sequence into the invoice scheme.
func InvoiceNumber(period string, seq int) string {
	return fmt.Sprintf("INV-%s-%04d", period, seq)
}

func (r *repository) query(ctx context.Context, sql string, args ...interface{}) ([]Sale, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Sale
	var ids []string
	for rows.Next() {
		var sale Sale
		if err := rows.Scan(&sale.ID, &sale.InvoiceNumber, &sale.CustomerName, &sale.TotalAmount, &sale.Date, &sale.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, sale)
		ids = append(ids, sale.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Sale{}, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Items = items[result[i].ID]
	}
	return result, nil
}

func (r *repository) loadItems(ctx context.Context, saleIDs []string) (map[string][]SaleItem, error) {
	rows, err := r.db.Query(ctx, `SELECT sale_id, product_id, product_name, quantity, price, total
FROM sale_items WHERE sale_id = ANY($1) ORDER BY sale_id, line_order ASC`, saleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]SaleItem, len(saleIDs))
	for rows.Next() {
		var saleID string
		var item SaleItem
		if err := rows.Scan(&saleID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price, &item.Total); err != nil {
			return nil, err
		}
		items[saleID] = append(items[saleID], item)
	}
	return items, rows.Err()
}
