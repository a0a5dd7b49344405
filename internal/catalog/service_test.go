package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/tillpoint/internal/shared"
)

type memoryRepo struct {
	products map[string]Product
	listed   ListFilters
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[string]Product)}
}

func (m *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	m.listed = filters
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		if filters.MaxStock != nil && p.Stock >= *filters.MaxStock {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(ctx context.Context, id string) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (m *memoryRepo) Create(ctx context.Context, product Product) (Product, error) {
	product.ID = uuid.NewString()
	m.products[product.ID] = product
	return product, nil
}

func (m *memoryRepo) Update(ctx context.Context, id string, product Product) error {
	if _, ok := m.products[id]; !ok {
		return ErrProductNotFound
	}
	product.ID = id
	m.products[id] = product
	return nil
}

func (m *memoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memoryRepo) SetStock(ctx context.Context, id string, stock int) error {
	p, ok := m.products[id]
	if !ok {
		return ErrProductNotFound
	}
	p.Stock = stock
	m.products[id] = p
	return nil
}

func (m *memoryRepo) DecrementStock(ctx context.Context, id string, qty int) error {
	p, ok := m.products[id]
	if !ok {
		return ErrProductNotFound
	}
	if p.Stock < qty {
		return ErrInsufficientStock
	}
	p.Stock -= qty
	m.products[id] = p
	return nil
}

type recordingAudit struct {
	actions []string
}

func (r *recordingAudit) Record(ctx context.Context, log shared.AuditLog) error {
	r.actions = append(r.actions, log.Action)
	return nil
}

func TestServiceCreateValidates(t *testing.T) {
	repo := newMemoryRepo()
	audit := &recordingAudit{}
	svc := NewService(repo, audit)
	ctx := context.Background()

	_, err := svc.Create(ctx, Product{Name: " ", Category: "Coffee", Price: 1})
	require.Error(t, err)

	_, err = svc.Create(ctx, Product{Name: "Beans", Category: "Coffee", Price: -1})
	require.Error(t, err)

	created, err := svc.Create(ctx, Product{Name: "Beans", Category: "Coffee", Price: 10, Stock: 5})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"catalog:create"}, audit.actions)
}

func TestServiceUpdateAndDelete(t *testing.T) {
	repo := newMemoryRepo()
	audit := &recordingAudit{}
	svc := NewService(repo, audit)
	ctx := context.Background()

	created, err := svc.Create(ctx, Product{Name: "Beans", Category: "Coffee", Price: 10, Stock: 5})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, created.ID, Product{Name: "Beans 1kg", Category: "Coffee", Price: 12}))
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beans 1kg", got.Name)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrProductNotFound)

	assert.Equal(t, []string{"catalog:create", "catalog:update", "catalog:delete"}, audit.actions)
}

func TestServiceUpdateMissingProduct(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	err := svc.Update(context.Background(), "missing", Product{Name: "X", Category: "Y"})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestServiceSetStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Product{Name: "Beans", Category: "Coffee", Price: 10, Stock: 5})
	require.NoError(t, err)

	require.Error(t, svc.SetStock(ctx, created.ID, -1))
	require.NoError(t, svc.SetStock(ctx, created.ID, 0))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Stock)
}

func TestServiceLowStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, Product{Name: "Scarce", Category: "Coffee", Price: 5, Stock: 2})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Product{Name: "Plenty", Category: "Coffee", Price: 5, Stock: 50})
	require.NoError(t, err)

	low, err := svc.LowStock(ctx, 10)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Scarce", low[0].Name)

	none, err := svc.LowStock(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
