package sales

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	sales []Sale
}

func (m *memoryRepo) Create(ctx context.Context, sale Sale) (Sale, error) {
	sale.ID = fmt.Sprintf("s%d", len(m.sales)+1)
	m.sales = append(m.sales, sale)
	return sale, nil
}

func (m *memoryRepo) Get(ctx context.Context, id string) (Sale, error) {
	for _, sale := range m.sales {
		if sale.ID == id {
			return sale, nil
		}
	}
	return Sale{}, ErrSaleNotFound
}

func (m *memoryRepo) GetAll(ctx context.Context) ([]Sale, error) {
	return m.sales, nil
}

func (m *memoryRepo) GetInRange(ctx context.Context, start, end time.Time) ([]Sale, error) {
	var out []Sale
	for _, sale := range m.sales {
		if !sale.Date.Before(start) && !sale.Date.After(end) {
			out = append(out, sale)
		}
	}
	return out, nil
}

func (m *memoryRepo) GenerateInvoiceNumber(ctx context.Context, date time.Time) (string, error) {
	return InvoiceNumber(date.Format("200601"), len(m.sales)+1), nil
}

func newTestRouter(repo Repository) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(logger, repo).MountRoutes(r)
	return r
}

func seedRepo() *memoryRepo {
	repo := &memoryRepo{}
	dates := []time.Time{
		time.Date(2026, time.August, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, time.August, 15, 10, 0, 0, 0, time.UTC),
		time.Date(2026, time.July, 20, 10, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		_, _ = repo.Create(context.Background(), Sale{
			InvoiceNumber: fmt.Sprintf("INV-%04d", i+1),
			TotalAmount:   float64(10 * (i + 1)),
			Date:          d,
		})
	}
	return repo
}

func TestListAllSales(t *testing.T) {
	router := newTestRouter(seedRepo())

	req := httptest.NewRequest(http.MethodGet, "/sales", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Sales []Sale `json:"sales"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Sales, 3)
}

func TestListSalesInRange(t *testing.T) {
	router := newTestRouter(seedRepo())

	req := httptest.NewRequest(http.MethodGet, "/sales?from=2026-08-01&to=2026-08-31", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Sales []Sale `json:"sales"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Sales, 2, "calendar dates cover the whole end day")
}

func TestListSalesIgnoresBadDates(t *testing.T) {
	router := newTestRouter(seedRepo())

	req := httptest.NewRequest(http.MethodGet, "/sales?from=yesterday&to=tomorrow", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Sales []Sale `json:"sales"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Sales, 3, "unparseable bounds fall back to the full list")
}

func TestShowSale(t *testing.T) {
	router := newTestRouter(seedRepo())

	req := httptest.NewRequest(http.MethodGet, "/sales/s1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var sale Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sale))
	assert.Equal(t, "INV-0001", sale.InvoiceNumber)
}

func TestShowSaleNotFound(t *testing.T) {
	router := newTestRouter(seedRepo())

	req := httptest.NewRequest(http.MethodGet, "/sales/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaleItemCount(t *testing.T) {
	sale := Sale{Items: []SaleItem{{Quantity: 2}, {Quantity: 3}}}
	assert.Equal(t, 5, sale.ItemCount())
	assert.Zero(t, Sale{}.ItemCount())
}
