package reporting

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlerRouter(t *testing.T, exporter Exporter) http.Handler {
	t.Helper()
	salesReader := &mockSalesReader{sales: fixtureSales()}
	productReader := &mockProductReader{products: fixtureProducts()}
	svc, _ := newTestService(t, salesReader, productReader)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(logger, svc, exporter).MountRoutes(r)
	return r
}

func TestHandlerSalesReport(t *testing.T) {
	router := newHandlerRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/reports/sales?granularity=monthly&top=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, GranularityMonthly, report.Granularity)
	assert.Len(t, report.TopProducts, 1)
}

func TestHandlerSalesReportBadGranularity(t *testing.T) {
	router := newHandlerRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/reports/sales?granularity=hourly", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerSalesReportBadDates(t *testing.T) {
	router := newHandlerRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/reports/sales?from=lastweek", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerDashboard(t *testing.T) {
	router := newHandlerRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/reports/dashboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var stats DashboardStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.TransactionCount)
}

func TestHandlerExportRoutesNeedExporter(t *testing.T) {
	router := newHandlerRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/reports/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type captureExporter struct {
	report   Report
	snapshot Snapshot
	csvCalls int
	docCalls int
	asPDF    bool
}

func (c *captureExporter) WriteCSV(w http.ResponseWriter, r *http.Request, report Report, snapshot Snapshot) error {
	c.csvCalls++
	c.report = report
	c.snapshot = snapshot
	w.WriteHeader(http.StatusOK)
	return nil
}

func (c *captureExporter) WriteDocument(w http.ResponseWriter, r *http.Request, report Report, snapshot Snapshot, asPDF bool) error {
	c.docCalls++
	c.asPDF = asPDF
	w.WriteHeader(http.StatusOK)
	return nil
}

func TestHandlerExportPassesFilteredSnapshot(t *testing.T) {
	exporter := &captureExporter{}
	router := newHandlerRouter(t, exporter)

	req := httptest.NewRequest(http.MethodGet, "/reports/export?category=Merchandise", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, exporter.csvCalls)
	assert.Equal(t, "Merchandise", exporter.report.Category)
	require.Len(t, exporter.snapshot.Sales, 1, "export rows match the category filter")
	assert.Equal(t, "s2", exporter.snapshot.Sales[0].ID)
}

func TestHandlerPrintAndPDF(t *testing.T) {
	exporter := &captureExporter{}
	router := newHandlerRouter(t, exporter)

	req := httptest.NewRequest(http.MethodGet, "/reports/print", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, exporter.asPDF)

	req = httptest.NewRequest(http.MethodGet, "/reports/pdf", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, 2, exporter.docCalls)
	assert.True(t, exporter.asPDF)
}

func TestParseDateEndOfDay(t *testing.T) {
	ts, ok := parseDate("2026-08-10", true)
	require.True(t, ok)
	assert.Equal(t, 10, ts.Day())
	assert.Equal(t, 23, ts.Hour())

	_, ok = parseDate("not a date", false)
	assert.False(t, ok)

	ts, ok = parseDate("2026-08-10T09:30:00Z", false)
	require.True(t, ok)
	assert.Equal(t, 9, ts.Hour())
}
