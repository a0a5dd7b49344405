package reporting

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tillpoint/tillpoint/internal/platform/httpx"
)

// PDFRenderer converts a rendered HTML document into PDF bytes.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Exporter writes a report in a downloadable representation.
type Exporter interface {
	WriteCSV(w http.ResponseWriter, r *http.Request, report Report, snapshot Snapshot) error
	WriteDocument(w http.ResponseWriter, r *http.Request, report Report, snapshot Snapshot, asPDF bool) error
}

// Handler serves the reporting JSON API plus the export endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	exporter Exporter
}

// NewHandler constructs the reporting handler. The exporter may be nil when
// exports are not mounted.
func NewHandler(logger *slog.Logger, service *Service, exporter Exporter) *Handler {
	return &Handler{logger: logger, service: service, exporter: exporter}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/sales", h.SalesReport)
	r.Get("/reports/dashboard", h.Dashboard)
	if h.exporter != nil {
		r.Get("/reports/export", h.Export)
		r.Get("/reports/print", h.Print)
		r.Get("/reports/pdf", h.PDF)
	}
}

// SalesReport returns the bucketed report for the query window.
func (h *Handler) SalesReport(w http.ResponseWriter, r *http.Request) {
	query, ok := h.parseQuery(w, r)
	if !ok {
		return
	}
	report, err := h.service.SalesReport(r.Context(), query)
	if err != nil {
		h.logger.Error("sales report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// Dashboard returns the store-wide statistics.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

// Export streams the report as a CSV attachment.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	report, snapshot, ok := h.buildExport(w, r)
	if !ok {
		return
	}
	if err := h.exporter.WriteCSV(w, r, report, snapshot); err != nil {
		h.logger.Error("csv export", slog.Any("error", err))
	}
}

// Print returns the report as a printable HTML page.
func (h *Handler) Print(w http.ResponseWriter, r *http.Request) {
	report, snapshot, ok := h.buildExport(w, r)
	if !ok {
		return
	}
	if err := h.exporter.WriteDocument(w, r, report, snapshot, false); err != nil {
		h.logger.Error("print document", slog.Any("error", err))
	}
}

// PDF renders the printable document through Gotenberg and streams the
// resulting PDF.
func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	report, snapshot, ok := h.buildExport(w, r)
	if !ok {
		return
	}
	if err := h.exporter.WriteDocument(w, r, report, snapshot, true); err != nil {
		h.logger.Error("pdf export", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", "the document renderer is unavailable")
	}
}

func (h *Handler) buildExport(w http.ResponseWriter, r *http.Request) (Report, Snapshot, bool) {
	query, ok := h.parseQuery(w, r)
	if !ok {
		return Report{}, Snapshot{}, false
	}
	snapshot, err := h.service.LoadSnapshot(r.Context(), query.From, query.To)
	if err != nil {
		h.logger.Error("load snapshot", slog.Any("error", err))
		httpx.RespondError(w, err)
		return Report{}, Snapshot{}, false
	}
	report := h.service.buildReport(snapshot, normalizeQuery(query))
	snapshot.Sales = FilterByCategory(snapshot.Sales, snapshot.Products, report.Category)
	return report, snapshot, true
}

func (h *Handler) parseQuery(w http.ResponseWriter, r *http.Request) (ReportQuery, bool) {
	q := r.URL.Query()
	query := ReportQuery{
		Category:    q.Get("category"),
		Granularity: Granularity(q.Get("granularity")),
	}
	if g := q.Get("granularity"); g != "" && !query.Granularity.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "granularity must be daily, weekly or monthly")
		return ReportQuery{}, false
	}
	if v := q.Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "top must be a non-negative integer")
			return ReportQuery{}, false
		}
		query.TopN = n
	}
	if v := q.Get("from"); v != "" {
		t, ok := parseDate(v, false)
		if !ok {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "from must be an RFC 3339 timestamp or calendar date")
			return ReportQuery{}, false
		}
		query.From = t
	}
	if v := q.Get("to"); v != "" {
		t, ok := parseDate(v, true)
		if !ok {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "to must be an RFC 3339 timestamp or calendar date")
			return ReportQuery{}, false
		}
		query.To = t
	}
	return query, true
}

func normalizeQuery(query ReportQuery) ReportQuery {
	if !query.Granularity.Valid() {
		query.Granularity = GranularityDaily
	}
	if query.Category == "" {
		query.Category = CategoryAll
	}
	return query
}

func parseDate(value string, endOfDay bool) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}
