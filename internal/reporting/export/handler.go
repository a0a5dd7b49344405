package export

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/tillpoint/tillpoint/internal/platform/httpx"
	"github.com/tillpoint/tillpoint/internal/reporting"
)

// HTTPExporter writes reports to HTTP responses as CSV attachments,
// printable HTML or Gotenberg-rendered PDFs.
type HTTPExporter struct {
	StoreName string
	Renderer  *DocumentRenderer
	PDF       reporting.PDFRenderer
	Now       func() time.Time
}

func (e *HTTPExporter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// WriteCSV streams the report at the level given by the "level" query
// parameter (basic when absent).
func (e *HTTPExporter) WriteCSV(w http.ResponseWriter, r *http.Request, report reporting.Report, snapshot reporting.Snapshot) error {
	level := Level(r.URL.Query().Get("level"))
	if level == "" {
		level = LevelBasic
	}
	if !level.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "level must be basic, detailed or comprehensive")
		return nil
	}

	filename := fmt.Sprintf("sales-report-%s.csv", e.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return WriteSalesCSV(w, level, snapshot.Sales, report)
}

// WriteDocument renders the printable report, either directly as HTML or
// converted to PDF.
func (e *HTTPExporter) WriteDocument(w http.ResponseWriter, r *http.Request, report reporting.Report, snapshot reporting.Snapshot, asPDF bool) error {
	data := DocumentData{
		StoreName:   e.StoreName,
		GeneratedAt: e.now(),
		Report:      report,
		Sales:       snapshot.Sales,
	}

	if !asPDF {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		return e.Renderer.Render(w, data)
	}

	if e.PDF == nil {
		httpx.Problem(w, http.StatusNotImplemented, "Not Implemented", "PDF rendering is not configured")
		return nil
	}
	var buf bytes.Buffer
	if err := e.Renderer.Render(&buf, data); err != nil {
		return err
	}
	pdf, err := e.PDF.RenderHTML(r.Context(), buf.String())
	if err != nil {
		return err
	}
	filename := fmt.Sprintf("sales-report-%s.pdf", e.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, err = w.Write(pdf)
	return err
}
