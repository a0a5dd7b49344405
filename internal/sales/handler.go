package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tillpoint/tillpoint/internal/platform/httpx"
)

// Handler serves the read-only sales JSON API.
type Handler struct {
	logger *slog.Logger
	repo   Repository
}

// NewHandler constructs the sales handler.
func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/sales", h.List)
	r.Get("/sales/{id}", h.Show)
}

// List returns all sales, optionally bounded by from/to query dates
// (RFC 3339 or calendar dates).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, okFrom := parseDate(q.Get("from"), false)
	to, okTo := parseDate(q.Get("to"), true)

	var (
		result []Sale
		err    error
	)
	if okFrom && okTo {
		result, err = h.repo.GetInRange(r.Context(), from, to)
	} else {
		result, err = h.repo.GetAll(r.Context())
	}
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if result == nil {
		result = []Sale{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sales": result})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	sale, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrSaleNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("show sale", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func parseDate(value string, endOfDay bool) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
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
