package pos

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tillpoint/tillpoint/internal/catalog"
	"github.com/tillpoint/tillpoint/internal/platform/httpx"
	"github.com/tillpoint/tillpoint/internal/shared"
)

const sessionCookie = "tillpoint_cart"

// ProductReader resolves catalog snapshots for cart additions.
type ProductReader interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
}

// Handler serves the cart and checkout JSON API.
type Handler struct {
	logger   *slog.Logger
	store    *CartStore
	products ProductReader
	checkout *Checkout
	validate *validator.Validate
}

// NewHandler constructs the POS handler.
func NewHandler(logger *slog.Logger, store *CartStore, products ProductReader, checkout *Checkout) *Handler {
	return &Handler{
		logger:   logger,
		store:    store,
		products: products,
		checkout: checkout,
		validate: validator.New(),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/cart", h.ShowCart)
	r.Delete("/cart", h.ClearCart)
	r.Post("/cart/items", h.AddItem)
	r.Put("/cart/items/{productID}", h.SetQuantity)
	r.Delete("/cart/items/{productID}", h.RemoveItem)
	r.Post("/checkout", h.Checkout)
}

// sessionID reads the cart cookie, minting a new session when absent.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (h *Handler) ShowCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.store.Load(r.Context(), h.sessionID(w, r))
	if err != nil {
		h.logger.Error("load cart", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cartView(cart))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	if err := h.store.Delete(r.Context(), sessionID); err != nil {
		h.logger.Error("clear cart", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	product, err := h.products.Get(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("resolve product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	h.mutateCart(w, r, func(cart *Cart) error {
		return cart.Add(product)
	})
}

func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	productID := chi.URLParam(r, "productID")
	h.mutateCart(w, r, func(cart *Cart) error {
		return cart.SetQuantity(productID, req.Quantity)
	})
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	h.mutateCart(w, r, func(cart *Cart) error {
		cart.Remove(productID)
		return nil
	})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
			return
		}
		if err := h.validate.Struct(req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
	}

	sessionID := h.sessionID(w, r)
	cart, err := h.store.Load(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("load cart", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	input := CheckoutInput{
		CustomerName:   req.CustomerName,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	}
	result, err := h.checkout.Commit(r.Context(), &cart, input)

	var partialErr *PartialStockError
	switch {
	case err == nil:
		if storeErr := h.store.Delete(r.Context(), sessionID); storeErr != nil {
			h.logger.Warn("discard cart after checkout", slog.Any("error", storeErr))
		}
		httpx.JSON(w, http.StatusCreated, result)
	case errors.As(err, &partialErr):
		// Completed with warning: the sale exists but stock needs repair.
		if storeErr := h.store.Delete(r.Context(), sessionID); storeErr != nil {
			h.logger.Warn("discard cart after checkout", slog.Any("error", storeErr))
		}
		h.logger.Warn("checkout partial stock failure",
			slog.String("sale_id", partialErr.SaleID),
			slog.Int("failed_items", len(partialErr.Failed)))
		httpx.JSON(w, http.StatusCreated, map[string]any{
			"sale":         result.Sale,
			"failed_items": result.FailedItems,
			"warning":      "sale recorded but some stock levels were not updated",
		})
	case errors.Is(err, ErrEmptyCart):
		httpx.Problem(w, http.StatusBadRequest, "Empty Cart", err.Error())
	case errors.Is(err, ErrStockExceeded):
		httpx.Problem(w, http.StatusConflict, "Stock Exceeded", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Duplicate Checkout", err.Error())
	case errors.Is(err, ErrSalePersist):
		h.logger.Error("checkout persistence failure", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Sale Not Recorded", "the sale could not be persisted; the cart is intact, retry later")
	default:
		h.logger.Error("checkout failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

// mutateCart loads, mutates and saves the session cart, mapping stock
// rejections to 409 with the cart untouched.
func (h *Handler) mutateCart(w http.ResponseWriter, r *http.Request, fn func(*Cart) error) {
	sessionID := h.sessionID(w, r)
	cart, err := h.store.Load(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("load cart", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if err := fn(&cart); err != nil {
		if errors.Is(err, ErrStockExceeded) {
			httpx.Problem(w, http.StatusConflict, "Stock Exceeded", err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	if err := h.store.Save(r.Context(), cart); err != nil {
		h.logger.Error("save cart", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cartView(cart))
}

func cartView(cart Cart) CartView {
	items := cart.Items
	if items == nil {
		items = []CartItem{}
	}
	return CartView{SessionID: cart.SessionID, Items: items, Total: cart.Total()}
}
