package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dressly/storefront/internal/selection"
	apperrors "github.com/dressly/storefront/pkg/errors"
	"github.com/dressly/storefront/pkg/httputil"
)

// ProductHandler serves the product detail view.
type ProductHandler struct {
	selections *selection.Service
	logger     *slog.Logger
}

// NewProductHandler creates a product HTTP handler.
func NewProductHandler(selections *selection.Service, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		selections: selections,
		logger:     logger,
	}
}

// GetView handles GET /api/v1/products/{productID}/view. It returns the
// product, its resolved price, the option lists, and the caller's current
// selection state in one payload.
func (h *ProductHandler) GetView(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	owner, ok := ownerIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidInput("session owner is missing"), h.logger)
		return
	}

	view, err := h.selections.View(r.Context(), owner, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}
