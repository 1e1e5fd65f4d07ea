package http

import (
	"log/slog"
	"net/http"

	"github.com/dressly/storefront/internal/badge"
	apperrors "github.com/dressly/storefront/pkg/errors"
	"github.com/dressly/storefront/pkg/httputil"
)

// CartHandler serves cart-adjacent endpoints backed by the remote cart.
type CartHandler struct {
	counter *badge.Counter
	logger  *slog.Logger
}

// NewCartHandler creates a cart HTTP handler.
func NewCartHandler(counter *badge.Counter, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		counter: counter,
		logger:  logger,
	}
}

// CountResponse is the cart badge payload.
type CountResponse struct {
	Count int `json:"count"`
}

// GetCount handles GET /api/v1/cart/count.
func (h *CartHandler) GetCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.AuthRequired(), h.logger)
		return
	}
	token, _ := TokenFromContext(r.Context())

	count, err := h.counter.Count(r.Context(), userID, token)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: CountResponse{Count: count}})
}
