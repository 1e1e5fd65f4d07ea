package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dressly/storefront/internal/reconciler"
	"github.com/dressly/storefront/internal/selection"
	apperrors "github.com/dressly/storefront/pkg/errors"
	"github.com/dressly/storefront/pkg/httputil"
	"github.com/dressly/storefront/pkg/validator"
)

// SelectionHandler handles HTTP requests for selection sessions.
type SelectionHandler struct {
	selections *selection.Service
	reconciler *reconciler.Reconciler
	logger     *slog.Logger
}

// NewSelectionHandler creates a selection HTTP handler.
func NewSelectionHandler(selections *selection.Service, rec *reconciler.Reconciler, logger *slog.Logger) *SelectionHandler {
	return &SelectionHandler{
		selections: selections,
		reconciler: rec,
		logger:     logger,
	}
}

// --- Request DTOs ---

// PickRequest is the JSON request body for updating the color/size pick.
// Either field may be empty; empty fields leave the existing pick untouched.
type PickRequest struct {
	Color string `json:"color" validate:"max=100"`
	Size  string `json:"size" validate:"max=100"`
}

// UpdateLineRequest is the JSON request body for a quantity operation on a
// selection line.
type UpdateLineRequest struct {
	Op       string `json:"op" validate:"required,oneof=increment decrement set"`
	Quantity string `json:"quantity"`
}

// CheckoutResponse reports the reconciliation outcome.
type CheckoutResponse struct {
	Result  *reconciler.Result `json:"result"`
	Message string             `json:"message"`
}

// --- Handlers ---

// Get handles GET /api/v1/selections/{productID}.
func (h *SelectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, productID, ok := h.scope(w, r)
	if !ok {
		return
	}

	view, err := h.selections.View(r.Context(), owner, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// Pick handles PUT /api/v1/selections/{productID}/pick.
func (h *SelectionHandler) Pick(w http.ResponseWriter, r *http.Request) {
	owner, productID, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req PickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid JSON body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	if req.Color == "" && req.Size == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("color or size is required"), h.logger)
		return
	}

	view, err := h.selections.Pick(r.Context(), owner, productID, req.Color, req.Size)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// AddLine handles POST /api/v1/selections/{productID}/lines.
func (h *SelectionHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	owner, productID, ok := h.scope(w, r)
	if !ok {
		return
	}

	view, err := h.selections.AddLine(r.Context(), owner, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// UpdateLine handles PATCH /api/v1/selections/{productID}/lines/{key}.
func (h *SelectionHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	owner, productID, ok := h.scope(w, r)
	if !ok {
		return
	}
	key := lineKey(r)

	var req UpdateLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid JSON body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	var (
		view *selection.View
		err  error
	)
	switch req.Op {
	case "increment":
		view, err = h.selections.IncrementQuantity(r.Context(), owner, productID, key)
	case "decrement":
		view, err = h.selections.DecrementQuantity(r.Context(), owner, productID, key)
	case "set":
		view, err = h.selections.SetQuantity(r.Context(), owner, productID, key, req.Quantity)
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// RemoveLine handles DELETE /api/v1/selections/{productID}/lines/{key}.
func (h *SelectionHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	owner, productID, ok := h.scope(w, r)
	if !ok {
		return
	}
	key := lineKey(r)

	view, err := h.selections.RemoveLine(r.Context(), owner, productID, key)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// Checkout handles POST /api/v1/selections/{productID}/checkout. It submits
// the selection to the remote cart and, on success, clears the session.
func (h *SelectionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	owner, productID, ok := h.scope(w, r)
	if !ok {
		return
	}

	set, err := h.selections.Current(r.Context(), owner, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	userID, _ := userIDFromContext(r.Context())
	result, err := h.reconciler.Reconcile(r.Context(), userID, productID, set)
	if err != nil {
		var agg *reconciler.AggregateError
		if errors.As(err, &agg) {
			// Some lines may have landed in the cart; report every outcome
			// alongside the aggregate failure.
			httputil.WriteJSON(w, http.StatusBadGateway, httputil.Response{
				Data:  result,
				Error: &httputil.ErrorResponse{Code: "CART_RECONCILE_FAILED", Message: agg.Error()},
			})
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.selections.Clear(r.Context(), owner, productID); err != nil {
		h.logger.WarnContext(r.Context(), "failed to clear selection after checkout",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	message := "items added to cart"
	if result.AnyMerged {
		message = "items added to cart; quantities were increased for items already in it"
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: CheckoutResponse{
		Result:  result,
		Message: message,
	}})
}

// lineKey extracts the selection line key from the URL. Keys contain a "|"
// separator, so clients send them path-escaped and chi hands them back raw.
func lineKey(r *http.Request) string {
	key := chi.URLParam(r, "key")
	if unescaped, err := url.PathUnescape(key); err == nil {
		return unescaped
	}
	return key
}

func (h *SelectionHandler) scope(w http.ResponseWriter, r *http.Request) (owner, productID string, ok bool) {
	productID = chi.URLParam(r, "productID")
	owner, ok = ownerIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidInput("session owner is missing"), h.logger)
		return "", "", false
	}
	return owner, productID, true
}
