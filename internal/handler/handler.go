// Package handler exposes the checkout orchestrator over HTTP: REST step
// endpoints, an MCP tool surface for agents, and health endpoints for
// deployment probes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"storefront-client/internal/checkout"
	"storefront-client/internal/model"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	orch   *checkout.Orchestrator
	logger *slog.Logger
}

// New creates a Handler over the given orchestrator.
func New(orch *checkout.Orchestrator, logger *slog.Logger) *Handler {
	return &Handler{
		orch:   orch,
		logger: logger,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// REST transport - checkout step operations
	mux.HandleFunc("GET /checkout/state", h.handleState)
	mux.HandleFunc("GET /checkout/summary", h.handleSummary)
	mux.HandleFunc("POST /checkout/address", h.handleSaveAddress)
	mux.HandleFunc("POST /checkout/shipping-method", h.handleSelectShipping)
	mux.HandleFunc("POST /checkout/payment-method", h.handleSelectPayment)
	mux.HandleFunc("POST /checkout/order", h.handlePlaceOrder)
	mux.HandleFunc("POST /checkout/coupon", h.handleApplyCoupon)
	mux.HandleFunc("DELETE /checkout/coupon", h.handleRemoveCoupon)

	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	// Health check
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"state":  string(h.orch.State()),
	})
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from APIError if present.
// Uses errors.As() to unwrap error chains (e.g., fmt.Errorf wrapping).
// Orchestrator guard rejections map to 409 Conflict.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrStepLocked):
		h.writeJSON(w, http.StatusConflict, errorResponse{
			Error: errorBody{Code: "STEP_LOCKED", Message: err.Error()},
		})
		return
	case errors.Is(err, checkout.ErrStepInFlight):
		h.writeJSON(w, http.StatusConflict, errorResponse{
			Error: errorBody{Code: "STEP_IN_FLIGHT", Message: err.Error()},
		})
		return
	}

	var apiErr *model.APIError

	if errors.As(err, &apiErr) {
		// Found APIError in error chain - use it
	} else {
		apiErr = &model.APIError{
			Code:       "INTERNAL_ERROR",
			Message:    "an internal error occurred",
			StatusCode: http.StatusInternalServerError,
		}
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}

	status := apiErr.StatusCode
	if status == 0 {
		status = http.StatusUnprocessableEntity
	}

	h.writeJSON(w, status, errorResponse{
		Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MaxRequestBodySize limits JSON request bodies to 1MB to prevent DoS.
const MaxRequestBodySize = 1 << 20 // 1MB

// decodeJSON reads JSON from request body into v.
// Limits body size to MaxRequestBodySize to prevent memory exhaustion.
// Returns an APIError if decoding fails.
func decodeJSON(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Don't expose internal error details to client
		return model.NewValidationError(http.StatusBadRequest, "invalid JSON")
	}
	return nil
}
