package handler

import (
	"log/slog"
	"net/http"

	"storefront-client/internal/checkout"
	"storefront-client/internal/model"
)

// === Request/Response Shapes ===

type addressRequest struct {
	Billing           model.Address  `json:"billing"`
	Shipping          *model.Address `json:"shipping,omitempty"`
	UseForShipping    bool           `json:"use_for_shipping"`
	BillingAddressID  int64          `json:"billing_address_id,omitempty"`
	ShippingAddressID int64          `json:"shipping_address_id,omitempty"`
}

type shippingRequest struct {
	ShippingMethod string `json:"shipping_method"`
}

type paymentRequest struct {
	Method string `json:"method"`
}

type couponRequest struct {
	Code string `json:"code"`
}

type stateResponse struct {
	State           checkout.State             `json:"state"`
	ShippingOptions []model.ShippingOption     `json:"shipping_options,omitempty"`
	ShippingMethod  string                     `json:"shipping_method,omitempty"`
	PaymentOptions  []model.PaymentOption      `json:"payment_options,omitempty"`
	Payment         *checkout.PaymentSelection `json:"payment,omitempty"`
	Order           *model.OrderConfirmation   `json:"order,omitempty"`
}

func (h *Handler) snapshot() stateResponse {
	resp := stateResponse{
		State:           h.orch.State(),
		ShippingOptions: h.orch.ShippingOptions(),
		ShippingMethod:  h.orch.ShippingMethod(),
		PaymentOptions:  h.orch.PaymentOptions(),
		Order:           h.orch.Order(),
	}
	if p := h.orch.Payment(); p.Method != "" {
		resp.Payment = &p
	}
	return resp
}

// handleState reports the orchestrator's view of checkout progress.
// GET /checkout/state
func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.snapshot())
}

// handleSummary returns the cart snapshot, fetching when the cache is stale.
// GET /checkout/summary
func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	cart, err := h.orch.Summary(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cart)
}

// handleSaveAddress runs the address step.
// POST /checkout/address
func (h *Handler) handleSaveAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addressRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	if req.BillingAddressID != 0 {
		h.orch.UseSavedAddresses(req.BillingAddressID, req.ShippingAddressID)
	} else {
		h.orch.SetBillingAddress(req.Billing, req.UseForShipping)
		if req.Shipping != nil {
			h.orch.SetShippingAddress(*req.Shipping)
		}
	}

	h.logger.InfoContext(ctx, "saving address",
		slog.Bool("use_for_shipping", req.UseForShipping),
		slog.Bool("saved_ids", req.BillingAddressID != 0),
	)

	if _, err := h.orch.SubmitAddress(ctx); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, h.snapshot())
}

// handleSelectShipping runs the shipping step.
// POST /checkout/shipping-method
func (h *Handler) handleSelectShipping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req shippingRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.ShippingMethod == "" {
		h.writeError(w, model.NewValidationError(http.StatusBadRequest, "shipping_method is required"))
		return
	}

	h.logger.InfoContext(ctx, "selecting shipping method",
		slog.String("method", req.ShippingMethod),
	)

	if _, err := h.orch.SubmitShippingMethod(ctx, req.ShippingMethod); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, h.snapshot())
}

// handleSelectPayment runs the payment step.
// POST /checkout/payment-method
func (h *Handler) handleSelectPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Method == "" {
		h.writeError(w, model.NewValidationError(http.StatusBadRequest, "method is required"))
		return
	}

	h.logger.InfoContext(ctx, "selecting payment method",
		slog.String("method", req.Method),
	)

	if err := h.orch.SelectPaymentMethod(ctx, req.Method); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, h.snapshot())
}

// handlePlaceOrder finalizes the checkout.
// POST /checkout/order
func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.logger.InfoContext(ctx, "placing order")

	confirmation, err := h.orch.PlaceOrder(ctx)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, confirmation)
}

// handleApplyCoupon applies a discount code to the cart.
// POST /checkout/coupon
func (h *Handler) handleApplyCoupon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req couponRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Code == "" {
		h.writeError(w, model.NewValidationError(http.StatusBadRequest, "code is required"))
		return
	}

	h.logger.InfoContext(ctx, "applying coupon", slog.String("code", req.Code))

	cart, err := h.orch.ApplyCoupon(ctx, req.Code)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, cart)
}

// handleRemoveCoupon removes the applied discount code.
// DELETE /checkout/coupon
func (h *Handler) handleRemoveCoupon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.logger.InfoContext(ctx, "removing coupon")

	cart, err := h.orch.RemoveCoupon(ctx)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, cart)
}
