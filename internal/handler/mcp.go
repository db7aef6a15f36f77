// MCP transport handler using the official MCP Go SDK.
// Exposes the checkout steps as tools so an agent can drive the flow.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"storefront-client/internal/checkout"
	"storefront-client/internal/model"
)

// === MCP Tool Input/Output Types ===

// SaveAddressInput is the input schema for the save_address tool.
type SaveAddressInput struct {
	Billing           model.Address  `json:"billing" jsonschema:"billing address,required"`
	Shipping          *model.Address `json:"shipping,omitempty" jsonschema:"separate shipping address"`
	UseForShipping    bool           `json:"use_for_shipping,omitempty" jsonschema:"ship to the billing address"`
	BillingAddressID  int64          `json:"billing_address_id,omitempty" jsonschema:"saved billing address ID"`
	ShippingAddressID int64          `json:"shipping_address_id,omitempty" jsonschema:"saved shipping address ID"`
}

// SaveAddressOutput returns the shipping options the address unlocked.
type SaveAddressOutput struct {
	State           checkout.State         `json:"state"`
	ShippingOptions []model.ShippingOption `json:"shipping_options"`
}

// SelectShippingInput is the input schema for the select_shipping_method tool.
type SelectShippingInput struct {
	ShippingMethod string `json:"shipping_method" jsonschema:"rate identifier from shipping_options,required"`
}

// SelectShippingOutput returns the payment options the rate unlocked.
type SelectShippingOutput struct {
	State          checkout.State        `json:"state"`
	PaymentOptions []model.PaymentOption `json:"payment_options"`
}

// SelectPaymentInput is the input schema for the select_payment_method tool.
type SelectPaymentInput struct {
	Method string `json:"method" jsonschema:"payment method code from payment_options,required"`
}

// SelectPaymentOutput reports the confirmed selection.
type SelectPaymentOutput struct {
	State   checkout.State            `json:"state"`
	Payment checkout.PaymentSelection `json:"payment"`
}

// PlaceOrderInput is the input schema for the place_order tool.
type PlaceOrderInput struct{}

// GetSummaryInput is the input schema for the get_summary tool.
type GetSummaryInput struct{}

// GetStateInput is the input schema for the get_checkout_state tool.
type GetStateInput struct{}

// ApplyCouponInput is the input schema for the apply_coupon tool.
type ApplyCouponInput struct {
	Code string `json:"code" jsonschema:"discount code,required"`
}

// RemoveCouponInput is the input schema for the remove_coupon tool.
type RemoveCouponInput struct{}

// NewMCPServer creates an MCP server with the checkout tools registered.
// The server exposes the same operations as the REST API but via MCP protocol.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "storefront-client",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "Storefront checkout operations. Drive the flow in order: " +
				"save_address, select_shipping_method, select_payment_method, place_order. " +
				"get_summary and the coupon tools can run at any point before the order.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_address",
		Description: "Submit billing and shipping addresses. Returns the shipping options available for them. Resubmitting discards any shipping or payment selection made earlier.",
	}, h.mcpSaveAddress)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "select_shipping_method",
		Description: "Select a shipping rate from the options save_address returned. Returns the available payment methods.",
	}, h.mcpSelectShipping)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "select_payment_method",
		Description: "Select a payment method from the options select_shipping_method returned.",
	}, h.mcpSelectPayment)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "place_order",
		Description: "Place the order. Requires a confirmed payment selection and a cart meeting the store's minimum order amount.",
	}, h.mcpPlaceOrder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_summary",
		Description: "Get the current cart: items, coupon, and server-computed totals.",
	}, h.mcpGetSummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_checkout_state",
		Description: "Get the checkout progress: current step, options, and selections.",
	}, h.mcpGetState)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "apply_coupon",
		Description: "Apply a discount code to the cart.",
	}, h.mcpApplyCoupon)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_coupon",
		Description: "Remove the applied discount code from the cart.",
	}, h.mcpRemoveCoupon)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpSaveAddress(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SaveAddressInput,
) (*mcp.CallToolResult, *SaveAddressOutput, error) {
	if input.BillingAddressID != 0 {
		h.orch.UseSavedAddresses(input.BillingAddressID, input.ShippingAddressID)
	} else {
		h.orch.SetBillingAddress(input.Billing, input.UseForShipping)
		if input.Shipping != nil {
			h.orch.SetShippingAddress(*input.Shipping)
		}
	}

	options, err := h.orch.SubmitAddress(ctx)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}

	return nil, &SaveAddressOutput{
		State:           h.orch.State(),
		ShippingOptions: options,
	}, nil
}

func (h *Handler) mcpSelectShipping(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SelectShippingInput,
) (*mcp.CallToolResult, *SelectShippingOutput, error) {
	if input.ShippingMethod == "" {
		return nil, nil, fmt.Errorf("shipping_method is required")
	}

	options, err := h.orch.SubmitShippingMethod(ctx, input.ShippingMethod)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}

	return nil, &SelectShippingOutput{
		State:          h.orch.State(),
		PaymentOptions: options,
	}, nil
}

func (h *Handler) mcpSelectPayment(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SelectPaymentInput,
) (*mcp.CallToolResult, *SelectPaymentOutput, error) {
	if input.Method == "" {
		return nil, nil, fmt.Errorf("method is required")
	}

	if err := h.orch.SelectPaymentMethod(ctx, input.Method); err != nil {
		return nil, nil, h.mcpError(err)
	}

	return nil, &SelectPaymentOutput{
		State:   h.orch.State(),
		Payment: h.orch.Payment(),
	}, nil
}

func (h *Handler) mcpPlaceOrder(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input PlaceOrderInput,
) (*mcp.CallToolResult, *model.OrderConfirmation, error) {
	confirmation, err := h.orch.PlaceOrder(ctx)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, confirmation, nil
}

func (h *Handler) mcpGetSummary(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetSummaryInput,
) (*mcp.CallToolResult, *model.CartSession, error) {
	cart, err := h.orch.Summary(ctx)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, cart, nil
}

func (h *Handler) mcpGetState(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetStateInput,
) (*mcp.CallToolResult, *stateResponse, error) {
	resp := h.snapshot()
	return nil, &resp, nil
}

func (h *Handler) mcpApplyCoupon(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ApplyCouponInput,
) (*mcp.CallToolResult, *model.CartSession, error) {
	if input.Code == "" {
		return nil, nil, fmt.Errorf("code is required")
	}

	cart, err := h.orch.ApplyCoupon(ctx, input.Code)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, cart, nil
}

func (h *Handler) mcpRemoveCoupon(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input RemoveCouponInput,
) (*mcp.CallToolResult, *model.CartSession, error) {
	cart, err := h.orch.RemoveCoupon(ctx)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, cart, nil
}

// mcpError converts checkout errors to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	if errors.Is(err, checkout.ErrStepLocked) || errors.Is(err, checkout.ErrStepInFlight) {
		return err
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}
