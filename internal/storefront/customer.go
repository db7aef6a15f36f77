package storefront

import (
	"context"
	"errors"
	"net/http"

	"storefront-client/internal/gateway"
	"storefront-client/internal/model"
	"storefront-client/internal/session"
)

// Customer checkout endpoints, scoped to the authenticated account's cart.
const (
	customerAddressPath  = "/customer/checkout/save-address"
	customerShippingPath = "/customer/checkout/save-shipping"
	customerPaymentPath  = "/customer/checkout/save-payment"
	customerOrderPath    = "/customer/checkout/save-order"
	customerMinOrderPath = "/customer/checkout/check-minimum-order"
	customerCartPath     = "/customer/cart"
	customerCouponPath   = "/customer/cart/coupon"
)

// Customer implements gateway.Gateway for authenticated customers.
// Every call carries the session's bearer token; there is no anti-forgery
// handling on this path.
type Customer struct {
	client
	session *session.Session
}

// NewCustomer creates the customer gateway bound to the given session.
// The token is read per call, so a refreshed credential takes effect on the
// next request.
func NewCustomer(cfg Config, sess *session.Session) (*Customer, error) {
	c, err := newClient(cfg, nil)
	if err != nil {
		return nil, err
	}
	return &Customer{client: c, session: sess}, nil
}

// SaveAddress submits billing and shipping, either as full records or as
// saved-address IDs, and returns the applicable shipping options.
func (c *Customer) SaveAddress(ctx context.Context, req *gateway.SaveAddressRequest) ([]model.ShippingOption, error) {
	body := map[string]any{}
	if req.BillingAddressID != 0 {
		body["billing_address_id"] = req.BillingAddressID
	} else {
		body["billing"] = req.Billing
	}
	if req.ShippingAddressID != 0 {
		body["shipping_address_id"] = req.ShippingAddressID
	} else if req.Shipping != nil {
		body["shipping"] = req.Shipping
	}

	var payload shippingMethodsPayload
	if err := c.post(ctx, "address", customerAddressPath, body, &payload); err != nil {
		return nil, err
	}
	return payload.Options, nil
}

// SaveShippingMethod submits the selected rate and returns payment options.
func (c *Customer) SaveShippingMethod(ctx context.Context, method string) ([]model.PaymentOption, error) {
	body := map[string]string{"shipping_method": method}

	var payload paymentMethodsPayload
	if err := c.post(ctx, "shipping", customerShippingPath, body, &payload); err != nil {
		return nil, err
	}
	return payload.Options, nil
}

// SavePaymentMethod submits the selected payment method code.
func (c *Customer) SavePaymentMethod(ctx context.Context, method string) error {
	body := map[string]any{"payment": map[string]string{"method": method}}
	return c.post(ctx, "payment", customerPaymentPath, body, nil)
}

// PlaceOrder finalizes the checkout for the account's cart.
func (c *Customer) PlaceOrder(ctx context.Context) (*model.OrderConfirmation, error) {
	var payload orderPayload
	if err := c.post(ctx, "order", customerOrderPath, struct{}{}, &payload); err != nil {
		return nil, err
	}
	return payload.toModel(), nil
}

// Summary fetches the account cart.
func (c *Customer) Summary(ctx context.Context) (*model.CartSession, error) {
	var payload cartPayload
	if err := c.getJSON(ctx, "summary", customerCartPath, c.authHeader(), &payload); err != nil {
		return nil, err
	}
	return payload.toModel(), nil
}

// ApplyCoupon applies a discount code to the account cart.
func (c *Customer) ApplyCoupon(ctx context.Context, code string) (*model.CartSession, error) {
	return c.couponMutation(ctx, http.MethodPost, map[string]string{"code": code})
}

// RemoveCoupon removes the applied code from the account cart.
func (c *Customer) RemoveCoupon(ctx context.Context) (*model.CartSession, error) {
	return c.couponMutation(ctx, http.MethodDelete, nil)
}

// CheckMinimumOrder runs the pre-flight minimum-order check. A response
// with error=true blocks order placement without being a step failure.
func (c *Customer) CheckMinimumOrder(ctx context.Context) error {
	respBody, err := c.do(ctx, "minimum-order", http.MethodPost, customerMinOrderPath, struct{}{}, c.authHeader())
	if err != nil {
		return err
	}

	var payload minimumOrderPayload
	if err := decodeEnvelope("minimum-order", respBody, &payload); err != nil {
		return err
	}
	if payload.Error {
		return model.NewMinimumOrderError(payload.Message)
	}
	return nil
}

func (c *Customer) couponMutation(ctx context.Context, method string, body any) (*model.CartSession, error) {
	respBody, err := c.do(ctx, "coupon", method, customerCouponPath, body, c.authHeader())
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && errors.Is(err, model.ErrValidation) {
			return nil, model.NewCouponError(apiErr.Message)
		}
		return nil, err
	}

	var payload cartPayload
	if err := decodeEnvelope("coupon", respBody, &payload); err != nil {
		return nil, err
	}
	return payload.toModel(), nil
}

// post performs a bearer-authenticated POST, decoding into out when non-nil.
func (c *Customer) post(ctx context.Context, step, path string, body, out any) error {
	respBody, err := c.do(ctx, step, http.MethodPost, path, body, c.authHeader())
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeEnvelope(step, respBody, out)
}

func (c *Customer) authHeader() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.session.Token()}
}

// Verify Customer implements the gateway contract at compile time.
var _ gateway.Gateway = (*Customer)(nil)
