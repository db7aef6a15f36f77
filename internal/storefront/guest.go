package storefront

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"storefront-client/internal/gateway"
	"storefront-client/internal/model"
	"storefront-client/internal/transport"
)

// Guest session endpoints. The checkout run is bound to a server-side
// session cookie; mutations additionally require the rotating anti-forgery
// token the server sets as the XSRF-TOKEN cookie.
const (
	guestSessionPath  = "/checkout/onepage"
	guestCSRFPath     = "/sanctum/csrf-cookie"
	guestAddressPath  = "/checkout/onepage/addresses"
	guestShippingPath = "/checkout/onepage/shipping-methods"
	guestPaymentPath  = "/checkout/onepage/payment-methods"
	guestOrderPath    = "/checkout/onepage/orders"
	guestSummaryPath  = "/checkout/onepage/summary"
	guestCouponPath   = "/checkout/cart/coupon"
)

// csrfCookieName is the cookie the anti-forgery endpoint rotates. Its value
// is URL-encoded by the server and echoed back in the X-XSRF-TOKEN header.
const csrfCookieName = "XSRF-TOKEN"

// Guest implements gateway.Gateway for visitors without an account.
//
// All requests carry the session cookie (cookie jar on the HTTP client);
// mutations attach the anti-forgery token. The first mutation triggers a
// bootstrap: a GET to establish the session cookie, then a GET to the
// anti-forgery endpoint, reading the token back out of the jar. A 401/419
// rejection of a mutation forces exactly one re-bootstrap and resubmit
// before the error is surfaced.
type Guest struct {
	client

	mu           sync.Mutex
	bootstrapped bool
}

// NewGuest creates the guest gateway. A cookie jar is mandatory: the cart
// session and the anti-forgery token both live in cookies.
func NewGuest(cfg Config) (*Guest, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	httpClient := &http.Client{
		Timeout:   defaultTimeout,
		Transport: transport.NewBrowserTransport(defaultTimeout),
		Jar:       jar,
	}

	c, err := newClient(cfg, httpClient)
	if err != nil {
		return nil, err
	}
	return &Guest{client: c}, nil
}

// SaveAddress submits the billing (and optional shipping) addresses and
// returns the shipping options the server offers for them.
func (g *Guest) SaveAddress(ctx context.Context, req *gateway.SaveAddressRequest) ([]model.ShippingOption, error) {
	body := map[string]any{"billing": req.Billing}
	if req.Shipping != nil {
		body["shipping"] = req.Shipping
	}

	var payload shippingMethodsPayload
	if err := g.mutate(ctx, "address", guestAddressPath, body, &payload); err != nil {
		return nil, err
	}
	return payload.Options, nil
}

// SaveShippingMethod submits the selected rate and returns payment options.
func (g *Guest) SaveShippingMethod(ctx context.Context, method string) ([]model.PaymentOption, error) {
	body := map[string]string{"shipping_method": method}

	var payload paymentMethodsPayload
	if err := g.mutate(ctx, "shipping", guestShippingPath, body, &payload); err != nil {
		return nil, err
	}
	return payload.Options, nil
}

// SavePaymentMethod submits the selected payment method code.
func (g *Guest) SavePaymentMethod(ctx context.Context, method string) error {
	body := map[string]any{"payment": map[string]string{"method": method}}
	return g.mutate(ctx, "payment", guestPaymentPath, body, nil)
}

// PlaceOrder finalizes the checkout; the guest cart session ends with it.
func (g *Guest) PlaceOrder(ctx context.Context) (*model.OrderConfirmation, error) {
	var payload orderPayload
	if err := g.mutate(ctx, "order", guestOrderPath, struct{}{}, &payload); err != nil {
		return nil, err
	}
	return payload.toModel(), nil
}

// Summary fetches the current cart state for the session.
func (g *Guest) Summary(ctx context.Context) (*model.CartSession, error) {
	var payload cartPayload
	if err := g.getJSON(ctx, "summary", guestSummaryPath, nil, &payload); err != nil {
		return nil, err
	}
	return payload.toModel(), nil
}

// ApplyCoupon applies a discount code to the session cart.
func (g *Guest) ApplyCoupon(ctx context.Context, code string) (*model.CartSession, error) {
	return g.couponMutation(ctx, http.MethodPost, map[string]string{"code": code})
}

// RemoveCoupon removes the applied code from the session cart.
func (g *Guest) RemoveCoupon(ctx context.Context) (*model.CartSession, error) {
	return g.couponMutation(ctx, http.MethodDelete, nil)
}

// CheckMinimumOrder has no guest endpoint; the server validates minimums at
// order placement.
func (g *Guest) CheckMinimumOrder(ctx context.Context) error {
	return nil
}

// couponMutation shares the coupon request/response handling. Coupon
// rejections map to CouponError so the orchestrator can scope them to the
// coupon widget instead of a checkout step.
func (g *Guest) couponMutation(ctx context.Context, method string, body any) (*model.CartSession, error) {
	var payload cartPayload
	err := g.mutateMethod(ctx, "coupon", method, guestCouponPath, body, &payload)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && errors.Is(err, model.ErrValidation) {
			return nil, model.NewCouponError(apiErr.Message)
		}
		return nil, err
	}
	return payload.toModel(), nil
}

// mutate performs a POST with anti-forgery handling.
func (g *Guest) mutate(ctx context.Context, step, path string, body, out any) error {
	return g.mutateMethod(ctx, step, http.MethodPost, path, body, out)
}

// mutateMethod performs a state-changing request: bootstrap if needed,
// attach the anti-forgery header, and retry once through a fresh bootstrap
// when the server rejects the token.
func (g *Guest) mutateMethod(ctx context.Context, step, method, path string, body, out any) error {
	token := g.bootstrap(ctx, false)

	err := g.send(ctx, step, method, path, body, token, out)
	if errors.Is(err, model.ErrAuthExpired) {
		// Token may have rotated; one re-bootstrap, one resubmit.
		token = g.bootstrap(ctx, true)
		err = g.send(ctx, step, method, path, body, token, out)
	}

	if errors.Is(err, model.ErrAuthExpired) {
		// Retry exhausted: report as a step-level failure.
		var apiErr *model.APIError
		status := http.StatusUnauthorized
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return model.NewTransportError(step, status, err)
	}
	return err
}

func (g *Guest) send(ctx context.Context, step, method, path string, body any, token string, out any) error {
	extra := map[string]string{}
	if token != "" {
		extra["X-XSRF-TOKEN"] = token
	}

	respBody, err := g.do(ctx, step, method, path, body, extra)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeEnvelope(step, respBody, out)
}

// bootstrap establishes the session cookie and fetches the anti-forgery
// token, returning the current token value. Failures are swallowed: the
// dependent mutation is attempted regardless and the server's rejection is
// what the caller surfaces. Safe to call repeatedly; force re-runs it after
// a token rejection.
func (g *Guest) bootstrap(ctx context.Context, force bool) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.bootstrapped && !force {
		return g.csrfToken()
	}

	// Session cookie first, then the rotating anti-forgery cookie.
	if _, err := g.do(ctx, "bootstrap", http.MethodGet, guestSessionPath, nil, nil); err != nil {
		return ""
	}
	if _, err := g.do(ctx, "bootstrap", http.MethodGet, guestCSRFPath, nil, nil); err != nil {
		return ""
	}

	g.bootstrapped = true
	return g.csrfToken()
}

// csrfToken reads the anti-forgery token out of the cookie jar.
func (g *Guest) csrfToken() string {
	u, err := url.Parse(g.storeURL)
	if err != nil {
		return ""
	}
	for _, cookie := range g.httpClient.Jar.Cookies(u) {
		if cookie.Name == csrfCookieName {
			if decoded, err := url.QueryUnescape(cookie.Value); err == nil {
				return decoded
			}
			return cookie.Value
		}
	}
	return ""
}

// Verify Guest implements the gateway contract at compile time.
var _ gateway.Gateway = (*Guest)(nil)
