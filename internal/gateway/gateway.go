// Package gateway defines the checkout step contract implemented once per
// authentication mode. Selecting a single implementation for the duration of
// a checkout run is what enforces mode exclusivity: a run is either all
// cookie+anti-forgery or all bearer token, never a mix.
package gateway

import (
	"context"

	"storefront-client/internal/model"
)

// Gateway abstracts the four checkout steps plus the summary and coupon
// operations against the storefront API.
//
// All mutating methods are POST semantics and single-attempt; the only
// automatic retry anywhere is the guest implementation's one anti-forgery
// re-bootstrap on a 401/419 rejection. Callers are responsible for
// invalidating any cached cart summary after a successful mutation.
type Gateway interface {
	// SaveAddress submits billing (and optionally shipping) addresses.
	// Returns the shipping options applicable to the new address.
	SaveAddress(ctx context.Context, req *SaveAddressRequest) ([]model.ShippingOption, error)

	// SaveShippingMethod submits the selected rate's method code.
	// Returns the payment options applicable to the chosen method.
	SaveShippingMethod(ctx context.Context, method string) ([]model.PaymentOption, error)

	// SavePaymentMethod submits the selected payment method code.
	// The server acknowledges; no options are returned.
	SavePaymentMethod(ctx context.Context, method string) error

	// PlaceOrder finalizes the checkout. The cart session is terminated
	// server-side on success.
	PlaceOrder(ctx context.Context) (*model.OrderConfirmation, error)

	// Summary fetches the authoritative current cart state. Read-only; safe
	// to call concurrently with an in-flight step.
	Summary(ctx context.Context) (*model.CartSession, error)

	// ApplyCoupon applies a discount code and returns the updated cart.
	ApplyCoupon(ctx context.Context, code string) (*model.CartSession, error)

	// RemoveCoupon removes the applied code and returns the updated cart.
	RemoveCoupon(ctx context.Context) (*model.CartSession, error)

	// CheckMinimumOrder runs the pre-flight minimum-order-value check before
	// order placement. The guest implementation has no such endpoint and
	// always reports success; the server remains the authority either way.
	CheckMinimumOrder(ctx context.Context) error
}

// SaveAddressRequest is the input to the address step. A customer run may
// reference saved addresses by ID instead of sending full records; a guest
// run always sends full records.
type SaveAddressRequest struct {
	Billing  model.Address  `json:"billing"`
	Shipping *model.Address `json:"shipping,omitempty"`

	// Saved-address selection (authenticated runs only). When set, the
	// corresponding full record is ignored by the server.
	BillingAddressID  int64 `json:"billing_address_id,omitempty"`
	ShippingAddressID int64 `json:"shipping_address_id,omitempty"`
}
