// Package model defines data structures shared by the storefront gateways
// and the checkout orchestrator.
package model

import "encoding/json"

// === Cart ===

// CartSession is the client's read-only snapshot of the server-side cart.
// The server owns the cart; every total here is server-computed. The client
// never derives totals from line items, it only caches what the last
// summary or step response returned.
type CartSession struct {
	ID         int64      `json:"id"`
	Items      []CartItem `json:"items"`
	ItemCount  int        `json:"items_count"`
	CouponCode string     `json:"coupon_code,omitempty"`

	Subtotal   Money `json:"sub_total"`
	Discount   Money `json:"discount_amount"`
	Tax        Money `json:"tax_total"`
	Shipping   Money `json:"shipping_amount"`
	GrandTotal Money `json:"grand_total"`
}

// CartItem is one line of the cart with server-computed pricing.
type CartItem struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice Money  `json:"price"`
	Total     Money  `json:"total"`
}

// HasCoupon reports whether a discount code is currently applied.
func (c *CartSession) HasCoupon() bool {
	return c != nil && c.CouponCode != ""
}

// === Addresses ===

// Address holds billing or shipping address fields. The two are structurally
// identical; UseForShipping is only meaningful on a billing address and tells
// the server (and the orchestrator) to mirror billing into shipping.
type Address struct {
	CompanyName    string   `json:"company_name,omitempty"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Email          string   `json:"email"`
	Street         []string `json:"address1"`
	Country        string   `json:"country"`
	State          string   `json:"state"`
	City           string   `json:"city"`
	Postcode       string   `json:"postcode"`
	Phone          string   `json:"phone"`
	UseForShipping bool     `json:"use_for_shipping,omitempty"`
}

// StreetLine returns the first street line, which is what address forms edit.
func (a Address) StreetLine() string {
	if len(a.Street) == 0 {
		return ""
	}
	return a.Street[0]
}

// IsZero reports whether no address fields have been filled in.
func (a Address) IsZero() bool {
	return a.FirstName == "" && a.LastName == "" && a.Email == "" &&
		len(a.Street) == 0 && a.City == "" && a.Postcode == "" && a.Country == ""
}

// SavedAddress is a customer-scoped persisted address. It has its own CRUD
// lifecycle on the account; during checkout it is referenced by ID.
type SavedAddress struct {
	ID        int64 `json:"id"`
	IsDefault bool  `json:"default_address"`
	Address
}

// === Shipping & payment options ===

// ShippingOption groups the rates offered by one carrier for the current
// address and cart contents.
type ShippingOption struct {
	CarrierTitle string `json:"carrier_title"`
	Rates        []Rate `json:"rates"`
}

// Rate is a single selectable shipping method.
type Rate struct {
	Method         string `json:"method"`
	MethodTitle    string `json:"method_title"`
	Price          int64  `json:"price"`
	FormattedPrice string `json:"formatted_price,omitempty"`
}

// FindRate returns the rate with the given method code, or nil.
func FindRate(options []ShippingOption, method string) *Rate {
	for i := range options {
		for j := range options[i].Rates {
			if options[i].Rates[j].Method == method {
				return &options[i].Rates[j]
			}
		}
	}
	return nil
}

// PaymentOption is a selectable payment method. Only the method code is
// forwarded to the server; gateway-specific collection happens elsewhere.
type PaymentOption struct {
	Method      string `json:"method"`
	MethodTitle string `json:"method_title"`
	Image       string `json:"image,omitempty"`
}

// FindPaymentOption returns the option with the given method code, or nil.
func FindPaymentOption(options []PaymentOption, method string) *PaymentOption {
	for i := range options {
		if options[i].Method == method {
			return &options[i]
		}
	}
	return nil
}

// === Order ===

// OrderConfirmation is returned by a successful place-order call.
type OrderConfirmation struct {
	ID                  int64  `json:"id"`
	IncrementID         string `json:"increment_id,omitempty"`
	Status              string `json:"status,omitempty"`
	GrandTotalFormatted string `json:"formatted_grand_total,omitempty"`
}

// === Money ===

// Money carries a server-computed amount as both minor units and the
// server's display string. The API serves amounts as JSON numbers in major
// units alongside a formatted variant; UnmarshalJSON accepts the number,
// a numeric string, or an object with both fields.
type Money struct {
	Cents     int64  `json:"cents"`
	Formatted string `json:"formatted,omitempty"`
}

// UnmarshalJSON handles 12.5, "12.50", and {"cents":1250,"formatted":"€12.50"}.
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	// Object form (our own marshaled output, round-trips cleanly)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			Cents     int64  `json:"cents"`
			Formatted string `json:"formatted"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		m.Cents = obj.Cents
		m.Formatted = obj.Formatted
		return nil
	}

	// Bare number
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		m.Cents = CentsFromFloat(f)
		return nil
	}

	// Numeric string
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	m.Cents = ParseCents(s)
	return nil
}
