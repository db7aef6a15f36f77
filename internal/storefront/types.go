package storefront

import (
	"encoding/json"
	"sort"

	"storefront-client/internal/model"
)

// === Cart ===

// cartPayload is the wire shape of a cart/summary response. Raw totals come
// as JSON numbers or numeric strings in major units, alongside the server's
// formatted variants; the client keeps both and computes nothing.
type cartPayload struct {
	ID         int64             `json:"id"`
	ItemsCount int               `json:"items_count"`
	CouponCode string            `json:"coupon_code"`
	Items      []cartItemPayload `json:"items"`

	SubTotal            json.Number `json:"sub_total"`
	FormattedSubTotal   string      `json:"formatted_sub_total"`
	DiscountAmount      json.Number `json:"discount_amount"`
	FormattedDiscount   string      `json:"formatted_discount_amount"`
	TaxTotal            json.Number `json:"tax_total"`
	FormattedTaxTotal   string      `json:"formatted_tax_total"`
	ShippingAmount      json.Number `json:"shipping_amount"`
	FormattedShipping   string      `json:"formatted_shipping_amount"`
	GrandTotal          json.Number `json:"grand_total"`
	FormattedGrandTotal string      `json:"formatted_grand_total"`
}

type cartItemPayload struct {
	ID             int64       `json:"id"`
	ProductID      int64       `json:"product_id"`
	Name           string      `json:"name"`
	SKU            string      `json:"sku"`
	Quantity       int         `json:"quantity"`
	Price          json.Number `json:"price"`
	FormattedPrice string      `json:"formatted_price"`
	Total          json.Number `json:"total"`
	FormattedTotal string      `json:"formatted_total"`
}

func (p *cartPayload) toModel() *model.CartSession {
	cart := &model.CartSession{
		ID:         p.ID,
		ItemCount:  p.ItemsCount,
		CouponCode: p.CouponCode,
		Subtotal:   money(p.SubTotal, p.FormattedSubTotal),
		Discount:   money(p.DiscountAmount, p.FormattedDiscount),
		Tax:        money(p.TaxTotal, p.FormattedTaxTotal),
		Shipping:   money(p.ShippingAmount, p.FormattedShipping),
		GrandTotal: money(p.GrandTotal, p.FormattedGrandTotal),
	}
	for _, item := range p.Items {
		cart.Items = append(cart.Items, model.CartItem{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: money(item.Price, item.FormattedPrice),
			Total:     money(item.Total, item.FormattedTotal),
		})
	}
	if cart.ItemCount == 0 {
		cart.ItemCount = len(cart.Items)
	}
	return cart
}

func money(raw json.Number, formatted string) model.Money {
	return model.Money{Cents: model.ParseCents(raw.String()), Formatted: formatted}
}

// === Shipping methods (address step response) ===

// shippingMethodsPayload absorbs the two shapes the address step is known to
// serve: a flat "rates" list of carrier groups, or a "shippingMethods" object
// keyed by carrier code. Both normalize to a flat []model.ShippingOption;
// the map form is sorted by carrier key for deterministic ordering.
type shippingMethodsPayload struct {
	Options []model.ShippingOption
}

type carrierPayload struct {
	CarrierTitle string        `json:"carrier_title"`
	Rates        []ratePayload `json:"rates"`
}

type ratePayload struct {
	Method         string      `json:"method"`
	MethodTitle    string      `json:"method_title"`
	Price          json.Number `json:"price"`
	FormattedPrice string      `json:"formatted_price"`
}

func (p *shippingMethodsPayload) UnmarshalJSON(data []byte) error {
	var shaped struct {
		Rates           []carrierPayload          `json:"rates"`
		ShippingMethods map[string]carrierPayload `json:"shippingMethods"`
	}
	if err := json.Unmarshal(data, &shaped); err != nil {
		return err
	}

	if len(shaped.Rates) > 0 {
		for _, carrier := range shaped.Rates {
			p.Options = append(p.Options, carrier.toModel())
		}
		return nil
	}

	keys := make([]string, 0, len(shaped.ShippingMethods))
	for k := range shaped.ShippingMethods {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Options = append(p.Options, shaped.ShippingMethods[k].toModel())
	}
	return nil
}

func (c carrierPayload) toModel() model.ShippingOption {
	option := model.ShippingOption{CarrierTitle: c.CarrierTitle}
	for _, r := range c.Rates {
		option.Rates = append(option.Rates, model.Rate{
			Method:         r.Method,
			MethodTitle:    r.MethodTitle,
			Price:          model.ParseCents(r.Price.String()),
			FormattedPrice: r.FormattedPrice,
		})
	}
	return option
}

// === Payment methods (shipping step response) ===

// paymentMethodsPayload absorbs a "payment_methods" list or an object keyed
// by method code; map form is sorted by key.
type paymentMethodsPayload struct {
	Options []model.PaymentOption
}

type paymentMethodPayload struct {
	Method      string `json:"method"`
	MethodTitle string `json:"method_title"`
	Image       string `json:"image"`
}

func (p *paymentMethodsPayload) UnmarshalJSON(data []byte) error {
	var listShape struct {
		PaymentMethods []paymentMethodPayload `json:"payment_methods"`
	}
	if err := json.Unmarshal(data, &listShape); err == nil && len(listShape.PaymentMethods) > 0 {
		for _, m := range listShape.PaymentMethods {
			p.Options = append(p.Options, m.toModel())
		}
		return nil
	}

	var mapShape struct {
		PaymentMethods map[string]paymentMethodPayload `json:"payment_methods"`
	}
	if err := json.Unmarshal(data, &mapShape); err != nil {
		return err
	}

	keys := make([]string, 0, len(mapShape.PaymentMethods))
	for k := range mapShape.PaymentMethods {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m := mapShape.PaymentMethods[k]
		if m.Method == "" {
			m.Method = k
		}
		p.Options = append(p.Options, m.toModel())
	}
	return nil
}

func (m paymentMethodPayload) toModel() model.PaymentOption {
	return model.PaymentOption{Method: m.Method, MethodTitle: m.MethodTitle, Image: m.Image}
}

// === Order ===

// orderPayload is the place-order response, with or without an "order" key.
type orderPayload struct {
	Order *orderBody `json:"order"`
	orderBody
}

type orderBody struct {
	ID                  int64  `json:"id"`
	IncrementID         string `json:"increment_id"`
	Status              string `json:"status"`
	GrandTotalFormatted string `json:"formatted_grand_total"`
}

func (p *orderPayload) toModel() *model.OrderConfirmation {
	body := p.orderBody
	if p.Order != nil {
		body = *p.Order
	}
	return &model.OrderConfirmation{
		ID:                  body.ID,
		IncrementID:         body.IncrementID,
		Status:              body.Status,
		GrandTotalFormatted: body.GrandTotalFormatted,
	}
}

// === Minimum order pre-flight ===

type minimumOrderPayload struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}
