package gateway

import (
	"context"

	"storefront-client/internal/model"
)

// Mock implements Gateway for testing.
// Each method can be configured via function fields.
type Mock struct {
	SaveAddressFunc        func(ctx context.Context, req *SaveAddressRequest) ([]model.ShippingOption, error)
	SaveShippingMethodFunc func(ctx context.Context, method string) ([]model.PaymentOption, error)
	SavePaymentMethodFunc  func(ctx context.Context, method string) error
	PlaceOrderFunc         func(ctx context.Context) (*model.OrderConfirmation, error)
	SummaryFunc            func(ctx context.Context) (*model.CartSession, error)
	ApplyCouponFunc        func(ctx context.Context, code string) (*model.CartSession, error)
	RemoveCouponFunc       func(ctx context.Context) (*model.CartSession, error)
	CheckMinimumOrderFunc  func(ctx context.Context) error
}

// SaveAddress calls the configured SaveAddressFunc or returns one default option.
func (m *Mock) SaveAddress(ctx context.Context, req *SaveAddressRequest) ([]model.ShippingOption, error) {
	if m.SaveAddressFunc != nil {
		return m.SaveAddressFunc(ctx, req)
	}
	return []model.ShippingOption{
		{CarrierTitle: "Flat Rate", Rates: []model.Rate{
			{Method: "flatrate_flatrate", MethodTitle: "Flat Rate", Price: 500},
		}},
	}, nil
}

// SaveShippingMethod calls the configured SaveShippingMethodFunc or returns one default option.
func (m *Mock) SaveShippingMethod(ctx context.Context, method string) ([]model.PaymentOption, error) {
	if m.SaveShippingMethodFunc != nil {
		return m.SaveShippingMethodFunc(ctx, method)
	}
	return []model.PaymentOption{
		{Method: "cashondelivery", MethodTitle: "Cash on Delivery"},
	}, nil
}

// SavePaymentMethod calls the configured SavePaymentMethodFunc or succeeds.
func (m *Mock) SavePaymentMethod(ctx context.Context, method string) error {
	if m.SavePaymentMethodFunc != nil {
		return m.SavePaymentMethodFunc(ctx, method)
	}
	return nil
}

// PlaceOrder calls the configured PlaceOrderFunc or returns a confirmation.
func (m *Mock) PlaceOrder(ctx context.Context) (*model.OrderConfirmation, error) {
	if m.PlaceOrderFunc != nil {
		return m.PlaceOrderFunc(ctx)
	}
	return &model.OrderConfirmation{ID: 1}, nil
}

// Summary calls the configured SummaryFunc or returns an empty cart.
func (m *Mock) Summary(ctx context.Context) (*model.CartSession, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx)
	}
	return &model.CartSession{}, nil
}

// ApplyCoupon calls the configured ApplyCouponFunc or returns a coupon error.
func (m *Mock) ApplyCoupon(ctx context.Context, code string) (*model.CartSession, error) {
	if m.ApplyCouponFunc != nil {
		return m.ApplyCouponFunc(ctx, code)
	}
	return nil, model.NewCouponError("")
}

// RemoveCoupon calls the configured RemoveCouponFunc or returns an empty cart.
func (m *Mock) RemoveCoupon(ctx context.Context) (*model.CartSession, error) {
	if m.RemoveCouponFunc != nil {
		return m.RemoveCouponFunc(ctx)
	}
	return &model.CartSession{}, nil
}

// CheckMinimumOrder calls the configured CheckMinimumOrderFunc or succeeds.
func (m *Mock) CheckMinimumOrder(ctx context.Context) error {
	if m.CheckMinimumOrderFunc != nil {
		return m.CheckMinimumOrderFunc(ctx)
	}
	return nil
}

// Verify Mock implements Gateway at compile time.
var _ Gateway = (*Mock)(nil)
