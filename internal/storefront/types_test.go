package storefront

import (
	"encoding/json"
	"testing"
)

func TestShippingMethodsShapes(t *testing.T) {
	t.Run("rates list", func(t *testing.T) {
		body := `{"rates":[
			{"carrier_title":"Flat Rate","rates":[
				{"method":"flatrate_flatrate","method_title":"Flat Rate","price":5,"formatted_price":"$5.00"}
			]},
			{"carrier_title":"Free Shipping","rates":[
				{"method":"free_free","method_title":"Free","price":0,"formatted_price":"$0.00"}
			]}
		]}`

		var p shippingMethodsPayload
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			t.Fatal(err)
		}
		if len(p.Options) != 2 {
			t.Fatalf("options = %d, want 2", len(p.Options))
		}
		if p.Options[0].CarrierTitle != "Flat Rate" || p.Options[1].CarrierTitle != "Free Shipping" {
			t.Fatalf("list order not preserved: %+v", p.Options)
		}
		if p.Options[0].Rates[0].Price != 500 {
			t.Fatalf("price = %d cents, want 500", p.Options[0].Rates[0].Price)
		}
	})

	t.Run("keyed object normalized and sorted", func(t *testing.T) {
		body := `{"shippingMethods":{
			"ups":{"carrier_title":"UPS","rates":[{"method":"ups_ground","method_title":"Ground","price":"12.50"}]},
			"flatrate":{"carrier_title":"Flat Rate","rates":[{"method":"flatrate_flatrate","method_title":"Flat Rate","price":5}]}
		}}`

		var p shippingMethodsPayload
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			t.Fatal(err)
		}
		if len(p.Options) != 2 {
			t.Fatalf("options = %d, want 2", len(p.Options))
		}
		// Deterministic order by carrier key.
		if p.Options[0].CarrierTitle != "Flat Rate" || p.Options[1].CarrierTitle != "UPS" {
			t.Fatalf("map form not sorted by key: %+v", p.Options)
		}
		if p.Options[1].Rates[0].Price != 1250 {
			t.Fatalf("string price = %d cents, want 1250", p.Options[1].Rates[0].Price)
		}
	})
}

func TestPaymentMethodsShapes(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		body := `{"payment_methods":[
			{"method":"cashondelivery","method_title":"Cash on Delivery"},
			{"method":"banktransfer","method_title":"Bank Transfer"}
		]}`

		var p paymentMethodsPayload
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			t.Fatal(err)
		}
		if len(p.Options) != 2 || p.Options[0].Method != "cashondelivery" {
			t.Fatalf("options = %+v", p.Options)
		}
	})

	t.Run("keyed object, method defaulted from key", func(t *testing.T) {
		body := `{"payment_methods":{
			"paypal":{"method_title":"PayPal"},
			"cashondelivery":{"method":"cashondelivery","method_title":"Cash on Delivery"}
		}}`

		var p paymentMethodsPayload
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			t.Fatal(err)
		}
		if len(p.Options) != 2 {
			t.Fatalf("options = %d, want 2", len(p.Options))
		}
		if p.Options[0].Method != "cashondelivery" || p.Options[1].Method != "paypal" {
			t.Fatalf("map form not sorted, or key not used as method: %+v", p.Options)
		}
	})
}

func TestCartPayloadToModel(t *testing.T) {
	body := `{
		"id": 42,
		"coupon_code": "SAVE10",
		"sub_total": "100.00",
		"formatted_sub_total": "$100.00",
		"discount_amount": 10,
		"formatted_discount_amount": "-$10.00",
		"grand_total": 90.5,
		"formatted_grand_total": "$90.50",
		"items": [
			{"id":1,"product_id":7,"name":"Widget","sku":"W-1","quantity":2,"price":"45.25","formatted_price":"$45.25","total":90.5,"formatted_total":"$90.50"}
		]
	}`

	var p cartPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatal(err)
	}
	cart := p.toModel()

	if cart.ID != 42 || cart.CouponCode != "SAVE10" {
		t.Fatalf("cart = %+v", cart)
	}
	if cart.Subtotal.Cents != 10000 {
		t.Fatalf("subtotal = %d cents from numeric string", cart.Subtotal.Cents)
	}
	if cart.GrandTotal.Cents != 9050 || cart.GrandTotal.Formatted != "$90.50" {
		t.Fatalf("grand total = %+v", cart.GrandTotal)
	}
	if len(cart.Items) != 1 || cart.Items[0].UnitPrice.Cents != 4525 {
		t.Fatalf("items = %+v", cart.Items)
	}
	// items_count absent: derived from the item list.
	if cart.ItemCount != 1 {
		t.Fatalf("item count = %d, want 1", cart.ItemCount)
	}
}

func TestOrderPayloadShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrapped in order key", `{"order":{"id":118,"increment_id":"ORD-000118","status":"pending"}}`},
		{"bare", `{"id":118,"increment_id":"ORD-000118","status":"pending"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p orderPayload
			if err := json.Unmarshal([]byte(tt.body), &p); err != nil {
				t.Fatal(err)
			}
			confirmation := p.toModel()
			if confirmation.ID != 118 || confirmation.IncrementID != "ORD-000118" || confirmation.Status != "pending" {
				t.Fatalf("confirmation = %+v", confirmation)
			}
		})
	}
}
