package model

import (
	"encoding/json"
	"testing"
)

func TestMoneyUnmarshal(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCents int64
		wantFmt   string
	}{
		{"bare number", `50.5`, 5050, ""},
		{"numeric string", `"12.50"`, 1250, ""},
		{"object form", `{"cents":1250,"formatted":"€12.50"}`, 1250, "€12.50"},
		{"zero object", `{"cents":0}`, 0, ""},
		{"null", `null`, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Money
			if err := json.Unmarshal([]byte(tt.input), &m); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.input, err)
			}
			if m.Cents != tt.wantCents || m.Formatted != tt.wantFmt {
				t.Errorf("got {%d %q}, want {%d %q}", m.Cents, m.Formatted, tt.wantCents, tt.wantFmt)
			}
		})
	}
}

func TestFindRate(t *testing.T) {
	options := []ShippingOption{
		{CarrierTitle: "Flat Rate", Rates: []Rate{
			{Method: "flatrate_flatrate", MethodTitle: "Flat Rate", Price: 1000},
		}},
		{CarrierTitle: "Free Shipping", Rates: []Rate{
			{Method: "free_free", MethodTitle: "Free", Price: 0},
		}},
	}

	if r := FindRate(options, "free_free"); r == nil || r.MethodTitle != "Free" {
		t.Errorf("FindRate(free_free) = %v, want Free rate", r)
	}
	if r := FindRate(options, "dhl_express"); r != nil {
		t.Errorf("FindRate(dhl_express) = %v, want nil", r)
	}
	if r := FindRate(nil, "flatrate_flatrate"); r != nil {
		t.Errorf("FindRate on nil options = %v, want nil", r)
	}
}

func TestAddressHelpers(t *testing.T) {
	var empty Address
	if !empty.IsZero() {
		t.Error("zero Address should report IsZero")
	}
	if empty.StreetLine() != "" {
		t.Errorf("StreetLine on empty = %q, want empty", empty.StreetLine())
	}

	a := Address{FirstName: "Jane", Street: []string{"1 Main St", "Apt 2"}}
	if a.IsZero() {
		t.Error("populated Address should not report IsZero")
	}
	if a.StreetLine() != "1 Main St" {
		t.Errorf("StreetLine = %q, want first element", a.StreetLine())
	}
}
