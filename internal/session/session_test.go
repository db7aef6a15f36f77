package session

import (
	"testing"

	"storefront-client/internal/gateway"
)

func TestSessionAuthentication(t *testing.T) {
	s := New("")
	if s.IsAuthenticated() {
		t.Fatal("empty token reported as authenticated")
	}

	s.SetToken("tok")
	if !s.IsAuthenticated() || s.Token() != "tok" {
		t.Fatalf("after SetToken: authenticated=%v token=%q", s.IsAuthenticated(), s.Token())
	}

	s.Clear()
	if s.IsAuthenticated() {
		t.Fatal("still authenticated after Clear")
	}
}

func TestResolverPicksModeAtCallTime(t *testing.T) {
	guest := &gateway.Mock{}
	customer := &gateway.Mock{}

	s := New("")
	r := NewResolver(s, guest, customer)

	if r.Resolve() != gateway.Gateway(guest) {
		t.Fatal("guest session did not resolve to the guest gateway")
	}

	s.SetToken("tok")
	if r.Resolve() != gateway.Gateway(customer) {
		t.Fatal("authenticated session did not resolve to the customer gateway")
	}

	s.Clear()
	if r.Resolve() != gateway.Gateway(guest) {
		t.Fatal("logout did not switch resolution back to guest")
	}
}
