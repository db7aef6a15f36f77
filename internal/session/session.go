// Package session holds the visitor's authentication state and selects the
// matching checkout gateway.
package session

import (
	"sync"

	"storefront-client/internal/gateway"
)

// Session is the explicit authentication context passed into the checkout
// machinery at construction. Login/logout updates it via SetToken/Clear
// rather than being read ad hoc from ambient storage inside each operation.
type Session struct {
	mu    sync.RWMutex
	token string
}

// New creates a Session. An empty token means a guest visitor.
func New(token string) *Session {
	return &Session{token: token}
}

// IsAuthenticated reports whether a bearer credential is present.
// Pure predicate, evaluated at call time so a login or logout is reflected
// on the next resolution.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Token returns the current bearer credential, or empty for guests.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken stores the bearer credential after a login.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear drops the bearer credential on logout.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// Resolver picks the gateway matching the session's current mode.
type Resolver struct {
	session  *Session
	guest    gateway.Gateway
	customer gateway.Gateway
}

// NewResolver creates a Resolver over the two mode implementations.
func NewResolver(s *Session, guest, customer gateway.Gateway) *Resolver {
	return &Resolver{session: s, guest: guest, customer: customer}
}

// Resolve returns the gateway for the session's mode at this moment.
// A checkout run captures the result once and keeps it for the whole run;
// switching modes mid-flow is not supported.
func (r *Resolver) Resolve() gateway.Gateway {
	if r.session.IsAuthenticated() {
		return r.customer
	}
	return r.guest
}
