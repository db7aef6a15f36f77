package model

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the checkout error taxonomy.
// Use errors.Is() to check against these.
var (
	ErrTransport    = errors.New("transport error")
	ErrValidation   = errors.New("validation error")
	ErrAuthExpired  = errors.New("session authorization expired")
	ErrMinimumOrder = errors.New("minimum order amount not met")
	ErrCoupon       = errors.New("coupon rejected")
	ErrRateLimited  = errors.New("rate limited")
)

// APIError is a structured error produced at the gateway boundary.
// Implements error and supports unwrapping so callers can use errors.Is/As.
type APIError struct {
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	StatusCode int           `json:"-"` // HTTP status from the storefront API
	RetryAfter time.Duration `json:"-"` // Populated from RateLimit headers on 429
	Err        error         `json:"-"` // Wrapped sentinel or cause
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps a network failure or an unusable non-2xx response.
// The step name keeps the generic message actionable ("address step failed").
func NewTransportError(step string, statusCode int, err error) *APIError {
	return &APIError{
		Code:       "TRANSPORT_ERROR",
		Message:    fmt.Sprintf("%s step failed", step),
		StatusCode: statusCode,
		Err:        fmt.Errorf("%w: %v", ErrTransport, err),
	}
}

// NewValidationError carries a server-supplied message, surfaced verbatim
// inline at the failing step.
func NewValidationError(statusCode int, message string) *APIError {
	if message == "" {
		message = "invalid request"
	}
	return &APIError{
		Code:       "VALIDATION_ERROR",
		Message:    message,
		StatusCode: statusCode,
		Err:        ErrValidation,
	}
}

// NewAuthExpiredError marks an anti-forgery or session rejection (401/419).
// The guest gateway consumes this internally for its single bootstrap retry.
func NewAuthExpiredError(statusCode int) *APIError {
	return &APIError{
		Code:       "AUTH_EXPIRED",
		Message:    "session is no longer authorized",
		StatusCode: statusCode,
		Err:        ErrAuthExpired,
	}
}

// NewMinimumOrderError is the pre-flight rejection before order placement.
// Not a step failure: the user can adjust the cart and retry.
func NewMinimumOrderError(message string) *APIError {
	if message == "" {
		message = "the order does not meet the minimum order amount"
	}
	return &APIError{
		Code:    "MINIMUM_ORDER",
		Message: message,
		Err:     ErrMinimumOrder,
	}
}

// NewCouponError scopes an invalid or expired code to the coupon widget.
func NewCouponError(message string) *APIError {
	if message == "" {
		message = "the coupon code could not be applied"
	}
	return &APIError{
		Code:    "COUPON_ERROR",
		Message: message,
		Err:     ErrCoupon,
	}
}

// NewRateLimitError surfaces a 429 with an optional retry hint parsed from
// the RateLimit response header.
func NewRateLimitError(retryAfter time.Duration) *APIError {
	return &APIError{
		Code:       "RATE_LIMITED",
		Message:    "the storefront API rate limit was exceeded, please retry later",
		StatusCode: 429,
		RetryAfter: retryAfter,
		Err:        ErrRateLimited,
	}
}
