// Package storefront implements the two checkout gateway variants against
// the storefront REST API: Guest (cookie session + anti-forgery token) and
// Customer (bearer token). Both share the same low-level request plumbing,
// error mapping, and response normalization.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront-client/internal/model"
	"storefront-client/internal/transport"
)

// userAgent identifies this client to the storefront. Hosted backends
// rate-limit requests without a User-Agent.
const userAgent = "storefront-client/1.0"

const defaultTimeout = 30 * time.Second

// Config holds settings shared by both gateway variants.
type Config struct {
	// StoreURL is the storefront API origin, e.g. "https://shop.example.com".
	StoreURL string

	// MinAPIVersion gates the backend's advertised X-API-Version header,
	// e.g. "1.0.0". Empty disables the gate.
	MinAPIVersion string
}

// client carries the request plumbing shared by Guest and Customer.
type client struct {
	httpClient *http.Client
	storeURL   string
	gate       *versionGate
}

func newClient(cfg Config, httpClient *http.Client) (client, error) {
	if cfg.StoreURL == "" {
		return client{}, fmt.Errorf("store URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   defaultTimeout,
			Transport: transport.NewBrowserTransport(defaultTimeout),
		}
	}
	return client{
		httpClient: httpClient,
		storeURL:   strings.TrimSuffix(cfg.StoreURL, "/"),
		gate:       newVersionGate(cfg.MinAPIVersion),
	}, nil
}

// do executes one JSON request and returns the raw response body.
// Non-2xx responses are mapped to APIError via parseErrorResponse; extra
// headers (anti-forgery token, bearer token) come from the caller.
func (c *client) do(ctx context.Context, step, method, path string, body any, extra map[string]string) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s request: %w", step, err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.storeURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", step, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range extra {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewTransportError(step, 0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewTransportError(step, resp.StatusCode, err)
	}

	if err := c.gate.check(resp.Header.Get("X-API-Version")); err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, parseErrorResponse(step, resp.StatusCode, respBody, resp.Header)
	}

	return respBody, nil
}

// getJSON is a convenience for GET endpoints decoding into out.
func (c *client) getJSON(ctx context.Context, step, path string, extra map[string]string, out any) error {
	body, err := c.do(ctx, step, http.MethodGet, path, nil, extra)
	if err != nil {
		return err
	}
	return decodeEnvelope(step, body, out)
}

// parseErrorResponse maps a non-2xx storefront response to an APIError.
//
// The taxonomy: 401/419 are anti-forgery/session rejections (consumed by the
// guest retry), 429 is rate limiting with an optional RateLimit header hint,
// any other status with a usable server message is a validation error
// surfaced verbatim, and anything else is a transport error.
func parseErrorResponse(step string, statusCode int, body []byte, header http.Header) error {
	switch statusCode {
	case 401, 419:
		return model.NewAuthExpiredError(statusCode)
	case 429:
		return model.NewRateLimitError(parseRateLimit(header))
	}

	if msg := extractMessage(body); msg != "" {
		return model.NewValidationError(statusCode, msg)
	}
	return model.NewTransportError(step, statusCode,
		fmt.Errorf("status %d with no usable body", statusCode))
}

// extractMessage pulls the server-supplied message out of an error body.
// Accepts {"message": "..."} and {"error": {"message": "..."}}.
func extractMessage(body []byte) string {
	var flat struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &flat); err != nil {
		return ""
	}
	if flat.Message != "" {
		return flat.Message
	}
	return flat.Error.Message
}

// decodeEnvelope decodes a response that may or may not wrap its payload in
// a {"data": ...} envelope. Consumers must accept both shapes.
func decodeEnvelope(step string, body []byte, v any) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 {
		body = env.Data
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing %s response: %w", step, err)
	}
	return nil
}
