package storefront

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-client/internal/model"
)

func TestParseErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		header     http.Header
		sentinel   error
		message    string
	}{
		{
			name:       "401 is an auth rejection",
			statusCode: 401,
			sentinel:   model.ErrAuthExpired,
		},
		{
			name:       "419 is an auth rejection",
			statusCode: 419,
			body:       `{"message":"CSRF token mismatch."}`,
			sentinel:   model.ErrAuthExpired,
		},
		{
			name:       "429 is rate limiting",
			statusCode: 429,
			sentinel:   model.ErrRateLimited,
		},
		{
			name:       "422 with message is validation, verbatim",
			statusCode: 422,
			body:       `{"message":"The first name field is required."}`,
			sentinel:   model.ErrValidation,
			message:    "The first name field is required.",
		},
		{
			name:       "nested error message is validation",
			statusCode: 400,
			body:       `{"error":{"message":"Cart is empty."}}`,
			sentinel:   model.ErrValidation,
			message:    "Cart is empty.",
		},
		{
			name:       "500 without usable body is transport",
			statusCode: 500,
			body:       `<html>Internal Server Error</html>`,
			sentinel:   model.ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseErrorResponse("address", tt.statusCode, []byte(tt.body), tt.header)
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("err = %v, want %v", err, tt.sentinel)
			}
			if tt.message != "" {
				var apiErr *model.APIError
				if !errors.As(err, &apiErr) || apiErr.Message != tt.message {
					t.Fatalf("message not preserved verbatim: %v", err)
				}
			}
		})
	}
}

func TestParseRateLimit(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		want   time.Duration
	}{
		{
			name:   "structured RateLimit header",
			header: http.Header{"Ratelimit": {"limit=100, remaining=0, reset=30"}},
			want:   30 * time.Second,
		},
		{
			name:   "Retry-After fallback",
			header: http.Header{"Retry-After": {"12"}},
			want:   12 * time.Second,
		},
		{
			name:   "RateLimit preferred over Retry-After",
			header: http.Header{"Ratelimit": {"reset=5"}, "Retry-After": {"60"}},
			want:   5 * time.Second,
		},
		{
			name:   "unparseable headers yield no hint",
			header: http.Header{"Ratelimit": {"???"}, "Retry-After": {"soon"}},
			want:   0,
		},
		{
			name: "no headers",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRateLimit(tt.header); got != tt.want {
				t.Fatalf("parseRateLimit = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRateLimitHintOnError(t *testing.T) {
	header := http.Header{"Ratelimit": {"limit=60, remaining=0, reset=45"}}
	err := parseErrorResponse("summary", 429, nil, header)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *model.APIError", err)
	}
	if apiErr.RetryAfter != 45*time.Second {
		t.Fatalf("RetryAfter = %v, want 45s", apiErr.RetryAfter)
	}
}

func TestDecodeEnvelope(t *testing.T) {
	type payload struct {
		ID int64 `json:"id"`
	}

	tests := []struct {
		name string
		body string
		want int64
	}{
		{"enveloped", `{"data":{"id":7}}`, 7},
		{"bare", `{"id":7}`, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out payload
			if err := decodeEnvelope("summary", []byte(tt.body), &out); err != nil {
				t.Fatalf("decodeEnvelope: %v", err)
			}
			if out.ID != tt.want {
				t.Fatalf("id = %d, want %d", out.ID, tt.want)
			}
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		var out payload
		if err := decodeEnvelope("summary", []byte("not json"), &out); err == nil {
			t.Fatal("want decode error")
		}
	})
}

func TestVersionGate(t *testing.T) {
	t.Run("older backend rejected and poisoned", func(t *testing.T) {
		calls := 0
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Header().Set("X-API-Version", "0.9.0")
			w.Write([]byte(`{}`))
		}))
		defer ts.Close()

		c, err := newClient(Config{StoreURL: ts.URL, MinAPIVersion: "1.2.0"}, ts.Client())
		if err != nil {
			t.Fatal(err)
		}

		_, err = c.do(context.Background(), "summary", http.MethodGet, "/x", nil, nil)
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != "API_VERSION_UNSUPPORTED" {
			t.Fatalf("err = %v, want API_VERSION_UNSUPPORTED", err)
		}

		// The verdict sticks even if a later response omits the header.
		if _, err := c.do(context.Background(), "summary", http.MethodGet, "/x", nil, nil); !errors.As(err, &apiErr) {
			t.Fatalf("second call err = %v, want poisoned gate", err)
		}
	})

	t.Run("matching and newer versions pass", func(t *testing.T) {
		for _, advertised := range []string{"1.2.0", "1.2", "2.0.1", ""} {
			gate := newVersionGate("1.2.0")
			if err := gate.check(advertised); err != nil {
				t.Fatalf("check(%q) = %v, want nil", advertised, err)
			}
		}
	})

	t.Run("empty minimum disables the gate", func(t *testing.T) {
		gate := newVersionGate("")
		if err := gate.check("0.0.1"); err != nil {
			t.Fatalf("check = %v, want nil with gate disabled", err)
		}
	})
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c, err := newClient(Config{StoreURL: ts.URL}, ts.Client())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.do(context.Background(), "summary", http.MethodPost, "/x", map[string]string{"a": "b"}, map[string]string{"X-Extra": "yes"}); err != nil {
		t.Fatal(err)
	}

	if got.Get("User-Agent") != userAgent {
		t.Fatalf("User-Agent = %q, want %q", got.Get("User-Agent"), userAgent)
	}
	if got.Get("Accept") != "application/json" {
		t.Fatalf("Accept = %q", got.Get("Accept"))
	}
	if got.Get("Content-Type") != "application/json" {
		t.Fatalf("Content-Type = %q", got.Get("Content-Type"))
	}
	if got.Get("X-Extra") != "yes" {
		t.Fatalf("extra header not attached: %v", got)
	}
}

func TestNewClientRequiresStoreURL(t *testing.T) {
	if _, err := newClient(Config{}, nil); err == nil {
		t.Fatal("want error for missing store URL")
	}
}
