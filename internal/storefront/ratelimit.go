package storefront

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dunglas/httpsfv"
)

// parseRateLimit extracts a retry hint from a 429 response.
//
// Preferred source is the structured RateLimit header (RFC 8941 Dictionary,
// per the IETF ratelimit-headers draft): RateLimit: limit=100, remaining=0,
// reset=30. Falls back to a plain integer Retry-After. Returns zero when no
// hint is present or parseable.
func parseRateLimit(header http.Header) time.Duration {
	if raw := header.Get("RateLimit"); raw != "" {
		dict, err := httpsfv.UnmarshalDictionary([]string{raw})
		if err == nil {
			if member, ok := dict.Get("reset"); ok {
				if item, ok := member.(httpsfv.Item); ok {
					if secs, ok := item.Value.(int64); ok && secs > 0 {
						return time.Duration(secs) * time.Second
					}
				}
			}
		}
	}

	if raw := header.Get("Retry-After"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}

	return 0
}
