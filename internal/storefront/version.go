package storefront

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/mod/semver"

	"storefront-client/internal/model"
)

// versionGate validates the API version the backend advertises in its
// X-API-Version response header against the minimum this client supports.
// Checked once per client; a failed check poisons every subsequent call so
// the mismatch surfaces immediately instead of as drifting field errors.
type versionGate struct {
	min string // canonical semver with leading "v", empty disables the gate

	mu      sync.Mutex
	checked bool
	err     error
}

func newVersionGate(min string) *versionGate {
	if min == "" {
		return &versionGate{}
	}
	return &versionGate{min: canonicalVersion(min)}
}

// check records the first advertised version seen and returns the stored
// verdict on every call. An absent header is accepted: older backends do
// not send it.
func (g *versionGate) check(advertised string) error {
	if g.min == "" || advertised == "" {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.checked {
		return g.err
	}
	g.checked = true

	v := canonicalVersion(advertised)
	if !semver.IsValid(v) {
		// Unparseable header, treat like an absent one
		return nil
	}
	if semver.Compare(v, g.min) < 0 {
		g.err = &model.APIError{
			Code:    "API_VERSION_UNSUPPORTED",
			Message: fmt.Sprintf("storefront API version %s is older than the minimum supported %s", advertised, strings.TrimPrefix(g.min, "v")),
			Err:     model.ErrTransport,
		}
	}
	return g.err
}

// canonicalVersion normalizes "1.2" / "1.2.0" to the "v1.2.0" form the
// semver package expects.
func canonicalVersion(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "v") {
		s = "v" + s
	}
	return s
}
