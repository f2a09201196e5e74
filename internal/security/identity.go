package security

import (
	"net"
	"net/http"
	"strings"
)

// UnknownIdentity is the fallback rate-limiting key when no client
// address can be determined.
const UnknownIdentity = "unknown"

// ClientIdentity resolves a best-effort caller identity for rate
// limiting: the first X-Forwarded-For hop when present, else the
// connection's remote address, else the "unknown" sentinel.
func ClientIdentity(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}

	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}

	return UnknownIdentity
}
