package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the address of the client behind r. X-Forwarded-For is
// only believed when the connection comes from a trusted proxy, and then
// the rightmost untrusted hop wins.
func ClientIP(r *http.Request, trusted func(ip string) bool) string {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	if trusted == nil || !trusted(remote) {
		return remote
	}

	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		return remote
	}
	hops := strings.Split(forwarded, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !trusted(hop) {
			return hop
		}
		remote = hop
	}
	return remote
}
