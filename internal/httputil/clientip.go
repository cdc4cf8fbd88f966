// Package httputil holds small request helpers shared by the HTTP host.
package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the caller's address for request logs. Proxy headers are
// consulted only when trustProxy is set; a header that does not hold an IP
// address is ignored.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
		if ip := validIP(first); ip != "" {
			return ip
		}
		if ip := validIP(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func validIP(s string) string {
	s = strings.TrimSpace(s)
	if net.ParseIP(s) == nil {
		return ""
	}
	return s
}
