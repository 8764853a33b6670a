// Package clientip works out the caller's address for a request.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// HeaderForwardedFor is set by proxies such as Render or Cloudflare
const HeaderForwardedFor = "X-Forwarded-For"

// FromRequest returns the first X-Forwarded-For entry, trimmed, when the
// header carries one. Otherwise it returns the peer address from
// r.RemoteAddr without its port, or RemoteAddr as-is if it has no port.
//
// The header is client controlled; it is only used for page selection.
func FromRequest(r *http.Request) string {
	if forwardedFor := r.Header.Get(HeaderForwardedFor); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return PeerAddr(r)
}

// PeerAddr strips the port from r.RemoteAddr
func PeerAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
