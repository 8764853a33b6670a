package clientip

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name          string
		remoteAddr    string
		xForwardedFor string
		expectedIP    string
	}{
		{
			name:       "RemoteAddr only",
			remoteAddr: "192.168.1.1:12345",
			expectedIP: "192.168.1.1",
		},
		{
			name:          "X-Forwarded-For single",
			remoteAddr:    "192.168.1.1:12345",
			xForwardedFor: "10.0.0.2",
			expectedIP:    "10.0.0.2",
		},
		{
			name:          "X-Forwarded-For with multiple IPs",
			remoteAddr:    "192.168.1.1:12345",
			xForwardedFor: "1.2.3.4, 5.6.7.8",
			expectedIP:    "1.2.3.4",
		},
		{
			name:          "X-Forwarded-For padded",
			remoteAddr:    "192.168.1.1:12345",
			xForwardedFor: "   1.2.3.4   ,5.6.7.8",
			expectedIP:    "1.2.3.4",
		},
		{
			name:          "X-Forwarded-For empty first entry",
			remoteAddr:    "192.168.1.1:12345",
			xForwardedFor: " , 5.6.7.8",
			expectedIP:    "192.168.1.1",
		},
		{
			name:          "X-Forwarded-For IPv6",
			remoteAddr:    "192.168.1.1:12345",
			xForwardedFor: "2001:db8::1, 10.0.0.1",
			expectedIP:    "2001:db8::1",
		},
		{
			name:       "IPv6 RemoteAddr",
			remoteAddr: "[2001:db8::1]:8080",
			expectedIP: "2001:db8::1",
		},
		{
			name:       "RemoteAddr without port",
			remoteAddr: "192.168.1.1",
			expectedIP: "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xForwardedFor != "" {
				req.Header.Set(HeaderForwardedFor, tt.xForwardedFor)
			}

			if got := FromRequest(req); got != tt.expectedIP {
				t.Errorf("expected %s, got %s", tt.expectedIP, got)
			}
		})
	}
}

// TestFromRequest_EqualsPeerWithoutHeader tests that without the header the
// extracted address is the transport peer address
func TestFromRequest_EqualsPeerWithoutHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderForwardedFor, "")

	if FromRequest(req) != PeerAddr(req) {
		t.Errorf("expected %s, got %s", PeerAddr(req), FromRequest(req))
	}
}

// TestFromRequest_FirstHeaderLineOnly tests repeated headers
func TestFromRequest_FirstHeaderLineOnly(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Add(HeaderForwardedFor, "1.2.3.4")
	req.Header.Add(HeaderForwardedFor, "5.6.7.8")

	if got := FromRequest(req); got != "1.2.3.4" {
		t.Errorf("expected 1.2.3.4, got %s", got)
	}
}
