package lookup

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestIPInfoLookup_Success tests the request shape and the decoded country
func TestIPInfoLookup_Success(t *testing.T) {
	var gotPath, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("{\"ip\":\"5.160.0.1\",\"city\":\"Tehran\",\"country\":\"IR\"}\n"))
	}))
	defer server.Close()

	l := NewIPInfoLookup(server.URL, "abc123", time.Second)
	defer l.Close()

	country, err := l.LookupCountry(context.Background(), "5.160.0.1")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if country != "IR" {
		t.Errorf("expected IR, got %s", country)
	}
	if gotPath != "/5.160.0.1/json" {
		t.Errorf("unexpected request path: %s", gotPath)
	}
	if gotToken != "abc123" {
		t.Errorf("expected token abc123, got %q", gotToken)
	}
}

// TestIPInfoLookup_NoToken tests that an empty token is not sent
func TestIPInfoLookup_NoToken(t *testing.T) {
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(`{"country":"US"}`))
	}))
	defer server.Close()

	l := NewIPInfoLookup(server.URL+"/", "", time.Second)

	if _, err := l.LookupCountry(context.Background(), "8.8.8.8"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rawQuery != "" {
		t.Errorf("expected no query string, got %q", rawQuery)
	}
}

// TestIPInfoLookup_LowercaseCountryPassesThrough tests that case is left to the caller
func TestIPInfoLookup_LowercaseCountryPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"country":"ir"}`))
	}))
	defer server.Close()

	country, err := NewIPInfoLookup(server.URL, "", time.Second).LookupCountry(context.Background(), "5.160.0.1")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if country != "ir" {
		t.Errorf("expected ir, got %s", country)
	}
}

// TestIPInfoLookup_Failures tests every failure mode returns an error
func TestIPInfoLookup_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "HTTP 500",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			wantErr: ErrBadStatus,
		},
		{
			name: "HTTP 429",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantErr: ErrBadStatus,
		},
		{
			name:    "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {},
		},
		{
			name: "not JSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>rate limited</html>"))
			},
		},
		{
			name: "missing country",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"ip":"5.160.0.1","city":"Tehran"}`))
			},
			wantErr: ErrNoCountry,
		},
		{
			name: "bogon",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"ip":"10.0.0.1","bogon":true}`))
			},
			wantErr: ErrNoCountry,
		},
		{
			name: "trailing data after JSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"country":"IR"}<html>proxy error</html>`))
			},
		},
		{
			name: "second JSON value",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"country":"IR"}{"country":"US"}`))
			},
		},
		{
			name: "JSON array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[{"country":"IR"}]`))
			},
		},
		{
			name: "oversized body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"country":"IR","pad":"` + strings.Repeat("x", maxResponseBytes) + `"}`))
			},
		},
		{
			name: "country not a string",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"country":42}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			country, err := NewIPInfoLookup(server.URL, "", time.Second).LookupCountry(context.Background(), "5.160.0.1")

			if err == nil {
				t.Fatalf("expected error, got country %q", country)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if country != "" {
				t.Errorf("expected empty country on error, got %q", country)
			}
		})
	}
}

// TestIPInfoLookup_Timeout tests the client timeout
func TestIPInfoLookup_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	l := NewIPInfoLookup(server.URL, "", 50*time.Millisecond)

	start := time.Now()
	_, err := l.LookupCountry(context.Background(), "5.160.0.1")

	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("lookup should give up quickly, took %s", elapsed)
	}
}

// TestIPInfoLookup_ConnectionRefused tests an unreachable service
func TestIPInfoLookup_ConnectionRefused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	_, err = NewIPInfoLookup("http://"+addr, "", time.Second).LookupCountry(context.Background(), "5.160.0.1")

	if err == nil {
		t.Error("expected connection error, got nil")
	}
}

// TestIPInfoLookup_URL tests URL construction
func TestIPInfoLookup_URL(t *testing.T) {
	tests := []struct {
		base     string
		token    string
		ip       string
		expected string
	}{
		{"https://ipinfo.io", "tok", "1.2.3.4", "https://ipinfo.io/1.2.3.4/json?token=tok"},
		{"https://ipinfo.io/", "", "1.2.3.4", "https://ipinfo.io/1.2.3.4/json"},
		{"https://ipinfo.io", "", "2001:db8::1", "https://ipinfo.io/2001:db8::1/json"},
		{"https://ipinfo.io", "a b", "1.2.3.4", "https://ipinfo.io/1.2.3.4/json?token=a+b"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			l := NewIPInfoLookup(tt.base, tt.token, time.Second)
			if got := l.url(tt.ip); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}
