package lookup

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/evyataryagoni/geopage/internal/models"
)

// maxResponseBytes caps how much of an ipinfo response is read
const maxResponseBytes = 64 << 10

// IPInfoLookup queries the ipinfo.io JSON API:
//
//	GET {baseURL}/{ip}/json?token={token}
type IPInfoLookup struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewIPInfoLookup creates an ipinfo.io client.
// An empty token sends unauthenticated requests; timeout bounds every request.
func NewIPInfoLookup(baseURL, token string, timeout time.Duration) *IPInfoLookup {
	return &IPInfoLookup{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

func (l *IPInfoLookup) Name() string { return "ipinfo" }

// LookupCountry fetches the country for ip.
// Any transport failure, non-200 status, undecodable body or missing
// country is returned as an error.
func (l *IPInfoLookup) LookupCountry(ctx context.Context, ip string) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url(ip), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := l.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("doing request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d %s (%s)", ErrBadStatus,
			response.StatusCode, http.StatusText(response.StatusCode), bodyToSingleLine(response.Body))
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	// The whole body must be a single JSON value
	var data models.IPInfoResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("decoding JSON response: %w", err)
	}

	if data.Country == "" {
		if data.Bogon {
			return "", fmt.Errorf("%w: %s is a bogon address", ErrNoCountry, ip)
		}
		return "", fmt.Errorf("%w for %s", ErrNoCountry, ip)
	}

	return data.Country, nil
}

// Close releases idle keep-alive connections
func (l *IPInfoLookup) Close() error {
	l.client.CloseIdleConnections()
	return nil
}

func (l *IPInfoLookup) url(ip string) string {
	u := l.baseURL + "/" + url.PathEscape(ip) + "/json"
	if l.token != "" {
		u += "?" + url.Values{"token": {l.token}}.Encode()
	}
	return u
}

// bodyToSingleLine reads at most one line of an error body for messages
func bodyToSingleLine(body io.Reader) string {
	scanner := bufio.NewScanner(io.LimitReader(body, 512))
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}
