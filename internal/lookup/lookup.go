package lookup

import (
	"context"
	"errors"
)

// Lookup resolves an IP address to a country code.
// Implementations exist for ipinfo.io, a CSV dataset, MySQL, Redis and
// MaxMind MMDB files; all of them are read-only.
type Lookup interface {
	// LookupCountry returns the ISO-3166 alpha-2 code for ip, as reported by
	// the backend (case is not normalised here)
	LookupCountry(ctx context.Context, ip string) (string, error)

	// Name identifies the backend in logs and metrics
	Name() string

	// Close cleans up resources (connections, file handles, watchers)
	Close() error
}

var (
	ErrNotFound  = errors.New("IP address not found")
	ErrNoCountry = errors.New("lookup response has no country")
	ErrBadStatus = errors.New("bad HTTP status from lookup service")
)
