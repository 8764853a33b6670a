package lookup

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// MMDBLookup answers from a MaxMind GeoIP2/GeoLite2 country database
type MMDBLookup struct {
	db *geoip2.Reader
}

// NewMMDBLookup opens the MMDB file at path
func NewMMDBLookup(path string) (*MMDBLookup, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MMDB file: %w", err)
	}
	return &MMDBLookup{db: db}, nil
}

func (l *MMDBLookup) Name() string { return "mmdb" }

// LookupCountry implements Lookup
func (l *MMDBLookup) LookupCountry(_ context.Context, ip string) (string, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", fmt.Errorf("parsing IP %q: invalid address", ip)
	}

	record, err := l.db.Country(parsed)
	if err != nil {
		return "", fmt.Errorf("country lookup failed: %w", err)
	}
	if record.Country.IsoCode == "" {
		return "", ErrNotFound
	}

	return record.Country.IsoCode, nil
}

// Close releases the MMDB reader resources
func (l *MMDBLookup) Close() error {
	return l.db.Close()
}
