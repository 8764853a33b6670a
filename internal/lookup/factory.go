package lookup

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config holds configuration for creating a Lookup
type Config struct {
	Provider string // "ipinfo", "csv", "mysql", "redis" or "mmdb"
	Timeout  time.Duration

	// ipinfo
	IPInfoBaseURL string
	IPInfoToken   string

	// csv
	DatasetPath string

	// mysql
	MySQLDSN string

	// redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// mmdb
	MMDBPath string
}

// New creates a Lookup based on the configuration (factory pattern).
// ctx bounds connection checks for the database backends.
func New(ctx context.Context, cfg Config) (Lookup, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	switch provider {
	case "ipinfo", "":
		return NewIPInfoLookup(cfg.IPInfoBaseURL, cfg.IPInfoToken, cfg.Timeout), nil

	case "csv":
		l, err := NewCSVLookup(cfg.DatasetPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create CSV lookup: %w", err)
		}
		return l, nil

	case "mysql":
		l, err := NewMySQLLookup(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create MySQL lookup: %w", err)
		}
		return l, nil

	case "redis":
		l, err := NewRedisLookup(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis lookup: %w", err)
		}
		return l, nil

	case "mmdb":
		l, err := NewMMDBLookup(cfg.MMDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create MMDB lookup: %w", err)
		}
		return l, nil

	default:
		return nil, fmt.Errorf("unknown lookup provider: %s (supported: 'ipinfo', 'csv', 'mysql', 'redis', 'mmdb')", cfg.Provider)
	}
}
