package service

import (
	"context"
	"strings"
	"time"

	"github.com/evyataryagoni/geopage/internal/logger"
	"github.com/evyataryagoni/geopage/internal/lookup"
	"github.com/evyataryagoni/geopage/internal/metrics"
	"github.com/go-playground/validator/v10"
)

// DefaultLookupTimeout bounds a lookup when no timeout is configured
const DefaultLookupTimeout = 3 * time.Second

// GeoService decides whether a client address belongs to the target country.
// It fails open: every lookup problem answers "not the target".
type GeoService struct {
	lookup        lookup.Lookup
	targetCountry string
	timeout       time.Duration
	validator     *validator.Validate
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

// NewGeoService creates a new geo service
//
// Parameters:
//   - l: any implementation of the Lookup interface
//   - targetCountry: two-letter code, compared case-insensitively
//   - timeout: per-lookup bound, DefaultLookupTimeout when <= 0
//   - m: metrics collector (optional, can be nil)
//   - log: logger (optional, can be nil)
func NewGeoService(l lookup.Lookup, targetCountry string, timeout time.Duration, m *metrics.Metrics, log *logger.Logger) *GeoService {
	if log == nil {
		log = logger.NewDefault()
	}
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &GeoService{
		lookup:        l,
		targetCountry: strings.ToUpper(strings.TrimSpace(targetCountry)),
		timeout:       timeout,
		validator:     validator.New(),
		metrics:       m,
		logger:        log.WithComponent("GeoService"),
	}
}

// TargetCountry returns the normalised target code
func (s *GeoService) TargetCountry() string {
	return s.targetCountry
}

// IsTargetCountry reports whether ip geolocates to the target country.
//
// Flow:
//  1. Validate the address format
//  2. Look it up with a bounded context
//  3. Compare the uppercased code against the target
//
// Invalid input, lookup errors and timeouts all return false.
func (s *GeoService) IsTargetCountry(ctx context.Context, ip string) bool {
	if err := s.validator.Var(ip, "required,ip"); err != nil {
		s.logger.Warn().Str("ip", ip).Msg("Invalid IP address format, skipping lookup")
		s.record(metrics.ResultInvalid)
		return false
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	country, err := s.lookup.LookupCountry(lookupCtx, ip)
	if s.metrics != nil {
		s.metrics.GeoLookupDuration.WithLabelValues(s.lookup.Name()).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("ip", ip).
			Str("provider", s.lookup.Name()).
			Msg("IP check error, serving default page")
		s.record(metrics.ResultError)
		return false
	}

	matched := strings.ToUpper(strings.TrimSpace(country)) == s.targetCountry

	s.logger.Debug().
		Str("ip", ip).
		Str("country", country).
		Bool("matched", matched).
		Msg("IP lookup successful")

	if matched {
		s.record(metrics.ResultMatch)
	} else {
		s.record(metrics.ResultNoMatch)
	}
	return matched
}

// Close cleans up the underlying lookup backend
func (s *GeoService) Close() error {
	return s.lookup.Close()
}

func (s *GeoService) record(result string) {
	if s.metrics != nil {
		s.metrics.GeoLookupsTotal.WithLabelValues(s.lookup.Name(), result).Inc()
	}
}
