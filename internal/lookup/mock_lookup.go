package lookup

import (
	"context"
	"sync"
)

// MockLookup is a test double for the Lookup interface
type MockLookup struct {
	mu sync.Mutex

	// Data holds the mock answers (IP address -> country code)
	Data map[string]string

	// Control behavior for error scenarios
	LookupError error
	// Block makes LookupCountry wait for ctx to be done, to simulate a hung backend
	Block bool

	// Track method calls for verification in tests
	LookupCalls []string
	CloseCalled bool
}

// NewMockLookup creates a mock pre-populated with common test IPs
func NewMockLookup() *MockLookup {
	return &MockLookup{
		Data: map[string]string{
			"5.160.0.1": "IR",
			"2.144.0.1": "ir",
			"8.8.8.8":   "US",
			"1.1.1.1":   "AU",
		},
		LookupCalls: []string{},
	}
}

func (m *MockLookup) Name() string { return "mock" }

// LookupCountry implements the Lookup interface
func (m *MockLookup) LookupCountry(ctx context.Context, ip string) (string, error) {
	m.mu.Lock()
	m.LookupCalls = append(m.LookupCalls, ip)
	block, lookupErr := m.Block, m.LookupError
	country, exists := m.Data[ip]
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if lookupErr != nil {
		return "", lookupErr
	}
	if !exists {
		return "", ErrNotFound
	}
	return country, nil
}

// Calls returns a copy of the recorded lookups
func (m *MockLookup) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.LookupCalls...)
}

// Close implements the Lookup interface
func (m *MockLookup) Close() error {
	m.mu.Lock()
	m.CloseCalled = true
	m.mu.Unlock()
	return nil
}
