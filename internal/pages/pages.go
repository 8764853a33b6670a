// Package pages holds the two static HTML responses.
package pages

import _ "embed"

var (
	//go:embed html/target.html
	targetPage []byte

	//go:embed html/default.html
	defaultPage []byte
)

// Variant names used in logs and metrics
const (
	VariantTarget  = "target"
	VariantDefault = "default"
)

// Target is the right-to-left page served to visitors from the target country
func Target() []byte { return targetPage }

// Default is the overlay page served to everyone else, and whenever the
// lookup fails
func Default() []byte { return defaultPage }

// Select returns the page body and its variant name
func Select(matched bool) ([]byte, string) {
	if matched {
		return targetPage, VariantTarget
	}
	return defaultPage, VariantDefault
}
