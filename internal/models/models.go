package models

// IPCountry maps an IP address (or CIDR prefix in datasets) to an
// ISO-3166 alpha-2 country code
type IPCountry struct {
	IP      string `json:"-"`       // The IP address, kept out of stored JSON values
	Country string `json:"country"` // Two-letter country code, e.g. "IR"
}

// IPInfoResponse is the subset of the ipinfo.io /{ip}/json payload we read.
// Bogon addresses come back without a country.
type IPInfoResponse struct {
	IP      string `json:"ip"`
	Country string `json:"country"`
	Bogon   bool   `json:"bogon"`
}
