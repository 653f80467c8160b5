package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel   = "info"
	DefaultJSONLog    = false
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36"
	DefaultBaseURL    = "https://www.elicense.ct.gov/lookup/licenselookup.aspx"
	DefaultOutputDir  = "outputs"
	DefaultOutputFile = "connecticut_dentists_landing.csv"
	DefaultPageDelay  = 800 * time.Millisecond
)

// DefaultHTTPTimeout leaves requests without a client-side deadline
const DefaultHTTPTimeout time.Duration = 0
