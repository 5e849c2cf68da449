package apiclient

import (
	"strings"
	"time"

	"outreachDesk/internal/shared/auth"
)

const (
	DefaultBaseURL = "http://localhost:8000/api/v1"
	DefaultTimeout = 30 * time.Second
	// MockToken is the development placeholder accepted by a local backend.
	MockToken = "mock-jwt-token-for-development"

	redactedPrefixLen = 20
)

// Config is the immutable connection setup of a Client.
type Config struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig targets a local backend with the development token.
func DefaultConfig() Config {
	return Config{Token: MockToken, BaseURL: DefaultBaseURL, Timeout: DefaultTimeout}
}

// WithDefaults fills blank fields from DefaultConfig and trims the base URL.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(c.Token) == "" {
		c.Token = defaults.Token
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaults.Timeout
	}
	return c
}

// RedactedToken shows enough of the token to identify it in logs.
func (c Config) RedactedToken() string {
	return c.Token[:min(len(c.Token), redactedPrefixLen)] + "..."
}

// HasValidToken reports whether the token is usable against a real backend.
// JWTs are inspected without verification so an expired token is caught early.
func (c Config) HasValidToken() bool {
	token := strings.TrimSpace(c.Token)
	if token == "" || token == MockToken {
		return false
	}
	if exp, ok := auth.InspectExpiry(token); ok && !exp.After(time.Now()) {
		return false
	}
	return true
}
