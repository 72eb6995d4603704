package wiki

import (
	"errors"
	"os"
	"strings"
	"time"
)

// Config holds wiki connection settings.
type Config struct {
	// BaseURL is the wiki's script path, without a trailing API suffix
	// (e.g. https://wiki.example.com/w). The client derives both the
	// resource endpoint (rest.php/v1) and the action endpoint (api.php)
	// from it during protocol detection.
	BaseURL string

	// Token is an optional OAuth bearer token, attached as an
	// Authorization header on mutating calls.
	Token string

	// CSRFToken is an optional caller-supplied edit token for
	// anonymous/cookie-based sessions. When empty the client obtains one
	// from the server before the first write.
	CSRFToken string

	// Timeout for API requests
	Timeout time.Duration

	// UserAgent identifies the client to the wiki
	UserAgent string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	baseURL := os.Getenv("WIKI_URL")
	if baseURL == "" {
		return nil, errors.New("WIKI_URL environment variable is required")
	}

	timeout := 30 * time.Second
	if t := os.Getenv("WIKI_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	userAgent := os.Getenv("WIKI_USER_AGENT")
	if userAgent == "" {
		userAgent = "wikibridge/1.0 (https://github.com/olgasafonova/wikibridge)"
	}

	return &Config{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Token:     os.Getenv("WIKI_TOKEN"),
		CSRFToken: os.Getenv("WIKI_CSRF_TOKEN"),
		Timeout:   timeout,
		UserAgent: userAgent,
	}, nil
}

// HasToken returns true when a bearer token is configured.
func (c *Config) HasToken() bool {
	return c.Token != ""
}
