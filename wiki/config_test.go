package wiki

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresURL(t *testing.T) {
	t.Setenv("WIKI_URL", "")
	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() error = nil, want error without WIKI_URL")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("WIKI_URL", "https://wiki.example.org/w/")
	t.Setenv("WIKI_TOKEN", "")
	t.Setenv("WIKI_CSRF_TOKEN", "")
	t.Setenv("WIKI_TIMEOUT", "")
	t.Setenv("WIKI_USER_AGENT", "")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.BaseURL != "https://wiki.example.org/w" {
		t.Errorf("BaseURL = %q, want the trailing slash trimmed", config.BaseURL)
	}
	if config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s default", config.Timeout)
	}
	if config.UserAgent == "" {
		t.Error("UserAgent should have a default")
	}
	if config.HasToken() {
		t.Error("HasToken() = true without a token")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("WIKI_URL", "https://wiki.example.org/w")
	t.Setenv("WIKI_TOKEN", "oauth-token")
	t.Setenv("WIKI_CSRF_TOKEN", "csrf+\\")
	t.Setenv("WIKI_TIMEOUT", "5s")
	t.Setenv("WIKI_USER_AGENT", "custom-agent/2.0")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if !config.HasToken() || config.Token != "oauth-token" {
		t.Errorf("Token = %q", config.Token)
	}
	if config.CSRFToken != "csrf+\\" {
		t.Errorf("CSRFToken = %q", config.CSRFToken)
	}
	if config.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", config.Timeout)
	}
	if config.UserAgent != "custom-agent/2.0" {
		t.Errorf("UserAgent = %q", config.UserAgent)
	}
}

func TestLoadConfigIgnoresBadTimeout(t *testing.T) {
	t.Setenv("WIKI_URL", "https://wiki.example.org/w")
	t.Setenv("WIKI_TIMEOUT", "not-a-duration")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want the 30s default kept", config.Timeout)
	}
}
