package config

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORE_URL", "https://shop.example.com")
	t.Setenv("STORE_BEARER_TOKEN", "tok123")
	t.Setenv("STORE_MIN_API_VERSION", "1.2.0")
	t.Setenv("STORE_DOMAIN", "")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.Store.StoreURL != "https://shop.example.com" {
		t.Errorf("StoreURL = %s", cfg.Store.StoreURL)
	}
	if cfg.Store.BearerToken != "tok123" {
		t.Errorf("BearerToken = %s", cfg.Store.BearerToken)
	}
	if cfg.Store.MinAPIVersion != "1.2.0" {
		t.Errorf("MinAPIVersion = %s", cfg.Store.MinAPIVersion)
	}

	// Derived domain
	if cfg.Store.StoreDomain != "shop.example.com" {
		t.Errorf("StoreDomain = %s, want shop.example.com", cfg.Store.StoreDomain)
	}
}

func TestLoadMissingStoreURL(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("STORE_URL", "")

	_, err := Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "store_url is required") {
		t.Errorf("err = %v, want store_url is required", err)
	}
}

func TestLoadInvalidStoreURL(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("STORE_URL", "shop.example.com")

	_, err := Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "http(s)") {
		t.Errorf("err = %v, want scheme error for bare host", err)
	}
}

func TestProductionRequiresGCPSettings(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "production")

	t.Run("missing GCP_PROJECT", func(t *testing.T) {
		t.Setenv("GCP_PROJECT", "")
		t.Setenv("STORE_ID", "shop-1")
		_, err := Load(context.Background())
		if err == nil || !strings.Contains(err.Error(), "GCP_PROJECT") {
			t.Errorf("err = %v, want GCP_PROJECT error", err)
		}
	})

	t.Run("missing STORE_ID", func(t *testing.T) {
		t.Setenv("GCP_PROJECT", "proj-1")
		t.Setenv("STORE_ID", "")
		_, err := Load(context.Background())
		if err == nil || !strings.Contains(err.Error(), "STORE_ID") {
			t.Errorf("err = %v, want STORE_ID error", err)
		}
	})
}

func TestLoadFromFile(t *testing.T) {
	content := `{
		"port": "9090",
		"environment": "test",
		"log_level": "debug",
		"store_id": "file-store",
		"store": {
			"store_url": "https://file-shop.com",
			"bearer_token": "tok-file",
			"min_api_version": "1.0.0"
		}
	}`

	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.json")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	t.Setenv("CONFIG_FILE", tmpFile.Name())

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if cfg.StoreID != "file-store" {
		t.Errorf("StoreID = %s, want file-store", cfg.StoreID)
	}
	if cfg.Store.StoreURL != "https://file-shop.com" {
		t.Errorf("StoreURL = %s", cfg.Store.StoreURL)
	}
	if cfg.Store.StoreDomain != "file-shop.com" {
		t.Errorf("StoreDomain = %s, want file-shop.com (derived)", cfg.Store.StoreDomain)
	}
	if cfg.Store.BearerToken != "tok-file" {
		t.Errorf("BearerToken = %s", cfg.Store.BearerToken)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	t.Run("file not found", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", "/nonexistent/config.json")
		if _, err := Load(context.Background()); err == nil {
			t.Error("expected error for nonexistent file")
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		tmpFile, _ := os.CreateTemp(t.TempDir(), "config-*.json")
		tmpFile.WriteString("{invalid json")
		tmpFile.Close()

		t.Setenv("CONFIG_FILE", tmpFile.Name())
		if _, err := Load(context.Background()); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})

	t.Run("missing store_url", func(t *testing.T) {
		tmpFile, _ := os.CreateTemp(t.TempDir(), "config-*.json")
		tmpFile.WriteString(`{"store_id": "test"}`)
		tmpFile.Close()

		t.Setenv("CONFIG_FILE", tmpFile.Name())
		_, err := Load(context.Background())
		if err == nil || !strings.Contains(err.Error(), "store_url is required") {
			t.Errorf("err = %v, want store_url error", err)
		}
	})
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://shop.example.com", "shop.example.com"},
		{"https://shop.example.com/", "shop.example.com"},
		{"https://shop.example.com/path/to/page", "shop.example.com"},
		{"http://shop.example.com:8080", "shop.example.com:8080"},
		{"https://sub.shop.example.com", "sub.shop.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := extractDomain(tt.url); got != tt.want {
				t.Errorf("extractDomain(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_ENV_VAR", "custom")
	if got := envOrDefault("TEST_ENV_VAR", "default"); got != "custom" {
		t.Errorf("envOrDefault with set var = %q, want custom", got)
	}
	if got := envOrDefault("TEST_ENV_VAR_UNSET", "default"); got != "default" {
		t.Errorf("envOrDefault with unset var = %q, want default", got)
	}
}

func TestWithDefault(t *testing.T) {
	if got := withDefault("value", "default"); got != "value" {
		t.Errorf("withDefault(value, default) = %q, want value", got)
	}
	if got := withDefault("", "default"); got != "default" {
		t.Errorf("withDefault('', default) = %q, want default", got)
	}
}
