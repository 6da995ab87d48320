package configuration

import (
	"os"
	"testing"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.HTTP.Port != 8080 {
		t.Fatalf("Port = %d, want 8080", c.HTTP.Port)
	}
}

func TestParseOverlaysYAML(t *testing.T) {
	c, err := Parse([]byte("baseurl: https://example.com\nhttp:\n  port: 9090\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.BaseURL != "https://example.com" {
		t.Fatalf("BaseURL = %q", c.BaseURL)
	}
	if c.HTTP.Port != 9090 {
		t.Fatalf("Port = %d, want 9090", c.HTTP.Port)
	}
}

func TestParseEnvOverridesNestedField(t *testing.T) {
	os.Setenv("ESTUARY_HTTP_PORT", "9999")
	defer os.Unsetenv("ESTUARY_HTTP_PORT")

	c, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.HTTP.Port != 9999 {
		t.Fatalf("Port = %d, want 9999 (env override)", c.HTTP.Port)
	}
}

func TestParseEnvOverridesTopLevelField(t *testing.T) {
	os.Setenv("ESTUARY_BASEURL", "https://override.example.com")
	defer os.Unsetenv("ESTUARY_BASEURL")

	c, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.BaseURL != "https://override.example.com" {
		t.Fatalf("BaseURL = %q", c.BaseURL)
	}
}
