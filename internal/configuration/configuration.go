// Package configuration loads the estuary server configuration from a YAML
// file, optionally overridden by environment variables, the way the
// registry's configuration package does it.
package configuration

import "fmt"

// Configuration is the full set of options a deployment of estuary is
// configured with.
type Configuration struct {
	// BaseURL is the public root URL used to compose the "dl" and "api"
	// fields written into the index's config.json.
	BaseURL string `yaml:"baseurl"`

	// CrateDir is the root directory under which published artifacts are
	// stored, laid out as <name>/<vers>/<name>-<vers>.crate.
	CrateDir string `yaml:"cratedir"`

	// IndexDir is the root directory of the index's version-control
	// repository.
	IndexDir string `yaml:"indexdir"`

	// DownloadURL optionally overrides the "dl" template written into
	// config.json. When empty, BaseURL is used to compose the default
	// in-process download endpoint.
	DownloadURL string `yaml:"downloadurl,omitempty"`

	// GitBin is an optional path to an external git binary. The core does
	// not shell out (it uses go-git in-process), so this is accepted only
	// for operator parity with deployments that expect the option to
	// exist, and is otherwise unused.
	GitBin string `yaml:"gitbin,omitempty"`

	HTTP HTTP `yaml:"http"`

	Log Log `yaml:"log"`
}

// HTTP holds the bind address for the API server.
type HTTP struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the host:port string the server should listen on.
func (h HTTP) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// Log holds logging configuration, mirroring the registry's Log section.
type Log struct {
	Level     string            `yaml:"level,omitempty"`
	Formatter string            `yaml:"formatter,omitempty"`
	Fields    map[string]string `yaml:"fields,omitempty"`
}

// Default returns a Configuration with the registry's conventional
// defaults: bind on all interfaces at 8080, store everything under
// ./data.
func Default() *Configuration {
	return &Configuration{
		BaseURL:  "http://localhost:8080",
		CrateDir: "./data/crates",
		IndexDir: "./data/index",
		HTTP:     HTTP{Host: "0.0.0.0", Port: 8080},
		Log:      Log{Level: "info", Formatter: "text"},
	}
}

// Validate checks that the configuration is complete enough to start a
// server.
func (c *Configuration) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("configuration: baseurl must be set")
	}
	if c.CrateDir == "" {
		return fmt.Errorf("configuration: cratedir must be set")
	}
	if c.IndexDir == "" {
		return fmt.Errorf("configuration: indexdir must be set")
	}
	return nil
}

// DownloadTemplate returns the "dl" template written into the index's
// config.json: the operator override if set, otherwise the in-process
// download endpoint built from BaseURL.
func (c *Configuration) DownloadTemplate() string {
	if c.DownloadURL != "" {
		return c.DownloadURL
	}
	return c.BaseURL + "/api/v1/crates/{crate}/{version}/download"
}
