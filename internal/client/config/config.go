// Package config handles configuration for the CLI client, including
// defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings for the vault CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the vault HTTP API.
//   - ExportDir: directory (under the working directory) for encrypted
//     vault exports.
type Config struct {
	ServerEndpointAddr string
	ExportDir          string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:3000"
	c.ExportDir = "exports"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
