package config

import (
	"time"

	"github.com/dmitrijs2005/zkpauth/internal/zkp"
)

// Config holds runtime settings for the zkpauth CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - ParamSet: name of the group parameter set; must match the server.
//   - RequestTimeout: per-request deadline for RPC calls.
type Config struct {
	ServerEndpointAddr string
	ParamSet           string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.ParamSet = zkp.RFC5114Name
	c.RequestTimeout = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
