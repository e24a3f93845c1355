// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/zkpauth/internal/zkp"
)

// Config holds runtime settings for the zkpauth server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the public gRPC endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory registry.
//   - SecretKey: HMAC secret for signing session JWTs (HS256). Do not use test defaults in prod.
//   - ParamSet: name of the group parameter set the server operates on.
//   - SessionTTL: how long an authentication session may stay open.
//   - TokenValidityDuration: lifetime of issued session tokens.
type Config struct {
	EndpointAddrGRPC      string
	DatabaseDSN           string
	SecretKey             string
	ParamSet              string
	SessionTTL            time.Duration
	TokenValidityDuration time.Duration
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.ParamSet = zkp.RFC5114Name
	c.SessionTTL = 2 * time.Minute
	c.TokenValidityDuration = 30 * time.Minute
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
