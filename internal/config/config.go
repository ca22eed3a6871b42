// Package config holds the product service configuration.
package config

import (
	"strings"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/abgdnv/productcatalog/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Metrics    config.MetricsConfig    `koanf:"metrics"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	NATS       config.NATSConfig       `koanf:"nats"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	SKU        config.SKUConfig        `koanf:"sku"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
}

// sections lists the parts in the order they are printed and validated.
func (c *Config) sections() []section {
	return []section{
		&c.HTTPServer,
		&c.Database,
		&c.Log,
		&c.PProf,
		&c.Metrics,
		&c.Telemetry,
		&c.NATS,
		&c.Resilience,
		&c.SKU,
		&c.Shutdown,
	}
}

type section interface {
	String() string
	Validate() error
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("\n--- Product Service Configuration ---\n")
	for _, s := range c.sections() {
		b.WriteString(s.String())
	}
	return b.String()
}

// Validate checks if the configuration values are valid.
// Some sections fill in defaults while validating.
func (c *Config) Validate() error {
	for _, s := range c.sections() {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Defaults are applied before the YAML file and environment.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":               8080,
		"server.timeout.read":       "5s",
		"server.timeout.write":      "10s",
		"server.timeout.idle":       "60s",
		"server.timeout.readheader": "2s",

		"database.driver":  config.DriverPostgres,
		"database.timeout": "5s",
		"database.migrate": true,

		"log.level":    "info",
		"pprof.addr":   ":6060",
		"metrics.addr": ":9090",

		"nats.timeout": "5s",
		"nats.stream":  "PRODUCTS",

		"resilience.circuitbreaker.enabled":             true,
		"resilience.circuitbreaker.consecutivefailures": 5,
		"resilience.circuitbreaker.errorratepercent":    60,
		"resilience.circuitbreaker.maxrequests":         3,
		"resilience.circuitbreaker.opentimeout":         "5s",

		"sku.prefix":       "FAL_",
		"shutdown.timeout": "10s",
	}
}
