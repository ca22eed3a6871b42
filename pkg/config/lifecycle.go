package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// maxShutdownTimeout bounds how long the process may wait for in-flight requests.
const maxShutdownTimeout = 5 * time.Minute

// PProfConfig controls the profiling listener.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) String() string {
	return describeListener("PProf", c.Enabled, c.Addr)
}

func (c *PProfConfig) Validate() error {
	return validateListener("pprof", c.Enabled, c.Addr)
}

// MetricsConfig controls the Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *MetricsConfig) String() string {
	return describeListener("Metrics", c.Enabled, c.Addr)
}

func (c *MetricsConfig) Validate() error {
	return validateListener("metrics", c.Enabled, c.Addr)
}

type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	return fmt.Sprintf("\n--- Shutdown ---\n  timeout: %s\n", c.Timeout)
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 || c.Timeout > maxShutdownTimeout {
		return fmt.Errorf("shutdown timeout must be in (0, %s], got %s", maxShutdownTimeout, c.Timeout)
	}
	return nil
}

func describeListener(title string, enabled bool, addr string) string {
	var b strings.Builder
	b.WriteString("\n--- " + title + " ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", enabled))
	b.WriteString(fmt.Sprintf("  address: %s\n", addr))
	return b.String()
}

// validateListener accepts host:port or :port addresses for enabled listeners.
func validateListener(name string, enabled bool, addr string) error {
	if !enabled {
		return nil
	}
	if addr == "" {
		return fmt.Errorf("%s is enabled but address is not configured", name)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s address %q is not host:port: %w", name, addr, err)
	}
	return nil
}
