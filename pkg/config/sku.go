package config

import (
	"fmt"
	"strings"
)

type SKUConfig struct {
	Prefix string `koanf:"prefix"`
}

const defaultSKUPrefix = "FAL_"

// String returns a string representation of the SKU configuration.
func (c *SKUConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- SKU ---\n")
	b.WriteString(fmt.Sprintf("  prefix: %s\n", c.Prefix))
	return b.String()
}

func (c *SKUConfig) Validate() error {
	if c.Prefix == "" {
		c.Prefix = defaultSKUPrefix
	}
	if strings.ContainsAny(c.Prefix, " /?#") {
		return fmt.Errorf("sku prefix must not contain spaces or URL delimiters: %q", c.Prefix)
	}
	return nil
}
