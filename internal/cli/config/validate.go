package config

import "fmt"

var validOutputs = map[string]bool{
	"auto": true,
	"text": true,
	"json": true,
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !validOutputs[c.Output] {
		return fmt.Errorf("invalid output mode %q (must be auto, text or json)", c.Output)
	}
	if c.Go.Bin == "" {
		return fmt.Errorf("go.bin is required")
	}
	if c.Format.Tool == "" {
		return fmt.Errorf("format.tool is required")
	}
	if c.Lint.Tool == "" {
		return fmt.Errorf("lint.tool is required")
	}
	if len(c.Lint.Rules) == 0 {
		return fmt.Errorf("lint.rules must not be empty")
	}
	return nil
}
