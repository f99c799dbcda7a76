package config

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
)

// Encode writes cfg as TOML that Load accepts.
func Encode(w io.Writer, cfg Config) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("config encode failed: %w", err)
	}
	return nil
}
