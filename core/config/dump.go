package config

import (
	"io"

	"github.com/BurntSushi/toml"
	"github.com/olebedev/config"
)

// Dump writes the effective configuration as TOML.
func Dump(w io.Writer, cfg *config.Config) error {
	return toml.NewEncoder(w).Encode(cfg.Root)
}
