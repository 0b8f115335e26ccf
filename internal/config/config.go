// Package config loads the optional offload configuration file. The
// file supplies persistent defaults for flags; explicit flags always
// win.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// Config represents the optional offload configuration file.
type Config struct {
	Defaults Defaults `toml:"defaults"`
	Theme    Theme    `toml:"theme"`
}

// Defaults holds persistent flag defaults. Pointer fields distinguish
// "not set" from zero values.
type Defaults struct {
	Verify            *bool    `toml:"verify"`
	Workers           *int     `toml:"workers"`
	Hash              *string  `toml:"hash"`
	BWLimit           *string  `toml:"bwlimit"`
	DestRoot          *string  `toml:"dest_root"`
	LogFile           *string  `toml:"log_file"`
	Excludes          []string `toml:"excludes"`
	NoDefaultExcludes *bool    `toml:"no_default_excludes"`
}

// Theme holds optional color overrides for the console summary.
type Theme struct {
	Accent *string `toml:"accent"`
	Good   *string `toml:"good"`
	Bad    *string `toml:"bad"`
	Muted  *string `toml:"muted"`
}

// Path returns the resolved path to the config file.
func Path() string {
	return filepath.Join(xdg.ConfigHome, "offload", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(Path(), &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}
