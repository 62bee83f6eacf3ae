package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

// config holds the defaults read from .sourcemaprc.toml, overridable by
// per-invocation flags.
type config struct {
	LogLevel     string `toml:"log_level"`
	Bias         string `toml:"bias"`
	ContextLines int    `toml:"context_lines"`
}

func defaultConfig() config {
	return config{
		LogLevel:     "info",
		Bias:         "floor",
		ContextLines: 2,
	}
}

// loadConfig reads .sourcemaprc.toml from the current directory if it
// exists, overlaying it on top of the built-in defaults. A missing file
// is not an error: the tool runs fine with defaults alone.
func loadConfig() (config, error) {
	cfg := defaultConfig()

	if _, err := os.Stat(".sourcemaprc.toml"); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(".sourcemaprc.toml", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
