package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Color is the configured output-styling mode. It is loaded into Config,
// but no renderer reads it, so terminal styling does not depend on it.
type Color string

const (
	ColorAuto   Color = "auto"
	ColorAlways Color = "always"
	ColorNever  Color = "never"
)

// Config holds modman's own operational settings, layered from the
// embedded defaults, an optional user config file, and an optional
// directory-local override, in that order of increasing precedence.
type Config struct {
	WorkerCount int   `koanf:"worker_count"`
	Color       Color `koanf:"color"`
	Verbosity   int   `koanf:"verbosity"`
}

// UserConfigPath is where a user may place persistent overrides.
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "modman", "config.toml")
}

// LocalConfigPath is where a directory-local override may live, checked
// relative to the current working directory (the same place modman.profile
// lives).
const LocalConfigPath = ".modman.toml"

// Load resolves modman's configuration by layering the embedded defaults,
// the user config file (if present), and a local .modman.toml (if present).
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return Config{}, fmt.Errorf("failed to load built-in defaults: %w", err)
	}

	for _, path := range []string{UserConfigPath(), LocalConfigPath} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return cfg, nil
}
