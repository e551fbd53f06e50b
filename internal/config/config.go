/*
Package config loads crtree settings from an optional TOML file.

Command-line flags override file values, which override the built-in defaults.
The default file lives at $XDG_CONFIG_HOME/crtree/config.toml (or
~/.config/crtree/config.toml) and may be absent.
*/
package config

/*
crtree — subdomain trees from Certificate Transparency search results
Copyright (C) 2025  Pepijn van der Stap <rxtls@vanderstap.info>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/x-stp/crtree/internal/core"
	"github.com/x-stp/crtree/internal/forest"
	"github.com/x-stp/crtree/internal/tree"
)

const appName = "crtree"

// Duration is a time.Duration decoded from strings such as "90s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config mirrors the config file. Every field has a command-line flag of the same name.
type Config struct {
	Style       string `toml:"style"`
	IncludeRoot bool   `toml:"include_root"`
	Spaces      int    `toml:"spaces"`
	Wildcards   string `toml:"wildcards"`
	SANs        bool   `toml:"sans"`
	Normalize   bool   `toml:"normalize"`
	Format      string `toml:"format"`
	NoColor     bool   `toml:"no_color"`

	Fetch  FetchConfig  `toml:"fetch"`
	Server ServerConfig `toml:"server"`
}

// FetchConfig tunes the crt.sh lookups.
type FetchConfig struct {
	BaseURL   string   `toml:"base_url"`
	UserAgent string   `toml:"user_agent"`
	Workers   int      `toml:"workers"`
	Rate      float64  `toml:"rate"`
	Burst     int      `toml:"burst"`
	Timeout   Duration `toml:"timeout"`
}

// ServerConfig holds the serve mode and metrics listener addresses.
type ServerConfig struct {
	Addr        string `toml:"addr"`
	MetricsAddr string `toml:"metrics_addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Style:     tree.DefaultStyle,
		Wildcards: string(forest.WildcardKeep),
		Format:    string(core.FormatText),
		Fetch: FetchConfig{
			Workers: core.DefaultWorkers,
			Rate:    float64(core.DefaultRate),
			Burst:   core.DefaultBurst,
			Timeout: Duration{core.DefaultFetchTimeout},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// DefaultPath returns the XDG location of the config file.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads path on top of Default. With an empty path the default location
// is tried and a missing file there is not an error. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("error loading config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Default(), fmt.Errorf("error loading config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every enumerated and numeric setting.
func (c Config) Validate() error {
	if _, err := tree.LookupStyle(c.Style); err != nil {
		return err
	}
	if _, err := forest.ParseWildcardPolicy(c.Wildcards); err != nil {
		return err
	}
	if _, err := core.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Spaces < 0 {
		return fmt.Errorf("spaces must not be negative, got %d", c.Spaces)
	}
	if c.Fetch.Workers < 0 || c.Fetch.Burst < 0 || c.Fetch.Rate < 0 || c.Fetch.Timeout.Duration < 0 {
		return errors.New("fetch settings must not be negative")
	}
	return nil
}
