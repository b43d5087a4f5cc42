// Package config loads blamewalk's optional TOML config file, layered
// under the CLI's own cobra flags the way cmd/hercules/root.go layers
// flags over compiled-in defaults. Grounded on ImGajeed76-pgit's
// internal/config.Load (github.com/BurntSushi/toml, default-then-decode).
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Blame holds the blame_file defaults a config file can set, mirroring
// the fields of blame.Options the CLI exposes as flags.
type Blame struct {
	TrackCopiesSameFile  bool `toml:"track_copies_same_file"`
	TrackCopiesMoves     bool `toml:"track_copies_same_commit_moves"`
	TrackCopiesCopies    bool `toml:"track_copies_same_commit_copies"`
	TrackCopiesAny       bool `toml:"track_copies_any_commit_copies"`
	FirstParent          bool `toml:"first_parent"`
	IgnoreWhitespace     bool `toml:"ignore_whitespace"`
	UseMailmap           bool `toml:"use_mailmap"`
}

// Config is the shape of .blamewalk.toml.
type Config struct {
	Blame Blame `toml:"blame"`
}

// Default returns a Config with every flag off, the same zero-value
// defaults blame.OptionsInit documents.
func Default() *Config {
	return &Config{}
}

// Load reads and decodes path. A missing file is not an error: the
// caller gets Default() back, since a config file is optional.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
