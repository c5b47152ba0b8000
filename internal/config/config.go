// Package config holds runtime constants and the optional soli.toml
// project file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	// SourceExt is the extension of Soli source files.
	SourceExt = ".soli"
	// BundleExt is the extension of compiled bytecode bundles.
	BundleExt = ".solib"
	// FileName is the project file looked up in the working directory.
	FileName = "soli.toml"

	DefaultBackend = "vm"
	DefaultPrompt  = "soli> "
)

// Config is the project configuration. Zero values fall back to the
// defaults above.
type Config struct {
	// Backend selects the execution engine: "vm" or "treewalk".
	Backend string `toml:"backend"`
	// Prompt overrides the REPL prompt.
	Prompt string `toml:"prompt"`
	// Database is the SQLite path handed to the db natives. Empty keeps
	// them on an in-memory database.
	Database string `toml:"database"`
	// NoColor disables ANSI colors even on a TTY.
	NoColor bool `toml:"no_color"`
}

func Default() Config {
	return Config{Backend: DefaultBackend, Prompt: DefaultPrompt}
}

// Load reads a soli.toml file and overlays it on the defaults. Unknown
// keys are rejected so typos surface instead of being ignored.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("load %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("load %s: unknown key %q", path, undecoded[0].String())
	}
	if cfg.Backend == "" {
		cfg.Backend = DefaultBackend
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	return cfg, nil
}

// LoadIfPresent loads the project file from the working directory, or the
// defaults when there is none.
func LoadIfPresent() (Config, error) {
	if _, err := os.Stat(FileName); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), err
	}
	return Load(FileName)
}
