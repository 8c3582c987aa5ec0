// Package config loads .epp.toml settings, grounded on
// valVk-resterm/internal/config/settings.go's TOML-first loader: try a
// config file, fall back to defaults if it doesn't exist, fail hard on
// a parse error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

type Settings struct {
	MaxLoopIterations int    `toml:"max_loop_iterations"`
	LogLevel          string `toml:"log_level"`
	TraceDB           string `toml:"trace_db"`
}

func Defaults() Settings {
	return Settings{
		MaxLoopIterations: 100000,
		LogLevel:          "error",
	}
}

// Load reads `path` if it exists and overlays it onto the defaults. A
// missing file is not an error; a malformed one is.
func Load(path string) (Settings, error) {
	settings := Defaults()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read config %q: %w", path, err)
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	if settings.MaxLoopIterations <= 0 {
		settings.MaxLoopIterations = Defaults().MaxLoopIterations
	}
	return settings, nil
}
