// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/batchfx/pkg/file"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrUnsupportedFormat = errors.Base("unsupported config format")
	ErrInvalidConfig     = errors.Base("invalid config")
)

// FileNames are looked up, in order, by Find.
var FileNames = []string{".batchfx.yaml", ".batchfx.yml", ".batchfx.json", ".batchfx.hcl"}

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte, filename string) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var parsers []Parser

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config is the engine configuration.
type Config struct {
	// Workers bounds how many tasks run at once; 0 means one per CPU.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`
	// LogLevel is a zerolog level name.
	LogLevel      string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	CaseSensitive bool   `json:"case_sensitive,omitempty" yaml:"case_sensitive,omitempty"`
	// Suffixes are extra multi-part suffixes such as "tar.lz".
	Suffixes []string `json:"suffixes,omitempty" yaml:"suffixes,omitempty"`
	TrashDir string   `json:"trash_dir,omitempty" yaml:"trash_dir,omitempty"`
	Recipes  []Recipe `json:"recipes,omitempty" yaml:"recipes,omitempty"`

	location string
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

// 🔎 Find returns the first config file from FileNames present in dir, or
// "" when there is none.
func Find(dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// 🎯 Load reads, parses and validates the config at path. The format comes
// from the file extension.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("%q: %w", filepath.Ext(path), ErrUnsupportedFormat)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := p.Parse(ctx, data, path)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().Int("workers", cfg.Workers).Int("recipes", len(cfg.Recipes)).Msg("configuration loaded")
	return cfg, nil
}

// Location is the file the config was loaded from, if any.
func (cfg *Config) Location() string { return cfg.location }

// 🔍 Validate checks the configuration and fills in defaults.
func (cfg *Config) Validate() error {
	if cfg.Workers < 0 {
		return errors.Errorf("workers must not be negative: %w", ErrInvalidConfig)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = zerolog.InfoLevel.String()
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil {
		return errors.Errorf("log_level %q: %w", cfg.LogLevel, ErrInvalidConfig)
	}

	for i, s := range cfg.Suffixes {
		s = strings.Trim(strings.TrimSpace(s), ".")
		if s == "" || strings.ContainsAny(s, `/\`) {
			return errors.Errorf("suffix %q: %w", cfg.Suffixes[i], ErrInvalidConfig)
		}
		cfg.Suffixes[i] = s
	}

	if cfg.TrashDir != "" {
		cfg.TrashDir = filepath.Clean(cfg.TrashDir)
	}

	seen := map[string]bool{}
	for i := range cfg.Recipes {
		r := &cfg.Recipes[i]
		if r.Name == "" {
			return errors.Errorf("recipe %d has no name: %w", i, ErrInvalidConfig)
		}
		if seen[r.Name] {
			return errors.Errorf("recipe %q is defined twice: %w", r.Name, ErrInvalidConfig)
		}
		seen[r.Name] = true
		if err := r.validate(); err != nil {
			return errors.Errorf("recipe %q: %w", r.Name, err)
		}
	}
	return nil
}

// Level is the parsed LogLevel.
func (cfg *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || cfg.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Recipe looks a recipe up by name.
func (cfg *Config) Recipe(name string) (Recipe, bool) {
	for _, r := range cfg.Recipes {
		if r.Name == name {
			return r, true
		}
	}
	return Recipe{}, false
}

// RecipeNames lists recipe names in file order.
func (cfg *Config) RecipeNames() []string {
	out := make([]string, 0, len(cfg.Recipes))
	for _, r := range cfg.Recipes {
		out = append(out, r.Name)
	}
	return out
}

// Apply registers the configured suffixes with the file package.
func (cfg *Config) Apply() {
	if len(cfg.Suffixes) > 0 {
		file.RegisterSuffix(cfg.Suffixes...)
	}
}

func validPatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return errors.Errorf("pattern %q: %w", p, ErrInvalidConfig)
		}
	}
	return nil
}
