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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultIgnoreFile = ".forceignore"
	DefaultChunkSize  = 10
	DefaultLogLevel   = "info"
	DefaultRef        = "HEAD"
)

// Providers names the supported remote providers.
var Providers = []string{"dir", "github"}

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, filename string, data []byte) (*Config, error)

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

// 🌐 Remote is where the remote profile set comes from
type Remote struct {
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty" hcl:"provider,optional"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty" hcl:"path,optional"`
	Repo     string `json:"repo,omitempty" yaml:"repo,omitempty" hcl:"repo,optional"`
	Ref      string `json:"ref,omitempty" yaml:"ref,omitempty" hcl:"ref,optional"`
}

// 👤 Profiles tunes profile sync
type Profiles struct {
	ChunkSize       int      `json:"chunk_size,omitempty" yaml:"chunk_size,omitempty" hcl:"chunk_size,optional"`
	DefaultDir      string   `json:"default_dir,omitempty" yaml:"default_dir,omitempty" hcl:"default_dir,optional"`
	ExcludePackages bool     `json:"exclude_packages,omitempty" yaml:"exclude_packages,omitempty" hcl:"exclude_packages,optional"`
	Delete          bool     `json:"delete,omitempty" yaml:"delete,omitempty" hcl:"delete,optional"`
	Skip            []string `json:"skip,omitempty" yaml:"skip,omitempty" hcl:"skip,optional"`
}

// 📝 Log configures logging
type Log struct {
	Level string `json:"level,omitempty" yaml:"level,omitempty" hcl:"level,optional"`
	File  string `json:"file,omitempty" yaml:"file,omitempty" hcl:"file,optional"`
}

// 📚 Config represents the complete project configuration
type Config struct {
	PackageDirectories []string  `json:"package_directories,omitempty" yaml:"package_directories,omitempty" hcl:"package_directories,optional"`
	IgnoreFile         string    `json:"ignore_file,omitempty" yaml:"ignore_file,omitempty" hcl:"ignore_file,optional"`
	RegistryFile       string    `json:"registry_file,omitempty" yaml:"registry_file,omitempty" hcl:"registry_file,optional"`
	Remote             *Remote   `json:"remote,omitempty" yaml:"remote,omitempty" hcl:"remote,block"`
	Profiles           *Profiles `json:"profiles,omitempty" yaml:"profiles,omitempty" hcl:"profiles,block"`
	Log                *Log      `json:"log,omitempty" yaml:"log,omitempty" hcl:"log,block"`

	location string
}

// Default is the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	_ = Validate(context.Background(), cfg)
	return cfg
}

// Location is the file the config was loaded from, empty for defaults.
func (cfg *Config) Location() string {
	return cfg.location
}

// Resolve makes a configured path relative to the config file's directory.
func (cfg *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || cfg.location == "" {
		return path
	}
	return filepath.Join(filepath.Dir(cfg.location), path)
}

// 🔍 Validate fills defaults and rejects values nothing can act on
func Validate(ctx context.Context, cfg *Config) error {
	if cfg.Remote == nil {
		cfg.Remote = &Remote{}
	}
	if cfg.Profiles == nil {
		cfg.Profiles = &Profiles{}
	}
	if cfg.Log == nil {
		cfg.Log = &Log{}
	}

	if cfg.IgnoreFile == "" {
		cfg.IgnoreFile = DefaultIgnoreFile
	}

	for i, dir := range cfg.PackageDirectories {
		dir = strings.TrimPrefix(dir, "./")
		if dir == "" {
			return errors.Errorf("package_directories[%d] is empty", i)
		}
		cfg.PackageDirectories[i] = filepath.Clean(dir)
	}

	switch {
	case cfg.Remote.Provider == "" && (cfg.Remote.Repo != "" || cfg.Remote.Path != ""):
		if cfg.Remote.Repo != "" {
			cfg.Remote.Provider = "github"
		} else {
			cfg.Remote.Provider = "dir"
		}
	case cfg.Remote.Provider != "" && !slices.Contains(Providers, cfg.Remote.Provider):
		return errors.Errorf("remote.provider %q is not supported, options: %s", cfg.Remote.Provider, strings.Join(Providers, ", "))
	}
	if cfg.Remote.Provider == "github" && cfg.Remote.Repo == "" {
		return errors.Errorf("remote.repo is required for the github provider")
	}
	if cfg.Remote.Provider == "dir" && cfg.Remote.Path == "" {
		return errors.Errorf("remote.path is required for the dir provider")
	}
	if cfg.Remote.Provider == "github" && cfg.Remote.Ref == "" {
		cfg.Remote.Ref = DefaultRef
	}

	switch {
	case cfg.Profiles.ChunkSize < 0:
		return errors.Errorf("profiles.chunk_size must be positive, got %d", cfg.Profiles.ChunkSize)
	case cfg.Profiles.ChunkSize == 0:
		cfg.Profiles.ChunkSize = DefaultChunkSize
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}

	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	remote := "none"
	if cfg.Remote != nil && cfg.Remote.Provider != "" {
		switch cfg.Remote.Provider {
		case "github":
			remote = fmt.Sprintf("github:%s@%s:%s", cfg.Remote.Repo, cfg.Remote.Ref, cfg.Remote.Path)
		default:
			remote = fmt.Sprintf("%s:%s", cfg.Remote.Provider, cfg.Remote.Path)
		}
	}
	return fmt.Sprintf("[%s] <- %s", strings.Join(cfg.PackageDirectories, ", "), remote)
}

// 🔧 decoderParser parses the formats that decode straight into Config.
// Unknown keys are rejected.
type decoderParser struct {
	format     string
	extensions []string
	decode     func(data []byte, cfg *Config) error
}

func init() {
	Register(&decoderParser{
		format:     "YAML",
		extensions: []string{".yaml", ".yml"},
		decode: func(data []byte, cfg *Config) error {
			decoder := yaml.NewDecoder(bytes.NewReader(data))
			decoder.KnownFields(true)
			return decoder.Decode(cfg)
		},
	})
	Register(&decoderParser{
		format:     "JSON",
		extensions: []string{".json"},
		decode: func(data []byte, cfg *Config) error {
			decoder := json.NewDecoder(bytes.NewReader(data))
			decoder.DisallowUnknownFields()
			return decoder.Decode(cfg)
		},
	})
}

func (p *decoderParser) CanParse(filename string) bool {
	return slices.Contains(p.extensions, filepath.Ext(filename))
}

func (p *decoderParser) Parse(ctx context.Context, filename string, data []byte) (*Config, error) {
	var cfg Config
	if err := p.decode(data, &cfg); err != nil {
		return nil, errors.Errorf("parsing %s %s: %w", p.format, filepath.Base(filename), err)
	}
	return &cfg, nil
}
