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
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// FileNames are the config files looked up in a project root, in order.
var FileNames = []string{".forcesync.yaml", ".forcesync.yml", ".forcesync.json", ".forcesync.hcl"}

// LoadConfig loads a configuration file from the given path.
// The format is determined by the file extension:
// - .json for JSON
// - .yaml or .yml for YAML
// - .hcl for HCL
func LoadConfig(ctx context.Context, path string) (*Config, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(strings.ToLower(path))
	if p == nil {
		return nil, errors.Errorf("unsupported file extension %q", filepath.Ext(path))
	}

	cfg, err := p.Parse(ctx, path, data)
	if err != nil {
		return nil, err
	}

	cfg.location = path
	if err := Validate(ctx, cfg); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Find returns the first config file present in dir.
func Find(dir string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// 🎯 Resolve loads explicit when set, otherwise the config file found in dir,
// otherwise the defaults.
func Resolve(ctx context.Context, dir, explicit string) (*Config, error) {
	if explicit != "" {
		return LoadConfig(ctx, explicit)
	}
	if path, ok := Find(dir); ok {
		return LoadConfig(ctx, path)
	}
	zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("no config file found, using defaults")
	return Default(), nil
}
