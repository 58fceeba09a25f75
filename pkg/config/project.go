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
	"encoding/json"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ProjectFileName is the project descriptor declaring package directories.
const ProjectFileName = "sfdx-project.json"

// PackageDirectory is one source package of a project.
type PackageDirectory struct {
	Path    string `json:"path"`
	Default bool   `json:"default,omitempty"`
	Package string `json:"package,omitempty"`
}

// 📦 Project is the part of sfdx-project.json this tool reads. Other keys
// are accepted and ignored.
type Project struct {
	PackageDirectories []PackageDirectory `json:"packageDirectories"`
}

// LoadProject reads the project descriptor in dir.
func LoadProject(dir string) (*Project, error) {
	data, err := os.ReadFile(filepath.Join(dir, ProjectFileName))
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", ProjectFileName, err)
	}
	var project Project
	if err := json.Unmarshal(data, &project); err != nil {
		return nil, errors.Errorf("parsing %s: %w", ProjectFileName, err)
	}
	return &project, nil
}

// Paths lists package directory paths in declaration order.
func (p *Project) Paths() []string {
	out := make([]string, 0, len(p.PackageDirectories))
	for _, d := range p.PackageDirectories {
		if d.Path != "" {
			out = append(out, filepath.Clean(d.Path))
		}
	}
	return out
}

// DefaultPath is the directory flagged default, or the first one.
func (p *Project) DefaultPath() string {
	for _, d := range p.PackageDirectories {
		if d.Default && d.Path != "" {
			return filepath.Clean(d.Path)
		}
	}
	if paths := p.Paths(); len(paths) > 0 {
		return paths[0]
	}
	return ""
}

// 📂 SourceRoots returns the package directories to work on, relative to
// dir: the configured ones, else those of sfdx-project.json.
func (cfg *Config) SourceRoots(ctx context.Context, dir string) ([]string, error) {
	if len(cfg.PackageDirectories) > 0 {
		return cfg.PackageDirectories, nil
	}

	project, err := LoadProject(dir)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, errors.Errorf("no package_directories configured and no %s in %s", ProjectFileName, dir)
		}
		return nil, err
	}

	paths := project.Paths()
	if len(paths) == 0 {
		return nil, errors.Errorf("%s declares no packageDirectories", ProjectFileName)
	}
	zerolog.Ctx(ctx).Debug().Strs("package_directories", paths).Msg("using project package directories")
	return paths, nil
}
