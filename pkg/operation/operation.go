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

package operation

import (
	"context"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/forcesync/pkg/apex"
	"github.com/walteh/forcesync/pkg/classify"
	"github.com/walteh/forcesync/pkg/config"
	"github.com/walteh/forcesync/pkg/ignore"
	"github.com/walteh/forcesync/pkg/metadata"
	"github.com/walteh/forcesync/pkg/profile"
	"github.com/walteh/forcesync/pkg/remote"
	"github.com/walteh/forcesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrInvalidInput = errors.Base("invalid input")
	ErrRemoteFetch  = errors.Base("remote fetch failed")
)

// 🎯 Operator runs the forcesync commands
type Operator interface {
	// Sync brings local profiles in line with the remote source
	Sync(ctx context.Context, req SyncRequest) (SyncResult, error)
	// ListTests returns the Apex test classes below root, sorted by name
	ListTests(ctx context.Context, root string) ([]apex.Class, error)
	// ListSource returns the classified components below root, optionally of one type
	ListSource(ctx context.Context, root, typeName string) ([]classify.Component, error)
	// Copy copies files and their bundles below outputRoot
	Copy(ctx context.Context, files []string, outputRoot string) ([]string, error)
}

// 📢 Reporter receives one call per file a command changed
type Reporter interface {
	LogChange(ctx context.Context, change status.Change)
}

type noReporter struct{}

func (noReporter) LogChange(context.Context, status.Change) {}

// 🔧 Options contains configuration for the operator
type Options struct {
	// Config is the project configuration; defaults apply when nil
	Config *config.Config
	// ProjectDir anchors relative paths and the ignore file; "." when empty
	ProjectDir string
	// Registry overrides the registry named by Config.RegistryFile
	Registry *metadata.Registry
	// Source is the remote profile source, required by Sync only
	Source remote.Source
	// Writer persists profiles; profile.FileWriter when nil
	Writer profile.Writer
	// Progress receives retrieval progress
	Progress profile.Progress
	// Reporter receives file changes
	Reporter Reporter
}

// 🏭 New creates a new operator with the given options
func New(opts Options) (Operator, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	projectDir := opts.ProjectDir
	if projectDir == "" {
		projectDir = "."
	}

	registry := opts.Registry
	if registry == nil && cfg.RegistryFile != "" {
		r, err := metadata.Load(cfg.Resolve(cfg.RegistryFile))
		if err != nil {
			return nil, errors.Errorf("loading metadata registry: %w", err)
		}
		registry = r
	}
	if registry == nil {
		registry = metadata.Default()
	}

	writer := opts.Writer
	if writer == nil {
		writer = profile.FileWriter{}
	}

	reporter := opts.Reporter
	if reporter == nil {
		reporter = noReporter{}
	}

	return &operator{
		config:     cfg,
		projectDir: projectDir,
		registry:   registry,
		source:     opts.Source,
		writer:     writer,
		progress:   opts.Progress,
		reporter:   reporter,
	}, nil
}

// 🎮 operator implements the Operator interface
type operator struct {
	config     *config.Config
	projectDir string
	registry   *metadata.Registry
	source     remote.Source
	writer     profile.Writer
	progress   profile.Progress
	reporter   Reporter
}

// classifier loads the ignore rules of the project directory.
func (o *operator) classifier(ctx context.Context) *classify.Classifier {
	rules := ignore.Load(ctx, o.projectDir, o.config.IgnoreFile)
	return classify.New(o.registry, rules)
}

// path resolves p against the project directory.
func (o *operator) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(o.projectDir, p)
}

// requireDir fails with ErrInvalidInput unless path is an existing directory.
func requireDir(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return errors.Errorf("%w: %s does not exist", ErrInvalidInput, path)
		}
		return errors.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return errors.Errorf("%w: %s is not a directory", ErrInvalidInput, path)
	}
	zerolog.Ctx(ctx).Trace().Str("path", path).Msg("directory exists")
	return nil
}
