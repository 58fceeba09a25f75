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

// Package classify walks source directories and sorts every file into the
// metadata type that claims it.
package classify

import (
	"context"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/forcesync/pkg/ignore"
	"github.com/walteh/forcesync/pkg/metadata"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🔎 Classifier assigns files to metadata types. It holds no per-run state;
// each Classify call returns its own Result.
type Classifier struct {
	registry *metadata.Registry
	rules    *ignore.RuleSet
}

// 🏭 New creates a classifier. A nil rule set ignores nothing.
func New(registry *metadata.Registry, rules *ignore.RuleSet) *Classifier {
	if registry == nil {
		registry = metadata.Default()
	}
	return &Classifier{registry: registry, rules: rules}
}

// Registry returns the descriptor table the classifier evaluates.
func (c *Classifier) Registry() *metadata.Registry {
	return c.registry
}

// 🎯 Match classifies a single path. The second result is false when no type
// claims the file or when the claiming type's file is ignored.
func (c *Classifier) Match(path string) (Component, bool) {
	td, ok := c.registry.Match(path)
	if !ok {
		return Component{}, false
	}
	if c.ignored(path, false) {
		return Component{}, false
	}
	return Component{
		Type: td.Name,
		Path: path,
		Name: c.registry.MemberName(path, td),
	}, true
}

func (c *Classifier) ignored(path string, isDir bool) bool {
	if c.rules == nil {
		return false
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if isDir {
		return c.rules.IsIgnoredDir(path)
	}
	return c.rules.IsIgnored(path)
}

// 📂 Classify walks root and returns every accepted file grouped by type. A
// missing root yields an empty result with every type initialised.
func (c *Classifier) Classify(ctx context.Context, root string) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	result := newResult(c.registry.Names())

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			logger.Debug().Str("root", root).Msg("source root does not exist, nothing to classify")
			return result, nil
		}
		return nil, errors.Errorf("reading source root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("source root %s is not a directory", root)
	}

	ignored := 0
	err = filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return errors.Errorf("walking %s: %w", path, err)
		}
		if d.IsDir() {
			// files under an ignored directory cannot be re-included
			if path != root && c.ignored(path, true) {
				ignored++
				logger.Trace().Str("dir", path).Msg("ignored directory")
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		td, ok := c.registry.Match(path)
		if !ok {
			return nil
		}
		if c.ignored(path, false) {
			ignored++
			logger.Trace().Str("file", path).Str("type", td.Name).Msg("ignored")
			return nil
		}

		result.add(Component{
			Type: td.Name,
			Path: path,
			Name: c.registry.MemberName(path, td),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("classifying %s: %w", root, err)
	}

	logger.Debug().
		Str("root", root).
		Int("files", result.Len()).
		Int("ignored", ignored).
		Msg("classified source root")

	return result, nil
}

// ClassifyAll classifies several roots into one result. Roots are walked
// concurrently and merged in argument order, so the outcome does not depend
// on scheduling.
func (c *Classifier) ClassifyAll(ctx context.Context, roots ...string) (*Result, error) {
	results := make([]*Result, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	for i, root := range roots {
		g.Go(func() error {
			r, err := c.Classify(gctx, root)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := newResult(c.registry.Names())
	for _, r := range results {
		merged.merge(r)
	}
	return merged, nil
}
