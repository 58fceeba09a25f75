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

package remote

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/forcesync/pkg/config"
	"github.com/walteh/forcesync/pkg/profile"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register("dir", func(ctx context.Context, cfg config.Remote) (Source, error) {
		return NewDir(cfg.Path)
	})
}

// 📁 Dir serves profiles from a local directory, typically a retrieved
// metadata checkout.
type Dir struct {
	root string

	once sync.Once
	idx  index
	err  error
}

// NewDir creates a directory source rooted at root.
func NewDir(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Errorf("opening remote directory: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("remote path %s is not a directory", root)
	}
	return &Dir{root: root}, nil
}

func (d *Dir) Name() string {
	return "dir:" + d.root
}

func (d *Dir) load(ctx context.Context) (index, error) {
	d.once.Do(func() {
		matches, err := doublestar.Glob(os.DirFS(d.root), ProfilePattern, doublestar.WithFilesOnly())
		if err != nil {
			d.err = errors.Errorf("listing profiles in %s: %w", d.root, err)
			return
		}
		d.idx = index{}
		for _, m := range matches {
			d.idx.add(m)
		}
		zerolog.Ctx(ctx).Debug().Str("source", d.Name()).Int("profiles", len(d.idx)).Msg("indexed remote profiles")
	})
	return d.idx, d.err
}

func (d *Dir) ListProfileNames(ctx context.Context) ([]string, error) {
	idx, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	return idx.names(), nil
}

func (d *Dir) FetchProfiles(ctx context.Context, names []string) ([]*profile.Profile, error) {
	idx, err := d.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*profile.Profile, 0, len(names))
	for _, name := range names {
		rel, ok := idx[name]
		if !ok {
			zerolog.Ctx(ctx).Debug().Str("profile", name).Msg("profile not found remotely")
			continue
		}
		p, err := profile.ReadFile(filepath.Join(d.root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		p.FullName = name
		out = append(out, p)
	}
	return out, nil
}
