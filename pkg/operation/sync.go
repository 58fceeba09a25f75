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
	"slices"

	"github.com/rs/zerolog"
	"github.com/walteh/forcesync/pkg/config"
	"github.com/walteh/forcesync/pkg/profile"
	"github.com/walteh/forcesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

const profileType = "Profile"

// 📥 SyncRequest selects what a sync touches
type SyncRequest struct {
	// SourceRoots are the package directories holding local profiles
	SourceRoots []string
	// ProfileNames limits the sync to these profiles; empty means all
	ProfileNames []string
	// DeleteOrphans removes local profiles the remote does not know
	DeleteOrphans bool
	// ExcludePackageRefs strips entries referencing namespaced components
	ExcludePackageRefs bool
}

// 📤 SyncResult is the diff a sync acted on
type SyncResult struct {
	Added   []string
	Updated []string
	// Deleted are local profile paths with no remote counterpart
	Deleted []string
	// Removed are the Deleted paths actually removed from disk
	Removed []string
	// Retrieved is how many profiles were written
	Retrieved int
}

// 🔄 Sync computes the profile diff against the remote source, retrieves
// added and updated profiles in batches and, when asked, removes orphans.
func (o *operator) Sync(ctx context.Context, req SyncRequest) (SyncResult, error) {
	logger := zerolog.Ctx(ctx)

	if o.source == nil {
		return SyncResult{}, errors.Errorf("%w: no remote source configured", ErrInvalidInput)
	}
	if len(req.SourceRoots) == 0 {
		return SyncResult{}, errors.Errorf("%w: no source roots", ErrInvalidInput)
	}

	roots := make([]string, 0, len(req.SourceRoots))
	for _, root := range req.SourceRoots {
		root = o.path(root)
		if err := requireDir(ctx, root); err != nil {
			return SyncResult{}, err
		}
		roots = append(roots, root)
	}

	classified, err := o.classifier(ctx).ClassifyAll(ctx, roots...)
	if err != nil {
		return SyncResult{}, errors.Errorf("classifying source roots: %w", err)
	}

	local := make([]profile.Local, 0)
	for _, comp := range classified.ComponentsOf(profileType) {
		local = append(local, profile.Local{Name: comp.Name, Path: comp.Path})
	}

	remoteNames, err := o.source.ListProfileNames(ctx)
	if err != nil {
		return SyncResult{}, errors.Errorf("%w: listing profiles of %s: %w", ErrRemoteFetch, o.source.Name(), err)
	}

	diff := profile.Diff(req.ProfileNames, local, remoteNames)
	logger.Info().
		Str("source", o.source.Name()).
		Int("local", len(local)).
		Int("remote", len(remoteNames)).
		Int("added", len(diff.Added)).
		Int("updated", len(diff.Updated)).
		Int("deleted", len(diff.Deleted)).
		Msg("computed profile diff")

	result := SyncResult{
		Added:   diff.Added,
		Updated: diff.Updated,
		Deleted: diff.Deleted,
		Removed: []string{},
	}

	pipeline := &profile.Pipeline{
		Fetcher:            o.source,
		Writer:             &reportingWriter{next: o.writer, reporter: o.reporter, added: diff.Added},
		Progress:           o.progress,
		ChunkSize:          o.config.Profiles.ChunkSize,
		ExcludePackageRefs: req.ExcludePackageRefs,
		Resolve:            o.resolver(ctx, local, diff.Added, roots),
		Skip:               o.config.Profiles.Skip,
	}

	result.Retrieved, err = pipeline.Run(ctx, diff.Retrieve())
	if err != nil {
		if errors.Is(err, profile.ErrFetch) {
			return result, errors.Errorf("%w: %w", ErrRemoteFetch, err)
		}
		return result, errors.Errorf("retrieving profiles: %w", err)
	}

	if req.DeleteOrphans {
		result.Removed = o.removeOrphans(ctx, diff.Deleted)
	} else if len(diff.Deleted) > 0 {
		logger.Info().Strs("paths", diff.Deleted).Msg("local profiles missing remotely, kept")
	}

	return result, nil
}

// resolver maps a profile name to its local file. Only profiles new to the
// project get a file in the default profile directory.
func (o *operator) resolver(ctx context.Context, local []profile.Local, added []string, roots []string) func(string) (string, bool) {
	paths := make(map[string]string, len(local)+len(added))
	for _, l := range local {
		if _, ok := paths[l.Name]; !ok {
			paths[l.Name] = l.Path
		}
	}

	if dir := o.defaultProfileDir(ctx, roots); dir != "" {
		for _, name := range added {
			if _, ok := paths[name]; !ok {
				paths[name] = filepath.Join(dir, name+profile.SourceExtension)
			}
		}
	}

	return func(name string) (string, bool) {
		p, ok := paths[name]
		return p, ok
	}
}

// defaultProfileDir is where new profiles are written: the configured
// directory, else the profiles folder of the default package directory.
func (o *operator) defaultProfileDir(ctx context.Context, roots []string) string {
	if dir := o.config.Profiles.DefaultDir; dir != "" {
		if o.config.Location() != "" {
			return o.config.Resolve(dir)
		}
		return o.path(dir)
	}
	if len(roots) == 0 {
		return ""
	}
	root := roots[0]
	if project, err := config.LoadProject(o.projectDir); err != nil {
		zerolog.Ctx(ctx).Trace().Err(err).Msg("no project file, new profiles go to the first source root")
	} else if def := project.DefaultPath(); def != "" && slices.Contains(roots, o.path(def)) {
		root = o.path(def)
	}
	return filepath.Join(root, "main", "default", "profiles")
}

// removeOrphans deletes paths one by one. Failures are logged and skipped; a
// file that is already gone counts as removed.
func (o *operator) removeOrphans(ctx context.Context, paths []string) []string {
	logger := zerolog.Ctx(ctx)
	removed := make([]string, 0, len(paths))
	for _, path := range paths {
		err := os.Remove(path)
		if err != nil && !errors.Is(err, iofs.ErrNotExist) {
			logger.Warn().Err(err).Str("path", path).Msg("could not delete profile")
			o.reporter.LogChange(ctx, status.Change{Type: status.ChangeError, Path: path, Error: err})
			continue
		}
		removed = append(removed, path)
		o.reporter.LogChange(ctx, status.Change{
			Type: status.ChangeDeleted,
			Name: profile.NameFromPath(path),
			Path: path,
		})
	}
	return removed
}

// 📝 reportingWriter reports every profile it writes
type reportingWriter struct {
	next     profile.Writer
	reporter Reporter
	added    []string
}

func (w *reportingWriter) WriteProfile(ctx context.Context, p *profile.Profile, path string) error {
	if err := w.next.WriteProfile(ctx, p, path); err != nil {
		return err
	}

	change := status.ChangeUpdated
	for _, name := range w.added {
		if name == p.FullName {
			change = status.ChangeAdded
			break
		}
	}
	w.reporter.LogChange(ctx, status.Change{Type: change, Name: p.FullName, Path: path})
	return nil
}
