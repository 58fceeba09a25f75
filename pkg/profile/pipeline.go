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

package profile

import (
	"context"
	"slices"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultChunkSize is the number of profiles fetched per remote call.
const DefaultChunkSize = 10

var ErrFetch = errors.Base("fetching profiles")

// Fetcher retrieves full profile documents from the remote side.
type Fetcher interface {
	FetchProfiles(ctx context.Context, names []string) ([]*Profile, error)
}

// Writer persists one profile at a resolved local path.
type Writer interface {
	WriteProfile(ctx context.Context, p *Profile, path string) error
}

// Progress receives batch progress.
type Progress interface {
	Start(total int)
	Increment(n int)
	Stop()
}

type noProgress struct{}

func (noProgress) Start(int)     {}
func (noProgress) Increment(int) {}
func (noProgress) Stop()         {}

// 🚚 Pipeline retrieves profiles in fixed-size batches, one batch at a time,
// and writes each result to its local path.
type Pipeline struct {
	Fetcher  Fetcher
	Writer   Writer
	Progress Progress

	// ChunkSize defaults to DefaultChunkSize when zero
	ChunkSize int
	// ExcludePackageRefs runs every fetched profile through ExcludePackageRefs
	ExcludePackageRefs bool
	// Resolve maps a profile name to the file it is written to
	Resolve func(name string) (string, bool)
	// Skip names profiles the remote cannot serve
	Skip []string
}

func (p *Pipeline) chunkSize() (int, error) {
	switch {
	case p.ChunkSize == 0:
		return DefaultChunkSize, nil
	case p.ChunkSize < 0:
		return 0, errors.Errorf("chunk size must be at least 1, got %d", p.ChunkSize)
	default:
		return p.ChunkSize, nil
	}
}

// ▶️ Run fetches names batch by batch and returns how many profiles were
// written. The first fetch or write failure stops the run; batches written
// before it stay on disk.
func (p *Pipeline) Run(ctx context.Context, names []string) (int, error) {
	logger := zerolog.Ctx(ctx)

	if p.Fetcher == nil || p.Writer == nil || p.Resolve == nil {
		return 0, errors.Errorf("pipeline needs a fetcher, a writer and a path resolver")
	}
	size, err := p.chunkSize()
	if err != nil {
		return 0, err
	}

	names = slices.DeleteFunc(slices.Clone(names), func(name string) bool {
		if slices.Contains(p.Skip, name) {
			logger.Debug().Str("profile", name).Msg("skipping unsupported profile")
			return true
		}
		return false
	})

	if len(names) == 0 {
		logger.Info().Msg("no profiles found to retrieve")
		return 0, nil
	}

	progress := p.Progress
	if progress == nil {
		progress = noProgress{}
	}

	logger.Info().Int("profiles", len(names)).Int("chunk_size", size).Msg("retrieving profiles in batches")

	progress.Start(len(names))
	defer progress.Stop()

	written := 0
	batch := 0
	for chunk := range slices.Chunk(names, size) {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		batch++

		profiles, err := p.Fetcher.FetchProfiles(ctx, chunk)
		if err != nil {
			return written, errors.Errorf("%w: batch %d %v: %w", ErrFetch, batch, chunk, err)
		}

		for _, prof := range profiles {
			if prof == nil {
				continue
			}
			path, ok := p.Resolve(prof.FullName)
			if !ok {
				logger.Warn().Str("profile", prof.FullName).Msg("fetched profile has no local path, not written")
				continue
			}
			if p.ExcludePackageRefs {
				prof = ExcludePackageRefs(prof)
			}
			if err := p.Writer.WriteProfile(ctx, prof, path); err != nil {
				return written, errors.Errorf("writing profile %s: %w", prof.FullName, err)
			}
			written++
		}

		progress.Increment(len(chunk))
		logger.Debug().Int("batch", batch).Int("size", len(chunk)).Int("fetched", len(profiles)).Msg("batch complete")
	}

	return written, nil
}
