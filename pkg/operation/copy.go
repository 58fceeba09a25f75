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
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/forcesync/pkg/bundle"
	"github.com/walteh/forcesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 📋 Copy copies each file, with the bundle it belongs to, below outputRoot.
// Files are relative to the project directory. It returns the written
// destinations in copy order; the first failure stops the copy.
func (o *operator) Copy(ctx context.Context, files []string, outputRoot string) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	if outputRoot == "" {
		return nil, errors.Errorf("%w: no output directory", ErrInvalidInput)
	}
	for _, f := range files {
		if _, err := os.Stat(o.path(f)); err != nil {
			return nil, errors.Errorf("%w: %s: %w", ErrInvalidInput, f, err)
		}
	}

	copied := []string{}
	copier := bundle.New(bundle.Options{
		Registry: o.registry,
		BaseDir:  o.projectDir,
		OnCopy: func(src, dst string) {
			copied = append(copied, dst)
			rel, err := filepath.Rel(outputRoot, dst)
			if err != nil {
				rel = dst
			}
			o.reporter.LogChange(ctx, status.Change{
				Type: status.ChangeCopied,
				Name: o.registry.FullAPINameWithExtension(src),
				Path: filepath.ToSlash(rel),
			})
		},
	})

	for _, f := range files {
		if err := copier.Copy(ctx, f, outputRoot); err != nil {
			return copied, errors.Errorf("copying %s: %w", f, err)
		}
	}

	logger.Info().Int("files", len(files)).Int("written", len(copied)).Str("output", outputRoot).Msg("copied source files")
	return copied, nil
}
