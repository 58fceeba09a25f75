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

package bundle

import (
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"

	"gitlab.com/tozd/go/errors"
)

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func excluded(name string) bool {
	return slices.Contains(ExcludedFiles, name)
}

// copyFile copies src to dst unless dst already exists. It reports whether a
// copy happened.
func (c *Copier) copyFile(src, dst string) (bool, error) {
	if exists(dst) {
		return false, nil
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return false, errors.Errorf("opening source file: %w", err)
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return false, errors.Errorf("reading source file info: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return false, errors.Errorf("creating parent directories: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return false, errors.Errorf("creating destination file: %w", err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return false, errors.Errorf("copying file content: %w", err)
	}
	if err := dstFile.Close(); err != nil {
		return false, errors.Errorf("closing destination file: %w", err)
	}

	if c.onCopy != nil {
		c.onCopy(src, dst)
	}
	return true, nil
}

// copyTree copies every regular file below src into dst, recreating the
// directory layout and skipping excluded names.
func (c *Copier) copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return errors.Errorf("walking %s: %w", path, err)
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return errors.Errorf("resolving %s: %w", path, err)
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return errors.Errorf("creating directory %s: %w", target, err)
			}
			return nil
		}
		if !d.Type().IsRegular() || excluded(d.Name()) {
			return nil
		}

		if _, err := c.copyFile(path, target); err != nil {
			return errors.Errorf("copying %s: %w", rel, err)
		}
		return nil
	})
}
