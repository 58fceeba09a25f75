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

// Package bundle copies a metadata file to an output tree together with
// every file the component needs to be usable on its own: the -meta.xml
// companion, the parent object translation, the whole static resource or
// UI component bundle directory.
package bundle

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/forcesync/pkg/metadata"
	"gitlab.com/tozd/go/errors"
)

// ExcludedFiles are tooling files that live next to UI bundles but are never
// part of a component.
var ExcludedFiles = []string{"jsconfig.json", ".eslintrc.json"}

const (
	defaultStaticResourceDir  = "staticresources"
	defaultStaticResourceExt  = ".resource-meta.xml"
	defaultObjectTranslateExt = ".objectTranslation-meta.xml"
)

// 🔧 Options configures a Copier
type Options struct {
	// Registry supplies directory names and suffixes; defaults to metadata.Default()
	Registry *metadata.Registry
	// BaseDir is the directory relative file paths are resolved against
	BaseDir string
	// OnCopy is called after each file is written
	OnCopy func(src, dst string)
}

// 📦 Copier copies complete component bundles.
type Copier struct {
	registry *metadata.Registry
	baseDir  string
	onCopy   func(src, dst string)

	staticResourceDir  string
	staticResourceExt  string
	objectTranslateExt string
	bundleDirs         []string
}

// 🏭 New creates a copier
func New(opts Options) *Copier {
	registry := opts.Registry
	if registry == nil {
		registry = metadata.Default()
	}
	baseDir := opts.BaseDir
	if baseDir == "" {
		baseDir = "."
	}

	c := &Copier{
		registry:           registry,
		baseDir:            baseDir,
		onCopy:             opts.OnCopy,
		staticResourceDir:  defaultStaticResourceDir,
		staticResourceExt:  defaultStaticResourceExt,
		objectTranslateExt: defaultObjectTranslateExt,
		bundleDirs:         []string{"aura", "lwc"},
	}

	if td, ok := registry.Lookup("StaticResource"); ok {
		c.staticResourceDir = td.DirectoryName
		c.staticResourceExt = td.SourceExtension
	}
	if td, ok := registry.Lookup("CustomObjectTranslation"); ok {
		c.objectTranslateExt = td.SourceExtension
	}
	return c
}

// 📋 Copy copies filePath, and the bundle it belongs to, below outputRoot
// keeping its relative location. filePath is relative to the copier's base
// directory. Nothing happens when the destination already exists.
func (c *Copier) Copy(ctx context.Context, filePath, outputRoot string) error {
	logger := zerolog.Ctx(ctx)

	rel, err := c.relative(filePath)
	if err != nil {
		return err
	}

	src := filepath.Join(c.baseDir, rel)
	dst := filepath.Join(outputRoot, rel)
	if exists(dst) {
		logger.Trace().Str("file", rel).Msg("already copied")
		return nil
	}

	if strings.HasPrefix(rel, ".") {
		if _, err := c.copyFile(src, dst); err != nil {
			return errors.Errorf("copying %s: %w", rel, err)
		}
		return nil
	}

	if excluded(filepath.Base(rel)) {
		logger.Trace().Str("file", rel).Msg("excluded from copy")
		return nil
	}

	dstDir := filepath.Dir(dst)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return errors.Errorf("creating %s: %w", dstDir, err)
	}

	if err := c.copySiblings(src, dstDir); err != nil {
		return err
	}

	segs := metadata.Segments(rel)

	if err := c.copyObjectTranslation(rel, segs, src, dstDir); err != nil {
		return err
	}

	if err := c.copyStaticResource(segs, outputRoot); err != nil {
		return err
	}

	if err := c.copyUIBundle(segs, outputRoot); err != nil {
		return err
	}

	logger.Debug().Str("file", rel).Str("output", outputRoot).Msg("copied bundle")
	return nil
}

func (c *Copier) relative(filePath string) (string, error) {
	if !filepath.IsAbs(filePath) {
		return filepath.Clean(filePath), nil
	}
	base, err := filepath.Abs(c.baseDir)
	if err != nil {
		return "", errors.Errorf("resolving base directory: %w", err)
	}
	rel, err := filepath.Rel(base, filePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.Errorf("%s is outside %s", filePath, base)
	}
	return rel, nil
}

// siblingPattern is the glob matching every file that shares src's logical
// base name: "Foo.cls-meta.xml" and "Foo.cls" both give "Foo.*".
func siblingPattern(base string) string {
	var logical string
	if metadata.SourceSuffixPattern.MatchString(base) {
		logical = metadata.SourceSuffixPattern.ReplaceAllString(base, "")
	} else {
		logical = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return escapeGlob(logical) + ".*"
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c *Copier) copySiblings(src, dstDir string) error {
	srcDir := filepath.Dir(src)
	pattern := siblingPattern(filepath.Base(src))

	matches, err := doublestar.Glob(os.DirFS(srcDir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return errors.Errorf("globbing %s in %s: %w", pattern, srcDir, err)
	}

	for _, name := range matches {
		if excluded(name) {
			continue
		}
		if _, err := c.copyFile(filepath.Join(srcDir, name), filepath.Join(dstDir, name)); err != nil {
			return errors.Errorf("copying %s: %w", name, err)
		}
	}
	return nil
}

// copyObjectTranslation makes field translations travel with the object
// translation file of their folder.
func (c *Copier) copyObjectTranslation(rel string, segs []string, src, dstDir string) error {
	if !strings.HasSuffix(rel, "Translation-meta.xml") || strings.Contains(rel, "globalValueSet") {
		return nil
	}
	folder, ok := metadata.SegmentFromEnd(segs, 1)
	if !ok {
		return nil
	}

	name := folder + c.objectTranslateExt
	source := filepath.Join(filepath.Dir(src), name)
	if !exists(source) {
		return nil
	}
	if _, err := c.copyFile(source, filepath.Join(dstDir, name)); err != nil {
		return errors.Errorf("copying object translation %s: %w", name, err)
	}
	return nil
}

// containerBundle finds the first segment named like one of dirs and returns
// the path segments down to the bundle named by the following entry.
func containerBundle(segs []string, dirs ...string) ([]string, bool) {
	for i, seg := range segs {
		for _, dir := range dirs {
			if seg != dir || i+1 >= len(segs) {
				continue
			}
			name, _, _ := strings.Cut(segs[i+1], ".")
			out := append(append([]string{}, segs[:i+1]...), name)
			return out, true
		}
	}
	return nil, false
}

func (c *Copier) copyStaticResource(segs []string, outputRoot string) error {
	bundle, ok := containerBundle(segs, c.staticResourceDir)
	if !ok {
		return nil
	}

	rel := filepath.Join(bundle...)
	srcDir := filepath.Join(c.baseDir, rel)
	dstDir := filepath.Join(outputRoot, rel)

	if isDir(srcDir) {
		if err := c.copyTree(srcDir, dstDir); err != nil {
			return errors.Errorf("copying static resource %s: %w", rel, err)
		}
	}

	descriptor := srcDir + c.staticResourceExt
	if exists(descriptor) {
		if _, err := c.copyFile(descriptor, dstDir+c.staticResourceExt); err != nil {
			return errors.Errorf("copying static resource descriptor %s: %w", rel, err)
		}
	}
	return nil
}

func (c *Copier) copyUIBundle(segs []string, outputRoot string) error {
	bundle, ok := containerBundle(segs, c.bundleDirs...)
	if !ok {
		return nil
	}

	rel := filepath.Join(bundle...)
	srcDir := filepath.Join(c.baseDir, rel)
	if !isDir(srcDir) {
		return nil
	}
	if err := c.copyTree(srcDir, filepath.Join(outputRoot, rel)); err != nil {
		return errors.Errorf("copying component bundle %s: %w", rel, err)
	}
	return nil
}
