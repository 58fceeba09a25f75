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

// Package ignore answers whether a project-relative path is excluded by the
// project's .forceignore file, using gitignore pattern grammar.
package ignore

import (
	"bufio"
	"context"
	iofs "io/fs"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultFileName is the ignore file looked up at the project root.
const DefaultFileName = ".forceignore"

// 🙈 RuleSet is a loaded list of ignore patterns anchored at a root
// directory. The zero value ignores nothing.
type RuleSet struct {
	root     string
	patterns []gitignore.Pattern
	matcher  gitignore.Matcher
}

// Empty returns a rule set that accepts every path.
func Empty(root string) *RuleSet {
	return &RuleSet{root: root}
}

// FromPatterns builds a rule set from raw pattern lines.
func FromPatterns(root string, lines []string) *RuleSet {
	var patterns []gitignore.Pattern
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return newRuleSet(root, patterns)
}

func newRuleSet(root string, patterns []gitignore.Pattern) *RuleSet {
	rs := &RuleSet{root: root, patterns: patterns}
	if len(patterns) > 0 {
		rs.matcher = gitignore.NewMatcher(patterns)
	}
	return rs
}

// 📂 Load reads <root>/<name> (DefaultFileName when name is empty). A missing
// or unreadable file yields an empty rule set; it never fails.
func Load(ctx context.Context, root, name string) *RuleSet {
	logger := zerolog.Ctx(ctx)
	if name == "" {
		name = DefaultFileName
	}

	lines, err := readLines(osfs.New(root), name)
	if err != nil {
		if errors.Is(err, errNotFound) {
			logger.Debug().Str("root", root).Str("file", name).Msg("no ignore file, accepting every path")
		} else {
			logger.Warn().Err(err).Str("root", root).Str("file", name).Msg("ignore file unusable, accepting every path")
		}
		return Empty(root)
	}

	rs := FromPatterns(root, lines)
	logger.Debug().Str("file", filepath.Join(root, name)).Int("patterns", len(rs.patterns)).Msg("loaded ignore rules")
	return rs
}

var errNotFound = errors.Base("ignore file not found")

func readLines(bfs billy.Filesystem, name string) ([]string, error) {
	f, err := bfs.Open(name)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, errNotFound
		}
		return nil, errors.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("reading ignore file: %w", err)
	}
	return lines, nil
}

// Len is the number of active patterns.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.patterns)
}

// Root is the directory patterns are anchored at.
func (rs *RuleSet) Root() string {
	if rs == nil {
		return ""
	}
	return rs.root
}

// 🔍 IsIgnored reports whether path is excluded. Relative paths are taken as
// relative to the rule set's root; absolute paths are made relative first.
// Paths outside the root are never ignored.
func (rs *RuleSet) IsIgnored(path string) bool {
	return rs.match(path, false)
}

// IsIgnoredDir is IsIgnored for a directory, so directory-only patterns
// ("build/") apply to the path itself.
func (rs *RuleSet) IsIgnoredDir(path string) bool {
	return rs.match(path, true)
}

func (rs *RuleSet) match(path string, isDir bool) bool {
	if rs == nil || rs.matcher == nil {
		return false
	}

	rel := path
	if filepath.IsAbs(path) {
		root, err := filepath.Abs(rs.root)
		if err != nil {
			return false
		}
		rel, err = filepath.Rel(root, path)
		if err != nil {
			return false
		}
	}

	parts := splitPath(filepath.ToSlash(rel))
	if len(parts) == 0 || parts[0] == ".." {
		return false
	}
	return rs.matcher.Match(parts, isDir)
}

// splitPath converts a slash-separated path into components for go-git matching
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			out = append(out, part)
		}
	}
	return out
}
