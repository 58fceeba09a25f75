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
	"path"
	"strings"
	"sync"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"github.com/walteh/forcesync/pkg/config"
	"github.com/walteh/forcesync/pkg/profile"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register("github", func(ctx context.Context, cfg config.Remote) (Source, error) {
		client := github.NewClient(nil)
		if token := os.Getenv("GITHUB_TOKEN"); token != "" {
			client = client.WithAuthToken(token)
		} else {
			zerolog.Ctx(ctx).Debug().Msg("GITHUB_TOKEN not set, using unauthenticated requests")
		}
		return NewGitHub(client, cfg)
	})
}

// 🐙 GitHub serves profiles committed to a GitHub repository.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
	ref    string
	path   string

	once sync.Once
	idx  index
	err  error
}

// 🏭 NewGitHub creates a GitHub source for cfg.Repo at cfg.Ref, limited to
// files below cfg.Path.
func NewGitHub(client *github.Client, cfg config.Remote) (*GitHub, error) {
	owner, name, err := parseRepo(cfg.Repo)
	if err != nil {
		return nil, errors.Errorf("parsing repo: %w", err)
	}
	ref := cfg.Ref
	if ref == "" {
		ref = config.DefaultRef
	}
	return &GitHub{
		client: client,
		owner:  owner,
		repo:   name,
		ref:    ref,
		path:   strings.Trim(cfg.Path, "/"),
	}, nil
}

// 🔍 parseRepo parses a GitHub repository URL
func parseRepo(repo string) (owner, name string, err error) {
	repo = strings.TrimSuffix(strings.TrimSuffix(repo, "/"), ".git")
	parts := strings.Split(repo, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", "", errors.Errorf("invalid GitHub repository URL: %s", repo)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}

func (g *GitHub) Name() string {
	return "github:" + g.owner + "/" + g.repo + "@" + g.ref
}

func (g *GitHub) load(ctx context.Context) (index, error) {
	g.once.Do(func() {
		tree, _, err := g.client.Git.GetTree(ctx, g.owner, g.repo, g.ref, true)
		if err != nil {
			g.err = errors.Errorf("getting repository tree: %w", err)
			return
		}
		if tree.GetTruncated() {
			zerolog.Ctx(ctx).Warn().Str("source", g.Name()).Msg("repository tree truncated, some profiles may be missing")
		}

		g.idx = index{}
		prefix := ""
		if g.path != "" {
			prefix = g.path + "/"
		}
		for _, entry := range tree.Entries {
			if entry.GetType() != "blob" {
				continue
			}
			p := entry.GetPath()
			if !strings.HasPrefix(p, prefix) {
				continue
			}
			g.idx.add(p)
		}
		zerolog.Ctx(ctx).Debug().Str("source", g.Name()).Int("profiles", len(g.idx)).Msg("indexed remote profiles")
	})
	return g.idx, g.err
}

func (g *GitHub) ListProfileNames(ctx context.Context) ([]string, error) {
	idx, err := g.load(ctx)
	if err != nil {
		return nil, err
	}
	return idx.names(), nil
}

func (g *GitHub) FetchProfiles(ctx context.Context, names []string) ([]*profile.Profile, error) {
	idx, err := g.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*profile.Profile, 0, len(names))
	for _, name := range names {
		file, ok := idx[name]
		if !ok {
			zerolog.Ctx(ctx).Debug().Str("profile", name).Msg("profile not found remotely")
			continue
		}

		content, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path.Clean(file), &github.RepositoryContentGetOptions{
			Ref: g.ref,
		})
		if err != nil {
			return nil, errors.Errorf("getting file content of %s: %w", file, err)
		}
		if content == nil {
			return nil, errors.Errorf("%s is not a file", file)
		}

		data, err := content.GetContent()
		if err != nil {
			return nil, errors.Errorf("decoding content of %s: %w", file, err)
		}

		p, err := profile.Parse([]byte(data))
		if err != nil {
			return nil, errors.Errorf("%s: %w", file, err)
		}
		p.FullName = name
		out = append(out, p)
	}
	return out, nil
}
