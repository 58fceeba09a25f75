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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "yaml_full",
			file: ".forcesync.yaml",
			config: `
package_directories: [./force-app, sales]
ignore_file: .myignore
remote:
  provider: github
  repo: github.com/acme/org
  path: profiles
  ref: main
profiles:
  chunk_size: 5
  default_dir: force-app/main/default/profiles
  exclude_packages: true
  delete: true
  skip: [Guest]
log:
  level: debug
  file: out.log
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"force-app", "sales"}, cfg.PackageDirectories, "package directories should be cleaned")
				assert.Equal(t, ".myignore", cfg.IgnoreFile)
				assert.Equal(t, Remote{Provider: "github", Repo: "github.com/acme/org", Path: "profiles", Ref: "main"}, *cfg.Remote)
				assert.Equal(t, 5, cfg.Profiles.ChunkSize)
				assert.True(t, cfg.Profiles.ExcludePackages)
				assert.True(t, cfg.Profiles.Delete)
				assert.Equal(t, []string{"Guest"}, cfg.Profiles.Skip)
				assert.Equal(t, "debug", cfg.Log.Level)
				assert.Equal(t, "out.log", cfg.Log.File)
			},
		},
		{
			name:   "yaml_minimal_gets_defaults",
			file:   ".forcesync.yml",
			config: "package_directories: [force-app]\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultIgnoreFile, cfg.IgnoreFile)
				assert.Equal(t, DefaultChunkSize, cfg.Profiles.ChunkSize)
				assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
				assert.Empty(t, cfg.Remote.Provider)
			},
		},
		{
			name:        "yaml_unknown_field",
			file:        ".forcesync.yaml",
			config:      "destination: /tmp\n",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:   "json_provider_inferred",
			file:   ".forcesync.json",
			config: `{"remote": {"path": "remote/profiles"}}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "dir", cfg.Remote.Provider)
			},
		},
		{
			name:        "json_unknown_field",
			file:        ".forcesync.json",
			config:      `{"nope": true}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name: "hcl_blocks",
			file: ".forcesync.hcl",
			config: `
package_directories = ["force-app"]
remote {
  repo = "github.com/acme/org"
}
profiles {
  chunk_size = 3
}
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "github", cfg.Remote.Provider)
				assert.Equal(t, DefaultRef, cfg.Remote.Ref)
				assert.Equal(t, 3, cfg.Profiles.ChunkSize)
				assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
			},
		},
		{
			name:        "unsupported_provider",
			file:        ".forcesync.yaml",
			config:      "remote:\n  provider: s3\n",
			wantErr:     true,
			errContains: "not supported",
		},
		{
			name:        "github_without_repo",
			file:        ".forcesync.yaml",
			config:      "remote:\n  provider: github\n",
			wantErr:     true,
			errContains: "remote.repo is required",
		},
		{
			name:        "negative_chunk_size",
			file:        ".forcesync.yaml",
			config:      "profiles:\n  chunk_size: -1\n",
			wantErr:     true,
			errContains: "chunk_size",
		},
		{
			name:        "unsupported_extension",
			file:        "forcesync.toml",
			config:      "",
			wantErr:     true,
			errContains: "unsupported file extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			path := writeConfig(t, tt.file, tt.config)

			cfg, err := LoadConfig(ctx, path)
			if tt.wantErr {
				require.Error(t, err, "LoadConfig should fail")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "LoadConfig should succeed")
			assert.Equal(t, path, cfg.Location())
			tt.check(t, cfg)
		})
	}
}

func TestConfigString(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		want string
	}{
		{
			name: "no_remote",
			cfg:  &Config{PackageDirectories: []string{"force-app"}},
			want: "[force-app] <- none",
		},
		{
			name: "directory_remote",
			cfg: &Config{
				PackageDirectories: []string{"force-app", "src"},
				Remote:             &Remote{Provider: "dir", Path: "../org"},
			},
			want: "[force-app, src] <- dir:../org",
		},
		{
			name: "github_remote",
			cfg: &Config{
				Remote: &Remote{Provider: "github", Repo: "acme/org", Ref: "main", Path: "profiles"},
			},
			want: "[] <- github:acme/org@main:profiles",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.String())
		})
	}
}

func TestHCLEnvironment(t *testing.T) {
	ctx := testContext(t)
	p := &HCLParser{Environ: func() []string {
		return []string{"FORCESYNC_REPO=github.com/acme/from-env", "BROKEN", "=ignored"}
	}}

	cfg, err := p.Parse(ctx, "test.hcl", []byte(`
remote {
  repo = env.FORCESYNC_REPO
}
`))
	require.NoError(t, err)
	require.NotNil(t, cfg.Remote)
	assert.Equal(t, "github.com/acme/from-env", cfg.Remote.Repo)
}

func TestResolve(t *testing.T) {
	ctx := testContext(t)

	dir := t.TempDir()
	cfg, err := Resolve(ctx, dir, "")
	require.NoError(t, err)
	assert.Empty(t, cfg.Location(), "defaults have no location")
	assert.Equal(t, DefaultIgnoreFile, cfg.IgnoreFile)

	path := filepath.Join(dir, ".forcesync.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ignore_file": ".other"}`), 0644))
	cfg, err = Resolve(ctx, dir, "")
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Location())
	assert.Equal(t, ".other", cfg.IgnoreFile)

	_, err = Resolve(ctx, dir, filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestConfigResolvePath(t *testing.T) {
	cfg := &Config{location: filepath.Join("project", ".forcesync.yaml")}

	assert.Equal(t, filepath.Join("project", "remote"), cfg.Resolve("remote"))
	assert.Equal(t, "/abs", cfg.Resolve("/abs"))
	assert.Empty(t, cfg.Resolve(""))
	assert.Equal(t, "remote", Default().Resolve("remote"))
}

func TestSourceRoots(t *testing.T) {
	ctx := testContext(t)

	t.Run("configured", func(t *testing.T) {
		cfg := &Config{PackageDirectories: []string{"a", "b"}}
		roots, err := cfg.SourceRoots(ctx, t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, roots)
	})

	t.Run("project_file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFileName), []byte(`{
  "packageDirectories": [
    {"path": "core"},
    {"path": "force-app", "default": true, "package": "app"}
  ],
  "sourceApiVersion": "59.0"
}`), 0644))

		roots, err := Default().SourceRoots(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"core", "force-app"}, roots)

		project, err := LoadProject(dir)
		require.NoError(t, err)
		assert.Equal(t, "force-app", project.DefaultPath())
	})

	t.Run("nothing", func(t *testing.T) {
		_, err := Default().SourceRoots(ctx, t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no package_directories")
	})
}
