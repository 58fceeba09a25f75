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
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/forcesync/pkg/config"
)

const salesProfile = `<?xml version="1.0" encoding="UTF-8"?>
<Profile xmlns="http://soap.sforce.com/2006/04/metadata">
    <classAccesses>
        <apexClass>ns__Helper</apexClass>
        <enabled>true</enabled>
    </classAccesses>
    <custom>true</custom>
</Profile>
`

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(testContext(t), config.Remote{Provider: "s3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "options: dir, github")
}

func TestDirSource(t *testing.T) {
	ctx := testContext(t)
	root := t.TempDir()
	for name, content := range map[string]string{
		"profiles/Sales.profile":                                 salesProfile,
		"force-app/main/default/profiles/Admin.profile-meta.xml": `<Profile><custom>false</custom></Profile>`,
		"profiles/Sales.profile-meta.xml":                        `<Profile/>`,
		"profiles/README.md":                                     "not a profile",
	} {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	src, err := New(ctx, config.Remote{Provider: "dir", Path: root})
	require.NoError(t, err)

	names, err := src.ListProfileNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin", "Sales"}, names)

	profiles, err := src.FetchProfiles(ctx, []string{"Sales", "Unknown", "Admin"})
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "Sales", profiles[0].FullName)
	assert.Equal(t, "Admin", profiles[1].FullName)
}

func TestNewDirRejectsMissingRoot(t *testing.T) {
	_, err := NewDir(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestParseRepo(t *testing.T) {
	tests := []struct {
		name        string
		repo        string
		wantOwner   string
		wantName    string
		wantErr     bool
		errContains string
	}{
		{name: "valid_repo", repo: "github.com/acme/org", wantOwner: "acme", wantName: "org"},
		{name: "valid_repo_with_https", repo: "https://github.com/acme/org.git", wantOwner: "acme", wantName: "org"},
		{name: "owner_and_name", repo: "acme/org/", wantOwner: "acme", wantName: "org"},
		{name: "invalid_repo", repo: "invalid", wantErr: true, errContains: "invalid GitHub repository URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, name, err := parseRepo(tt.repo)
			if tt.wantErr {
				require.Error(t, err, "parseRepo should return error")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "parseRepo should succeed")
			assert.Equal(t, tt.wantOwner, owner, "owner should match")
			assert.Equal(t, tt.wantName, name, "name should match")
		})
	}
}

func newTestGitHub(t *testing.T, handler http.Handler, cfg config.Remote) *GitHub {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base

	g, err := NewGitHub(client, cfg)
	require.NoError(t, err)
	return g
}

func TestGitHubSource(t *testing.T) {
	ctx := testContext(t)

	treeCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/org/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		treeCalls++
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sha": "abc",
			"tree": []map[string]string{
				{"path": "metadata/profiles/Sales.profile", "type": "blob"},
				{"path": "metadata/profiles", "type": "tree"},
				{"path": "metadata/classes/Foo.cls", "type": "blob"},
				{"path": "other/profiles/Admin.profile", "type": "blob"},
			},
			"truncated": false,
		})
	})
	mux.HandleFunc("/repos/acme/org/contents/metadata/profiles/Sales.profile", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "main", r.URL.Query().Get("ref"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":     "file",
			"encoding": "base64",
			"name":     "Sales.profile",
			"path":     "metadata/profiles/Sales.profile",
			"content":  base64.StdEncoding.EncodeToString([]byte(salesProfile)),
		})
	})

	g := newTestGitHub(t, mux, config.Remote{Repo: "github.com/acme/org", Ref: "main", Path: "/metadata/"})

	names, err := g.ListProfileNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sales"}, names, "only profiles below the configured path")

	profiles, err := g.FetchProfiles(ctx, []string{"Sales", "Admin"})
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Sales", profiles[0].FullName)
	require.Len(t, profiles[0].ClassAccesses, 1)
	assert.Equal(t, "ns__Helper", profiles[0].ClassAccesses[0].ApexClass)

	assert.Equal(t, 1, treeCalls, "tree is fetched once per source")
	assert.Equal(t, "github:acme/org@main", g.Name())
}

func TestGitHubSourceTreeFailure(t *testing.T) {
	ctx := testContext(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/org/git/trees/HEAD", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	})

	g := newTestGitHub(t, mux, config.Remote{Repo: "acme/org"})

	_, err := g.ListProfileNames(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "getting repository tree")

	_, err = g.FetchProfiles(ctx, []string{"Sales"})
	require.Error(t, err)
}
