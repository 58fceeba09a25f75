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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/forcesync/pkg/config"
	"github.com/walteh/forcesync/pkg/profile"
	"github.com/walteh/forcesync/pkg/remote"
	"github.com/walteh/forcesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

const remoteProfile = `<?xml version="1.0" encoding="UTF-8"?>
<Profile xmlns="http://soap.sforce.com/2006/04/metadata">
    <classAccesses>
        <apexClass>ns__Helper</apexClass>
        <enabled>true</enabled>
    </classAccesses>
    <classAccesses>
        <apexClass>LocalHelper</apexClass>
        <enabled>true</enabled>
    </classAccesses>
    <custom>true</custom>
</Profile>
`

const localProfile = `<?xml version="1.0" encoding="UTF-8"?>
<Profile xmlns="http://soap.sforce.com/2006/04/metadata">
    <custom>false</custom>
</Profile>
`

const profilesDir = "force-app/main/default/profiles"

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) ListProfileNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *mockSource) FetchProfiles(ctx context.Context, names []string) ([]*profile.Profile, error) {
	args := m.Called(ctx, names)
	profiles, _ := args.Get(0).([]*profile.Profile)
	return profiles, args.Error(1)
}

// syncFixture is a project with local profiles and a directory remote.
type syncFixture struct {
	project  string
	source   remote.Source
	reporter *recordingReporter
}

func newSyncFixture(t *testing.T, local, remoteNames []string) *syncFixture {
	t.Helper()

	project := t.TempDir()
	files := map[string]string{
		"force-app/main/default/classes/Foo.cls-meta.xml": "<ApexClass/>",
	}
	for _, name := range local {
		files[profilesDir+"/"+name+".profile-meta.xml"] = localProfile
	}
	writeFiles(t, project, files)

	remoteRoot := t.TempDir()
	remoteFiles := map[string]string{}
	for _, name := range remoteNames {
		remoteFiles["profiles/"+name+".profile"] = remoteProfile
	}
	writeFiles(t, remoteRoot, remoteFiles)

	src, err := remote.NewDir(remoteRoot)
	require.NoError(t, err)

	return &syncFixture{project: project, source: src, reporter: &recordingReporter{}}
}

func (f *syncFixture) operator(t *testing.T, cfg *config.Config) Operator {
	t.Helper()
	op, err := New(Options{
		Config:     cfg,
		ProjectDir: f.project,
		Source:     f.source,
		Reporter:   f.reporter,
	})
	require.NoError(t, err)
	return op
}

func (f *syncFixture) profilePath(name string) string {
	return filepath.Join(f.project, filepath.FromSlash(profilesDir), name+profile.SourceExtension)
}

func TestSyncRemoteOnlyProfileIsAdded(t *testing.T) {
	ctx := testContext(t)
	f := newSyncFixture(t, nil, []string{"Sales"})

	res, err := f.operator(t, nil).Sync(ctx, SyncRequest{SourceRoots: []string{"force-app"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"Sales"}, res.Added)
	assert.Empty(t, res.Updated)
	assert.Empty(t, res.Deleted)
	assert.Equal(t, 1, res.Retrieved)

	written, err := profile.ReadFile(f.profilePath("Sales"))
	require.NoError(t, err, "added profiles land in the default profile directory")
	assert.Len(t, written.ClassAccesses, 2)
	assert.Equal(t, []string{"Sales"}, f.reporter.names(status.ChangeAdded))
}

func TestSyncFullWithOrphans(t *testing.T) {
	tests := []struct {
		name          string
		deleteOrphans bool
		wantRemoved   []string
		oldKept       bool
	}{
		{name: "delete_orphans", deleteOrphans: true, wantRemoved: []string{"Old"}},
		{name: "keep_orphans", deleteOrphans: false, wantRemoved: []string{}, oldKept: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			f := newSyncFixture(t, []string{"Admin", "Old", "Sales"}, []string{"Admin", "New", "Sales"})

			res, err := f.operator(t, nil).Sync(ctx, SyncRequest{
				SourceRoots:   []string{"force-app"},
				DeleteOrphans: tt.deleteOrphans,
			})
			require.NoError(t, err)

			assert.Equal(t, []string{"New"}, res.Added)
			assert.Equal(t, []string{"Admin", "Sales"}, res.Updated)
			assert.Equal(t, []string{f.profilePath("Old")}, res.Deleted)
			assert.Equal(t, 3, res.Retrieved)

			wantRemoved := []string{}
			for _, name := range tt.wantRemoved {
				wantRemoved = append(wantRemoved, f.profilePath(name))
			}
			assert.Equal(t, wantRemoved, res.Removed)
			assert.Equal(t, tt.oldKept, fileExists(f.profilePath("Old")))

			admin, err := profile.ReadFile(f.profilePath("Admin"))
			require.NoError(t, err)
			assert.Len(t, admin.ClassAccesses, 2, "updated profiles are overwritten with the remote copy")

			assert.Equal(t, []string{"New"}, f.reporter.names(status.ChangeAdded))
			assert.ElementsMatch(t, []string{"Admin", "Sales"}, f.reporter.names(status.ChangeUpdated))
			assert.Equal(t, tt.wantRemoved, f.reporter.names(status.ChangeDeleted))
		})
	}
}

func TestSyncExplicitList(t *testing.T) {
	ctx := testContext(t)
	f := newSyncFixture(t, []string{"Admin", "Old"}, []string{"Admin", "New"})

	res, err := f.operator(t, nil).Sync(ctx, SyncRequest{
		SourceRoots:   []string{"force-app"},
		ProfileNames:  []string{"Admin"},
		DeleteOrphans: true,
	})
	require.NoError(t, err)

	assert.Empty(t, res.Added, "nothing is added for an explicit list")
	assert.Equal(t, []string{"Admin"}, res.Updated)
	assert.Empty(t, res.Deleted, "only requested profiles are candidates for deletion")
	assert.Equal(t, 1, res.Retrieved)
	assert.True(t, fileExists(f.profilePath("Old")))
	assert.False(t, fileExists(f.profilePath("New")))
}

func TestSyncExplicitListDoesNotCreateProfiles(t *testing.T) {
	ctx := testContext(t)
	f := newSyncFixture(t, []string{"Admin"}, []string{"Admin", "Sales"})

	res, err := f.operator(t, nil).Sync(ctx, SyncRequest{
		SourceRoots:  []string{"force-app"},
		ProfileNames: []string{"Sales"},
	})
	require.NoError(t, err)

	assert.Empty(t, res.Added)
	assert.Equal(t, []string{"Sales"}, res.Updated)
	assert.Equal(t, 0, res.Retrieved, "a requested profile without a local file is not written")
	assert.False(t, fileExists(f.profilePath("Sales")))
	assert.Empty(t, f.reporter.names(status.ChangeUpdated))
}

func TestSyncNewProfilesGoToDefaultPackage(t *testing.T) {
	ctx := testContext(t)
	f := newSyncFixture(t, nil, []string{"Sales"})
	writeFiles(t, f.project, map[string]string{
		"sfdx-project.json":              `{"packageDirectories": [{"path": "force-app"}, {"path": "src", "default": true}]}`,
		"src/main/default/classes/B.cls": "public class B {}",
	})

	res, err := f.operator(t, nil).Sync(ctx, SyncRequest{SourceRoots: []string{"force-app", "src"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"Sales"}, res.Added)
	assert.Equal(t, 1, res.Retrieved)
	assert.True(t, fileExists(filepath.Join(f.project, "src", "main", "default", "profiles", "Sales"+profile.SourceExtension)))
	assert.False(t, fileExists(f.profilePath("Sales")))
}

func TestSyncExcludePackageRefs(t *testing.T) {
	ctx := testContext(t)
	f := newSyncFixture(t, []string{"Admin"}, []string{"Admin"})

	_, err := f.operator(t, nil).Sync(ctx, SyncRequest{
		SourceRoots:        []string{"force-app"},
		ExcludePackageRefs: true,
	})
	require.NoError(t, err)

	admin, err := profile.ReadFile(f.profilePath("Admin"))
	require.NoError(t, err)
	require.Len(t, admin.ClassAccesses, 1)
	assert.Equal(t, "LocalHelper", admin.ClassAccesses[0].ApexClass)
}

func TestSyncConfiguredProfiles(t *testing.T) {
	ctx := testContext(t)
	f := newSyncFixture(t, nil, []string{"Guest", "Sales"})

	cfg := config.Default()
	cfg.Profiles.DefaultDir = "custom/profiles"
	cfg.Profiles.Skip = []string{"Guest"}

	res, err := f.operator(t, cfg).Sync(ctx, SyncRequest{SourceRoots: []string{"force-app"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"Guest", "Sales"}, res.Added)
	assert.Equal(t, 1, res.Retrieved, "skipped profiles are not retrieved")
	assert.True(t, fileExists(filepath.Join(f.project, "custom", "profiles", "Sales.profile-meta.xml")))
	assert.False(t, fileExists(filepath.Join(f.project, "custom", "profiles", "Guest.profile-meta.xml")))
}

func TestSyncInvalidInput(t *testing.T) {
	ctx := testContext(t)
	f := newSyncFixture(t, nil, []string{"Sales"})

	_, err := f.operator(t, nil).Sync(ctx, SyncRequest{SourceRoots: []string{"missing"}})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.operator(t, nil).Sync(ctx, SyncRequest{})
	require.ErrorIs(t, err, ErrInvalidInput)

	op, err := New(Options{ProjectDir: f.project})
	require.NoError(t, err)
	_, err = op.Sync(ctx, SyncRequest{SourceRoots: []string{"force-app"}})
	require.ErrorIs(t, err, ErrInvalidInput, "a remote source is required")
}

func TestSyncRemoteFailures(t *testing.T) {
	t.Run("listing_fails", func(t *testing.T) {
		ctx := testContext(t)
		f := newSyncFixture(t, []string{"Admin"}, nil)

		src := &mockSource{}
		src.On("ListProfileNames", mock.Anything).Return(nil, errors.New("connection refused"))
		f.source = src

		_, err := f.operator(t, nil).Sync(ctx, SyncRequest{SourceRoots: []string{"force-app"}})
		require.ErrorIs(t, err, ErrRemoteFetch)
		assert.Contains(t, err.Error(), "connection refused")
		src.AssertExpectations(t)
	})

	t.Run("fetch_fails", func(t *testing.T) {
		ctx := testContext(t)
		f := newSyncFixture(t, []string{"Admin"}, nil)

		src := &mockSource{}
		src.On("ListProfileNames", mock.Anything).Return([]string{"Admin"}, nil)
		src.On("FetchProfiles", mock.Anything, []string{"Admin"}).Return(nil, errors.New("rate limited"))
		f.source = src

		_, err := f.operator(t, nil).Sync(ctx, SyncRequest{SourceRoots: []string{"force-app"}})
		require.ErrorIs(t, err, ErrRemoteFetch)
		assert.ErrorIs(t, err, profile.ErrFetch)
		assert.Contains(t, err.Error(), "rate limited")
		assert.True(t, fileExists(f.profilePath("Admin")), "the local copy is untouched")
		src.AssertExpectations(t)
	})
}

func TestRemoveOrphansToleratesMissingFiles(t *testing.T) {
	ctx := testContext(t)
	f := newSyncFixture(t, []string{"Old"}, nil)
	op := f.operator(t, nil).(*operator)

	gone := filepath.Join(f.project, "Gone.profile-meta.xml")
	removed := op.removeOrphans(ctx, []string{f.profilePath("Old"), gone})

	assert.Equal(t, []string{f.profilePath("Old"), gone}, removed)
	assert.False(t, fileExists(f.profilePath("Old")))
}
