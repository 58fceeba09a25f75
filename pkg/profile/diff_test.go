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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allExist(string) bool { return true }

func TestDiff(t *testing.T) {
	tests := []struct {
		name      string
		requested []string
		local     []Local
		remote    []string
		want      DiffResult
	}{
		{
			name:   "remote only profile is added in full sync",
			remote: []string{"Sales"},
			want:   DiffResult{Added: []string{"Sales"}, Updated: []string{}, Deleted: []string{}},
		},
		{
			name:   "full sync sorts every set",
			local:  []Local{{Name: "Zeta", Path: "p/Zeta.profile-meta.xml"}, {Name: "Admin", Path: "p/Admin.profile-meta.xml"}, {Name: "Old", Path: "p/Old.profile-meta.xml"}},
			remote: []string{"Zeta", "Sales", "Admin", "Marketing"},
			want: DiffResult{
				Added:   []string{"Marketing", "Sales"},
				Updated: []string{"Admin", "Zeta"},
				Deleted: []string{"p/Old.profile-meta.xml"},
			},
		},
		{
			name:      "explicit list suppresses added",
			requested: []string{"Admin", "Sales"},
			local:     []Local{{Name: "Admin", Path: "p/Admin.profile-meta.xml"}},
			remote:    []string{"Admin", "Sales", "Marketing"},
			want: DiffResult{
				Added:   []string{},
				Updated: []string{"Admin", "Sales"},
				Deleted: []string{},
			},
		},
		{
			name:      "explicit list deletes requested local profile unknown remotely",
			requested: []string{"Old", "Old"},
			local:     []Local{{Name: "Old", Path: "p/Old.profile-meta.xml"}, {Name: "Admin", Path: "p/Admin.profile-meta.xml"}},
			remote:    []string{"Admin"},
			want: DiffResult{
				Added:   []string{},
				Updated: []string{"Old"},
				Deleted: []string{"p/Old.profile-meta.xml"},
			},
		},
		{
			name: "nothing anywhere",
			want: DiffResult{Added: []string{}, Updated: []string{}, Deleted: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffWith(tt.requested, tt.local, tt.remote, allExist)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiffDeletedOnlyExistingFiles(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "Old.profile-meta.xml")
	require.NoError(t, os.WriteFile(present, []byte("<Profile/>"), 0644))

	got := Diff(nil, []Local{
		{Name: "Old", Path: present},
		{Name: "Gone", Path: filepath.Join(dir, "Gone.profile-meta.xml")},
	}, nil)

	assert.Equal(t, []string{present}, got.Deleted)
}

func TestDiffIsIdempotentAndDisjoint(t *testing.T) {
	local := []Local{
		{Name: "B", Path: "p/B"}, {Name: "A", Path: "p/A"}, {Name: "C", Path: "p/C"},
	}
	remote := []string{"C", "D", "A", "E"}

	first := DiffWith(nil, local, remote, allExist)
	second := DiffWith(nil, local, remote, allExist)
	assert.Equal(t, first, second)

	for _, added := range first.Added {
		assert.NotContains(t, first.Updated, added)
	}
}

func TestDiffRetrieve(t *testing.T) {
	d := DiffResult{Added: []string{"Sales", "Admin"}, Updated: []string{"Zeta", "Admin"}}
	assert.Equal(t, []string{"Admin", "Sales", "Zeta"}, d.Retrieve())
}
