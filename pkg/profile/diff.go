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
	"slices"
)

// Local is a profile found in the source tree.
type Local struct {
	Name string
	Path string
}

// 📊 DiffResult sorts profile names by what a sync has to do with them.
// Deleted holds local file paths, the other sets hold profile names.
type DiffResult struct {
	Added   []string
	Updated []string
	Deleted []string
}

// Retrieve lists every profile the retrieval pipeline has to fetch, sorted.
func (d DiffResult) Retrieve() []string {
	out := append(slices.Clone(d.Added), d.Updated...)
	slices.Sort(out)
	return slices.Compact(out)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// 🔀 Diff compares requested profiles with local and remote state.
//
// With no requested names every local profile is a candidate and profiles
// only known remotely are Added. With an explicit list every requested name
// is Updated and nothing is Added, so unknown names are never created
// implicitly. Deleted is the local paths of candidates the remote does not
// know, limited to files present on disk.
func Diff(requested []string, local []Local, remote []string) DiffResult {
	return DiffWith(requested, local, remote, fileExists)
}

// DiffWith is Diff with a custom existence check for Deleted paths.
func DiffWith(requested []string, local []Local, remote []string, exists func(string) bool) DiffResult {
	remoteSet := make(map[string]struct{}, len(remote))
	for _, name := range remote {
		remoteSet[name] = struct{}{}
	}

	localPaths := make(map[string][]string, len(local))
	for _, l := range local {
		localPaths[l.Name] = append(localPaths[l.Name], l.Path)
	}

	fullSync := len(requested) == 0

	var candidates []string
	if fullSync {
		for _, l := range local {
			candidates = append(candidates, l.Name)
		}
	} else {
		candidates = slices.Clone(requested)
	}
	slices.Sort(candidates)
	candidates = slices.Compact(candidates)

	result := DiffResult{
		Added:   []string{},
		Updated: []string{},
		Deleted: []string{},
	}

	for _, name := range candidates {
		_, known := remoteSet[name]
		if known || !fullSync {
			result.Updated = append(result.Updated, name)
		}
		if known {
			continue
		}
		for _, path := range localPaths[name] {
			if exists(path) {
				result.Deleted = append(result.Deleted, path)
			}
		}
	}

	if fullSync {
		for name := range remoteSet {
			if _, ok := localPaths[name]; !ok {
				result.Added = append(result.Added, name)
			}
		}
	}

	slices.Sort(result.Added)
	slices.Sort(result.Deleted)
	result.Deleted = slices.Compact(result.Deleted)
	return result
}
