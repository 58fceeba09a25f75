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

/*
Package remote provides the remote-known profile set.

	            +-------------+
	            |   Source    |
	            | (profiles)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |                         |
	+-----+-----+             +-----+-----+
	|  GitHub   |             |   Local   |
	|  Source   |             | Directory |
	+-----------+             +-----------+

A Source answers two questions: which profile names exist remotely, and what
the full documents of a batch of names are. Names the remote does not know
are left out of a fetch result.
*/
package remote

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/forcesync/pkg/config"
	"github.com/walteh/forcesync/pkg/profile"
	"gitlab.com/tozd/go/errors"
)

// ProfilePattern matches profile files in both source and metadata format.
const ProfilePattern = "**/*.{profile,profile-meta.xml}"

// 🔌 Source lists and fetches remote profiles
type Source interface {
	// Name describes the source for logs
	Name() string
	// ListProfileNames returns the sorted names of every remote profile
	ListProfileNames(ctx context.Context) ([]string, error)
	// FetchProfiles returns the documents of the named profiles
	FetchProfiles(ctx context.Context, names []string) ([]*profile.Profile, error)
}

// 🏭 Factory creates a source from configuration
type Factory func(ctx context.Context, cfg config.Remote) (Source, error)

var providers = map[string]Factory{}

// 📝 Register registers a source factory
func Register(name string, factory Factory) {
	providers[name] = factory
}

// 🎯 New builds the source configured in cfg
func New(ctx context.Context, cfg config.Remote) (Source, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		options := make([]string, 0, len(providers))
		for k := range providers {
			options = append(options, k)
		}
		sort.Strings(options)
		return nil, errors.Errorf("provider %q not found, options: %s", cfg.Provider, strings.Join(options, ", "))
	}
	return factory(ctx, cfg)
}

// index maps profile names to their location, first location wins.
type index map[string]string

func (idx index) add(path string) {
	if !isProfileFile(path) {
		return
	}
	name := profile.NameFromPath(path)
	if _, dup := idx[name]; !dup {
		idx[name] = path
	}
}

func (idx index) names() []string {
	out := make([]string, 0, len(idx))
	for name := range idx {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func isProfileFile(path string) bool {
	ok, err := doublestar.Match(ProfilePattern, path)
	return err == nil && ok
}
