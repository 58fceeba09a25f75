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

package metadata

import (
	"bytes"
	_ "embed"
	"os"
	"slices"
	"strings"
	"sync"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var defaultRegistryData []byte

// 📦 TypeDescriptor describes how one metadata type is laid out on disk.
// Descriptors are values; a Registry never hands out anything a caller could
// use to change its contents.
type TypeDescriptor struct {
	Name            string   `yaml:"name"`
	DirectoryName   string   `yaml:"directory"`
	SourceExtension string   `yaml:"suffix"`
	FolderExtension string   `yaml:"folder_suffix,omitempty"`
	InFolder        bool     `yaml:"in_folder,omitempty"`
	ChildXMLNames   []string `yaml:"children,omitempty"`
}

// 🔍 Matches reports whether the file name carries this type's source
// extension, or its folder extension for folder-organized types.
func (td TypeDescriptor) Matches(path string) bool {
	if strings.HasSuffix(path, td.SourceExtension) {
		return true
	}
	return td.InFolder && td.FolderExtension != "" && strings.HasSuffix(path, td.FolderExtension)
}

// 🗂️ Registry is an ordered, read-only table of type descriptors.
type Registry struct {
	types  []TypeDescriptor
	byName map[string]int
	parent map[string]string
}

type registryFile struct {
	Types []TypeDescriptor `yaml:"types"`
}

// 🏭 NewRegistry builds a registry from descriptors in evaluation order.
func NewRegistry(types []TypeDescriptor) (*Registry, error) {
	r := &Registry{
		types:  make([]TypeDescriptor, 0, len(types)),
		byName: make(map[string]int, len(types)),
		parent: map[string]string{},
	}

	for _, td := range types {
		if td.Name == "" {
			return nil, errors.Errorf("type descriptor without a name")
		}
		if td.SourceExtension == "" {
			return nil, errors.Errorf("type %s: suffix is required", td.Name)
		}
		if td.InFolder && td.FolderExtension == "" {
			return nil, errors.Errorf("type %s: in_folder types need a folder_suffix", td.Name)
		}
		if _, dup := r.byName[td.Name]; dup {
			return nil, errors.Errorf("type %s declared twice", td.Name)
		}

		td.ChildXMLNames = slices.Clone(td.ChildXMLNames)
		r.byName[td.Name] = len(r.types)
		r.types = append(r.types, td)

		for _, child := range td.ChildXMLNames {
			r.parent[child] = td.Name
		}
	}

	return r, nil
}

// 📝 Parse reads a registry from its YAML form.
func Parse(data []byte) (*Registry, error) {
	var rf registryFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&rf); err != nil {
		return nil, errors.Errorf("parsing registry: %w", err)
	}
	return NewRegistry(rf.Types)
}

// 📂 Load reads a registry file from disk.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading registry file: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, errors.Errorf("loading %s: %w", path, err)
	}
	return r, nil
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := Parse(defaultRegistryData)
	if err != nil {
		panic("embedded metadata registry is invalid: " + err.Error())
	}
	return r
})

// Default returns the built-in registry. It is immutable and safe to share.
func Default() *Registry {
	return defaultRegistry()
}

// Types returns a copy of the descriptors in evaluation order.
func (r *Registry) Types() []TypeDescriptor {
	out := make([]TypeDescriptor, len(r.types))
	for i, td := range r.types {
		td.ChildXMLNames = slices.Clone(td.ChildXMLNames)
		out[i] = td
	}
	return out
}

// Names returns the type names in evaluation order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.types))
	for i, td := range r.types {
		names[i] = td.Name
	}
	return names
}

// Lookup finds a descriptor by type name.
func (r *Registry) Lookup(name string) (TypeDescriptor, bool) {
	i, ok := r.byName[name]
	if !ok {
		return TypeDescriptor{}, false
	}
	td := r.types[i]
	td.ChildXMLNames = slices.Clone(td.ChildXMLNames)
	return td, true
}

// 🎯 Match returns the first descriptor, in registry order, that claims path.
func (r *Registry) Match(path string) (TypeDescriptor, bool) {
	for _, td := range r.types {
		if td.Matches(path) {
			return r.Lookup(td.Name)
		}
	}
	return TypeDescriptor{}, false
}

// IsCompoundChild reports whether instances of the named type always live
// under a parent instance (a field under an object, for example).
func (r *Registry) IsCompoundChild(name string) bool {
	_, ok := r.parent[name]
	return ok
}
