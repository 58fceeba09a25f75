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

package classify

import (
	"slices"
)

// 📦 Component is one classified file and the component name it contributes.
type Component struct {
	Type string
	Path string
	Name string
}

// TypeEntries holds what one classification run found for a single type.
type TypeEntries struct {
	Files      []string
	Components []string

	seen map[string]struct{}
}

func newTypeEntries() *TypeEntries {
	return &TypeEntries{
		Files:      []string{},
		Components: []string{},
		seen:       map[string]struct{}{},
	}
}

func (e *TypeEntries) add(path, name string) {
	e.Files = append(e.Files, path)
	if _, ok := e.seen[name]; ok {
		return
	}
	e.seen[name] = struct{}{}
	e.Components = append(e.Components, name)
}

// 🗂️ Result maps each registry type to its files and component names. Every
// type of the registry used for the run is present, possibly with empty lists.
type Result struct {
	order   []string
	entries map[string]*TypeEntries
	byPath  map[string]Component
}

func newResult(typeNames []string) *Result {
	r := &Result{
		order:   slices.Clone(typeNames),
		entries: make(map[string]*TypeEntries, len(typeNames)),
		byPath:  map[string]Component{},
	}
	for _, name := range typeNames {
		r.entries[name] = newTypeEntries()
	}
	return r
}

func (r *Result) add(c Component) {
	if _, dup := r.byPath[c.Path]; dup {
		return
	}
	e, ok := r.entries[c.Type]
	if !ok {
		e = newTypeEntries()
		r.entries[c.Type] = e
		r.order = append(r.order, c.Type)
	}
	e.add(c.Path, c.Name)
	r.byPath[c.Path] = c
}

// Types returns type names in registry order.
func (r *Result) Types() []string {
	return slices.Clone(r.order)
}

// Files returns the accepted files of a type in discovery order.
func (r *Result) Files(typeName string) []string {
	if e, ok := r.entries[typeName]; ok {
		return slices.Clone(e.Files)
	}
	return []string{}
}

// Components returns the distinct component names of a type in discovery
// order.
func (r *Result) Components(typeName string) []string {
	if e, ok := r.entries[typeName]; ok {
		return slices.Clone(e.Components)
	}
	return []string{}
}

// Lookup returns the component a classified file belongs to.
func (r *Result) Lookup(path string) (Component, bool) {
	c, ok := r.byPath[path]
	return c, ok
}

// ComponentsOf lists every classified file of a type as components, in
// discovery order.
func (r *Result) ComponentsOf(typeName string) []Component {
	e, ok := r.entries[typeName]
	if !ok {
		return nil
	}
	out := make([]Component, 0, len(e.Files))
	for _, f := range e.Files {
		out = append(out, r.byPath[f])
	}
	return out
}

// Len is the total number of accepted files.
func (r *Result) Len() int {
	return len(r.byPath)
}

// merge appends other's entries after r's, keeping r's type order.
func (r *Result) merge(other *Result) {
	for _, typeName := range other.order {
		for _, f := range other.entries[typeName].Files {
			r.add(other.byPath[f])
		}
	}
}
