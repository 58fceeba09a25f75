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
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// SourceSuffixPattern matches the family of metadata source-file suffixes
// (".cls-meta.xml", ".field-meta.xml", ...).
var SourceSuffixPattern = regexp.MustCompile(`\.[A-Za-z]+-meta\.xml$`)

// Segments splits a path into its non-empty components, whatever the
// platform separator.
func Segments(path string) []string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" && p != "." {
			out = append(out, p)
		}
	}
	return out
}

// SegmentFromEnd returns the segment n places before the last one; n=0 is the
// base name.
func SegmentFromEnd(segments []string, n int) (string, bool) {
	i := len(segments) - 1 - n
	if n < 0 || i < 0 {
		return "", false
	}
	return segments[i], true
}

// splitFirstDot cuts a base name at its first dot: "Foo.cls-meta.xml" becomes
// "Foo" and ".cls-meta.xml".
func splitFirstDot(base string) (string, string) {
	if i := strings.Index(base, "."); i >= 0 {
		return base[:i], base[i:]
	}
	return base, ""
}

// StripSourceSuffix removes a metadata source suffix from a name, falling
// back to the plain file extension.
func StripSourceSuffix(name string) string {
	if SourceSuffixPattern.MatchString(name) {
		return SourceSuffixPattern.ReplaceAllString(name, "")
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// 🏷️ FullAPIName is the component's API name without any extension. Compound
// children are qualified by their parent: "Account.My_Field__c".
func (r *Registry) FullAPIName(path string) string {
	segs := Segments(path)
	base, _ := SegmentFromEnd(segs, 0)
	name, _ := splitFirstDot(base)
	if parent, ok := r.compoundParentSegment(path, segs); ok {
		return parent + "." + name
	}
	return name
}

// FullAPINameWithExtension is FullAPIName keeping the file extension.
func (r *Registry) FullAPINameWithExtension(path string) string {
	base, _ := SegmentFromEnd(Segments(path), 0)
	_, ext := splitFirstDot(base)
	return r.FullAPIName(path) + ext
}

func (r *Registry) compoundParentSegment(path string, segs []string) (string, bool) {
	td, ok := r.Match(path)
	if !ok || !r.IsCompoundChild(td.Name) {
		return "", false
	}
	return SegmentFromEnd(segs, 2)
}

// 🏷️ MemberName derives the component name a file contributes for the given
// type: "Parent.Child" for compound children, the folder-relative path for
// folder-organized types, and the suffix-stripped base name otherwise.
func (r *Registry) MemberName(path string, td TypeDescriptor) string {
	segs := Segments(path)
	base, _ := SegmentFromEnd(segs, 0)

	if r.IsCompoundChild(td.Name) {
		name := trimTypeSuffix(base, td)
		if parent, ok := SegmentFromEnd(segs, 2); ok {
			return parent + "." + name
		}
		return name
	}

	if td.InFolder {
		if root := lastIndexOf(segs, td.DirectoryName); root >= 0 && root < len(segs)-1 {
			rel := slices.Clone(segs[root+1:])
			rel[len(rel)-1] = trimTypeSuffix(rel[len(rel)-1], td)
			return strings.Join(rel, "/")
		}
	}

	return trimTypeSuffix(base, td)
}

func trimTypeSuffix(base string, td TypeDescriptor) string {
	switch {
	case strings.HasSuffix(base, td.SourceExtension):
		return strings.TrimSuffix(base, td.SourceExtension)
	case td.FolderExtension != "" && strings.HasSuffix(base, td.FolderExtension):
		return strings.TrimSuffix(base, td.FolderExtension)
	default:
		return StripSourceSuffix(base)
	}
}

func lastIndexOf(segs []string, name string) int {
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i] == name {
			return i
		}
	}
	return -1
}

// IsCustomComponent reports whether a field or object file names a custom
// component ("__c" or "__mdt"). Every other type counts as custom.
func IsCustomComponent(path, typeName string) bool {
	if typeName != "CustomField" && typeName != "CustomObject" {
		return true
	}
	base, _ := SegmentFromEnd(Segments(path), 0)
	name, _ := splitFirstDot(base)
	return strings.HasSuffix(name, "__c") || strings.HasSuffix(name, "__mdt")
}
