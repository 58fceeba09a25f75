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
	"regexp"
	"strings"
)

// references to installed (managed) package artifacts
var (
	packageFieldPattern      = regexp.MustCompile(`.*\..*__.*__c`)
	packageLayoutPattern     = regexp.MustCompile(`.*__.*__.*-`)
	packageObjectPattern     = regexp.MustCompile(`.*__.*__.*`)
	packageRecordTypePattern = regexp.MustCompile(`.*__.*__.*\.`)
	packageTabPattern        = regexp.MustCompile(`.*__.*|standard-.*`)
)

func namespaced(ref string) bool {
	return strings.Contains(ref, "__")
}

// keep returns the entries whose reference does not point into a package.
// Absent or empty input is returned as is.
func keep[T any](entries []T, ref func(T) string, isPackaged func(string) bool) []T {
	if len(entries) == 0 {
		return entries
	}
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		if !isPackaged(ref(e)) {
			out = append(out, e)
		}
	}
	return out
}

// 🧹 ExcludePackageRefs returns a copy of p without the permission entries
// that reference installed package components. Categories missing from p
// stay missing; p itself is not modified.
func ExcludePackageRefs(p *Profile) *Profile {
	if p == nil {
		return nil
	}
	out := p.Clone()

	out.ApplicationVisibilities = keep(out.ApplicationVisibilities,
		func(v ApplicationVisibility) string { return v.Application }, namespaced)
	out.ClassAccesses = keep(out.ClassAccesses,
		func(v ClassAccess) string { return v.ApexClass }, namespaced)
	out.FieldPermissions = keep(out.FieldPermissions,
		func(v FieldPermission) string { return v.Field }, packageFieldPattern.MatchString)
	out.LayoutAssignments = keep(out.LayoutAssignments,
		func(v LayoutAssignment) string { return v.Layout }, packageLayoutPattern.MatchString)
	out.ObjectPermissions = keep(out.ObjectPermissions,
		func(v ObjectPermission) string { return v.Object }, packageObjectPattern.MatchString)
	out.PageAccesses = keep(out.PageAccesses,
		func(v PageAccess) string { return v.ApexPage }, namespaced)
	out.RecordTypeVisibilities = keep(out.RecordTypeVisibilities,
		func(v RecordTypeVisibility) string { return v.RecordType }, packageRecordTypePattern.MatchString)
	out.TabVisibilities = keep(out.TabVisibilities,
		func(v TabVisibility) string { return v.Tab }, packageTabPattern.MatchString)

	return out
}
