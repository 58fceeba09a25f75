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

// Package profile holds the profile model, its XML codec, the package
// reference filter, the local/remote diff and the batched retrieval pipeline.
package profile

import (
	"slices"

	"github.com/beevik/etree"
)

// SourceExtension is the file suffix of a profile in source format.
const SourceExtension = ".profile-meta.xml"

type ApplicationVisibility struct {
	Application string
	Default     bool
	Visible     bool
}

type ClassAccess struct {
	ApexClass string
	Enabled   bool
}

type FieldPermission struct {
	Editable bool
	Field    string
	Readable bool
}

type LayoutAssignment struct {
	Layout     string
	RecordType string
}

type ObjectPermission struct {
	AllowCreate      bool
	AllowDelete      bool
	AllowEdit        bool
	AllowRead        bool
	ModifyAllRecords bool
	Object           string
	ViewAllRecords   bool
}

type PageAccess struct {
	ApexPage string
	Enabled  bool
}

type RecordTypeVisibility struct {
	Default    bool
	RecordType string
	Visible    bool
}

type TabVisibility struct {
	Tab        string
	Visibility string
}

// 📄 Profile is a profile document. The permission categories the filter
// understands are typed; every other element is kept as-is in Extra.
//
// A nil category was absent from the document; an empty non-nil one was
// emptied by a filter.
type Profile struct {
	FullName string

	ApplicationVisibilities []ApplicationVisibility
	ClassAccesses           []ClassAccess
	FieldPermissions        []FieldPermission
	LayoutAssignments       []LayoutAssignment
	ObjectPermissions       []ObjectPermission
	PageAccesses            []PageAccess
	RecordTypeVisibilities  []RecordTypeVisibility
	TabVisibilities         []TabVisibility

	Extra []*etree.Element
}

// Clone returns a deep copy.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	out := &Profile{
		FullName:                p.FullName,
		ApplicationVisibilities: slices.Clone(p.ApplicationVisibilities),
		ClassAccesses:           slices.Clone(p.ClassAccesses),
		FieldPermissions:        slices.Clone(p.FieldPermissions),
		LayoutAssignments:       slices.Clone(p.LayoutAssignments),
		ObjectPermissions:       slices.Clone(p.ObjectPermissions),
		PageAccesses:            slices.Clone(p.PageAccesses),
		RecordTypeVisibilities:  slices.Clone(p.RecordTypeVisibilities),
		TabVisibilities:         slices.Clone(p.TabVisibilities),
	}
	if p.Extra != nil {
		out.Extra = make([]*etree.Element, len(p.Extra))
		for i, el := range p.Extra {
			out.Extra[i] = el.Copy()
		}
	}
	return out
}
