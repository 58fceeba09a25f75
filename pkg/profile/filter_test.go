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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExcludePackageRefsClassAccess(t *testing.T) {
	in := &Profile{
		FullName: "Admin",
		ClassAccesses: []ClassAccess{
			{ApexClass: "ns__Helper", Enabled: true},
			{ApexClass: "Utility", Enabled: true},
		},
	}

	out := ExcludePackageRefs(in)

	assert.Equal(t, []ClassAccess{{ApexClass: "Utility", Enabled: true}}, out.ClassAccesses)
	assert.Len(t, in.ClassAccesses, 2, "input must not be modified")
}

func TestExcludePackageRefsCategories(t *testing.T) {
	in := &Profile{
		ApplicationVisibilities: []ApplicationVisibility{
			{Application: "ns__App", Visible: true},
			{Application: "Sales", Visible: true},
		},
		FieldPermissions: []FieldPermission{
			{Field: "Account.ns__Score__c", Readable: true},
			{Field: "ns__Thing__c.ns__Score__c", Readable: true},
			{Field: "Account.Local__c", Readable: true},
			{Field: "Account.Name", Readable: true},
		},
		LayoutAssignments: []LayoutAssignment{
			{Layout: "ns__Thing__c-ns__Thing Layout"},
			{Layout: "Account-Account Layout"},
			{Layout: "Local__c-Local Layout"},
		},
		ObjectPermissions: []ObjectPermission{
			{Object: "ns__Thing__c", AllowRead: true},
			{Object: "Local__c", AllowRead: true},
			{Object: "Account", AllowRead: true},
		},
		PageAccesses: []PageAccess{
			{ApexPage: "ns__Console", Enabled: true},
			{ApexPage: "Home", Enabled: true},
		},
		RecordTypeVisibilities: []RecordTypeVisibility{
			{RecordType: "ns__Thing__c.Special", Visible: true},
			{RecordType: "Account.Business", Visible: true},
			{RecordType: "Local__c.Default", Visible: true},
		},
		TabVisibilities: []TabVisibility{
			{Tab: "standard-Account", Visibility: "DefaultOn"},
			{Tab: "ns__Thing__c", Visibility: "DefaultOn"},
			{Tab: "Local__c", Visibility: "DefaultOn"},
			{Tab: "MyTab", Visibility: "Hidden"},
		},
	}

	out := ExcludePackageRefs(in)

	assert.Equal(t, []ApplicationVisibility{{Application: "Sales", Visible: true}}, out.ApplicationVisibilities)
	assert.Equal(t, []FieldPermission{
		{Field: "Account.Local__c", Readable: true},
		{Field: "Account.Name", Readable: true},
	}, out.FieldPermissions)
	assert.Equal(t, []LayoutAssignment{{Layout: "Account-Account Layout"}, {Layout: "Local__c-Local Layout"}}, out.LayoutAssignments)
	assert.Equal(t, []ObjectPermission{{Object: "Local__c", AllowRead: true}, {Object: "Account", AllowRead: true}}, out.ObjectPermissions)
	assert.Equal(t, []PageAccess{{ApexPage: "Home", Enabled: true}}, out.PageAccesses)
	assert.Equal(t, []RecordTypeVisibility{
		{RecordType: "Account.Business", Visible: true},
		{RecordType: "Local__c.Default", Visible: true},
	}, out.RecordTypeVisibilities)
	assert.Equal(t, []TabVisibility{{Tab: "MyTab", Visibility: "Hidden"}}, out.TabVisibilities)
}

func TestExcludePackageRefsRetainedEntriesNeverMatch(t *testing.T) {
	in := &Profile{
		FieldPermissions: []FieldPermission{
			{Field: "a.b__c__c"}, {Field: "x.y"}, {Field: "p__q.r__s__c"}, {Field: "plain"},
		},
		ObjectPermissions: []ObjectPermission{
			{Object: "a__b__c"}, {Object: "a__c"}, {Object: "a"},
		},
		TabVisibilities: []TabVisibility{
			{Tab: "standard-Case"}, {Tab: "x__y"}, {Tab: "z"},
		},
	}

	out := ExcludePackageRefs(in)

	for _, f := range out.FieldPermissions {
		assert.False(t, packageFieldPattern.MatchString(f.Field), f.Field)
	}
	for _, o := range out.ObjectPermissions {
		assert.False(t, packageObjectPattern.MatchString(o.Object), o.Object)
	}
	for _, tab := range out.TabVisibilities {
		assert.False(t, packageTabPattern.MatchString(tab.Tab), tab.Tab)
	}
}

func TestExcludePackageRefsAbsentCategoriesStayAbsent(t *testing.T) {
	in := &Profile{
		FullName:      "Admin",
		ClassAccesses: []ClassAccess{},
	}

	out := ExcludePackageRefs(in)
	require.NotNil(t, out)

	assert.Nil(t, out.ApplicationVisibilities)
	assert.Nil(t, out.FieldPermissions)
	assert.Nil(t, out.LayoutAssignments)
	assert.Nil(t, out.ObjectPermissions)
	assert.Nil(t, out.PageAccesses)
	assert.Nil(t, out.RecordTypeVisibilities)
	assert.Nil(t, out.TabVisibilities)
	assert.NotNil(t, out.ClassAccesses)
	assert.Empty(t, out.ClassAccesses)
}

func TestExcludePackageRefsEmptiedCategory(t *testing.T) {
	in := &Profile{PageAccesses: []PageAccess{{ApexPage: "ns__Only"}}}

	out := ExcludePackageRefs(in)

	assert.NotNil(t, out.PageAccesses)
	assert.Empty(t, out.PageAccesses)
}

func TestExcludePackageRefsNil(t *testing.T) {
	assert.Nil(t, ExcludePackageRefs(nil))
}
