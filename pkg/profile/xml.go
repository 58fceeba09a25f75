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
	"context"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	rootTag   = "Profile"
	namespace = "http://soap.sforce.com/2006/04/metadata"
)

// 📖 Parse decodes a profile document.
func Parse(data []byte) (*Profile, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Errorf("parsing profile xml: %w", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != rootTag {
		return nil, errors.Errorf("parsing profile xml: missing <%s> root element", rootTag)
	}

	p := &Profile{}
	for _, el := range root.ChildElements() {
		switch el.Tag {
		case "fullName":
			p.FullName = strings.TrimSpace(el.Text())
		case "applicationVisibilities":
			p.ApplicationVisibilities = append(p.ApplicationVisibilities, ApplicationVisibility{
				Application: text(el, "application"),
				Default:     flag(el, "default"),
				Visible:     flag(el, "visible"),
			})
		case "classAccesses":
			p.ClassAccesses = append(p.ClassAccesses, ClassAccess{
				ApexClass: text(el, "apexClass"),
				Enabled:   flag(el, "enabled"),
			})
		case "fieldPermissions":
			p.FieldPermissions = append(p.FieldPermissions, FieldPermission{
				Editable: flag(el, "editable"),
				Field:    text(el, "field"),
				Readable: flag(el, "readable"),
			})
		case "layoutAssignments":
			p.LayoutAssignments = append(p.LayoutAssignments, LayoutAssignment{
				Layout:     text(el, "layout"),
				RecordType: text(el, "recordType"),
			})
		case "objectPermissions":
			p.ObjectPermissions = append(p.ObjectPermissions, ObjectPermission{
				AllowCreate:      flag(el, "allowCreate"),
				AllowDelete:      flag(el, "allowDelete"),
				AllowEdit:        flag(el, "allowEdit"),
				AllowRead:        flag(el, "allowRead"),
				ModifyAllRecords: flag(el, "modifyAllRecords"),
				Object:           text(el, "object"),
				ViewAllRecords:   flag(el, "viewAllRecords"),
			})
		case "pageAccesses":
			p.PageAccesses = append(p.PageAccesses, PageAccess{
				ApexPage: text(el, "apexPage"),
				Enabled:  flag(el, "enabled"),
			})
		case "recordTypeVisibilities":
			p.RecordTypeVisibilities = append(p.RecordTypeVisibilities, RecordTypeVisibility{
				Default:    flag(el, "default"),
				RecordType: text(el, "recordType"),
				Visible:    flag(el, "visible"),
			})
		case "tabVisibilities":
			p.TabVisibilities = append(p.TabVisibilities, TabVisibility{
				Tab:        text(el, "tab"),
				Visibility: text(el, "visibility"),
			})
		default:
			p.Extra = append(p.Extra, el.Copy())
		}
	}
	return p, nil
}

// ReadFile decodes the profile at path. The full name falls back to the
// file name when the document does not carry one.
func ReadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading profile %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, errors.Errorf("reading profile %s: %w", path, err)
	}
	if p.FullName == "" {
		p.FullName = NameFromPath(path)
	}
	return p, nil
}

// NameFromPath is the profile name a source file stands for.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	if strings.HasSuffix(base, SourceExtension) {
		return strings.TrimSuffix(base, SourceExtension)
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func text(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}

func flag(el *etree.Element, tag string) bool {
	b, err := strconv.ParseBool(text(el, tag))
	return err == nil && b
}

type field struct {
	tag   string
	value string
}

func entry(tag string, fields ...field) *etree.Element {
	el := etree.NewElement(tag)
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		el.CreateElement(f.tag).SetText(f.value)
	}
	return el
}

func boolText(v bool) string { return strconv.FormatBool(v) }

func (p *Profile) elements() []*etree.Element {
	var out []*etree.Element
	for _, v := range p.ApplicationVisibilities {
		out = append(out, entry("applicationVisibilities",
			field{"application", v.Application}, field{"default", boolText(v.Default)}, field{"visible", boolText(v.Visible)}))
	}
	for _, v := range p.ClassAccesses {
		out = append(out, entry("classAccesses",
			field{"apexClass", v.ApexClass}, field{"enabled", boolText(v.Enabled)}))
	}
	for _, v := range p.FieldPermissions {
		out = append(out, entry("fieldPermissions",
			field{"editable", boolText(v.Editable)}, field{"field", v.Field}, field{"readable", boolText(v.Readable)}))
	}
	for _, v := range p.LayoutAssignments {
		out = append(out, entry("layoutAssignments",
			field{"layout", v.Layout}, field{"recordType", v.RecordType}))
	}
	for _, v := range p.ObjectPermissions {
		out = append(out, entry("objectPermissions",
			field{"allowCreate", boolText(v.AllowCreate)}, field{"allowDelete", boolText(v.AllowDelete)},
			field{"allowEdit", boolText(v.AllowEdit)}, field{"allowRead", boolText(v.AllowRead)},
			field{"modifyAllRecords", boolText(v.ModifyAllRecords)}, field{"object", v.Object},
			field{"viewAllRecords", boolText(v.ViewAllRecords)}))
	}
	for _, v := range p.PageAccesses {
		out = append(out, entry("pageAccesses",
			field{"apexPage", v.ApexPage}, field{"enabled", boolText(v.Enabled)}))
	}
	for _, v := range p.RecordTypeVisibilities {
		out = append(out, entry("recordTypeVisibilities",
			field{"default", boolText(v.Default)}, field{"recordType", v.RecordType}, field{"visible", boolText(v.Visible)}))
	}
	for _, v := range p.TabVisibilities {
		out = append(out, entry("tabVisibilities",
			field{"tab", v.Tab}, field{"visibility", v.Visibility}))
	}
	for _, el := range p.Extra {
		out = append(out, el.Copy())
	}

	// source format keeps top-level elements grouped by tag
	slices.SortStableFunc(out, func(a, b *etree.Element) int {
		return strings.Compare(a.Tag, b.Tag)
	})
	return out
}

// 📝 Marshal encodes the profile in source format. The full name is not
// written; it comes from the file name.
func (p *Profile) Marshal() ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement(rootTag)
	root.CreateAttr("xmlns", namespace)
	for _, el := range p.elements() {
		root.AddChild(el)
	}

	doc.Indent(4)
	data, err := doc.WriteToBytes()
	if err != nil {
		return nil, errors.Errorf("encoding profile %s: %w", p.FullName, err)
	}
	return data, nil
}

// 💾 FileWriter persists profiles as source files.
type FileWriter struct{}

var _ Writer = FileWriter{}

func (FileWriter) WriteProfile(ctx context.Context, p *Profile, path string) error {
	data, err := p.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Errorf("creating profile directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Errorf("writing profile %s: %w", path, err)
	}
	zerolog.Ctx(ctx).Debug().Str("profile", p.FullName).Str("path", path).Int("bytes", len(data)).Msg("wrote profile")
	return nil
}
