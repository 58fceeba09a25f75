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

// Package apex sorts Apex classes found by the classifier into tests,
// interfaces, exceptions and plain classes.
package apex

import (
	"context"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/forcesync/pkg/classify"
	"gitlab.com/tozd/go/errors"
)

// Kind is the category of an Apex class.
type Kind string

const (
	KindTest      Kind = "test"
	KindInterface Kind = "interface"
	KindException Kind = "exception"
	KindClass     Kind = "class"
)

// Kinds lists every category in display order.
var Kinds = []Kind{KindTest, KindInterface, KindException, KindClass}

const (
	classType       = "ApexClass"
	sourceExtension = ".cls"
)

var (
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	stringLit    = regexp.MustCompile(`'(?:\\.|[^'\\])*'`)

	testAnnotation = regexp.MustCompile(`(?i)@istest\b`)
	interfaceDecl  = regexp.MustCompile(`(?i)\binterface\s+\w+`)
	exceptionDecl  = regexp.MustCompile(`(?i)\bclass\s+\w+\s+extends\s+(?:\w+\.)?\w*exception\b`)
	classDecl      = regexp.MustCompile(`(?i)\bclass\s+\w+`)
)

// 🏷️ Class is one categorised Apex class.
type Class struct {
	Name     string
	FilePath string
	Kind     Kind
}

// Categorize decides the kind of an Apex source. Comments and string
// literals are not considered.
func Categorize(source []byte) Kind {
	code := blockComment.ReplaceAllString(string(source), " ")
	code = lineComment.ReplaceAllString(code, " ")
	code = stringLit.ReplaceAllString(code, "''")

	ifaceAt := interfaceDecl.FindStringIndex(code)
	classAt := classDecl.FindStringIndex(code)

	switch {
	case testAnnotation.MatchString(code):
		return KindTest
	case ifaceAt != nil && (classAt == nil || ifaceAt[0] < classAt[0]):
		return KindInterface
	case exceptionDecl.MatchString(code):
		return KindException
	default:
		return KindClass
	}
}

// 📚 Catalog groups classes by kind, each group sorted by name.
type Catalog struct {
	byKind map[Kind][]Class
}

// Of returns the classes of one kind.
func (c *Catalog) Of(kind Kind) []Class {
	return slices.Clone(c.byKind[kind])
}

// Tests returns the test classes.
func (c *Catalog) Tests() []Class {
	return c.Of(KindTest)
}

// Names returns the class names of one kind.
func (c *Catalog) Names(kind Kind) []string {
	classes := c.byKind[kind]
	out := make([]string, 0, len(classes))
	for _, cls := range classes {
		out = append(out, cls.Name)
	}
	return out
}

// 🔍 Scan classifies root and categorises every Apex class source found.
// Classes whose .cls body is missing are skipped.
func Scan(ctx context.Context, classifier *classify.Classifier, root string) (*Catalog, error) {
	logger := zerolog.Ctx(ctx)

	result, err := classifier.Classify(ctx, root)
	if err != nil {
		return nil, errors.Errorf("classifying %s: %w", root, err)
	}

	catalog := &Catalog{byKind: map[Kind][]Class{}}
	for _, comp := range result.ComponentsOf(classType) {
		body := sourcePath(comp.Path)
		data, err := os.ReadFile(body)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Debug().Str("class", comp.Name).Msg("no apex source next to class metadata")
				continue
			}
			return nil, errors.Errorf("reading apex class %s: %w", comp.Name, err)
		}

		kind := Categorize(data)
		catalog.byKind[kind] = append(catalog.byKind[kind], Class{Name: comp.Name, FilePath: body, Kind: kind})
	}

	for kind := range catalog.byKind {
		slices.SortFunc(catalog.byKind[kind], func(a, b Class) int {
			return strings.Compare(a.Name, b.Name)
		})
	}

	logger.Debug().
		Int("tests", len(catalog.byKind[KindTest])).
		Int("interfaces", len(catalog.byKind[KindInterface])).
		Int("exceptions", len(catalog.byKind[KindException])).
		Int("classes", len(catalog.byKind[KindClass])).
		Msg("categorised apex classes")

	return catalog, nil
}

// sourcePath maps a class metadata file to its source body.
func sourcePath(metaPath string) string {
	if base, ok := strings.CutSuffix(metaPath, "-meta.xml"); ok {
		return base
	}
	if strings.HasSuffix(metaPath, sourceExtension) {
		return metaPath
	}
	return metaPath + sourceExtension
}
