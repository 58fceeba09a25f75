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

package operation

import (
	"context"

	"github.com/walteh/forcesync/pkg/apex"
	"github.com/walteh/forcesync/pkg/classify"
	"gitlab.com/tozd/go/errors"
)

// 🧪 ListTests returns the Apex test classes below root
func (o *operator) ListTests(ctx context.Context, root string) ([]apex.Class, error) {
	root = o.path(root)
	if err := requireDir(ctx, root); err != nil {
		return nil, err
	}

	catalog, err := apex.Scan(ctx, o.classifier(ctx), root)
	if err != nil {
		return nil, errors.Errorf("scanning apex classes: %w", err)
	}
	return catalog.Tests(), nil
}

// 📋 ListSource returns the components below root in registry order. An
// empty typeName lists every type.
func (o *operator) ListSource(ctx context.Context, root, typeName string) ([]classify.Component, error) {
	root = o.path(root)
	if err := requireDir(ctx, root); err != nil {
		return nil, err
	}

	types := o.registry.Names()
	if typeName != "" {
		td, ok := o.registry.Lookup(typeName)
		if !ok {
			return nil, errors.Errorf("%w: unknown metadata type %q", ErrInvalidInput, typeName)
		}
		types = []string{td.Name}
	}

	result, err := o.classifier(ctx).Classify(ctx, root)
	if err != nil {
		return nil, errors.Errorf("classifying %s: %w", root, err)
	}

	out := make([]classify.Component, 0, result.Len())
	for _, t := range types {
		out = append(out, result.ComponentsOf(t)...)
	}
	return out, nil
}
