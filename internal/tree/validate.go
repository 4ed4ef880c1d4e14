// Copyright 2024 Dotverify Authors
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

package tree

import (
	"cmp"
	"fmt"
	"slices"

	"dotverify/internal/common"
)

// Paths returns the keys of t in verification order: lexicographic by
// cleaned path, which puts every directory before its descendants.
func Paths(t DirTree) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(common.NormalizePath(a), common.NormalizePath(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return keys
}

// Validate checks the invariants of a tree and returns the first violation
// wrapped in common.ErrInvalidTree.
func Validate(t DirTree) error {
	seen := make(map[string]string, len(t))
	for _, dir := range Paths(t) {
		norm := common.NormalizePath(dir)
		if prev, ok := seen[norm]; ok {
			return fmt.Errorf("%w: %q and %q name the same directory", common.ErrInvalidTree, prev, dir)
		}
		seen[norm] = dir

		desc := t[dir]
		if !desc.Permission.Valid() {
			return fmt.Errorf("%w: %s: permission %q is not three octal digits", common.ErrInvalidTree, dir, desc.Permission)
		}
		if err := validateEntries(dir, desc); err != nil {
			return err
		}
	}
	return nil
}

func validateEntries(dir string, desc DirectoryDescriptor) error {
	names := make(map[string]bool, len(desc.Files)+len(desc.Links))
	claim := func(name string) error {
		if !common.IsSegment(name) {
			return fmt.Errorf("%w: %s: %q is not a valid entry name", common.ErrInvalidTree, dir, name)
		}
		if names[name] {
			return fmt.Errorf("%w: %s: entry %q is described twice", common.ErrInvalidTree, dir, name)
		}
		names[name] = true
		return nil
	}

	for _, f := range desc.Files {
		if err := claim(f.Name); err != nil {
			return err
		}
		if !f.Permission.Valid() {
			return fmt.Errorf("%w: %s/%s: permission %q is not three octal digits", common.ErrInvalidTree, dir, f.Name, f.Permission)
		}
		if f.ContentDigest != "" && !IsDigest(f.ContentDigest) {
			return fmt.Errorf("%w: %s/%s: content %q is not a lowercase MD5 hex digest", common.ErrInvalidTree, dir, f.Name, f.ContentDigest)
		}
	}
	for _, l := range desc.Links {
		if err := claim(l.Name); err != nil {
			return err
		}
		if l.Target == "" {
			return fmt.Errorf("%w: %s/%s: link target is required", common.ErrInvalidTree, dir, l.Name)
		}
		if !l.Permission.Valid() {
			return fmt.Errorf("%w: %s/%s: permission %q is not three octal digits", common.ErrInvalidTree, dir, l.Name, l.Permission)
		}
	}
	return nil
}
