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
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a DirTree from a YAML file.
func Load(path string) (DirTree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tree file: %w", err)
	}
	defer f.Close()

	t, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Decode parses a DirTree from YAML. Unknown fields are rejected so that a
// typo like "premission" fails instead of silently skipping the check.
// An empty document yields an empty tree.
func Decode(r io.Reader) (DirTree, error) {
	t := DirTree{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return DirTree{}, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if t == nil {
		t = DirTree{}
	}
	if err := Validate(t); err != nil {
		return nil, err
	}
	return t, nil
}
