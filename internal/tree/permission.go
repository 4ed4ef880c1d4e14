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
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// Permission is a mode rendered as exactly three octal digits, e.g. "755".
// Bits above the low nine (setuid, sticky, ...) are not modelled.
type Permission string

// FormatPermission renders the permission bits of mode.
func FormatPermission(mode fs.FileMode) Permission {
	return Permission(fmt.Sprintf("%03o", mode.Perm()))
}

// ParsePermission accepts "644", "0644" and "0o644".
func ParsePermission(s string) (Permission, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimPrefix(strings.TrimPrefix(v, "0o"), "0O")
	if len(v) == 4 && v[0] == '0' {
		v = v[1:]
	}
	p := Permission(v)
	if !p.Valid() {
		return "", fmt.Errorf("permission %q is not three octal digits", s)
	}
	return p, nil
}

// Valid reports whether p is exactly three octal digits.
func (p Permission) Valid() bool {
	if len(p) != 3 {
		return false
	}
	for i := 0; i < len(p); i++ {
		if p[i] < '0' || p[i] > '7' {
			return false
		}
	}
	return true
}

func (p Permission) String() string {
	return string(p)
}

// UnmarshalYAML accepts both integer (644) and string ("644") scalars.
func (p *Permission) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: permission must be a scalar", value.Line)
	}
	parsed, err := ParsePermission(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*p = parsed
	return nil
}

// OwnerClass is the privileged/normal proxy used instead of real identities.
type OwnerClass int

const (
	Normal OwnerClass = iota
	Privileged
)

// ClassOf maps a uid or gid to its class. Only id 0 is privileged.
func ClassOf(id uint32) OwnerClass {
	if id == 0 {
		return Privileged
	}
	return Normal
}

func (c OwnerClass) String() string {
	if c == Privileged {
		return "root"
	}
	return "normal"
}
