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

package common

import (
	"os"
	"path/filepath"
	"strings"
)

// NormalizePath cleans a path without making it absolute. Trailing slashes
// are dropped and "." collapses to the empty string.
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	path = filepath.Clean(path)
	if path == "." {
		return ""
	}
	return path
}

// ResolvePath returns the cleaned absolute form of path. Relative paths are
// anchored at base; an empty base means the working directory.
func ResolvePath(base, path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		base = wd
	}
	if !filepath.IsAbs(base) {
		abs, err := filepath.Abs(base)
		if err != nil {
			return "", err
		}
		base = abs
	}
	return filepath.Join(base, path), nil
}

// ExpandPath replaces a leading "~" with home and expands $VAR references
// from the environment.
func ExpandPath(path, home string) string {
	return ExpandPathFunc(path, home, os.Getenv)
}

// ExpandPathFunc is ExpandPath with variables looked up through mapping.
func ExpandPathFunc(path, home string, mapping func(string) string) string {
	if home != "" {
		if path == "~" {
			path = home
		} else if strings.HasPrefix(path, "~/") {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.Expand(path, mapping)
}

// IsSegment reports whether name is a single, non-empty path element.
func IsSegment(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsRune(name, filepath.Separator)
}
