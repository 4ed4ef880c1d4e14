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

package harness

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"dotverify/internal/common"
)

// IgnoreFile holds gitignore-style patterns that hide scenario files from
// Discover. It applies to its own directory and everything below it.
const IgnoreFile = ".dotverifyignore"

// Discover expands paths into scenario files. Files are taken as given;
// directories are searched recursively for *.yaml and *.yml in lexical
// order. Hidden directories are skipped.
func Discover(paths ...string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", common.ErrNotFound, p)
			}
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := discoverDir(p)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func discoverDir(root string) ([]string, error) {
	m := &ignoreMatcher{}
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				rel = ""
			} else if strings.HasPrefix(d.Name(), ".") || m.isIgnored(rel, true) {
				return filepath.SkipDir
			}
			return m.load(path, rel)
		}

		if !isScenarioFile(d.Name()) || m.isIgnored(rel, false) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover scenarios in %s: %w", root, err)
	}
	return files, nil
}

func isScenarioFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}

// ignoreMatcher collects ignore files, each scoped to its directory.
type ignoreMatcher struct {
	matchers []scopedMatcher
}

type scopedMatcher struct {
	dirPrefix string
	ignore    *ignore.GitIgnore
}

// load adds dir's ignore file, if any. relDir is "" for the root.
func (m *ignoreMatcher) load(dir, relDir string) error {
	data, err := os.ReadFile(filepath.Join(dir, IgnoreFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	lines := strings.Split(string(data), "\n")
	m.matchers = append(m.matchers, scopedMatcher{
		dirPrefix: relDir,
		ignore:    ignore.CompileIgnoreLines(lines...),
	})
	return nil
}

func (m *ignoreMatcher) isIgnored(relPath string, isDir bool) bool {
	checkPath := relPath
	if isDir {
		checkPath = relPath + "/"
	}

	for _, sm := range m.matchers {
		pathToCheck := checkPath
		if sm.dirPrefix != "" {
			prefix := sm.dirPrefix + "/"
			if !strings.HasPrefix(relPath, prefix) {
				continue
			}
			pathToCheck = strings.TrimPrefix(checkPath, prefix)
		}
		if sm.ignore.MatchesPath(pathToCheck) {
			return true
		}
	}
	return false
}
