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

// Package tree holds the declarative description of an expected directory
// tree: directories, the files and symlinks inside them, and the permission,
// ownership, content and target each one must have.
//
// A DirTree is flat. Keys are directory paths and containment is implied by
// path prefixes only; no descriptor refers to another. Trees are literal
// fixtures: nothing in this module mutates one after it has been built or
// loaded.
//
// Example (YAML form, as read by Load):
//
//	".":
//	  permission: 755
//	  root_user: false
//	  root_group: false
//	  links:
//	    - name: name1
//	      target: ../files/name1
//	      permission: 644
//	"subdir":
//	  permission: 755
//	  files:
//	    - name: notes.txt
//	      permission: 600
//	      content: b37b8487ac0b8f01e9e34949717b16d1
package tree

// Ownership is the two-bit ownership heuristic shared by all descriptors.
// OwnedByRoot means the owning uid is the privileged id 0; false means any
// other uid. The group flag works the same way on the gid.
type Ownership struct {
	OwnedByRoot      bool `yaml:"root_user"`
	OwnedByRootGroup bool `yaml:"root_group"`
}

// UserClass returns the expected owner class of the entry.
func (o Ownership) UserClass() OwnerClass {
	if o.OwnedByRoot {
		return Privileged
	}
	return Normal
}

// GroupClass returns the expected group class of the entry.
func (o Ownership) GroupClass() OwnerClass {
	if o.OwnedByRootGroup {
		return Privileged
	}
	return Normal
}

// FileDescriptor describes a regular file inside a directory.
type FileDescriptor struct {
	Name       string     `yaml:"name"`
	Permission Permission `yaml:"permission"`
	Ownership  `yaml:",inline"`

	// ContentDigest is the lowercase MD5 hex digest of the file's bytes.
	// Empty means the content is not checked.
	ContentDigest string `yaml:"content,omitempty"`
}

// LinkDescriptor describes a symbolic link inside a directory.
type LinkDescriptor struct {
	Name string `yaml:"name"`

	// Target is compared after resolution to a clean absolute path, so
	// "../a/b" and "./sub/../../a/b" written from the same directory match.
	Target     string     `yaml:"target"`
	Permission Permission `yaml:"permission"`
	Ownership  `yaml:",inline"`
}

// DirectoryDescriptor describes one expected directory.
type DirectoryDescriptor struct {
	Permission Permission `yaml:"permission"`
	Ownership  `yaml:",inline"`
	Files      []FileDescriptor `yaml:"files,omitempty"`
	Links      []LinkDescriptor `yaml:"links,omitempty"`
}

// DirTree maps a directory path to its expected state.
type DirTree map[string]DirectoryDescriptor
