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

package verify

import "fmt"

// Kind classifies a mismatch between a DirTree and the filesystem.
type Kind int

const (
	NotADirectory Kind = iota + 1
	NotAFile
	NotALink
	PermissionMismatch
	OwnerMismatch
	GroupMismatch
	ContentMismatch
	TargetMismatch
)

func (k Kind) String() string {
	switch k {
	case NotADirectory:
		return "NotADirectory"
	case NotAFile:
		return "NotAFile"
	case NotALink:
		return "NotALink"
	case PermissionMismatch:
		return "PermissionMismatch"
	case OwnerMismatch:
		return "OwnerMismatch"
	case GroupMismatch:
		return "GroupMismatch"
	case ContentMismatch:
		return "ContentMismatch"
	case TargetMismatch:
		return "TargetMismatch"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Failure is a single mismatch. Path is the entry as declared in the tree
// (directory key joined with the entry name), not the resolved location.
type Failure struct {
	Kind     Kind
	Path     string
	Expected string
	Actual   string
}

// Error renders the cause string reported to the user and compared by
// expected-failure scenarios.
func (f *Failure) Error() string {
	switch f.Kind {
	case NotADirectory:
		return f.Path + " is not a directory"
	case NotAFile:
		return f.Path + " is not a file"
	case NotALink:
		return f.Path + " is not a link"
	case PermissionMismatch:
		return fmt.Sprintf("%s has permission %s, expected %s", f.Path, f.Actual, f.Expected)
	case OwnerMismatch:
		return fmt.Sprintf("%s is not owned by %s user", f.Path, f.Expected)
	case GroupMismatch:
		return fmt.Sprintf("%s is not owned by %s group", f.Path, f.Expected)
	case ContentMismatch:
		return f.Path + " has wrong content"
	case TargetMismatch:
		return fmt.Sprintf("%s should point to %s, but points to %s", f.Path, f.Expected, f.Actual)
	default:
		return fmt.Sprintf("%s: %s", f.Path, f.Kind)
	}
}
