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

// Package verify checks a tree.DirTree against the live filesystem.
//
// Walk order is fixed, and it decides which mismatch is reported first:
//
//  1. Directories in tree.Paths order (lexicographic by cleaned path, so a
//     parent is checked before anything below it).
//  2. For each directory: type, permission, owner, group.
//  3. Its files in declared order: type, permission, owner, group, content.
//  4. Its links in declared order: type, permission, owner, group, target.
//
// When a directory is missing or not a directory its files and links are
// skipped. The verifier only reads; it never creates or changes anything.
package verify

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	logrus "github.com/sirupsen/logrus"

	"dotverify/internal/common"
	"dotverify/internal/tree"
)

// FS is the subset of a billy filesystem the verifier reads through.
type FS interface {
	billy.Basic
	billy.Symlink
}

// Verifier checks DirTrees against FS.
type Verifier struct {
	FS FS

	// Base anchors relative tree keys, normally the sandbox root.
	Base string

	// Home replaces a leading "~" in link targets.
	Home string

	// Vars are expanded in link targets before the process environment.
	Vars map[string]string
}

// New returns a verifier over the host filesystem rooted at base.
func New(base string) *Verifier {
	home, _ := os.UserHomeDir()
	return &Verifier{FS: osfs.Default, Base: base, Home: home}
}

// Verify walks t and returns the first mismatch as a *Failure. Any other
// error means the filesystem could not be read and is not a verdict.
func (v *Verifier) Verify(t tree.DirTree) error {
	failures, err := v.walk(t, true)
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		return failures[0]
	}
	return nil
}

// VerifyAll walks t without stopping and returns every mismatch in walk
// order. failures[0] is what Verify would have reported.
func (v *Verifier) VerifyAll(t tree.DirTree) ([]*Failure, error) {
	return v.walk(t, false)
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func (v *Verifier) lookup(name string) string {
	if val, ok := v.Vars[name]; ok {
		return val
	}
	return os.Getenv(name)
}

var errStop = errors.New("stop walk")

type walker struct {
	v        *Verifier
	failFast bool
	failures []*Failure
}

func (v *Verifier) walk(t tree.DirTree, failFast bool) ([]*Failure, error) {
	w := &walker{v: v, failFast: failFast}
	for _, key := range tree.Paths(t) {
		if err := w.directory(key, t[key]); err != nil {
			if errors.Is(err, errStop) {
				break
			}
			return w.failures, err
		}
	}
	return w.failures, nil
}

// record stores f and returns errStop in fail-fast mode.
func (w *walker) record(f *Failure) error {
	logrus.WithFields(logrus.Fields{"path": f.Path, "kind": f.Kind}).Debug("verify: mismatch")
	w.failures = append(w.failures, f)
	if w.failFast {
		return errStop
	}
	return nil
}

func (w *walker) directory(key string, desc tree.DirectoryDescriptor) error {
	path, err := common.ResolvePath(w.v.Base, key)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrInvalidPath, key, err)
	}
	logrus.WithField("path", path).Trace("verify: directory")

	info, state, err := w.lstat(path)
	if err != nil {
		return err
	}
	if info == nil || !info.IsDir() {
		return w.record(&Failure{Kind: NotADirectory, Path: key, Expected: "directory", Actual: state})
	}
	if err := w.attributes(key, path, info, info, desc.Permission, desc.Ownership); err != nil {
		return err
	}

	for _, f := range desc.Files {
		if err := w.file(filepath.Join(key, f.Name), filepath.Join(path, f.Name), f); err != nil {
			return err
		}
	}
	for _, l := range desc.Links {
		if err := w.link(filepath.Join(key, l.Name), filepath.Join(path, l.Name), l); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) file(name, path string, desc tree.FileDescriptor) error {
	info, state, err := w.lstat(path)
	if err != nil {
		return err
	}
	if info == nil || !info.Mode().IsRegular() {
		return w.record(&Failure{Kind: NotAFile, Path: name, Expected: "regular file", Actual: state})
	}
	if err := w.attributes(name, path, info, info, desc.Permission, desc.Ownership); err != nil {
		return err
	}
	if desc.ContentDigest == "" {
		return nil
	}

	f, err := w.v.FS.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return w.record(&Failure{Kind: ContentMismatch, Path: name, Expected: desc.ContentDigest, Actual: unreadable})
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	sum, err := tree.Digest(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if sum != desc.ContentDigest {
		return w.record(&Failure{Kind: ContentMismatch, Path: name, Expected: desc.ContentDigest, Actual: sum})
	}
	return nil
}

func (w *walker) link(name, path string, desc tree.LinkDescriptor) error {
	info, state, err := w.lstat(path)
	if err != nil {
		return err
	}
	if info == nil || info.Mode()&fs.ModeSymlink == 0 {
		return w.record(&Failure{Kind: NotALink, Path: name, Expected: "symlink", Actual: state})
	}

	// Symlink mode bits carry no meaning on most platforms, so permission is
	// read through the link. Ownership stays on the link itself.
	permInfo, err := w.v.FS.Stat(path)
	if err != nil {
		if !hidden(err) {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		permInfo = info
	}
	if err := w.attributes(name, path, permInfo, info, desc.Permission, desc.Ownership); err != nil {
		return err
	}

	raw, err := w.v.FS.Readlink(path)
	if err != nil {
		return fmt.Errorf("failed to read link %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	actual, err := common.ResolvePath(dir, raw)
	if err != nil {
		return err
	}
	expected, err := common.ResolvePath(dir, common.ExpandPathFunc(desc.Target, w.v.Home, w.v.lookup))
	if err != nil {
		return err
	}
	if actual != expected {
		return w.record(&Failure{Kind: TargetMismatch, Path: name, Expected: expected, Actual: actual})
	}
	return nil
}

// attributes checks permission on permInfo and ownership on ownInfo.
func (w *walker) attributes(name, path string, permInfo, ownInfo fs.FileInfo, perm tree.Permission, own tree.Ownership) error {
	if actual := tree.FormatPermission(permInfo.Mode()); actual != perm {
		if err := w.record(&Failure{Kind: PermissionMismatch, Path: name, Expected: perm.String(), Actual: actual.String()}); err != nil {
			return err
		}
	}

	uid, gid, ok := ownerIDs(ownInfo)
	if !ok {
		return fmt.Errorf("%s: ownership is not available on this platform", path)
	}
	if actual := tree.ClassOf(uid); actual != own.UserClass() {
		if err := w.record(&Failure{Kind: OwnerMismatch, Path: name, Expected: own.UserClass().String(), Actual: actual.String()}); err != nil {
			return err
		}
	}
	if actual := tree.ClassOf(gid); actual != own.GroupClass() {
		if err := w.record(&Failure{Kind: GroupMismatch, Path: name, Expected: own.GroupClass().String(), Actual: actual.String()}); err != nil {
			return err
		}
	}
	return nil
}

// lstat returns nil info, nil error when path cannot be seen: it or a
// parent is missing, or a parent denies search. Callers report that as a
// structural mismatch with state as the observed condition.
func (w *walker) lstat(path string) (info fs.FileInfo, state string, err error) {
	info, err = w.v.FS.Lstat(path)
	switch {
	case err == nil:
		return info, describe(info), nil
	case errors.Is(err, fs.ErrPermission):
		logrus.WithError(err).Debug("verify: entry not reachable")
		return nil, unreadable, nil
	case hidden(err):
		return nil, describe(nil), nil
	}
	return nil, "", fmt.Errorf("failed to lstat %s: %w", path, err)
}

// hidden reports errors that mean the entry cannot be observed rather than
// that the filesystem is broken.
func hidden(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) || errors.Is(err, fs.ErrPermission)
}

const unreadable = "unreadable"

func describe(info fs.FileInfo) string {
	if info == nil {
		return "missing"
	}
	switch m := info.Mode(); {
	case m.IsDir():
		return "directory"
	case m.IsRegular():
		return "regular file"
	case m&fs.ModeSymlink != 0:
		return "symlink"
	default:
		return "special file"
	}
}
