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

// Package sandbox owns the directory the program under test writes into and
// the side file that records what that program believes it has installed.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	billyutil "github.com/go-git/go-billy/v5/util"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	logrus "github.com/sirupsen/logrus"

	"dotverify/internal/common"
	"dotverify/internal/util"
)

// EnvVar carries the sandbox root to the program under test.
const EnvVar = "DOTVERIFY_SANDBOX"

// FS is the subset of a billy filesystem the sandbox needs.
type FS interface {
	billy.Basic
	billy.Dir
}

// Sandbox is a shared, well-known root plus the installed-state file.
type Sandbox struct {
	Root          string
	InstalledFile string

	// LockPath guards the sandbox against a second concurrent run. It lives
	// next to Root so that Reset never deletes it.
	LockPath string

	FS FS

	lock *flock.Flock
	temp string // parent directory owned by a temporary sandbox
}

// New returns a sandbox over the host filesystem.
func New(root, installedFile string) *Sandbox {
	root = filepath.Clean(root)
	return &Sandbox{
		Root:          root,
		InstalledFile: installedFile,
		LockPath:      root + ".lock",
		FS:            osfs.Default,
	}
}

// NewTemp creates a fresh sandbox under parent (os.TempDir when empty) for a
// single scenario. Cleanup removes it again.
func NewTemp(parent, installedFile string) (*Sandbox, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	dir := filepath.Join(parent, "dotverify-"+uuid.NewString())
	s := New(filepath.Join(dir, "root"), installedFile)
	s.LockPath = filepath.Join(dir, "sandbox.lock")
	s.temp = dir
	if err := s.FS.MkdirAll(s.Root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temporary sandbox: %w", err)
	}
	logrus.WithField("root", s.Root).Debug("sandbox: created temporary root")
	return s, nil
}

// Env returns the environment entries that point a child at this sandbox.
func (s *Sandbox) Env() []string {
	return []string{EnvVar + "=" + s.Root}
}

// Reset empties Root and deletes InstalledFile. Root is created when it
// does not exist yet. Calling Reset on a clean sandbox is a no-op.
func (s *Sandbox) Reset() error {
	ctx := context.Background()

	if err := s.FS.MkdirAll(s.Root, 0755); err != nil {
		return fmt.Errorf("failed to create sandbox root: %w", err)
	}
	entries, err := s.FS.ReadDir(s.Root)
	if err != nil {
		return fmt.Errorf("failed to list sandbox root: %w", err)
	}
	for _, entry := range entries {
		path := s.FS.Join(s.Root, entry.Name())
		err := util.Retry(ctx, func() error {
			return billyutil.RemoveAll(s.FS, path)
		}, util.RemoveRetryOptions(ctx)...)
		if err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	if s.InstalledFile != "" {
		if err := s.FS.Remove(s.InstalledFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove installed file: %w", err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"root":    s.Root,
		"removed": len(entries),
	}).Debug("sandbox: reset")
	return nil
}

// Lock takes the exclusive sandbox lock without waiting. A lock held by
// another run yields common.ErrSandboxBusy.
func (s *Sandbox) Lock() error {
	if err := s.FS.MkdirAll(filepath.Dir(s.LockPath), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}
	s.lock = flock.New(s.LockPath)
	locked, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire sandbox lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", common.ErrSandboxBusy, s.LockPath)
	}
	return nil
}

// Unlock releases the lock taken by Lock.
func (s *Sandbox) Unlock() error {
	if s.lock == nil {
		return nil
	}
	err := s.lock.Unlock()
	s.lock = nil
	return err
}

// Cleanup removes a temporary sandbox. It does nothing for a shared one.
func (s *Sandbox) Cleanup() error {
	if s.temp == "" {
		return nil
	}
	if err := s.Unlock(); err != nil {
		return err
	}
	return billyutil.RemoveAll(s.FS, s.temp)
}
