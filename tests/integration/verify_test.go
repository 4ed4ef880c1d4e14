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

package integration

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
)

const threeLinksTree = `
".":
  permission: 755
  root_user: @user
  root_group: @group
  links:
    - {name: name1, target: $DOTFILES/files/name1, permission: 644, root_user: @user, root_group: @group}
    - {name: name2, target: $DOTFILES/files/name2, permission: 644, root_user: @user, root_group: @group}
    - {name: name3, target: $DOTFILES/files/name3, permission: 644, root_user: @user, root_group: @group}
`

func TestVerifyAfterRun(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	env := NewTestEnv(t)
	env.WriteScenario("no_options", noOptionsScenario)
	env.WriteFile("expected.yaml", Owned(threeLinksTree), 0644)

	g.Expect(env.RunCLI("run").ExitCode).To(Equal(0))

	result := env.RunCLI("verify", "expected.yaml")
	g.Expect(result.ExitCode).To(Equal(0), result.Combined)
	g.Expect(result.Stdout).To(Equal("Ok\n"))

	g.Expect(os.Remove(filepath.Join(env.Sandbox, "name3"))).To(Succeed())

	result = env.RunCLI("verify", "expected.yaml")
	g.Expect(result.ExitCode).To(Equal(1))
	g.Expect(result.Stdout).To(Equal("Cause: name3 is not a link\n"))
}

func TestVerifyAll(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	env := NewTestEnv(t)
	env.WriteFile("expected.yaml", Owned(threeLinksTree), 0644)

	g.Expect(os.MkdirAll(env.Sandbox, 0755)).To(Succeed())
	g.Expect(os.Symlink(filepath.Join(env.Dotfiles, "files", "name1"), filepath.Join(env.Sandbox, "name1"))).To(Succeed())

	result := env.RunCLI("verify", "--all", "expected.yaml")
	g.Expect(result.ExitCode).To(Equal(1))
	g.Expect(result.Stdout).To(Equal(
		"NotALink\tname2 is not a link\n" +
			"NotALink\tname3 is not a link\n"))
}

func TestVerifyBase(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	env := NewTestEnv(t)
	env.WriteFile("expected.yaml", Owned(`
files:
  permission: 755
  root_user: @user
  root_group: @group
  files:
    - {name: name1, permission: 644, root_user: @user, root_group: @group, content: 245cce40c561d804da49be78b39ce65f}
`), 0644)

	result := env.RunCLI("verify", "--base", env.Dotfiles, "expected.yaml")
	g.Expect(result.ExitCode).To(Equal(0), result.Combined)
}

func TestVerifyInvalidTree(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	env := NewTestEnv(t)
	env.WriteFile("expected.yaml", "\".\": {permission: 999}\n", 0644)

	result := env.RunCLI("verify", "expected.yaml")
	g.Expect(result.ExitCode).To(Equal(1))
	g.Expect(result.Stderr).To(ContainSubstring("Error:"))
}
