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

const emptySandbox = `
before:
  ".": {permission: 755, root_user: @user, root_group: @group}
`

const noOptionsScenario = `
name: NoOptions
description: three links in the sandbox root
profile: NoOptions
` + emptySandbox + `
after:
  ".":
    permission: 755
    root_user: @user
    root_group: @group
    links:
      - {name: name1, target: ../dotfiles/files/name1, permission: 644, root_user: @user, root_group: @group}
      - {name: name2, target: ./sub/../../dotfiles/files/name2, permission: 644, root_user: @user, root_group: @group}
      - {name: name3, target: $DOTFILES/files/name3, permission: 644, root_user: @user, root_group: @group}
`

const dirOptionScenario = `
name: DirOption
description: a link inside a directory that does not exist yet
profile: DirOption
` + emptySandbox + `
after:
  ".":
    permission: 755
    root_user: @user
    root_group: @group
    links:
      - {name: name1, target: $DOTFILES/files/name1, permission: 644, root_user: @user, root_group: @group}
  subdir:
    permission: 755
    root_user: @user
    root_group: @group
    links:
      - {name: name2, target: $DOTFILES/files/name2, permission: 644, root_user: @user, root_group: @group}
`

func TestRunNoOptions(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	env := NewTestEnv(t)
	env.WriteScenario("no_options", noOptionsScenario)

	result := env.RunCLI("run")
	g.Expect(result.ExitCode).To(Equal(0), result.Combined)
	g.Expect(result.Stdout).To(ContainSubstring("NoOptions: Ok"))
	g.Expect(result.Stdout).To(ContainSubstring("1 passed, 0 failed"))

	g.Expect(env.SandboxEntries()).To(ConsistOf("name1", "name2", "name3"))
	g.Expect(env.InstalledFile()).To(BeAnExistingFile())
}

func TestRunSubdirectory(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	env := NewTestEnv(t)
	env.WriteScenario("dir_option", dirOptionScenario)

	result := env.RunCLI("run", filepath.Join("scenarios", "dir_option.yaml"))
	g.Expect(result.ExitCode).To(Equal(0), result.Combined)
	g.Expect(result.Stdout).To(ContainSubstring("DirOption: Ok"))

	info, err := os.Stat(filepath.Join(env.Sandbox, "subdir"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(info.IsDir()).To(BeTrue())
}

func TestRunPhaseTagging(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	env := NewTestEnv(t)

	// Sorted by file name, which is the run order.
	env.WriteScenario("1_pre", `
name: PreCheck
profile: NoOptions
before:
  ".":
    permission: 755
    root_user: @user
    root_group: @group
    links:
      - {name: ghost, target: nowhere, permission: 644, root_user: @user, root_group: @group}
expect: {phase: pre, cause: ghost is not a link}
`)
	env.WriteScenario("2_run", `
name: RunFailure
profile: Fail
expect: {phase: run, cause: exit status 3}
`)
	env.WriteScenario("3_post", `
name: PostCheck
profile: NoOptions
after:
  ".":
    permission: 755
    root_user: @user
    root_group: @group
    links:
      - {name: name4, target: $DOTFILES/files/name4, permission: 644, root_user: @user, root_group: @group}
expect: {phase: post, cause: name4 is not a link}
`)

	result := env.RunCLI("run")
	g.Expect(result.ExitCode).To(Equal(0), result.Combined)
	g.Expect(result.Stdout).To(ContainSubstring("PreCheck: Ok"))
	g.Expect(result.Stdout).To(ContainSubstring("RunFailure: Ok"))
	g.Expect(result.Stdout).To(ContainSubstring("PostCheck: Ok"))
	g.Expect(result.Stdout).To(ContainSubstring("3 passed, 0 failed"))
}

func TestRunReportsUnexpectedOutcomes(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	env := NewTestEnv(t)

	env.WriteScenario("a_missing_link", `
name: MissingLink
profile: NoOptions
after:
  ".":
    permission: 755
    root_user: @user
    root_group: @group
    links:
      - {name: name4, target: $DOTFILES/files/name4, permission: 644, root_user: @user, root_group: @group}
`)
	env.WriteScenario("b_wrong_error", `
name: WrongError
profile: Fail
expect: {phase: run, cause: exit status 1}
`)
	env.WriteScenario("c_not_raised", `
name: NotRaised
profile: NoOptions
expect: {cause: exit status 3}
`)

	result := env.RunCLI("run", "--verbose")
	g.Expect(result.ExitCode).To(Equal(1))
	g.Expect(result.Stdout).To(ContainSubstring("MissingLink: FAILED in post\nCause: name4 is not a link"))
	g.Expect(result.Stdout).To(ContainSubstring("WrongError: FAILED! wrong error raised"))
	g.Expect(result.Stdout).To(ContainSubstring("Cause: exit status 3 (in run)"))
	g.Expect(result.Stdout).To(ContainSubstring("simulated failure"))
	g.Expect(result.Stdout).To(ContainSubstring("NotRaised: FAILED! expected error not raised"))
	g.Expect(result.Stdout).To(ContainSubstring("0 passed, 3 failed"))
	g.Expect(result.Stderr).To(ContainSubstring("scenarios failed"))
}

func TestRunWithoutCleanupKeepsLeftovers(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	env := NewTestEnv(t)
	env.WriteScenario("1_first", noOptionsScenario)
	env.WriteScenario("2_again", `
name: Again
profile: NoOptions
cleanup: false
expect: {phase: run, cause: exit status 4}
`)

	result := env.RunCLI("run")
	g.Expect(result.ExitCode).To(Equal(0), result.Combined)
	g.Expect(result.Stdout).To(ContainSubstring("Again: Ok"))
}

func TestRunIsolated(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	env := NewTestEnv(t)
	env.WriteScenario("dir_option", dirOptionScenario)

	result := env.RunCLI("run", "--isolate")
	g.Expect(result.ExitCode).To(Equal(0), result.Combined)
	g.Expect(result.Stdout).To(ContainSubstring("DirOption: Ok"))
	g.Expect(env.SandboxEntries()).To(BeNil(), "the shared sandbox is not used")
}

func TestRunIgnoreFile(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	env := NewTestEnv(t)
	env.WriteScenario("no_options", noOptionsScenario)
	env.WriteFile(filepath.Join("scenarios", "drafts", "broken.yaml"), "not: [a scenario\n", 0644)
	env.WriteFile(filepath.Join("scenarios", ".dotverifyignore"), "drafts/\n", 0644)

	result := env.RunCLI("run")
	g.Expect(result.ExitCode).To(Equal(0), result.Combined)
	g.Expect(result.Stdout).To(ContainSubstring("1 passed, 0 failed"))
}

func TestRunRejectsInvalidScenario(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	env := NewTestEnv(t)
	env.WriteScenario("typo", "name: Typo\nprofile: NoOptions\nafterwards: {}\n")

	result := env.RunCLI("run")
	g.Expect(result.ExitCode).To(Equal(1))
	g.Expect(result.Stderr).To(ContainSubstring("invalid scenario"))
	g.Expect(env.SandboxEntries()).To(BeNil(), "nothing runs when a scenario is invalid")
}

func TestRunMissingProgram(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	env := NewTestEnv(t)
	env.WriteScenario("no_options", noOptionsScenario)
	g.Expect(os.Remove(filepath.Join(env.Dir, "dotmanager.sh"))).To(Succeed())

	result := env.RunCLI("run")
	g.Expect(result.ExitCode).To(Equal(1))
	g.Expect(result.Stderr).To(ContainSubstring("program under test not runnable"))
}
