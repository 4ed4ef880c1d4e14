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
	"io"

	"dotverify/internal/util"
)

// Invocation is the fixed way the program under test is called:
//
//	Program Args... ScenarioArgs... --config ConfigFile --save SaveName Profile
type Invocation struct {
	Program    string
	Args       []string
	ConfigFile string
	SaveName   string

	// Dir is the working directory of the child.
	Dir string

	// Env is appended to the parent environment.
	Env []string

	// Stdout and Stderr receive a live copy of the child's output.
	Stdout io.Writer
	Stderr io.Writer
}

// Argv returns the arguments for one scenario, without the program name.
func (inv Invocation) Argv(s *Scenario) []string {
	argv := make([]string, 0, len(inv.Args)+len(s.Args)+5)
	argv = append(argv, inv.Args...)
	argv = append(argv, s.Args...)
	argv = append(argv, "--config", inv.ConfigFile, "--save", inv.SaveName, s.Profile)
	return argv
}

// Spec builds the process description for one scenario.
func (inv Invocation) Spec(s *Scenario) util.ProcessSpec {
	return util.ProcessSpec{
		Executable: inv.Program,
		Args:       inv.Argv(s),
		Dir:        inv.Dir,
		Env:        inv.Env,
		Stdout:     inv.Stdout,
		Stderr:     inv.Stderr,
	}
}

// ProcessRunner runs children on the host with util.RunProcess.
type ProcessRunner struct{}

// Run implements Runner.
func (ProcessRunner) Run(spec util.ProcessSpec) (*util.ProcessResult, error) {
	return util.RunProcess(spec)
}
