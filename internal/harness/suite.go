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
	"errors"
	"io"

	logrus "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"dotverify/internal/config"
	"dotverify/internal/sandbox"
	"dotverify/internal/verify"
)

// Result pairs a scenario with its verdict.
type Result struct {
	Scenario *Scenario
	Verdict  *Verdict
}

// Suite runs scenarios one after another. Scenarios share the sandbox root
// and the installed file, so nothing runs in parallel and the sandbox lock
// is held for the whole run.
type Suite struct {
	Invocation    Invocation
	SandboxRoot   string
	InstalledFile string

	// Isolate gives each scenario its own temporary sandbox root.
	Isolate bool

	// TempDir is the parent of isolated sandboxes, os.TempDir when empty.
	TempDir string

	Runner Runner
}

// NewSuite builds a suite from settings. out receives the child's output.
func NewSuite(s *config.Settings, out io.Writer) *Suite {
	return &Suite{
		Invocation: Invocation{
			Program:    s.Program,
			Args:       s.ProgramArgs,
			ConfigFile: s.ConfigFile,
			SaveName:   s.SaveName,
			Dir:        s.WorkDir,
			Stdout:     out,
			Stderr:     out,
		},
		SandboxRoot:   s.SandboxRoot,
		InstalledFile: s.InstalledFile(),
		Isolate:       s.Isolate,
		Runner:        ProcessRunner{},
	}
}

// Run executes scenarios in order, calling emit after each verdict. It
// stops at the first error that prevents a verdict and returns the results
// gathered so far.
func (s *Suite) Run(scenarios []*Scenario, emit func(Result)) ([]Result, error) {
	if unix.Geteuid() == 0 {
		logrus.Warn("harness: running as root, ownership checks see every new entry as root-owned")
	}

	if s.Isolate {
		return s.runIsolated(scenarios, emit)
	}

	sb := sandbox.New(s.SandboxRoot, s.InstalledFile)
	if err := sb.Lock(); err != nil {
		return nil, err
	}
	defer sb.Unlock()

	results := make([]Result, 0, len(scenarios))
	for _, sc := range scenarios {
		r, err := s.runOne(sb, sc)
		if err != nil {
			return results, err
		}
		results = append(results, r)
		if emit != nil {
			emit(r)
		}
	}
	return results, nil
}

func (s *Suite) runIsolated(scenarios []*Scenario, emit func(Result)) ([]Result, error) {
	results := make([]Result, 0, len(scenarios))
	for _, sc := range scenarios {
		sb, err := sandbox.NewTemp(s.TempDir, s.InstalledFile)
		if err != nil {
			return results, err
		}
		if err := sb.Lock(); err != nil {
			return results, errors.Join(err, sb.Cleanup())
		}
		r, err := s.runOne(sb, sc)
		if cerr := sb.Cleanup(); cerr != nil {
			logrus.WithError(cerr).WithField("root", sb.Root).Warn("harness: failed to remove temporary sandbox")
		}
		if err != nil {
			return results, err
		}
		results = append(results, r)
		if emit != nil {
			emit(r)
		}
	}
	return results, nil
}

// runOne wires an orchestrator to sb for a single scenario.
func (s *Suite) runOne(sb *sandbox.Sandbox, sc *Scenario) (Result, error) {
	checker := verify.New(sb.Root)
	checker.Vars = map[string]string{sandbox.EnvVar: sb.Root}

	inv := s.Invocation
	inv.Env = append(append([]string{}, inv.Env...), sb.Env()...)

	runner := s.Runner
	if runner == nil {
		runner = ProcessRunner{}
	}

	o := &Orchestrator{
		Invocation: inv,
		Checker:    checker,
		Runner:     runner,
		Resetter:   sb,
	}
	v, err := o.Start(sc)
	if err != nil {
		return Result{}, err
	}
	return Result{Scenario: sc, Verdict: v}, nil
}
