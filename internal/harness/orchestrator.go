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

// Package harness drives the program under test through regression
// scenarios: reset the sandbox, check the tree before, run the program,
// check the tree after.
package harness

import (
	"fmt"

	"github.com/google/uuid"
	logrus "github.com/sirupsen/logrus"

	"dotverify/internal/tree"
	"dotverify/internal/util"
	"dotverify/internal/verify"
)

// Phase names the step a scenario failed in.
type Phase string

const (
	PhasePre  Phase = "pre"
	PhaseRun  Phase = "run"
	PhasePost Phase = "post"
)

// Valid reports whether p is one of the three phases.
func (p Phase) Valid() bool {
	return p == PhasePre || p == PhaseRun || p == PhasePost
}

// State is a step of the orchestrator state machine.
type State int

const (
	Idle State = iota
	PreCheck
	Running
	PostCheck
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PreCheck:
		return "pre-check"
	case Running:
		return "running"
	case PostCheck:
		return "post-check"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Verdict is the outcome of one scenario run. Success verdicts carry no
// Phase and no Cause.
type Verdict struct {
	Scenario string
	RunID    string

	Success bool
	Phase   Phase
	Cause   string

	// Failure is set for pre and post mismatches.
	Failure *verify.Failure

	// ExitCode and Stderr are set once the program has run.
	ExitCode int
	Stderr   string

	// States lists every state visited, ending in Done.
	States []State
}

func (v *Verdict) enter(s State) {
	v.States = append(v.States, s)
}

func (v *Verdict) fail(phase Phase, cause string) {
	v.Success = false
	v.Phase = phase
	v.Cause = cause
	v.enter(Done)
}

// Checker verifies a tree against the sandbox.
type Checker interface {
	Verify(t tree.DirTree) error
}

// Runner launches the program under test and waits for it.
type Runner interface {
	Run(spec util.ProcessSpec) (*util.ProcessResult, error)
}

// Resetter empties the sandbox.
type Resetter interface {
	Reset() error
}

// Orchestrator runs scenarios. It keeps nothing between Start calls.
type Orchestrator struct {
	Invocation Invocation
	Checker    Checker
	Runner     Runner
	Resetter   Resetter
}

// Start runs s from Idle to Done. Mismatches and non-zero exits are part of
// the returned verdict; an error means the run could not be judged at all
// (the sandbox could not be read or reset, or the program failed to start).
func (o *Orchestrator) Start(s *Scenario) (*Verdict, error) {
	v := &Verdict{Scenario: s.Name, RunID: uuid.NewString(), States: []State{Idle}}
	log := logrus.WithFields(logrus.Fields{"scenario": s.Name, "run_id": v.RunID})

	if s.Resets() {
		if o.Resetter == nil {
			return nil, fmt.Errorf("%s: reset requested but no resetter is configured", s.Name)
		}
		log.Debug("harness: reset")
		if err := o.Resetter.Reset(); err != nil {
			return nil, fmt.Errorf("%s: reset: %w", s.Name, err)
		}
	}

	v.enter(PreCheck)
	if ok, err := o.check(v, PhasePre, s.Before, log); !ok || err != nil {
		return verdictOrNil(v, err)
	}

	v.enter(Running)
	spec := o.Invocation.Spec(s)
	log.WithField("args", spec.Args).Debug("harness: run")
	result, err := o.Runner.Run(spec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	v.ExitCode = result.ExitCode
	v.Stderr = result.Stderr
	if !result.Success() {
		log.WithFields(logrus.Fields{"phase": PhaseRun, "exit_code": result.ExitCode}).Info("harness: program failed")
		v.fail(PhaseRun, fmt.Sprintf("exit status %d", result.ExitCode))
		return v, nil
	}

	v.enter(PostCheck)
	if ok, err := o.check(v, PhasePost, s.After, log); !ok || err != nil {
		return verdictOrNil(v, err)
	}

	v.Success = true
	v.enter(Done)
	log.Debug("harness: passed")
	return v, nil
}

// check verifies t and records a mismatch on v. It returns false when the
// machine has to stop.
func (o *Orchestrator) check(v *Verdict, phase Phase, t tree.DirTree, log *logrus.Entry) (bool, error) {
	err := o.Checker.Verify(t)
	if err == nil {
		return true, nil
	}
	f, ok := verify.AsFailure(err)
	if !ok {
		return false, fmt.Errorf("%s: %s-check: %w", v.Scenario, phase, err)
	}
	log.WithFields(logrus.Fields{"phase": phase, "kind": f.Kind}).Info("harness: check failed")
	v.Failure = f
	v.fail(phase, f.Error())
	return false, nil
}

func verdictOrNil(v *Verdict, err error) (*Verdict, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}
