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

// Package report judges verdicts against what a scenario expected and
// prints the results.
package report

import "dotverify/internal/harness"

// Messages for expected-failure scenarios that did not fail as expected.
const (
	NotRaised  = "expected error not raised"
	WrongError = "wrong error raised"
)

// Outcome is a judged verdict.
type Outcome struct {
	Name   string
	Passed bool

	// Message is NotRaised or WrongError when an expected failure went
	// wrong, empty otherwise.
	Message string

	Expected harness.Expectation
	Verdict  *harness.Verdict
}

// ExpectSuccess passes iff the scenario succeeded.
func ExpectSuccess(name string, v *harness.Verdict) Outcome {
	return Outcome{
		Name:     name,
		Passed:   v.Success,
		Expected: harness.Expectation{Success: true},
		Verdict:  v,
	}
}

// ExpectFailure passes iff the scenario failed with exactly the expected
// cause. The phase is not compared.
func ExpectFailure(name string, v *harness.Verdict, want harness.Expectation) Outcome {
	o := Outcome{Name: name, Expected: want, Verdict: v}
	switch {
	case v.Success:
		o.Message = NotRaised
	case v.Cause != want.Cause:
		o.Message = WrongError
	default:
		o.Passed = true
	}
	return o
}

// Judge dispatches on the expectation.
func Judge(name string, v *harness.Verdict, want harness.Expectation) Outcome {
	if want.ExpectsSuccess() {
		return ExpectSuccess(name, v)
	}
	return ExpectFailure(name, v, want)
}

// Summary counts outcomes.
type Summary struct {
	Passed int
	Failed int
}

// Summarize tallies outcomes.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		if o.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// OK reports whether nothing failed.
func (s Summary) OK() bool {
	return s.Failed == 0
}
