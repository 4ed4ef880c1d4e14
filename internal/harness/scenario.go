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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"dotverify/internal/common"
	"dotverify/internal/tree"
)

// Scenario is one regression test: a profile run between two tree checks.
type Scenario struct {
	// Name uniquely identifies this scenario in reports.
	Name string `yaml:"name"`

	Description string `yaml:"description,omitempty"`

	// Profile selects the fixture profile the program under test executes.
	Profile string `yaml:"profile"`

	// Args are extra program arguments placed before the fixed ones.
	Args []string `yaml:"args,omitempty"`

	// Cleanup resets the sandbox before the pre-check. Defaults to true.
	Cleanup *bool `yaml:"cleanup,omitempty"`

	Before tree.DirTree `yaml:"before"`
	After  tree.DirTree `yaml:"after"`

	// Expect is the verdict this scenario should produce. Omitted means
	// success; a present block without success: true is a failure.
	Expect Expectation `yaml:"expect,omitempty"`

	// Source is the file the scenario was loaded from.
	Source string `yaml:"-"`
}

// Expectation is either {success: true} or a failure with an exact cause.
// Phase is informational; only Cause is compared.
type Expectation struct {
	Success bool   `yaml:"success,omitempty"`
	Phase   Phase  `yaml:"phase,omitempty"`
	Cause   string `yaml:"cause,omitempty"`
}

// ExpectsSuccess reports whether a successful verdict passes.
func (e Expectation) ExpectsSuccess() bool {
	return e.Success
}

// Resets reports whether the sandbox is reset before this scenario.
func (s *Scenario) Resets() bool {
	return s.Cleanup == nil || *s.Cleanup
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := DecodeScenario(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Source = path
	return s, nil
}

// DecodeScenario parses a single scenario document, rejecting unknown fields.
func DecodeScenario(r io.Reader) (*Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", common.ErrInvalidScenario)
		}
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", common.ErrInvalidScenario, err)
	}

	// Only a missing expect block means success; {success: false} must
	// still carry a cause.
	var declared struct {
		Expect *yaml.Node `yaml:"expect"`
	}
	if err := yaml.Unmarshal(data, &declared); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", common.ErrInvalidScenario, err)
	}
	if declared.Expect == nil {
		s.Expect.Success = true
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks required fields and both trees.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", common.ErrInvalidScenario)
	}
	if s.Profile == "" {
		return fmt.Errorf("%w: %s: profile is required", common.ErrInvalidScenario, s.Name)
	}
	if s.Expect.Success && (s.Expect.Cause != "" || s.Expect.Phase != "") {
		return fmt.Errorf("%w: %s: expect.success excludes phase and cause", common.ErrInvalidScenario, s.Name)
	}
	if !s.Expect.Success && s.Expect.Cause == "" {
		return fmt.Errorf("%w: %s: an expected failure needs a cause", common.ErrInvalidScenario, s.Name)
	}
	if s.Expect.Phase != "" && !s.Expect.Phase.Valid() {
		return fmt.Errorf("%w: %s: unknown phase %q", common.ErrInvalidScenario, s.Name, s.Expect.Phase)
	}
	if err := tree.Validate(s.Before); err != nil {
		return fmt.Errorf("%s: before: %w", s.Name, err)
	}
	if err := tree.Validate(s.After); err != nil {
		return fmt.Errorf("%s: after: %w", s.Name, err)
	}
	return nil
}

// LoadScenarios loads every file in order and rejects duplicate names.
func LoadScenarios(paths []string) ([]*Scenario, error) {
	seen := make(map[string]string, len(paths))
	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate name %q in %s and %s",
				common.ErrInvalidScenario, s.Name, filepath.Base(prev), filepath.Base(p))
		}
		seen[s.Name] = p
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
