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

// Package config loads dotverify settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"dotverify/internal/artifacts"
	"dotverify/internal/common"
)

// DefaultSettingsFile is looked up in the working directory when neither a
// flag nor DOTVERIFY_SETTINGS names a settings file.
const DefaultSettingsFile = "dotverify.yaml"

// Settings is the suite-wide configuration. Everything a scenario does not
// choose itself lives here.
type Settings struct {
	Program     string   `yaml:"program"`
	ProgramArgs []string `yaml:"program_args"`
	ConfigFile  string   `yaml:"config_file"`
	SaveName    string   `yaml:"save_name"`
	WorkDir     string   `yaml:"work_dir"`
	SandboxRoot string   `yaml:"sandbox_root"`
	DataDir     string   `yaml:"data_dir"`
	Isolate     bool     `yaml:"isolate"`
	ScenarioDir string   `yaml:"scenario_dir"`
	LogLevel    string   `yaml:"log_level"` // trace, debug, info, warn, off
	Color       string   `yaml:"color"`     // auto, always, never
}

// SettingsPath picks the settings file: explicit flag value first, then
// DOTVERIFY_SETTINGS, then ./dotverify.yaml.
func SettingsPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("DOTVERIFY_SETTINGS"); env != "" {
		return env
	}
	return DefaultSettingsFile
}

// loadDefaultSettings parses default settings from embedded artifact.
func loadDefaultSettings() Settings {
	var s Settings
	if err := yaml.Unmarshal(artifacts.GlobalSettings, &s); err != nil {
		panic("failed to parse embedded settings: " + err.Error())
	}
	return s
}

// Defaults returns the embedded defaults with paths resolved against baseDir.
func Defaults(baseDir string) (*Settings, error) {
	s := loadDefaultSettings()
	if err := s.resolve(baseDir); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads settings from path. A missing file falls back to the embedded
// defaults only when required is false. Relative paths in the result are
// absolute, anchored at the directory containing path.
func Load(path string, required bool) (*Settings, error) {
	baseDir := filepath.Dir(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return Defaults(baseDir)
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	s, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := s.resolve(baseDir); err != nil {
		return nil, err
	}
	return s, nil
}

// Decode parses settings and fills every omitted field from the defaults.
func Decode(r io.Reader) (*Settings, error) {
	var s Settings
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ApplyDefaults fills zero-value fields with their defaults.
func (s *Settings) ApplyDefaults() {
	d := loadDefaultSettings()
	if s.Program == "" {
		s.Program = d.Program
	}
	if s.ProgramArgs == nil {
		s.ProgramArgs = d.ProgramArgs
	}
	if s.ConfigFile == "" {
		s.ConfigFile = d.ConfigFile
	}
	if s.SaveName == "" {
		s.SaveName = d.SaveName
	}
	if s.WorkDir == "" {
		s.WorkDir = d.WorkDir
	}
	if s.SandboxRoot == "" {
		s.SandboxRoot = d.SandboxRoot
	}
	if s.DataDir == "" {
		s.DataDir = d.DataDir
	}
	if s.ScenarioDir == "" {
		s.ScenarioDir = d.ScenarioDir
	}
	if s.LogLevel == "" {
		s.LogLevel = d.LogLevel
	}
	if s.Color == "" {
		s.Color = d.Color
	}
}

// Validate rejects values no component could work with.
func (s *Settings) Validate() error {
	switch strings.ToLower(s.LogLevel) {
	case "trace", "debug", "info", "warn", "off", "none":
	default:
		return fmt.Errorf("unknown log_level %q", s.LogLevel)
	}
	switch strings.ToLower(s.Color) {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("unknown color mode %q", s.Color)
	}
	if strings.ContainsRune(s.SaveName, filepath.Separator) {
		return fmt.Errorf("save_name %q must not contain a path separator", s.SaveName)
	}
	return nil
}

// InstalledFile returns the path of the installed-state side file.
func (s *Settings) InstalledFile() string {
	return filepath.Join(s.DataDir, "installed", s.SaveName+".json")
}

// resolve expands "~" and $VAR in every path setting and makes it absolute.
// The program is left alone when it is a bare name so that it is looked up
// on PATH.
func (s *Settings) resolve(baseDir string) error {
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve settings directory: %w", err)
	}
	home, _ := os.UserHomeDir()
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for _, p := range []*string{&s.Program, &s.WorkDir, &s.SandboxRoot, &s.DataDir, &s.ScenarioDir} {
		*p = common.ExpandPath(*p, home)
	}
	if strings.ContainsRune(s.Program, filepath.Separator) {
		s.Program = abs(s.Program)
	}
	s.WorkDir = abs(s.WorkDir)
	s.SandboxRoot = abs(s.SandboxRoot)
	s.DataDir = abs(s.DataDir)
	s.ScenarioDir = abs(s.ScenarioDir)
	return nil
}
