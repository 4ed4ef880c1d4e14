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

package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dotverify/internal/config"
	"dotverify/internal/util"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	settingsPath string
	logLevelFlag string
	noColor      bool

	// settings is loaded once per invocation by the root pre-run hook.
	settings *config.Settings
)

// SetVersion sets the version info for --version flag
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

// getVersionString returns the version string with build info
func getVersionString() string {
	buildDate := formatBuildDate(date)
	if strings.HasSuffix(version, "-dev") {
		return fmt.Sprintf("%s (%s, epoch: %s, commit: %s)", version, buildDate, date, commit)
	}
	return fmt.Sprintf("%s (%s)", version, buildDate)
}

// formatBuildDate converts epoch timestamp to readable date
func formatBuildDate(epoch string) string {
	ts, err := strconv.ParseInt(epoch, 10, 64)
	if err != nil {
		return epoch
	}
	return time.Unix(ts, 0).Format("2006-01-02")
}

var rootCmd = &cobra.Command{
	Use:   "dotverify",
	Short: "Regression harness for dotfile managers",
	Long: `Runs a dotfile manager against fixture profiles inside a sandbox and checks
the resulting directories, files and symlinks against expected trees.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		path := config.SettingsPath(settingsPath)
		required := settingsPath != "" || os.Getenv("DOTVERIFY_SETTINGS") != ""
		s, err := config.Load(path, required)
		if err != nil {
			return err
		}
		if logLevelFlag != "" {
			s.LogLevel = logLevelFlag
		}
		if noColor {
			s.Color = "never"
		}
		if err := s.Validate(); err != nil {
			return err
		}
		settings = s

		util.ConfigureLogging(s.LogLevel, os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("dotverify version {{.Version}}\n")
	rootCmd.Version = getVersionString()

	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Settings file (default $DOTVERIFY_SETTINGS or ./dotverify.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: trace, debug, info, warn, off")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
