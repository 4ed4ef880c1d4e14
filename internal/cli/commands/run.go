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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"dotverify/internal/harness"
	"dotverify/internal/report"
)

var (
	runIsolate    bool
	runShowOutput bool
	runVerbose    bool
)

// errScenariosFailed is returned when at least one scenario did not pass.
var errScenariosFailed = errors.New("scenarios failed")

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Run regression scenarios",
	Long: `Run scenario files in order against the program under test.

Each path is a scenario file or a directory searched recursively for *.yaml and
*.yml files; a .dotverifyignore file hides matching paths. Without arguments
the scenario_dir from the settings is used.

Scenarios share the sandbox and run one at a time. With --isolate each one gets
a fresh temporary sandbox instead.

Examples:
  dotverify run
  dotverify run scenarios/options
  dotverify run --isolate scenarios/no_options.yaml`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runIsolate, "isolate", false, "Run each scenario in its own temporary sandbox")
	runCmd.Flags().BoolVar(&runShowOutput, "show-output", false, "Forward the program's output to stderr")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print the program's stderr for failed runs")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = []string{settings.ScenarioDir}
	}

	files, err := harness.Discover(paths...)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no scenarios found in %v", paths)
	}
	scenarios, err := harness.LoadScenarios(files)
	if err != nil {
		return err
	}

	var childOut io.Writer
	if runShowOutput {
		childOut = os.Stderr
	}
	suite := harness.NewSuite(settings, childOut)
	if runIsolate {
		suite.Isolate = true
	}

	printer := report.NewPrinter(cmd.OutOrStdout(), settings.Color)
	printer.Verbose = runVerbose

	_, runErr := suite.Run(scenarios, func(r harness.Result) {
		printer.Print(report.Judge(r.Scenario.Name, r.Verdict, r.Scenario.Expect))
	})
	summary := printer.Summary()
	if runErr != nil {
		return runErr
	}
	if !summary.OK() {
		return fmt.Errorf("%w: %d of %d", errScenariosFailed, summary.Failed, summary.Passed+summary.Failed)
	}
	return nil
}
