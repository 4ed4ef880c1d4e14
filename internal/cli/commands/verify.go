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

	"github.com/spf13/cobra"

	"dotverify/internal/sandbox"
	"dotverify/internal/tree"
	"dotverify/internal/verify"
)

var (
	verifyBase string
	verifyAll  bool
)

var errTreeMismatch = errors.New("tree does not match")

var verifyCmd = &cobra.Command{
	Use:   "verify <tree.yaml>",
	Short: "Check a directory tree description against the filesystem",
	Long: `Check one DirTree file against the filesystem without running anything.

Relative tree keys are resolved against --base, which defaults to the sandbox
root. By default the first mismatch is reported; --all lists every mismatch.

Examples:
  dotverify verify expected.yaml
  dotverify verify --base ~/dotfiles-test --all expected.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyBase, "base", "", "Directory relative tree keys are resolved against (default sandbox_root)")
	verifyCmd.Flags().BoolVar(&verifyAll, "all", false, "Report every mismatch instead of the first")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	t, err := tree.Load(args[0])
	if err != nil {
		return err
	}

	base := verifyBase
	if base == "" {
		base = settings.SandboxRoot
	}
	v := verify.New(base)
	v.Vars = map[string]string{sandbox.EnvVar: base}

	out := cmd.OutOrStdout()
	if !verifyAll {
		if err := v.Verify(t); err != nil {
			if _, ok := verify.AsFailure(err); ok {
				fmt.Fprintf(out, "Cause: %s\n", err)
				return errTreeMismatch
			}
			return err
		}
		fmt.Fprintln(out, "Ok")
		return nil
	}

	failures, err := v.VerifyAll(t)
	if err != nil {
		return err
	}
	if len(failures) == 0 {
		fmt.Fprintln(out, "Ok")
		return nil
	}
	for _, f := range failures {
		fmt.Fprintf(out, "%s\t%s\n", f.Kind, f)
	}
	return fmt.Errorf("%w: %d mismatches", errTreeMismatch, len(failures))
}
