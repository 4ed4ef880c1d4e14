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

	"github.com/spf13/cobra"

	"dotverify/internal/sandbox"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Empty the sandbox and remove the installed-state file",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	sb := sandbox.New(settings.SandboxRoot, settings.InstalledFile())
	if err := sb.Lock(); err != nil {
		return err
	}
	defer sb.Unlock()

	if err := sb.Reset(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reset %s\n", sb.Root)
	return nil
}
