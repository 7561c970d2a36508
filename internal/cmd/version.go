/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const showCommitFlagName = "show-commit"

var (
	// VERSION may be overridden by the linker.
	VERSION = "dev"
	// COMMIT may be overridden by the linker.
	COMMIT = "unknown"
)

func newVersionCmd() *cobra.Command {
	var showCommit bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: fmt.Sprintf("Print the %s version", CLIName),
		Example: fmt.Sprintf(`  # Print the simple version
  %[1]s version
  # Print the version and the git commit hash
  %[1]s version --show-commit`, CLIName),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showCommit {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", VERSION, COMMIT)
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), VERSION)
			return err
		},
	}
	cmd.Flags().BoolVar(&showCommit, showCommitFlagName, false, "Show the git commit hash the binary was built from.")
	return cmd
}
