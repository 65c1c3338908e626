/*
 * Copyright 2021-2022 by Nedim Sabic Sabic
 * https://www.fibratus.io
 * All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package app

import (
	"errors"
	"runtime"

	"github.com/spf13/cobra"
)

// RootCmd is the entrance to the toolhelp CLI
var RootCmd = &cobra.Command{
	Use:   "toolhelp",
	Short: "Inspect processes, threads, modules and heaps through ToolHelp32 snapshots",
	Long: `
	toolhelp takes point-in-time snapshots of the system state through the
	ToolHelp32 API and renders the enumerated processes, threads, modules
	and heaps as tables, JSON, YAML or custom templates.
	`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if runtime.GOOS != "windows" && cmd.Name() != versionCmd.Name() {
			return errors.New("toolhelp can only be run on Windows operating systems")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(psCmd)
	RootCmd.AddCommand(threadsCmd)
	RootCmd.AddCommand(modulesCmd)
	RootCmd.AddCommand(heapsCmd)
	RootCmd.AddCommand(readCmd)
	RootCmd.AddCommand(configCmd)
	RootCmd.AddCommand(versionCmd)
}
