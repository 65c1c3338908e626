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
	"os"

	"github.com/rabbitstack/toolhelp/cmd/toolhelp/common"
	"github.com/rabbitstack/toolhelp/pkg/config"
	"github.com/rabbitstack/toolhelp/pkg/outputs/console"
	"github.com/rabbitstack/toolhelp/pkg/ps"
	"github.com/rabbitstack/toolhelp/pkg/toolhelp"
	"github.com/spf13/cobra"
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List the processes running in the system",
	RunE:  listProcesses,
}

var (
	psConfig = config.NewWithOpts(config.WithList())
	psTree   bool
)

var processColumns = []console.Column[toolhelp.ProcessEntry]{
	{Name: "PID", Value: func(p toolhelp.ProcessEntry) any { return p.ProcessID }, Align: true},
	{Name: "PPID", Value: func(p toolhelp.ProcessEntry) any { return p.ParentProcessID }, Align: true},
	{Name: "Threads", Value: func(p toolhelp.ProcessEntry) any { return p.Threads }, Align: true},
	{Name: "Priority", Value: func(p toolhelp.ProcessEntry) any { return p.PriClassBase }, Align: true},
	{Name: "Name", Value: func(p toolhelp.ProcessEntry) any { return p.ExeFile }},
}

func init() {
	psConfig.MustViperize(psCmd)
	psCmd.Flags().BoolVar(&psTree, "tree", false, "Renders the process hierarchy instead of the flat listing")
}

func listProcesses(cmd *cobra.Command, args []string) error {
	if err := common.Init(psConfig); err != nil {
		return err
	}
	snap, err := toolhelp.NewProcessSnapshot()
	if err != nil {
		return err
	}
	procs, err := snap.Collect()
	if psTree {
		ps.BuildTree(procs).Render(os.Stdout)
		return err
	}
	if rerr := console.Render(os.Stdout, psConfig.Output, processColumns, procs); rerr != nil {
		return rerr
	}
	return err
}
