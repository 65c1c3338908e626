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
	"github.com/rabbitstack/toolhelp/pkg/toolhelp"
	"github.com/spf13/cobra"
)

var threadsCmd = &cobra.Command{
	Use:   "threads [pid]",
	Short: "List the threads executing in the system",
	Long: `Lists the threads executing in the system.

The thread table is always taken system-wide. When a process identifier is
given, the listing keeps only the threads owned by that process, after the
whole table was enumerated.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  listThreads,
}

var threadsConfig = config.NewWithOpts(config.WithList())

var threadColumns = []console.Column[toolhelp.ThreadEntry]{
	{Name: "TID", Value: func(t toolhelp.ThreadEntry) any { return t.ThreadID }, Align: true},
	{Name: "PID", Value: func(t toolhelp.ThreadEntry) any { return t.OwnerProcessID }, Align: true},
	{Name: "Priority", Value: func(t toolhelp.ThreadEntry) any { return t.BasePri }, Align: true},
}

func init() {
	threadsConfig.MustViperize(threadsCmd)
}

func listThreads(cmd *cobra.Command, args []string) error {
	pid, err := parsePID(args)
	if err != nil {
		return err
	}
	if err := common.Init(threadsConfig); err != nil {
		return err
	}
	snap, err := toolhelp.NewThreadSnapshot()
	if err != nil {
		return err
	}
	threads, err := ownedThreads(snap, pid, len(args) > 0)
	if err != nil {
		return err
	}
	return console.Render(os.Stdout, threadsConfig.Output, threadColumns, threads)
}

// ownedThreads drains the thread snapshot. When filter is set, only the
// threads owned by pid are kept. The snapshot itself is not scoped to pid.
func ownedThreads(snap *toolhelp.Snapshot[toolhelp.ThreadEntry], pid uint32, filter bool) ([]toolhelp.ThreadEntry, error) {
	threads := make([]toolhelp.ThreadEntry, 0)
	for thread := range snap.All() {
		if filter && thread.OwnerProcessID != pid {
			continue
		}
		threads = append(threads, thread)
	}
	return threads, snap.Err()
}
