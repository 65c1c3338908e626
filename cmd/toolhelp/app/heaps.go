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
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/rabbitstack/toolhelp/cmd/toolhelp/common"
	"github.com/rabbitstack/toolhelp/pkg/config"
	"github.com/rabbitstack/toolhelp/pkg/outputs/console"
	"github.com/rabbitstack/toolhelp/pkg/toolhelp"
	"github.com/rabbitstack/toolhelp/pkg/util/spinner"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var heapsCmd = &cobra.Command{
	Use:   "heaps [pid]",
	Short: "List the heaps of a process. Defaults to the current process",
	Args:  cobra.MaximumNArgs(1),
	RunE:  listHeaps,
}

var (
	heapsConfig = config.NewWithOpts(config.WithHeaps())
	heapsWalk   bool
)

// heap is the heap list entry with the block statistics gathered by the walk.
type heap struct {
	toolhelp.HeapList `yaml:",inline"`
	Blocks            int    `json:"blocks,omitempty" yaml:"blocks,omitempty"`
	Used              uint64 `json:"used,omitempty" yaml:"used,omitempty"`
	Free              uint64 `json:"free,omitempty" yaml:"free,omitempty"`
	Truncated         bool   `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

func heapColumns(human, walk bool) []console.Column[heap] {
	cols := []console.Column[heap]{
		{Name: "Heap", Value: func(h heap) any { return hexAddr(uint64(h.HeapID)) }, Align: true},
		{Name: "Default", Value: func(h heap) any { return h.IsDefault() }},
	}
	if !walk {
		return cols
	}
	return append(cols,
		console.Column[heap]{Name: "Blocks", Value: func(h heap) any {
			if h.Truncated {
				return fmt.Sprintf("%s+", humanize.Comma(int64(h.Blocks)))
			}
			return humanize.Comma(int64(h.Blocks))
		}, Align: true},
		console.Column[heap]{Name: "Used", Value: func(h heap) any { return humanSize(h.Used, human) }, Align: true},
		console.Column[heap]{Name: "Free", Value: func(h heap) any { return humanSize(h.Free, human) }, Align: true},
	)
}

func init() {
	heapsConfig.MustViperize(heapsCmd)
	heapsCmd.Flags().BoolVar(&heapsWalk, "walk", false, "Walks the blocks of every heap to gather usage statistics")
}

// walkHeap accumulates the block statistics of the heap. At most limit
// blocks are visited if limit is positive.
func walkHeap(h *heap, limit int, progress func(int), opts ...toolhelp.Option) error {
	walk, err := toolhelp.Walk(h.HeapList, opts...)
	if err != nil {
		return err
	}
	for block := range walk.All() {
		if limit > 0 && h.Blocks == limit {
			h.Truncated = true
			break
		}
		h.Blocks++
		if block.IsFree() {
			h.Free += uint64(block.BlockSize)
		} else {
			h.Used += uint64(block.BlockSize)
		}
		if progress != nil && h.Blocks%1024 == 0 {
			progress(h.Blocks)
		}
	}
	return walk.Err()
}

func listHeaps(cmd *cobra.Command, args []string) error {
	pid, err := parsePID(args)
	if err != nil {
		return err
	}
	if err := common.Init(heapsConfig); err != nil {
		return err
	}
	snap, err := toolhelp.NewHeapListSnapshot(pid)
	if err != nil {
		return err
	}
	lists, err := snap.Collect()
	if err != nil {
		return err
	}

	heaps := make([]heap, len(lists))
	for i, list := range lists {
		heaps[i] = heap{HeapList: list}
	}

	if heapsWalk {
		var progress func(int)
		if heapsConfig.Heap.Spinner {
			s := spinner.Show(os.Stderr, "walking heaps")
			defer s.Stop()
			progress = func(n int) { spinner.Update(s, humanize.Comma(int64(n))+" blocks") }
		}
		for i := range heaps {
			if err := walkHeap(&heaps[i], heapsConfig.Heap.MaxBlocks, progress); err != nil {
				log.Warnf("unable to walk heap 0x%x: %v", heaps[i].HeapID, err)
			}
		}
	}

	if pid == 0 {
		pid = uint32(os.Getpid())
	}
	summarize(snap.Kind(), len(heaps), pid)
	return console.Render(os.Stdout, heapsConfig.Output, heapColumns(heapsConfig.Output.Humanize, heapsWalk), heaps)
}
