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

package toolhelp

import (
	"expvar"
	"iter"

	kerrors "github.com/rabbitstack/toolhelp/pkg/errors"
)

var heapWalkFailures = expvar.NewInt("heap.walk.failures")

// heapKind names heap walks in errors
const heapKind = "heap"

// HeapWalk enumerates the blocks of one heap. It follows the same protocol
// as Snapshot, but doesn't hold any handle.
type HeapWalk struct {
	host Host
	list HeapList
	lc   *lifecycle

	first HeapEntry
	entry HeapEntry
	err   error
}

// Walk starts enumerating the blocks of the heap described by the heap list entry.
// Walking the heap of a process with a large number of allocations may take a
// considerable amount of time.
func Walk(list HeapList, opts ...Option) (*HeapWalk, error) {
	o := newOpts(opts...)
	w := &HeapWalk{host: o.host, list: list}

	first, err := o.host.HeapFirst(list.ProcessID, list.HeapID)
	switch {
	case err == nil:
		w.first = first
		w.lc = newLifecycle(stateBuffered)
	case kerrors.IsNoMoreEntries(err):
		w.lc = newLifecycle(stateExhausted)
		w.lc.fire(triggerRelease)
	default:
		heapWalkFailures.Add(1)
		return nil, &kerrors.SnapshotError{Op: kerrors.OpFirst, Kind: heapKind, PID: list.ProcessID, Err: err}
	}

	return w, nil
}

// Next advances the walk to the next heap block.
func (w *HeapWalk) Next() bool {
	switch w.lc.state() {
	case stateBuffered:
		w.lc.fire(triggerAdvance)
		w.entry, w.first = w.first, HeapEntry{}
		return true
	case stateActive:
		entry, err := w.host.HeapNext(w.entry)
		if err != nil {
			if !kerrors.IsNoMoreEntries(err) {
				heapWalkFailures.Add(1)
				w.err = &kerrors.SnapshotError{Op: kerrors.OpNext, Kind: heapKind, PID: w.list.ProcessID, Err: err}
			}
			w.entry = HeapEntry{}
			w.lc.fire(triggerExhaust)
			w.lc.fire(triggerRelease)
			return false
		}
		w.entry = entry
		return true
	default:
		w.entry = HeapEntry{}
		return false
	}
}

// Entry returns the current heap block.
func (w *HeapWalk) Entry() HeapEntry { return w.entry }

// Err returns the error that terminated the walk.
func (w *HeapWalk) Err() error { return w.err }

// All returns the lazy sequence of the remaining heap blocks.
func (w *HeapWalk) All() iter.Seq[HeapEntry] {
	return func(yield func(HeapEntry) bool) {
		defer w.Close()
		for w.Next() {
			if !yield(w.Entry()) {
				return
			}
		}
	}
}

// Collect drains the walk and returns all remaining heap blocks.
func (w *HeapWalk) Collect() ([]HeapEntry, error) {
	entries := make([]HeapEntry, 0)
	for entry := range w.All() {
		entries = append(entries, entry)
	}
	return entries, w.Err()
}

// Close stops the walk.
func (w *HeapWalk) Close() error {
	w.lc.fire(triggerRelease)
	return nil
}

// List returns the heap list entry this walk enumerates.
func (w *HeapWalk) List() HeapList { return w.list }
