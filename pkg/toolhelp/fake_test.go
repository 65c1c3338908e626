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
	"sync"
	"syscall"

	kerrors "github.com/rabbitstack/toolhelp/pkg/errors"
	"github.com/rabbitstack/toolhelp/pkg/syscall/handle"
	"github.com/rabbitstack/toolhelp/pkg/syscall/winerrno"
)

type cursor struct {
	kind Kind
	pid  uint32
	pos  int
}

// fakeHost is an in-memory enumeration host. Every snapshot handle
// gets an independent cursor over the tables. Finalizers may close
// handles from another goroutine, hence the lock.
type fakeHost struct {
	mu sync.Mutex

	procs   []ProcessEntry
	threads []ThreadEntry
	modules map[uint32][]ModuleEntry
	heaps   map[uint32][]HeapList
	blocks  map[uintptr][]HeapEntry

	seq     handle.Handle
	cursors map[handle.Handle]*cursor
	closed  []handle.Handle
	calls   int
	// stale counts the calls that referenced closed handles
	stale int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		modules: make(map[uint32][]ModuleEntry),
		heaps:   make(map[uint32][]HeapList),
		blocks:  make(map[uintptr][]HeapEntry),
		seq:     0x100,
		cursors: make(map[handle.Handle]*cursor),
	}
}

func (f *fakeHost) open() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cursors)
}

func (f *fakeHost) staleCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stale
}

func (f *fakeHost) CreateSnapshot(kind Kind, pid uint32) (handle.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.seq += 4
	f.cursors[f.seq] = &cursor{kind: kind, pid: pid}
	return f.seq, nil
}

func (f *fakeHost) CloseSnapshot(snap handle.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if _, ok := f.cursors[snap]; !ok {
		f.stale++
		return syscall.Errno(winerrno.InvalidHandle)
	}
	delete(f.cursors, snap)
	f.closed = append(f.closed, snap)
	return nil
}

func take[T any](f *fakeHost, snap handle.Handle, items []T, first bool) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	var zero T
	c, ok := f.cursors[snap]
	if !ok {
		f.stale++
		return zero, syscall.Errno(winerrno.InvalidHandle)
	}
	if first {
		c.pos = 0
	}
	if c.pos >= len(items) {
		return zero, kerrors.ErrNoMoreEntries
	}
	item := items[c.pos]
	c.pos++
	return item, nil
}

func (f *fakeHost) pidOf(snap handle.Handle) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.cursors[snap]; ok {
		return c.pid
	}
	return 0
}

func (f *fakeHost) ProcessFirst(snap handle.Handle) (ProcessEntry, error) {
	return take(f, snap, f.procs, true)
}

func (f *fakeHost) ProcessNext(snap handle.Handle) (ProcessEntry, error) {
	return take(f, snap, f.procs, false)
}

func (f *fakeHost) ThreadFirst(snap handle.Handle) (ThreadEntry, error) {
	return take(f, snap, f.threads, true)
}

func (f *fakeHost) ThreadNext(snap handle.Handle) (ThreadEntry, error) {
	return take(f, snap, f.threads, false)
}

func (f *fakeHost) ModuleFirst(snap handle.Handle) (ModuleEntry, error) {
	return take(f, snap, f.modules[f.pidOf(snap)], true)
}

func (f *fakeHost) ModuleNext(snap handle.Handle) (ModuleEntry, error) {
	return take(f, snap, f.modules[f.pidOf(snap)], false)
}

func (f *fakeHost) HeapListFirst(snap handle.Handle) (HeapList, error) {
	return take(f, snap, f.heaps[f.pidOf(snap)], true)
}

func (f *fakeHost) HeapListNext(snap handle.Handle) (HeapList, error) {
	return take(f, snap, f.heaps[f.pidOf(snap)], false)
}

func (f *fakeHost) HeapFirst(pid uint32, heapID uintptr) (HeapEntry, error) {
	f.calls++
	blocks := f.blocks[heapID]
	if len(blocks) == 0 {
		return HeapEntry{}, kerrors.ErrNoMoreEntries
	}
	e := blocks[0]
	e.resvd = 1
	return e, nil
}

// HeapNext locates the next block through the cursor
// state stashed in the previous entry.
func (f *fakeHost) HeapNext(prev HeapEntry) (HeapEntry, error) {
	f.calls++
	blocks := f.blocks[prev.HeapID]
	if prev.resvd == 0 {
		return HeapEntry{}, syscall.Errno(winerrno.InvalidParameter)
	}
	if int(prev.resvd) >= len(blocks) {
		return HeapEntry{}, kerrors.ErrNoMoreEntries
	}
	e := blocks[prev.resvd]
	e.resvd = prev.resvd + 1
	return e, nil
}

func (f *fakeHost) ReadProcessMemory(pid uint32, addr uintptr, buf []byte) (int, error) {
	f.calls++
	for i := range buf {
		buf[i] = byte(addr) + byte(i)
	}
	return len(buf), nil
}
