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
	"github.com/rabbitstack/toolhelp/pkg/syscall/handle"
)

// Host is the enumeration capability backing snapshots. Each entity kind pairs a First
// call, that positions the cursor and returns the first record, with a Next call that
// advances the cursor. Implementations must return errors.ErrNoMoreEntries when the
// cursor has no further records, and the raw host error otherwise.
type Host interface {
	// CreateSnapshot takes a snapshot of the tables of the given kind. The pid
	// scopes module and heap list snapshots and is ignored for the rest.
	CreateSnapshot(kind Kind, pid uint32) (handle.Handle, error)
	// CloseSnapshot releases the snapshot handle.
	CloseSnapshot(snap handle.Handle) error

	ProcessFirst(snap handle.Handle) (ProcessEntry, error)
	ProcessNext(snap handle.Handle) (ProcessEntry, error)
	ThreadFirst(snap handle.Handle) (ThreadEntry, error)
	ThreadNext(snap handle.Handle) (ThreadEntry, error)
	ModuleFirst(snap handle.Handle) (ModuleEntry, error)
	ModuleNext(snap handle.Handle) (ModuleEntry, error)
	HeapListFirst(snap handle.Handle) (HeapList, error)
	HeapListNext(snap handle.Handle) (HeapList, error)

	// HeapFirst returns the first block of the heap. Heap walks don't
	// require a snapshot handle.
	HeapFirst(pid uint32, heapID uintptr) (HeapEntry, error)
	// HeapNext returns the block that follows the given one.
	HeapNext(prev HeapEntry) (HeapEntry, error)

	// ReadProcessMemory copies the memory of the process starting at
	// the address into the buffer and returns the number of bytes read.
	ReadProcessMemory(pid uint32, addr uintptr, buf []byte) (int, error)
}

// SystemHost returns the host that dispatches calls to the ToolHelp32 API
// of the running operating system.
func SystemHost() Host { return systemHost{} }

type options struct {
	host Host
}

// Option tweaks the snapshot behaviour.
type Option func(o *options)

// WithHost replaces the system host with a custom enumeration capability.
func WithHost(host Host) Option {
	return func(o *options) {
		o.host = host
	}
}

func newOpts(opts ...Option) options {
	o := options{host: SystemHost()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
