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
	"fmt"
	"strings"
)

// Kind determines the portion of the system that is included in the snapshot. The values
// map directly to the TH32CS_* flags accepted by CreateToolhelp32Snapshot.
type Kind uint32

const (
	// KindHeapList includes all heaps of the process specified in the snapshot.
	KindHeapList Kind = 0x00000001
	// KindProcess includes all processes in the system in the snapshot.
	KindProcess Kind = 0x00000002
	// KindThread includes all threads in the system in the snapshot.
	KindThread Kind = 0x00000004
	// KindModule includes all 64-bit and 32-bit modules of the process specified in the snapshot.
	KindModule Kind = 0x00000008 | 0x00000010
)

// String returns the human-readable entity kind name.
func (k Kind) String() string {
	switch k {
	case KindHeapList:
		return "heaplist"
	case KindProcess:
		return "process"
	case KindThread:
		return "thread"
	case KindModule:
		return "module"
	default:
		return fmt.Sprintf("Kind(0x%x)", uint32(k))
	}
}

// ProcessEntry describes a process that was running when the snapshot was taken.
type ProcessEntry struct {
	// ProcessID is the process identifier.
	ProcessID uint32 `json:"pid" yaml:"pid"`
	// Threads is the number of execution threads started by the process.
	Threads uint32 `json:"threads" yaml:"threads"`
	// ParentProcessID is the identifier of the process that created this process.
	ParentProcessID uint32 `json:"ppid" yaml:"ppid"`
	// PriClassBase is the base priority of any threads created by this process.
	PriClassBase int32 `json:"priority" yaml:"priority"`
	// ExeFile is the name of the executable file for the process.
	ExeFile string `json:"exe" yaml:"exe"`
}

// String returns the process entry string representation.
func (p ProcessEntry) String() string {
	return fmt.Sprintf("pid: %d, ppid: %d, threads: %d, priority: %d, exe: %s", p.ProcessID, p.ParentProcessID, p.Threads, p.PriClassBase, p.ExeFile)
}

// ThreadEntry describes a thread that was executing when the snapshot was taken.
type ThreadEntry struct {
	ThreadID       uint32 `json:"tid" yaml:"tid"`
	OwnerProcessID uint32 `json:"pid" yaml:"pid"`
	// BasePri is the kernel base priority level assigned to the thread (0 to 31).
	BasePri int32 `json:"priority" yaml:"priority"`
}

// String returns the thread entry string representation.
func (t ThreadEntry) String() string {
	return fmt.Sprintf("tid: %d, pid: %d, priority: %d", t.ThreadID, t.OwnerProcessID, t.BasePri)
}

// ModuleEntry describes a module loaded by the process the snapshot was taken for.
type ModuleEntry struct {
	ProcessID uint32 `json:"pid" yaml:"pid"`
	// BaseAddr is the base address of the module in the context of the owning process.
	BaseAddr uintptr `json:"base" yaml:"base"`
	// BaseSize is the size of the module in bytes.
	BaseSize uint32 `json:"size" yaml:"size"`
	// Module is the module handle in the context of the owning process.
	Module uintptr `json:"handle" yaml:"handle"`
	Name   string  `json:"name" yaml:"name"`
	// ExePath is the full module path.
	ExePath string `json:"path" yaml:"path"`
}

// Contains determines whether the address falls into the module's image.
func (m ModuleEntry) Contains(addr uintptr) bool {
	return addr >= m.BaseAddr && addr < m.BaseAddr+uintptr(m.BaseSize)
}

// String returns the module entry string representation.
func (m ModuleEntry) String() string {
	return fmt.Sprintf("pid: %d, base: 0x%x, size: %d, name: %s, path: %s", m.ProcessID, m.BaseAddr, m.BaseSize, m.Name, m.ExePath)
}

// HF32Default flags the default heap of the process.
const HF32Default = 0x1

// HeapList describes a heap of the process the snapshot was taken for. The blocks
// of the heap are enumerated with Walk.
type HeapList struct {
	ProcessID uint32  `json:"pid" yaml:"pid"`
	HeapID    uintptr `json:"heap_id" yaml:"heap_id"`
	Flags     uint32  `json:"flags" yaml:"flags"`
}

// IsDefault determines if this is the process' default heap.
func (h HeapList) IsDefault() bool { return h.Flags&HF32Default != 0 }

// String returns the heap list string representation.
func (h HeapList) String() string {
	return fmt.Sprintf("pid: %d, heap: 0x%x, default: %t", h.ProcessID, h.HeapID, h.IsDefault())
}

const (
	// LF32Fixed denotes the memory block has a fixed (unmovable) location.
	LF32Fixed = 0x00000001
	// LF32Free denotes the memory block is not used.
	LF32Free = 0x00000002
	// LF32Moveable denotes the memory block location can be moved.
	LF32Moveable = 0x00000004
)

// HeapEntry describes one block of a heap.
type HeapEntry struct {
	// Handle is the handle to the heap block.
	Handle    uintptr `json:"handle" yaml:"handle"`
	Address   uintptr `json:"address" yaml:"address"`
	BlockSize uintptr `json:"size" yaml:"size"`
	Flags     uint32  `json:"flags" yaml:"flags"`
	LockCount uint32  `json:"lock_count" yaml:"lock_count"`
	ProcessID uint32  `json:"pid" yaml:"pid"`
	HeapID    uintptr `json:"heap_id" yaml:"heap_id"`

	// resvd is the host cursor state required to fetch the next block
	resvd uint32
}

// IsFree determines if the heap block is not in use.
func (h HeapEntry) IsFree() bool { return h.Flags&LF32Free != 0 }

// FlagsString returns the block flags as a pipe-separated list.
func (h HeapEntry) FlagsString() string {
	flags := make([]string, 0, 3)
	if h.Flags&LF32Fixed != 0 {
		flags = append(flags, "FIXED")
	}
	if h.Flags&LF32Free != 0 {
		flags = append(flags, "FREE")
	}
	if h.Flags&LF32Moveable != 0 {
		flags = append(flags, "MOVEABLE")
	}
	return strings.Join(flags, "|")
}

// String returns the heap entry string representation.
func (h HeapEntry) String() string {
	return fmt.Sprintf("pid: %d, heap: 0x%x, address: 0x%x, size: %d, flags: %s", h.ProcessID, h.HeapID, h.Address, h.BlockSize, h.FlagsString())
}
