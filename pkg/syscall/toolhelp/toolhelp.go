//go:build windows
// +build windows

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
	"os"
	"syscall"
	"unsafe"

	"github.com/rabbitstack/toolhelp/pkg/syscall/handle"
)

var (
	kernel32 = syscall.NewLazyDLL("kernel32.dll")

	heap32ListFirst             = kernel32.NewProc("Heap32ListFirst")
	heap32ListNext              = kernel32.NewProc("Heap32ListNext")
	heap32First                 = kernel32.NewProc("Heap32First")
	heap32Next                  = kernel32.NewProc("Heap32Next")
	toolhelp32ReadProcessMemory = kernel32.NewProc("Toolhelp32ReadProcessMemory")
)

// HeapList32 describes an entry from the list that enumerates the heaps used by a process (HEAPLIST32).
type HeapList32 struct {
	Size      uintptr
	ProcessID uint32
	HeapID    uintptr
	Flags     uint32
}

// NewHeapList32 returns the heap list structure with the size member initialized.
func NewHeapList32() HeapList32 {
	return HeapList32{Size: unsafe.Sizeof(HeapList32{})}
}

// HeapEntry32 describes one entry (block) of a heap that is being examined (HEAPENTRY32).
type HeapEntry32 struct {
	Size      uintptr
	Handle    uintptr
	Address   uintptr
	BlockSize uintptr
	Flags     uint32
	LockCount uint32
	Resvd     uint32
	ProcessID uint32
	HeapID    uintptr
}

// NewHeapEntry32 returns the heap entry structure with the size member initialized.
func NewHeapEntry32() HeapEntry32 {
	return HeapEntry32{Size: unsafe.Sizeof(HeapEntry32{})}
}

// Heap32ListFirst retrieves information about the first heap that has been allocated by the process
// the snapshot was taken for.
func Heap32ListFirst(snap handle.Handle, hl *HeapList32) error {
	r, _, err := heap32ListFirst.Call(uintptr(snap), uintptr(unsafe.Pointer(hl)))
	if r == 0 {
		return os.NewSyscallError("Heap32ListFirst", errnoOf(err))
	}
	return nil
}

// Heap32ListNext retrieves information about the next heap that has been allocated by a process.
func Heap32ListNext(snap handle.Handle, hl *HeapList32) error {
	r, _, err := heap32ListNext.Call(uintptr(snap), uintptr(unsafe.Pointer(hl)))
	if r == 0 {
		return os.NewSyscallError("Heap32ListNext", errnoOf(err))
	}
	return nil
}

// Heap32First retrieves information about the first block of a heap that has been allocated by a process.
func Heap32First(he *HeapEntry32, pid uint32, heapID uintptr) error {
	r, _, err := heap32First.Call(uintptr(unsafe.Pointer(he)), uintptr(pid), heapID)
	if r == 0 {
		return os.NewSyscallError("Heap32First", errnoOf(err))
	}
	return nil
}

// Heap32Next retrieves information about the next block of a heap. The entry must
// be the one populated by the preceding Heap32First or Heap32Next call.
func Heap32Next(he *HeapEntry32) error {
	r, _, err := heap32Next.Call(uintptr(unsafe.Pointer(he)))
	if r == 0 {
		return os.NewSyscallError("Heap32Next", errnoOf(err))
	}
	return nil
}

// ReadProcessMemory copies memory allocated to another process at the specified address into
// the supplied buffer. It returns the number of bytes copied.
func ReadProcessMemory(pid uint32, addr uintptr, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	var n uintptr
	r, _, err := toolhelp32ReadProcessMemory.Call(
		uintptr(pid),
		addr,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(&n)),
	)
	if r == 0 {
		return int(n), os.NewSyscallError("Toolhelp32ReadProcessMemory", errnoOf(err))
	}
	return int(n), nil
}

// errnoOf guards against the rare case where the call failed
// without setting the last error value.
func errnoOf(err error) error {
	if errno, ok := err.(syscall.Errno); ok && errno == 0 {
		return syscall.EINVAL
	}
	return err
}
