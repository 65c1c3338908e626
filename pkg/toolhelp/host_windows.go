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
	"errors"
	"syscall"
	"unsafe"

	kerrors "github.com/rabbitstack/toolhelp/pkg/errors"
	"github.com/rabbitstack/toolhelp/pkg/syscall/handle"
	"github.com/rabbitstack/toolhelp/pkg/syscall/toolhelp"
	"github.com/rabbitstack/toolhelp/pkg/syscall/winerrno"
	"golang.org/x/sys/windows"
)

// systemHost calls into the ToolHelp32 functions exported by kernel32.dll.
type systemHost struct{}

func (systemHost) CreateSnapshot(kind Kind, pid uint32) (handle.Handle, error) {
	snap, err := windows.CreateToolhelp32Snapshot(uint32(kind), pid)
	if err != nil {
		return handle.Invalid, err
	}
	return handle.Handle(snap), nil
}

func (systemHost) CloseSnapshot(snap handle.Handle) error { return snap.Close() }

func (systemHost) ProcessFirst(snap handle.Handle) (ProcessEntry, error) {
	e := windows.ProcessEntry32{Size: uint32(unsafe.Sizeof(windows.ProcessEntry32{}))}
	if err := windows.Process32First(windows.Handle(snap), &e); err != nil {
		return ProcessEntry{}, hostErr(err)
	}
	return processEntryFromRaw(&e), nil
}

func (systemHost) ProcessNext(snap handle.Handle) (ProcessEntry, error) {
	e := windows.ProcessEntry32{Size: uint32(unsafe.Sizeof(windows.ProcessEntry32{}))}
	if err := windows.Process32Next(windows.Handle(snap), &e); err != nil {
		return ProcessEntry{}, hostErr(err)
	}
	return processEntryFromRaw(&e), nil
}

func (systemHost) ThreadFirst(snap handle.Handle) (ThreadEntry, error) {
	e := windows.ThreadEntry32{Size: uint32(unsafe.Sizeof(windows.ThreadEntry32{}))}
	if err := windows.Thread32First(windows.Handle(snap), &e); err != nil {
		return ThreadEntry{}, hostErr(err)
	}
	return threadEntryFromRaw(&e), nil
}

func (systemHost) ThreadNext(snap handle.Handle) (ThreadEntry, error) {
	e := windows.ThreadEntry32{Size: uint32(unsafe.Sizeof(windows.ThreadEntry32{}))}
	if err := windows.Thread32Next(windows.Handle(snap), &e); err != nil {
		return ThreadEntry{}, hostErr(err)
	}
	return threadEntryFromRaw(&e), nil
}

func (systemHost) ModuleFirst(snap handle.Handle) (ModuleEntry, error) {
	e := windows.ModuleEntry32{Size: uint32(unsafe.Sizeof(windows.ModuleEntry32{}))}
	if err := windows.Module32First(windows.Handle(snap), &e); err != nil {
		return ModuleEntry{}, hostErr(err)
	}
	return moduleEntryFromRaw(&e), nil
}

func (systemHost) ModuleNext(snap handle.Handle) (ModuleEntry, error) {
	e := windows.ModuleEntry32{Size: uint32(unsafe.Sizeof(windows.ModuleEntry32{}))}
	if err := windows.Module32Next(windows.Handle(snap), &e); err != nil {
		return ModuleEntry{}, hostErr(err)
	}
	return moduleEntryFromRaw(&e), nil
}

func (systemHost) HeapListFirst(snap handle.Handle) (HeapList, error) {
	hl := toolhelp.NewHeapList32()
	if err := toolhelp.Heap32ListFirst(snap, &hl); err != nil {
		return HeapList{}, hostErr(err)
	}
	return heapListFromRaw(&hl), nil
}

func (systemHost) HeapListNext(snap handle.Handle) (HeapList, error) {
	hl := toolhelp.NewHeapList32()
	if err := toolhelp.Heap32ListNext(snap, &hl); err != nil {
		return HeapList{}, hostErr(err)
	}
	return heapListFromRaw(&hl), nil
}

func (systemHost) HeapFirst(pid uint32, heapID uintptr) (HeapEntry, error) {
	he := toolhelp.NewHeapEntry32()
	if err := toolhelp.Heap32First(&he, pid, heapID); err != nil {
		return HeapEntry{}, hostErr(err)
	}
	return heapEntryFromRaw(&he), nil
}

func (systemHost) HeapNext(prev HeapEntry) (HeapEntry, error) {
	he := toolhelp.NewHeapEntry32()
	he.Handle = prev.Handle
	he.Address = prev.Address
	he.BlockSize = prev.BlockSize
	he.Flags = prev.Flags
	he.LockCount = prev.LockCount
	he.Resvd = prev.resvd
	he.ProcessID = prev.ProcessID
	he.HeapID = prev.HeapID
	if err := toolhelp.Heap32Next(&he); err != nil {
		return HeapEntry{}, hostErr(err)
	}
	return heapEntryFromRaw(&he), nil
}

func (systemHost) ReadProcessMemory(pid uint32, addr uintptr, buf []byte) (int, error) {
	return toolhelp.ReadProcessMemory(pid, addr, buf)
}

// hostErr translates the exhaustion code reported by the
// First/Next functions into the ErrNoMoreEntries error.
func hostErr(err error) error {
	if errors.Is(err, syscall.Errno(winerrno.NoMoreFiles)) {
		return kerrors.ErrNoMoreEntries
	}
	return err
}

func processEntryFromRaw(e *windows.ProcessEntry32) ProcessEntry {
	return ProcessEntry{
		ProcessID:       e.ProcessID,
		Threads:         e.Threads,
		ParentProcessID: e.ParentProcessID,
		PriClassBase:    e.PriClassBase,
		ExeFile:         windows.UTF16ToString(e.ExeFile[:]),
	}
}

func threadEntryFromRaw(e *windows.ThreadEntry32) ThreadEntry {
	return ThreadEntry{
		ThreadID:       e.ThreadID,
		OwnerProcessID: e.OwnerProcessID,
		BasePri:        e.BasePri,
	}
}

func moduleEntryFromRaw(e *windows.ModuleEntry32) ModuleEntry {
	return ModuleEntry{
		ProcessID: e.ProcessID,
		BaseAddr:  e.ModBaseAddr,
		BaseSize:  e.ModBaseSize,
		Module:    uintptr(e.ModuleHandle),
		Name:      windows.UTF16ToString(e.Module[:]),
		ExePath:   windows.UTF16ToString(e.ExePath[:]),
	}
}

func heapListFromRaw(hl *toolhelp.HeapList32) HeapList {
	return HeapList{
		ProcessID: hl.ProcessID,
		HeapID:    hl.HeapID,
		Flags:     hl.Flags,
	}
}

func heapEntryFromRaw(he *toolhelp.HeapEntry32) HeapEntry {
	return HeapEntry{
		Handle:    he.Handle,
		Address:   he.Address,
		BlockSize: he.BlockSize,
		Flags:     he.Flags,
		LockCount: he.LockCount,
		ProcessID: he.ProcessID,
		HeapID:    he.HeapID,
		resvd:     he.Resvd,
	}
}
