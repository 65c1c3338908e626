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
	"github.com/stretchr/testify/mock"
)

// HostMock is the enumeration host mock used in tests.
type HostMock struct {
	mock.Mock
}

// CreateSnapshot method
func (h *HostMock) CreateSnapshot(kind Kind, pid uint32) (handle.Handle, error) {
	args := h.Called(kind, pid)
	return args.Get(0).(handle.Handle), args.Error(1)
}

// CloseSnapshot method
func (h *HostMock) CloseSnapshot(snap handle.Handle) error {
	args := h.Called(snap)
	return args.Error(0)
}

// ProcessFirst method
func (h *HostMock) ProcessFirst(snap handle.Handle) (ProcessEntry, error) {
	args := h.Called(snap)
	return args.Get(0).(ProcessEntry), args.Error(1)
}

// ProcessNext method
func (h *HostMock) ProcessNext(snap handle.Handle) (ProcessEntry, error) {
	args := h.Called(snap)
	return args.Get(0).(ProcessEntry), args.Error(1)
}

// ThreadFirst method
func (h *HostMock) ThreadFirst(snap handle.Handle) (ThreadEntry, error) {
	args := h.Called(snap)
	return args.Get(0).(ThreadEntry), args.Error(1)
}

// ThreadNext method
func (h *HostMock) ThreadNext(snap handle.Handle) (ThreadEntry, error) {
	args := h.Called(snap)
	return args.Get(0).(ThreadEntry), args.Error(1)
}

// ModuleFirst method
func (h *HostMock) ModuleFirst(snap handle.Handle) (ModuleEntry, error) {
	args := h.Called(snap)
	return args.Get(0).(ModuleEntry), args.Error(1)
}

// ModuleNext method
func (h *HostMock) ModuleNext(snap handle.Handle) (ModuleEntry, error) {
	args := h.Called(snap)
	return args.Get(0).(ModuleEntry), args.Error(1)
}

// HeapListFirst method
func (h *HostMock) HeapListFirst(snap handle.Handle) (HeapList, error) {
	args := h.Called(snap)
	return args.Get(0).(HeapList), args.Error(1)
}

// HeapListNext method
func (h *HostMock) HeapListNext(snap handle.Handle) (HeapList, error) {
	args := h.Called(snap)
	return args.Get(0).(HeapList), args.Error(1)
}

// HeapFirst method
func (h *HostMock) HeapFirst(pid uint32, heapID uintptr) (HeapEntry, error) {
	args := h.Called(pid, heapID)
	return args.Get(0).(HeapEntry), args.Error(1)
}

// HeapNext method
func (h *HostMock) HeapNext(prev HeapEntry) (HeapEntry, error) {
	args := h.Called(prev)
	return args.Get(0).(HeapEntry), args.Error(1)
}

// ReadProcessMemory method
func (h *HostMock) ReadProcessMemory(pid uint32, addr uintptr, buf []byte) (int, error) {
	args := h.Called(pid, addr, buf)
	return args.Int(0), args.Error(1)
}
