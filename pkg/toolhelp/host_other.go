//go:build !windows
// +build !windows

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
	kerrors "github.com/rabbitstack/toolhelp/pkg/errors"
	"github.com/rabbitstack/toolhelp/pkg/syscall/handle"
)

// systemHost fails every enumeration on platforms without the ToolHelp32 API.
type systemHost struct{}

func (systemHost) CreateSnapshot(Kind, uint32) (handle.Handle, error) {
	return handle.Invalid, kerrors.ErrUnsupported
}

func (systemHost) CloseSnapshot(handle.Handle) error { return nil }

func (systemHost) ProcessFirst(handle.Handle) (ProcessEntry, error) {
	return ProcessEntry{}, kerrors.ErrUnsupported
}

func (systemHost) ProcessNext(handle.Handle) (ProcessEntry, error) {
	return ProcessEntry{}, kerrors.ErrUnsupported
}

func (systemHost) ThreadFirst(handle.Handle) (ThreadEntry, error) {
	return ThreadEntry{}, kerrors.ErrUnsupported
}

func (systemHost) ThreadNext(handle.Handle) (ThreadEntry, error) {
	return ThreadEntry{}, kerrors.ErrUnsupported
}

func (systemHost) ModuleFirst(handle.Handle) (ModuleEntry, error) {
	return ModuleEntry{}, kerrors.ErrUnsupported
}

func (systemHost) ModuleNext(handle.Handle) (ModuleEntry, error) {
	return ModuleEntry{}, kerrors.ErrUnsupported
}

func (systemHost) HeapListFirst(handle.Handle) (HeapList, error) {
	return HeapList{}, kerrors.ErrUnsupported
}

func (systemHost) HeapListNext(handle.Handle) (HeapList, error) {
	return HeapList{}, kerrors.ErrUnsupported
}

func (systemHost) HeapFirst(uint32, uintptr) (HeapEntry, error) {
	return HeapEntry{}, kerrors.ErrUnsupported
}

func (systemHost) HeapNext(HeapEntry) (HeapEntry, error) {
	return HeapEntry{}, kerrors.ErrUnsupported
}

func (systemHost) ReadProcessMemory(uint32, uintptr, []byte) (int, error) {
	return 0, kerrors.ErrUnsupported
}
