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
	"runtime"
	"syscall"
	"testing"
	"time"

	kerrors "github.com/rabbitstack/toolhelp/pkg/errors"
	"github.com/rabbitstack/toolhelp/pkg/syscall/handle"
	"github.com/rabbitstack/toolhelp/pkg/syscall/winerrno"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var procs = []ProcessEntry{
	{ProcessID: 0, Threads: 8, ExeFile: "[System Process]"},
	{ProcessID: 4, Threads: 180, PriClassBase: 8, ExeFile: "System"},
	{ProcessID: 812, Threads: 12, ParentProcessID: 4, PriClassBase: 11, ExeFile: "smss.exe"},
	{ProcessID: 4312, Threads: 3, ParentProcessID: 812, PriClassBase: 8, ExeFile: "notepad.exe"},
}

func TestProcessSnapshotPreservesHostOrder(t *testing.T) {
	host := newFakeHost()
	host.procs = procs

	snap, err := NewProcessSnapshot(WithHost(host))
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, KindProcess, snap.Kind())

	entries, err := snap.Collect()
	require.NoError(t, err)
	assert.Equal(t, procs, entries)

	assert.Equal(t, 0, host.open())
	assert.Equal(t, []handle.Handle{snap.Handle()}, host.closed)
	assert.Zero(t, host.stale)
}

func TestSnapshotExhaustionIsIdempotent(t *testing.T) {
	host := newFakeHost()
	host.threads = []ThreadEntry{{ThreadID: 8, OwnerProcessID: 4, BasePri: 0}, {ThreadID: 12, OwnerProcessID: 4, BasePri: 13}}

	snap, err := NewThreadSnapshot(WithHost(host))
	require.NoError(t, err)

	n := 0
	for snap.Next() {
		n++
	}
	require.Equal(t, 2, n)
	require.NoError(t, snap.Err())

	calls := host.calls
	for i := 0; i < 10; i++ {
		assert.False(t, snap.Next())
		assert.Equal(t, ThreadEntry{}, snap.Entry())
	}
	assert.NoError(t, snap.Err())
	assert.Equal(t, calls, host.calls)
	assert.Zero(t, host.stale)
}

func TestSnapshotYieldsFirstEntryOnce(t *testing.T) {
	host := new(HostMock)
	h := handle.Handle(0x2c)

	host.On("CreateSnapshot", KindProcess, uint32(0)).Return(h, nil)
	host.On("ProcessFirst", h).Return(procs[0], nil).Once()
	host.On("ProcessNext", h).Return(procs[1], nil).Once()
	host.On("ProcessNext", h).Return(ProcessEntry{}, kerrors.ErrNoMoreEntries).Once()
	host.On("CloseSnapshot", h).Return(nil).Once()

	snap, err := NewProcessSnapshot(WithHost(host))
	require.NoError(t, err)

	require.True(t, snap.Next())
	assert.Equal(t, procs[0], snap.Entry())
	require.True(t, snap.Next())
	assert.Equal(t, procs[1], snap.Entry())
	require.False(t, snap.Next())
	require.False(t, snap.Next())

	host.AssertExpectations(t)
	host.AssertNumberOfCalls(t, "ProcessFirst", 1)
	host.AssertNumberOfCalls(t, "ProcessNext", 2)
	host.AssertNumberOfCalls(t, "CloseSnapshot", 1)
}

func TestSnapshotEmptyTable(t *testing.T) {
	host := new(HostMock)
	h := handle.Handle(0x38)

	host.On("CreateSnapshot", KindThread, uint32(0)).Return(h, nil)
	host.On("ThreadFirst", h).Return(ThreadEntry{}, kerrors.ErrNoMoreEntries)
	host.On("CloseSnapshot", h).Return(nil)

	snap, err := NewThreadSnapshot(WithHost(host))
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.False(t, snap.Next())
	assert.NoError(t, snap.Err())
	assert.NoError(t, snap.Close())

	host.AssertNumberOfCalls(t, "CloseSnapshot", 1)
	host.AssertNotCalled(t, "ThreadNext", mock.Anything)
}

func TestSnapshotCreateFailure(t *testing.T) {
	host := new(HostMock)
	host.On("CreateSnapshot", KindModule, uint32(4)).Return(handle.Invalid, syscall.Errno(winerrno.AccessDenied))

	snap, err := NewModuleSnapshot(4, WithHost(host))
	require.Error(t, err)
	assert.Nil(t, snap)

	var serr *kerrors.SnapshotError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, kerrors.OpCreate, serr.Op)
	assert.Equal(t, "module", serr.Kind)
	assert.Equal(t, uint32(4), serr.PID)
	assert.Equal(t, uint32(winerrno.AccessDenied), serr.Code())

	host.AssertNotCalled(t, "ModuleFirst", mock.Anything)
	host.AssertNotCalled(t, "CloseSnapshot", mock.Anything)
}

func TestSnapshotCreateInvalidHandle(t *testing.T) {
	host := new(HostMock)
	host.On("CreateSnapshot", KindProcess, uint32(0)).Return(handle.Invalid, nil)

	_, err := NewProcessSnapshot(WithHost(host))
	require.ErrorIs(t, err, kerrors.ErrInvalidHandle)
	host.AssertNotCalled(t, "ProcessFirst", mock.Anything)
}

func TestSnapshotFirstFailureReleasesHandle(t *testing.T) {
	host := new(HostMock)
	h := handle.Handle(0x40)

	host.On("CreateSnapshot", KindHeapList, uint32(1024)).Return(h, nil)
	host.On("HeapListFirst", h).Return(HeapList{}, syscall.Errno(winerrno.BadLength))
	host.On("CloseSnapshot", h).Return(nil)

	snap, err := NewHeapListSnapshot(1024, WithHost(host))
	require.Error(t, err)
	assert.Nil(t, snap)

	var serr *kerrors.SnapshotError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, kerrors.OpFirst, serr.Op)
	assert.Equal(t, uint32(winerrno.BadLength), serr.Code())

	host.AssertNumberOfCalls(t, "CloseSnapshot", 1)
	host.AssertNotCalled(t, "HeapListNext", mock.Anything)
}

func TestSnapshotNextFailureTerminatesSequence(t *testing.T) {
	host := new(HostMock)
	h := handle.Handle(0x44)

	host.On("CreateSnapshot", KindModule, uint32(0)).Return(h, nil)
	host.On("ModuleFirst", h).Return(ModuleEntry{Name: "ntdll.dll"}, nil)
	host.On("ModuleNext", h).Return(ModuleEntry{}, syscall.Errno(winerrno.PartialCopy)).Once()
	host.On("CloseSnapshot", h).Return(nil)

	snap, err := NewModuleSnapshot(0, WithHost(host))
	require.NoError(t, err)

	entries, err := snap.Collect()
	require.Len(t, entries, 1)
	require.Error(t, err)
	assert.True(t, kerrors.IsSnapshotError(err))

	var serr *kerrors.SnapshotError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, kerrors.OpNext, serr.Op)
	assert.Equal(t, uint32(winerrno.PartialCopy), serr.Code())

	// the error terminates the sequence for good
	assert.False(t, snap.Next())
	assert.Equal(t, err, snap.Err())

	host.AssertNumberOfCalls(t, "ModuleNext", 1)
	host.AssertNumberOfCalls(t, "CloseSnapshot", 1)
}

func TestSnapshotEarlyAbandonment(t *testing.T) {
	host := newFakeHost()
	host.procs = procs

	snap, err := NewProcessSnapshot(WithHost(host))
	require.NoError(t, err)

	for proc := range snap.All() {
		assert.Equal(t, procs[0], proc)
		break
	}

	assert.Equal(t, 0, host.open())
	calls := host.calls
	assert.False(t, snap.Next())
	assert.NoError(t, snap.Err())
	assert.Equal(t, calls, host.calls)
	assert.Zero(t, host.stale)
}

func TestUnreachableSnapshotIsReleased(t *testing.T) {
	host := newFakeHost()
	host.procs = procs

	func() {
		snap, err := NewProcessSnapshot(WithHost(host))
		require.NoError(t, err)
		require.True(t, snap.Next())
		require.Equal(t, procs[0], snap.Entry())
	}()
	require.Equal(t, 1, host.open())

	require.Eventually(t, func() bool {
		runtime.GC()
		return host.open() == 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.Zero(t, host.staleCalls())
}

func TestSnapshotReleasedOnPanic(t *testing.T) {
	host := newFakeHost()
	host.procs = procs

	snap, err := NewProcessSnapshot(WithHost(host))
	require.NoError(t, err)

	assert.Panics(t, func() {
		for range snap.All() {
			panic("consumer failure")
		}
	})
	assert.Equal(t, 0, host.open())
	assert.Len(t, host.closed, 1)
}

func TestSnapshotCloseIsIdempotent(t *testing.T) {
	host := new(HostMock)
	h := handle.Handle(0x48)

	host.On("CreateSnapshot", KindProcess, uint32(0)).Return(h, nil)
	host.On("ProcessFirst", h).Return(procs[0], nil)
	host.On("CloseSnapshot", h).Return(syscall.Errno(winerrno.InvalidHandle))

	snap, err := NewProcessSnapshot(WithHost(host))
	require.NoError(t, err)
	require.True(t, snap.Next())

	assert.NoError(t, snap.Close())
	assert.NoError(t, snap.Close())
	assert.False(t, snap.Next())
	assert.NoError(t, snap.Err())

	host.AssertNumberOfCalls(t, "CloseSnapshot", 1)
	host.AssertNotCalled(t, "ProcessNext", mock.Anything)
}

func TestOverlappingSnapshots(t *testing.T) {
	host := newFakeHost()
	host.procs = procs

	s1, err := NewProcessSnapshot(WithHost(host))
	require.NoError(t, err)
	s2, err := NewProcessSnapshot(WithHost(host))
	require.NoError(t, err)
	require.NotEqual(t, s1.Handle(), s2.Handle())

	var e1, e2 []ProcessEntry
	// advance the first snapshot twice as fast as the second one
	for {
		more := false
		for i := 0; i < 2; i++ {
			if s1.Next() {
				e1 = append(e1, s1.Entry())
				more = true
			}
		}
		if s2.Next() {
			e2 = append(e2, s2.Entry())
			more = true
		}
		if !more {
			break
		}
	}

	assert.Equal(t, procs, e1)
	assert.Equal(t, procs, e2)
	assert.Equal(t, 0, host.open())
	assert.Zero(t, host.stale)
}

func TestModuleSnapshotScopedToProcess(t *testing.T) {
	host := newFakeHost()
	host.modules[4312] = []ModuleEntry{
		{ProcessID: 4312, BaseAddr: 0x7ff6a0000000, BaseSize: 0x38000, Name: "notepad.exe", ExePath: `C:\Windows\System32\notepad.exe`},
		{ProcessID: 4312, BaseAddr: 0x7ffb1e3f0000, BaseSize: 0x1f8000, Name: "ntdll.dll", ExePath: `C:\Windows\SYSTEM32\ntdll.dll`},
	}
	host.modules[812] = []ModuleEntry{{ProcessID: 812, Name: "smss.exe"}}

	snap, err := NewModuleSnapshot(4312, WithHost(host))
	require.NoError(t, err)
	mods, err := snap.Collect()
	require.NoError(t, err)
	assert.Equal(t, host.modules[4312], mods)
	assert.True(t, mods[1].Contains(0x7ffb1e3f1000))
	assert.False(t, mods[1].Contains(0x7ffb1e3f0000+0x1f8000))
}

func TestFromHandle(t *testing.T) {
	host := new(HostMock)
	h := handle.Handle(0x50)

	host.On("ThreadFirst", h).Return(ThreadEntry{ThreadID: 1}, nil)
	host.On("ThreadNext", h).Return(ThreadEntry{}, kerrors.ErrNoMoreEntries)
	host.On("CloseSnapshot", h).Return(nil)

	snap, err := FromHandle[ThreadEntry](h, WithHost(host))
	require.NoError(t, err)
	assert.Equal(t, KindThread, snap.Kind())
	entries, err := snap.Collect()
	require.NoError(t, err)
	assert.Equal(t, []ThreadEntry{{ThreadID: 1}}, entries)

	_, err = FromHandle[ThreadEntry](handle.Invalid, WithHost(host))
	require.ErrorIs(t, err, kerrors.ErrInvalidHandle)
	host.AssertNotCalled(t, "CreateSnapshot", mock.Anything, mock.Anything)
}

func TestSnapshotString(t *testing.T) {
	host := newFakeHost()
	host.procs = procs

	snap, err := NewProcessSnapshot(WithHost(host))
	require.NoError(t, err)
	assert.Contains(t, snap.String(), "process snapshot")
	assert.Contains(t, snap.String(), "state: buffered")
	require.NoError(t, snap.Close())
	assert.Contains(t, snap.String(), "state: released")
}

func TestKindString(t *testing.T) {
	var tests = []struct {
		kind Kind
		s    string
	}{
		{KindProcess, "process"},
		{KindThread, "thread"},
		{KindModule, "module"},
		{KindHeapList, "heaplist"},
		{Kind(0x80000000), "Kind(0x80000000)"},
	}

	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			assert.Equal(t, tt.s, tt.kind.String())
		})
	}
}
