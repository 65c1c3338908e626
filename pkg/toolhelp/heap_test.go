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
	"syscall"
	"testing"

	kerrors "github.com/rabbitstack/toolhelp/pkg/errors"
	"github.com/rabbitstack/toolhelp/pkg/syscall/winerrno"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHeapListWalk(t *testing.T) {
	host := newFakeHost()
	host.heaps[4312] = []HeapList{
		{ProcessID: 4312, HeapID: 0x1c0000, Flags: HF32Default},
		{ProcessID: 4312, HeapID: 0x2a0000},
	}
	host.blocks[0x1c0000] = []HeapEntry{
		{Address: 0x1c0700, BlockSize: 0x20, Flags: LF32Fixed, ProcessID: 4312, HeapID: 0x1c0000},
		{Address: 0x1c0720, BlockSize: 0x80, Flags: LF32Free, ProcessID: 4312, HeapID: 0x1c0000},
		{Address: 0x1c07a0, BlockSize: 0x40, Flags: LF32Moveable, ProcessID: 4312, HeapID: 0x1c0000},
	}

	snap, err := NewHeapListSnapshot(4312, WithHost(host))
	require.NoError(t, err)

	lists, err := snap.Collect()
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.True(t, lists[0].IsDefault())
	assert.False(t, lists[1].IsDefault())

	walk, err := Walk(lists[0], WithHost(host))
	require.NoError(t, err)
	assert.Equal(t, lists[0], walk.List())

	blocks, err := walk.Collect()
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	for i, b := range blocks {
		assert.Equal(t, host.blocks[0x1c0000][i].Address, b.Address)
		assert.Equal(t, host.blocks[0x1c0000][i].BlockSize, b.BlockSize)
	}
	assert.Equal(t, "FIXED", blocks[0].FlagsString())
	assert.True(t, blocks[1].IsFree())
	assert.Equal(t, "MOVEABLE", blocks[2].FlagsString())

	calls := host.calls
	assert.False(t, walk.Next())
	assert.Equal(t, calls, host.calls)

	// the second heap has no blocks
	walk, err = Walk(lists[1], WithHost(host))
	require.NoError(t, err)
	assert.False(t, walk.Next())
	assert.NoError(t, walk.Err())
}

func TestHeapWalkFirstFailure(t *testing.T) {
	host := new(HostMock)
	host.On("HeapFirst", uint32(4), uintptr(0x1000)).Return(HeapEntry{}, syscall.Errno(winerrno.AccessDenied))

	walk, err := Walk(HeapList{ProcessID: 4, HeapID: 0x1000}, WithHost(host))
	require.Error(t, err)
	assert.Nil(t, walk)

	var serr *kerrors.SnapshotError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "heap", serr.Kind)
	assert.Equal(t, uint32(winerrno.AccessDenied), serr.Code())
}

func TestHeapWalkNextFailure(t *testing.T) {
	host := new(HostMock)
	first := HeapEntry{Address: 0x1000, BlockSize: 16, ProcessID: 4, HeapID: 0x1000}
	host.On("HeapFirst", uint32(4), uintptr(0x1000)).Return(first, nil)
	host.On("HeapNext", first).Return(HeapEntry{}, syscall.Errno(winerrno.InvalidParameter)).Once()

	walk, err := Walk(HeapList{ProcessID: 4, HeapID: 0x1000}, WithHost(host))
	require.NoError(t, err)

	require.True(t, walk.Next())
	assert.Equal(t, first, walk.Entry())
	require.False(t, walk.Next())
	require.False(t, walk.Next())

	var serr *kerrors.SnapshotError
	require.ErrorAs(t, walk.Err(), &serr)
	assert.Equal(t, kerrors.OpNext, serr.Op)
	host.AssertNumberOfCalls(t, "HeapNext", 1)
}

func TestHeapWalkEarlyStop(t *testing.T) {
	host := new(HostMock)
	first := HeapEntry{Address: 0x1000, BlockSize: 16, ProcessID: 4, HeapID: 0x1000}
	host.On("HeapFirst", uint32(4), uintptr(0x1000)).Return(first, nil)

	walk, err := Walk(HeapList{ProcessID: 4, HeapID: 0x1000}, WithHost(host))
	require.NoError(t, err)
	for range walk.All() {
		break
	}
	assert.False(t, walk.Next())
	assert.NoError(t, walk.Close())
	host.AssertNotCalled(t, "HeapNext", mock.Anything)
}
