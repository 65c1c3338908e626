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

package errors

import (
	"fmt"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotError(t *testing.T) {
	err := &SnapshotError{Op: OpCreate, Kind: "module", PID: 4, Err: os.NewSyscallError("CreateToolhelp32Snapshot", syscall.Errno(5))}

	assert.Equal(t, uint32(5), err.Code())
	assert.Contains(t, err.Error(), "unable to create module snapshot for pid 4")
	assert.True(t, IsSnapshotError(fmt.Errorf("wrapped: %w", err)))
	require.ErrorIs(t, err, syscall.Errno(5))

	err = &SnapshotError{Op: OpFirst, Kind: "process", Err: ErrUnsupported}
	assert.Equal(t, uint32(0), err.Code())
	assert.Equal(t, "unable to read the first entry of process snapshot: "+ErrUnsupported.Error(), err.Error())
	assert.False(t, IsSnapshotError(ErrUnsupported))
}

func TestIsNoMoreEntries(t *testing.T) {
	assert.True(t, IsNoMoreEntries(ErrNoMoreEntries))
	assert.True(t, IsNoMoreEntries(fmt.Errorf("next: %w", ErrNoMoreEntries)))
	assert.False(t, IsNoMoreEntries(ErrSnapshotReleased))
}
