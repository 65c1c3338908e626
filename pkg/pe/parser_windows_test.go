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

package pe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rabbitstack/toolhelp/pkg/toolhelp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile(t *testing.T) {
	img, err := ParseFile(filepath.Join(os.Getenv("windir"), "system32", "kernel32.dll"))
	require.NoError(t, err)
	assert.True(t, img.IsDLL)
	assert.False(t, img.IsExecutable)

	img, err = ParseFile(filepath.Join(os.Getenv("windir"), "notepad.exe"))
	require.NoError(t, err)
	assert.True(t, img.IsExecutable)
	assert.Equal(t, SubsystemWindowsGUI, img.Subsystem)
}

func TestParseModuleFromSnapshot(t *testing.T) {
	snap, err := toolhelp.NewModuleSnapshot(0)
	require.NoError(t, err)
	mods, err := snap.Collect()
	require.NoError(t, err)

	for _, mod := range mods {
		if !strings.EqualFold(mod.Name, "ntdll.dll") {
			continue
		}
		img, err := ParseModule(mod)
		require.NoError(t, err)
		assert.True(t, img.IsDLL)
		assert.Equal(t, uint64(mod.BaseAddr), img.ImageBase)
		return
	}
	t.Fatal("ntdll.dll not found in the module snapshot")
}
