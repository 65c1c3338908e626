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

package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	v, err := New("1.4.2", "4f1a2c", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 1, v.Major)
	assert.Equal(t, 4, v.Minor)
	assert.Equal(t, 2, v.Patch)
	assert.Equal(t, "1.4.2", v.String())

	v, err = New("2.0.0-rc1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0-rc1", v.String())

	v, err = New("", "4f1a2c", "")
	require.NoError(t, err)
	assert.Equal(t, "dev", v.String())

	_, err = New("one.two", "", "")
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	v, err := New("1.4.2", "4f1a2c", "2024-03-01")
	require.NoError(t, err)
	var b bytes.Buffer
	v.Render(&b)
	assert.Contains(t, b.String(), "1.4.2")
	assert.Contains(t, b.String(), "4f1a2c")
	assert.Contains(t, b.String(), "Go compiler")
}

func TestGet(t *testing.T) {
	Set("")
	assert.True(t, IsDev())
	assert.Equal(t, "dev", Get())
	assert.Equal(t, "0.0.0", Sem().String())
}
