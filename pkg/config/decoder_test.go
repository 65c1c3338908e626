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

package config

import (
	"testing"

	"github.com/rabbitstack/toolhelp/pkg/outputs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOutputFormat(t *testing.T) {
	var tests = []struct {
		format string
		want   outputs.Format
	}{
		{"", outputs.Table},
		{"table", outputs.Table},
		{"JSON", outputs.JSON},
		{"yml", outputs.YAML},
		{"template", outputs.Template},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var cfg outputs.Config
			require.NoError(t, decode(map[string]interface{}{"format": tt.format, "humanize": "true"}, &cfg))
			assert.Equal(t, tt.want, cfg.Type())
			assert.True(t, cfg.Humanize)
		})
	}
}

func TestDecodeUnknownOutputFormat(t *testing.T) {
	var cfg outputs.Config
	err := decode(map[string]interface{}{"format": "xml"}, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"xml" is not a known output format`)
}
