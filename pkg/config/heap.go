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
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	heapMaxBlocks = "heap.max-blocks"
	heapSpinner   = "heap.spinner"
)

// HeapConfig contains the settings that influence heap walks.
type HeapConfig struct {
	// MaxBlocks caps the number of blocks collected from a single heap. Zero means no limit.
	MaxBlocks int `json:"heap.max-blocks" yaml:"heap.max-blocks"`
	// Spinner indicates whether a progress spinner is shown while heaps are walked.
	Spinner bool `json:"heap.spinner" yaml:"heap.spinner"`
}

func (c *HeapConfig) initFromViper(v *viper.Viper) {
	c.MaxBlocks = v.GetInt(heapMaxBlocks)
	c.Spinner = v.GetBool(heapSpinner)
}

func (c *HeapConfig) addFlags(flags *pflag.FlagSet) {
	flags.Int(heapMaxBlocks, 0, "Caps the number of blocks collected from a single heap. Zero means no limit")
	flags.Bool(heapSpinner, true, "Indicates whether a progress spinner is shown while heaps are walked")
}
