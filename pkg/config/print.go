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
	"fmt"
	"sort"
	"strings"
)

// flatten turns nested settings into dotted keys.
func flatten(prefix string, value interface{}, out map[string]string) {
	switch v := value.(type) {
	case map[string]interface{}:
		for k, entry := range v {
			flatten(joinKey(prefix, k), entry, out)
		}
	case []interface{}:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = fmt.Sprintf("%v", item)
		}
		out[prefix] = strings.Join(items, ";")
	default:
		out[prefix] = fmt.Sprintf("%v", v)
	}
}

// Print returns the string with all the config options pretty-printed.
func (c *Config) Print() string {
	opts := make(map[string]string)
	flatten("", c.viper.AllSettings(), opts)

	keys := make([]string, 0, len(opts))
	maxKeyLen := 20
	for k := range opts {
		if len(k) > maxKeyLen {
			maxKeyLen = len(k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := opts[k]
		if v == "" {
			continue
		}
		b.WriteString("\n\t")
		b.WriteString(k)
		b.WriteString(" ")
		b.WriteString(strings.Repeat(".", maxKeyLen-len(k)+5))
		b.WriteString(" ")
		b.WriteString(v)
	}
	return b.String()
}
