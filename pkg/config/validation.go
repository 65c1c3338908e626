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

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

func validate(schema string, m interface{}) (bool, []error) {
	converted, err := convertToStringKeysRecursive(m, "")
	if err != nil {
		return false, []error{errors.Wrap(err, "fail to convert keys to string")}
	}
	loader := gojsonschema.NewGoLoader(converted)
	sc := gojsonschema.NewStringLoader(schema)
	r, err := gojsonschema.Validate(sc, loader)
	if err != nil {
		return false, []error{errors.Wrap(err, "fail to validate config file through schema")}
	}
	errs := make([]error, len(r.Errors()))
	for i, err := range r.Errors() {
		errs[i] = errors.New(err.String())
	}
	return r.Valid(), errs
}

// convertToStringKeysRecursive ensures keys are converted to strings for jsonschema.
func convertToStringKeysRecursive(value interface{}, keyPrefix string) (interface{}, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		dict := make(map[string]interface{}, len(v))
		for key, entry := range v {
			converted, err := convertToStringKeysRecursive(entry, joinKey(keyPrefix, key))
			if err != nil {
				return nil, err
			}
			dict[key] = converted
		}
		return dict, nil
	case map[interface{}]interface{}:
		dict := make(map[string]interface{}, len(v))
		for k, entry := range v {
			key, ok := k.(string)
			if !ok {
				return nil, formatInvalidKeyError(keyPrefix, k)
			}
			converted, err := convertToStringKeysRecursive(entry, joinKey(keyPrefix, key))
			if err != nil {
				return nil, err
			}
			dict[key] = converted
		}
		return dict, nil
	case []interface{}:
		list := make([]interface{}, 0, len(v))
		for i, entry := range v {
			converted, err := convertToStringKeysRecursive(entry, fmt.Sprintf("%s[%d]", keyPrefix, i))
			if err != nil {
				return nil, err
			}
			list = append(list, converted)
		}
		return list, nil
	default:
		return value, nil
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func formatInvalidKeyError(keyPrefix string, key interface{}) error {
	location := "at top level"
	if keyPrefix != "" {
		location = fmt.Sprintf("in %s", keyPrefix)
	}
	return errors.Errorf("non-string key %s: %#v", location, key)
}
