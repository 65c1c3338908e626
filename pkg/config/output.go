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
	"reflect"

	"github.com/pkg/errors"
	"github.com/rabbitstack/toolhelp/pkg/outputs"
)

var errNoOutputSection = errors.New("no output section in config")

func (c *Config) tryLoadOutput() error {
	output := c.viper.AllSettings()["output"]
	if output == nil {
		return errNoOutputSection
	}
	mapping, ok := output.(map[string]interface{})
	if !ok {
		return errors.Errorf("expected map[string]interface{} type for output but found %s", reflect.TypeOf(output))
	}
	var cfg outputs.Config
	if err := decode(mapping, &cfg); err != nil {
		return errors.Wrap(err, "output invalid config")
	}
	c.Output = cfg
	return nil
}
