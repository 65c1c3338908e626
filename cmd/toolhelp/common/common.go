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

package common

import (
	"github.com/rabbitstack/toolhelp/pkg/config"
	"github.com/rabbitstack/toolhelp/pkg/syscall/security"
	"github.com/rabbitstack/toolhelp/pkg/util/log"
	logger "github.com/sirupsen/logrus"
)

// LogFile is the name of the file log lines are written to.
const LogFile = "toolhelp.log"

// Init initializes and validates the configuration as given by the commands. This
// function will also set up the logger and enable the debug privilege in the process
// token if required.
func Init(c *config.Config) error {
	if err := c.TryLoadFile(c.File()); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.Init(); err != nil {
		return err
	}
	if err := log.InitFromConfig(c.Log, LogFile); err != nil {
		return err
	}
	// snapshots of processes running as other users need the debug privilege,
	// but lacking it only narrows what can be enumerated
	if c.DebugPrivilege {
		if err := security.SetDebugPrivilege(); err != nil {
			logger.Warnf("unable to enable the debug privilege: %v", err)
		}
	}
	return nil
}
