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

package security

import (
	"syscall"

	"github.com/pkg/errors"
)

// SeDebugPrivilege is the name of the privilege used to debug programs.
const SeDebugPrivilege = "SeDebugPrivilege"

// ErrorNotAllAssigned is set by AdjustTokenPrivileges when the token does not
// hold one or more of the requested privileges.
const ErrorNotAllAssigned syscall.Errno = 1300

// adjustResult interprets the outcome of AdjustTokenPrivileges. The call reports
// success even when the privilege was not assigned, so the errno captured by the
// same call decides.
func adjustResult(name string, success bool, errno syscall.Errno) error {
	if !success {
		if errno == 0 {
			errno = syscall.EINVAL
		}
		return errors.Wrapf(errno, "unable to enable %s", name)
	}
	if errno == ErrorNotAllAssigned {
		return errors.Wrapf(errno, "%s is not held by the token", name)
	}
	return nil
}
