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
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

var (
	advapi32 = windows.NewLazySystemDLL("advapi32.dll")

	procAdjustTokenPrivileges = advapi32.NewProc("AdjustTokenPrivileges")
)

// adjustTokenPrivileges returns the errno captured by the call itself, as the
// last error is the only way to learn whether every privilege was assigned.
func adjustTokenPrivileges(token windows.Token, tp *windows.Tokenprivileges) (bool, syscall.Errno) {
	r0, _, e1 := syscall.SyscallN(
		procAdjustTokenPrivileges.Addr(),
		uintptr(token),
		0,
		uintptr(unsafe.Pointer(tp)),
		uintptr(unsafe.Sizeof(*tp)),
		0,
		0,
	)
	return r0 != 0, e1
}

// EnableTokenPrivileges enables the specified privileges in the given token. The token
// must have TOKEN_ADJUST_PRIVILEGES access. If the token does not already contain the
// privilege it cannot be enabled.
func EnableTokenPrivileges(token windows.Token, privileges ...string) error {
	for _, name := range privileges {
		var luid windows.LUID
		if err := windows.LookupPrivilegeValue(nil, windows.StringToUTF16Ptr(name), &luid); err != nil {
			return errors.Wrapf(err, "LookupPrivilegeValue failed on '%v'", name)
		}
		tp := windows.Tokenprivileges{
			PrivilegeCount: 1,
			Privileges: [1]windows.LUIDAndAttributes{
				{Luid: luid, Attributes: windows.SE_PRIVILEGE_ENABLED},
			},
		}
		ok, errno := adjustTokenPrivileges(token, &tp)
		if err := adjustResult(name, ok, errno); err != nil {
			return err
		}
	}
	return nil
}

// SetDebugPrivilege enables the debug privilege in the current process token. The
// privilege lets snapshots include the modules and heaps of processes owned by
// other users.
func SetDebugPrivilege() error {
	var token windows.Token
	err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_ADJUST_PRIVILEGES|windows.TOKEN_QUERY, &token)
	if err != nil {
		return err
	}
	defer token.Close()
	return EnableTokenPrivileges(token, SeDebugPrivilege)
}
