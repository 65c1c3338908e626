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

package handle

import "golang.org/x/sys/windows"

// Close disposes the underlying handle object. Closing
// an invalid handle is a no-op.
func (handle Handle) Close() error {
	if !handle.IsValid() {
		return nil
	}
	return windows.CloseHandle(windows.Handle(handle))
}
