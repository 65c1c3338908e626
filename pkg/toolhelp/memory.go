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

package toolhelp

// ReadProcessMemory copies memory allocated to another process at the specified address into
// the supplied buffer. The number of bytes to copy is the length of the buffer. It returns the
// number of bytes copied, which may be less than the buffer length if the read fails midway.
func ReadProcessMemory(pid uint32, addr uintptr, buf []byte, opts ...Option) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	o := newOpts(opts...)
	return o.host.ReadProcessMemory(pid, addr, buf)
}
