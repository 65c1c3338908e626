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

import "fmt"

// Handle represents the handle type.
type Handle uintptr

// Invalid is the INVALID_HANDLE_VALUE sentinel returned by functions that fail to create a handle.
const Invalid = ^Handle(0)

// IsValid determines if handle instance if valid.
func (handle Handle) IsValid() bool {
	return handle != Invalid && handle != 0
}

// String returns the hexadecimal representation of the handle value.
func (handle Handle) String() string {
	return fmt.Sprintf("0x%x", uintptr(handle))
}
