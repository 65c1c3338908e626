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

package winerrno

// Errno is the type alias for error codes returned by API functions
type Errno uintptr

const (
	// InvalidPID indicates invalid process identifier value
	InvalidPID uint32 = 0xffffffff
	// Success determines successful return code
	Success Errno = 0x0
	// AccessDenied is returned when the caller lacks the rights to open the target process
	AccessDenied Errno = 0x5
	// InvalidHandle signals the snapshot handle is not valid
	InvalidHandle Errno = 0x6
	// NoMoreFiles is the code reported by the *32First and *32Next functions when the snapshot contains no more records
	NoMoreFiles Errno = 0x12
	// BadLength is returned when the dwSize member of the entry structure is not initialized
	BadLength        Errno = 0x18
	InvalidParameter Errno = 0x57
	// PartialCopy is returned when reading memory of 64-bit processes from 32-bit processes
	PartialCopy Errno = 0x12b
	NotFound    Errno = 0x490
)

// IsNoMoreFiles determines whether the error code denotes the exhausted snapshot.
func (e Errno) IsNoMoreFiles() bool {
	return e == NoMoreFiles
}
