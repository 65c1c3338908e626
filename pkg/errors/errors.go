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

package errors

import (
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrNoMoreEntries is returned by hosts when the enumeration cursor has no further records.
	// It is the normal terminal signal of a snapshot and never surfaces to snapshot consumers.
	ErrNoMoreEntries = errors.New("no more entries in the snapshot")

	// ErrUnsupported is returned when the ToolHelp32 API is not available on the running platform
	ErrUnsupported = errors.New("toolhelp snapshots are only supported on Windows")

	// ErrSnapshotReleased signals that the operation was attempted on a snapshot whose handle was already released
	ErrSnapshotReleased = errors.New("snapshot handle has been released")

	// ErrInvalidHandle is returned when a snapshot is built from an invalid handle value
	ErrInvalidHandle = errors.New("invalid snapshot handle")

	// ErrInvalidPID is thrown when the process identifier can't be parsed
	ErrInvalidPID = func(s string) error {
		return fmt.Errorf("%q is not a valid process identifier", s)
	}
)

const (
	// OpCreate identifies the snapshot handle creation.
	OpCreate = "create"
	// OpFirst identifies the retrieval of the first snapshot record.
	OpFirst = "read the first entry of"
	// OpNext identifies the cursor advance.
	OpNext = "advance"
)

// SnapshotError is the error returned when the host fails to create a snapshot, produce its
// first record, or advance the cursor with anything other than the exhaustion code.
type SnapshotError struct {
	// Op is the host operation that failed.
	Op string
	// Kind is the name of the entity kind being enumerated.
	Kind string
	// PID is the process the snapshot was scoped to. Zero for system-wide snapshots.
	PID uint32
	// Err is the underlying host error.
	Err error
}

// Error returns the error message.
func (e *SnapshotError) Error() string {
	if e.PID != 0 {
		return fmt.Sprintf("unable to %s %s snapshot for pid %d: %v", e.Op, e.Kind, e.PID, e.Err)
	}
	return fmt.Sprintf("unable to %s %s snapshot: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying host error.
func (e *SnapshotError) Unwrap() error { return e.Err }

// Code returns the host error code carried by this error, or zero
// if the underlying error didn't originate from a system call.
func (e *SnapshotError) Code() uint32 {
	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		return uint32(errno)
	}
	return 0
}

// IsSnapshotError returns true if the error is, or wraps, a SnapshotError.
func IsSnapshotError(err error) bool {
	var e *SnapshotError
	return errors.As(err, &e)
}

// IsNoMoreEntries determines if the error signals the exhaustion of the enumeration cursor.
func IsNoMoreEntries(err error) bool { return errors.Is(err, ErrNoMoreEntries) }
