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

import (
	"expvar"
	"fmt"
	"iter"
	"runtime"

	kerrors "github.com/rabbitstack/toolhelp/pkg/errors"
	"github.com/rabbitstack/toolhelp/pkg/syscall/handle"
	log "github.com/sirupsen/logrus"
)

var (
	snapshotsCreated       = expvar.NewInt("snapshot.created")
	snapshotsReleased      = expvar.NewInt("snapshot.released")
	snapshotCreateFailures = expvar.NewMap("snapshot.create.failures")
	snapshotNextFailures   = expvar.NewMap("snapshot.next.failures")
)

// Entry is the closed set of records a snapshot can yield.
type Entry interface {
	ProcessEntry | ThreadEntry | ModuleEntry | HeapList
}

// walker pairs the First and Next host calls of the entity kind.
type walker[T Entry] struct {
	kind  Kind
	first func(Host, handle.Handle) (T, error)
	next  func(Host, handle.Handle) (T, error)
}

func walkerFor[T Entry]() walker[T] {
	var w walker[T]
	switch any(*new(T)).(type) {
	case ProcessEntry:
		w.kind = KindProcess
		w.first = any(Host.ProcessFirst).(func(Host, handle.Handle) (T, error))
		w.next = any(Host.ProcessNext).(func(Host, handle.Handle) (T, error))
	case ThreadEntry:
		w.kind = KindThread
		w.first = any(Host.ThreadFirst).(func(Host, handle.Handle) (T, error))
		w.next = any(Host.ThreadNext).(func(Host, handle.Handle) (T, error))
	case ModuleEntry:
		w.kind = KindModule
		w.first = any(Host.ModuleFirst).(func(Host, handle.Handle) (T, error))
		w.next = any(Host.ModuleNext).(func(Host, handle.Handle) (T, error))
	case HeapList:
		w.kind = KindHeapList
		w.first = any(Host.HeapListFirst).(func(Host, handle.Handle) (T, error))
		w.next = any(Host.HeapListNext).(func(Host, handle.Handle) (T, error))
	}
	return w
}

// Snapshot is a point-in-time enumeration session over one entity kind table. It owns the
// snapshot handle and exposes the table as a lazy, finite sequence of entries:
//
//	snap, err := toolhelp.NewProcessSnapshot()
//	if err != nil {
//		return err
//	}
//	for proc := range snap.All() {
//		fmt.Println(proc.ExeFile)
//	}
//	return snap.Err()
//
// The handle is released as soon as the sequence terminates. Consumers that stop
// early must call Close, unless they iterate through All. A Snapshot is not safe
// for concurrent use.
type Snapshot[T Entry] struct {
	host   Host
	handle handle.Handle
	kind   Kind
	pid    uint32
	next   func(Host, handle.Handle) (T, error)
	lc     *lifecycle

	first T
	entry T
	err   error
}

// NewProcessSnapshot takes a snapshot of all processes in the system.
func NewProcessSnapshot(opts ...Option) (*Snapshot[ProcessEntry], error) {
	return newSnapshot[ProcessEntry](0, opts...)
}

// NewThreadSnapshot takes a snapshot of all threads in the system.
func NewThreadSnapshot(opts ...Option) (*Snapshot[ThreadEntry], error) {
	return newSnapshot[ThreadEntry](0, opts...)
}

// NewModuleSnapshot takes a snapshot of the modules loaded by the specified process. Zero
// pid indicates the current process.
func NewModuleSnapshot(pid uint32, opts ...Option) (*Snapshot[ModuleEntry], error) {
	return newSnapshot[ModuleEntry](pid, opts...)
}

// NewHeapListSnapshot takes a snapshot of the heaps allocated by the specified process. Zero
// pid indicates the current process.
func NewHeapListSnapshot(pid uint32, opts ...Option) (*Snapshot[HeapList], error) {
	return newSnapshot[HeapList](pid, opts...)
}

// FromHandle builds a snapshot from the handle previously obtained with CreateToolhelp32Snapshot.
// The snapshot takes the ownership of the handle. The caller is responsible for pairing the
// entry type with the kind the handle was created for, otherwise the snapshot yields no entries.
func FromHandle[T Entry](h handle.Handle, opts ...Option) (*Snapshot[T], error) {
	o := newOpts(opts...)
	w := walkerFor[T]()
	if !h.IsValid() {
		return nil, &kerrors.SnapshotError{Op: kerrors.OpFirst, Kind: w.kind.String(), Err: kerrors.ErrInvalidHandle}
	}
	return open(o.host, h, w, 0)
}

func newSnapshot[T Entry](pid uint32, opts ...Option) (*Snapshot[T], error) {
	o := newOpts(opts...)
	w := walkerFor[T]()

	h, err := o.host.CreateSnapshot(w.kind, pid)
	if err == nil && !h.IsValid() {
		err = kerrors.ErrInvalidHandle
	}
	if err != nil {
		snapshotCreateFailures.Add(w.kind.String(), 1)
		return nil, &kerrors.SnapshotError{Op: kerrors.OpCreate, Kind: w.kind.String(), PID: pid, Err: err}
	}

	return open(o.host, h, w, pid)
}

// open positions the cursor on the first record. A snapshot is only
// handed out if both the handle and the first record were obtained.
func open[T Entry](host Host, h handle.Handle, w walker[T], pid uint32) (*Snapshot[T], error) {
	s := &Snapshot[T]{
		host:   host,
		handle: h,
		kind:   w.kind,
		pid:    pid,
		next:   w.next,
	}

	first, err := w.first(host, h)
	switch {
	case err == nil:
		s.first = first
		s.lc = newLifecycle(stateBuffered)
	case kerrors.IsNoMoreEntries(err):
		s.lc = newLifecycle(stateExhausted)
	default:
		if err := host.CloseSnapshot(h); err != nil {
			log.Debugf("unable to close %s snapshot handle %s: %v", w.kind, h, err)
		}
		snapshotCreateFailures.Add(w.kind.String(), 1)
		return nil, &kerrors.SnapshotError{Op: kerrors.OpFirst, Kind: w.kind.String(), PID: pid, Err: err}
	}

	snapshotsCreated.Add(1)

	if s.lc.is(stateExhausted) {
		// empty table. Nothing is going to reference
		// the handle anymore
		s.release()
		return s, nil
	}

	runtime.SetFinalizer(s, func(s *Snapshot[T]) {
		log.Debugf("releasing unreachable %s snapshot handle %s", s.kind, s.handle)
		s.release()
	})

	return s, nil
}

// Next advances the snapshot to the next entry, which is then available through Entry.
// It returns false when the snapshot is exhausted or the host failed to advance the
// cursor, after which every call returns false. Err tells both cases apart.
func (s *Snapshot[T]) Next() bool {
	var zero T
	switch s.lc.state() {
	case stateBuffered:
		s.lc.fire(triggerAdvance)
		s.entry, s.first = s.first, zero
		return true
	case stateActive:
		entry, err := s.next(s.host, s.handle)
		if err != nil {
			if !kerrors.IsNoMoreEntries(err) {
				snapshotNextFailures.Add(s.kind.String(), 1)
				s.err = &kerrors.SnapshotError{Op: kerrors.OpNext, Kind: s.kind.String(), PID: s.pid, Err: err}
			}
			s.entry = zero
			s.lc.fire(triggerExhaust)
			s.release()
			return false
		}
		s.entry = entry
		return true
	default:
		s.entry = zero
		return false
	}
}

// Entry returns the entry the snapshot was advanced to by the most recent Next call.
func (s *Snapshot[T]) Entry() T { return s.entry }

// Err returns the error that terminated the sequence. It is nil if the snapshot was
// drained or abandoned.
func (s *Snapshot[T]) Err() error { return s.err }

// All returns the lazy sequence of the remaining entries. The snapshot is released
// when the sequence is drained or the loop exits early.
func (s *Snapshot[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		defer s.release()
		for s.Next() {
			if !yield(s.Entry()) {
				return
			}
		}
	}
}

// Collect drains the snapshot and returns all remaining entries.
func (s *Snapshot[T]) Collect() ([]T, error) {
	entries := make([]T, 0)
	for entry := range s.All() {
		entries = append(entries, entry)
	}
	return entries, s.Err()
}

// Close releases the snapshot handle. It is safe to call Close multiple times.
// Failures to close the handle are never reported.
func (s *Snapshot[T]) Close() error {
	s.release()
	return nil
}

// Handle returns the underlying snapshot handle. The handle is no longer
// valid once the snapshot is released.
func (s *Snapshot[T]) Handle() handle.Handle { return s.handle }

// Kind returns the entity kind of this snapshot.
func (s *Snapshot[T]) Kind() Kind { return s.kind }

// String returns the snapshot string representation.
func (s *Snapshot[T]) String() string {
	return fmt.Sprintf("%s snapshot [handle: %s, state: %s]", s.kind, s.handle, s.lc.state())
}

func (s *Snapshot[T]) release() {
	if s.lc.is(stateReleased) {
		return
	}
	s.lc.fire(triggerRelease)
	runtime.SetFinalizer(s, nil)
	if err := s.host.CloseSnapshot(s.handle); err != nil {
		log.Debugf("unable to close %s snapshot handle %s: %v", s.kind, s.handle, err)
	}
	snapshotsReleased.Add(1)
}
