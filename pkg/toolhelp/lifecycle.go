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
	"github.com/qmuntal/stateless"
	log "github.com/sirupsen/logrus"
)

type state string

const (
	// stateBuffered is the state of a cursor holding the
	// first record that hasn't been yielded yet
	stateBuffered state = "buffered"
	// stateActive is the state after the first record is
	// yielded. The records are fetched from the host.
	stateActive    state = "active"
	stateExhausted state = "exhausted"
	// stateReleased is terminal and reachable from every state
	stateReleased state = "released"
)

type trigger string

const (
	triggerAdvance trigger = "advance"
	triggerExhaust trigger = "exhaust"
	triggerRelease trigger = "release"
)

// lifecycle governs the cursor transitions shared by snapshots and heap walks.
type lifecycle struct {
	sm *stateless.StateMachine
}

func newLifecycle(initial state) *lifecycle {
	sm := stateless.NewStateMachine(initial)

	sm.Configure(stateBuffered).
		Permit(triggerAdvance, stateActive).
		Permit(triggerExhaust, stateExhausted).
		Permit(triggerRelease, stateReleased)

	sm.Configure(stateActive).
		Ignore(triggerAdvance).
		Permit(triggerExhaust, stateExhausted).
		Permit(triggerRelease, stateReleased)

	sm.Configure(stateExhausted).
		Ignore(triggerExhaust).
		Permit(triggerRelease, stateReleased)

	sm.Configure(stateReleased).
		Ignore(triggerExhaust).
		Ignore(triggerRelease)

	return &lifecycle{sm: sm}
}

func (l *lifecycle) state() state { return l.sm.MustState().(state) }

func (l *lifecycle) is(s state) bool { return l.state() == s }

func (l *lifecycle) fire(t trigger) {
	if err := l.sm.Fire(t); err != nil {
		log.Warnf("invalid %s transition in %s state: %v", t, l.state(), err)
	}
}
