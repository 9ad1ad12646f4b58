// Copyright 2026 The Gateway Core Authors
// This file is part of gateway-core.
//
// gateway-core is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gateway-core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with gateway-core. If not, see <http://www.gnu.org/licenses/>.

// Package takable implements the producer/consumer hand-off container
// described in spec.md §4.6 (C7): a large mutable value V that a periodic
// consumer can take ownership of for several seconds while a streaming
// producer keeps issuing updates against it without blocking.
package takable

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotTaken is returned by Merge when called on a Map that was never
// Take()n.
var ErrNotTaken = errors.New("takable: map was not taken")

// ErrAlreadyTaken is returned by Take when called on a Map that is already
// in the Taken state.
var ErrAlreadyTaken = errors.New("takable: map already taken")

// Action is a deferred mutation queued against the inner value while the
// Map is in the Taken state (or applied immediately otherwise).
type Action[V any] func(V)

// Map holds either a populated V plus a queue of deferred actions, or is
// "taken" (empty) while a consumer mutates it elsewhere. Ownership of V
// transfers atomically at Take and at Merge.
type Map[V any] struct {
	mu      sync.Mutex
	value   V
	present bool
	taken   bool
	pending []Action[V]
}

// New constructs a Map holding the given initial value.
func New[V any](initial V) *Map[V] {
	return &Map[V]{value: initial, present: true}
}

// AddValue applies action immediately against the live value when applyNow
// is true and the map is not currently taken; otherwise it is enqueued and
// replayed, in insertion order, at the next Merge. This is the only
// operation the streaming producer calls, and it never blocks on a consumer
// holding the value elsewhere.
func (m *Map[V]) AddValue(action Action[V], applyNow bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if applyNow && !m.taken {
		action(m.value)
		return
	}
	m.pending = append(m.pending, action)
}

// Take atomically moves the inner value out, leaving the Map in the Taken
// state. Further AddValue calls accumulate in the pending queue until
// Merge restores ownership.
func (m *Map[V]) Take() (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero V
	if m.taken {
		return zero, ErrAlreadyTaken
	}
	v := m.value
	m.value = zero
	m.present = false
	m.taken = true
	return v, nil
}

// Merge restores ownership of v and replays every action queued since Take,
// in insertion order, before leaving the Taken state. It fails with
// ErrNotTaken if the Map was not currently taken.
func (m *Map[V]) Merge(v V) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.taken {
		return fmt.Errorf("merge: %w", ErrNotTaken)
	}
	for _, action := range m.pending {
		action(v)
	}
	m.pending = nil
	m.value = v
	m.present = true
	m.taken = false
	return nil
}

// IsTaken reports whether the Map is currently in the Taken state.
func (m *Map[V]) IsTaken() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.taken
}

// View invokes fn against the live value while holding the Map's lock, for
// callers that need a consistent read without a full Take/Merge cycle. fn
// must not call back into the Map. Returns false if the Map is currently
// taken.
func (m *Map[V]) View(fn func(V)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.taken {
		return false
	}
	fn(m.value)
	return true
}
