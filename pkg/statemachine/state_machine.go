// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package statemachine

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// TransitionHook is triggered after a state transition has been applied.
type TransitionHook[T comparable] func(from, to T)

// StateHook is triggered when entering a state.
type StateHook[T comparable] func(state T)

// TransitionRecord records a state transition.
type TransitionRecord[T comparable] struct {
	From      T
	To        T
	Reason    string
	Timestamp time.Time
}

// StateMachine is a small generic finite state machine. Transitions must be
// registered with Allow; hooks run outside the internal lock so they may
// query the machine.
type StateMachine[T comparable] struct {
	mu sync.RWMutex

	current T
	initial T

	valid map[T][]T

	history        []TransitionRecord[T]
	maxHistorySize int

	onTransition []TransitionHook[T]
	onEnter      map[T][]StateHook[T]
}

// NewWithState creates a StateMachine positioned at initial.
func NewWithState[T comparable](initial T) *StateMachine[T] {
	return &StateMachine[T]{
		current:        initial,
		initial:        initial,
		valid:          make(map[T][]T),
		onEnter:        make(map[T][]StateHook[T]),
		maxHistorySize: 50,
	}
}

// Allow registers valid transitions from a source state.
func (sm *StateMachine[T]) Allow(from T, to ...T) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, target := range to {
		if !slices.Contains(sm.valid[from], target) {
			sm.valid[from] = append(sm.valid[from], target)
		}
	}
	return sm
}

// OnTransition registers a hook called after every successful transition.
func (sm *StateMachine[T]) OnTransition(h TransitionHook[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onTransition = append(sm.onTransition, h)
	return sm
}

// OnEnter registers a hook called when entering state.
func (sm *StateMachine[T]) OnEnter(state T, h StateHook[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onEnter[state] = append(sm.onEnter[state], h)
	return sm
}

// Current returns the current state.
func (sm *StateMachine[T]) Current() T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

// Initial returns the state the machine was created with.
func (sm *StateMachine[T]) Initial() T {
	return sm.initial
}

// Is checks if the current state matches the given state.
func (sm *StateMachine[T]) Is(state T) bool {
	return sm.Current() == state
}

// CanTransitionTo checks whether to is reachable from the current state.
func (sm *StateMachine[T]) CanTransitionTo(to T) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Contains(sm.valid[sm.current], to)
}

// TransitionTo moves to the target state. Staying in the current state is a
// no-op and fires no hooks.
func (sm *StateMachine[T]) TransitionTo(to T, reason string) error {
	sm.mu.Lock()
	from := sm.current
	if from == to {
		sm.mu.Unlock()
		return nil
	}
	if !slices.Contains(sm.valid[from], to) {
		sm.mu.Unlock()
		return fmt.Errorf("invalid transition: %v → %v", from, to)
	}

	sm.current = to
	sm.history = append(sm.history, TransitionRecord[T]{
		From:      from,
		To:        to,
		Reason:    reason,
		Timestamp: time.Now(),
	})
	if len(sm.history) > sm.maxHistorySize {
		sm.history = sm.history[len(sm.history)-sm.maxHistorySize:]
	}
	transitionHooks := slices.Clone(sm.onTransition)
	enterHooks := slices.Clone(sm.onEnter[to])
	sm.mu.Unlock()

	for _, h := range transitionHooks {
		h(from, to)
	}
	for _, h := range enterHooks {
		h(to)
	}
	return nil
}

// History returns a copy of the recorded transitions, oldest first.
func (sm *StateMachine[T]) History() []TransitionRecord[T] {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Clone(sm.history)
}
