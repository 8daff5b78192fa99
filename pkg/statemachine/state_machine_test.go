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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnStateMachine_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []ConnState
		wantErr bool
	}{
		{name: "startup success", path: []ConnState{ConnConnected}},
		{name: "startup failure then recover", path: []ConnState{ConnDisconnected, ConnConnected}},
		{name: "connected drops", path: []ConnState{ConnConnected, ConnDisconnected}},
		{name: "cannot return to initializing", path: []ConnState{ConnConnected, ConnInitializing}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewConnStateMachine()
			var err error
			for _, s := range tt.path {
				if err = sm.TransitionTo(s, "test"); err != nil {
					break
				}
			}
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, sm.Is(tt.path[len(tt.path)-1]))
		})
	}
}

func TestStateMachine_SameStateIsNoop(t *testing.T) {
	sm := NewConnStateMachine()
	require.NoError(t, sm.TransitionTo(ConnDisconnected, "probe failed"))

	fired := 0
	sm.OnTransition(func(from, to ConnState) { fired++ })

	require.NoError(t, sm.TransitionTo(ConnDisconnected, "again"))
	assert.Equal(t, 0, fired)
	assert.Len(t, sm.History(), 1)
}

func TestStateMachine_HooksMayQueryMachine(t *testing.T) {
	sm := NewConnStateMachine()

	var seen []ConnState
	sm.OnEnter(ConnConnected, func(state ConnState) {
		// hooks run outside the lock
		seen = append(seen, sm.Current())
	})
	sm.OnTransition(func(from, to ConnState) {
		assert.Equal(t, ConnInitializing, from)
	})

	require.NoError(t, sm.TransitionTo(ConnConnected, "probe ok"))
	assert.Equal(t, []ConnState{ConnConnected}, seen)

	h := sm.History()
	require.Len(t, h, 1)
	assert.Equal(t, "probe ok", h[0].Reason)
	assert.Equal(t, ConnInitializing, sm.Initial())
}

func TestStateMachine_CanTransitionTo(t *testing.T) {
	sm := NewConnStateMachine()
	assert.True(t, sm.CanTransitionTo(ConnConnected))
	assert.False(t, sm.CanTransitionTo(ConnInitializing))
}

func TestStateMachine_Concurrent(t *testing.T) {
	sm := NewConnStateMachine()
	require.NoError(t, sm.TransitionTo(ConnConnected, ""))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = sm.TransitionTo(ConnDisconnected, "")
			} else {
				_ = sm.TransitionTo(ConnConnected, "")
			}
			_ = sm.Current()
		}(i)
	}
	wg.Wait()
	assert.True(t, sm.Is(ConnConnected) || sm.Is(ConnDisconnected))
}
