// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import "testing"

func TestStateTransition(t *testing.T) {
	sm := newStateManager()

	if sm.get() != StateDisconnected {
		t.Fatalf("initial state: got %v, want disconnected", sm.get())
	}

	if !sm.transition(StateDisconnected, StateConnecting) {
		t.Fatal("transition from matching state failed")
	}
	if sm.transition(StateDisconnected, StateConnecting) {
		t.Fatal("transition from stale state succeeded")
	}
	if sm.get() != StateConnecting {
		t.Errorf("got %v, want connecting", sm.get())
	}
}

func TestStateTransitionFrom(t *testing.T) {
	sm := newStateManager()
	sm.set(StateReconnecting)

	if !sm.transitionFrom(StateConnecting, StateDisconnected, StateReconnecting) {
		t.Fatal("transitionFrom failed with a matching candidate")
	}
	if sm.get() != StateConnecting {
		t.Errorf("got %v, want connecting", sm.get())
	}

	if sm.transitionFrom(StateConnected, StateDisconnected, StateReconnecting) {
		t.Fatal("transitionFrom succeeded with no matching candidate")
	}
}

func TestStateHelpers(t *testing.T) {
	sm := newStateManager()

	if sm.isConnected() || sm.isClosed() {
		t.Fatal("fresh state reports connected or closed")
	}

	sm.set(StateConnected)
	if !sm.isConnected() {
		t.Error("isConnected false for connected state")
	}

	sm.set(StateClosed)
	if !sm.isClosed() {
		t.Error("isClosed false for closed state")
	}
}

func TestStateString(t *testing.T) {
	names := map[State]string{
		StateDisconnected:  "disconnected",
		StateConnecting:    "connecting",
		StateConnected:     "connected",
		StateReconnecting:  "reconnecting",
		StateDisconnecting: "disconnecting",
		StateClosed:        "closed",
	}
	for state, want := range names {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String(): got %q, want %q", state, got, want)
		}
	}
}
