// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import "testing"

func TestOfflineQueuePushBound(t *testing.T) {
	q := newOfflineQueue(2)

	for i := 0; i < 2; i++ {
		item := &queuedPublish{msg: NewMessage("a/b", nil, 1, false), token: &PublishToken{token: newToken()}}
		if err := q.push(item); err != nil {
			t.Fatalf("push %d failed: %v", i, err)
		}
	}

	item := &queuedPublish{msg: NewMessage("a/b", nil, 1, false), token: &PublishToken{token: newToken()}}
	if err := q.push(item); err != ErrOfflineQueueFull {
		t.Fatalf("got %v, want ErrOfflineQueueFull", err)
	}
}

func TestOfflineQueueDrainPreservesOrder(t *testing.T) {
	q := newOfflineQueue(10)

	topics := []string{"t/1", "t/2", "t/3"}
	for _, topic := range topics {
		q.push(&queuedPublish{msg: NewMessage(topic, nil, 1, false), token: &PublishToken{token: newToken()}})
	}

	drained := q.drain()
	if len(drained) != len(topics) {
		t.Fatalf("drain: got %d items, want %d", len(drained), len(topics))
	}
	for i, item := range drained {
		if item.msg.Topic != topics[i] {
			t.Errorf("item %d: got %q, want %q", i, item.msg.Topic, topics[i])
		}
	}
	if q.len() != 0 {
		t.Errorf("queue not empty after drain: %d", q.len())
	}
}

func TestOfflineQueueClearFailsTokens(t *testing.T) {
	q := newOfflineQueue(10)

	item := &queuedPublish{msg: NewMessage("a/b", nil, 1, false), token: &PublishToken{token: newToken()}}
	q.push(item)

	q.clear(ErrAborted)

	if err := item.token.Wait(); err != ErrAborted {
		t.Errorf("token: got %v, want ErrAborted", err)
	}
	if q.len() != 0 {
		t.Errorf("queue not empty after clear: %d", q.len())
	}
}
