// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import "sync"

// offlineQueue buffers QoS > 0 publishes issued while disconnected.
// It is active only for persistent sessions with auto-reconnect; the
// queue drains in FIFO order after the next CONNACK.
type offlineQueue struct {
	mu    sync.Mutex
	max   int
	queue []*queuedPublish
}

type queuedPublish struct {
	msg   *Message
	token *PublishToken
}

func newOfflineQueue(max int) *offlineQueue {
	return &offlineQueue{max: max}
}

// push appends a publish, rejecting when the bound is reached.
func (q *offlineQueue) push(item *queuedPublish) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.max > 0 && len(q.queue) >= q.max {
		return ErrOfflineQueueFull
	}
	q.queue = append(q.queue, item)
	return nil
}

// drain removes and returns every queued publish in order.
func (q *offlineQueue) drain() []*queuedPublish {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.queue
	q.queue = nil
	return items
}

// clear fails every queued publish with err.
func (q *offlineQueue) clear(err error) {
	for _, item := range q.drain() {
		item.token.complete(err)
	}
}

func (q *offlineQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}
