// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"sync"

	"github.com/absmach/wiremq/topics"
)

type subscriptionRecord struct {
	filter  string
	qos     byte
	handler MessageHandler
}

// subscriptionRegistry remembers active subscriptions so they can be
// re-established after a reconnect, and routes inbound messages to
// per-subscription handlers by wildcard match.
type subscriptionRegistry struct {
	mu   sync.RWMutex
	subs map[string]subscriptionRecord
}

func newSubscriptionRegistry() *subscriptionRegistry {
	return &subscriptionRegistry{
		subs: make(map[string]subscriptionRecord),
	}
}

func (r *subscriptionRegistry) set(filter string, qos byte, handler MessageHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[filter] = subscriptionRecord{
		filter:  filter,
		qos:     qos,
		handler: handler,
	}
}

func (r *subscriptionRegistry) remove(filters ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, filter := range filters {
		delete(r.subs, filter)
	}
}

func (r *subscriptionRegistry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = make(map[string]subscriptionRecord)
}

// route returns the handler of the first subscription whose filter
// matches the topic, or nil when none claims it.
func (r *subscriptionRegistry) route(topic string) MessageHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.subs {
		if rec.handler != nil && topics.Match(rec.filter, topic) {
			return rec.handler
		}
	}
	return nil
}

func (r *subscriptionRegistry) snapshot() []subscriptionRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]subscriptionRecord, 0, len(r.subs))
	for _, rec := range r.subs {
		records = append(records, rec)
	}
	return records
}
