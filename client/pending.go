// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"sync"
	"time"
)

// pendingType identifies the type of pending operation.
type pendingType int

const (
	pendingPublish pendingType = iota
	pendingSubscribe
	pendingUnsubscribe
)

// qos2State tracks the stage of an outbound QoS 2 handshake.
const (
	awaitingFirstAck = iota // PUBACK (QoS 1) or PUBREC (QoS 2)
	awaitingPubComp         // PUBREL sent, waiting for PUBCOMP
)

// pendingOp represents an in-flight record: a packet identifier bound
// to exactly one unacknowledged operation. The record is retired on
// final acknowledgment, cancellation or session reset; its identifier
// is recyclable only afterwards.
type pendingOp struct {
	id       uint16
	opType   pendingType
	token    *token
	result   []byte             // SUBACK return codes
	onResult func(codes []byte) // invoked with the result before the token resolves
	created  time.Time
	message  *Message
	topics   []string // for subscribe/unsubscribe completion events
	qosStage int
	retries  int
	lastSent time.Time
}

// pendingStore manages pending operations and allocates packet
// identifiers. Identifiers are unique among live records.
type pendingStore struct {
	mu       sync.RWMutex
	pending  map[uint16]*pendingOp
	nextID   uint16
	maxSize  int
	inflight int
	settled  chan struct{} // closed and replaced whenever a record retires
}

func newPendingStore(maxSize int) *pendingStore {
	return &pendingStore{
		pending: make(map[uint16]*pendingOp),
		nextID:  1,
		maxSize: maxSize,
		settled: make(chan struct{}),
	}
}

// nextPacketID returns the next free packet ID, or 0 when all 65535
// identifiers are in flight.
func (ps *pendingStore) nextPacketID() uint16 {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	startID := ps.nextID
	for {
		id := ps.nextID
		ps.nextID++
		if ps.nextID == 0 {
			ps.nextID = 1
		}

		if _, exists := ps.pending[id]; !exists {
			return id
		}

		if ps.nextID == startID {
			return 0
		}
	}
}

// add registers a new pending operation under the given ID. The
// caller's token must be bound here, before the packet hits the wire,
// so an early acknowledgment or teardown resolves the right one.
func (ps *pendingStore) add(id uint16, opType pendingType, msg *Message, tok *token) (*pendingOp, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.inflight >= ps.maxSize {
		return nil, ErrMaxInflight
	}

	if tok == nil {
		tok = newToken()
	}
	now := time.Now()
	op := &pendingOp{
		id:       id,
		opType:   opType,
		token:    tok,
		created:  now,
		lastSent: now,
		message:  msg,
	}

	ps.pending[id] = op
	ps.inflight++
	return op, nil
}

// get retrieves a pending operation by ID.
func (ps *pendingStore) get(id uint16) *pendingOp {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.pending[id]
}

// complete retires a pending operation and resolves its token.
func (ps *pendingStore) complete(id uint16, err error, result []byte) (*pendingOp, bool) {
	ps.mu.Lock()
	op, exists := ps.pending[id]
	if exists {
		delete(ps.pending, id)
		ps.inflight--
		ps.signalSettled()
	}
	ps.mu.Unlock()

	if !exists {
		return nil, false
	}
	op.result = result
	if op.onResult != nil && result != nil {
		op.onResult(result)
	}
	op.token.complete(err)
	return op, true
}

// remove retires a pending operation without resolving its token.
func (ps *pendingStore) remove(id uint16) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if _, exists := ps.pending[id]; exists {
		delete(ps.pending, id)
		ps.inflight--
		ps.signalSettled()
	}
}

// advance moves an outbound QoS 2 record to the PUBCOMP stage and
// resets its retry clock.
func (ps *pendingStore) advance(id uint16, stage int) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	op, exists := ps.pending[id]
	if !exists {
		return false
	}
	op.qosStage = stage
	op.retries = 0
	op.lastSent = time.Now()
	return true
}

// markSent records a (re)transmission of a pending publish.
func (ps *pendingStore) markSent(id uint16) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if op, exists := ps.pending[id]; exists {
		op.retries++
		op.lastSent = time.Now()
	}
}

// resend is a detached snapshot of a publish record. Snapshots are
// taken under the store mutex and carry their own message copy, so
// the retry loop never reads or writes live record fields.
type resend struct {
	id      uint16
	stage   int
	retries int
	message *Message
}

// snapshotLocked copies the fields a retransmission needs. The message
// copy carries DUP set; the stored record stays untouched. Callers
// hold ps.mu.
func (ps *pendingStore) snapshotLocked(op *pendingOp) resend {
	r := resend{id: op.id, stage: op.qosStage, retries: op.retries}
	if op.message != nil {
		m := op.message.Copy()
		m.Dup = true
		r.message = m
	}
	return r
}

// expired returns snapshots of publish records idle past the retry
// interval.
func (ps *pendingStore) expired(interval time.Duration) []resend {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	cutoff := time.Now().Add(-interval)
	var out []resend
	for _, op := range ps.pending {
		if op.opType == pendingPublish && op.lastSent.Before(cutoff) {
			out = append(out, ps.snapshotLocked(op))
		}
	}
	return out
}

// stale returns identifiers of subscribe/unsubscribe records older
// than the ack timeout. Those are never retransmitted; they just fail.
func (ps *pendingStore) stale(timeout time.Duration) []uint16 {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	cutoff := time.Now().Add(-timeout)
	var ids []uint16
	for _, op := range ps.pending {
		if op.opType != pendingPublish && op.created.Before(cutoff) {
			ids = append(ids, op.id)
		}
	}
	return ids
}

// publishes returns snapshots of all pending publish records, for
// session resume.
func (ps *pendingStore) publishes() []resend {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	var out []resend
	for _, op := range ps.pending {
		if op.opType == pendingPublish {
			out = append(out, ps.snapshotLocked(op))
		}
	}
	return out
}

// restore reinstates a persisted publish record under its original
// identifier, keeping the allocator from reissuing it while the
// delivery is still unacknowledged. An identifier already in flight is
// left alone.
func (ps *pendingStore) restore(id uint16, msg *Message) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.pending[id]; exists {
		return
	}
	now := time.Now()
	ps.pending[id] = &pendingOp{
		id:       id,
		opType:   pendingPublish,
		token:    newToken(),
		created:  now,
		lastSent: now,
		message:  msg,
	}
	ps.inflight++
}

// clear retires all records matching keep==false and fails their
// tokens with err. A nil keep clears everything.
func (ps *pendingStore) clear(err error, keep func(*pendingOp) bool) {
	ps.mu.Lock()
	var dropped []*pendingOp
	for id, op := range ps.pending {
		if keep != nil && keep(op) {
			continue
		}
		delete(ps.pending, id)
		ps.inflight--
		dropped = append(dropped, op)
	}
	if len(dropped) > 0 {
		ps.signalSettled()
	}
	ps.mu.Unlock()

	for _, op := range dropped {
		op.token.complete(err)
	}
}

// count returns the number of inflight operations.
func (ps *pendingStore) count() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.inflight
}

// waitSettled blocks until every record is retired or the deadline
// passes. Used by graceful shutdown.
func (ps *pendingStore) waitSettled(timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		ps.mu.RLock()
		n := ps.inflight
		ch := ps.settled
		ps.mu.RUnlock()

		if n == 0 {
			return true
		}
		select {
		case <-ch:
		case <-deadline.C:
			return false
		}
	}
}

// signalSettled wakes waiters; callers must hold ps.mu.
func (ps *pendingStore) signalSettled() {
	close(ps.settled)
	ps.settled = make(chan struct{})
}
