// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"sync"
	"testing"
	"time"
)

func TestPendingNextPacketIDUnique(t *testing.T) {
	ps := newPendingStore(100)

	seen := make(map[uint16]bool)
	for i := 0; i < 50; i++ {
		id := ps.nextPacketID()
		if id == 0 {
			t.Fatal("allocator returned 0 with free identifiers")
		}
		if seen[id] {
			t.Fatalf("identifier %d allocated twice", id)
		}
		seen[id] = true

		if _, err := ps.add(id, pendingPublish, nil, nil); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
}

func TestPendingNextPacketIDSkipsLive(t *testing.T) {
	ps := newPendingStore(10)

	id := ps.nextPacketID()
	if _, err := ps.add(id, pendingPublish, nil, nil); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// Force the allocator to wrap onto the live identifier.
	ps.mu.Lock()
	ps.nextID = id
	ps.mu.Unlock()

	next := ps.nextPacketID()
	if next == id {
		t.Fatalf("allocator returned live identifier %d", id)
	}
}

func TestPendingNextPacketIDWrapsAroundZero(t *testing.T) {
	ps := newPendingStore(10)

	ps.mu.Lock()
	ps.nextID = 65535
	ps.mu.Unlock()

	if id := ps.nextPacketID(); id != 65535 {
		t.Fatalf("got %d, want 65535", id)
	}
	// Zero is not a legal identifier; the allocator skips it.
	if id := ps.nextPacketID(); id != 1 {
		t.Fatalf("got %d, want 1", id)
	}
}

func TestPendingAddRespectsMaxInflight(t *testing.T) {
	ps := newPendingStore(2)

	for i := uint16(1); i <= 2; i++ {
		if _, err := ps.add(i, pendingPublish, nil, nil); err != nil {
			t.Fatalf("add %d failed: %v", i, err)
		}
	}

	if _, err := ps.add(3, pendingPublish, nil, nil); err != ErrMaxInflight {
		t.Fatalf("got %v, want ErrMaxInflight", err)
	}
}

func TestPendingCompleteResolvesToken(t *testing.T) {
	ps := newPendingStore(10)

	op, err := ps.add(1, pendingPublish, nil, nil)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if _, ok := ps.complete(1, nil, nil); !ok {
		t.Fatal("complete reported missing record")
	}
	if err := op.token.Wait(); err != nil {
		t.Errorf("token error: %v", err)
	}

	// Completing again is a no-op.
	if _, ok := ps.complete(1, nil, nil); ok {
		t.Fatal("complete succeeded twice for one identifier")
	}
}

func TestPendingAdvanceResetsRetries(t *testing.T) {
	ps := newPendingStore(10)

	op, err := ps.add(1, pendingPublish, nil, nil)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	ps.markSent(1)
	ps.markSent(1)
	if op.retries != 2 {
		t.Fatalf("retries: got %d, want 2", op.retries)
	}

	if !ps.advance(1, awaitingPubComp) {
		t.Fatal("advance reported missing record")
	}
	if op.qosStage != awaitingPubComp {
		t.Errorf("qosStage: got %d, want awaitingPubComp", op.qosStage)
	}
	if op.retries != 0 {
		t.Errorf("retries after advance: got %d, want 0", op.retries)
	}
}

func TestPendingExpired(t *testing.T) {
	ps := newPendingStore(10)

	op, err := ps.add(1, pendingPublish, nil, nil)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := ps.add(2, pendingSubscribe, nil, nil); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	ps.mu.Lock()
	op.lastSent = time.Now().Add(-time.Minute)
	ps.mu.Unlock()

	expired := ps.expired(10 * time.Second)
	if len(expired) != 1 || expired[0].id != 1 {
		t.Fatalf("expired: got %v records, want publish record 1", len(expired))
	}
}

func TestPendingExpiredDetachesFromRecord(t *testing.T) {
	ps := newPendingStore(10)

	msg := NewMessage("sensors/temp", []byte("21.5"), 2, false)
	msg.PacketID = 1
	op, err := ps.add(1, pendingPublish, msg, nil)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	ps.mu.Lock()
	op.lastSent = time.Now().Add(-time.Minute)
	ps.mu.Unlock()

	expired := ps.expired(10 * time.Second)
	if len(expired) != 1 {
		t.Fatalf("expired: got %d records, want 1", len(expired))
	}

	// The snapshot carries its own message with DUP set; the stored
	// record must stay untouched so concurrent acknowledgment handling
	// never shares mutable state with the retry loop.
	r := expired[0]
	if r.message == op.message {
		t.Fatal("snapshot shares the live record's message")
	}
	if !r.message.Dup {
		t.Error("snapshot message does not carry DUP")
	}
	if op.message.Dup {
		t.Error("live record's message was mutated")
	}
	if r.stage != op.qosStage || r.retries != op.retries {
		t.Errorf("snapshot fields diverge: stage %d/%d retries %d/%d",
			r.stage, op.qosStage, r.retries, op.retries)
	}
}

func TestPendingRestoreReservesIdentifier(t *testing.T) {
	ps := newPendingStore(10)

	msg := NewMessage("alerts/fire", []byte("smoke"), 1, false)
	msg.PacketID = 1
	ps.restore(1, msg)

	if ps.count() != 1 {
		t.Fatalf("count: got %d, want 1", ps.count())
	}
	// The allocator must not reissue a restored identifier.
	ps.mu.Lock()
	ps.nextID = 1
	ps.mu.Unlock()
	if id := ps.nextPacketID(); id == 1 {
		t.Fatal("allocator reissued restored identifier")
	}

	pubs := ps.publishes()
	if len(pubs) != 1 || pubs[0].id != 1 {
		t.Fatalf("publishes: got %d records, want restored record 1", len(pubs))
	}

	// Restoring again over a live identifier is a no-op.
	ps.restore(1, NewMessage("other", nil, 1, false))
	if ps.count() != 1 {
		t.Fatalf("count after duplicate restore: got %d, want 1", ps.count())
	}
}

func TestPendingClearWithKeep(t *testing.T) {
	ps := newPendingStore(10)

	pub, _ := ps.add(1, pendingPublish, nil, nil)
	sub, _ := ps.add(2, pendingSubscribe, nil, nil)

	ps.clear(ErrConnectionLost, func(op *pendingOp) bool {
		return op.opType == pendingPublish
	})

	if err := sub.token.Wait(); err != ErrConnectionLost {
		t.Errorf("subscribe token: got %v, want ErrConnectionLost", err)
	}

	select {
	case <-pub.token.Done():
		t.Fatal("publish record was dropped by selective clear")
	default:
	}
	if ps.count() != 1 {
		t.Errorf("count: got %d, want 1", ps.count())
	}
}

func TestPendingWaitSettled(t *testing.T) {
	ps := newPendingStore(10)
	ps.add(1, pendingPublish, nil, nil)

	go func() {
		time.Sleep(50 * time.Millisecond)
		ps.complete(1, nil, nil)
	}()

	if !ps.waitSettled(time.Second) {
		t.Fatal("waitSettled timed out with settling record")
	}
}

func TestPendingWaitSettledTimeout(t *testing.T) {
	ps := newPendingStore(10)
	ps.add(1, pendingPublish, nil, nil)

	if ps.waitSettled(50 * time.Millisecond) {
		t.Fatal("waitSettled reported settled with live record")
	}
}

func TestPendingConcurrentAllocation(t *testing.T) {
	ps := newPendingStore(1000)

	const n = 100
	ids := make(chan uint16, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := ps.nextPacketID()
			if id == 0 {
				t.Error("allocator returned 0")
				return
			}
			if _, err := ps.add(id, pendingPublish, nil, nil); err != nil {
				t.Errorf("add failed: %v", err)
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint16]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("identifier %d allocated twice", id)
		}
		seen[id] = true
	}
}
