// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import "testing"

func TestMemoryStoreOutbound(t *testing.T) {
	s := NewMemoryStore()

	msg := NewMessage("a/b", []byte("x"), 1, false)
	msg.PacketID = 10

	if err := s.StoreOutbound(10, msg); err != nil {
		t.Fatalf("StoreOutbound failed: %v", err)
	}

	got, ok := s.GetOutbound(10)
	if !ok {
		t.Fatal("GetOutbound missed stored message")
	}
	if got.Topic != "a/b" {
		t.Errorf("Topic: got %q, want %q", got.Topic, "a/b")
	}

	if err := s.DeleteOutbound(10); err != nil {
		t.Fatalf("DeleteOutbound failed: %v", err)
	}
	if _, ok := s.GetOutbound(10); ok {
		t.Fatal("GetOutbound found deleted message")
	}
}

func TestMemoryStoreInbound(t *testing.T) {
	s := NewMemoryStore()

	msg := NewMessage("a/b", []byte("x"), 2, false)
	if err := s.StoreInbound(5, msg); err != nil {
		t.Fatalf("StoreInbound failed: %v", err)
	}

	if _, ok := s.GetInbound(5); !ok {
		t.Fatal("GetInbound missed stored message")
	}
	if _, ok := s.GetOutbound(5); ok {
		t.Fatal("inbound record leaked into outbound namespace")
	}

	s.DeleteInbound(5)
	if _, ok := s.GetInbound(5); ok {
		t.Fatal("GetInbound found deleted message")
	}
}

func TestMemoryStoreGetAllOutbound(t *testing.T) {
	s := NewMemoryStore()

	for i := uint16(1); i <= 3; i++ {
		s.StoreOutbound(i, NewMessage("a/b", nil, 1, false))
	}
	s.StoreInbound(9, NewMessage("a/b", nil, 2, false))

	if got := s.GetAllOutbound(); len(got) != 3 {
		t.Fatalf("GetAllOutbound: got %d, want 3", len(got))
	}
}

func TestMemoryStoreReset(t *testing.T) {
	s := NewMemoryStore()

	s.StoreOutbound(1, NewMessage("a/b", nil, 1, false))
	s.StoreInbound(2, NewMessage("a/b", nil, 2, false))

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, ok := s.GetOutbound(1); ok {
		t.Fatal("outbound survived Reset")
	}
	if _, ok := s.GetInbound(2); ok {
		t.Fatal("inbound survived Reset")
	}
}
