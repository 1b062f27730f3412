// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package badger provides a BadgerDB-backed message store so QoS 1/2
// delivery state survives process restarts.
package badger

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/absmach/wiremq/client"
	"github.com/dgraph-io/badger/v4"
)

var _ client.MessageStore = (*Store)(nil)

// Key format:
//   - Outbound in-flight: out/{packetID}
//   - Inbound QoS 2:      in/{packetID}
const (
	outboundPrefix = "out/"
	inboundPrefix  = "in/"
)

// Store implements client.MessageStore using BadgerDB.
type Store struct {
	db *badger.DB

	gcStopCh chan struct{}
	gcDone   chan struct{}
	closed   bool
	mu       sync.Mutex
}

// Config holds BadgerDB configuration.
type Config struct {
	Dir string // Directory for BadgerDB data
}

// New creates a new BadgerDB-backed message store.
func New(cfg Config) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = nil // Disable BadgerDB's internal logging
	// Disable encryption to avoid "Invalid datakey id" errors on restart
	opts.EncryptionKey = nil
	opts.EncryptionKeyRotationDuration = 0
	// Async writes: unacknowledged messages are retransmitted anyway.
	opts.SyncWrites = false
	opts.NumVersionsToKeep = 1
	opts.NumCompactors = 2

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:       db,
		gcStopCh: make(chan struct{}),
		gcDone:   make(chan struct{}),
	}

	// Start background value log GC
	go s.runGC()

	return s, nil
}

func outboundKey(packetID uint16) []byte {
	return []byte(fmt.Sprintf("%s%d", outboundPrefix, packetID))
}

func inboundKey(packetID uint16) []byte {
	return []byte(fmt.Sprintf("%s%d", inboundPrefix, packetID))
}

// StoreOutbound persists an outbound in-flight message.
func (s *Store) StoreOutbound(packetID uint16, msg *client.Message) error {
	return s.put(outboundKey(packetID), msg)
}

// GetOutbound retrieves an outbound in-flight message.
func (s *Store) GetOutbound(packetID uint16) (*client.Message, bool) {
	return s.get(outboundKey(packetID))
}

// DeleteOutbound removes an outbound in-flight message.
func (s *Store) DeleteOutbound(packetID uint16) error {
	return s.delete(outboundKey(packetID))
}

// GetAllOutbound returns all outbound in-flight messages.
func (s *Store) GetAllOutbound() []*client.Message {
	var msgs []*client.Message

	s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(outboundPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var msg client.Message
				if err := json.Unmarshal(val, &msg); err != nil {
					return err
				}
				msgs = append(msgs, &msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	return msgs
}

// StoreInbound persists an inbound QoS 2 message pending PUBREL.
func (s *Store) StoreInbound(packetID uint16, msg *client.Message) error {
	return s.put(inboundKey(packetID), msg)
}

// GetInbound retrieves an inbound QoS 2 message.
func (s *Store) GetInbound(packetID uint16) (*client.Message, bool) {
	return s.get(inboundKey(packetID))
}

// DeleteInbound removes an inbound QoS 2 message.
func (s *Store) DeleteInbound(packetID uint16) error {
	return s.delete(inboundKey(packetID))
}

// Reset discards all stored messages.
func (s *Store) Reset() error {
	return s.db.DropAll()
}

func (s *Store) put(key []byte, msg *client.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

func (s *Store) get(key []byte) (*client.Message, bool) {
	var msg *client.Message

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var m client.Message
			if err := json.Unmarshal(val, &m); err != nil {
				return err
			}
			msg = &m
			return nil
		})
	})
	if err != nil {
		return nil, false
	}
	return msg, true
}

func (s *Store) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Close gracefully closes the BadgerDB database.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	// Signal GC goroutine to stop and wait for it
	close(s.gcStopCh)
	<-s.gcDone

	return s.db.Close()
}

// runGC runs BadgerDB's value log garbage collection periodically.
func (s *Store) runGC() {
	defer close(s.gcDone)

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// May return an error when no GC was needed, which is fine
			_ = s.db.RunValueLogGC(0.5)
		case <-s.gcStopCh:
			// Skip final GC to avoid vlog corruption on restart
			return
		}
	}
}
