// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import "time"

// Message represents an MQTT application message.
type Message struct {
	Topic     string    `json:"topic"`
	Payload   []byte    `json:"payload"`
	QoS       byte      `json:"qos"`
	Retain    bool      `json:"retain"`
	Dup       bool      `json:"dup"`
	PacketID  uint16    `json:"packet_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a new message with the given parameters.
func NewMessage(topic string, payload []byte, qos byte, retain bool) *Message {
	return &Message{
		Topic:     topic,
		Payload:   payload,
		QoS:       qos,
		Retain:    retain,
		Timestamp: time.Now(),
	}
}

// Copy creates a deep copy of the message.
func (m *Message) Copy() *Message {
	if m == nil {
		return nil
	}

	msg := &Message{
		Topic:     m.Topic,
		QoS:       m.QoS,
		Retain:    m.Retain,
		Dup:       m.Dup,
		PacketID:  m.PacketID,
		Timestamp: m.Timestamp,
	}

	if m.Payload != nil {
		msg.Payload = make([]byte, len(m.Payload))
		copy(msg.Payload, m.Payload)
	}

	return msg
}

// Token represents an asynchronous operation result. Every operation
// resolves its token exactly once: with nil on success or with the
// terminal error.
type Token interface {
	// Wait blocks until the operation completes.
	Wait() error

	// WaitTimeout blocks until the operation completes or times out.
	WaitTimeout(time.Duration) error

	// Done returns a channel that closes when the operation completes.
	Done() <-chan struct{}

	// Error returns the operation error (valid after Done is closed).
	Error() error
}

// token is the default Token implementation.
type token struct {
	done chan struct{}
	err  error
}

func newToken() *token {
	return &token{
		done: make(chan struct{}),
	}
}

// complete signals the token as done. Must be called at most once.
func (t *token) complete(err error) {
	t.err = err
	close(t.done)
}

func (t *token) Wait() error {
	<-t.done
	return t.err
}

func (t *token) WaitTimeout(timeout time.Duration) error {
	select {
	case <-t.done:
		return t.err
	case <-time.After(timeout):
		return ErrTimeout
	}
}

func (t *token) Done() <-chan struct{} {
	return t.done
}

func (t *token) Error() error {
	return t.err
}

// PublishToken is returned by Publish operations.
type PublishToken struct {
	*token
	MessageID uint16

	cancel func()
}

// Cancel retires the pending delivery locally. The broker may still
// have processed the message (at-least-once semantics); the token
// fails with ErrAborted.
func (t *PublishToken) Cancel() {
	if t.cancel != nil {
		t.cancel()
	}
}

// SubscribeToken is returned by Subscribe operations. ReturnCodes
// holds the broker's granted QoS per requested topic, valid after the
// token resolves.
type SubscribeToken struct {
	*token
	ReturnCodes []byte
}

// UnsubscribeToken is returned by Unsubscribe operations.
type UnsubscribeToken struct {
	*token
}
