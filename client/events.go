// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

// MessageHandler is called for inbound application messages.
type MessageHandler func(msg *Message)

// EventSink receives lifecycle notifications from the client. It is
// invoked from the goroutine that observes the event; implementations
// must not block for long. Embed NopSink to implement a subset.
type EventSink interface {
	// Connecting fires when a connection attempt starts.
	Connecting()

	// Connected fires after a successful CONNACK. sessionPresent
	// reports whether the broker resumed a persistent session.
	Connected(sessionPresent bool)

	// ConnectionLost fires on an unexpected transport close or a
	// keepalive timeout, with the underlying reason.
	ConnectionLost(err error)

	// Reconnecting fires before each automatic reconnect attempt.
	Reconnecting(attempt int)

	// MessageReceived fires for inbound messages not claimed by a
	// per-subscription handler.
	MessageReceived(msg *Message)

	// DeliveryComplete fires when a QoS > 0 publish finishes its
	// acknowledgment handshake.
	DeliveryComplete(packetID uint16)

	// Subscribed fires after a SUBACK, with the acknowledged topics.
	Subscribed(topics []string)

	// Unsubscribed fires after an UNSUBACK.
	Unsubscribed(topics []string)

	// Closed fires once when the client is permanently closed.
	Closed()
}

// NopSink is an EventSink that ignores every event.
type NopSink struct{}

func (NopSink) Connecting() {}
func (NopSink) Connected(bool) {}
func (NopSink) ConnectionLost(error) {}
func (NopSink) Reconnecting(int) {}
func (NopSink) MessageReceived(*Message) {}
func (NopSink) DeliveryComplete(uint16) {}
func (NopSink) Subscribed([]string) {}
func (NopSink) Unsubscribed([]string) {}
func (NopSink) Closed() {}

var _ EventSink = (*NopSink)(nil)
