// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import "errors"

// Client errors.
var (
	// Configuration errors.
	ErrNoServers     = errors.New("no servers configured")
	ErrEmptyClientID = errors.New("client ID cannot be empty")

	// Connection errors.
	ErrNotConnected       = errors.New("client not connected")
	ErrAlreadyConnected   = errors.New("client already connected")
	ErrConnectFailed      = errors.New("connection failed")
	ErrConnectionLost     = errors.New("connection lost")
	ErrPingTimeout        = errors.New("no PINGRESP within grace window")
	ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

	// Operation errors.
	ErrTimeout          = errors.New("operation timed out")
	ErrDeliveryFailed   = errors.New("delivery failed: retry ceiling exceeded")
	ErrAborted          = errors.New("operation aborted")
	ErrMaxInflight      = errors.New("maximum inflight messages exceeded")
	ErrOfflineQueueFull = errors.New("offline queue full")
	ErrClientClosed     = errors.New("client has been closed")
	ErrInvalidQoS       = errors.New("invalid QoS level (must be 0, 1, or 2)")
	ErrInvalidTopic     = errors.New("invalid topic")
	ErrSubscribeFailed  = errors.New("subscription failed")

	// Protocol errors.
	ErrUnexpectedPacket = errors.New("unexpected packet type")
)

// ConnAckCode represents MQTT CONNACK return codes.
type ConnAckCode byte

// MQTT 3.1.1 CONNACK return codes.
const (
	ConnAccepted           ConnAckCode = 0x00
	ConnRefusedProtocol    ConnAckCode = 0x01
	ConnRefusedIDRejected  ConnAckCode = 0x02
	ConnRefusedUnavailable ConnAckCode = 0x03
	ConnRefusedBadAuth     ConnAckCode = 0x04
	ConnRefusedNotAuth     ConnAckCode = 0x05
)

// String returns a human-readable description of the CONNACK code.
func (c ConnAckCode) String() string {
	switch c {
	case ConnAccepted:
		return "connection accepted"
	case ConnRefusedProtocol:
		return "unacceptable protocol version"
	case ConnRefusedIDRejected:
		return "client identifier rejected"
	case ConnRefusedUnavailable:
		return "server unavailable"
	case ConnRefusedBadAuth:
		return "bad username or password"
	case ConnRefusedNotAuth:
		return "not authorized"
	default:
		return "unknown error"
	}
}

// Error implements the error interface.
func (c ConnAckCode) Error() string {
	return c.String()
}
