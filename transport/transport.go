// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package transport abstracts the byte stream an MQTT session runs on.
// Dialers produce plain net.Conn values; read and write deadline
// handling stays with the caller so the two directions never block
// one another.
package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrTLSHandshake indicates a failed TLS handshake with the broker.
var ErrTLSHandshake = errors.New("tls handshake failed")

// Dialer opens a duplex byte stream to a broker address. Dial blocks
// until the stream is established or the context is done.
type Dialer interface {
	Dial(ctx context.Context, addr string) (net.Conn, error)
}

// TCPDialer dials plain TCP connections.
type TCPDialer struct {
	// Timeout bounds the dial independently of the context (0 = none).
	Timeout time.Duration
}

// Dial opens a TCP connection to addr (host:port).
func (d *TCPDialer) Dial(ctx context.Context, addr string) (net.Conn, error) {
	nd := &net.Dialer{Timeout: d.Timeout}
	return nd.DialContext(ctx, "tcp", addr)
}

// TLSDialer dials TCP connections wrapped in TLS.
type TLSDialer struct {
	Config  *tls.Config
	Timeout time.Duration
}

// Dial opens a TCP connection to addr and performs the TLS handshake.
// Handshake failures are wrapped in ErrTLSHandshake with the underlying
// reason preserved.
func (d *TLSDialer) Dial(ctx context.Context, addr string) (net.Conn, error) {
	nd := &net.Dialer{Timeout: d.Timeout}
	raw, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	conn := tls.Client(raw, d.Config)
	if err := conn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, fmt.Errorf("%w: %v", ErrTLSHandshake, err)
	}
	return conn, nil
}
