// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// WSDialer dials MQTT-over-WebSocket connections. The addr passed to
// Dial is a ws:// or wss:// URL; the connection negotiates the "mqtt"
// subprotocol and carries packets in binary frames.
type WSDialer struct {
	TLSConfig *tls.Config // used for wss:// URLs
	Timeout   time.Duration
}

// Dial opens a WebSocket connection to the given URL.
func (d *WSDialer) Dial(ctx context.Context, addr string) (net.Conn, error) {
	dialer := &websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: d.Timeout,
		TLSClientConfig:  d.TLSConfig,
		Subprotocols:     []string{"mqtt"},
	}

	ws, _, err := dialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, err
	}
	return &wsConn{ws: ws}, nil
}

// wsConn adapts a websocket connection to net.Conn. MQTT packets may
// span or share frames, so reads drain the current frame before
// fetching the next one.
type wsConn struct {
	ws     *websocket.Conn
	reader interface{ Read([]byte) (int, error) }
}

func (c *wsConn) Read(p []byte) (int, error) {
	for {
		if c.reader == nil {
			_, r, err := c.ws.NextReader()
			if err != nil {
				return 0, err
			}
			c.reader = r
		}
		n, err := c.reader.Read(p)
		if n > 0 {
			return n, nil
		}
		if err != nil {
			// Frame exhausted, move to the next one.
			c.reader = nil
			continue
		}
	}
}

func (c *wsConn) Write(p []byte) (int, error) {
	if err := c.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}

func (c *wsConn) LocalAddr() net.Addr {
	return c.ws.LocalAddr()
}

func (c *wsConn) RemoteAddr() net.Addr {
	return c.ws.RemoteAddr()
}

func (c *wsConn) SetDeadline(t time.Time) error {
	if err := c.ws.SetReadDeadline(t); err != nil {
		return err
	}
	return c.ws.SetWriteDeadline(t)
}

func (c *wsConn) SetReadDeadline(t time.Time) error {
	return c.ws.SetReadDeadline(t)
}

func (c *wsConn) SetWriteDeadline(t time.Time) error {
	return c.ws.SetWriteDeadline(t)
}
