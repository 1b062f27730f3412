// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// reconnect drives the automatic reconnection cycle after an
// unexpected connection loss. Attempts back off exponentially with
// jitter between ReconnectBackoff and MaxReconnectWait; the cycle ends
// on success, on Disconnect/Close, or when MaxReconnectAttempts is
// exhausted.
func (c *Client) reconnect() {
	c.reconnMu.Lock()
	defer c.reconnMu.Unlock()

	if !c.state.transition(StateDisconnected, StateReconnecting) {
		return
	}

	bo := &backoff.ExponentialBackOff{
		InitialInterval:     c.opts.ReconnectBackoff,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         c.opts.MaxReconnectWait,
	}
	bo.Reset()

	for attempt := 1; ; attempt++ {
		if c.reconnCancel.Load() || c.state.isClosed() {
			c.state.transition(StateReconnecting, StateDisconnected)
			return
		}

		if c.opts.MaxReconnectAttempts > 0 && attempt > c.opts.MaxReconnectAttempts {
			c.state.transition(StateReconnecting, StateDisconnected)
			c.logger.Error("reconnect attempts exhausted",
				slog.Int("attempts", c.opts.MaxReconnectAttempts))
			c.failSession(ErrReconnectExhausted)
			c.sink.ConnectionLost(ErrReconnectExhausted)
			return
		}

		c.sink.Reconnecting(attempt)
		c.logger.Info("reconnecting", slog.Int("attempt", attempt))

		err := c.Connect()
		if err == nil {
			return
		}
		c.logger.Warn("reconnect attempt failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		// A failed Connect leaves the state at Disconnected; reclaim it
		// so Disconnect can still cancel the cycle.
		if !c.state.transition(StateDisconnected, StateReconnecting) {
			return
		}

		time.Sleep(bo.NextBackOff())
	}
}

// failSession resolves everything still waiting on a connection that
// will never come back.
func (c *Client) failSession(err error) {
	c.pending.clear(err, nil)
	c.offline.clear(err)
}
