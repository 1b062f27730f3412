// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"log/slog"
	"time"

	"github.com/absmach/wiremq/packets"
)

// startRetry launches the retransmission loop for unacknowledged
// QoS 1/2 publishes.
func (c *Client) startRetry() {
	if c.opts.RetryInterval <= 0 {
		return
	}

	c.schedDone.Add(1)
	go c.retryLoop(c.schedStop)
}

func (c *Client) retryLoop(stop <-chan struct{}) {
	defer c.schedDone.Done()

	ticker := time.NewTicker(c.opts.RetryInterval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if c.opts.AckTimeout > 0 {
				for _, id := range c.pending.stale(c.opts.AckTimeout) {
					c.pending.complete(id, ErrTimeout, nil)
				}
			}

			for _, r := range c.pending.expired(c.opts.RetryInterval) {
				if r.retries >= c.opts.MaxRetries {
					c.logger.Warn("delivery abandoned",
						slog.Int("packet_id", int(r.id)),
						slog.Int("retries", r.retries))
					c.pending.complete(r.id, ErrDeliveryFailed, nil)
					c.store.DeleteOutbound(r.id)
					continue
				}
				c.retransmit(r)
			}
		}
	}
}

// retransmit resends the packet appropriate to the delivery stage: the
// PUBLISH with the DUP flag set while the first acknowledgment is
// outstanding, or the PUBREL once the QoS 2 handshake has advanced.
// It works from a snapshot, never from the live record.
func (c *Client) retransmit(r resend) {
	var err error
	switch r.stage {
	case awaitingPubComp:
		err = c.writePacket(&packets.PubRel{
			FixedHeader: packets.FixedHeader{PacketType: packets.PubRelType, QoS: 1},
			ID:          r.id,
		})
	default:
		if r.message == nil {
			return
		}
		err = c.sendPublish(r.message)
	}

	if err != nil {
		c.logger.Debug("retransmission failed",
			slog.Int("packet_id", int(r.id)),
			slog.String("error", err.Error()))
		return
	}
	c.pending.markSent(r.id)
}
