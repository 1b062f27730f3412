// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"log/slog"
	"time"

	"github.com/absmach/wiremq/packets"
)

// pingGraceFactor scales the keepalive interval into the window the
// broker is given to answer before the connection is declared dead.
const pingGraceFactor = 1.5

// startKeepAlive launches the keepalive loop. A PINGREQ goes out when
// no control packet has been sent for a full keepalive interval; the
// connection is declared dead when nothing arrives for 1.5 intervals.
func (c *Client) startKeepAlive() {
	if c.opts.KeepAlive <= 0 {
		return
	}

	c.schedDone.Add(1)
	go c.keepAliveLoop(c.schedStop)
}

func (c *Client) keepAliveLoop(stop <-chan struct{}) {
	defer c.schedDone.Done()

	interval := c.opts.KeepAlive
	grace := time.Duration(float64(interval) * pingGraceFactor)

	// Check often enough that a ping never goes out late.
	ticker := time.NewTicker(interval / 4)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.activityMu.Lock()
			sinceSent := time.Since(c.lastSent)
			sinceInbound := time.Since(c.lastInbound)
			c.activityMu.Unlock()

			if sinceInbound >= grace {
				c.logger.Warn("broker unresponsive",
					slog.Duration("since_inbound", sinceInbound))
				go c.handleConnectionLost(ErrPingTimeout)
				return
			}

			if sinceSent >= interval {
				c.sendPingReq()
			}
		}
	}
}

func (c *Client) sendPingReq() {
	pkt := &packets.PingReq{
		FixedHeader: packets.FixedHeader{PacketType: packets.PingReqType},
	}
	if err := c.writePacket(pkt); err != nil {
		c.logger.Debug("failed to send PINGREQ", slog.String("error", err.Error()))
	}
}
